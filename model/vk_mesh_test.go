package model

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeshBuilderDeduplicates(t *testing.T) {
	b := NewMeshBuilder()
	a := Vertex{Pos: mgl32.Vec3{0, 0, 0}, Normal: mgl32.Vec3{0, 1, 0}}
	c := Vertex{Pos: mgl32.Vec3{1, 0, 0}, Normal: mgl32.Vec3{0, 1, 0}}
	d := Vertex{Pos: mgl32.Vec3{0, 0, 1}, Normal: mgl32.Vec3{0, 1, 0}}

	assert.Equal(t, uint32(0), b.Add(a))
	assert.Equal(t, uint32(1), b.Add(c))
	assert.Equal(t, uint32(2), b.Add(d))
	assert.Equal(t, uint32(2), b.Add(d))
	assert.Equal(t, uint32(1), b.Add(c))
	assert.Equal(t, uint32(0), b.Add(a))

	assert.Equal(t, 3, b.VertexCount())
	assert.Equal(t, 6, b.IndexCount())

	m, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 0}, m.Indices)
	assert.Equal(t, 3, m.VertexCount())
	assert.Equal(t, 2, m.TriangleCount())
	assert.False(t, m.HasTexCoords)
	assert.Equal(t, c, m.Vertex(1))
}

// TestMeshBuilderExactEquality makes sure vertices that differ in any single component stay separate
func TestMeshBuilderExactEquality(t *testing.T) {
	base := Vertex{Pos: mgl32.Vec3{1, 2, 3}, Normal: mgl32.Vec3{0, 0, 1}, TexCoord: mgl32.Vec2{0.5, 0.5}}
	variants := []Vertex{
		base,
		{Pos: mgl32.Vec3{1, 2, 3.0001}, Normal: base.Normal, TexCoord: base.TexCoord},
		{Pos: base.Pos, Normal: mgl32.Vec3{0, 0, -1}, TexCoord: base.TexCoord},
		{Pos: base.Pos, Normal: base.Normal, TexCoord: mgl32.Vec2{0.5, 0.25}},
	}
	b := NewMeshBuilder()
	for _, v := range variants {
		b.Add(v)
	}
	b.Add(base)
	b.Add(base)
	assert.Equal(t, len(variants), b.VertexCount())
}

func TestMeshBuilderKeepsFirstSeenOrder(t *testing.T) {
	b := NewMeshBuilder()
	for _, x := range []float32{3, 1, 3, 2, 1, 0} {
		b.Add(Vertex{Pos: mgl32.Vec3{x, 0, 0}})
	}
	m, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 0, 0, 1, 0, 0, 2, 0, 0, 0, 0, 0}, m.Positions)
	assert.Equal(t, []uint32{0, 1, 0, 2, 1, 3}, m.Indices)
}

func TestMeshBuilderBuildErrors(t *testing.T) {
	_, err := NewMeshBuilder().Build()
	assert.Error(t, err)

	b := NewMeshBuilder()
	b.Add(Vertex{})
	b.Add(Vertex{Pos: mgl32.Vec3{1, 0, 0}})
	_, err = b.Build()
	assert.Error(t, err)
}

func TestTriMeshInvariants(t *testing.T) {
	for name, m := range map[string]*TriMesh{
		"plane": NewPlaneMesh(5, -1),
		"cube":  NewCubeMesh(0.5),
	} {
		t.Run(name, func(t *testing.T) {
			n := m.VertexCount()
			assert.Len(t, m.Normals, 3*n)
			assert.Len(t, m.TexCoords, 2*n)
			assert.Zero(t, len(m.Indices)%3)
			for _, idx := range m.Indices {
				assert.Less(t, int(idx), n)
			}
			assert.True(t, m.HasTexCoords)
		})
	}
}

func TestPrimitiveSizes(t *testing.T) {
	plane := NewPlaneMesh(5, -1)
	assert.Equal(t, 4, plane.VertexCount())
	assert.Equal(t, 2, plane.TriangleCount())

	cube := NewCubeMesh(0.5)
	assert.Equal(t, 24, cube.VertexCount())
	assert.Equal(t, 12, cube.TriangleCount())

	lo, hi := cube.Bounds()
	assert.Equal(t, mgl32.Vec3{-0.5, -0.5, -0.5}, lo)
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0.5}, hi)
}

// TestPrimitiveWinding checks that every triangle faces the direction of its vertex normals
func TestPrimitiveWinding(t *testing.T) {
	for _, m := range []*TriMesh{NewPlaneMesh(1, 0), NewCubeMesh(1)} {
		for i := 0; i < len(m.Indices); i += 3 {
			a, b, c := m.Vertex(int(m.Indices[i])), m.Vertex(int(m.Indices[i+1])), m.Vertex(int(m.Indices[i+2]))
			faceNormal := b.Pos.Sub(a.Pos).Cross(c.Pos.Sub(a.Pos))
			assert.Greater(t, faceNormal.Dot(a.Normal), float32(0))
		}
	}
}

func TestBoundsOfEmptyMesh(t *testing.T) {
	lo, hi := (&TriMesh{}).Bounds()
	assert.Equal(t, mgl32.Vec3{}, lo)
	assert.Equal(t, mgl32.Vec3{}, hi)
}
