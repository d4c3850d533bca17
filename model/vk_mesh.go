package model

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

// TriMesh is a triangle list split into one flat float stream per attribute, ready to be uploaded as a
// non-interleaved vertex buffer. Every vertex is unique, Indices reference them three per triangle.
type TriMesh struct {
	Positions    []float32
	Normals      []float32
	TexCoords    []float32
	Indices      []uint32
	HasTexCoords bool
}

func (m *TriMesh) VertexCount() int {
	return len(m.Positions) / 3
}

func (m *TriMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Vertex reassembles the i-th unique vertex from the attribute streams.
func (m *TriMesh) Vertex(i int) Vertex {
	return Vertex{
		Pos:      mgl32.Vec3{m.Positions[3*i], m.Positions[3*i+1], m.Positions[3*i+2]},
		Normal:   mgl32.Vec3{m.Normals[3*i], m.Normals[3*i+1], m.Normals[3*i+2]},
		TexCoord: mgl32.Vec2{m.TexCoords[2*i], m.TexCoords[2*i+1]},
	}
}

// Bounds returns the component wise minimum and maximum of all positions.
func (m *TriMesh) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	if m.VertexCount() == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	inf := float32(math.Inf(1))
	lo := mgl32.Vec3{inf, inf, inf}
	hi := mgl32.Vec3{-inf, -inf, -inf}
	for i := 0; i < len(m.Positions); i += 3 {
		for c := 0; c < 3; c++ {
			v := m.Positions[i+c]
			if v < lo[c] {
				lo[c] = v
			}
			if v > hi[c] {
				hi[c] = v
			}
		}
	}
	return lo, hi
}

// MeshBuilder collects triangle corners and merges those that are exactly equal. Unique vertices keep the order in
// which they were first seen.
type MeshBuilder struct {
	vertices     []Vertex
	lookup       map[Vertex]uint32
	indices      []uint32
	hasTexCoords bool
}

func NewMeshBuilder() *MeshBuilder {
	return &MeshBuilder{
		lookup: make(map[Vertex]uint32),
	}
}

// Add appends a corner without texture coordinates and returns the index it was stored under.
func (b *MeshBuilder) Add(v Vertex) uint32 {
	idx, ok := b.lookup[v]
	if !ok {
		idx = uint32(len(b.vertices))
		b.vertices = append(b.vertices, v)
		b.lookup[v] = idx
	}
	b.indices = append(b.indices, idx)
	return idx
}

// AddTextured is Add for a corner that came with texture coordinates of its own.
func (b *MeshBuilder) AddTextured(v Vertex) uint32 {
	b.hasTexCoords = true
	return b.Add(v)
}

func (b *MeshBuilder) VertexCount() int {
	return len(b.vertices)
}

func (b *MeshBuilder) IndexCount() int {
	return len(b.indices)
}

// Build flattens the collected vertices into a TriMesh. It fails if nothing was added or the corners do not form
// whole triangles.
func (b *MeshBuilder) Build() (*TriMesh, error) {
	if len(b.indices) == 0 {
		return nil, errors.New("mesh has no triangles")
	}
	if len(b.indices)%3 != 0 {
		return nil, errors.Newf("mesh has %d indices which do not form whole triangles", len(b.indices))
	}
	n := len(b.vertices)
	m := &TriMesh{
		Positions:    make([]float32, 0, 3*n),
		Normals:      make([]float32, 0, 3*n),
		TexCoords:    make([]float32, 0, 2*n),
		Indices:      append([]uint32(nil), b.indices...),
		HasTexCoords: b.hasTexCoords,
	}
	for _, v := range b.vertices {
		m.Positions = append(m.Positions, v.Pos[:]...)
		m.Normals = append(m.Normals, v.Normal[:]...)
		m.TexCoords = append(m.TexCoords, v.TexCoord[:]...)
	}
	return m, nil
}
