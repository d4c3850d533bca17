package model

import "github.com/go-gl/mathgl/mgl32"

// Generated meshes for when no asset file is at hand. Corners are wound counter-clockwise seen from the side the
// normal points to.

// NewPlaneMesh builds a square in the XZ plane at height y facing +Y.
func NewPlaneMesh(halfSize float32, y float32) *TriMesh {
	b := NewMeshBuilder()
	up := mgl32.Vec3{0, 1, 0}
	corners := []Vertex{
		{Pos: mgl32.Vec3{-halfSize, y, -halfSize}, Normal: up, TexCoord: mgl32.Vec2{0, 0}},
		{Pos: mgl32.Vec3{-halfSize, y, halfSize}, Normal: up, TexCoord: mgl32.Vec2{0, 1}},
		{Pos: mgl32.Vec3{halfSize, y, halfSize}, Normal: up, TexCoord: mgl32.Vec2{1, 1}},
		{Pos: mgl32.Vec3{halfSize, y, -halfSize}, Normal: up, TexCoord: mgl32.Vec2{1, 0}},
	}
	for _, i := range []int{0, 1, 2, 2, 3, 0} {
		b.AddTextured(corners[i])
	}
	m, _ := b.Build()
	return m
}

// NewCubeMesh builds an axis aligned cube centered on the origin. Faces do not share corners since each carries its
// own normal, so the cube has 24 vertices.
func NewCubeMesh(halfSize float32) *TriMesh {
	b := NewMeshBuilder()
	faces := []struct {
		normal, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}
	for _, f := range faces {
		center := f.normal.Mul(halfSize)
		u, v := f.u.Mul(halfSize), f.v.Mul(halfSize)
		corners := []Vertex{
			{Pos: center.Sub(u).Sub(v), Normal: f.normal, TexCoord: mgl32.Vec2{0, 1}},
			{Pos: center.Add(u).Sub(v), Normal: f.normal, TexCoord: mgl32.Vec2{1, 1}},
			{Pos: center.Add(u).Add(v), Normal: f.normal, TexCoord: mgl32.Vec2{1, 0}},
			{Pos: center.Sub(u).Add(v), Normal: f.normal, TexCoord: mgl32.Vec2{0, 0}},
		}
		for _, i := range []int{0, 1, 2, 2, 3, 0} {
			b.AddTextured(corners[i])
		}
	}
	m, _ := b.Build()
	return m
}
