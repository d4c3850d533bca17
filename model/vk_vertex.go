package model

import "github.com/go-gl/mathgl/mgl32"

// Vertex is a comparable value, two vertices are the same vertex only if every component matches exactly. A vertex
// without texture coordinates carries (0,0), one without a normal carries (0,0,0).
type Vertex struct {
	Pos      mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
}
