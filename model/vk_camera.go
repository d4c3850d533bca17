package model

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	CAM_PERSPECTIVE_PROJECTION  = iota
	CAM_ORTHOGRAPHIC_PROJECTION = iota
)

// VULKAN_CLIP converts OpenGL style clip coordinates into Vulkan's: y points down and depth spans [0, 1].
var VULKAN_CLIP = mgl32.Mat4{
	1, 0, 0, 0,
	0, -1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Camera describes a viewpoint looking at a fixed target. Both the scene camera and the light use it, the light
// renders the shadow map through its own Camera.
type Camera struct {
	ProjectionType int

	Fov  float32 // vertical field of view in degrees
	Near float32
	Far  float32

	Pos    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3
}

func NewCamera(fov float32, near float32, far float32) *Camera {
	return &Camera{
		ProjectionType: CAM_PERSPECTIVE_PROJECTION,
		Fov:            fov,
		Near:           near,
		Far:            far,
		Pos:            mgl32.Vec3{0, 0, -2},
		Target:         mgl32.Vec3{},
		Up:             mgl32.Vec3{0, 1, 0},
	}
}

func (c *Camera) Move(v mgl32.Vec3) {
	c.Pos = c.Pos.Add(v)
}

func (c *Camera) SetTarget(v mgl32.Vec3) {
	c.Target = v
}

// GetView builds the world to camera transform. A camera sitting on its target keeps looking down +Z. A camera
// looking along its up vector is rolled onto another up vector.
func (c *Camera) GetView() mgl32.Mat4 {
	target := c.Target
	if c.Pos.ApproxEqual(target) {
		log.Printf("Failed to calculate view direction, target - position = [0,0,0]. Looking along z-axis.")
		target = c.Pos.Add(mgl32.Vec3{0, 0, 1})
	}
	return mgl32.LookAtV(c.Pos, target, viewUp(target.Sub(c.Pos), c.Up))
}

// viewUp returns up unless it is parallel to the view direction dir, then +Z or, for a dir along Z, +Y.
func viewUp(dir, up mgl32.Vec3) mgl32.Vec3 {
	if !isParallel(dir, up) {
		return up
	}
	if fallback := (mgl32.Vec3{0, 0, 1}); !isParallel(dir, fallback) {
		return fallback
	}
	return mgl32.Vec3{0, 1, 0}
}

func isParallel(a, b mgl32.Vec3) bool {
	if a.Len() == 0 || b.Len() == 0 {
		return true
	}
	return a.Normalize().Cross(b.Normalize()).Len() < 1e-4
}

// GetProjection returns the projection for the given viewport aspect ratio in Vulkan clip space.
func (c *Camera) GetProjection(aspect float32) mgl32.Mat4 {
	switch c.ProjectionType {
	case CAM_PERSPECTIVE_PROJECTION:
		return VulkanPerspective(c.Fov, aspect, c.Near, c.Far)
	case CAM_ORTHOGRAPHIC_PROJECTION:
		// the orthographic volume keeps the viewport's aspect ratio to avoid stretching
		return VULKAN_CLIP.Mul4(mgl32.Ortho(-aspect, aspect, -1, 1, c.Near, c.Far))
	default:
		log.Printf("Failed to select projection type, returning identity.")
		return mgl32.Ident4()
	}
}

// VulkanPerspective is a right handed perspective projection into Vulkan clip space, fov is given in degrees.
func VulkanPerspective(fov, aspect, near, far float32) mgl32.Mat4 {
	return VULKAN_CLIP.Mul4(mgl32.Perspective(mgl32.DegToRad(fov), aspect, near, far))
}
