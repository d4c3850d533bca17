package model

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Light is a spot light casting shadows. Its shadow map is rendered through a square perspective camera looking at
// the origin. Looking straight down is common, so up is +Z instead of +Y.
type Light struct {
	Camera
	origin mgl32.Vec3 // position the orbit starts from
}

func NewLight(pos mgl32.Vec3, fov, near, far float32) *Light {
	return &Light{
		Camera: Camera{
			ProjectionType: CAM_PERSPECTIVE_PROJECTION,
			Fov:            fov,
			Near:           near,
			Far:            far,
			Pos:            pos,
			Target:         mgl32.Vec3{},
			Up:             mgl32.Vec3{0, 0, 1},
		},
		origin: pos,
	}
}

func (l *Light) View() mgl32.Mat4 {
	return l.GetView()
}

// Projection is always square since the shadow map is.
func (l *Light) Projection() mgl32.Mat4 {
	return l.GetProjection(1)
}

// Orbit places the light at its starting position rotated by deg degrees about the +Y axis. Height and distance to
// the axis are preserved, a light on the axis does not move.
func (l *Light) Orbit(deg float32) {
	rad := float64(mgl32.DegToRad(deg))
	s, c := float32(math.Sin(rad)), float32(math.Cos(rad))
	o := l.origin
	l.Pos = mgl32.Vec3{c*o.X() + s*o.Z(), o.Y(), -s*o.X() + c*o.Z()}
}

// OnOrbitAxis reports whether the light starts on the +Y axis, where orbiting leaves it in place.
func (l *Light) OnOrbitAxis() bool {
	return mgl32.Vec2{l.origin.X(), l.origin.Z()}.Len() < 1e-4
}

// Reset moves the light back to where it started.
func (l *Light) Reset() {
	l.Pos = l.origin
}
