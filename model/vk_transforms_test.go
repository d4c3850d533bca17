package model

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func TestModelRotation(t *testing.T) {
	assert.True(t, ModelRotation(0).ApproxEqual(mgl32.Ident4()))

	// three seconds at 30 degrees per second is a quarter turn
	x := ModelRotation(3).Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.True(t, x.ApproxEqualThreshold(mgl32.Vec4{0, 0, -1, 1}, eps), "got %v", x)

	full := ModelRotation(12)
	assert.True(t, full.ApproxEqualThreshold(mgl32.Ident4(), eps))
}

func TestVulkanPerspectiveDepthRange(t *testing.T) {
	p := VulkanPerspective(45, 4.0/3.0, 0.1, 100)

	near := p.Mul4x1(mgl32.Vec4{0, 0, -0.1, 1})
	far := p.Mul4x1(mgl32.Vec4{0, 0, -100, 1})
	assert.InDelta(t, 0, near.Z()/near.W(), eps)
	assert.InDelta(t, 1, far.Z()/far.W(), eps)

	// y points down in Vulkan clip space, so a point above the axis ends up with a negative y
	above := p.Mul4x1(mgl32.Vec4{0, 1, -5, 1})
	assert.Less(t, above.Y()/above.W(), float32(0))
}

func TestCameraProjectionTypes(t *testing.T) {
	cam := NewCamera(45, 0.1, 100)
	assert.True(t, cam.GetProjection(1).ApproxEqual(VulkanPerspective(45, 1, 0.1, 100)))

	cam.ProjectionType = CAM_ORTHOGRAPHIC_PROJECTION
	ortho := cam.GetProjection(2)
	edge := ortho.Mul4x1(mgl32.Vec4{2, 1, -0.1, 1})
	assert.InDelta(t, 1, edge.X(), eps)
	assert.InDelta(t, -1, edge.Y(), eps)
	assert.InDelta(t, 0, edge.Z(), eps)

	cam.ProjectionType = 42
	assert.Equal(t, mgl32.Ident4(), cam.GetProjection(1))
}

func TestCameraViewFallsBackWhenOnTarget(t *testing.T) {
	cam := NewCamera(45, 0.1, 100)
	cam.Pos = mgl32.Vec3{1, 1, 1}
	cam.SetTarget(mgl32.Vec3{1, 1, 1})
	v := cam.GetView()
	for _, f := range v {
		assert.False(t, math.IsNaN(float64(f)), "view contains NaN: %v", v)
	}
}

func assertNoNaN(t *testing.T, m mgl32.Mat4) {
	t.Helper()
	for _, f := range m {
		assert.False(t, math.IsNaN(float64(f)), "matrix contains NaN: %v", m)
	}
}

func TestCameraViewStraightDown(t *testing.T) {
	// 20 steps left and 20 forward from the default eye end up right above the target
	cam := NewCamera(45, 0.1, 100)
	cam.Pos = mgl32.Vec3{10, 10, 10}
	for i := 0; i < 20; i++ {
		cam.Move(mgl32.Vec3{-0.5, 0, 0})
		cam.Move(mgl32.Vec3{0, 0, -0.5})
	}
	require.Equal(t, mgl32.Vec3{0, 10, 0}, cam.Pos)

	v := cam.GetView()
	assertNoNaN(t, v)
	origin := v.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.True(t, origin.ApproxEqualThreshold(mgl32.Vec4{0, 0, -10, 1}, eps), "got %v", origin)

	scene := NewSceneUBO(mgl32.Ident4(), cam, 1, ShadowUBO{}, mgl32.Vec3{})
	assertNoNaN(t, scene.Normal)

	cam.Pos = mgl32.Vec3{0, -10, 0}
	assertNoNaN(t, cam.GetView())
}

func TestLightViewAlongUp(t *testing.T) {
	l := NewLight(mgl32.Vec3{0, 0, 25}, 60, 0.1, 100)
	v := l.View()
	assertNoNaN(t, v)
	origin := v.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.True(t, origin.ApproxEqualThreshold(mgl32.Vec4{0, 0, -25, 1}, eps), "got %v", origin)
}

func TestViewUp(t *testing.T) {
	up := mgl32.Vec3{0, 1, 0}
	assert.Equal(t, up, viewUp(mgl32.Vec3{1, -1, 0}, up))
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, viewUp(mgl32.Vec3{0, -3, 0}, up))
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, viewUp(mgl32.Vec3{0, 0, -3}, mgl32.Vec3{0, 0, 1}))
}

func TestCameraMoveKeepsTarget(t *testing.T) {
	cam := NewCamera(45, 0.1, 100)
	cam.Pos = mgl32.Vec3{10, 10, 10}
	cam.Move(mgl32.Vec3{0, 0, -0.5})
	cam.Move(mgl32.Vec3{1, 0, 0})
	assert.Equal(t, mgl32.Vec3{11, 10, 9.5}, cam.Pos)
	assert.Equal(t, mgl32.Vec3{}, cam.Target)
}

func TestLightView(t *testing.T) {
	l := NewLight(mgl32.Vec3{0, 25, 0}, 60, 0.1, 100)
	origin := l.View().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.True(t, origin.ApproxEqualThreshold(mgl32.Vec4{0, 0, -25, 1}, eps), "got %v", origin)

	// the origin sits in the middle of the shadow map
	clip := l.Projection().Mul4x1(origin)
	assert.InDelta(t, 0, clip.X()/clip.W(), eps)
	assert.InDelta(t, 0, clip.Y()/clip.W(), eps)
}

func TestLightOrbit(t *testing.T) {
	l := NewLight(mgl32.Vec3{10, 5, 0}, 60, 0.1, 100)
	l.Orbit(90)
	assert.True(t, l.Pos.ApproxEqualThreshold(mgl32.Vec3{0, 5, -10}, eps), "got %v", l.Pos)

	l.Orbit(37)
	radius := mgl32.Vec2{l.Pos.X(), l.Pos.Z()}.Len()
	assert.InDelta(t, 10, radius, eps)
	assert.Equal(t, float32(5), l.Pos.Y())

	l.Reset()
	assert.Equal(t, mgl32.Vec3{10, 5, 0}, l.Pos)

	fixed := NewLight(mgl32.Vec3{0, 25, 0}, 60, 0.1, 100)
	fixed.Orbit(123)
	assert.True(t, fixed.Pos.ApproxEqualThreshold(mgl32.Vec3{0, 25, 0}, eps))
}

func TestLightOnOrbitAxis(t *testing.T) {
	assert.True(t, NewLight(mgl32.Vec3{0, 25, 0}, 60, 0.1, 100).OnOrbitAxis())
	assert.False(t, NewLight(mgl32.Vec3{10, 25, 0}, 60, 0.1, 100).OnOrbitAxis())

	// decided by the starting point, not the current one
	l := NewLight(mgl32.Vec3{0, 25, 5}, 60, 0.1, 100)
	l.Orbit(90)
	assert.False(t, l.OnOrbitAxis())
}

func TestNewSceneUBO(t *testing.T) {
	cam := NewCamera(45, 0.1, 100)
	cam.Pos = mgl32.Vec3{10, 10, 10}
	light := NewLight(mgl32.Vec3{0, 25, 0}, 60, 0.1, 100)
	rot := ModelRotation(1.5)

	shadow := NewShadowUBO(rot, light)
	scene := NewSceneUBO(rot, cam, 800.0/600.0, shadow, light.Pos)

	assert.Equal(t, rot, scene.Model)
	assert.Equal(t, light.Pos, scene.LightPos)
	assert.True(t, scene.DepthBiasMVP.ApproxEqualThreshold(shadow.Proj.Mul4(shadow.View).Mul4(rot), eps))
	assert.True(t, scene.Proj.ApproxEqual(VulkanPerspective(45, 800.0/600.0, 0.1, 100)))

	// rotation and look-at are rigid, so the normal matrix keeps the rotational part of the model view matrix
	assert.True(t, scene.Normal.Mat3().ApproxEqualThreshold(scene.View.Mul4(rot).Mat3(), eps))
}
