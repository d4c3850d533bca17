package model

import (
	"vulkan_shadow_mapping/rawbytes"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"
)

const mat4Size = 16 * 4

// SceneUBO carries the transforms of the scene pass. The layout follows std140: five column major matrices followed
// by the light position padded to a vec4.
type SceneUBO struct {
	Model        mgl32.Mat4
	View         mgl32.Mat4
	Proj         mgl32.Mat4
	Normal       mgl32.Mat4
	DepthBiasMVP mgl32.Mat4
	LightPos     mgl32.Vec3
}

func (u SceneUBO) Size() vk.DeviceSize {
	return 5*mat4Size + 4*4
}

func (u SceneUBO) Bytes() []byte {
	out := make([]byte, 0, u.Size())
	for _, m := range []mgl32.Mat4{u.Model, u.View, u.Proj, u.Normal, u.DepthBiasMVP} {
		out = append(out, rawbytes.Float32Bytes(m[:])...)
	}
	lp := u.LightPos.Vec4(1)
	return append(out, rawbytes.Float32Bytes(lp[:])...)
}

// ShadowUBO carries the light space transforms of the shadow pass.
type ShadowUBO struct {
	Model mgl32.Mat4
	View  mgl32.Mat4
	Proj  mgl32.Mat4
}

func (u ShadowUBO) Size() vk.DeviceSize {
	return 3 * mat4Size
}

func (u ShadowUBO) Bytes() []byte {
	out := make([]byte, 0, u.Size())
	for _, m := range []mgl32.Mat4{u.Model, u.View, u.Proj} {
		out = append(out, rawbytes.Float32Bytes(m[:])...)
	}
	return out
}

// MVP is the full light space transform, the same product the shadow vertex shader computes.
func (u ShadowUBO) MVP() mgl32.Mat4 {
	return u.Proj.Mul4(u.View).Mul4(u.Model)
}
