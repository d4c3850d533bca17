package model

import "github.com/go-gl/mathgl/mgl32"

// ROTATION_SPEED is the model's spin in degrees per second.
const ROTATION_SPEED = 30

// ModelRotation spins the scene about +Y, t is the animation time in seconds.
func ModelRotation(t float32) mgl32.Mat4 {
	return mgl32.HomogRotate3DY(mgl32.DegToRad(t * ROTATION_SPEED))
}

func NewShadowUBO(modelMat mgl32.Mat4, light *Light) ShadowUBO {
	return ShadowUBO{
		Model: modelMat,
		View:  light.View(),
		Proj:  light.Projection(),
	}
}

// NewSceneUBO assembles the scene pass transforms. The normal matrix keeps normals perpendicular in view space
// under non uniform scaling, the depth bias MVP takes a vertex into the light's clip space for the shadow lookup.
func NewSceneUBO(modelMat mgl32.Mat4, cam *Camera, aspect float32, shadow ShadowUBO, lightPos mgl32.Vec3) SceneUBO {
	view := cam.GetView()
	return SceneUBO{
		Model:        modelMat,
		View:         view,
		Proj:         cam.GetProjection(aspect),
		Normal:       view.Mul4(modelMat).Inv().Transpose(),
		DepthBiasMVP: shadow.MVP(),
		LightPos:     lightPos,
	}
}
