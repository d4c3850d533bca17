package renderer

import (
	"time"

	"vulkan_shadow_mapping/model"

	"github.com/loov/hrtime"
)

// AnimationClock measures the animation time driving model rotation and light orbit. It can be paused and reset
// independently of the render loop.
type AnimationClock struct {
	now      func() time.Duration
	start    time.Duration
	pausedAt time.Duration
	paused   bool
}

func NewAnimationClock() *AnimationClock {
	return newAnimationClock(hrtime.Now)
}

func newAnimationClock(now func() time.Duration) *AnimationClock {
	start := now()
	return &AnimationClock{
		now:      now,
		start:    start,
		pausedAt: start,
	}
}

func (ac *AnimationClock) Elapsed() time.Duration {
	if ac.paused {
		return ac.pausedAt - ac.start
	}
	return ac.now() - ac.start
}

// Seconds is Elapsed as used by the shaders' transforms.
func (ac *AnimationClock) Seconds() float32 {
	return float32(ac.Elapsed().Seconds())
}

func (ac *AnimationClock) Paused() bool {
	return ac.paused
}

// TogglePause freezes the clock or resumes it where it was frozen.
func (ac *AnimationClock) TogglePause() {
	if ac.paused {
		ac.start += ac.now() - ac.pausedAt
		ac.paused = false
		return
	}
	ac.pausedAt = ac.now()
	ac.paused = true
}

// Reset restarts the clock at zero, a paused clock stays paused.
func (ac *AnimationClock) Reset() {
	ac.start = ac.now()
	ac.pausedAt = ac.start
}

// frameUniforms derives both uniform blocks of a frame from the animation time t in seconds. A light that is not
// animated stays wherever it was left.
func frameUniforms(t float32, cam *model.Camera, light *model.Light, aspect float32, orbitSpeed float32, animateLight bool) (model.SceneUBO, model.ShadowUBO) {
	if animateLight {
		light.Orbit(t * orbitSpeed)
	}
	modelMat := model.ModelRotation(t)
	shadow := model.NewShadowUBO(modelMat, light)
	scene := model.NewSceneUBO(modelMat, cam, aspect, shadow, light.Pos)
	return scene, shadow
}

func (c *Core) updateUniformBuffer(frameIdx int) error {
	scene, shadow := frameUniforms(
		c.Clock.Seconds(),
		c.Cam,
		c.Light,
		c.swapChain.Aspect,
		c.cfg.Light.OrbitSpeed,
		c.AnimateLight,
	)
	if err := c.shadowUBOs.Update(frameIdx, shadow); err != nil {
		return err
	}
	return c.sceneUBOs.Update(frameIdx, scene)
}
