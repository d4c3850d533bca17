package renderer

import (
	"context"
	"log"
	"math"
	"time"

	com "vulkan_shadow_mapping/common"
	"vulkan_shadow_mapping/config"
	"vulkan_shadow_mapping/model"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/loov/hrtime"
	"github.com/veandco/go-sdl2/sdl"
)

const PROGRAM_NAME = "Vulkan shadow mapping"
const MAX_FRAMES_IN_FLIGHT = 2

type Core struct {
	cfg *config.Config

	// OS/Window level
	Win    *com.Window
	device *com.Device

	// Target level
	swapChain *com.SwapChain

	// Drawing infrastructure level
	descriptors    *DescriptorProvisioner
	pipelineLayout vk.PipelineLayout
	shadowPass     *ShadowPass
	scenePass      *ScenePass
	commandPool    vk.CommandPool
	shaderWatcher  *ShaderWatcher
	stopWatcher    context.CancelFunc

	// Frame level
	shadowCmdBuffers      []vk.CommandBuffer
	sceneCmdBuffers       []vk.CommandBuffer
	currentFrameIdx       int
	imageAvailableSems    []vk.Semaphore
	offscreenFinishedSems []vk.Semaphore
	renderFinishedSems    []vk.Semaphore
	inFlightFens          []vk.Fence

	// Data level
	sceneUBOs  *com.UniformBuffer[model.SceneUBO]
	shadowUBOs *com.UniformBuffer[model.ShadowUBO]

	// 3D World
	Cam          *model.Camera
	Light        *model.Light
	Clock        *AnimationClock
	AnimateLight bool
	models       []*model.Model
}

// Externally facing functions

func NewRenderCore(cfg *config.Config) (*Core, error) {
	c := &Core{cfg: cfg}
	if err := c.Initialize(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Core) Initialize() error {
	var err error
	var layers []string
	if c.cfg.Validation {
		layers = com.VALIDATION_LAYERS
	}
	c.Win, err = com.NewWindow(c.cfg.Window.Title, c.cfg.Window.Width, c.cfg.Window.Height, layers)
	if err != nil {
		return errors.Wrap(err, "create window")
	}
	c.device, err = com.NewDevice(c.Win)
	if err != nil {
		return errors.Wrap(err, "create device")
	}
	c.swapChain, err = com.NewSwapChain(c.device, c.Win)
	if err != nil {
		return errors.Wrap(err, "create swap chain")
	}
	if err = c.createCommandPool(); err != nil {
		return err
	}

	c.descriptors, err = NewDescriptorProvisioner(c.device.Device, MAX_FRAMES_IN_FLIGHT)
	if err != nil {
		return err
	}
	c.pipelineLayout, err = createPipelineLayout(c.device.Device, c.descriptors.Layout())
	if err != nil {
		return err
	}
	c.shadowPass, err = NewShadowPass(c.device, c.cfg.Shadow)
	if err != nil {
		return err
	}
	c.scenePass, err = NewScenePass(c.device, c.swapChain.Format.Format)
	if err != nil {
		return err
	}
	if err = c.createPipelines(); err != nil {
		return err
	}
	if err = c.createDepthResources(); err != nil {
		return err
	}
	if err = c.createFrameBuffers(); err != nil {
		return err
	}
	// Scene sets reference the shadow map in its sampled layout from the start
	if err = c.transitionImageLayout(c.shadowPass.ShadowMap.Image, vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilReadOnlyOptimal); err != nil {
		return err
	}

	if err = c.createUniformBuffers(); err != nil {
		return err
	}
	if err = c.descriptors.Provision(c.sceneUBOs, c.shadowUBOs, c.shadowPass.ShadowMap); err != nil {
		return err
	}
	if err = c.createCommandBuffers(); err != nil {
		return err
	}
	if err = c.createSyncObjects(); err != nil {
		return err
	}

	c.DefaultCam()
	c.DefaultLight()
	c.Clock = NewAnimationClock()
	if c.cfg.WatchShaders {
		c.startShaderWatcher()
	}
	return nil
}

type iterationHandler func(sdl.Event, *Core)

type drawHandler func(time.Duration, *Core)

// Loop this function represents the event-loop for user interaction and contains the primary draw call that
// renders each frame. The whole purpose of this function is to provide a neat interface for call backs and all
// basic functionality a well-behaved app should have. E.g.: Not rendering if minimized, close on Window 'close
// button', close on ESC key.
func (c *Core) Loop(ih iterationHandler, dh drawHandler) {
	t0 := hrtime.Now()
	frames := 0
	var event sdl.Event
	c.Win.Close = false
	for !c.Win.Close {
		for event = sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			// Doing some basic functionality for basic window handling
			switch ev := event.(type) {
			case *sdl.QuitEvent:
				c.Win.Close = true
			case *sdl.WindowEvent:
				if ev.Event == sdl.WINDOWEVENT_RESIZED {
					c.Win.Resized = true
				} else if ev.Event == sdl.WINDOWEVENT_MINIMIZED {
					c.Win.Minimized = true
				} else if ev.Event == sdl.WINDOWEVENT_RESTORED {
					c.Win.Minimized = false
				}
			case *sdl.KeyboardEvent:
				if ev.Keysym.Sym == sdl.K_ESCAPE {
					c.Win.Close = true
				}
			}
			ih(event, c)
		}
		if c.Win.Minimized {
			// Sleep until new events change c.Win.Minimized, the waking event goes back into the queue for the poll
			if event = sdl.WaitEvent(); event != nil {
				sdl.PushEvent(event)
			}
			continue
		}
		if c.shaderWatcher != nil && c.shaderWatcher.Changed() {
			c.reloadPipelines()
		}
		dh(hrtime.Since(t0), c)
		c.drawFrame()
		frames++
	}
	dt := hrtime.Since(t0)
	log.Printf("Elapsed: %v, rough avg fps: %v fps", dt, float64(frames)/dt.Seconds())
}

func (c *Core) Destroy() {
	// If user has not cleaned up all models manually, warn and remove them now
	if len(c.models) > 0 {
		log.Printf("Leftover models in render core!: %v", len(c.models))
		c.ClearScene()
	}
	if c.stopWatcher != nil {
		c.stopWatcher()
		c.shaderWatcher.Close()
	}

	// We need to wait for the last asynchronous call to finish before tear down
	c.device.WaitIdle()
	c.destroySwapChainAndDerivatives()

	c.sceneUBOs.Destroy(c.device)
	c.shadowUBOs.Destroy(c.device)
	c.descriptors.Destroy()

	// Destroy all infrastructure up to the sdl window
	for i := 0; i < MAX_FRAMES_IN_FLIGHT; i++ {
		vk.DestroySemaphore(c.device.Device, c.imageAvailableSems[i], nil)
		vk.DestroySemaphore(c.device.Device, c.offscreenFinishedSems[i], nil)
		vk.DestroySemaphore(c.device.Device, c.renderFinishedSems[i], nil)
		vk.DestroyFence(c.device.Device, c.inFlightFens[i], nil)
	}
	vk.DestroyCommandPool(c.device.Device, c.commandPool, nil)

	c.scenePass.Destroy(c.device)
	c.shadowPass.Destroy(c.device)
	vk.DestroyPipelineLayout(c.device.Device, c.pipelineLayout, nil)

	c.device.Destroy()
	c.Win.Destroy()
}

func (c *Core) destroySwapChainAndDerivatives() {
	c.scenePass.destroyDepthResources(c.device)
	c.swapChain.Destroy(c.device)
}

func (c *Core) createPipelines() error {
	if err := c.shadowPass.createPipeline(c.device.Device, c.pipelineLayout, c.cfg.Assets.ShaderDir); err != nil {
		return err
	}
	return c.scenePass.createPipelines(c.device.Device, c.pipelineLayout, c.cfg.Assets.ShaderDir)
}

// reloadPipelines rebuilds all pipelines from the shader files on disk. On failure the old pipelines stay in use.
func (c *Core) reloadPipelines() {
	c.device.WaitIdle()
	oldShadow := c.shadowPass.pipeline
	oldObject, oldFloor := c.scenePass.objectPipeline, c.scenePass.floorPipeline
	c.shadowPass.pipeline = nil
	c.scenePass.objectPipeline, c.scenePass.floorPipeline = nil, nil

	if err := c.createPipelines(); err != nil {
		log.Printf("Failed to reload shaders, keeping previous pipelines: %v", err)
		c.shadowPass.destroyPipeline(c.device.Device)
		c.scenePass.destroyPipelines(c.device.Device)
		c.shadowPass.pipeline = oldShadow
		c.scenePass.objectPipeline, c.scenePass.floorPipeline = oldObject, oldFloor
		return
	}
	for _, p := range []vk.Pipeline{oldShadow, oldObject, oldFloor} {
		vk.DestroyPipeline(c.device.Device, p, nil)
	}
	log.Printf("Successfully reloaded shaders from %s", c.cfg.Assets.ShaderDir)
}

func (c *Core) startShaderWatcher() {
	watcher, err := NewShaderWatcher(c.cfg.Assets.ShaderDir)
	if err != nil {
		log.Printf("Failed to start shader watcher, hot reload disabled: %v", err)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.shaderWatcher = watcher
	c.stopWatcher = cancel
	go watcher.Run(ctx)
}

func (c *Core) createDepthResources() error {
	if err := c.scenePass.createDepthResources(c.device, c.swapChain.Extend); err != nil {
		return err
	}
	return c.transitionImageLayout(c.scenePass.depthImage, vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal)
}

func (c *Core) createFrameBuffers() error {
	return c.swapChain.CreateFrameBuffers(c.device, c.scenePass.renderPass, &c.scenePass.depthImageView)
}

func (c *Core) createCommandPool() error {
	commandPool, err := com.VKSCreateCommandPool(
		c.device.Device,
		vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		*c.device.QFamilies.GraphicsFamily,
	)
	if err != nil {
		return errors.Wrap(err, "create command pool")
	}
	log.Printf("Successfully created command pool")
	c.commandPool = commandPool
	return nil
}

// createCommandBuffers allocates a shadow and a scene command buffer for every frame in flight.
func (c *Core) createCommandBuffers() error {
	var err error
	c.shadowCmdBuffers, err = com.VKAllocateCommandBuffersPrimary(c.device.Device, c.commandPool, MAX_FRAMES_IN_FLIGHT)
	if err != nil {
		return errors.Wrap(err, "allocate shadow command buffers")
	}
	c.sceneCmdBuffers, err = com.VKAllocateCommandBuffersPrimary(c.device.Device, c.commandPool, MAX_FRAMES_IN_FLIGHT)
	if err != nil {
		return errors.Wrap(err, "allocate scene command buffers")
	}
	log.Printf("Successfully allocated %d command buffers", len(c.shadowCmdBuffers)+len(c.sceneCmdBuffers))
	return nil
}

func (c *Core) createSyncObjects() error {
	c.imageAvailableSems = make([]vk.Semaphore, MAX_FRAMES_IN_FLIGHT)
	c.offscreenFinishedSems = make([]vk.Semaphore, MAX_FRAMES_IN_FLIGHT)
	c.renderFinishedSems = make([]vk.Semaphore, MAX_FRAMES_IN_FLIGHT)
	c.inFlightFens = make([]vk.Fence, MAX_FRAMES_IN_FLIGHT)
	var err error
	for i := 0; i < MAX_FRAMES_IN_FLIGHT; i++ {
		if c.imageAvailableSems[i], err = com.VKSCreateSemaphore(c.device.Device); err != nil {
			return errors.Wrap(err, "create image available semaphore")
		}
		if c.offscreenFinishedSems[i], err = com.VKSCreateSemaphore(c.device.Device); err != nil {
			return errors.Wrap(err, "create offscreen finished semaphore")
		}
		if c.renderFinishedSems[i], err = com.VKSCreateSemaphore(c.device.Device); err != nil {
			return errors.Wrap(err, "create render finished semaphore")
		}
		// Signalled, so the very first wait on it returns immediately
		if c.inFlightFens[i], err = com.VKSCreateFence(c.device.Device, true); err != nil {
			return errors.Wrap(err, "create in flight fence")
		}
	}
	return nil
}

func (c *Core) createUniformBuffers() error {
	var err error
	c.sceneUBOs, err = com.NewUniformBuffer[model.SceneUBO](c.device, MAX_FRAMES_IN_FLIGHT)
	if err != nil {
		return errors.Wrap(err, "scene uniform buffers")
	}
	c.shadowUBOs, err = com.NewUniformBuffer[model.ShadowUBO](c.device, MAX_FRAMES_IN_FLIGHT)
	if err != nil {
		return errors.Wrap(err, "shadow uniform buffers")
	}
	log.Printf("UBO buffer sizes: scene %d Byte, shadow %d Byte", c.sceneUBOs.Size(), c.shadowUBOs.Size())
	return nil
}

// Drawing and derivative functionality

func beginRecording(buffer vk.CommandBuffer) {
	beginInfo := vk.CommandBufferBeginInfo{
		SType:            vk.StructureTypeCommandBufferBeginInfo,
		PNext:            nil,
		Flags:            0,
		PInheritanceInfo: nil,
	}
	if err := com.VkBeginCommandBuffer(buffer, &beginInfo); err != nil {
		log.Panicf("Failed to begin recording command buffer: %v", err)
	}
}

func endRecording(buffer vk.CommandBuffer) {
	if err := com.VkEndCommandBuffer(buffer); err != nil {
		log.Panicf("Failed to record command buffer: %v", err)
	}
}

func (c *Core) recordShadowCommands(buffer vk.CommandBuffer, frameIdx int) {
	beginRecording(buffer)
	c.shadowPass.record(buffer, c.pipelineLayout, c.descriptors.ShadowSet(frameIdx), c.models)
	endRecording(buffer)
}

func (c *Core) recordSceneCommands(buffer vk.CommandBuffer, imageIdx uint32, frameIdx int) {
	beginRecording(buffer)
	c.scenePass.record(
		buffer,
		c.swapChain.FrameBuffers[imageIdx],
		c.swapChain.Extend,
		c.pipelineLayout,
		c.descriptors.SceneSet(frameIdx),
		c.models,
	)
	endRecording(buffer)
}

func (c *Core) drawFrame() {
	f := c.currentFrameIdx
	// Wait for frame to be ready - signalled by the inFlightFens
	vk.WaitForFences(c.device.Device, 1, []vk.Fence{c.inFlightFens[f]}, vk.True, math.MaxUint64)

	var imgIdx uint32
	result := vk.AcquireNextImage(c.device.Device, c.swapChain.Handle, math.MaxUint64, c.imageAvailableSems[f], nil, &imgIdx)
	// React on surface changes and other possible causes for failure (e.g.: Window resizing)
	if result == vk.ErrorOutOfDate {
		c.recreateSwapChain()
		return
	} else if result != vk.Success && result != vk.Suboptimal {
		log.Panicf("Failed to aquire image, AcquireNextImage(...) result code: %d", result)
	}

	// Reset the fence only if we are actually going to execute work that will put the fence into the signalled state
	vk.ResetFences(c.device.Device, 1, []vk.Fence{c.inFlightFens[f]})

	if err := c.updateUniformBuffer(f); err != nil {
		log.Panicf("Failed to update uniform buffers: %v", err)
	}

	vk.ResetCommandBuffer(c.shadowCmdBuffers[f], 0)
	c.recordShadowCommands(c.shadowCmdBuffers[f], f)
	vk.ResetCommandBuffer(c.sceneCmdBuffers[f], 0)
	c.recordSceneCommands(c.sceneCmdBuffers[f], imgIdx, f)

	// The offscreen pass does not touch the swap chain image but its completion is what the scene pass waits on,
	// so it holds back all of its work until the image was acquired.
	shadowSubmit := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		PNext:              nil,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{c.imageAvailableSems[f]},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{c.shadowCmdBuffers[f]},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{c.offscreenFinishedSems[f]},
	}
	if err := com.VkQueueSubmit(c.device.GraphicsQ, []vk.SubmitInfo{shadowSubmit}, nil); err != nil {
		log.Panicf("Failed to submit shadow command buffer: %v", err)
	}

	// The scene pass samples the shadow map from its fragment shader on
	sceneSubmit := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		PNext:              nil,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{c.offscreenFinishedSems[f]},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit | vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{c.sceneCmdBuffers[f]},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{c.renderFinishedSems[f]},
	}
	if err := com.VkQueueSubmit(c.device.GraphicsQ, []vk.SubmitInfo{sceneSubmit}, c.inFlightFens[f]); err != nil {
		log.Panicf("Failed to submit scene command buffer: %v", err)
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		PNext:              nil,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{c.renderFinishedSems[f]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{c.swapChain.Handle},
		PImageIndices:      []uint32{imgIdx},
		PResults:           nil,
	}
	result = vk.QueuePresent(c.device.PresentQ, &presentInfo)
	// React on surface changes and other possible causes for failure (e.g.: Window resizing)
	if result == vk.ErrorOutOfDate || result == vk.Suboptimal || c.Win.Resized {
		c.Win.Resized = false
		c.recreateSwapChain()
	} else if result != vk.Success {
		log.Panicf("Failed to present image, QueuePresent(...) result code: %d", result)
	}

	c.currentFrameIdx = (c.currentFrameIdx + 1) % MAX_FRAMES_IN_FLIGHT
}

func (c *Core) recreateSwapChain() {
	c.device.WaitIdle()
	c.destroySwapChainAndDerivatives()
	var err error
	c.swapChain, err = com.NewSwapChain(c.device, c.Win)
	if err != nil {
		log.Panicf("Failed to recreate swap chain: %v", err)
	}
	if err = c.createDepthResources(); err != nil {
		log.Panicf("Failed to recreate depth resources: %v", err)
	}
	if err = c.createFrameBuffers(); err != nil {
		log.Panicf("Failed to recreate frame buffers: %v", err)
	}
	c.scenePass.destroyPipelines(c.device.Device)
	if err = c.scenePass.createPipelines(c.device.Device, c.pipelineLayout, c.cfg.Assets.ShaderDir); err != nil {
		log.Panicf("Failed to recreate scene pipelines: %v", err)
	}
	log.Printf("Recreated swap chain (%dx%d)", c.swapChain.Extend.Width, c.swapChain.Extend.Height)
}
