package renderer

import (
	"log"

	com "vulkan_shadow_mapping/common"
	"vulkan_shadow_mapping/model"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

// ScenePass draws the lit scene into the swap chain images. Casters and receivers use separate pipelines over the
// same layout, both sample the shadow map.
type ScenePass struct {
	renderPass  vk.RenderPass
	depthFormat vk.Format

	depthImage     *com.Image
	depthImageView vk.ImageView

	objectPipeline vk.Pipeline
	floorPipeline  vk.Pipeline
}

func NewScenePass(dc *com.Device, colorFormat vk.Format) (*ScenePass, error) {
	depthFormat, err := dc.FindDepthFormat()
	if err != nil {
		return nil, errors.Wrap(err, "scene depth format")
	}
	renderPassInfo := sceneRenderPassInfo(colorFormat, depthFormat)
	renderPass, err := com.VkCreateRenderPass(dc.Device, &renderPassInfo, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create scene render pass")
	}
	log.Println("Successfully created scene render pass")
	return &ScenePass{
		renderPass:  renderPass,
		depthFormat: depthFormat,
	}, nil
}

func sceneRenderPassInfo(colorFormat vk.Format, depthFormat vk.Format) vk.RenderPassCreateInfo {
	colorAttachment := vk.AttachmentDescription{
		Flags:          0,
		Format:         colorFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}
	colorAttachmentRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}
	depthAttachment := vk.AttachmentDescription{
		Flags:          0,
		Format:         depthFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	depthAttachmentRef := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	subpass := vk.SubpassDescription{
		Flags:                   0,
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		InputAttachmentCount:    0,
		PInputAttachments:       nil,
		ColorAttachmentCount:    1,
		PColorAttachments:       []vk.AttachmentReference{colorAttachmentRef},
		PResolveAttachments:     nil,
		PDepthStencilAttachment: &depthAttachmentRef,
		PreserveAttachmentCount: 0,
		PPreserveAttachments:    nil,
	}
	dependency := vk.SubpassDependency{
		SrcSubpass:      vk.SubpassExternal,
		DstSubpass:      0,
		SrcStageMask:    vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		DstStageMask:    vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		SrcAccessMask:   0,
		DstAccessMask:   vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
		DependencyFlags: 0,
	}
	return vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		PNext:           nil,
		Flags:           0,
		AttachmentCount: 2,
		PAttachments:    []vk.AttachmentDescription{colorAttachment, depthAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
}

// scenePipelineDescs returns the object pipeline for casters and the floor pipeline for receivers, in this order.
func (sp *ScenePass) scenePipelineDescs(shaders *ShaderStages, layout vk.PipelineLayout) []*pipelineDesc {
	object := &pipelineDesc{
		name:             "object",
		shaders:          shaders,
		layout:           layout,
		renderPass:       sp.renderPass,
		colorAttachments: 1,
		cullMode:         vk.CullModeNone,
		frontFace:        vk.FrontFaceCounterClockwise,
		depthCompare:     vk.CompareOpLessOrEqual,
		depthBias:        false,
	}
	floor := *object
	floor.name = "floor"
	return []*pipelineDesc{object, &floor}
}

func (sp *ScenePass) createPipelines(d vk.Device, layout vk.PipelineLayout, shaderDir string) error {
	shaders, err := LoadShaderStages(d, shaderDir, SCENE_VERT_SHADER, SCENE_FRAG_SHADER)
	if err != nil {
		return err
	}
	defer shaders.Destroy(d)

	descs := sp.scenePipelineDescs(shaders, layout)
	sp.objectPipeline, err = createGraphicsPipeline(d, descs[0])
	if err != nil {
		return err
	}
	sp.floorPipeline, err = createGraphicsPipeline(d, descs[1])
	if err != nil {
		sp.destroyPipelines(d)
		return err
	}
	return nil
}

func (sp *ScenePass) destroyPipelines(d vk.Device) {
	if sp.objectPipeline != nil {
		vk.DestroyPipeline(d, sp.objectPipeline, nil)
		sp.objectPipeline = nil
	}
	if sp.floorPipeline != nil {
		vk.DestroyPipeline(d, sp.floorPipeline, nil)
		sp.floorPipeline = nil
	}
}

// createDepthResources creates the depth attachment matching the current swap chain extent.
func (sp *ScenePass) createDepthResources(dc *com.Device, extent vk.Extent2D) error {
	img, err := com.CreateImage(
		dc,
		extent.Width,
		extent.Height,
		sp.depthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	)
	if err != nil {
		return errors.Wrap(err, "create scene depth image")
	}
	view, err := img.CreateView(dc, vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		img.Destroy(dc)
		return errors.Wrap(err, "create scene depth image view")
	}
	sp.depthImage = img
	sp.depthImageView = view
	return nil
}

func (sp *ScenePass) destroyDepthResources(dc *com.Device) {
	if sp.depthImage == nil {
		return
	}
	vk.DestroyImageView(dc.Device, sp.depthImageView, nil)
	sp.depthImage.Destroy(dc)
	sp.depthImage = nil
}

// record writes the scene pass into cmd: casters with the object pipeline first, receivers with the floor pipeline
// afterwards. Recording into cmd has to be started already.
func (sp *ScenePass) record(cmd vk.CommandBuffer, frameBuffer vk.Framebuffer, extent vk.Extent2D, layout vk.PipelineLayout, set vk.DescriptorSet, models []*model.Model) {
	clearValues := []vk.ClearValue{
		vk.NewClearValue([]float32{0, 0, 0, 1}), // color
		vk.NewClearDepthStencil(1, 0),           // depthStencil
	}
	renderPassInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		PNext:       nil,
		RenderPass:  sp.renderPass,
		Framebuffer: frameBuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(cmd, &renderPassInfo, vk.SubpassContentsInline)

	setViewportAndScissor(cmd, extent)
	vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, layout, 0, 1, []vk.DescriptorSet{set}, 0, nil)

	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, sp.objectPipeline)
	drawRole(cmd, models, model.RoleCaster)

	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, sp.floorPipeline)
	drawRole(cmd, models, model.RoleReceiver)

	vk.CmdEndRenderPass(cmd)
}

func drawRole(cmd vk.CommandBuffer, models []*model.Model, role model.Role) {
	for _, m := range models {
		if m.Role != role {
			continue
		}
		m.VBO.Bind(cmd)
		m.VBO.Draw(cmd)
	}
}

func (sp *ScenePass) Destroy(dc *com.Device) {
	sp.destroyPipelines(dc.Device)
	sp.destroyDepthResources(dc)
	vk.DestroyRenderPass(dc.Device, sp.renderPass, nil)
}
