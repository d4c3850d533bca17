package renderer

import (
	"log"

	com "vulkan_shadow_mapping/common"
	"vulkan_shadow_mapping/config"
	"vulkan_shadow_mapping/model"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

const SHADOW_MAP_FORMAT = vk.FormatD32Sfloat

// ShadowPass renders the depth of all shadow casters from the light's point of view into a square depth texture.
// The texture is sampled by the scene pass afterwards.
type ShadowPass struct {
	size         uint32
	biasConstant float32
	biasSlope    float32

	ShadowMap   *com.Texture
	renderPass  vk.RenderPass
	frameBuffer vk.Framebuffer
	pipeline    vk.Pipeline
}

func NewShadowPass(dc *com.Device, cfg config.ShadowConfig) (*ShadowPass, error) {
	format, err := dc.FindSupportedFormat(
		[]vk.Format{SHADOW_MAP_FORMAT},
		vk.ImageTilingOptimal,
		vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit|vk.FormatFeatureSampledImageBit),
	)
	if err != nil {
		return nil, errors.Wrap(err, "shadow map format")
	}
	sp := &ShadowPass{
		size:         cfg.MapSize,
		biasConstant: cfg.BiasConstant,
		biasSlope:    cfg.BiasSlope,
	}
	sp.ShadowMap, err = com.NewDepthTexture(dc, sp.size, sp.size, format)
	if err != nil {
		return nil, errors.Wrap(err, "create shadow map")
	}

	renderPassInfo := shadowRenderPassInfo(format)
	sp.renderPass, err = com.VkCreateRenderPass(dc.Device, &renderPassInfo, nil)
	if err != nil {
		sp.ShadowMap.Destroy(dc)
		return nil, errors.Wrap(err, "create shadow render pass")
	}

	framebufferInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		PNext:           nil,
		Flags:           0,
		RenderPass:      sp.renderPass,
		AttachmentCount: 1,
		PAttachments:    []vk.ImageView{sp.ShadowMap.View},
		Width:           sp.size,
		Height:          sp.size,
		Layers:          1,
	}
	sp.frameBuffer, err = com.VkCreateFrameBuffer(dc.Device, &framebufferInfo, nil)
	if err != nil {
		vk.DestroyRenderPass(dc.Device, sp.renderPass, nil)
		sp.ShadowMap.Destroy(dc)
		return nil, errors.Wrap(err, "create shadow frame buffer")
	}
	log.Printf("Successfully created shadow pass (%dx%d)", sp.size, sp.size)
	return sp, nil
}

// shadowRenderPassInfo describes a single depth-only subpass. The depth image is cleared on load, kept on store and
// left in DEPTH_STENCIL_READ_ONLY_OPTIMAL so that the scene pass can sample it without an explicit barrier.
func shadowRenderPassInfo(depthFormat vk.Format) vk.RenderPassCreateInfo {
	depthAttachment := vk.AttachmentDescription{
		Flags:          0,
		Format:         depthFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutDepthStencilReadOnlyOptimal,
	}
	depthAttachmentRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	subpass := vk.SubpassDescription{
		Flags:                   0,
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		InputAttachmentCount:    0,
		PInputAttachments:       nil,
		ColorAttachmentCount:    0,
		PColorAttachments:       nil,
		PResolveAttachments:     nil,
		PDepthStencilAttachment: &depthAttachmentRef,
		PreserveAttachmentCount: 0,
		PPreserveAttachments:    nil,
	}
	dependencies := shadowSubpassDependencies()
	return vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		PNext:           nil,
		Flags:           0,
		AttachmentCount: 1,
		PAttachments:    []vk.AttachmentDescription{depthAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	}
}

// shadowSubpassDependencies guard the depth image against earlier reads before the pass writes it, and make the
// written depth visible to later reads.
func shadowSubpassDependencies() []vk.SubpassDependency {
	depthAccess := vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit)
	return []vk.SubpassDependency{
		{
			SrcSubpass:      vk.SubpassExternal,
			DstSubpass:      0,
			SrcStageMask:    vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
			DstStageMask:    vk.PipelineStageFlags(vk.PipelineStageLateFragmentTestsBit),
			SrcAccessMask:   vk.AccessFlags(vk.AccessMemoryReadBit),
			DstAccessMask:   depthAccess,
			DependencyFlags: vk.DependencyFlags(vk.DependencyByRegionBit),
		},
		{
			SrcSubpass:      0,
			DstSubpass:      vk.SubpassExternal,
			SrcStageMask:    vk.PipelineStageFlags(vk.PipelineStageLateFragmentTestsBit),
			DstStageMask:    vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
			SrcAccessMask:   depthAccess,
			DstAccessMask:   vk.AccessFlags(vk.AccessMemoryReadBit),
			DependencyFlags: vk.DependencyFlags(vk.DependencyByRegionBit),
		},
	}
}

// shadowPipelineDesc has no color attachments and leaves the bias factors to vk.CmdSetDepthBias.
func (sp *ShadowPass) shadowPipelineDesc(shaders *ShaderStages, layout vk.PipelineLayout) *pipelineDesc {
	return &pipelineDesc{
		name:             "shadow",
		shaders:          shaders,
		layout:           layout,
		renderPass:       sp.renderPass,
		colorAttachments: 0,
		cullMode:         vk.CullModeNone,
		frontFace:        vk.FrontFaceCounterClockwise,
		depthCompare:     vk.CompareOpLessOrEqual,
		depthBias:        true,
	}
}

func (sp *ShadowPass) createPipeline(d vk.Device, layout vk.PipelineLayout, shaderDir string) error {
	shaders, err := LoadShaderStages(d, shaderDir, SHADOW_VERT_SHADER, SHADOW_FRAG_SHADER)
	if err != nil {
		return err
	}
	// Shader mode deletion can be done right after pipeline creation
	defer shaders.Destroy(d)

	pipeline, err := createGraphicsPipeline(d, sp.shadowPipelineDesc(shaders, layout))
	if err != nil {
		return err
	}
	sp.pipeline = pipeline
	return nil
}

func (sp *ShadowPass) destroyPipeline(d vk.Device) {
	if sp.pipeline != nil {
		vk.DestroyPipeline(d, sp.pipeline, nil)
		sp.pipeline = nil
	}
}

func (sp *ShadowPass) extent() vk.Extent2D {
	return vk.Extent2D{Width: sp.size, Height: sp.size}
}

// record writes the shadow pass for all casters into cmd. Recording into cmd has to be started already.
func (sp *ShadowPass) record(cmd vk.CommandBuffer, layout vk.PipelineLayout, set vk.DescriptorSet, models []*model.Model) {
	clearValues := []vk.ClearValue{
		vk.NewClearDepthStencil(1, 0),
	}
	renderPassInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		PNext:       nil,
		RenderPass:  sp.renderPass,
		Framebuffer: sp.frameBuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: sp.extent(),
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(cmd, &renderPassInfo, vk.SubpassContentsInline)

	setViewportAndScissor(cmd, sp.extent())
	// Constant bias is applied always, slope bias scales with the polygon's depth slope
	vk.CmdSetDepthBias(cmd, sp.biasConstant, 0, sp.biasSlope)

	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, sp.pipeline)
	vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, layout, 0, 1, []vk.DescriptorSet{set}, 0, nil)
	for _, m := range models {
		if !m.Role.CastsShadow() {
			continue
		}
		m.VBO.Bind(cmd)
		m.VBO.Draw(cmd)
	}

	vk.CmdEndRenderPass(cmd)
}

func (sp *ShadowPass) Destroy(dc *com.Device) {
	sp.destroyPipeline(dc.Device)
	vk.DestroyFramebuffer(dc.Device, sp.frameBuffer, nil)
	vk.DestroyRenderPass(dc.Device, sp.renderPass, nil)
	sp.ShadowMap.Destroy(dc)
}
