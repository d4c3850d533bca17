package renderer

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShadowRenderPassInfo(t *testing.T) {
	info := shadowRenderPassInfo(SHADOW_MAP_FORMAT)
	require.Len(t, info.PAttachments, 1)
	depth := info.PAttachments[0]
	assert.Equal(t, vk.FormatD32Sfloat, depth.Format)
	assert.Equal(t, vk.AttachmentLoadOpClear, depth.LoadOp)
	assert.Equal(t, vk.AttachmentStoreOpStore, depth.StoreOp)
	// sampled by the scene pass right after
	assert.Equal(t, vk.ImageLayoutDepthStencilReadOnlyOptimal, depth.FinalLayout)

	require.Len(t, info.PSubpasses, 1)
	assert.Zero(t, info.PSubpasses[0].ColorAttachmentCount)
	require.NotNil(t, info.PSubpasses[0].PDepthStencilAttachment)
	assert.Equal(t, vk.ImageLayoutDepthStencilAttachmentOptimal, info.PSubpasses[0].PDepthStencilAttachment.Layout)
	assert.Equal(t, uint32(2), info.DependencyCount)
}

func TestShadowSubpassDependencies(t *testing.T) {
	deps := shadowSubpassDependencies()
	require.Len(t, deps, 2)

	in, out := deps[0], deps[1]
	assert.Equal(t, uint32(vk.SubpassExternal), in.SrcSubpass)
	assert.Equal(t, uint32(0), in.DstSubpass)
	assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageLateFragmentTestsBit), in.DstStageMask)
	assert.Equal(t, uint32(0), out.SrcSubpass)
	assert.Equal(t, uint32(vk.SubpassExternal), out.DstSubpass)
	assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageLateFragmentTestsBit), out.SrcStageMask)

	// the two dependencies mirror each other
	assert.Equal(t, in.SrcStageMask, out.DstStageMask)
	assert.Equal(t, in.SrcAccessMask, out.DstAccessMask)
	assert.Equal(t, in.DstAccessMask, out.SrcAccessMask)
	for _, d := range deps {
		assert.Equal(t, vk.DependencyFlags(vk.DependencyByRegionBit), d.DependencyFlags)
	}
}

func TestSceneRenderPassInfo(t *testing.T) {
	info := sceneRenderPassInfo(vk.FormatB8g8r8a8Srgb, vk.FormatD32Sfloat)
	require.Len(t, info.PAttachments, 2)
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, info.PAttachments[0].Format)
	assert.Equal(t, vk.ImageLayoutPresentSrc, info.PAttachments[0].FinalLayout)
	assert.Equal(t, vk.FormatD32Sfloat, info.PAttachments[1].Format)
	assert.Equal(t, vk.AttachmentStoreOpDontCare, info.PAttachments[1].StoreOp)

	require.Len(t, info.PSubpasses, 1)
	assert.Equal(t, uint32(1), info.PSubpasses[0].ColorAttachmentCount)
	assert.Equal(t, uint32(1), info.PSubpasses[0].PDepthStencilAttachment.Attachment)
}
