package renderer

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutTransitionMasks(t *testing.T) {
	masks, err := layoutTransitionMasks(vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilReadOnlyOptimal)
	require.NoError(t, err)
	assert.Zero(t, masks.srcAccess)
	assert.Equal(t, vk.AccessFlags(vk.AccessShaderReadBit), masks.dstAccess)
	assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit), masks.dstStage)

	masks, err = layoutTransitionMasks(vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal)
	require.NoError(t, err)
	assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit), masks.dstStage)

	_, err = layoutTransitionMasks(vk.ImageLayoutDepthStencilReadOnlyOptimal, vk.ImageLayoutUndefined)
	assert.Error(t, err)
	_, err = layoutTransitionMasks(vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	assert.Error(t, err)
}

func TestTransitionAspect(t *testing.T) {
	assert.Equal(t,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit),
		transitionAspect(vk.FormatD32Sfloat, vk.ImageLayoutDepthStencilReadOnlyOptimal),
	)
	assert.Equal(t,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit|vk.ImageAspectStencilBit),
		transitionAspect(vk.FormatD24UnormS8Uint, vk.ImageLayoutDepthStencilAttachmentOptimal),
	)
	assert.Equal(t,
		vk.ImageAspectFlags(vk.ImageAspectColorBit),
		transitionAspect(vk.FormatR8g8b8a8Srgb, vk.ImageLayoutColorAttachmentOptimal),
	)
}
