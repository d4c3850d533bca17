package renderer

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDynamicStates(t *testing.T) {
	pd := &pipelineDesc{}
	assert.Equal(t, []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}, pd.dynamicStates())

	pd.depthBias = true
	assert.Equal(t,
		[]vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor, vk.DynamicStateDepthBias},
		pd.dynamicStates(),
	)
}

func TestColorBlendAttachments(t *testing.T) {
	assert.Empty(t, (&pipelineDesc{colorAttachments: 0}).colorBlendAttachments())

	attachments := (&pipelineDesc{colorAttachments: 1}).colorBlendAttachments()
	require.Len(t, attachments, 1)
	assert.Equal(t, vk.Bool32(vk.False), attachments[0].BlendEnable)
}

func TestShadowPipelineDesc(t *testing.T) {
	sp := &ShadowPass{}
	pd := sp.shadowPipelineDesc(nil, nil)
	assert.Equal(t, "shadow", pd.name)
	assert.Zero(t, pd.colorAttachments)
	assert.True(t, pd.depthBias)
	assert.Equal(t, vk.CompareOpLessOrEqual, pd.depthCompare)
	assert.Equal(t, vk.CullModeNone, pd.cullMode)
}

func TestScenePipelineDescs(t *testing.T) {
	sp := &ScenePass{}
	descs := sp.scenePipelineDescs(nil, nil)
	require.Len(t, descs, 2)
	assert.Equal(t, "object", descs[0].name)
	assert.Equal(t, "floor", descs[1].name)
	for _, pd := range descs {
		assert.Equal(t, 1, pd.colorAttachments)
		assert.False(t, pd.depthBias)
		assert.Equal(t, vk.CompareOpLessOrEqual, pd.depthCompare)
	}
}
