package common

import (
	"encoding/binary"
	"math"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVertexLayout(t *testing.T) {
	l := NewVertexLayout(4, false)
	assert.Equal(t, vk.DeviceSize(0), l.PositionOffset)
	assert.Equal(t, vk.DeviceSize(48), l.NormalOffset)
	assert.Equal(t, vk.DeviceSize(96), l.Size)
	assert.Equal(t, []vk.DeviceSize{0, 48}, l.Offsets())

	lt := NewVertexLayout(4, true)
	assert.Equal(t, vk.DeviceSize(96), lt.TexCoordOffset)
	assert.Equal(t, vk.DeviceSize(128), lt.Size)
	assert.Equal(t, []vk.DeviceSize{0, 48, 96}, lt.Offsets())
}

func TestVertexInputDescriptions(t *testing.T) {
	bindings, attributes := VertexInputDescriptions(false)
	require.Len(t, bindings, 2)
	require.Len(t, attributes, 2)
	for i := range attributes {
		assert.Equal(t, attributes[i].Location, attributes[i].Binding)
		assert.Equal(t, uint32(0), attributes[i].Offset)
		assert.Equal(t, vk.FormatR32g32b32Sfloat, attributes[i].Format)
	}
	assert.Equal(t, uint32(12), bindings[0].Stride)
	assert.Equal(t, uint32(12), bindings[1].Stride)

	bindings, attributes = VertexInputDescriptions(true)
	require.Len(t, bindings, 3)
	require.Len(t, attributes, 3)
	assert.Equal(t, uint32(TEXCOORD_LOCATION), attributes[2].Location)
	assert.Equal(t, vk.FormatR32g32Sfloat, attributes[2].Format)
	assert.Equal(t, uint32(8), bindings[2].Stride)
}

func TestPackVertexStreams(t *testing.T) {
	positions := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	normals := []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}

	layout, payload, err := PackVertexStreams(positions, normals, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), layout.VertexCount)
	assert.False(t, layout.HasTexCoords)
	require.Len(t, payload, int(layout.Size))

	readFloat := func(offset vk.DeviceSize) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(payload[offset : offset+4]))
	}
	// second vertex x and first normal z
	assert.Equal(t, float32(1), readFloat(layout.PositionOffset+12))
	assert.Equal(t, float32(1), readFloat(layout.NormalOffset+8))

	layout, payload, err = PackVertexStreams(positions, normals, []float32{0, 0, 1, 0, 0, 1})
	require.NoError(t, err)
	assert.True(t, layout.HasTexCoords)
	require.Len(t, payload, int(layout.Size))
	assert.Equal(t, float32(1), readFloat(layout.TexCoordOffset+8))
}

func TestPackVertexStreamsRejectsMismatches(t *testing.T) {
	positions := []float32{0, 0, 0, 1, 0, 0}

	_, _, err := PackVertexStreams(nil, nil, nil)
	assert.Error(t, err)
	_, _, err = PackVertexStreams(positions[:4], positions[:4], nil)
	assert.Error(t, err)
	_, _, err = PackVertexStreams(positions, positions[:3], nil)
	assert.Error(t, err)
	_, _, err = PackVertexStreams(positions, positions, []float32{0, 0})
	assert.Error(t, err)
}
