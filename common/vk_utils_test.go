package common

import (
	"encoding/binary"
	"math"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllOfAinB(t *testing.T) {
	supported := []string{"VK_KHR_surface\x00", "VK_KHR_xlib_surface"}

	assert.True(t, AllOfAinB([]string{"VK_KHR_surface"}, supported))
	assert.True(t, AllOfAinB([]string{"VK_KHR_xlib_surface\x00", "VK_KHR_surface"}, supported))
	assert.True(t, AllOfAinB(nil, supported))
	assert.False(t, AllOfAinB([]string{"VK_KHR_swapchain"}, supported))
	assert.False(t, AllOfAinB([]string{"VK_KHR_surface"}, nil))
}

func TestMissingOfAinB(t *testing.T) {
	missing := MissingOfAinB(
		[]string{"VK_LAYER_KHRONOS_validation", "VK_KHR_surface", "VK_EXT_debug_utils"},
		[]string{"VK_KHR_surface"},
	)
	assert.Equal(t, []string{"VK_LAYER_KHRONOS_validation", "VK_EXT_debug_utils"}, missing)
	assert.Empty(t, MissingOfAinB([]string{"a"}, []string{"a\x00"}))
}

func TestTerminatedStr(t *testing.T) {
	assert.Equal(t, "\x00", TerminatedStr(""))
	assert.Equal(t, "main\x00", TerminatedStr("main"))
	assert.Equal(t, "main\x00", TerminatedStr("main\x00"))
}

// TestTerminatedStrs makes sure the input slice is not modified in place
func TestTerminatedStrs(t *testing.T) {
	in := []string{"a", "b\x00"}
	out := TerminatedStrs(in)

	assert.Equal(t, []string{"a\x00", "b\x00"}, out)
	assert.Equal(t, []string{"a", "b\x00"}, in)
}

func TestRawBytes(t *testing.T) {
	b, err := RawBytes(struct {
		A uint32
		B float32
	}{A: 7, B: 0.5})
	require.NoError(t, err)
	require.Len(t, b, 8)
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(b[0:4]))
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])))

	_, err = RawBytes([]string{"not fixed size"})
	assert.Error(t, err)
}

func TestAsUint32Arr(t *testing.T) {
	code := []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00}
	words, err := AsUint32Arr(code)
	require.NoError(t, err)
	require.Len(t, words, 2)
	// SPIR-V magic number
	assert.Equal(t, uint32(0x07230203), words[0])

	_, err = AsUint32Arr(code[:7])
	assert.Error(t, err)
	_, err = AsUint32Arr(nil)
	assert.Error(t, err)
}

func TestClampUint32(t *testing.T) {
	assert.Equal(t, uint32(10), clampUint32(5, 10, 20))
	assert.Equal(t, uint32(20), clampUint32(25, 10, 20))
	assert.Equal(t, uint32(15), clampUint32(15, 10, 20))
}

func TestQueueFamilyIndices(t *testing.T) {
	g, p := uint32(0), uint32(2)
	shared := QueueFamilyIndices{GraphicsFamily: &g, PresentFamily: &g}
	split := QueueFamilyIndices{GraphicsFamily: &g, PresentFamily: &p}

	assert.True(t, shared.IsShared())
	assert.Equal(t, []uint32{0}, shared.UniqueFamilies())
	assert.Len(t, shared.toQueueCreateInfos(), 1)

	assert.False(t, split.IsShared())
	assert.Equal(t, []uint32{0, 2}, split.UniqueFamilies())
	assert.Len(t, split.toQueueCreateInfos(), 2)

	assert.False(t, (&QueueFamilyIndices{GraphicsFamily: &g}).IsShared())
}

func TestHasStencilComponent(t *testing.T) {
	assert.False(t, HasStencilComponent(vk.FormatD32Sfloat))
	assert.True(t, HasStencilComponent(vk.FormatD24UnormS8Uint))
}
