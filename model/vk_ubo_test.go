package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatAt(b []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[offset : offset+4]))
}

func TestUboSizes(t *testing.T) {
	assert.Equal(t, vk.DeviceSize(336), SceneUBO{}.Size())
	assert.Equal(t, vk.DeviceSize(192), ShadowUBO{}.Size())
	assert.Len(t, SceneUBO{}.Bytes(), 336)
	assert.Len(t, ShadowUBO{}.Bytes(), 192)
}

func TestSceneUboLayout(t *testing.T) {
	u := SceneUBO{
		Model:        mgl32.Ident4(),
		View:         mgl32.Translate3D(1, 2, 3),
		Proj:         mgl32.Scale3D(2, 2, 2),
		Normal:       mgl32.Ident4(),
		DepthBiasMVP: mgl32.Translate3D(-4, 0, 0),
		LightPos:     mgl32.Vec3{0, 25, 0},
	}
	b := u.Bytes()
	require.Len(t, b, 336)

	// column major, the translation lives in the last column
	assert.Equal(t, float32(1), floatAt(b, 64+12*4))
	assert.Equal(t, float32(3), floatAt(b, 64+14*4))
	assert.Equal(t, float32(2), floatAt(b, 2*64))
	assert.Equal(t, float32(-4), floatAt(b, 4*64+12*4))
	// light position padded to a vec4
	assert.Equal(t, float32(0), floatAt(b, 320))
	assert.Equal(t, float32(25), floatAt(b, 324))
	assert.Equal(t, float32(0), floatAt(b, 328))
	assert.Equal(t, float32(1), floatAt(b, 332))
}

func TestShadowUboLayout(t *testing.T) {
	u := ShadowUBO{
		Model: mgl32.Translate3D(7, 0, 0),
		View:  mgl32.Ident4(),
		Proj:  mgl32.Scale3D(1, -1, 1),
	}
	b := u.Bytes()
	assert.Equal(t, float32(7), floatAt(b, 12*4))
	assert.Equal(t, float32(1), floatAt(b, 64))
	assert.Equal(t, float32(-1), floatAt(b, 128+5*4))
}
