package rawbytes

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat32Bytes(t *testing.T) {
	assert.Nil(t, Float32Bytes(nil))

	b := Float32Bytes([]float32{1, -2.5})
	require.Len(t, b, 8)
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])))
	assert.Equal(t, float32(-2.5), math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])))
}

func TestUint32Bytes(t *testing.T) {
	assert.Nil(t, Uint32Bytes([]uint32{}))

	b := Uint32Bytes([]uint32{0, 1, 0xdeadbeef})
	require.Len(t, b, 12)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(b[4:8]))
	assert.Equal(t, uint32(0xdeadbeef), binary.LittleEndian.Uint32(b[8:12]))
}
