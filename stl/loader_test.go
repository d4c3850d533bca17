package stl

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type facet struct {
	Normal  mgl32.Vec3
	Corners [3]mgl32.Vec3
}

func encodeStl(t *testing.T, facets []facet) []byte {
	buf := new(bytes.Buffer)
	header := make([]byte, headerSize)
	copy(header, "test solid")
	buf.Write(header)
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint32(len(facets))))
	for _, f := range facets {
		require.NoError(t, binary.Write(buf, binary.LittleEndian, f.Normal))
		require.NoError(t, binary.Write(buf, binary.LittleEndian, f.Corners))
		require.NoError(t, binary.Write(buf, binary.LittleEndian, uint16(0)))
	}
	return buf.Bytes()
}

var square = []facet{
	{Normal: mgl32.Vec3{0, 0, 1}, Corners: [3]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}},
	{Normal: mgl32.Vec3{0, 0, 1}, Corners: [3]mgl32.Vec3{{0, 0, 0}, {1, 1, 0}, {0, 1, 0}}},
}

func TestDecodeMergesCorners(t *testing.T) {
	m, err := Decode(encodeStl(t, square))
	require.NoError(t, err)

	assert.Equal(t, 2, m.TriangleCount())
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.Indices)
	assert.False(t, m.HasTexCoords)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, m.Vertex(3).Normal)
}

// TestDecodeKeepsHardEdges checks that a corner shared by facets with different normals is not merged
func TestDecodeKeepsHardEdges(t *testing.T) {
	facets := append([]facet{}, square...)
	facets = append(facets, facet{
		Normal:  mgl32.Vec3{1, 0, 0},
		Corners: [3]mgl32.Vec3{{1, 0, 0}, {1, 0, -1}, {1, 1, 0}},
	})
	m, err := Decode(encodeStl(t, facets))
	require.NoError(t, err)
	assert.Equal(t, 7, m.VertexCount())
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(make([]byte, 40))
	assert.Error(t, err)

	data := encodeStl(t, square)
	_, err = Decode(data[:len(data)-10])
	assert.Error(t, err)

	// a file without triangles produces no mesh
	_, err = Decode(encodeStl(t, nil))
	assert.Error(t, err)
}

func TestReadStlFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "square.stl")
	require.NoError(t, os.WriteFile(path, encodeStl(t, square), 0o644))

	m, err := ReadStlFile(path)
	require.NoError(t, err)
	lo, hi := m.Bounds()
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, lo)
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, hi)
}
