package obj

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadObj = `o quad
v 0 0 0
v 1 0 0
v 1 0 1
v 0 0 1
vn 0 1 0
f 1//1 2//1 3//1 4//1
`

func TestDecodeTriangulatesFans(t *testing.T) {
	m, err := Decode(strings.NewReader(quadObj), nil)
	require.NoError(t, err)

	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.Indices)
	assert.False(t, m.HasTexCoords)
	for i := 0; i < m.VertexCount(); i++ {
		assert.Equal(t, mgl32.Vec3{0, 1, 0}, m.Vertex(i).Normal)
		assert.Equal(t, mgl32.Vec2{}, m.Vertex(i).TexCoord)
	}
}

func TestDecodeMergesSharedCorners(t *testing.T) {
	src := `o pair
v 0 0 0
v 1 0 0
v 1 0 1
v 0 0 1
vn 0 1 0
vn 0 -1 0
f 1//1 2//1 3//1
f 1//1 3//1 4//1
f 1//2 3//2 2//2
`
	m, err := Decode(strings.NewReader(src), strings.NewReader(""))
	require.NoError(t, err)

	// the first two faces share two corners, the third one differs by its normal only
	assert.Equal(t, 7, m.VertexCount())
	assert.Equal(t, 3, m.TriangleCount())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3, 4, 5, 6}, m.Indices)
}

func TestDecodeMissingAttributes(t *testing.T) {
	src := `o tri
v 0 0 0
v 1 0 0
v 0 1 0
vt 0.25 0.75
f 1 2 3
f 1/1 2/1 3/1
`
	m, err := Decode(strings.NewReader(src), nil)
	require.NoError(t, err)

	assert.Equal(t, 6, m.VertexCount())
	assert.True(t, m.HasTexCoords)
	assert.Equal(t, mgl32.Vec3{}, m.Vertex(0).Normal)
	assert.Equal(t, mgl32.Vec2{}, m.Vertex(0).TexCoord)
	assert.Equal(t, mgl32.Vec2{0.25, 0.75}, m.Vertex(3).TexCoord)
}

func TestDecodeWithoutFaces(t *testing.T) {
	_, err := Decode(strings.NewReader("o empty\nv 0 0 0\n"), nil)
	assert.Error(t, err)
}

func TestReadObjFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadObj), 0o644))

	m, err := ReadObjFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.TriangleCount())

	_, err = ReadObjFile(filepath.Join(dir, "missing.obj"))
	assert.Error(t, err)
}

func TestDecodeOutOfRangeAttributes(t *testing.T) {
	src := `o tri
v 0 0 0
v 1 0 0
v 0 1 0
vt 0.25 0.75
vn 0 0 1
f 1/5/9 2/5/9 3/5/9
`
	m, err := Decode(strings.NewReader(src), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, m.VertexCount())
	assert.False(t, m.HasTexCoords)
	for i := 0; i < m.VertexCount(); i++ {
		assert.Equal(t, mgl32.Vec3{}, m.Vertex(i).Normal)
		assert.Equal(t, mgl32.Vec2{}, m.Vertex(i).TexCoord)
	}
}

func TestDecodeOutOfRangePosition(t *testing.T) {
	src := `o tri
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 7
`
	_, err := Decode(strings.NewReader(src), nil)
	assert.ErrorContains(t, err, "position index 6 out of range")
}
