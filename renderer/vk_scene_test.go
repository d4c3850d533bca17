package renderer

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMeshBuiltins(t *testing.T) {
	plane, err := LoadMesh("builtin:plane")
	require.NoError(t, err)
	assert.Equal(t, 4, plane.VertexCount())
	assert.Equal(t, 2, plane.TriangleCount())
	lo, hi := plane.Bounds()
	assert.Equal(t, float32(-BUILTIN_PLANE_HALF_SIZE), lo.X())
	assert.Equal(t, float32(BUILTIN_PLANE_HALF_SIZE), hi.Z())

	cube, err := LoadMesh("builtin:Cube")
	require.NoError(t, err)
	assert.Equal(t, 24, cube.VertexCount())
	assert.Equal(t, 12, cube.TriangleCount())

	_, err = LoadMesh("builtin:sphere")
	assert.ErrorContains(t, err, "unknown builtin mesh 'sphere'")
}

func TestLoadMeshUnknownExtension(t *testing.T) {
	_, err := LoadMesh("data/teapot.fbx")
	assert.ErrorContains(t, err, ".fbx")
}

func TestLoadMeshMissingFile(t *testing.T) {
	_, err := LoadMesh(filepath.Join(t.TempDir(), "missing.obj"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMeshObjIgnoresExtensionCase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "TRI.OBJ")
	src := "o tri\nv 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2//1 3//1\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	mesh, err := LoadMesh(path)
	require.NoError(t, err)
	assert.Equal(t, 3, mesh.VertexCount())
	assert.Equal(t, 1, mesh.TriangleCount())
}

func TestLoadMeshStl(t *testing.T) {
	b := make([]byte, 80, 80+4+50)
	b = binary.LittleEndian.AppendUint32(b, 1)
	for _, f := range []float32{
		0, 0, 1, // normal
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	} {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
	}
	b = binary.LittleEndian.AppendUint16(b, 0)
	path := filepath.Join(t.TempDir(), "tri.stl")
	require.NoError(t, os.WriteFile(path, b, 0o644))

	mesh, err := LoadMesh(path)
	require.NoError(t, err)
	assert.Equal(t, 3, mesh.VertexCount())
	assert.Equal(t, 1, mesh.TriangleCount())
}
