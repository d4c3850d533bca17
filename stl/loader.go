package stl

import (
	"encoding/binary"
	"log"
	"math"
	"os"
	"strings"

	"vulkan_shadow_mapping/model"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	headerSize   = 80
	triangleSize = 50
)

func ReadStlFile(path string) (*model.TriMesh, error) {
	log.Printf("Reading stl file %s", path)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read stl file %s", path)
	}
	m, err := Decode(b)
	if err != nil {
		return nil, errors.Wrapf(err, "decode stl file %s", path)
	}
	header := strings.TrimRight(string(b[:headerSize]), "\x00 ")
	log.Printf("Successfully read stl file, Header: '%s', Triangle Count: %d, Unique vertices: %d, Triangle memory size: %d KiB",
		header, m.TriangleCount(), m.VertexCount(), len(b[headerSize+4:])/1024)
	return m, nil
}

// Decode reads a binary STL. Every corner carries the normal of its facet, corners that share position and facet
// normal are merged.
func Decode(b []byte) (*model.TriMesh, error) {
	if len(b) < headerSize+4 {
		return nil, errors.Newf("stl data of %d bytes is too short for a header", len(b))
	}
	tCnt := binary.LittleEndian.Uint32(b[headerSize : headerSize+4])
	body := b[headerSize+4:]
	if uint64(len(body)) < uint64(tCnt)*triangleSize {
		return nil, errors.Newf("stl data is truncated, header announces %d triangles but only %d bytes follow",
			tCnt, len(body))
	}
	return toMesh(body, tCnt)
}

func toMesh(bytes []byte, triangleCnt uint32) (*model.TriMesh, error) {
	builder := model.NewMeshBuilder()
	for t := uint32(0); t < triangleCnt; t++ {
		i := int(t) * triangleSize
		normal := toVec3(bytes[i : i+12])
		for c := 0; c < 3; c++ {
			start := i + 12 + c*12
			builder.Add(model.Vertex{
				Pos:    toVec3(bytes[start : start+12]),
				Normal: normal,
			})
		}
		// bytes[i+48 : i+50] hold the attribute byte count, unused
	}
	return builder.Build()
}

func toVec3(bytes []byte) mgl32.Vec3 {
	return mgl32.Vec3{
		toFloat32(bytes[:4]),
		toFloat32(bytes[4:8]),
		toFloat32(bytes[8:12]),
	}
}

func toFloat32(bytes []byte) float32 {
	bits := binary.LittleEndian.Uint32(bytes)
	return math.Float32frombits(bits)
}
