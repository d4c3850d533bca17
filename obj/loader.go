// Package obj turns Wavefront OBJ files into deduplicated triangle meshes.
package obj

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"vulkan_shadow_mapping/model"

	"github.com/cockroachdb/errors"
	g3nobj "github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
)

// ReadObjFile loads the mesh at path. A material library next to it is handed to the decoder when it exists,
// materials are not used otherwise.
func ReadObjFile(path string) (*model.TriMesh, error) {
	log.Printf("Reading obj file %s", path)
	objFile, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open obj file %s", path)
	}
	defer objFile.Close()

	var mtl io.Reader = strings.NewReader("")
	mtlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".mtl"
	if mtlFile, err := os.Open(mtlPath); err == nil {
		defer mtlFile.Close()
		mtl = mtlFile
	}

	m, err := Decode(objFile, mtl)
	if err != nil {
		return nil, errors.Wrapf(err, "decode obj file %s", path)
	}
	lo, hi := m.Bounds()
	log.Printf("Successfully read obj file, Vertices: %d, Triangles: %d, Bounds: %v - %v",
		m.VertexCount(), m.TriangleCount(), lo, hi)
	return m, nil
}

// Decode parses an OBJ stream. Polygons are split into triangle fans around their first corner. Corners without a
// normal or texture coordinate get zero values for them.
func Decode(objR io.Reader, mtlR io.Reader) (*model.TriMesh, error) {
	if mtlR == nil {
		mtlR = strings.NewReader("")
	}
	decoder, err := g3nobj.DecodeReader(objR, mtlR)
	if err != nil {
		return nil, errors.Wrap(err, "parse obj")
	}

	b := model.NewMeshBuilder()
	for _, o := range decoder.Objects {
		for fi, face := range o.Faces {
			if len(face.Vertices) < 3 {
				log.Printf("Skipping face %d of object '%s' with only %d corners", fi, o.Name, len(face.Vertices))
				continue
			}
			for i := 2; i < len(face.Vertices); i++ {
				for _, corner := range []int{0, i - 1, i} {
					v, textured, err := cornerVertex(decoder, face, corner)
					if err != nil {
						return nil, errors.Wrapf(err, "object '%s' face %d", o.Name, fi)
					}
					if textured {
						b.AddTextured(v)
					} else {
						b.Add(v)
					}
				}
			}
		}
	}
	return b.Build()
}

func cornerVertex(decoder *g3nobj.Decoder, face g3nobj.Face, corner int) (model.Vertex, bool, error) {
	var v model.Vertex
	vi := face.Vertices[corner]
	if vi < 0 || 3*vi+2 >= len(decoder.Vertices) {
		return v, false, errors.Newf("position index %d out of range", vi)
	}
	v.Pos = mgl32.Vec3{decoder.Vertices[3*vi], decoder.Vertices[3*vi+1], decoder.Vertices[3*vi+2]}

	// Missing attributes are marked with an out of range index by the decoder
	if corner < len(face.Normals) {
		if ni := face.Normals[corner]; ni >= 0 && 3*ni+2 < len(decoder.Normals) {
			v.Normal = mgl32.Vec3{decoder.Normals[3*ni], decoder.Normals[3*ni+1], decoder.Normals[3*ni+2]}
		}
	}
	textured := false
	if corner < len(face.Uvs) {
		if ti := face.Uvs[corner]; ti >= 0 && 2*ti+1 < len(decoder.Uvs) {
			v.TexCoord = mgl32.Vec2{decoder.Uvs[2*ti], decoder.Uvs[2*ti+1]}
			textured = true
		}
	}
	return v, textured, nil
}
