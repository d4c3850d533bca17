package renderer

import (
	"log"
	"path/filepath"
	"strings"

	com "vulkan_shadow_mapping/common"
	"vulkan_shadow_mapping/model"
	"vulkan_shadow_mapping/obj"
	"vulkan_shadow_mapping/stl"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"
)

// These functions are part of the rendering core but are split into their own file for logical separation. Their
// focus is scene handling. Adding removing and adjusting things shown in the 3D world of the renderer.

// BUILTIN_PREFIX selects a generated mesh instead of a file, e.g. "builtin:plane"
const BUILTIN_PREFIX = "builtin:"

// Sizes of the generated meshes
const (
	BUILTIN_PLANE_HALF_SIZE = 10
	BUILTIN_CUBE_HALF_SIZE  = 1
)

// LoadMesh reads the mesh at path with the loader matching its extension (case-insensitive). Paths starting with
// BUILTIN_PREFIX name a generated plane or cube.
func LoadMesh(path string) (*model.TriMesh, error) {
	if name, ok := strings.CutPrefix(path, BUILTIN_PREFIX); ok {
		switch strings.ToLower(name) {
		case "plane":
			return model.NewPlaneMesh(BUILTIN_PLANE_HALF_SIZE, 0), nil
		case "cube":
			return model.NewCubeMesh(BUILTIN_CUBE_HALF_SIZE), nil
		}
		return nil, errors.Newf("unknown builtin mesh '%s'", name)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		return obj.ReadObjFile(path)
	case ".stl":
		return stl.ReadStlFile(path)
	default:
		return nil, errors.Newf("no mesh loader for '%s' (extension '%s')", path, ext)
	}
}

// DefaultCam places the camera as configured.
func (c *Core) DefaultCam() {
	cc := c.cfg.Camera
	cam := model.NewCamera(cc.Fov, cc.Near, cc.Far)
	cam.ProjectionType = model.CAM_PERSPECTIVE_PROJECTION
	cam.Pos = mgl32.Vec3(cc.Eye)
	cam.SetTarget(mgl32.Vec3(cc.Target))
	c.Cam = cam
}

// DefaultLight places the shadow casting light as configured.
func (c *Core) DefaultLight() {
	sc := c.cfg.Shadow
	c.Light = model.NewLight(mgl32.Vec3(c.cfg.Light.Position), sc.LightFov, sc.Near, sc.Far)
	c.AnimateLight = c.cfg.Light.Animate
	if c.AnimateLight && c.Light.OnOrbitAxis() {
		log.Printf("Light at %v sits on the orbit axis, animating it has no visible effect", c.Light.Pos)
	}
}

func (c *Core) FindInScene(name string) (*model.Model, error) {
	for i, v := range c.models {
		if v.Name == name {
			return c.models[i], nil
		}
	}
	return nil, errors.Newf("model '%s' not found", name)
}

// AddToScene uploads mesh to the device and adds it to the scene under name. Names are unique within the scene.
func (c *Core) AddToScene(name string, mesh *model.TriMesh, role model.Role) (*model.Model, error) {
	if _, err := c.FindInScene(name); err == nil {
		return nil, errors.Newf("model '%s' is already part of the scene", name)
	}
	m := model.NewModel(mesh, name, role)
	vbo, err := c.uploadMesh(mesh)
	if err != nil {
		return nil, errors.Wrapf(err, "upload model '%s'", name)
	}
	m.VBO = vbo
	c.models = append(c.models, m)
	log.Printf("Added model '%s' (%s, %d vertices, %d triangles) to the scene",
		name, role, mesh.VertexCount(), mesh.TriangleCount())
	return m, nil
}

// LoadIntoScene is LoadMesh followed by AddToScene.
func (c *Core) LoadIntoScene(name string, path string, role model.Role) (*model.Model, error) {
	mesh, err := LoadMesh(path)
	if err != nil {
		return nil, err
	}
	return c.AddToScene(name, mesh, role)
}

func (c *Core) ClearScene() {
	for len(c.models) > 0 {
		c.RemoveFromScene(c.models[0].Name)
	}
}

// RemoveFromScene drops the model of the given name and frees its device memory once the device is idle.
func (c *Core) RemoveFromScene(name string) {
	for i, v := range c.models {
		if v.Name == name {
			vk.DeviceWaitIdle(c.device.Device)
			c.destroyModelBuffers(v)
			c.models = append(c.models[:i], c.models[i+1:]...)
			return
		}
	}
}

func (c *Core) destroyModelBuffers(m *model.Model) {
	if vbo, ok := m.VBO.(*com.VertexBufferObject); ok && vbo != nil {
		vbo.Destroy(c.device)
	}
	m.VBO = nil
}
