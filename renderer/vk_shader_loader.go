package renderer

import (
	"log"
	"os"
	"path/filepath"

	com "vulkan_shadow_mapping/common"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

// Compiled shader files below the configured shader directory
const (
	SCENE_VERT_SHADER  = "scene.vert.spv"
	SCENE_FRAG_SHADER  = "scene.frag.spv"
	SHADOW_VERT_SHADER = "shadow.vert.spv"
	SHADOW_FRAG_SHADER = "shadow.frag.spv"
)

// ShaderStages holds the modules of a vertex/fragment shader pair together with the stage infos needed to bind them
// to a pipeline. The modules may be destroyed as soon as the pipeline is created.
type ShaderStages struct {
	modules []vk.ShaderModule
	Infos   []vk.PipelineShaderStageCreateInfo
}

// LoadShaderStages reads the vertex and fragment shader found in dir.
func LoadShaderStages(d vk.Device, dir, vertFile, fragFile string) (*ShaderStages, error) {
	vertMod, vertInfo, err := LoadVert(d, filepath.Join(dir, vertFile))
	if err != nil {
		return nil, err
	}
	fragMod, fragInfo, err := LoadFrag(d, filepath.Join(dir, fragFile))
	if err != nil {
		DeleteShaderMod(d, vertMod)
		return nil, err
	}
	return &ShaderStages{
		modules: []vk.ShaderModule{vertMod, fragMod},
		Infos:   []vk.PipelineShaderStageCreateInfo{vertInfo, fragInfo},
	}, nil
}

func (s *ShaderStages) Destroy(d vk.Device) {
	for _, mod := range s.modules {
		DeleteShaderMod(d, mod)
	}
	s.modules = nil
}

// LoadVert reads a '.spv' file with the expectation of it containing a vertex shader for later use in a
// render pipeline. For this, a shader module (containing the shader code) and its vk.PipelineShaderStageCreateInfo
// is returned. Which is required to bind the shader to the pipeline.
func LoadVert(d vk.Device, path string) (vk.ShaderModule, vk.PipelineShaderStageCreateInfo, error) {
	return loadStage(d, path, vk.ShaderStageVertexBit)
}

// LoadFrag is the fragment shader counterpart of LoadVert.
func LoadFrag(d vk.Device, path string) (vk.ShaderModule, vk.PipelineShaderStageCreateInfo, error) {
	return loadStage(d, path, vk.ShaderStageFragmentBit)
}

// DeleteShaderMod discards a shader module. As vk.ShaderModule is only meant as a container to move the shader code
// onto device memory, it can be destroyed right after creating a shader stage when binding to a rendering pipeline.
func DeleteShaderMod(d vk.Device, mod vk.ShaderModule) {
	vk.DestroyShaderModule(d, mod, nil)
}

func loadStage(d vk.Device, path string, stage vk.ShaderStageFlagBits) (vk.ShaderModule, vk.PipelineShaderStageCreateInfo, error) {
	mod, err := readShaderCode(d, path)
	if err != nil {
		return nil, vk.PipelineShaderStageCreateInfo{}, err
	}
	log.Printf("Created shader module for %s: %v", filepath.Base(path), mod)

	stageInfo := vk.PipelineShaderStageCreateInfo{
		SType:               vk.StructureTypePipelineShaderStageCreateInfo,
		PNext:               nil,
		Flags:               0,
		Stage:               stage,
		Module:              mod,
		PName:               com.TerminatedStr("main"), // entrypoint -> function name in the shader
		PSpecializationInfo: nil,
	}
	return mod, stageInfo, nil
}

func readShaderCode(d vk.Device, shaderFile string) (vk.ShaderModule, error) {
	shaderCodeB, err := os.ReadFile(shaderFile)
	if err != nil {
		return nil, errors.Wrapf(err, "read shader file '%s'", shaderFile)
	}
	log.Printf("Read shader file (%s) of size: %dByte", shaderFile, len(shaderCodeB))

	code, err := com.AsUint32Arr(shaderCodeB)
	if err != nil {
		return nil, errors.Wrapf(err, "shader file '%s'", shaderFile)
	}
	createInfo := &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		PNext:    nil,
		Flags:    0,
		CodeSize: uint64(len(shaderCodeB)),
		PCode:    code,
	}
	module, err := com.VkCreateShaderModule(d, createInfo, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "create shader module '%s'", shaderFile)
	}
	return module, nil
}
