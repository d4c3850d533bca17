package renderer

import (
	"log"

	com "vulkan_shadow_mapping/common"
	"vulkan_shadow_mapping/model"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

// Binding indices as declared in the shaders
const (
	UBO_BINDING        = 0 // 'layout(binding = 0) uniform UBO' in both vertex shaders
	SHADOW_MAP_BINDING = 1 // 'layout(binding = 1) uniform sampler2D shadowMap' in the scene fragment shader
)

// SETS_PER_FRAME is one scene set plus one shadow set for each frame in flight
const SETS_PER_FRAME = 2

// DescriptorProvisioner owns the single descriptor set layout shared by all pipelines and hands out the per frame
// sets of both passes.
type DescriptorProvisioner struct {
	device         vk.Device
	framesInFlight int

	descriptorSetLayout vk.DescriptorSetLayout
	descriptorPool      vk.DescriptorPool
	sceneSets           []vk.DescriptorSet
	shadowSets          []vk.DescriptorSet
}

func NewDescriptorProvisioner(device vk.Device, framesInFlight int) (*DescriptorProvisioner, error) {
	dp := &DescriptorProvisioner{
		device:         device,
		framesInFlight: framesInFlight,
	}
	if err := dp.createDescriptorSetLayout(); err != nil {
		return nil, err
	}
	if err := dp.createDescriptorPool(); err != nil {
		vk.DestroyDescriptorSetLayout(dp.device, dp.descriptorSetLayout, nil)
		return nil, err
	}
	return dp, nil
}

func (dp *DescriptorProvisioner) Layout() vk.DescriptorSetLayout {
	return dp.descriptorSetLayout
}

func (dp *DescriptorProvisioner) SceneSet(frame int) vk.DescriptorSet {
	return dp.sceneSets[frame]
}

func (dp *DescriptorProvisioner) ShadowSet(frame int) vk.DescriptorSet {
	return dp.shadowSets[frame]
}

// Provision allocates the scene and shadow sets of every frame and points them at that frame's uniform buffer and
// the shared shadow map. The shadow map is read in DEPTH_STENCIL_READ_ONLY_OPTIMAL, the final layout of the
// shadow pass.
func (dp *DescriptorProvisioner) Provision(sceneUBOs *com.UniformBuffer[model.SceneUBO], shadowUBOs *com.UniformBuffer[model.ShadowUBO], shadowMap *com.Texture) error {
	var err error
	dp.sceneSets, err = dp.allocDescriptorSets(dp.framesInFlight)
	if err != nil {
		return errors.Wrap(err, "scene descriptor sets")
	}
	dp.shadowSets, err = dp.allocDescriptorSets(dp.framesInFlight)
	if err != nil {
		return errors.Wrap(err, "shadow descriptor sets")
	}

	shadowMapInfo := shadowMap.DescriptorInfo(vk.ImageLayoutDepthStencilReadOnlyOptimal)
	for i := 0; i < dp.framesInFlight; i++ {
		writes := []vk.WriteDescriptorSet{
			uboWrite(dp.sceneSets[i], sceneUBOs.DescriptorInfo(i)),
			samplerWrite(dp.sceneSets[i], shadowMapInfo),
			uboWrite(dp.shadowSets[i], shadowUBOs.DescriptorInfo(i)),
			samplerWrite(dp.shadowSets[i], shadowMapInfo),
		}
		vk.UpdateDescriptorSets(dp.device, uint32(len(writes)), writes, 0, nil)
	}
	log.Printf("Successfully provisioned %d descriptor sets", len(dp.sceneSets)+len(dp.shadowSets))
	return nil
}

func (dp *DescriptorProvisioner) Destroy() {
	// Sets are freed with their pool
	vk.DestroyDescriptorPool(dp.device, dp.descriptorPool, nil)
	vk.DestroyDescriptorSetLayout(dp.device, dp.descriptorSetLayout, nil)
	dp.sceneSets = nil
	dp.shadowSets = nil
}

// allocDescriptorSets Allocates cnt descriptor sets of the shared layout
func (dp *DescriptorProvisioner) allocDescriptorSets(cnt int) ([]vk.DescriptorSet, error) {
	layouts := make([]vk.DescriptorSetLayout, cnt)
	for i := range layouts {
		layouts[i] = dp.descriptorSetLayout
	}
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		PNext:              nil,
		DescriptorPool:     dp.descriptorPool,
		DescriptorSetCount: uint32(cnt),
		PSetLayouts:        layouts,
	}
	return com.VkAllocateDescriptorSets(dp.device, &allocInfo)
}

func (dp *DescriptorProvisioner) createDescriptorSetLayout() error {
	bindings := layoutBindings()
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		PNext:        nil,
		Flags:        0,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	dsl, err := com.VkCreateDescriptorSetLayout(dp.device, &layoutInfo, nil)
	if err != nil {
		return errors.Wrap(err, "create descriptor set layout")
	}
	dp.descriptorSetLayout = dsl
	return nil
}

func (dp *DescriptorProvisioner) createDescriptorPool() error {
	sizes := poolSizes(dp.framesInFlight)
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PNext:         nil,
		Flags:         0,
		MaxSets:       uint32(SETS_PER_FRAME * dp.framesInFlight),
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}
	pool, err := com.VkCreateDescriptorPool(dp.device, &poolInfo, nil)
	if err != nil {
		return errors.Wrap(err, "create descriptor pool")
	}
	dp.descriptorPool = pool
	return nil
}

func layoutBindings() []vk.DescriptorSetLayoutBinding {
	return []vk.DescriptorSetLayoutBinding{
		{
			Binding:            UBO_BINDING,
			DescriptorType:     vk.DescriptorTypeUniformBuffer,
			DescriptorCount:    1,
			StageFlags:         vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			PImmutableSamplers: nil,
		},
		{
			Binding:            SHADOW_MAP_BINDING,
			DescriptorType:     vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount:    1,
			StageFlags:         vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
			PImmutableSamplers: nil,
		},
	}
}

func poolSizes(framesInFlight int) []vk.DescriptorPoolSize {
	return []vk.DescriptorPoolSize{
		{
			Type:            vk.DescriptorTypeUniformBuffer,
			DescriptorCount: uint32(SETS_PER_FRAME * framesInFlight),
		},
		{
			Type:            vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: uint32(SETS_PER_FRAME * framesInFlight),
		},
	}
}

func uboWrite(set vk.DescriptorSet, info vk.DescriptorBufferInfo) vk.WriteDescriptorSet {
	return vk.WriteDescriptorSet{
		SType:            vk.StructureTypeWriteDescriptorSet,
		PNext:            nil,
		DstSet:           set,
		DstBinding:       UBO_BINDING,
		DstArrayElement:  0,
		DescriptorCount:  1,
		DescriptorType:   vk.DescriptorTypeUniformBuffer,
		PImageInfo:       nil,
		PBufferInfo:      []vk.DescriptorBufferInfo{info},
		PTexelBufferView: nil,
	}
}

func samplerWrite(set vk.DescriptorSet, info vk.DescriptorImageInfo) vk.WriteDescriptorSet {
	return vk.WriteDescriptorSet{
		SType:            vk.StructureTypeWriteDescriptorSet,
		PNext:            nil,
		DstSet:           set,
		DstBinding:       SHADOW_MAP_BINDING,
		DstArrayElement:  0,
		DescriptorCount:  1,
		DescriptorType:   vk.DescriptorTypeCombinedImageSampler,
		PImageInfo:       []vk.DescriptorImageInfo{info},
		PBufferInfo:      nil,
		PTexelBufferView: nil,
	}
}
