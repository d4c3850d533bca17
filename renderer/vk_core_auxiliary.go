package renderer

import (
	com "vulkan_shadow_mapping/common"
	"vulkan_shadow_mapping/model"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

// These functions are auxiliary functions tied to a given Core that wrap one time commands. They are closer to
// helper functions of the class than to a general abstraction of the API (see common/vk_abstraction.go for those).

type transitionMasks struct {
	srcAccess vk.AccessFlags
	dstAccess vk.AccessFlags
	srcStage  vk.PipelineStageFlags
	dstStage  vk.PipelineStageFlags
}

// layoutTransitionMasks knows the access and stage masks of every layout transition this renderer performs.
func layoutTransitionMasks(old vk.ImageLayout, new vk.ImageLayout) (transitionMasks, error) {
	switch {
	case old == vk.ImageLayoutUndefined && new == vk.ImageLayoutDepthStencilAttachmentOptimal:
		return transitionMasks{
			srcAccess: 0,
			dstAccess: vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit),
		}, nil
	case old == vk.ImageLayoutUndefined && new == vk.ImageLayoutDepthStencilReadOnlyOptimal:
		// an unrendered shadow map, sampled before the first shadow pass ran
		return transitionMasks{
			srcAccess: 0,
			dstAccess: vk.AccessFlags(vk.AccessShaderReadBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		}, nil
	}
	return transitionMasks{}, errors.Newf("unsupported image layout transition %d -> %d", old, new)
}

func transitionAspect(format vk.Format, new vk.ImageLayout) vk.ImageAspectFlags {
	if new == vk.ImageLayoutDepthStencilAttachmentOptimal || new == vk.ImageLayoutDepthStencilReadOnlyOptimal {
		if com.HasStencilComponent(format) {
			return vk.ImageAspectFlags(vk.ImageAspectDepthBit | vk.ImageAspectStencilBit)
		}
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	}
	return vk.ImageAspectFlags(vk.ImageAspectColorBit)
}

func (c *Core) transitionImageLayout(img *com.Image, old vk.ImageLayout, new vk.ImageLayout) error {
	masks, err := layoutTransitionMasks(old, new)
	if err != nil {
		return err
	}
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		PNext:               nil,
		SrcAccessMask:       masks.srcAccess,
		DstAccessMask:       masks.dstAccess,
		OldLayout:           old,
		NewLayout:           new,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img.Handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     transitionAspect(img.Format, new),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	err = com.RunOneTimeCommand(c.device, c.commandPool, func(cmd vk.CommandBuffer) {
		vk.CmdPipelineBarrier(
			cmd,
			masks.srcStage, masks.dstStage,
			0,
			0, nil,
			0, nil,
			1, []vk.ImageMemoryBarrier{barrier},
		)
	})
	return errors.Wrap(err, "transition image layout")
}

// uploadMesh moves mesh into device local vertex and index buffers, texture coordinates only if the mesh has any.
func (c *Core) uploadMesh(mesh *model.TriMesh) (*com.VertexBufferObject, error) {
	var texCoords []float32
	if mesh.HasTexCoords {
		texCoords = mesh.TexCoords
	}
	return com.NewVertexBufferObject(c.device, c.commandPool, mesh.Positions, mesh.Normals, texCoords, mesh.Indices)
}
