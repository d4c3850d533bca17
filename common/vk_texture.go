package common

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

// Texture bundles everything a shader needs to sample an image: the image itself, a view and a sampler.
type Texture struct {
	Image   *Image
	View    vk.ImageView
	Sampler vk.Sampler
}

// SamplerOptions covers the sampler settings that vary between textures.
type SamplerOptions struct {
	AddressMode   vk.SamplerAddressMode
	BorderColor   vk.BorderColor
	MaxAnisotropy float32 // 0 disables anisotropic filtering
}

// NewDepthTexture creates a depth image that can be rendered into and sampled afterwards, as needed for a shadow
// map. Lookups outside the map clamp to its edge.
func NewDepthTexture(dc *Device, w, h uint32, format vk.Format) (*Texture, error) {
	img, err := CreateImage(
		dc,
		w,
		h,
		format,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create depth texture image")
	}
	return newTexture(dc, img, vk.ImageAspectFlags(vk.ImageAspectDepthBit), SamplerOptions{
		AddressMode:   vk.SamplerAddressModeClampToEdge,
		BorderColor:   vk.BorderColorFloatOpaqueWhite,
		MaxAnisotropy: 0,
	})
}

func newTexture(dc *Device, img *Image, aspect vk.ImageAspectFlags, opts SamplerOptions) (*Texture, error) {
	view, err := img.CreateView(dc, aspect)
	if err != nil {
		img.Destroy(dc)
		return nil, err
	}
	sampler, err := CreateSampler(dc, opts)
	if err != nil {
		vk.DestroyImageView(dc.Device, view, nil)
		img.Destroy(dc)
		return nil, err
	}
	return &Texture{
		Image:   img,
		View:    view,
		Sampler: sampler,
	}, nil
}

func CreateSampler(dc *Device, opts SamplerOptions) (vk.Sampler, error) {
	anisotropyEnable := vk.Bool32(vk.False)
	maxAniso := float32(1)
	if opts.MaxAnisotropy > 0 {
		anisotropyEnable = vk.True
		maxAniso = opts.MaxAnisotropy
	}
	samplerInfo := &vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            opts.AddressMode,
		AddressModeV:            opts.AddressMode,
		AddressModeW:            opts.AddressMode,
		MipLodBias:              0.0,
		AnisotropyEnable:        anisotropyEnable,
		MaxAnisotropy:           maxAniso,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MinLod:                  0.0,
		MaxLod:                  1.0,
		BorderColor:             opts.BorderColor,
		UnnormalizedCoordinates: vk.False,
	}
	sampler, err := VkCreateSampler(dc.Device, samplerInfo, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create sampler")
	}
	return sampler, nil
}

// DescriptorInfo describes the texture for a combined image sampler binding read in the given layout.
func (t *Texture) DescriptorInfo(layout vk.ImageLayout) vk.DescriptorImageInfo {
	return vk.DescriptorImageInfo{
		Sampler:     t.Sampler,
		ImageView:   t.View,
		ImageLayout: layout,
	}
}

func (t *Texture) Destroy(dc *Device) {
	vk.DestroySampler(dc.Device, t.Sampler, nil)
	vk.DestroyImageView(dc.Device, t.View, nil)
	t.Image.Destroy(dc)
}
