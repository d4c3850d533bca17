package common

import (
	"log"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

// This code section contains allocation helper functions. It aims to simplify the allocation of buffers and
// images on the selected device.

type Buffer struct {
	Handle    vk.Buffer
	DeviceMem vk.DeviceMemory
	Size      vk.DeviceSize
	Usage     vk.BufferUsageFlags
	props     vk.MemoryPropertyFlags
}

func CreateBuffer(dc *Device, size vk.DeviceSize, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags) (*Buffer, error) {
	if size == 0 {
		return nil, errors.New("cannot create buffer of size 0")
	}
	// Buffer Handle of fitting Size
	bufferInfo := vk.BufferCreateInfo{
		SType:                 vk.StructureTypeBufferCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		Size:                  size,
		Usage:                 usage,
		SharingMode:           vk.SharingModeExclusive,
		QueueFamilyIndexCount: 0,
		PQueueFamilyIndices:   nil,
	}
	buf, err := VkCreateBuffer(dc.Device, &bufferInfo, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "create buffer of %d bytes", size)
	}

	bufRequirements := ReadBufferMemoryRequirements(dc.Device, buf)
	memType, err := findMemoryType(dc, bufRequirements.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyBuffer(dc.Device, buf, nil)
		return nil, err
	}

	// Allocate device memory
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		PNext:           nil,
		AllocationSize:  bufRequirements.Size,
		MemoryTypeIndex: memType,
	}
	deviceMem, err := VkAllocateMemory(dc.Device, &allocInfo, nil)
	if err != nil {
		vk.DestroyBuffer(dc.Device, buf, nil)
		return nil, errors.Wrap(err, "allocate buffer memory")
	}

	// Associate allocated memory with buffer Handle
	if err = VkBindBufferMemory(dc.Device, buf, deviceMem, 0); err != nil {
		vk.DestroyBuffer(dc.Device, buf, nil)
		vk.FreeMemory(dc.Device, deviceMem, nil)
		return nil, errors.Wrap(err, "bind buffer memory")
	}

	return &Buffer{
		Handle:    buf,
		DeviceMem: deviceMem,
		Size:      size,
		Usage:     usage,
		props:     props,
	}, nil
}

// IsHostWritable reports whether the buffer memory can be mapped and written without explicit flushes.
func (b *Buffer) IsHostWritable() bool {
	want := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	return b.props&want == want
}

// CopyToDeviceBuffer is a convenience method to simplify the process of mapping device memory to CPU memory,
// copy bytes over to the GPU and unmapping the memory again. This requires the buffer to be
// vk.MemoryPropertyHostVisibleBit and vk.MemoryPropertyHostCoherentBit. Only a "full buffer" worth of payload
// starting at offset 0 can be copied.
func CopyToDeviceBuffer(dc *Device, deviceBuf *Buffer, payload []byte) error {
	if !deviceBuf.IsHostWritable() {
		return errors.New("cant copy to device buffer as buffer is not host visible and coherent")
	}
	if deviceBuf.Size != vk.DeviceSize(len(payload)) {
		return errors.Newf("cant copy to device buffer, buffer (%d Byte) and payload (%d Byte) differ in size",
			deviceBuf.Size, len(payload))
	}
	// Map -> copy -> Unmap
	pData, err := VkMapMemory(dc.Device, deviceBuf.DeviceMem, 0, deviceBuf.Size, 0)
	if err != nil {
		return errors.Wrap(err, "map device memory")
	}
	vk.Memcopy(pData, payload)
	vk.UnmapMemory(dc.Device, deviceBuf.DeviceMem)
	return nil
}

// CreateDeviceLocalBuffer moves payload into a new device local buffer of the given usage by way of a host visible
// staging buffer. The staging buffer is gone once this returns.
func CreateDeviceLocalBuffer(dc *Device, pool vk.CommandPool, usage vk.BufferUsageFlags, payload []byte) (*Buffer, error) {
	size := vk.DeviceSize(len(payload))
	stgBuf, err := CreateBuffer(
		dc,
		size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create staging buffer")
	}
	defer stgBuf.Destroy(dc)

	if err = CopyToDeviceBuffer(dc, stgBuf, payload); err != nil {
		return nil, err
	}
	dstBuf, err := CreateBuffer(
		dc,
		size,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create device local buffer")
	}
	err = RunOneTimeCommand(dc, pool, func(cmd vk.CommandBuffer) {
		copyRegions := []vk.BufferCopy{
			{
				SrcOffset: 0,
				DstOffset: 0,
				Size:      size,
			},
		}
		vk.CmdCopyBuffer(cmd, stgBuf.Handle, dstBuf.Handle, 1, copyRegions)
	})
	if err != nil {
		dstBuf.Destroy(dc)
		return nil, errors.Wrap(err, "copy staging buffer")
	}
	return dstBuf, nil
}

func (b *Buffer) Destroy(dc *Device) {
	vk.DestroyBuffer(dc.Device, b.Handle, nil)
	vk.FreeMemory(dc.Device, b.DeviceMem, nil)
}

// Image couples an image handle with its backing memory and the information needed to derive views from it.
type Image struct {
	Handle    vk.Image
	DeviceMem vk.DeviceMemory
	Format    vk.Format
	Width     uint32
	Height    uint32
}

func CreateImage(dc *Device, w uint32, h uint32, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags, props vk.MemoryPropertyFlags) (*Image, error) {
	imageInfo := &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		PNext:     nil,
		Flags:     0,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  w,
			Height: h,
			Depth:  1,
		},
		MipLevels:             1,
		ArrayLayers:           1,
		Samples:               vk.SampleCount1Bit,
		Tiling:                tiling,
		Usage:                 usage,
		SharingMode:           vk.SharingModeExclusive,
		QueueFamilyIndexCount: 0,
		PQueueFamilyIndices:   nil,
		InitialLayout:         vk.ImageLayoutUndefined,
	}
	img, err := VkCreateImage(dc.Device, imageInfo, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "create %dx%d image", w, h)
	}

	memRequirements := ReadImageMemoryRequirements(dc.Device, img)
	memType, err := findMemoryType(dc, memRequirements.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyImage(dc.Device, img, nil)
		return nil, err
	}
	allocInfo := &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		PNext:           nil,
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memType,
	}
	imgMemory, err := VkAllocateMemory(dc.Device, allocInfo, nil)
	if err != nil {
		vk.DestroyImage(dc.Device, img, nil)
		return nil, errors.Wrap(err, "allocate image memory")
	}
	if err = VkBindImageMemory(dc.Device, img, imgMemory, 0); err != nil {
		vk.DestroyImage(dc.Device, img, nil)
		vk.FreeMemory(dc.Device, imgMemory, nil)
		return nil, errors.Wrap(err, "bind image memory")
	}
	return &Image{
		Handle:    img,
		DeviceMem: imgMemory,
		Format:    format,
		Width:     w,
		Height:    h,
	}, nil
}

func (img *Image) CreateView(dc *Device, aspect vk.ImageAspectFlags) (vk.ImageView, error) {
	view, err := VKSCreate2DImageView(dc.Device, img.Handle, img.Format, aspect)
	if err != nil {
		return nil, errors.Wrap(err, "create image view")
	}
	return view, nil
}

func (img *Image) Destroy(dc *Device) {
	vk.DestroyImage(dc.Device, img.Handle, nil)
	vk.FreeMemory(dc.Device, img.DeviceMem, nil)
}

func findMemoryType(dc *Device, typeFilter uint32, propFlags vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < dc.PdMemoryProps.MemoryTypeCount; i++ {
		ofType := (typeFilter & (1 << i)) > 0
		hasProperties := dc.PdMemoryProps.MemoryTypes[i].PropertyFlags&propFlags == propFlags
		if ofType && hasProperties {
			return i, nil
		}
	}
	log.Printf("No memory type matches filter %032b with properties %032b", typeFilter, propFlags)
	return 0, errors.New("failed to find suitable memory type")
}
