package common

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

// UniformData is anything that can be written into a uniform buffer as a fixed size block of bytes.
type UniformData interface {
	Bytes() []byte
	Size() vk.DeviceSize
}

// UniformBuffer keeps one host visible buffer per frame in flight. The buffers stay mapped for their whole lifetime
// so updating them each frame is a plain memory copy.
type UniformBuffer[T UniformData] struct {
	size    vk.DeviceSize
	buffers []*Buffer
	mapped  []unsafe.Pointer
}

func NewUniformBuffer[T UniformData](dc *Device, framesInFlight int) (*UniformBuffer[T], error) {
	var zero T
	ub := &UniformBuffer[T]{
		size:    zero.Size(),
		buffers: make([]*Buffer, 0, framesInFlight),
		mapped:  make([]unsafe.Pointer, 0, framesInFlight),
	}
	for i := 0; i < framesInFlight; i++ {
		buf, err := CreateBuffer(
			dc,
			ub.size,
			vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		)
		if err != nil {
			ub.Destroy(dc)
			return nil, errors.Wrapf(err, "create uniform buffer [%d]", i)
		}
		pData, err := VkMapMemory(dc.Device, buf.DeviceMem, 0, ub.size, 0)
		if err != nil {
			buf.Destroy(dc)
			ub.Destroy(dc)
			return nil, errors.Wrapf(err, "map uniform buffer [%d]", i)
		}
		ub.buffers = append(ub.buffers, buf)
		ub.mapped = append(ub.mapped, pData)
	}
	return ub, nil
}

// Update overwrites the buffer of the given frame. The frame's fence must have been waited on before.
func (ub *UniformBuffer[T]) Update(frame int, data T) error {
	if frame < 0 || frame >= len(ub.mapped) {
		return errors.Newf("frame %d out of range, have %d uniform buffers", frame, len(ub.mapped))
	}
	payload := data.Bytes()
	if vk.DeviceSize(len(payload)) != ub.size {
		return errors.Newf("uniform payload is %d bytes, buffer holds %d", len(payload), ub.size)
	}
	vk.Memcopy(ub.mapped[frame], payload)
	return nil
}

func (ub *UniformBuffer[T]) Handle(frame int) vk.Buffer {
	return ub.buffers[frame].Handle
}

func (ub *UniformBuffer[T]) Size() vk.DeviceSize {
	return ub.size
}

// DescriptorInfo describes the whole buffer of a frame for a uniform buffer binding.
func (ub *UniformBuffer[T]) DescriptorInfo(frame int) vk.DescriptorBufferInfo {
	return vk.DescriptorBufferInfo{
		Buffer: ub.buffers[frame].Handle,
		Offset: 0,
		Range:  ub.size,
	}
}

func (ub *UniformBuffer[T]) Destroy(dc *Device) {
	for i := range ub.buffers {
		vk.UnmapMemory(dc.Device, ub.buffers[i].DeviceMem)
		ub.buffers[i].Destroy(dc)
	}
	ub.buffers = nil
	ub.mapped = nil
}
