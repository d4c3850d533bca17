package common

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

// Utility functions that reduce visual clutter by abstracting some of the common default values into very obvious
// functions that should cover their respective use case most of the time. The main way typing is reduced is by
// moving or defaulting parameters from 'createInfo' structs.

func VKAllocateCommandBuffersPrimary(device vk.Device, cmdPool vk.CommandPool, count uint32) ([]vk.CommandBuffer, error) {
	cbAllocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		PNext:              nil,
		CommandPool:        cmdPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}
	return VKSAllocateCommandBuffers(device, &cbAllocateInfo)
}

// OneTimeCommand is a primary command buffer that is recorded, submitted and awaited exactly once. It is used for
// uploads and layout transitions that happen outside the frame loop.
type OneTimeCommand struct {
	device vk.Device
	pool   vk.CommandPool
	queue  vk.Queue

	Buffer vk.CommandBuffer
}

// BeginOneTimeCommand allocates a command buffer from pool and starts recording into it.
func BeginOneTimeCommand(device vk.Device, pool vk.CommandPool, queue vk.Queue) (*OneTimeCommand, error) {
	buffers, err := VKAllocateCommandBuffersPrimary(device, pool, 1)
	if err != nil {
		return nil, errors.Wrap(err, "allocate one time command buffer")
	}
	beginInfo := vk.CommandBufferBeginInfo{
		SType:            vk.StructureTypeCommandBufferBeginInfo,
		PNext:            nil,
		Flags:            vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
		PInheritanceInfo: nil,
	}
	if err := VkBeginCommandBuffer(buffers[0], &beginInfo); err != nil {
		vk.FreeCommandBuffers(device, pool, 1, buffers)
		return nil, errors.Wrap(err, "begin one time command buffer")
	}
	return &OneTimeCommand{
		device: device,
		pool:   pool,
		queue:  queue,
		Buffer: buffers[0],
	}, nil
}

// End finishes recording, submits the buffer, waits for the queue to drain and frees the buffer again. The
// buffer is freed even if recording or submission failed.
func (o *OneTimeCommand) End() error {
	defer vk.FreeCommandBuffers(o.device, o.pool, 1, []vk.CommandBuffer{o.Buffer})

	if err := VkEndCommandBuffer(o.Buffer); err != nil {
		return errors.Wrap(err, "end one time command buffer")
	}
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		PNext:                nil,
		WaitSemaphoreCount:   0,
		PWaitSemaphores:      nil,
		PWaitDstStageMask:    nil,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{o.Buffer},
		SignalSemaphoreCount: 0,
		PSignalSemaphores:    nil,
	}
	if err := VkQueueSubmit(o.queue, []vk.SubmitInfo{submitInfo}, nil); err != nil {
		return errors.Wrap(err, "submit one time command buffer")
	}
	return vk.Error(vk.QueueWaitIdle(o.queue))
}

// RunOneTimeCommand records the commands issued by record into a one time command buffer and executes them.
func RunOneTimeCommand(dc *Device, pool vk.CommandPool, record func(cmd vk.CommandBuffer)) error {
	otc, err := BeginOneTimeCommand(dc.Device, pool, dc.GraphicsQ)
	if err != nil {
		return err
	}
	record(otc.Buffer)
	return otc.End()
}
