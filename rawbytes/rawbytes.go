// Package rawbytes reinterprets numeric slices as the bytes handed to Vulkan buffers. It imports neither Vulkan nor
// SDL, so mesh and uniform code can use it without cgo.
package rawbytes

import "unsafe"

// Float32Bytes drops type reference from a float slice to allow Go to pass it to Vulkan
func Float32Bytes(in []float32) []byte {
	if len(in) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&in[0])), len(in)*4)
}

// Uint32Bytes drops type reference from an index slice to allow Go to pass it to Vulkan
func Uint32Bytes(in []uint32) []byte {
	if len(in) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&in[0])), len(in)*4)
}
