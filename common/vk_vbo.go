package common

import (
	"vulkan_shadow_mapping/rawbytes"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

const (
	POSITION_LOCATION = 0
	NORMAL_LOCATION   = 1
	TEXCOORD_LOCATION = 2

	positionStride = 3 * 4
	normalStride   = 3 * 4
	texCoordStride = 2 * 4
)

// VertexLayout describes where each attribute stream starts inside a non-interleaved vertex buffer. All positions
// come first, followed by all normals and, if present, all texture coordinates.
type VertexLayout struct {
	VertexCount    uint32
	HasTexCoords   bool
	PositionOffset vk.DeviceSize
	NormalOffset   vk.DeviceSize
	TexCoordOffset vk.DeviceSize
	Size           vk.DeviceSize
}

func NewVertexLayout(vertexCount uint32, withTexCoords bool) VertexLayout {
	n := vk.DeviceSize(vertexCount)
	l := VertexLayout{
		VertexCount:    vertexCount,
		HasTexCoords:   withTexCoords,
		PositionOffset: 0,
		NormalOffset:   n * positionStride,
	}
	l.Size = l.NormalOffset + n*normalStride
	if withTexCoords {
		l.TexCoordOffset = l.Size
		l.Size += n * texCoordStride
	}
	return l
}

// Offsets lists the start of every attribute stream in binding order.
func (l VertexLayout) Offsets() []vk.DeviceSize {
	offsets := []vk.DeviceSize{l.PositionOffset, l.NormalOffset}
	if l.HasTexCoords {
		offsets = append(offsets, l.TexCoordOffset)
	}
	return offsets
}

// VertexInputDescriptions returns one binding per attribute, with the binding number equal to the shader location.
func VertexInputDescriptions(withTexCoords bool) ([]vk.VertexInputBindingDescription, []vk.VertexInputAttributeDescription) {
	bindings := []vk.VertexInputBindingDescription{
		{Binding: POSITION_LOCATION, Stride: positionStride, InputRate: vk.VertexInputRateVertex},
		{Binding: NORMAL_LOCATION, Stride: normalStride, InputRate: vk.VertexInputRateVertex},
	}
	attributes := []vk.VertexInputAttributeDescription{
		{Location: POSITION_LOCATION, Binding: POSITION_LOCATION, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
		{Location: NORMAL_LOCATION, Binding: NORMAL_LOCATION, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
	}
	if withTexCoords {
		bindings = append(bindings, vk.VertexInputBindingDescription{
			Binding: TEXCOORD_LOCATION, Stride: texCoordStride, InputRate: vk.VertexInputRateVertex,
		})
		attributes = append(attributes, vk.VertexInputAttributeDescription{
			Location: TEXCOORD_LOCATION, Binding: TEXCOORD_LOCATION, Format: vk.FormatR32g32Sfloat, Offset: 0,
		})
	}
	return bindings, attributes
}

// PackVertexStreams concatenates the attribute streams in the order described by NewVertexLayout.
func PackVertexStreams(positions, normals, texCoords []float32) (VertexLayout, []byte, error) {
	if len(positions) == 0 || len(positions)%3 != 0 {
		return VertexLayout{}, nil, errors.Newf("position count %d is not a positive multiple of 3", len(positions))
	}
	vertexCount := len(positions) / 3
	if len(normals) != len(positions) {
		return VertexLayout{}, nil, errors.Newf("got %d normal components for %d vertices", len(normals), vertexCount)
	}
	if len(texCoords) != 0 && len(texCoords) != 2*vertexCount {
		return VertexLayout{}, nil, errors.Newf("got %d texcoord components for %d vertices", len(texCoords), vertexCount)
	}
	layout := NewVertexLayout(uint32(vertexCount), len(texCoords) != 0)
	payload := make([]byte, 0, layout.Size)
	payload = append(payload, rawbytes.Float32Bytes(positions)...)
	payload = append(payload, rawbytes.Float32Bytes(normals)...)
	payload = append(payload, rawbytes.Float32Bytes(texCoords)...)
	return layout, payload, nil
}

// VertexBufferObject holds a mesh in device local memory. The vertex streams share one buffer, the uint32 indices
// live in a second one.
type VertexBufferObject struct {
	Layout     VertexLayout
	IndexCount uint32

	vertices *Buffer
	indices  *Buffer
}

func NewVertexBufferObject(dc *Device, pool vk.CommandPool, positions, normals, texCoords []float32, indices []uint32) (*VertexBufferObject, error) {
	layout, payload, err := PackVertexStreams(positions, normals, texCoords)
	if err != nil {
		return nil, err
	}
	if len(indices) == 0 {
		return nil, errors.New("cannot upload a mesh without indices")
	}
	for i, idx := range indices {
		if idx >= layout.VertexCount {
			return nil, errors.Newf("index %d at position %d exceeds vertex count %d", idx, i, layout.VertexCount)
		}
	}
	vBuf, err := CreateDeviceLocalBuffer(dc, pool, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), payload)
	if err != nil {
		return nil, errors.Wrap(err, "upload vertex buffer")
	}
	iBuf, err := CreateDeviceLocalBuffer(dc, pool, vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit), rawbytes.Uint32Bytes(indices))
	if err != nil {
		vBuf.Destroy(dc)
		return nil, errors.Wrap(err, "upload index buffer")
	}
	return &VertexBufferObject{
		Layout:     layout,
		IndexCount: uint32(len(indices)),
		vertices:   vBuf,
		indices:    iBuf,
	}, nil
}

// Bind binds every attribute stream the buffer holds plus its index buffer.
func (v *VertexBufferObject) Bind(cmd vk.CommandBuffer) {
	offsets := v.Layout.Offsets()
	buffers := make([]vk.Buffer, len(offsets))
	for i := range buffers {
		buffers[i] = v.vertices.Handle
	}
	vk.CmdBindVertexBuffers(cmd, 0, uint32(len(buffers)), buffers, offsets)
	vk.CmdBindIndexBuffer(cmd, v.indices.Handle, 0, vk.IndexTypeUint32)
}

func (v *VertexBufferObject) Draw(cmd vk.CommandBuffer) {
	vk.CmdDrawIndexed(cmd, v.IndexCount, 1, 0, 0, 0)
}

func (v *VertexBufferObject) Destroy(dc *Device) {
	v.vertices.Destroy(dc)
	v.indices.Destroy(dc)
}
