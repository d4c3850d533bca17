package model

import (
	vk "github.com/goki/vulkan"
)

// DeviceMesh is the uploaded form of a mesh that command buffers draw from.
type DeviceMesh interface {
	Bind(cmd vk.CommandBuffer)
	Draw(cmd vk.CommandBuffer)
}

// Role decides which passes draw a model.
type Role int

const (
	// RoleCaster models are drawn into the shadow map and shaded with the object pipeline.
	RoleCaster Role = iota
	// RoleReceiver models only catch shadows and are shaded with the floor pipeline.
	RoleReceiver
)

func (r Role) String() string {
	switch r {
	case RoleCaster:
		return "caster"
	case RoleReceiver:
		return "receiver"
	default:
		return "unknown"
	}
}

func (r Role) CastsShadow() bool {
	return r == RoleCaster
}

type Model struct {
	Name string
	Mesh *TriMesh
	Role Role

	// Set once the model was added to a scene, the renderer owns the device memory behind it
	VBO DeviceMesh
}

func NewModel(m *TriMesh, n string, role Role) *Model {
	return &Model{
		Name: n,
		Mesh: m,
		Role: role,
	}
}
