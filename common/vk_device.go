package common

import (
	"log"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

var VALIDATION_LAYERS = []string{
	"VK_LAYER_KHRONOS_validation",
}

var DEVICE_EXTENSIONS = []string{
	"VK_KHR_swapchain",
}

// Device represents the interfacing objects between the SDL window, the Hardware running Vulkan
// and the rest of the rendering engine. Its main purpose is to encapsulate the corresponding objects
// to make the initialization and teardown of a given application neater.
type Device struct {
	PhysicalDevice vk.PhysicalDevice
	PdProps        vk.PhysicalDeviceProperties
	PdMemoryProps  vk.PhysicalDeviceMemoryProperties
	QFamilies      QueueFamilyIndices

	Device    vk.Device
	GraphicsQ vk.Queue
	PresentQ  vk.Queue
}

// NewDevice selects the most capable suitable GPU for the window's surface and creates a logical device with a
// graphics and a present queue on it. Validation layers are only enabled on the device if the window's instance
// was created with them.
func NewDevice(w *Window) (*Device, error) {
	dc := &Device{}
	if err := dc.selectPhysicalDevice(w.Inst, w.Surf); err != nil {
		return nil, err
	}
	if err := dc.createLogicalDevice(w.ValidationLayers); err != nil {
		return nil, err
	}
	return dc, nil
}

// Destroy all objects created by itself. It does not destroy the sdl.window object provided for instantiation.
func (dc *Device) Destroy() {
	vk.DestroyDevice(dc.Device, nil)
}

// WaitIdle blocks until all queues of the device ran dry.
func (dc *Device) WaitIdle() {
	vk.DeviceWaitIdle(dc.Device)
}

// FindSupportedFormat returns the first candidate offering all requested features for the given tiling.
func (dc *Device) FindSupportedFormat(candidates []vk.Format, tiling vk.ImageTiling, features vk.FormatFeatureFlags) (vk.Format, error) {
	for _, format := range candidates {
		fProps := ReadFormatProperties(dc.PhysicalDevice, format)
		if tiling == vk.ImageTilingLinear && (fProps.LinearTilingFeatures&features) == features {
			return format, nil
		} else if tiling == vk.ImageTilingOptimal && (fProps.OptimalTilingFeatures&features) == features {
			return format, nil
		}
	}
	return vk.FormatUndefined, errors.Newf("none of the %d candidate formats is supported", len(candidates))
}

// FindDepthFormat picks a depth attachment format, preferring a pure 32 bit depth format.
func (dc *Device) FindDepthFormat() (vk.Format, error) {
	return dc.FindSupportedFormat(
		[]vk.Format{vk.FormatD32Sfloat, vk.FormatD32SfloatS8Uint, vk.FormatD24UnormS8Uint},
		vk.ImageTilingOptimal,
		vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit),
	)
}

func HasStencilComponent(format vk.Format) bool {
	return format == vk.FormatD32SfloatS8Uint || format == vk.FormatD24UnormS8Uint
}

func (dc *Device) selectPhysicalDevice(in *vk.Instance, su *vk.Surface) error {
	availableDevices, err := ReadPhysicalDevices(*in)
	if err != nil {
		return err
	}
	var pd vk.PhysicalDevice
	bestScore := 0
	for i := range availableDevices {
		if score := rateDevice(availableDevices[i], su); score > bestScore {
			pd = availableDevices[i]
			bestScore = score
		}
	}
	if pd == nil {
		return errors.New("no suitable physical device (GPU) found")
	}
	dc.PhysicalDevice = pd

	// Also set related member variables for dc.PhysicalDevice as they are needed later
	qf, err := findQueueFamilies(dc.PhysicalDevice, *su)
	if err != nil {
		return errors.Wrap(err, "read queue families from selected device")
	}
	dc.QFamilies = *qf
	dc.PdProps = ReadPhysicalDeviceProperties(dc.PhysicalDevice)
	dc.PdMemoryProps = ReadDeviceMemoryProperties(dc.PhysicalDevice)
	log.Printf("Selected physical device \"%s\"", vk.ToString(dc.PdProps.DeviceName[:]))
	return nil
}

// rateDevice returns 0 for devices that cannot run the renderer. Discrete GPUs rank above everything else.
func rateDevice(pd vk.PhysicalDevice, su *vk.Surface) int {
	pdProps := ReadPhysicalDeviceProperties(pd)
	pdFeatures := ReadPhysicalDeviceFeatures(pd)
	pdQueueFams := ReadQueueFamilies(pd)

	log.Printf("Physical device\n%s", ToStringPhysicalDeviceTable(pdProps, pdQueueFams))

	if _, err := findQueueFamilies(pd, *su); err != nil {
		log.Printf("Failed to get required queue families: %s", err)
		return 0
	}
	if pdFeatures.SamplerAnisotropy != vk.True {
		log.Printf("Device lacks sampler anisotropy")
		return 0
	}
	if !checkDeviceExtensionSupport(pd, DEVICE_EXTENSIONS) {
		return 0
	}
	if !checkSwapChainAdequacy(pd, *su) {
		return 0
	}

	score := 1
	switch pdProps.DeviceType {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		score += 1000
	case vk.PhysicalDeviceTypeIntegratedGpu:
		score += 100
	}
	return score
}

func (dc *Device) createLogicalDevice(validationLayers []string) error {
	queueInfos := dc.QFamilies.toQueueCreateInfos()
	deviceFeatures := vk.PhysicalDeviceFeatures{
		SamplerAnisotropy: vk.True,
	}
	deviceCreateInfo := &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledLayerCount:       0,
		PpEnabledLayerNames:     nil,
		EnabledExtensionCount:   uint32(len(DEVICE_EXTENSIONS)),
		PpEnabledExtensionNames: TerminatedStrs(DEVICE_EXTENSIONS),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
	}
	if len(validationLayers) > 0 {
		deviceCreateInfo.EnabledLayerCount = uint32(len(validationLayers))
		deviceCreateInfo.PpEnabledLayerNames = TerminatedStrs(validationLayers)
	}

	var err error
	dc.Device, err = VkCreateDevice(dc.PhysicalDevice, deviceCreateInfo, nil)
	if err != nil {
		return errors.Wrap(err, "create logical device")
	}
	dc.GraphicsQ, err = VkGetDeviceQueue(dc.Device, dc.QFamilies.GraphicsFamily, 0)
	if err != nil {
		return errors.Wrap(err, "get 'graphics' device queue")
	}
	dc.PresentQ, err = VkGetDeviceQueue(dc.Device, dc.QFamilies.PresentFamily, 0)
	if err != nil {
		return errors.Wrap(err, "get 'present' device queue")
	}
	log.Println("Successfully created logical device")
	return nil
}

func checkDeviceExtensionSupport(pd vk.PhysicalDevice, requiredDeviceExt []string) bool {
	supportedExtNames, err := ReadDeviceExtensionPropertyNames(pd)
	if err != nil {
		log.Printf("Failed to read device extensions: %v", err)
		return false
	}
	if missing := MissingOfAinB(requiredDeviceExt, supportedExtNames); len(missing) > 0 {
		log.Printf("Device lacks required extensions: %v", missing)
		return false
	}
	return true
}
