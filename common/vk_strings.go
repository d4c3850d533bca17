package common

import (
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"
)

// Human-readable renderings of device information, only used for logging during device selection.

func ToStringPhysicalDeviceTable(pdProps vk.PhysicalDeviceProperties, qFamilies []vk.QueueFamilyProperties) string {
	strBuilder := strings.Builder{}
	for i := range qFamilies {
		prefix := "| "
		if i == len(qFamilies)-1 {
			prefix = "|_"
		}
		strBuilder.WriteString(fmt.Sprintf("%sQfamily[%d] %s\n", prefix, i, toStringQueueFamily(qFamilies[i])))
	}
	return fmt.Sprintf(
		"%s:\n|_api: %s, driver: %s, vendor: %s, type: %s\n%s",
		vk.ToString(pdProps.DeviceName[:]),
		vk.Version(pdProps.ApiVersion).String(),
		asDriverVersion(vk.VendorId(pdProps.VendorID), pdProps.DriverVersion),
		asVendorName(vk.VendorId(pdProps.VendorID)),
		toStringDeviceType(pdProps.DeviceType),
		strBuilder.String(),
	)
}

func asVendorName(v vk.VendorId) string {
	switch v {
	case 0x1002:
		return "AMD"
	case 0x1010:
		return "ImgTec"
	case 0x10DE:
		return "NVIDIA"
	case 0x13B5:
		return "ARM"
	case 0x5143:
		return "Qualcomm"
	case 0x8086:
		return "INTEL"
	case 0x10005:
		return "Mesa"
	default:
		return "unknown"
	}
}

func asDriverVersion(vendor vk.VendorId, raw uint32) string {
	// NVIDIA packs its driver version differently
	if vendor == 0x10DE {
		return fmt.Sprintf("%d.%d.%d.%d", (raw>>22)&0x3ff, (raw>>14)&0x0ff, (raw>>6)&0x0ff, raw&0x003f)
	}
	return vk.Version(raw).String()
}

func toStringDeviceType(dt vk.PhysicalDeviceType) string {
	switch dt {
	case vk.PhysicalDeviceTypeOther:
		return "other"
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated Gpu"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete Gpu"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual Gpu"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	default:
		return "unknown"
	}
}

func toStringQueueFamily(q vk.QueueFamilyProperties) string {
	var caps []string
	flags := vk.QueueFlagBits(q.QueueFlags)
	if flags&vk.QueueGraphicsBit != 0 {
		caps = append(caps, "graphics")
	}
	if flags&vk.QueueComputeBit != 0 {
		caps = append(caps, "compute")
	}
	if flags&vk.QueueTransferBit != 0 {
		caps = append(caps, "transfer")
	}
	return fmt.Sprintf("queues: %2d [%s]", q.QueueCount, strings.Join(caps, ", "))
}
