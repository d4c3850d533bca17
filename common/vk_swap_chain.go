package common

import (
	"log"
	"math"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

type SwapChain struct {
	supDetails SwapChainDetails
	Handle     vk.Swapchain

	Format      vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extend      vk.Extent2D

	Images   []vk.Image
	ImgViews []vk.ImageView
	Aspect   float32

	FrameBuffers []vk.Framebuffer
}

func NewSwapChain(dc *Device, w *Window) (*SwapChain, error) {
	sc := &SwapChain{}
	sc.chooseConfiguration(dc, w)
	if sc.Extend.Width == 0 || sc.Extend.Height == 0 {
		return nil, errors.New("surface has a zero sized extent")
	}
	if err := sc.createSwapChainHandle(dc, w); err != nil {
		return nil, err
	}
	sc.Images = ReadSwapChainImages(dc.Device, sc.Handle)
	if err := sc.createImageViews(dc); err != nil {
		sc.Destroy(dc)
		return nil, err
	}

	// Precalculate the images' aspect ratio for later
	sc.Aspect = float32(sc.Extend.Width) / float32(sc.Extend.Height)
	return sc, nil
}

// CreateFrameBuffers creates one frame buffer per swap chain image for the given render pass. The optional depth
// view is shared between all of them.
func (sc *SwapChain) CreateFrameBuffers(dc *Device, renderPass vk.RenderPass, depthImageView *vk.ImageView) error {
	sc.FrameBuffers = make([]vk.Framebuffer, 0, len(sc.ImgViews))
	for i := range sc.ImgViews {
		attachments := []vk.ImageView{sc.ImgViews[i]}
		if depthImageView != nil {
			attachments = append(attachments, *depthImageView)
		}
		framebufferInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			PNext:           nil,
			Flags:           0,
			RenderPass:      renderPass,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           sc.Extend.Width,
			Height:          sc.Extend.Height,
			Layers:          1,
		}
		fb, err := VkCreateFrameBuffer(dc.Device, &framebufferInfo, nil)
		if err != nil {
			return errors.Wrapf(err, "create frame buffer [%d]", i)
		}
		sc.FrameBuffers = append(sc.FrameBuffers, fb)
	}
	log.Printf("Successfully created %d frame buffers", len(sc.FrameBuffers))
	return nil
}

func (sc *SwapChain) chooseConfiguration(dc *Device, w *Window) {
	sc.supDetails = ReadSwapChainSupportDetails(dc.PhysicalDevice, *w.Surf)
	sc.Format = sc.supDetails.selectSwapSurfaceFormat(vk.FormatB8g8r8a8Srgb, vk.ColorSpaceSrgbNonlinear)
	sc.PresentMode = sc.supDetails.selectSwapPresentMode(vk.PresentModeMailbox)
	sc.Extend = sc.supDetails.selectSwapExtent(w.DrawableSize())
}

func (sc *SwapChain) createSwapChainHandle(dc *Device, w *Window) error {
	imgCount := sc.supDetails.selectImageCount()

	// Depending on whether our queue families are the same for graphics and presentation, we need to choose different
	// swap chain configurations: https://vulkan-tutorial.com/Drawing_a_triangle/Presentation/Swap_chain
	sharingMode := vk.SharingModeExclusive
	var qFamIndices []uint32
	if !dc.QFamilies.IsShared() {
		sharingMode = vk.SharingModeConcurrent
		qFamIndices = dc.QFamilies.UniqueFamilies()
	}

	createInfo := &vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		Surface:               *w.Surf,
		MinImageCount:         imgCount,
		ImageFormat:           sc.Format.Format,
		ImageColorSpace:       sc.Format.ColorSpace,
		ImageExtent:           sc.Extend,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      sharingMode,
		QueueFamilyIndexCount: uint32(len(qFamIndices)),
		PQueueFamilyIndices:   qFamIndices,
		PreTransform:          sc.supDetails.capabilities.CurrentTransform,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           sc.PresentMode,
		Clipped:               vk.True,
		OldSwapchain:          nil,
	}

	var err error
	sc.Handle, err = VkCreateSwapChain(dc.Device, createInfo, nil)
	if err != nil {
		return errors.Wrap(err, "create swapchain")
	}
	log.Printf("Successfully created swap chain (%dx%d, %d images)", sc.Extend.Width, sc.Extend.Height, imgCount)
	return nil
}

func (sc *SwapChain) createImageViews(dc *Device) error {
	sc.ImgViews = make([]vk.ImageView, 0, len(sc.Images))
	for i := range sc.Images {
		view, err := VKSCreate2DImageView(dc.Device, sc.Images[i], sc.Format.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			return errors.Wrapf(err, "create swap chain image view [%d]", i)
		}
		sc.ImgViews = append(sc.ImgViews, view)
	}
	return nil
}

func (sc *SwapChain) Destroy(dc *Device) {
	for i := range sc.FrameBuffers {
		vk.DestroyFramebuffer(dc.Device, sc.FrameBuffers[i], nil)
	}
	sc.FrameBuffers = nil
	for i := range sc.ImgViews {
		vk.DestroyImageView(dc.Device, sc.ImgViews[i], nil)
	}
	sc.ImgViews = nil
	vk.DestroySwapchain(dc.Device, sc.Handle, nil)
}

type SwapChainDetails struct {
	capabilities vk.SurfaceCapabilities
	formats      []vk.SurfaceFormat
	presentModes []vk.PresentMode
}

func (s *SwapChainDetails) selectSwapSurfaceFormat(desiredFormat vk.Format, desiredColorSpace vk.ColorSpace) vk.SurfaceFormat {
	for _, af := range s.formats {
		if af.Format == desiredFormat && af.ColorSpace == desiredColorSpace {
			return af
		}
	}
	fallbackFormat := s.formats[0]
	log.Printf("Did not find prefered SurfaceFormat, selecting first one available. (%v)", fallbackFormat)
	return fallbackFormat
}

func (s *SwapChainDetails) selectSwapPresentMode(desiredMode vk.PresentMode) vk.PresentMode {
	for _, pm := range s.presentModes {
		if pm == desiredMode {
			return pm
		}
	}
	log.Printf("Did not find prefered PresentMode, selecting FIFO.")
	return vk.PresentModeFifo
}

// selectSwapExtent uses the surface's current extent unless the window manager lets us pick, signalled by
// a width of MaxUint32. Then the drawable size clamped to the supported range is used.
func (s *SwapChainDetails) selectSwapExtent(drawableW, drawableH uint32) vk.Extent2D {
	if s.capabilities.CurrentExtent.Width != math.MaxUint32 {
		return s.capabilities.CurrentExtent
	}
	minE, maxE := s.capabilities.MinImageExtent, s.capabilities.MaxImageExtent
	return vk.Extent2D{
		Width:  clampUint32(drawableW, minE.Width, maxE.Width),
		Height: clampUint32(drawableH, minE.Height, maxE.Height),
	}
}

// selectImageCount asks for one image more than the minimum, a MaxImageCount of 0 means unlimited.
func (s *SwapChainDetails) selectImageCount() uint32 {
	imgCount := s.capabilities.MinImageCount + 1
	if s.capabilities.MaxImageCount > 0 && imgCount > s.capabilities.MaxImageCount {
		imgCount = s.capabilities.MaxImageCount
	}
	return imgCount
}

func clampUint32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func checkSwapChainAdequacy(pd vk.PhysicalDevice, surface vk.Surface) bool {
	scDetails := ReadSwapChainSupportDetails(pd, surface)
	log.Printf("Surface offers %d formats and %d present modes", len(scDetails.formats), len(scDetails.presentModes))
	return len(scDetails.formats) > 0 && len(scDetails.presentModes) > 0
}
