package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gputypes"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anima-hal/engine/core"
)

// VulkanContext is a headless instance, device and queue. It creates the
// native objects the encoder records against but owns no command buffers.
type VulkanContext struct {
	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks

	PhysicalDevice vk.PhysicalDevice
	Properties     vk.PhysicalDeviceProperties
	Memory         vk.PhysicalDeviceMemoryProperties
	DeviceName     string

	Device           *LogicalDevice
	QueueFamilyIndex uint32
	Queue            vk.Queue

	locks    *VulkanLockPool
	usesGLFW bool
}

func loadVulkan(loader string) error {
	switch loader {
	case "glfw":
		if err := glfw.Init(); err != nil {
			return fmt.Errorf("failed to initialize glfw: %w", err)
		}
		procAddr := glfw.GetVulkanGetInstanceProcAddress()
		if procAddr == nil {
			return fmt.Errorf("GetInstanceProcAddress is nil")
		}
		vk.SetGetInstanceProcAddr(procAddr)
	default:
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return fmt.Errorf("failed to load Vulkan library: %w", err)
		}
	}
	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to initialize vk: %w", err)
	}
	return nil
}

func NewVulkanContext(cfg core.DeviceConfig) (*VulkanContext, error) {
	if err := loadVulkan(cfg.Loader); err != nil {
		core.LogError("%s", err)
		return nil, err
	}
	context := &VulkanContext{
		locks:    NewVulkanLockPool(),
		usesGLFW: cfg.Loader == "glfw",
	}

	if err := context.createInstance(cfg); err != nil {
		context.Destroy()
		return nil, err
	}
	if err := context.selectPhysicalDevice(); err != nil {
		context.Destroy()
		return nil, err
	}
	if err := context.createDevice(); err != nil {
		context.Destroy()
		return nil, err
	}
	return context, nil
}

func (vc *VulkanContext) createInstance(cfg core.DeviceConfig) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(cfg.ApplicationName),
		PEngineName:        VulkanSafeString("Anima HAL"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	var extensions []string
	if runtime.GOOS == "darwin" {
		extensions = append(extensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		createInfo.Flags |= 1
	}
	createInfo.EnabledExtensionCount = uint32(len(extensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(extensions)

	if cfg.Validation {
		layers := []string{"VK_LAYER_KHRONOS_validation"}
		if !layersAvailable(layers) {
			core.LogWarn("validation requested but %v is not available", layers)
		} else {
			core.LogInfo("Validation layers enabled.")
			createInfo.EnabledLayerCount = uint32(len(layers))
			createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)
		}
	}

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, vc.Allocator, &instance); res != vk.Success {
		err := fmt.Errorf("vkCreateInstance failed: %s", VulkanResultString(res, true))
		core.LogError("%s", err)
		return err
	}
	vc.Instance = instance
	if err := vk.InitInstance(instance); err != nil {
		return fmt.Errorf("failed to load instance functions: %w", err)
	}
	core.LogInfo("Vulkan instance created.")
	return nil
}

func layersAvailable(required []string) bool {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return false
	}
	available := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, available); res != vk.Success {
		return false
	}
	for _, name := range required {
		found := false
		for i := range available {
			available[i].Deref()
			if CString(available[i].LayerName[:]) == name {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// selectPhysicalDevice picks the first device with a graphics queue,
// preferring discrete GPUs.
func (vc *VulkanContext) selectPhysicalDevice() error {
	var count uint32
	if res := vk.EnumeratePhysicalDevices(vc.Instance, &count, nil); res != vk.Success || count == 0 {
		return fmt.Errorf("no devices which support Vulkan were found")
	}
	devices := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(vc.Instance, &count, devices); res != vk.Success {
		return mapResult("vkEnumeratePhysicalDevices", res)
	}

	found := false
	for _, device := range devices {
		family, ok := graphicsQueueFamily(device)
		if !ok {
			continue
		}
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(device, &properties)
		properties.Deref()

		if found && properties.DeviceType != vk.PhysicalDeviceTypeDiscreteGpu {
			continue
		}
		vc.PhysicalDevice = device
		vc.Properties = properties
		vc.QueueFamilyIndex = family
		found = true
		if properties.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu {
			break
		}
	}
	if !found {
		return fmt.Errorf("no physical device with a graphics queue")
	}

	vk.GetPhysicalDeviceMemoryProperties(vc.PhysicalDevice, &vc.Memory)
	vc.Memory.Deref()
	vc.DeviceName = CString(vc.Properties.DeviceName[:])

	core.LogInfo("Selected device: '%s'.", vc.DeviceName)
	core.LogInfo(
		"Vulkan API version: %d.%d.%d",
		vk.Version.Major(vk.Version(vc.Properties.ApiVersion)),
		vk.Version.Minor(vk.Version(vc.Properties.ApiVersion)),
		vk.Version.Patch(vk.Version(vc.Properties.ApiVersion)),
	)
	return nil
}

func graphicsQueueFamily(device vk.PhysicalDevice) (uint32, bool) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, families)
	for i := range families {
		families[i].Deref()
		if families[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			return uint32(i), true
		}
	}
	return 0, false
}

func (vc *VulkanContext) createDevice() error {
	core.LogInfo("Creating logical device...")
	queueCreateInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: vc.QueueFamilyIndex,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}
	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos:    []vk.DeviceQueueCreateInfo{queueCreateInfo},
	}

	var device vk.Device
	if res := vk.CreateDevice(vc.PhysicalDevice, &deviceCreateInfo, vc.Allocator, &device); res != vk.Success {
		err := mapResult("vkCreateDevice", res)
		core.LogError("%s", err)
		return err
	}
	vc.Device = &LogicalDevice{Handle: device, Allocator: vc.Allocator}

	var queue vk.Queue
	vk.GetDeviceQueue(device, vc.QueueFamilyIndex, 0, &queue)
	vc.Queue = queue
	vc.locks.SetQueueFamily(vc.QueueFamilyIndex)
	core.LogInfo("Logical device created.")
	return nil
}

// CreateCommandPool creates a transient pool for the context's queue family.
// Buffers are reset as a whole, so per-buffer reset is not requested.
func (vc *VulkanContext) CreateCommandPool() (vk.CommandPool, error) {
	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: vc.QueueFamilyIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(vc.Device.Handle, &poolCreateInfo, vc.Allocator, &pool); res != vk.Success {
		return nil, mapResult("vkCreateCommandPool", res)
	}
	return pool, nil
}

func (vc *VulkanContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < vc.Memory.MemoryTypeCount; i++ {
		vc.Memory.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && vc.Memory.MemoryTypes[i].PropertyFlags&propertyFlags == propertyFlags {
			return i, nil
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return 0, fmt.Errorf("no memory type matches filter %#x and flags %#x", typeFilter, propertyFlags)
}

func (vc *VulkanContext) allocate(reqs vk.MemoryRequirements, flags vk.MemoryPropertyFlags) (vk.DeviceMemory, error) {
	index, err := vc.FindMemoryIndex(reqs.MemoryTypeBits, flags)
	if err != nil {
		return nil, err
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: index,
	}
	var memory vk.DeviceMemory
	err = vc.locks.SafeCall(MemoryManagement, func() error {
		return mapResult("vkAllocateMemory", vk.AllocateMemory(vc.Device.Handle, &allocInfo, vc.Allocator, &memory))
	})
	if err != nil {
		return nil, err
	}
	return memory, nil
}

// CreateBuffer creates a host-visible, coherent buffer. The demo reads and
// writes every buffer from the CPU, so no device-local path exists.
func (vc *VulkanContext) CreateBuffer(size uint64, usage vk.BufferUsageFlags) (*Buffer, error) {
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	var raw vk.Buffer
	if res := vk.CreateBuffer(vc.Device.Handle, &bufferInfo, vc.Allocator, &raw); res != vk.Success {
		return nil, mapResult("vkCreateBuffer", res)
	}

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(vc.Device.Handle, raw, &reqs)
	reqs.Deref()

	memory, err := vc.allocate(reqs, vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		vk.DestroyBuffer(vc.Device.Handle, raw, vc.Allocator)
		return nil, err
	}
	if res := vk.BindBufferMemory(vc.Device.Handle, raw, memory, 0); res != vk.Success {
		vk.FreeMemory(vc.Device.Handle, memory, vc.Allocator)
		vk.DestroyBuffer(vc.Device.Handle, raw, vc.Allocator)
		return nil, mapResult("vkBindBufferMemory", res)
	}
	return &Buffer{Raw: raw, Memory: memory, Size: size}, nil
}

func (vc *VulkanContext) DestroyBuffer(b *Buffer) {
	vk.DestroyBuffer(vc.Device.Handle, b.Raw, vc.Allocator)
	vk.FreeMemory(vc.Device.Handle, b.Memory, vc.Allocator)
	b.Raw = nil
	b.Memory = nil
}

// WriteBuffer copies data into the start of a host-visible buffer.
func (vc *VulkanContext) WriteBuffer(b *Buffer, data []byte) error {
	return vc.mapBuffer(b, uint64(len(data)), func(mapped []byte) { copy(mapped, data) })
}

// ReadBuffer copies the start of a host-visible buffer into out.
func (vc *VulkanContext) ReadBuffer(b *Buffer, out []byte) error {
	return vc.mapBuffer(b, uint64(len(out)), func(mapped []byte) { copy(out, mapped) })
}

func (vc *VulkanContext) mapBuffer(b *Buffer, size uint64, fn func([]byte)) error {
	if size > b.Size {
		return fmt.Errorf("mapping %d bytes of a %d byte buffer", size, b.Size)
	}
	if size == 0 {
		return nil
	}
	return vc.locks.SafeCall(MemoryManagement, func() error {
		var data unsafe.Pointer
		if res := vk.MapMemory(vc.Device.Handle, b.Memory, 0, vk.DeviceSize(size), 0, &data); res != vk.Success {
			return mapResult("vkMapMemory", res)
		}
		fn(unsafe.Slice((*byte)(data), size))
		vk.UnmapMemory(vc.Device.Handle, b.Memory)
		return nil
	})
}

// CreateTexture creates an optimally tiled, device-local image with a single
// mip level usable as a copy source and destination.
func (vc *VulkanContext) CreateTexture(dim gputypes.TextureDimension, format gputypes.TextureFormat, size gputypes.Extent3D) (*Texture, error) {
	vkFormat, ok := mapTextureFormat(format)
	if !ok {
		return nil, fmt.Errorf("unsupported texture format %v", format)
	}
	layers, extent := MapExtent(size, dim)

	imageInfo := vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     mapImageType(dim),
		Format:        vkFormat,
		Extent:        extent,
		MipLevels:     1,
		ArrayLayers:   layers,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit | vk.ImageUsageTransferDstBit | vk.ImageUsageSampledBit),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	var raw vk.Image
	if res := vk.CreateImage(vc.Device.Handle, &imageInfo, vc.Allocator, &raw); res != vk.Success {
		return nil, mapResult("vkCreateImage", res)
	}

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(vc.Device.Handle, raw, &reqs)
	reqs.Deref()

	memory, err := vc.allocate(reqs, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		vk.DestroyImage(vc.Device.Handle, raw, vc.Allocator)
		return nil, err
	}
	if res := vk.BindImageMemory(vc.Device.Handle, raw, memory, 0); res != vk.Success {
		vk.FreeMemory(vc.Device.Handle, memory, vc.Allocator)
		vk.DestroyImage(vc.Device.Handle, raw, vc.Allocator)
		return nil, mapResult("vkBindImageMemory", res)
	}

	texture, err := NewTexture(raw, dim, format, size)
	if err != nil {
		vk.FreeMemory(vc.Device.Handle, memory, vc.Allocator)
		vk.DestroyImage(vc.Device.Handle, raw, vc.Allocator)
		return nil, err
	}
	texture.Memory = memory
	return texture, nil
}

func (vc *VulkanContext) DestroyTexture(t *Texture) {
	vk.DestroyImage(vc.Device.Handle, t.Raw, vc.Allocator)
	vk.FreeMemory(vc.Device.Handle, t.Memory, vc.Allocator)
	t.Raw = nil
	t.Memory = nil
}

// Submit queues one recorded buffer and signals fence when it completes.
func (vc *VulkanContext) Submit(cb *CommandBuffer, fence *VulkanFence) error {
	submitInfo := cb.SubmitInfo()
	err := vc.locks.SafeQueueCall(vc.QueueFamilyIndex, func() error {
		return mapResult("vkQueueSubmit", vk.QueueSubmit(vc.Queue, 1, []vk.SubmitInfo{submitInfo}, fence.Handle))
	})
	if err != nil {
		core.LogError("%s: %s", cb.Label(), err)
	}
	return err
}

func (vc *VulkanContext) Destroy() {
	if vc.Device != nil && vc.Device.Handle != nil {
		core.LogInfo("Destroying logical device...")
		vk.DeviceWaitIdle(vc.Device.Handle)
		vk.DestroyDevice(vc.Device.Handle, vc.Allocator)
		vc.Device = nil
	}
	vc.Queue = nil
	vc.PhysicalDevice = nil
	if vc.Instance != nil {
		core.LogInfo("Destroying Vulkan instance...")
		vk.DestroyInstance(vc.Instance, vc.Allocator)
		vc.Instance = nil
	}
	if vc.usesGLFW {
		glfw.Terminate()
		vc.usesGLFW = false
	}
}
