package vulkan

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anima-hal/engine/renderer/metadata"
)

func TestMapBufferUsageToBarrier(t *testing.T) {
	transfer := vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	tests := []struct {
		name   string
		usage  metadata.BufferUses
		stages vk.PipelineStageFlags
		access vk.AccessFlags
	}{
		{"empty", 0, 0, 0},
		{"map read", metadata.BufferUseMapRead, vk.PipelineStageFlags(vk.PipelineStageHostBit), vk.AccessFlags(vk.AccessHostReadBit)},
		{"map write", metadata.BufferUseMapWrite, vk.PipelineStageFlags(vk.PipelineStageHostBit), vk.AccessFlags(vk.AccessHostWriteBit)},
		{"copy src", metadata.BufferUseCopySrc, transfer, vk.AccessFlags(vk.AccessTransferReadBit)},
		{"copy dst", metadata.BufferUseCopyDst, transfer, vk.AccessFlags(vk.AccessTransferWriteBit)},
		{"uniform", metadata.BufferUseUniform, shaderStages, vk.AccessFlags(vk.AccessUniformReadBit)},
		{"storage load", metadata.BufferUseStorageLoad, shaderStages, vk.AccessFlags(vk.AccessShaderReadBit)},
		{"storage store", metadata.BufferUseStorageStore, shaderStages, vk.AccessFlags(vk.AccessShaderWriteBit)},
		{"index", metadata.BufferUseIndex, vk.PipelineStageFlags(vk.PipelineStageVertexInputBit), vk.AccessFlags(vk.AccessIndexReadBit)},
		{"vertex", metadata.BufferUseVertex, vk.PipelineStageFlags(vk.PipelineStageVertexInputBit), vk.AccessFlags(vk.AccessVertexAttributeReadBit)},
		{"indirect", metadata.BufferUseIndirect, vk.PipelineStageFlags(vk.PipelineStageDrawIndirectBit), vk.AccessFlags(vk.AccessIndirectCommandReadBit)},
		{
			"copy src and dst",
			metadata.BufferUseCopySrc | metadata.BufferUseCopyDst,
			transfer,
			vk.AccessFlags(vk.AccessTransferReadBit | vk.AccessTransferWriteBit),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stages, access := MapBufferUsageToBarrier(tt.usage)
			if stages != tt.stages || access != tt.access {
				t.Errorf("got (%#x, %#x), want (%#x, %#x)", stages, access, tt.stages, tt.access)
			}
		})
	}
}

func TestMapBufferUsageIsUnionOfBits(t *testing.T) {
	for _, a := range metadata.AllBufferUses {
		for _, b := range metadata.AllBufferUses {
			sa, aa := MapBufferUsageToBarrier(a)
			sb, ab := MapBufferUsageToBarrier(b)
			s, acc := MapBufferUsageToBarrier(a | b)
			if s != sa|sb || acc != aa|ab {
				t.Fatalf("usage %#x|%#x not the union of its bits", a, b)
			}
			s2, acc2 := MapBufferUsageToBarrier(a | b)
			if s != s2 || acc != acc2 {
				t.Fatalf("usage %#x|%#x not deterministic", a, b)
			}
		}
	}
}

func TestMapTextureUsageToBarrier(t *testing.T) {
	fragmentTests := vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit | vk.PipelineStageLateFragmentTestsBit)
	tests := []struct {
		name   string
		usage  metadata.TextureUses
		stages vk.PipelineStageFlags
		access vk.AccessFlags
	}{
		{"uninitialized", metadata.TextureUseUninitialized, 0, 0},
		{"present", metadata.TextureUsePresent, 0, 0},
		{"copy src", metadata.TextureUseCopySrc, vk.PipelineStageFlags(vk.PipelineStageTransferBit), vk.AccessFlags(vk.AccessTransferReadBit)},
		{"copy dst", metadata.TextureUseCopyDst, vk.PipelineStageFlags(vk.PipelineStageTransferBit), vk.AccessFlags(vk.AccessTransferWriteBit)},
		{"sampled", metadata.TextureUseSampled, shaderStages, vk.AccessFlags(vk.AccessShaderReadBit)},
		{
			"color target",
			metadata.TextureUseColorTarget,
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
			vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
		},
		{"depth read", metadata.TextureUseDepthStencilRead, fragmentTests, vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit)},
		{
			"depth write",
			metadata.TextureUseDepthStencilWrite,
			fragmentTests,
			vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit),
		},
		{"storage load", metadata.TextureUseStorageLoad, shaderStages, vk.AccessFlags(vk.AccessShaderReadBit)},
		{"storage store", metadata.TextureUseStorageStore, shaderStages, vk.AccessFlags(vk.AccessShaderWriteBit)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stages, access := MapTextureUsageToBarrier(tt.usage)
			if stages != tt.stages || access != tt.access {
				t.Errorf("got (%#x, %#x), want (%#x, %#x)", stages, access, tt.stages, tt.access)
			}
		})
	}
}

func TestMapTextureUsageIsUnionOfBits(t *testing.T) {
	for _, a := range metadata.AllTextureUses {
		for _, b := range metadata.AllTextureUses {
			sa, aa := MapTextureUsageToBarrier(a)
			sb, ab := MapTextureUsageToBarrier(b)
			s, acc := MapTextureUsageToBarrier(a | b)
			if s != sa|sb || acc != aa|ab {
				t.Fatalf("usage %#x|%#x not the union of its bits", a, b)
			}
		}
	}
}

func TestDeriveImageLayout(t *testing.T) {
	tests := []struct {
		usage metadata.TextureUses
		want  vk.ImageLayout
	}{
		{metadata.TextureUseUninitialized, vk.ImageLayoutUndefined},
		{metadata.TextureUseCopySrc, vk.ImageLayoutTransferSrcOptimal},
		{metadata.TextureUseCopyDst, vk.ImageLayoutTransferDstOptimal},
		{metadata.TextureUseSampled, vk.ImageLayoutShaderReadOnlyOptimal},
		{metadata.TextureUseColorTarget, vk.ImageLayoutColorAttachmentOptimal},
		{metadata.TextureUseDepthStencilRead, vk.ImageLayoutDepthStencilReadOnlyOptimal},
		{metadata.TextureUseDepthStencilWrite, vk.ImageLayoutDepthStencilAttachmentOptimal},
		{metadata.TextureUseDepthStencilRead | metadata.TextureUseDepthStencilWrite, vk.ImageLayoutDepthStencilAttachmentOptimal},
		{metadata.TextureUsePresent, vk.ImageLayoutPresentSrc},
		{metadata.TextureUseStorageLoad, vk.ImageLayoutGeneral},
		{metadata.TextureUseCopySrc | metadata.TextureUseSampled, vk.ImageLayoutGeneral},
	}
	for _, tt := range tests {
		if got := DeriveImageLayout(tt.usage); got != tt.want {
			t.Errorf("DeriveImageLayout(%#x) = %v, want %v", tt.usage, got, tt.want)
		}
	}
	if DstImageLayout != DeriveImageLayout(metadata.TextureUseCopyDst) {
		t.Errorf("DstImageLayout does not match the copy destination layout")
	}
}

func TestMapSubresourceRange(t *testing.T) {
	color := metadata.FormatAspectColor
	depthStencil := metadata.FormatAspectDepth | metadata.FormatAspectStencil

	got := MapSubresourceRange(metadata.TextureSubresourceRange{}, color)
	want := vk.ImageSubresourceRange{
		AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
		LevelCount: remainingMipLevels,
		LayerCount: remainingArrayLayers,
	}
	if got != want {
		t.Errorf("defaults: got %+v, want %+v", got, want)
	}

	got = MapSubresourceRange(metadata.TextureSubresourceRange{
		Aspect:          metadata.TextureAspectStencilOnly,
		BaseMipLevel:    2,
		MipLevelCount:   3,
		BaseArrayLayer:  1,
		ArrayLayerCount: 4,
	}, depthStencil)
	want = vk.ImageSubresourceRange{
		AspectMask:     vk.ImageAspectFlags(vk.ImageAspectStencilBit),
		BaseMipLevel:   2,
		LevelCount:     3,
		BaseArrayLayer: 1,
		LayerCount:     4,
	}
	if got != want {
		t.Errorf("explicit: got %+v, want %+v", got, want)
	}

	got = MapSubresourceRange(metadata.TextureSubresourceRange{}, depthStencil)
	if got.AspectMask != vk.ImageAspectFlags(vk.ImageAspectDepthBit|vk.ImageAspectStencilBit) {
		t.Errorf("all aspects of depth stencil: got %#x", got.AspectMask)
	}
}

func TestMapExtent(t *testing.T) {
	size := gputypes.Extent3D{Width: 64, Height: 32, DepthOrArrayLayers: 6}

	layers, extent := MapExtent(size, gputypes.TextureDimension2D)
	if layers != 6 || extent != (vk.Extent3D{Width: 64, Height: 32, Depth: 1}) {
		t.Errorf("2D: got %d layers, %+v", layers, extent)
	}

	layers, extent = MapExtent(size, gputypes.TextureDimension3D)
	if layers != 1 || extent != (vk.Extent3D{Width: 64, Height: 32, Depth: 6}) {
		t.Errorf("3D: got %d layers, %+v", layers, extent)
	}
}

func TestMapSubresourceLayers(t *testing.T) {
	base := metadata.TextureCopyBase{
		Origin:     metadata.Origin{X: 4, Y: 8, Z: 2},
		ArrayLayer: 3,
		MipLevel:   1,
	}

	sub, offset := MapSubresourceLayers(base, gputypes.TextureDimension2D, metadata.FormatAspectColor, 2)
	if sub.BaseArrayLayer != 3 || sub.LayerCount != 2 || sub.MipLevel != 1 {
		t.Errorf("2D subresource: %+v", sub)
	}
	if offset != (vk.Offset3D{X: 4, Y: 8, Z: 0}) {
		t.Errorf("2D offset: %+v", offset)
	}

	sub, offset = MapSubresourceLayers(base, gputypes.TextureDimension3D, metadata.FormatAspectColor, 1)
	if sub.BaseArrayLayer != 0 || sub.LayerCount != 1 {
		t.Errorf("3D subresource: %+v", sub)
	}
	if offset != (vk.Offset3D{X: 4, Y: 8, Z: 2}) {
		t.Errorf("3D offset: %+v", offset)
	}
}

func TestMapBufferLayout(t *testing.T) {
	rgba := metadata.FormatInfo{BlockSize: 4, BlockWidth: 1, BlockHeight: 1}
	bc1 := metadata.FormatInfo{BlockSize: 8, BlockWidth: 4, BlockHeight: 4}

	tests := []struct {
		name            string
		layout          metadata.ImageDataLayout
		fi              metadata.FormatInfo
		rowLength, rows uint32
	}{
		{"tight rgba", metadata.ImageDataLayout{BytesPerRow: 1024}, rgba, 256, 0},
		{"padded rgba", metadata.ImageDataLayout{BytesPerRow: 1280, RowsPerImage: 300}, rgba, 320, 300},
		{"absent", metadata.ImageDataLayout{}, rgba, 0, 0},
		{"block compressed", metadata.ImageDataLayout{BytesPerRow: 128, RowsPerImage: 16}, bc1, 64, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rowLength, rows := MapBufferLayout(tt.layout, tt.fi)
			if rowLength != tt.rowLength || rows != tt.rows {
				t.Errorf("got (%d, %d), want (%d, %d)", rowLength, rows, tt.rowLength, tt.rows)
			}
		})
	}
}

func TestMapBufferLayoutRoundTrip(t *testing.T) {
	rgba := metadata.FormatInfo{BlockSize: 4, BlockWidth: 1, BlockHeight: 1}
	for _, bpr := range []uint32{4, 256, 1024, 4096} {
		rowLength, _ := MapBufferLayout(metadata.ImageDataLayout{BytesPerRow: bpr}, rgba)
		if rowLength*uint32(rgba.BlockSize) != bpr {
			t.Errorf("bytes per row %d maps to %d texels", bpr, rowLength)
		}
	}
}

func TestMapResult(t *testing.T) {
	if err := mapResult("op", vk.Success); err != nil {
		t.Fatalf("success mapped to %v", err)
	}

	tests := []struct {
		res  vk.Result
		want error
		kind DeviceErrorKind
	}{
		{vk.ErrorOutOfHostMemory, ErrOutOfHostMemory, DeviceErrorOutOfHostMemory},
		{vk.ErrorOutOfDeviceMemory, ErrOutOfDeviceMemory, DeviceErrorOutOfDeviceMemory},
		{vk.ErrorOutOfPoolMemory, ErrOutOfDeviceMemory, DeviceErrorOutOfDeviceMemory},
		{vk.ErrorDeviceLost, ErrDeviceLost, DeviceErrorLost},
		{vk.ErrorInitializationFailed, ErrDeviceLost, DeviceErrorLost},
	}
	for _, tt := range tests {
		err := mapResult("vkTest", tt.res)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: errors.Is(%v, %v) = false", VulkanResultString(tt.res, false), err, tt.want)
		}
		var de *DeviceError
		if !errors.As(err, &de) || de.Kind != tt.kind || de.Result != tt.res || de.Op != "vkTest" {
			t.Errorf("%s: unexpected DeviceError %+v", VulkanResultString(tt.res, false), de)
		}
	}
}

func TestVulkanResultString(t *testing.T) {
	if got := VulkanResultString(vk.ErrorDeviceLost, false); got != "VK_ERROR_DEVICE_LOST" {
		t.Errorf("short form: %q", got)
	}
	if got := VulkanResultString(vk.Result(-12345), true); got != "VkResult(-12345)" {
		t.Errorf("unknown: %q", got)
	}
	if !VulkanResultIsSuccess(vk.Incomplete) || VulkanResultIsSuccess(vk.ErrorDeviceLost) {
		t.Errorf("success classification is wrong")
	}
}

func TestCString(t *testing.T) {
	var name [16]byte
	copy(name[:], "llvmpipe\x00junk")
	if got := CString(name[:]); got != "llvmpipe" {
		t.Errorf("CString() = %q", got)
	}
	if got := VulkanSafeString("layer"); got != "layer\x00" {
		t.Errorf("VulkanSafeString() = %q", got)
	}
}
