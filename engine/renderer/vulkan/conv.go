package vulkan

import (
	"github.com/gogpu/gputypes"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anima-hal/engine/renderer/metadata"
)

const (
	wholeSize            = vk.DeviceSize(^uint64(0))
	remainingMipLevels   = ^uint32(0)
	remainingArrayLayers = ^uint32(0)
)

// Layout every copy destination is expected to be in.
const DstImageLayout = vk.ImageLayoutTransferDstOptimal

var shaderStages = vk.PipelineStageFlags(vk.PipelineStageVertexShaderBit |
	vk.PipelineStageFragmentShaderBit |
	vk.PipelineStageComputeShaderBit)

// MapBufferUsageToBarrier returns the stages and access a buffer usage implies.
func MapBufferUsageToBarrier(usage metadata.BufferUses) (vk.PipelineStageFlags, vk.AccessFlags) {
	var stages vk.PipelineStageFlags
	var access vk.AccessFlags

	if usage&(metadata.BufferUseMapRead|metadata.BufferUseMapWrite) != 0 {
		stages |= vk.PipelineStageFlags(vk.PipelineStageHostBit)
		if usage.Contains(metadata.BufferUseMapRead) {
			access |= vk.AccessFlags(vk.AccessHostReadBit)
		}
		if usage.Contains(metadata.BufferUseMapWrite) {
			access |= vk.AccessFlags(vk.AccessHostWriteBit)
		}
	}
	if usage.Contains(metadata.BufferUseCopySrc) {
		stages |= vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		access |= vk.AccessFlags(vk.AccessTransferReadBit)
	}
	if usage.Contains(metadata.BufferUseCopyDst) {
		stages |= vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		access |= vk.AccessFlags(vk.AccessTransferWriteBit)
	}
	if usage.Contains(metadata.BufferUseUniform) {
		stages |= shaderStages
		access |= vk.AccessFlags(vk.AccessUniformReadBit)
	}
	if usage.Contains(metadata.BufferUseStorageLoad) {
		stages |= shaderStages
		access |= vk.AccessFlags(vk.AccessShaderReadBit)
	}
	if usage.Contains(metadata.BufferUseStorageStore) {
		stages |= shaderStages
		access |= vk.AccessFlags(vk.AccessShaderWriteBit)
	}
	if usage.Contains(metadata.BufferUseIndex) {
		stages |= vk.PipelineStageFlags(vk.PipelineStageVertexInputBit)
		access |= vk.AccessFlags(vk.AccessIndexReadBit)
	}
	if usage.Contains(metadata.BufferUseVertex) {
		stages |= vk.PipelineStageFlags(vk.PipelineStageVertexInputBit)
		access |= vk.AccessFlags(vk.AccessVertexAttributeReadBit)
	}
	if usage.Contains(metadata.BufferUseIndirect) {
		stages |= vk.PipelineStageFlags(vk.PipelineStageDrawIndirectBit)
		access |= vk.AccessFlags(vk.AccessIndirectCommandReadBit)
	}

	return stages, access
}

// MapTextureUsageToBarrier returns the stages and access a texture usage
// implies. Uninitialized and Present have no stage and give empty masks.
func MapTextureUsageToBarrier(usage metadata.TextureUses) (vk.PipelineStageFlags, vk.AccessFlags) {
	var stages vk.PipelineStageFlags
	var access vk.AccessFlags

	if usage.Contains(metadata.TextureUseCopySrc) {
		stages |= vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		access |= vk.AccessFlags(vk.AccessTransferReadBit)
	}
	if usage.Contains(metadata.TextureUseCopyDst) {
		stages |= vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		access |= vk.AccessFlags(vk.AccessTransferWriteBit)
	}
	if usage.Contains(metadata.TextureUseSampled) {
		stages |= shaderStages
		access |= vk.AccessFlags(vk.AccessShaderReadBit)
	}
	if usage.Contains(metadata.TextureUseColorTarget) {
		stages |= vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
		access |= vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit)
	}
	if usage&(metadata.TextureUseDepthStencilRead|metadata.TextureUseDepthStencilWrite) != 0 {
		stages |= vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit | vk.PipelineStageLateFragmentTestsBit)
		access |= vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit)
		if usage.Contains(metadata.TextureUseDepthStencilWrite) {
			access |= vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit)
		}
	}
	if usage.Contains(metadata.TextureUseStorageLoad) {
		stages |= shaderStages
		access |= vk.AccessFlags(vk.AccessShaderReadBit)
	}
	if usage.Contains(metadata.TextureUseStorageStore) {
		stages |= shaderStages
		access |= vk.AccessFlags(vk.AccessShaderWriteBit)
	}

	return stages, access
}

// DeriveImageLayout picks the layout an image must be in for a usage.
// Combinations without a dedicated layout fall back to GENERAL.
func DeriveImageLayout(usage metadata.TextureUses) vk.ImageLayout {
	dsWrite := metadata.TextureUseDepthStencilWrite
	dsReadWrite := metadata.TextureUseDepthStencilRead | metadata.TextureUseDepthStencilWrite

	switch usage {
	case metadata.TextureUseUninitialized:
		return vk.ImageLayoutUndefined
	case metadata.TextureUseCopySrc:
		return vk.ImageLayoutTransferSrcOptimal
	case metadata.TextureUseCopyDst:
		return vk.ImageLayoutTransferDstOptimal
	case metadata.TextureUseSampled:
		return vk.ImageLayoutShaderReadOnlyOptimal
	case metadata.TextureUseColorTarget:
		return vk.ImageLayoutColorAttachmentOptimal
	case dsWrite, dsReadWrite:
		return vk.ImageLayoutDepthStencilAttachmentOptimal
	case metadata.TextureUseDepthStencilRead:
		return vk.ImageLayoutDepthStencilReadOnlyOptimal
	case metadata.TextureUsePresent:
		return vk.ImageLayoutPresentSrc
	default:
		return vk.ImageLayoutGeneral
	}
}

func mapAspects(aspects metadata.FormatAspects) vk.ImageAspectFlags {
	var flags vk.ImageAspectFlags
	if aspects&metadata.FormatAspectColor != 0 {
		flags |= vk.ImageAspectFlags(vk.ImageAspectColorBit)
	}
	if aspects&metadata.FormatAspectDepth != 0 {
		flags |= vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	}
	if aspects&metadata.FormatAspectStencil != 0 {
		flags |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
	}
	if aspects&metadata.FormatAspectPlane0 != 0 {
		flags |= vk.ImageAspectFlags(vk.ImageAspectPlane0Bit)
	}
	if aspects&metadata.FormatAspectPlane1 != 0 {
		flags |= vk.ImageAspectFlags(vk.ImageAspectPlane1Bit)
	}
	if aspects&metadata.FormatAspectPlane2 != 0 {
		flags |= vk.ImageAspectFlags(vk.ImageAspectPlane2Bit)
	}
	return flags
}

// MapSubresourceRange selects the mips, layers and aspects a texture barrier
// covers. Zero counts select every remaining level or layer.
func MapSubresourceRange(r metadata.TextureSubresourceRange, declared metadata.FormatAspects) vk.ImageSubresourceRange {
	levelCount := r.MipLevelCount
	if levelCount == 0 {
		levelCount = remainingMipLevels
	}
	layerCount := r.ArrayLayerCount
	if layerCount == 0 {
		layerCount = remainingArrayLayers
	}
	return vk.ImageSubresourceRange{
		AspectMask:     mapAspects(r.Aspect.Aspects(declared)),
		BaseMipLevel:   r.BaseMipLevel,
		LevelCount:     levelCount,
		BaseArrayLayer: r.BaseArrayLayer,
		LayerCount:     layerCount,
	}
}

// MapExtent splits a copy size into a native extent and a layer count. For 3D
// textures the third dimension is depth, otherwise it counts array layers.
func MapExtent(size gputypes.Extent3D, dim gputypes.TextureDimension) (uint32, vk.Extent3D) {
	if dim == gputypes.TextureDimension3D {
		return 1, vk.Extent3D{
			Width:  size.Width,
			Height: size.Height,
			Depth:  size.DepthOrArrayLayers,
		}
	}
	return size.DepthOrArrayLayers, vk.Extent3D{
		Width:  size.Width,
		Height: size.Height,
		Depth:  1,
	}
}

// MapSubresourceLayers converts a copy base into the native subresource and
// offset. Origin Z is a depth offset for 3D textures and ignored otherwise.
func MapSubresourceLayers(base metadata.TextureCopyBase, dim gputypes.TextureDimension, declared metadata.FormatAspects, layerCount uint32) (vk.ImageSubresourceLayers, vk.Offset3D) {
	offset := vk.Offset3D{
		X: int32(base.Origin.X),
		Y: int32(base.Origin.Y),
	}
	baseLayer := base.ArrayLayer
	if dim == gputypes.TextureDimension3D {
		offset.Z = int32(base.Origin.Z)
		baseLayer = 0
	}
	return vk.ImageSubresourceLayers{
		AspectMask:     mapAspects(base.Aspect.Aspects(declared)),
		MipLevel:       base.MipLevel,
		BaseArrayLayer: baseLayer,
		LayerCount:     layerCount,
	}, offset
}

// MapBufferLayout converts a linear buffer layout into the row length and
// image height Vulkan expects, both in texels. Absent values stay 0 so the
// driver infers tight packing from the image extent.
func MapBufferLayout(layout metadata.ImageDataLayout, fi metadata.FormatInfo) (rowLength, imageHeight uint32) {
	if layout.BytesPerRow != 0 {
		rowLength = layout.BytesPerRow / uint32(fi.BlockSize) * uint32(fi.BlockWidth)
	}
	if layout.RowsPerImage != 0 {
		imageHeight = layout.RowsPerImage * uint32(fi.BlockHeight)
	}
	return rowLength, imageHeight
}
