package vulkan

import (
	"fmt"

	"github.com/gogpu/gputypes"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anima-hal/engine/containers"
	"github.com/spaghettifunk/anima-hal/engine/renderer/metadata"
)

type Buffer struct {
	Raw    vk.Buffer
	Memory vk.DeviceMemory
	Size   uint64
}

// Texture carries what the encoder needs to translate regions and barriers:
// its dimensionality, declared aspects and texel block layout.
type Texture struct {
	Raw        vk.Image
	Memory     vk.DeviceMemory
	Dim        gputypes.TextureDimension
	Format     gputypes.TextureFormat
	Aspects    metadata.FormatAspects
	FormatInfo metadata.FormatInfo
	Size       gputypes.Extent3D
}

// NewTexture wraps an existing image. The format must be one FormatInfoOf
// describes.
func NewTexture(raw vk.Image, dim gputypes.TextureDimension, format gputypes.TextureFormat, size gputypes.Extent3D) (*Texture, error) {
	fi, ok := metadata.FormatInfoOf(format)
	if !ok {
		return nil, fmt.Errorf("unsupported texture format %v", format)
	}
	return &Texture{
		Raw:        raw,
		Dim:        dim,
		Format:     format,
		Aspects:    fi.Aspects,
		FormatInfo: fi,
		Size:       size,
	}, nil
}

func (t *Texture) mapBufferCopies(regions []metadata.BufferTextureCopy, out *containers.SmallVec[vk.BufferImageCopy]) {
	for _, r := range regions {
		layerCount, extent := MapExtent(r.Size, t.Dim)
		subresource, offset := MapSubresourceLayers(r.TextureBase, t.Dim, t.Aspects, layerCount)
		rowLength, imageHeight := MapBufferLayout(r.BufferLayout, t.FormatInfo)
		out.Push(vk.BufferImageCopy{
			BufferOffset:      vk.DeviceSize(r.BufferLayout.Offset),
			BufferRowLength:   rowLength,
			BufferImageHeight: imageHeight,
			ImageSubresource:  subresource,
			ImageOffset:       offset,
			ImageExtent:       extent,
		})
	}
}

var vulkanFormats = map[gputypes.TextureFormat]vk.Format{
	gputypes.TextureFormatR8Unorm:             vk.FormatR8Unorm,
	gputypes.TextureFormatRGBA8Unorm:          vk.FormatR8g8b8a8Unorm,
	gputypes.TextureFormatBGRA8Unorm:          vk.FormatB8g8r8a8Unorm,
	gputypes.TextureFormatDepth24PlusStencil8: vk.FormatD24UnormS8Uint,
	gputypes.TextureFormatBC1RGBAUnorm:        vk.FormatBc1RgbaUnormBlock,
}

func mapTextureFormat(format gputypes.TextureFormat) (vk.Format, bool) {
	f, ok := vulkanFormats[format]
	return f, ok
}

func mapImageType(dim gputypes.TextureDimension) vk.ImageType {
	switch dim {
	case gputypes.TextureDimension1D:
		return vk.ImageType1d
	case gputypes.TextureDimension3D:
		return vk.ImageType3d
	default:
		return vk.ImageType2d
	}
}
