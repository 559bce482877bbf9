package metadata

import "github.com/gogpu/gputypes"

/** @brief A texel position inside one mip level of a texture. */
type Origin struct {
	X uint32
	Y uint32
	Z uint32
}

/** @brief Identifies the corner of a copy region inside a texture. */
type TextureCopyBase struct {
	/** @brief Texel origin. Z is a depth slice for 3D textures and ignored otherwise. */
	Origin Origin
	/** @brief First array layer. Ignored for 3D textures. */
	ArrayLayer uint32
	/** @brief Mip level. */
	MipLevel uint32
	/** @brief Aspects the copy touches. */
	Aspect TextureAspect
}

/**
 * @brief Linear layout of texture data inside a buffer. A zero BytesPerRow or
 * RowsPerImage means the value is absent and the data is tightly packed.
 */
type ImageDataLayout struct {
	Offset       uint64
	BytesPerRow  uint32
	RowsPerImage uint32
}

/** @brief A byte range inside a buffer, End exclusive. */
type MemoryRange struct {
	Start uint64
	End   uint64
}

func (r MemoryRange) Size() uint64 {
	return r.End - r.Start
}

/** @brief A buffer to buffer copy region. Size must be non-zero. */
type BufferCopy struct {
	SrcOffset uint64
	DstOffset uint64
	Size      uint64
}

/** @brief A texture to texture copy region. */
type TextureCopy struct {
	SrcBase TextureCopyBase
	DstBase TextureCopyBase
	Size    gputypes.Extent3D
}

/** @brief A copy region between a buffer and a texture, in either direction. */
type BufferTextureCopy struct {
	BufferLayout ImageDataLayout
	TextureBase  TextureCopyBase
	Size         gputypes.Extent3D
}

/**
 * @brief Selects mips, layers and aspects of a texture for a barrier.
 * A zero MipLevelCount or ArrayLayerCount means every remaining level or layer.
 */
type TextureSubresourceRange struct {
	Aspect          TextureAspect
	BaseMipLevel    uint32
	MipLevelCount   uint32
	BaseArrayLayer  uint32
	ArrayLayerCount uint32
}
