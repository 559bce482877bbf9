package metadata

import "github.com/gogpu/gputypes"

/** @brief The aspects a texture format carries. */
type FormatAspects uint8

const (
	FormatAspectColor FormatAspects = 1 << iota
	FormatAspectDepth
	FormatAspectStencil
	FormatAspectPlane0
	FormatAspectPlane1
	FormatAspectPlane2
)

/** @brief Selects which aspects of a texture an operation touches. */
type TextureAspect int

const (
	/** @brief Every aspect the texture format declares. */
	TextureAspectAll TextureAspect = iota
	TextureAspectStencilOnly
	TextureAspectDepthOnly
	TextureAspectPlane0
	TextureAspectPlane1
	TextureAspectPlane2
)

// Aspects resolves the selection against the aspects a format declares.
func (a TextureAspect) Aspects(declared FormatAspects) FormatAspects {
	switch a {
	case TextureAspectStencilOnly:
		return declared & FormatAspectStencil
	case TextureAspectDepthOnly:
		return declared & FormatAspectDepth
	case TextureAspectPlane0:
		return declared & FormatAspectPlane0
	case TextureAspectPlane1:
		return declared & FormatAspectPlane1
	case TextureAspectPlane2:
		return declared & FormatAspectPlane2
	default:
		return declared
	}
}

/**
 * @brief Describes the texel block of a format: its byte size and its
 * dimensions in texels. Uncompressed formats have 1x1 blocks.
 */
type FormatInfo struct {
	/** @brief Size of one block in bytes. */
	BlockSize uint8
	/** @brief Width of one block in texels. */
	BlockWidth uint8
	/** @brief Height of one block in texels. */
	BlockHeight uint8
	/** @brief Aspects carried by the format. */
	Aspects FormatAspects
}

var formatInfos = map[gputypes.TextureFormat]FormatInfo{
	gputypes.TextureFormatR8Unorm:             {BlockSize: 1, BlockWidth: 1, BlockHeight: 1, Aspects: FormatAspectColor},
	gputypes.TextureFormatRGBA8Unorm:          {BlockSize: 4, BlockWidth: 1, BlockHeight: 1, Aspects: FormatAspectColor},
	gputypes.TextureFormatBGRA8Unorm:          {BlockSize: 4, BlockWidth: 1, BlockHeight: 1, Aspects: FormatAspectColor},
	gputypes.TextureFormatDepth24PlusStencil8: {BlockSize: 4, BlockWidth: 1, BlockHeight: 1, Aspects: FormatAspectDepth | FormatAspectStencil},
	gputypes.TextureFormatBC1RGBAUnorm:        {BlockSize: 8, BlockWidth: 4, BlockHeight: 4, Aspects: FormatAspectColor},
}

// FormatInfoOf returns the block description of a format. The second return
// value is false for formats this layer has no description for.
func FormatInfoOf(format gputypes.TextureFormat) (FormatInfo, bool) {
	fi, ok := formatInfos[format]
	return fi, ok
}
