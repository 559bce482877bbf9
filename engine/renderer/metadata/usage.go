package metadata

/** @brief A half-open transition between two usage states: the state before and the state after. */
type Range[T any] struct {
	/** @brief The usage the resource had before the transition. */
	Start T
	/** @brief The usage the resource will have after the transition. */
	End T
}

/** @brief A set of ways a buffer may be accessed. */
type BufferUses uint32

const (
	/** @brief Mapped for host reads. */
	BufferUseMapRead BufferUses = 1 << iota
	/** @brief Mapped for host writes. */
	BufferUseMapWrite
	/** @brief Source of a copy command. */
	BufferUseCopySrc
	/** @brief Destination of a copy or fill command. */
	BufferUseCopyDst
	/** @brief Bound as an index buffer. */
	BufferUseIndex
	/** @brief Bound as a vertex buffer. */
	BufferUseVertex
	/** @brief Bound as a uniform buffer. */
	BufferUseUniform
	/** @brief Read as a storage buffer. */
	BufferUseStorageLoad
	/** @brief Written as a storage buffer. */
	BufferUseStorageStore
	/** @brief Source of indirect draw or dispatch arguments. */
	BufferUseIndirect
)

/** @brief All buffer usage flags in declaration order. */
var AllBufferUses = []BufferUses{
	BufferUseMapRead,
	BufferUseMapWrite,
	BufferUseCopySrc,
	BufferUseCopyDst,
	BufferUseIndex,
	BufferUseVertex,
	BufferUseUniform,
	BufferUseStorageLoad,
	BufferUseStorageStore,
	BufferUseIndirect,
}

func (u BufferUses) Contains(other BufferUses) bool {
	return u&other == other
}

/** @brief A set of ways a texture may be accessed. */
type TextureUses uint32

const (
	/** @brief Contents are undefined; only valid as the start of a transition. */
	TextureUseUninitialized TextureUses = 1 << iota
	/** @brief Source of a copy command. */
	TextureUseCopySrc
	/** @brief Destination of a copy command. */
	TextureUseCopyDst
	/** @brief Sampled from a shader. */
	TextureUseSampled
	/** @brief Bound as a color attachment. */
	TextureUseColorTarget
	/** @brief Bound as a read-only depth/stencil attachment. */
	TextureUseDepthStencilRead
	/** @brief Bound as a writable depth/stencil attachment. */
	TextureUseDepthStencilWrite
	/** @brief Read as a storage image. */
	TextureUseStorageLoad
	/** @brief Written as a storage image. */
	TextureUseStorageStore
	/** @brief Handed to the presentation engine. */
	TextureUsePresent
)

/** @brief All texture usage flags in declaration order. */
var AllTextureUses = []TextureUses{
	TextureUseUninitialized,
	TextureUseCopySrc,
	TextureUseCopyDst,
	TextureUseSampled,
	TextureUseColorTarget,
	TextureUseDepthStencilRead,
	TextureUseDepthStencilWrite,
	TextureUseStorageLoad,
	TextureUseStorageStore,
	TextureUsePresent,
}

func (u TextureUses) Contains(other TextureUses) bool {
	return u&other == other
}
