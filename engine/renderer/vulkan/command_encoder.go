package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anima-hal/engine/containers"
	"github.com/spaghettifunk/anima-hal/engine/core"
	"github.com/spaghettifunk/anima-hal/engine/renderer/metadata"
)

type EncoderDescriptor struct {
	Label string
	// Native pool the encoder owns. It must have been created for the queue
	// family the recordings will be submitted to.
	Pool vk.CommandPool
	// Buffers allocated whenever the free list is empty.
	AllocationGranularity uint32
	// Barriers and regions kept inline per batch before spilling to the heap.
	InlineRegions int
}

type BufferBarrier struct {
	Buffer *Buffer
	Usage  metadata.Range[metadata.BufferUses]
}

type TextureBarrier struct {
	Texture *Texture
	Range   metadata.TextureSubresourceRange
	Usage   metadata.Range[metadata.TextureUses]
}

// CommandEncoder records transitions, copies and pass commands into buffers
// drawn from its own pool. It is not safe for concurrent use.
type CommandEncoder struct {
	device  Device
	pool    *CommandPool
	label   string
	current string
	metrics *core.RecordingMetrics

	// scratch reused by every batch
	bufferBarriers    *containers.SmallVec[vk.BufferMemoryBarrier]
	imageBarriers     *containers.SmallVec[vk.ImageMemoryBarrier]
	bufferCopies      *containers.SmallVec[vk.BufferCopy]
	imageCopies       *containers.SmallVec[vk.ImageCopy]
	bufferImageCopies *containers.SmallVec[vk.BufferImageCopy]
}

func NewCommandEncoder(device Device, desc EncoderDescriptor) *CommandEncoder {
	inline := desc.InlineRegions
	if inline <= 0 {
		inline = core.DefaultInlineRegions
	}
	return &CommandEncoder{
		device:            device,
		pool:              NewCommandPool(device, desc.Pool, desc.AllocationGranularity),
		label:             core.NewLabel("encoder", desc.Label),
		metrics:           core.NewRecordingMetrics(),
		bufferBarriers:    containers.NewSmallVec[vk.BufferMemoryBarrier](inline),
		imageBarriers:     containers.NewSmallVec[vk.ImageMemoryBarrier](inline),
		bufferCopies:      containers.NewSmallVec[vk.BufferCopy](inline),
		imageCopies:       containers.NewSmallVec[vk.ImageCopy](inline),
		bufferImageCopies: containers.NewSmallVec[vk.BufferImageCopy](inline),
	}
}

func (e *CommandEncoder) Label() string {
	return e.label
}

func (e *CommandEncoder) PoolStats() PoolStats {
	return e.pool.Stats()
}

func (e *CommandEncoder) Metrics() *core.RecordingMetrics {
	return e.metrics
}

// Begin starts a new recording. An empty label falls back to the encoder's.
func (e *CommandEncoder) Begin(label string) error {
	if label == "" {
		label = e.label
	}
	if err := e.pool.Begin(); err != nil {
		core.LogError("%s: failed to begin recording: %s", label, err)
		return err
	}
	e.current = label
	e.metrics.RecordingStarted()
	return nil
}

// End seals the active recording and hands it to the caller.
func (e *CommandEncoder) End() (*CommandBuffer, error) {
	label := e.current
	e.current = ""
	raw, err := e.pool.End()
	if err != nil {
		e.metrics.RecordingDiscarded()
		core.LogError("%s: failed to end recording: %s", label, err)
		return nil, err
	}
	e.metrics.RecordingEnded()
	return &CommandBuffer{raw: raw, label: label}, nil
}

// Discard abandons the active recording without submitting it.
func (e *CommandEncoder) Discard() {
	if e.pool.HasActive() {
		e.metrics.RecordingDiscarded()
	}
	e.current = ""
	e.pool.Discard()
}

// ResetAll recycles buffers that finished executing together with every
// discarded recording. The caller must have waited for them on the device.
func (e *CommandEncoder) ResetAll(buffers []*CommandBuffer) {
	raws := make([]vk.CommandBuffer, 0, len(buffers))
	for _, cb := range buffers {
		// already recycled by an earlier call
		if cb == nil || cb.raw == nil {
			continue
		}
		raws = append(raws, cb.raw)
		cb.raw = nil
	}
	e.pool.ResetAll(raws)
}

// Destroy releases the pool and every buffer it still holds.
func (e *CommandEncoder) Destroy() {
	e.pool.Destroy()
}

func barrierStages(src, dst vk.PipelineStageFlags) (vk.PipelineStageFlags, vk.PipelineStageFlags) {
	// a zero stage mask is invalid, so no-op transitions wait on nothing
	if src == 0 {
		src = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
	}
	if dst == 0 {
		dst = vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit)
	}
	return src, dst
}

// TransitionBuffers records one pipeline barrier covering every buffer.
func (e *CommandEncoder) TransitionBuffers(barriers []BufferBarrier) {
	active := e.pool.Active()
	if len(barriers) == 0 {
		return
	}

	var srcStages, dstStages vk.PipelineStageFlags
	e.bufferBarriers.Reset()
	for _, bar := range barriers {
		srcStage, srcAccess := MapBufferUsageToBarrier(bar.Usage.Start)
		dstStage, dstAccess := MapBufferUsageToBarrier(bar.Usage.End)
		srcStages |= srcStage
		dstStages |= dstStage

		e.bufferBarriers.Push(vk.BufferMemoryBarrier{
			SType:               vk.StructureTypeBufferMemoryBarrier,
			SrcAccessMask:       srcAccess,
			DstAccessMask:       dstAccess,
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Buffer:              bar.Buffer.Raw,
			Offset:              0,
			Size:                wholeSize,
		})
	}

	srcStages, dstStages = barrierStages(srcStages, dstStages)
	e.device.CmdPipelineBarrier(active, srcStages, dstStages, e.bufferBarriers.Slice(), nil)
}

// TransitionTextures records one pipeline barrier covering every texture,
// each with its own layouts and subresource range.
func (e *CommandEncoder) TransitionTextures(barriers []TextureBarrier) {
	active := e.pool.Active()
	if len(barriers) == 0 {
		return
	}

	var srcStages, dstStages vk.PipelineStageFlags
	e.imageBarriers.Reset()
	for _, bar := range barriers {
		srcStage, srcAccess := MapTextureUsageToBarrier(bar.Usage.Start)
		dstStage, dstAccess := MapTextureUsageToBarrier(bar.Usage.End)
		srcStages |= srcStage
		dstStages |= dstStage

		e.imageBarriers.Push(vk.ImageMemoryBarrier{
			SType:               vk.StructureTypeImageMemoryBarrier,
			SrcAccessMask:       srcAccess,
			DstAccessMask:       dstAccess,
			OldLayout:           DeriveImageLayout(bar.Usage.Start),
			NewLayout:           DeriveImageLayout(bar.Usage.End),
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               bar.Texture.Raw,
			SubresourceRange:    MapSubresourceRange(bar.Range, bar.Texture.Aspects),
		})
	}

	srcStages, dstStages = barrierStages(srcStages, dstStages)
	e.device.CmdPipelineBarrier(active, srcStages, dstStages, nil, e.imageBarriers.Slice())
}

// FillBuffer fills r with value repeated in every byte.
func (e *CommandEncoder) FillBuffer(buffer *Buffer, r metadata.MemoryRange, value uint8) {
	active := e.pool.Active()
	e.device.CmdFillBuffer(active, buffer.Raw,
		vk.DeviceSize(r.Start),
		vk.DeviceSize(r.Size()),
		uint32(value)*0x01010101)
}

func (e *CommandEncoder) CopyBufferToBuffer(src, dst *Buffer, regions []metadata.BufferCopy) {
	active := e.pool.Active()
	if len(regions) == 0 {
		return
	}

	e.bufferCopies.Reset()
	for _, r := range regions {
		e.bufferCopies.Push(vk.BufferCopy{
			SrcOffset: vk.DeviceSize(r.SrcOffset),
			DstOffset: vk.DeviceSize(r.DstOffset),
			Size:      vk.DeviceSize(r.Size),
		})
	}
	e.device.CmdCopyBuffer(active, src.Raw, dst.Raw, e.bufferCopies.Slice())
}

// CopyTextureToTexture copies regions from src, currently in srcUsage, into
// dst, which must be in the copy destination layout.
func (e *CommandEncoder) CopyTextureToTexture(src *Texture, srcUsage metadata.TextureUses, dst *Texture, regions []metadata.TextureCopy) {
	active := e.pool.Active()
	if len(regions) == 0 {
		return
	}

	e.imageCopies.Reset()
	for _, r := range regions {
		layerCount, extent := MapExtent(r.Size, src.Dim)
		srcSubresource, srcOffset := MapSubresourceLayers(r.SrcBase, src.Dim, src.Aspects, layerCount)
		dstSubresource, dstOffset := MapSubresourceLayers(r.DstBase, dst.Dim, dst.Aspects, layerCount)
		e.imageCopies.Push(vk.ImageCopy{
			SrcSubresource: srcSubresource,
			SrcOffset:      srcOffset,
			DstSubresource: dstSubresource,
			DstOffset:      dstOffset,
			Extent:         extent,
		})
	}
	e.device.CmdCopyImage(active, src.Raw, DeriveImageLayout(srcUsage), dst.Raw, DstImageLayout, e.imageCopies.Slice())
}

func (e *CommandEncoder) CopyBufferToTexture(src *Buffer, dst *Texture, regions []metadata.BufferTextureCopy) {
	active := e.pool.Active()
	if len(regions) == 0 {
		return
	}

	e.bufferImageCopies.Reset()
	dst.mapBufferCopies(regions, e.bufferImageCopies)
	e.device.CmdCopyBufferToImage(active, src.Raw, dst.Raw, DstImageLayout, e.bufferImageCopies.Slice())
}

func (e *CommandEncoder) CopyTextureToBuffer(src *Texture, srcUsage metadata.TextureUses, dst *Buffer, regions []metadata.BufferTextureCopy) {
	active := e.pool.Active()
	if len(regions) == 0 {
		return
	}

	e.bufferImageCopies.Reset()
	src.mapBufferCopies(regions, e.bufferImageCopies)
	e.device.CmdCopyImageToBuffer(active, src.Raw, DeriveImageLayout(srcUsage), dst.Raw, e.bufferImageCopies.Slice())
}
