package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
)

// handle backing storage; only the addresses matter
var (
	cbBacking     [1024]byte
	bufferBacking [16]byte
	imageBacking  [16]byte
	poolBacking   [1]byte
)

func fakeCommandBuffer(i int) vk.CommandBuffer {
	return vk.CommandBuffer(unsafe.Pointer(&cbBacking[i]))
}

func fakeBuffer(i int) *Buffer {
	return &Buffer{Raw: vk.Buffer(unsafe.Pointer(&bufferBacking[i])), Size: 1 << 20}
}

func fakeImage(i int) vk.Image {
	return vk.Image(unsafe.Pointer(&imageBacking[i]))
}

func fakePool() vk.CommandPool {
	return vk.CommandPool(unsafe.Pointer(&poolBacking[0]))
}

type barrierCall struct {
	cb       vk.CommandBuffer
	src, dst vk.PipelineStageFlags
	buffers  []vk.BufferMemoryBarrier
	images   []vk.ImageMemoryBarrier
}

type copyCall struct {
	kind      string
	cb        vk.CommandBuffer
	srcLayout vk.ImageLayout
	dstLayout vk.ImageLayout
	buffers   []vk.BufferCopy
	images    []vk.ImageCopy
	regions   []vk.BufferImageCopy
}

type fillCall struct {
	buffer       vk.Buffer
	offset, size vk.DeviceSize
	data         uint32
}

// recordingDevice implements Device in memory. Slices passed to it are
// copied because the encoder reuses its scratch storage.
type recordingDevice struct {
	next int

	allocateResult vk.Result
	beginResult    vk.Result
	endResult      vk.Result
	resetResult    vk.Result

	allocations []uint32
	begun       []vk.CommandBuffer
	beginFlags  []vk.CommandBufferUsageFlags
	ended       []vk.CommandBuffer
	resets      []vk.CommandPoolResetFlags
	freed       []vk.CommandBuffer
	destroyed   int

	barriers []barrierCall
	copies   []copyCall
	fills    []fillCall
	calls    []string
}

func newRecordingDevice() *recordingDevice {
	return &recordingDevice{}
}

func (d *recordingDevice) record(name string) {
	d.calls = append(d.calls, name)
}

func (d *recordingDevice) AllocateCommandBuffers(pool vk.CommandPool, count uint32) ([]vk.CommandBuffer, vk.Result) {
	d.record("AllocateCommandBuffers")
	d.allocations = append(d.allocations, count)
	if d.allocateResult != vk.Success {
		return nil, d.allocateResult
	}
	out := make([]vk.CommandBuffer, count)
	for i := range out {
		out[i] = fakeCommandBuffer(d.next)
		d.next++
	}
	return out, vk.Success
}

func (d *recordingDevice) FreeCommandBuffers(pool vk.CommandPool, buffers []vk.CommandBuffer) {
	d.freed = append(d.freed, buffers...)
}

func (d *recordingDevice) BeginCommandBuffer(cb vk.CommandBuffer, flags vk.CommandBufferUsageFlags) vk.Result {
	d.record("BeginCommandBuffer")
	d.begun = append(d.begun, cb)
	d.beginFlags = append(d.beginFlags, flags)
	return d.beginResult
}

func (d *recordingDevice) EndCommandBuffer(cb vk.CommandBuffer) vk.Result {
	d.record("EndCommandBuffer")
	d.ended = append(d.ended, cb)
	return d.endResult
}

func (d *recordingDevice) ResetCommandPool(pool vk.CommandPool, flags vk.CommandPoolResetFlags) vk.Result {
	d.record("ResetCommandPool")
	d.resets = append(d.resets, flags)
	return d.resetResult
}

func (d *recordingDevice) DestroyCommandPool(pool vk.CommandPool) {
	d.destroyed++
}

func (d *recordingDevice) CmdPipelineBarrier(cb vk.CommandBuffer, src, dst vk.PipelineStageFlags, buffers []vk.BufferMemoryBarrier, images []vk.ImageMemoryBarrier) {
	d.record("CmdPipelineBarrier")
	d.barriers = append(d.barriers, barrierCall{
		cb:      cb,
		src:     src,
		dst:     dst,
		buffers: append([]vk.BufferMemoryBarrier(nil), buffers...),
		images:  append([]vk.ImageMemoryBarrier(nil), images...),
	})
}

func (d *recordingDevice) CmdFillBuffer(cb vk.CommandBuffer, buffer vk.Buffer, offset, size vk.DeviceSize, data uint32) {
	d.record("CmdFillBuffer")
	d.fills = append(d.fills, fillCall{buffer: buffer, offset: offset, size: size, data: data})
}

func (d *recordingDevice) CmdCopyBuffer(cb vk.CommandBuffer, src, dst vk.Buffer, regions []vk.BufferCopy) {
	d.record("CmdCopyBuffer")
	d.copies = append(d.copies, copyCall{kind: "buffer", cb: cb, buffers: append([]vk.BufferCopy(nil), regions...)})
}

func (d *recordingDevice) CmdCopyImage(cb vk.CommandBuffer, src vk.Image, srcLayout vk.ImageLayout, dst vk.Image, dstLayout vk.ImageLayout, regions []vk.ImageCopy) {
	d.record("CmdCopyImage")
	d.copies = append(d.copies, copyCall{kind: "image", cb: cb, srcLayout: srcLayout, dstLayout: dstLayout, images: append([]vk.ImageCopy(nil), regions...)})
}

func (d *recordingDevice) CmdCopyBufferToImage(cb vk.CommandBuffer, src vk.Buffer, dst vk.Image, dstLayout vk.ImageLayout, regions []vk.BufferImageCopy) {
	d.record("CmdCopyBufferToImage")
	d.copies = append(d.copies, copyCall{kind: "bufferToImage", cb: cb, dstLayout: dstLayout, regions: append([]vk.BufferImageCopy(nil), regions...)})
}

func (d *recordingDevice) CmdCopyImageToBuffer(cb vk.CommandBuffer, src vk.Image, srcLayout vk.ImageLayout, dst vk.Buffer, regions []vk.BufferImageCopy) {
	d.record("CmdCopyImageToBuffer")
	d.copies = append(d.copies, copyCall{kind: "imageToBuffer", cb: cb, srcLayout: srcLayout, regions: append([]vk.BufferImageCopy(nil), regions...)})
}

func (d *recordingDevice) CmdBindPipeline(cb vk.CommandBuffer, bindPoint vk.PipelineBindPoint, pipeline vk.Pipeline) {
	d.record("CmdBindPipeline")
}

func (d *recordingDevice) CmdBeginRenderPass(cb vk.CommandBuffer, info *vk.RenderPassBeginInfo, contents vk.SubpassContents) {
	d.record("CmdBeginRenderPass")
}

func (d *recordingDevice) CmdEndRenderPass(cb vk.CommandBuffer) {
	d.record("CmdEndRenderPass")
}

func (d *recordingDevice) CmdBindDescriptorSets(cb vk.CommandBuffer, bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout, firstSet uint32, sets []vk.DescriptorSet, dynamicOffsets []uint32) {
	d.record("CmdBindDescriptorSets")
}

func (d *recordingDevice) CmdPushConstants(cb vk.CommandBuffer, layout vk.PipelineLayout, stages vk.ShaderStageFlags, offset uint32, data []byte) {
	d.record("CmdPushConstants")
}

func (d *recordingDevice) CmdBindIndexBuffer(cb vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType) {
	d.record("CmdBindIndexBuffer")
}

func (d *recordingDevice) CmdBindVertexBuffers(cb vk.CommandBuffer, firstBinding uint32, buffers []vk.Buffer, offsets []vk.DeviceSize) {
	d.record("CmdBindVertexBuffers")
}

func (d *recordingDevice) CmdSetViewport(cb vk.CommandBuffer, viewport vk.Viewport) {
	d.record("CmdSetViewport")
}

func (d *recordingDevice) CmdSetScissor(cb vk.CommandBuffer, rect vk.Rect2D) {
	d.record("CmdSetScissor")
}

func (d *recordingDevice) CmdSetStencilReference(cb vk.CommandBuffer, reference uint32) {
	d.record("CmdSetStencilReference")
}

func (d *recordingDevice) CmdSetBlendConstants(cb vk.CommandBuffer, constants [4]float32) {
	d.record("CmdSetBlendConstants")
}

func (d *recordingDevice) CmdDraw(cb vk.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	d.record("CmdDraw")
}

func (d *recordingDevice) CmdDrawIndexed(cb vk.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	d.record("CmdDrawIndexed")
}

func (d *recordingDevice) CmdDrawIndirect(cb vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, drawCount, stride uint32) {
	d.record("CmdDrawIndirect")
}

func (d *recordingDevice) CmdDrawIndexedIndirect(cb vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, drawCount, stride uint32) {
	d.record("CmdDrawIndexedIndirect")
}

func (d *recordingDevice) CmdDispatch(cb vk.CommandBuffer, x, y, z uint32) {
	d.record("CmdDispatch")
}

func (d *recordingDevice) CmdDispatchIndirect(cb vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize) {
	d.record("CmdDispatchIndirect")
}

func (d *recordingDevice) CmdBeginQuery(cb vk.CommandBuffer, pool vk.QueryPool, query uint32, flags vk.QueryControlFlags) {
	d.record("CmdBeginQuery")
}

func (d *recordingDevice) CmdEndQuery(cb vk.CommandBuffer, pool vk.QueryPool, query uint32) {
	d.record("CmdEndQuery")
}

func (d *recordingDevice) CmdWriteTimestamp(cb vk.CommandBuffer, stage vk.PipelineStageFlagBits, pool vk.QueryPool, query uint32) {
	d.record("CmdWriteTimestamp")
}

func (d *recordingDevice) CmdResetQueryPool(cb vk.CommandBuffer, pool vk.QueryPool, first, count uint32) {
	d.record("CmdResetQueryPool")
}

func (d *recordingDevice) CmdCopyQueryPoolResults(cb vk.CommandBuffer, pool vk.QueryPool, first, count uint32, dst vk.Buffer, offset, stride vk.DeviceSize, flags vk.QueryResultFlags) {
	d.record("CmdCopyQueryPoolResults")
}

// countCalls returns how many times name was recorded.
func (d *recordingDevice) countCalls(name string) int {
	n := 0
	for _, c := range d.calls {
		if c == name {
			n++
		}
	}
	return n
}

var _ Device = (*recordingDevice)(nil)
