package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anima-hal/engine/core"
)

// The calls below are recorded as-is into the active buffer. Ordering and
// state validity are the caller's responsibility.

type RenderPassDescriptor struct {
	RenderPass  vk.RenderPass
	Framebuffer vk.Framebuffer
	Area        vk.Rect2D
	ClearValues []vk.ClearValue
}

type ComputePassDescriptor struct {
	Label string
}

type Rect struct {
	X, Y          float32
	Width, Height float32
}

func (e *CommandEncoder) BeginRenderPass(desc *RenderPassDescriptor) {
	active := e.pool.Active()
	beginInfo := vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      desc.RenderPass,
		Framebuffer:     desc.Framebuffer,
		RenderArea:      desc.Area,
		ClearValueCount: uint32(len(desc.ClearValues)),
		PClearValues:    desc.ClearValues,
	}
	e.device.CmdBeginRenderPass(active, &beginInfo, vk.SubpassContentsInline)
}

func (e *CommandEncoder) EndRenderPass() {
	e.device.CmdEndRenderPass(e.pool.Active())
}

// Compute passes have no native object in Vulkan.
func (e *CommandEncoder) BeginComputePass(desc *ComputePassDescriptor) {
	e.pool.Active()
	if desc != nil && desc.Label != "" {
		core.LogDebug("[%s] compute pass: %s", e.current, desc.Label)
	}
}

func (e *CommandEncoder) EndComputePass() {
	e.pool.Active()
}

func (e *CommandEncoder) SetRenderPipeline(pipeline vk.Pipeline) {
	e.device.CmdBindPipeline(e.pool.Active(), vk.PipelineBindPointGraphics, pipeline)
}

func (e *CommandEncoder) SetComputePipeline(pipeline vk.Pipeline) {
	e.device.CmdBindPipeline(e.pool.Active(), vk.PipelineBindPointCompute, pipeline)
}

func (e *CommandEncoder) SetBindGroup(bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout, index uint32, set vk.DescriptorSet, dynamicOffsets []uint32) {
	e.device.CmdBindDescriptorSets(e.pool.Active(), bindPoint, layout, index, []vk.DescriptorSet{set}, dynamicOffsets)
}

func (e *CommandEncoder) SetPushConstants(layout vk.PipelineLayout, stages vk.ShaderStageFlags, offset uint32, data []byte) {
	e.device.CmdPushConstants(e.pool.Active(), layout, stages, offset, data)
}

func (e *CommandEncoder) SetIndexBuffer(buffer *Buffer, offset uint64, indexType vk.IndexType) {
	e.device.CmdBindIndexBuffer(e.pool.Active(), buffer.Raw, vk.DeviceSize(offset), indexType)
}

func (e *CommandEncoder) SetVertexBuffer(index uint32, buffer *Buffer, offset uint64) {
	e.device.CmdBindVertexBuffers(e.pool.Active(), index, []vk.Buffer{buffer.Raw}, []vk.DeviceSize{vk.DeviceSize(offset)})
}

func (e *CommandEncoder) SetViewport(rect Rect, minDepth, maxDepth float32) {
	e.device.CmdSetViewport(e.pool.Active(), vk.Viewport{
		X:        rect.X,
		Y:        rect.Y,
		Width:    rect.Width,
		Height:   rect.Height,
		MinDepth: minDepth,
		MaxDepth: maxDepth,
	})
}

func (e *CommandEncoder) SetScissorRect(x, y int32, width, height uint32) {
	e.device.CmdSetScissor(e.pool.Active(), vk.Rect2D{
		Offset: vk.Offset2D{X: x, Y: y},
		Extent: vk.Extent2D{Width: width, Height: height},
	})
}

func (e *CommandEncoder) SetStencilReference(value uint32) {
	e.device.CmdSetStencilReference(e.pool.Active(), value)
}

func (e *CommandEncoder) SetBlendConstants(r, g, b, a float32) {
	e.device.CmdSetBlendConstants(e.pool.Active(), [4]float32{r, g, b, a})
}

func (e *CommandEncoder) Draw(startVertex, vertexCount, startInstance, instanceCount uint32) {
	e.device.CmdDraw(e.pool.Active(), vertexCount, instanceCount, startVertex, startInstance)
}

func (e *CommandEncoder) DrawIndexed(startIndex, indexCount uint32, baseVertex int32, startInstance, instanceCount uint32) {
	e.device.CmdDrawIndexed(e.pool.Active(), indexCount, instanceCount, startIndex, baseVertex, startInstance)
}

// Indirect argument structs are tightly packed, so the stride is their size.
const (
	drawIndirectStride        = 16
	drawIndexedIndirectStride = 20
)

func (e *CommandEncoder) DrawIndirect(buffer *Buffer, offset uint64, drawCount uint32) {
	e.device.CmdDrawIndirect(e.pool.Active(), buffer.Raw, vk.DeviceSize(offset), drawCount, drawIndirectStride)
}

func (e *CommandEncoder) DrawIndexedIndirect(buffer *Buffer, offset uint64, drawCount uint32) {
	e.device.CmdDrawIndexedIndirect(e.pool.Active(), buffer.Raw, vk.DeviceSize(offset), drawCount, drawIndexedIndirectStride)
}

func (e *CommandEncoder) Dispatch(count [3]uint32) {
	e.device.CmdDispatch(e.pool.Active(), count[0], count[1], count[2])
}

func (e *CommandEncoder) DispatchIndirect(buffer *Buffer, offset uint64) {
	e.device.CmdDispatchIndirect(e.pool.Active(), buffer.Raw, vk.DeviceSize(offset))
}

func (e *CommandEncoder) BeginQuery(set vk.QueryPool, index uint32) {
	e.device.CmdBeginQuery(e.pool.Active(), set, index, 0)
}

func (e *CommandEncoder) EndQuery(set vk.QueryPool, index uint32) {
	e.device.CmdEndQuery(e.pool.Active(), set, index)
}

func (e *CommandEncoder) WriteTimestamp(set vk.QueryPool, index uint32) {
	e.device.CmdWriteTimestamp(e.pool.Active(), vk.PipelineStageBottomOfPipeBit, set, index)
}

func (e *CommandEncoder) ResetQueries(set vk.QueryPool, first, count uint32) {
	e.device.CmdResetQueryPool(e.pool.Active(), set, first, count)
}

// CopyQueryResults writes 64-bit results, waiting for queries to finish.
func (e *CommandEncoder) CopyQueryResults(set vk.QueryPool, first, count uint32, buffer *Buffer, offset uint64) {
	flags := vk.QueryResultFlags(vk.QueryResult64Bit | vk.QueryResultWaitBit)
	e.device.CmdCopyQueryPoolResults(e.pool.Active(), set, first, count, buffer.Raw, vk.DeviceSize(offset), 8, flags)
}

// Debug markers are logged rather than recorded; the bootstrap does not
// enable VK_EXT_debug_utils.
func (e *CommandEncoder) InsertDebugMarker(label string) {
	e.pool.Active()
	core.LogDebug("[%s] marker: %s", e.current, label)
}

func (e *CommandEncoder) BeginDebugMarker(groupLabel string) {
	e.pool.Active()
	core.LogDebug("[%s] begin group: %s", e.current, groupLabel)
}

func (e *CommandEncoder) EndDebugMarker() {
	e.pool.Active()
	core.LogDebug("[%s] end group", e.current)
}
