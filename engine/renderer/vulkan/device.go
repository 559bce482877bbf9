package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
)

// Device is the native surface the encoder records through. LogicalDevice
// forwards every method to the Vulkan loader; tests substitute a recorder.
type Device interface {
	AllocateCommandBuffers(pool vk.CommandPool, count uint32) ([]vk.CommandBuffer, vk.Result)
	FreeCommandBuffers(pool vk.CommandPool, buffers []vk.CommandBuffer)
	BeginCommandBuffer(cb vk.CommandBuffer, flags vk.CommandBufferUsageFlags) vk.Result
	EndCommandBuffer(cb vk.CommandBuffer) vk.Result
	ResetCommandPool(pool vk.CommandPool, flags vk.CommandPoolResetFlags) vk.Result
	DestroyCommandPool(pool vk.CommandPool)

	CmdPipelineBarrier(cb vk.CommandBuffer, srcStages, dstStages vk.PipelineStageFlags, buffers []vk.BufferMemoryBarrier, images []vk.ImageMemoryBarrier)
	CmdFillBuffer(cb vk.CommandBuffer, buffer vk.Buffer, offset, size vk.DeviceSize, data uint32)
	CmdCopyBuffer(cb vk.CommandBuffer, src, dst vk.Buffer, regions []vk.BufferCopy)
	CmdCopyImage(cb vk.CommandBuffer, src vk.Image, srcLayout vk.ImageLayout, dst vk.Image, dstLayout vk.ImageLayout, regions []vk.ImageCopy)
	CmdCopyBufferToImage(cb vk.CommandBuffer, src vk.Buffer, dst vk.Image, dstLayout vk.ImageLayout, regions []vk.BufferImageCopy)
	CmdCopyImageToBuffer(cb vk.CommandBuffer, src vk.Image, srcLayout vk.ImageLayout, dst vk.Buffer, regions []vk.BufferImageCopy)

	CmdBindPipeline(cb vk.CommandBuffer, bindPoint vk.PipelineBindPoint, pipeline vk.Pipeline)
	CmdBeginRenderPass(cb vk.CommandBuffer, info *vk.RenderPassBeginInfo, contents vk.SubpassContents)
	CmdEndRenderPass(cb vk.CommandBuffer)
	CmdBindDescriptorSets(cb vk.CommandBuffer, bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout, firstSet uint32, sets []vk.DescriptorSet, dynamicOffsets []uint32)
	CmdPushConstants(cb vk.CommandBuffer, layout vk.PipelineLayout, stages vk.ShaderStageFlags, offset uint32, data []byte)
	CmdBindIndexBuffer(cb vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType)
	CmdBindVertexBuffers(cb vk.CommandBuffer, firstBinding uint32, buffers []vk.Buffer, offsets []vk.DeviceSize)
	CmdSetViewport(cb vk.CommandBuffer, viewport vk.Viewport)
	CmdSetScissor(cb vk.CommandBuffer, rect vk.Rect2D)
	CmdSetStencilReference(cb vk.CommandBuffer, reference uint32)
	CmdSetBlendConstants(cb vk.CommandBuffer, constants [4]float32)
	CmdDraw(cb vk.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32)
	CmdDrawIndexed(cb vk.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32)
	CmdDrawIndirect(cb vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, drawCount, stride uint32)
	CmdDrawIndexedIndirect(cb vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, drawCount, stride uint32)
	CmdDispatch(cb vk.CommandBuffer, x, y, z uint32)
	CmdDispatchIndirect(cb vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize)

	CmdBeginQuery(cb vk.CommandBuffer, pool vk.QueryPool, query uint32, flags vk.QueryControlFlags)
	CmdEndQuery(cb vk.CommandBuffer, pool vk.QueryPool, query uint32)
	CmdWriteTimestamp(cb vk.CommandBuffer, stage vk.PipelineStageFlagBits, pool vk.QueryPool, query uint32)
	CmdResetQueryPool(cb vk.CommandBuffer, pool vk.QueryPool, first, count uint32)
	CmdCopyQueryPoolResults(cb vk.CommandBuffer, pool vk.QueryPool, first, count uint32, dst vk.Buffer, offset, stride vk.DeviceSize, flags vk.QueryResultFlags)
}

// LogicalDevice records straight into Vulkan through goki/vulkan.
type LogicalDevice struct {
	Handle    vk.Device
	Allocator *vk.AllocationCallbacks
}

func (d *LogicalDevice) AllocateCommandBuffers(pool vk.CommandPool, count uint32) ([]vk.CommandBuffer, vk.Result) {
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}
	buffers := make([]vk.CommandBuffer, count)
	res := vk.AllocateCommandBuffers(d.Handle, &allocateInfo, buffers)
	return buffers, res
}

func (d *LogicalDevice) FreeCommandBuffers(pool vk.CommandPool, buffers []vk.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	vk.FreeCommandBuffers(d.Handle, pool, uint32(len(buffers)), buffers)
}

func (d *LogicalDevice) BeginCommandBuffer(cb vk.CommandBuffer, flags vk.CommandBufferUsageFlags) vk.Result {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: flags,
	}
	return vk.BeginCommandBuffer(cb, &beginInfo)
}

func (d *LogicalDevice) EndCommandBuffer(cb vk.CommandBuffer) vk.Result {
	return vk.EndCommandBuffer(cb)
}

func (d *LogicalDevice) ResetCommandPool(pool vk.CommandPool, flags vk.CommandPoolResetFlags) vk.Result {
	return vk.ResetCommandPool(d.Handle, pool, flags)
}

func (d *LogicalDevice) DestroyCommandPool(pool vk.CommandPool) {
	vk.DestroyCommandPool(d.Handle, pool, d.Allocator)
}

func (d *LogicalDevice) CmdPipelineBarrier(cb vk.CommandBuffer, srcStages, dstStages vk.PipelineStageFlags, buffers []vk.BufferMemoryBarrier, images []vk.ImageMemoryBarrier) {
	vk.CmdPipelineBarrier(cb, srcStages, dstStages, 0,
		0, nil,
		uint32(len(buffers)), buffers,
		uint32(len(images)), images)
}

func (d *LogicalDevice) CmdFillBuffer(cb vk.CommandBuffer, buffer vk.Buffer, offset, size vk.DeviceSize, data uint32) {
	vk.CmdFillBuffer(cb, buffer, offset, size, data)
}

func (d *LogicalDevice) CmdCopyBuffer(cb vk.CommandBuffer, src, dst vk.Buffer, regions []vk.BufferCopy) {
	vk.CmdCopyBuffer(cb, src, dst, uint32(len(regions)), regions)
}

func (d *LogicalDevice) CmdCopyImage(cb vk.CommandBuffer, src vk.Image, srcLayout vk.ImageLayout, dst vk.Image, dstLayout vk.ImageLayout, regions []vk.ImageCopy) {
	vk.CmdCopyImage(cb, src, srcLayout, dst, dstLayout, uint32(len(regions)), regions)
}

func (d *LogicalDevice) CmdCopyBufferToImage(cb vk.CommandBuffer, src vk.Buffer, dst vk.Image, dstLayout vk.ImageLayout, regions []vk.BufferImageCopy) {
	vk.CmdCopyBufferToImage(cb, src, dst, dstLayout, uint32(len(regions)), regions)
}

func (d *LogicalDevice) CmdCopyImageToBuffer(cb vk.CommandBuffer, src vk.Image, srcLayout vk.ImageLayout, dst vk.Buffer, regions []vk.BufferImageCopy) {
	vk.CmdCopyImageToBuffer(cb, src, srcLayout, dst, uint32(len(regions)), regions)
}

func (d *LogicalDevice) CmdBindPipeline(cb vk.CommandBuffer, bindPoint vk.PipelineBindPoint, pipeline vk.Pipeline) {
	vk.CmdBindPipeline(cb, bindPoint, pipeline)
}

func (d *LogicalDevice) CmdBeginRenderPass(cb vk.CommandBuffer, info *vk.RenderPassBeginInfo, contents vk.SubpassContents) {
	vk.CmdBeginRenderPass(cb, info, contents)
}

func (d *LogicalDevice) CmdEndRenderPass(cb vk.CommandBuffer) {
	vk.CmdEndRenderPass(cb)
}

func (d *LogicalDevice) CmdBindDescriptorSets(cb vk.CommandBuffer, bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout, firstSet uint32, sets []vk.DescriptorSet, dynamicOffsets []uint32) {
	vk.CmdBindDescriptorSets(cb, bindPoint, layout, firstSet,
		uint32(len(sets)), sets,
		uint32(len(dynamicOffsets)), dynamicOffsets)
}

func (d *LogicalDevice) CmdPushConstants(cb vk.CommandBuffer, layout vk.PipelineLayout, stages vk.ShaderStageFlags, offset uint32, data []byte) {
	if len(data) == 0 {
		return
	}
	vk.CmdPushConstants(cb, layout, stages, offset, uint32(len(data)), unsafe.Pointer(&data[0]))
}

func (d *LogicalDevice) CmdBindIndexBuffer(cb vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType) {
	vk.CmdBindIndexBuffer(cb, buffer, offset, indexType)
}

func (d *LogicalDevice) CmdBindVertexBuffers(cb vk.CommandBuffer, firstBinding uint32, buffers []vk.Buffer, offsets []vk.DeviceSize) {
	vk.CmdBindVertexBuffers(cb, firstBinding, uint32(len(buffers)), buffers, offsets)
}

func (d *LogicalDevice) CmdSetViewport(cb vk.CommandBuffer, viewport vk.Viewport) {
	vk.CmdSetViewport(cb, 0, 1, []vk.Viewport{viewport})
}

func (d *LogicalDevice) CmdSetScissor(cb vk.CommandBuffer, rect vk.Rect2D) {
	vk.CmdSetScissor(cb, 0, 1, []vk.Rect2D{rect})
}

func (d *LogicalDevice) CmdSetStencilReference(cb vk.CommandBuffer, reference uint32) {
	faces := vk.StencilFaceFlags(vk.StencilFaceFrontBit | vk.StencilFaceBackBit)
	vk.CmdSetStencilReference(cb, faces, reference)
}

func (d *LogicalDevice) CmdSetBlendConstants(cb vk.CommandBuffer, constants [4]float32) {
	vk.CmdSetBlendConstants(cb, &constants)
}

func (d *LogicalDevice) CmdDraw(cb vk.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	vk.CmdDraw(cb, vertexCount, instanceCount, firstVertex, firstInstance)
}

func (d *LogicalDevice) CmdDrawIndexed(cb vk.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	vk.CmdDrawIndexed(cb, indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}

func (d *LogicalDevice) CmdDrawIndirect(cb vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, drawCount, stride uint32) {
	vk.CmdDrawIndirect(cb, buffer, offset, drawCount, stride)
}

func (d *LogicalDevice) CmdDrawIndexedIndirect(cb vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, drawCount, stride uint32) {
	vk.CmdDrawIndexedIndirect(cb, buffer, offset, drawCount, stride)
}

func (d *LogicalDevice) CmdDispatch(cb vk.CommandBuffer, x, y, z uint32) {
	vk.CmdDispatch(cb, x, y, z)
}

func (d *LogicalDevice) CmdDispatchIndirect(cb vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize) {
	vk.CmdDispatchIndirect(cb, buffer, offset)
}

func (d *LogicalDevice) CmdBeginQuery(cb vk.CommandBuffer, pool vk.QueryPool, query uint32, flags vk.QueryControlFlags) {
	vk.CmdBeginQuery(cb, pool, query, flags)
}

func (d *LogicalDevice) CmdEndQuery(cb vk.CommandBuffer, pool vk.QueryPool, query uint32) {
	vk.CmdEndQuery(cb, pool, query)
}

func (d *LogicalDevice) CmdWriteTimestamp(cb vk.CommandBuffer, stage vk.PipelineStageFlagBits, pool vk.QueryPool, query uint32) {
	vk.CmdWriteTimestamp(cb, stage, pool, query)
}

func (d *LogicalDevice) CmdResetQueryPool(cb vk.CommandBuffer, pool vk.QueryPool, first, count uint32) {
	vk.CmdResetQueryPool(cb, pool, first, count)
}

func (d *LogicalDevice) CmdCopyQueryPoolResults(cb vk.CommandBuffer, pool vk.QueryPool, first, count uint32, dst vk.Buffer, offset, stride vk.DeviceSize, flags vk.QueryResultFlags) {
	vk.CmdCopyQueryPoolResults(cb, pool, first, count, dst, offset, stride, flags)
}
