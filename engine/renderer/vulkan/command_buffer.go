package vulkan

import (
	vk "github.com/goki/vulkan"
)

// CommandBuffer is a sealed recording returned by CommandEncoder.End. The
// caller owns it until it is handed back through ResetAll.
type CommandBuffer struct {
	raw   vk.CommandBuffer
	label string
}

// Handle returns the native handle for queue submission.
func (c *CommandBuffer) Handle() vk.CommandBuffer {
	return c.raw
}

func (c *CommandBuffer) Label() string {
	return c.label
}

// SubmitInfo builds a submit description for this buffer alone.
func (c *CommandBuffer) SubmitInfo() vk.SubmitInfo {
	return vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{c.raw},
	}
}
