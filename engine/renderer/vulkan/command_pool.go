package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anima-hal/engine/core"
)

const ALLOCATION_GRANULARITY uint32 = 16

// CommandPool hands out command buffers from one native pool. Each handle is
// in exactly one place: free, discarded, active or with the caller.
type CommandPool struct {
	device      Device
	raw         vk.CommandPool
	granularity uint32

	free      []vk.CommandBuffer
	discarded []vk.CommandBuffer

	active    vk.CommandBuffer
	hasActive bool

	allocated int
}

// PoolStats is a snapshot of where the pool's handles currently are.
type PoolStats struct {
	Free      int
	Discarded int
	Active    int
	Allocated int
}

// Submitted returns the number of handles held by the caller.
func (s PoolStats) Submitted() int {
	return s.Allocated - s.Free - s.Discarded - s.Active
}

func NewCommandPool(device Device, raw vk.CommandPool, granularity uint32) *CommandPool {
	if granularity == 0 {
		granularity = ALLOCATION_GRANULARITY
	}
	return &CommandPool{
		device:      device,
		raw:         raw,
		granularity: granularity,
	}
}

func (p *CommandPool) Raw() vk.CommandPool {
	return p.raw
}

func (p *CommandPool) grow() error {
	buffers, res := p.device.AllocateCommandBuffers(p.raw, p.granularity)
	if err := mapResult("vkAllocateCommandBuffers", res); err != nil {
		return err
	}
	p.free = append(p.free, buffers...)
	p.allocated += len(buffers)
	core.LogDebug("command pool grew by %d buffers (%d total)", len(buffers), p.allocated)
	return nil
}

// Begin takes a buffer from the free list, growing it by one batch when
// empty, and starts a one-time-submit recording into it.
func (p *CommandPool) Begin() error {
	if p.hasActive {
		panic("vulkan: Begin called while a recording is already active")
	}
	if len(p.free) == 0 {
		if err := p.grow(); err != nil {
			return err
		}
	}

	raw := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	res := p.device.BeginCommandBuffer(raw, vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit))
	if err := mapResult("vkBeginCommandBuffer", res); err != nil {
		// must be reset before it can be begun again
		p.discarded = append(p.discarded, raw)
		return err
	}
	p.active = raw
	p.hasActive = true
	return nil
}

// Active returns the buffer being recorded. It panics outside Begin/End.
func (p *CommandPool) Active() vk.CommandBuffer {
	if !p.hasActive {
		panic("vulkan: recording command issued outside Begin/End")
	}
	return p.active
}

func (p *CommandPool) HasActive() bool {
	return p.hasActive
}

// End seals the active buffer. A failed seal parks the buffer in the
// discarded list and returns the error.
func (p *CommandPool) End() (vk.CommandBuffer, error) {
	if !p.hasActive {
		panic("vulkan: End called without an active recording")
	}
	raw := p.active
	p.active = nil
	p.hasActive = false

	if err := mapResult("vkEndCommandBuffer", p.device.EndCommandBuffer(raw)); err != nil {
		p.discarded = append(p.discarded, raw)
		return nil, err
	}
	return raw, nil
}

// Discard abandons the active recording.
func (p *CommandPool) Discard() {
	if !p.hasActive {
		core.LogDebug("discard requested with no active recording")
		return
	}
	p.discarded = append(p.discarded, p.active)
	p.active = nil
	p.hasActive = false
}

// ResetAll returns the given buffers and every discarded buffer to the free
// list and resets the native pool. The caller guarantees none of them are
// still executing.
func (p *CommandPool) ResetAll(buffers []vk.CommandBuffer) {
	if p.hasActive {
		panic("vulkan: ResetAll called while a recording is active")
	}
	for _, raw := range buffers {
		if raw != nil {
			p.free = append(p.free, raw)
		}
	}
	p.free = append(p.free, p.discarded...)
	clear(p.discarded)
	p.discarded = p.discarded[:0]

	res := p.device.ResetCommandPool(p.raw, vk.CommandPoolResetFlags(vk.CommandPoolResetReleaseResourcesBit))
	if !VulkanResultIsSuccess(res) {
		core.LogWarn("vkResetCommandPool failed: %s", VulkanResultString(res, true))
	}
}

func (p *CommandPool) Stats() PoolStats {
	active := 0
	if p.hasActive {
		active = 1
	}
	return PoolStats{
		Free:      len(p.free),
		Discarded: len(p.discarded),
		Active:    active,
		Allocated: p.allocated,
	}
}

// Destroy frees every handle the pool still holds and destroys the native
// pool. Buffers held by the caller are released with the pool.
func (p *CommandPool) Destroy() {
	if p.hasActive {
		p.Discard()
	}
	p.device.FreeCommandBuffers(p.raw, p.free)
	p.device.FreeCommandBuffers(p.raw, p.discarded)
	p.free = nil
	p.discarded = nil
	p.device.DestroyCommandPool(p.raw)
	p.raw = nil
	p.allocated = 0
}
