/*
Headless demo that records a few transfer workloads with the command encoder,
submits them and verifies the results read back from the device.
*/
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/gputypes"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anima-hal/engine/core"
	"github.com/spaghettifunk/anima-hal/engine/math"
	"github.com/spaghettifunk/anima-hal/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-hal/engine/renderer/vulkan"
)

const (
	textureSize   = 256
	bytesPerTexel = 4
	fillValue     = 0xAB
	fenceTimeout  = 5 * time.Second
)

type demo struct {
	context *vulkan.VulkanContext
	encoder *vulkan.CommandEncoder
	fence   *vulkan.VulkanFence

	staging  *vulkan.Buffer
	scratch  *vulkan.Buffer
	readback *vulkan.Buffer
	texture  *vulkan.Texture
}

func main() {
	configPath := flag.String("config", core.DefaultConfigPath, "path to the TOML config file")
	watch := flag.Bool("watch", false, "keep recording and reload the log config when the file changes")
	flag.Parse()

	if err := runDemo(*configPath, *watch); err != nil {
		core.LogFatal("%s", err)
	}
}

func runDemo(configPath string, watch bool) error {
	cfg, err := core.LoadConfig(configPath)
	if err != nil {
		return err
	}
	core.ApplyLogConfig(cfg)
	if effective, err := cfg.Encode(); err == nil {
		core.LogDebug("effective config:\n%s", effective)
	}

	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	defer core.EventSystemShutdown()

	core.EventRegister(core.EVENT_CODE_CONFIG_RELOADED, "logging", func(context core.EventContext) bool {
		core.ApplyLogConfig(context.Config)
		return false
	})
	quit := make(chan struct{}, 1)
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, "demo", func(core.EventContext) bool {
		select {
		case quit <- struct{}{}:
		default:
		}
		return true
	})

	if watch {
		watcher, err := core.NewConfigWatcher(configPath)
		if err != nil {
			return err
		}
		defer watcher.Close()
	}

	d, err := newDemo(cfg)
	if err != nil {
		return err
	}
	defer d.destroy()

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer func() {
		signal.Stop(sigCh)
		close(sigCh)
	}()
	go func() {
		if _, ok := <-sigCh; ok {
			core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		}
	}()
	defer d.report()

	for frame := 0; ; frame++ {
		if err := d.run(frame); err != nil {
			return err
		}
		if !watch {
			return nil
		}
		select {
		case <-quit:
			core.LogInfo("shutting down")
			return nil
		case <-time.After(time.Second):
		}
	}
}

func newDemo(cfg *core.Config) (*demo, error) {
	context, err := vulkan.NewVulkanContext(cfg.Device)
	if err != nil {
		return nil, err
	}
	d := &demo{context: context}

	pool, err := context.CreateCommandPool()
	if err != nil {
		d.destroy()
		return nil, err
	}
	d.encoder = vulkan.NewCommandEncoder(context.Device, vulkan.EncoderDescriptor{
		Label:                 cfg.Encoder.Label,
		Pool:                  pool,
		AllocationGranularity: cfg.Encoder.AllocationGranularity,
		InlineRegions:         cfg.Encoder.InlineRegions,
	})

	if d.fence, err = vulkan.NewFence(context, false); err != nil {
		d.destroy()
		return nil, err
	}

	transfer := vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit | vk.BufferUsageTransferDstBit)
	size := uint64(textureRowPitch()) * textureSize
	if d.staging, err = context.CreateBuffer(size, transfer); err != nil {
		d.destroy()
		return nil, err
	}
	if d.scratch, err = context.CreateBuffer(size, transfer); err != nil {
		d.destroy()
		return nil, err
	}
	if d.readback, err = context.CreateBuffer(size, transfer); err != nil {
		d.destroy()
		return nil, err
	}
	d.texture, err = context.CreateTexture(
		gputypes.TextureDimension2D,
		gputypes.TextureFormatRGBA8Unorm,
		gputypes.Extent3D{Width: textureSize, Height: textureSize, DepthOrArrayLayers: 1},
	)
	if err != nil {
		d.destroy()
		return nil, err
	}
	return d, nil
}

func textureRowPitch() uint32 {
	return math.BytesPerRow(textureSize, 1, bytesPerTexel, 256)
}

func pattern(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i * 7)
	}
	return data
}

// run records one frame: fill the scratch buffer, round-trip a generated
// image through the texture, then checks both on the host.
func (d *demo) run(frame int) error {
	pitch := textureRowPitch()
	size := uint64(pitch) * textureSize
	upload := pattern(int(size))
	if err := d.context.WriteBuffer(d.staging, upload); err != nil {
		return err
	}

	if err := d.encoder.Begin(fmt.Sprintf("frame-%d", frame)); err != nil {
		return err
	}
	d.encoder.BeginDebugMarker("buffers")
	d.encoder.FillBuffer(d.scratch, metadata.MemoryRange{Start: 0, End: size}, fillValue)
	d.encoder.TransitionBuffers([]vulkan.BufferBarrier{{
		Buffer: d.scratch,
		Usage:  metadata.Range[metadata.BufferUses]{Start: metadata.BufferUseCopyDst, End: metadata.BufferUseMapRead},
	}})
	d.encoder.EndDebugMarker()

	d.encoder.BeginDebugMarker("texture round trip")
	layout := metadata.ImageDataLayout{BytesPerRow: pitch}
	extent := gputypes.Extent3D{Width: textureSize, Height: textureSize, DepthOrArrayLayers: 1}
	d.encoder.TransitionTextures([]vulkan.TextureBarrier{{
		Texture: d.texture,
		Usage:   metadata.Range[metadata.TextureUses]{Start: metadata.TextureUseUninitialized, End: metadata.TextureUseCopyDst},
	}})
	d.encoder.CopyBufferToTexture(d.staging, d.texture, []metadata.BufferTextureCopy{{
		BufferLayout: layout,
		Size:         extent,
	}})
	d.encoder.TransitionTextures([]vulkan.TextureBarrier{{
		Texture: d.texture,
		Usage:   metadata.Range[metadata.TextureUses]{Start: metadata.TextureUseCopyDst, End: metadata.TextureUseCopySrc},
	}})
	d.encoder.CopyTextureToBuffer(d.texture, metadata.TextureUseCopySrc, d.readback, []metadata.BufferTextureCopy{{
		BufferLayout: layout,
		Size:         extent,
	}})
	d.encoder.TransitionBuffers([]vulkan.BufferBarrier{{
		Buffer: d.readback,
		Usage:  metadata.Range[metadata.BufferUses]{Start: metadata.BufferUseCopyDst, End: metadata.BufferUseMapRead},
	}})
	d.encoder.EndDebugMarker()

	cb, err := d.encoder.End()
	if err != nil {
		return err
	}

	if err := d.fence.Reset(d.context); err != nil {
		return err
	}
	if err := d.context.Submit(cb, d.fence); err != nil {
		d.encoder.ResetAll([]*vulkan.CommandBuffer{cb})
		return err
	}
	if err := d.fence.Wait(d.context, fenceTimeout); err != nil {
		// the buffer may still be executing
		vk.DeviceWaitIdle(d.context.Device.Handle)
		d.encoder.ResetAll([]*vulkan.CommandBuffer{cb})
		return err
	}
	d.encoder.ResetAll([]*vulkan.CommandBuffer{cb})

	return d.verify(upload)
}

func (d *demo) verify(upload []byte) error {
	filled := make([]byte, len(upload))
	if err := d.context.ReadBuffer(d.scratch, filled); err != nil {
		return err
	}
	if !bytes.Equal(filled, bytes.Repeat([]byte{fillValue}, len(filled))) {
		return fmt.Errorf("fill result does not match %#x", fillValue)
	}

	readback := make([]byte, len(upload))
	if err := d.context.ReadBuffer(d.readback, readback); err != nil {
		return err
	}
	if !bytes.Equal(readback, upload) {
		return fmt.Errorf("texture round trip corrupted the image")
	}
	core.LogInfo("frame verified on %s", d.context.DeviceName)
	return nil
}

func (d *demo) report() {
	stats := d.encoder.PoolStats()
	metrics := d.encoder.Metrics()
	core.LogInfo(
		"recordings: %d ended, %d discarded, avg %s; pool: %d allocated, %d free",
		metrics.Recorded(), metrics.Discarded(), metrics.Average(), stats.Allocated, stats.Free,
	)
}

func (d *demo) destroy() {
	if d.context.Device != nil {
		vk.DeviceWaitIdle(d.context.Device.Handle)
	}
	if d.texture != nil {
		d.context.DestroyTexture(d.texture)
	}
	for _, b := range []*vulkan.Buffer{d.staging, d.scratch, d.readback} {
		if b != nil {
			d.context.DestroyBuffer(b)
		}
	}
	if d.fence != nil {
		d.fence.Destroy(d.context)
	}
	if d.encoder != nil {
		d.encoder.Destroy()
	}
	d.context.Destroy()
}
