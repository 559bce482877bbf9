package vulkan

import (
	"errors"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anima-hal/engine/core"
)

var (
	ErrOutOfHostMemory   = errors.New("out of host memory")
	ErrOutOfDeviceMemory = errors.New("out of device memory")
	ErrDeviceLost        = errors.New("device lost")
	ErrTimeout           = errors.New("wait timed out")
)

type DeviceErrorKind int

const (
	DeviceErrorOutOfHostMemory DeviceErrorKind = iota
	DeviceErrorOutOfDeviceMemory
	DeviceErrorLost
)

func (k DeviceErrorKind) sentinel() error {
	switch k {
	case DeviceErrorOutOfHostMemory:
		return ErrOutOfHostMemory
	case DeviceErrorOutOfDeviceMemory:
		return ErrOutOfDeviceMemory
	default:
		return ErrDeviceLost
	}
}

// DeviceError is returned for every failed native call. Result keeps the raw
// Vulkan code for logging; callers should match on Kind or the sentinels.
type DeviceError struct {
	Kind   DeviceErrorKind
	Op     string
	Result vk.Result
}

func (e *DeviceError) Error() string {
	return e.Op + ": " + e.Kind.sentinel().Error() + " (" + VulkanResultString(e.Result, false) + ")"
}

func (e *DeviceError) Unwrap() error {
	return e.Kind.sentinel()
}

// mapResult converts a native result into a DeviceError, or nil on success.
func mapResult(op string, res vk.Result) error {
	if res == vk.Success {
		return nil
	}
	kind := DeviceErrorLost
	switch res {
	case vk.ErrorOutOfHostMemory:
		kind = DeviceErrorOutOfHostMemory
	case vk.ErrorOutOfDeviceMemory, vk.ErrorOutOfPoolMemory, vk.ErrorFragmentedPool:
		kind = DeviceErrorOutOfDeviceMemory
	case vk.ErrorDeviceLost:
	default:
		core.LogWarn("%s: unrecognized result %s", op, VulkanResultString(res, true))
	}
	return &DeviceError{Kind: kind, Op: op, Result: res}
}
