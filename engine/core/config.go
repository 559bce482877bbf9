package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigPath            = "anima-hal.toml"
	DefaultAllocationGranularity = 16
	DefaultInlineRegions         = 8
)

type LogConfig struct {
	Level  string `toml:"level"`
	Prefix string `toml:"prefix"`
}

// DeviceConfig selects how the headless Vulkan context is bootstrapped.
type DeviceConfig struct {
	ApplicationName string `toml:"application_name"`
	// Loader is "default" to load the Vulkan library directly or "glfw" to
	// take the instance proc address from GLFW.
	Loader     string `toml:"loader"`
	Validation bool   `toml:"validation"`
}

// EncoderConfig tunes the command encoder.
type EncoderConfig struct {
	// Number of command buffers allocated each time the free list runs dry.
	AllocationGranularity uint32 `toml:"allocation_granularity"`
	// Barriers and copy regions kept inline before spilling to the heap.
	InlineRegions int    `toml:"inline_regions"`
	Label         string `toml:"label"`
}

type Config struct {
	Log     LogConfig     `toml:"log"`
	Device  DeviceConfig  `toml:"device"`
	Encoder EncoderConfig `toml:"encoder"`
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Device: DeviceConfig{
			ApplicationName: "anima-hal",
			Loader:          "default",
		},
		Encoder: EncoderConfig{
			AllocationGranularity: DefaultAllocationGranularity,
			InlineRegions:         DefaultInlineRegions,
		},
	}
}

// LoadConfig reads a TOML file on top of the defaults. A missing file is not
// an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			LogDebug("config file %s not found, using defaults", path)
			return cfg, nil
		}
		return nil, err
	}
	if err := ParseConfig(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes data into cfg and validates the result.
func ParseConfig(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Encoder.AllocationGranularity == 0 {
		return fmt.Errorf("%w: encoder.allocation_granularity must be at least 1", ErrConfigInvalid)
	}
	if c.Encoder.InlineRegions < 0 {
		return fmt.Errorf("%w: encoder.inline_regions must not be negative", ErrConfigInvalid)
	}
	switch c.Device.Loader {
	case "default", "glfw":
	default:
		return fmt.Errorf("%w: unknown device.loader %q", ErrConfigInvalid, c.Device.Loader)
	}
	return nil
}

// Encode renders the config back to TOML, used by the demo to print the
// effective settings.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
