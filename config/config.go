// Package config provides the JSON machine configuration of the simulator.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/n64sim/cache"
)

// CacheConfig describes one primary cache.
type CacheConfig struct {
	// Enabled attaches the cache to the CPU.
	Enabled bool `json:"enabled"`

	// Size in bytes.
	Size int `json:"size"`

	// Associativity (number of ways).
	Associativity int `json:"associativity"`

	// BlockSize in bytes (cache line size).
	BlockSize int `json:"block_size"`
}

// Geometry returns the cache geometry for the cache package.
func (c CacheConfig) Geometry() cache.Config {
	return cache.Config{
		Size:          c.Size,
		Associativity: c.Associativity,
		BlockSize:     c.BlockSize,
	}
}

func (c CacheConfig) validate(name string) error {
	if !c.Enabled {
		return nil
	}
	if c.Size <= 0 || c.Associativity <= 0 || c.BlockSize <= 0 {
		return fmt.Errorf("%s: size, associativity and block_size must be > 0", name)
	}
	if c.BlockSize%4 != 0 {
		return fmt.Errorf("%s: block_size must be a multiple of 4", name)
	}
	if c.Size%(c.Associativity*c.BlockSize) != 0 {
		return fmt.Errorf("%s: size must be a multiple of associativity * block_size", name)
	}
	return nil
}

// MachineConfig holds the settings of one simulation run.
type MachineConfig struct {
	// PIFROMPath is the path of the PIF boot ROM image.
	PIFROMPath string `json:"pif_rom_path"`

	// CartROMPath is the path of the cartridge image. Optional.
	CartROMPath string `json:"cart_rom_path"`

	// MaxInstructions limits the run. 0 means no limit.
	MaxInstructions uint64 `json:"max_instructions"`

	// LogLevel is a logrus level name.
	LogLevel string `json:"log_level"`

	// Trace logs every executed instruction.
	Trace bool `json:"trace"`

	ICache CacheConfig `json:"icache"`
	DCache CacheConfig `json:"dcache"`
}

// DefaultMachineConfig returns the default configuration: VR4300 cache
// geometry with both caches attached, info logging and no instruction limit.
func DefaultMachineConfig() *MachineConfig {
	icache := cache.ICacheConfig()
	dcache := cache.DCacheConfig()

	return &MachineConfig{
		PIFROMPath:      "pifdata.bin",
		MaxInstructions: 0,
		LogLevel:        "info",
		ICache: CacheConfig{
			Enabled:       true,
			Size:          icache.Size,
			Associativity: icache.Associativity,
			BlockSize:     icache.BlockSize,
		},
		DCache: CacheConfig{
			Enabled:       true,
			Size:          dcache.Size,
			Associativity: dcache.Associativity,
			BlockSize:     dcache.BlockSize,
		},
	}
}

// LoadConfig loads a machine configuration from a JSON file. Fields missing
// from the file keep their defaults.
func LoadConfig(path string) (*MachineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read machine config file: %w", err)
	}

	config := DefaultMachineConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse machine config: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to a JSON file.
func (c *MachineConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize machine config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write machine config file: %w", err)
	}

	return nil
}

// Level returns the effective log level. Trace raises it to at least debug.
func (c *MachineConfig) Level() (logrus.Level, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}

	if c.Trace && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}

	return level, nil
}

// Validate checks that the configuration is usable.
func (c *MachineConfig) Validate() error {
	if c.PIFROMPath == "" {
		return fmt.Errorf("pif_rom_path must be set")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if err := c.ICache.validate("icache"); err != nil {
		return err
	}
	if err := c.DCache.validate("dcache"); err != nil {
		return err
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *MachineConfig) Clone() *MachineConfig {
	clone := *c
	return &clone
}
