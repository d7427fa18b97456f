// Package loader reads N64 boot images from disk.
//
// A PIF image is the raw boot ROM of the peripheral interface. A cartridge
// image comes in one of three byte orders, identified by the first word of
// its header, and is normalized to big-endian (.z64) order on load.
package loader

import (
	"fmt"
	"os"

	"github.com/sarchlab/n64sim/interconnect"
)

// LoadPIF reads a PIF boot ROM image from path.
func LoadPIF(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PIF image: %w", err)
	}

	if len(data) < interconnect.PIFROMWindow || len(data) > interconnect.PIFROMSize {
		return nil, fmt.Errorf("PIF image %s has %d bytes, expected %d to %d",
			path, len(data), interconnect.PIFROMWindow, interconnect.PIFROMSize)
	}

	return data, nil
}

// LoadCartridge reads a cartridge image from path, normalizes its byte order
// and parses its header.
func LoadCartridge(path string) (*Cartridge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cartridge image: %w", err)
	}

	cart, err := ParseCartridge(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cart, nil
}
