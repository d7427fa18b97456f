package interconnect

import (
	"encoding/binary"
	"fmt"
)

// PIF boot ROM and RAM sizes.
const (
	PIFROMSize   = 2048  // size of a full PIF image
	PIFROMWindow = 0x7C0 // bytes of the image visible to the CPU
	PIFRAMSize   = 0x40
)

// PIF holds the boot ROM image and the 64 bytes of PIF RAM mapped right
// after it.
type PIF struct {
	rom []byte
	ram [PIFRAMSize]byte
}

// NewPIF takes ownership of rom. The image must cover the CPU-visible window.
func NewPIF(rom []byte) (*PIF, error) {
	if len(rom) < PIFROMWindow || len(rom) > PIFROMSize {
		return nil, fmt.Errorf("PIF ROM must be between %d and %d bytes, got %d",
			PIFROMWindow, PIFROMSize, len(rom))
	}
	return &PIF{rom: rom}, nil
}

// ReadROM returns the big-endian word at offset into the boot ROM.
func (p *PIF) ReadROM(offset uint32) uint32 {
	return binary.BigEndian.Uint32(p.rom[offset:])
}

// ReadRAM returns the big-endian word at offset into PIF RAM.
func (p *PIF) ReadRAM(offset uint32) uint32 {
	return binary.BigEndian.Uint32(p.ram[offset:])
}

// WriteRAM stores value big-endian at offset into PIF RAM.
func (p *PIF) WriteRAM(offset, value uint32) {
	binary.BigEndian.PutUint32(p.ram[offset:], value)
}
