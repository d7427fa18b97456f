package loader

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// ByteOrder identifies the on-disk layout of a cartridge image.
type ByteOrder uint8

// Cartridge image byte orders.
const (
	// OrderBigEndian is the native layout (.z64).
	OrderBigEndian ByteOrder = iota
	// OrderByteSwapped swaps each pair of bytes (.v64).
	OrderByteSwapped
	// OrderLittleEndian reverses each word (.n64).
	OrderLittleEndian
)

func (o ByteOrder) String() string {
	switch o {
	case OrderBigEndian:
		return "z64"
	case OrderByteSwapped:
		return "v64"
	case OrderLittleEndian:
		return "n64"
	default:
		return "unknown"
	}
}

// HeaderSize is the size of the cartridge header in bytes.
const HeaderSize = 0x40

// Header field offsets.
const (
	offsetPIConfig  = 0x00
	offsetClockRate = 0x04
	offsetEntry     = 0x08
	offsetRelease   = 0x0C
	offsetCRC1      = 0x10
	offsetCRC2      = 0x14
	offsetTitle     = 0x20
	titleLength     = 20
	offsetGameCode  = 0x3B
	gameCodeLength  = 4
	offsetVersion   = 0x3F
)

// PI domain 1 configuration word as stored in each byte order.
const (
	magicBigEndian    uint32 = 0x8037_1240
	magicByteSwapped  uint32 = 0x3780_4012
	magicLittleEndian uint32 = 0x4012_3780
)

// Header is the parsed cartridge header.
type Header struct {
	PIConfig  uint32
	ClockRate uint32
	// EntryPoint is the virtual address the boot code jumps to.
	EntryPoint uint32
	Release    uint32
	CRC1       uint32
	CRC2       uint32
	Title      string
	GameCode   string
	Version    uint8
}

// Cartridge is a cartridge image in big-endian order.
type Cartridge struct {
	Header Header
	// Order is the byte order the image was stored in.
	Order ByteOrder
	// ROM holds the normalized image, header included.
	ROM []byte
}

// UnknownFormatError is returned when the first header word matches none of
// the known byte orders.
type UnknownFormatError struct {
	Magic uint32
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown cartridge format (first word 0x%08X)", e.Magic)
}

// DetectByteOrder identifies the byte order of an image from its first word.
func DetectByteOrder(data []byte) (ByteOrder, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("cartridge image too short: %d bytes", len(data))
	}

	magic := binary.BigEndian.Uint32(data)
	switch magic {
	case magicBigEndian:
		return OrderBigEndian, nil
	case magicByteSwapped:
		return OrderByteSwapped, nil
	case magicLittleEndian:
		return OrderLittleEndian, nil
	default:
		return 0, &UnknownFormatError{Magic: magic}
	}
}

// Normalize returns a copy of data converted from order to big-endian.
// Trailing bytes that do not fill a whole unit are copied unchanged.
func Normalize(data []byte, order ByteOrder) []byte {
	out := make([]byte, len(data))
	copy(out, data)

	switch order {
	case OrderByteSwapped:
		for i := 0; i+1 < len(out); i += 2 {
			out[i], out[i+1] = out[i+1], out[i]
		}
	case OrderLittleEndian:
		for i := 0; i+3 < len(out); i += 4 {
			out[i], out[i+1], out[i+2], out[i+3] = out[i+3], out[i+2], out[i+1], out[i]
		}
	}

	return out
}

// ParseCartridge normalizes an in-memory image and parses its header.
func ParseCartridge(data []byte) (*Cartridge, error) {
	order, err := DetectByteOrder(data)
	if err != nil {
		return nil, err
	}

	if len(data) < HeaderSize {
		return nil, fmt.Errorf("cartridge image too short for header: %d bytes", len(data))
	}

	rom := Normalize(data, order)

	return &Cartridge{
		Header: parseHeader(rom[:HeaderSize]),
		Order:  order,
		ROM:    rom,
	}, nil
}

func parseHeader(h []byte) Header {
	be := binary.BigEndian

	return Header{
		PIConfig:   be.Uint32(h[offsetPIConfig:]),
		ClockRate:  be.Uint32(h[offsetClockRate:]),
		EntryPoint: be.Uint32(h[offsetEntry:]),
		Release:    be.Uint32(h[offsetRelease:]),
		CRC1:       be.Uint32(h[offsetCRC1:]),
		CRC2:       be.Uint32(h[offsetCRC2:]),
		Title:      headerString(h[offsetTitle : offsetTitle+titleLength]),
		GameCode:   headerString(h[offsetGameCode : offsetGameCode+gameCodeLength]),
		Version:    h[offsetVersion],
	}
}

// headerString trims the space and NUL padding of a header text field.
func headerString(b []byte) string {
	return strings.TrimRight(string(b), " \x00")
}
