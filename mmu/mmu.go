// Package mmu translates VR4300 virtual addresses into physical addresses.
//
// The 32-bit compatibility address space is split into segments by bits
// [31:29] of the (sign-extended) virtual address. Only kseg1, the unmapped
// and uncached window used during boot, is translated. Every other segment
// fails with an *UnsupportedSegmentError rather than falling back to an
// identity mapping.
package mmu

import "fmt"

// Segment identifies a region of the 32-bit compatibility address space.
type Segment uint8

// Address space segments, in bits [31:29] order.
const (
	SegmentKUSEG Segment = iota // 0x0000_0000, TLB mapped
	SegmentKSEG0                // 0x8000_0000, unmapped, cached
	SegmentKSEG1                // 0xA000_0000, unmapped, uncached
	SegmentKSSEG                // 0xC000_0000, TLB mapped
	SegmentKSEG3                // 0xE000_0000, TLB mapped
)

func (s Segment) String() string {
	switch s {
	case SegmentKUSEG:
		return "kuseg"
	case SegmentKSEG0:
		return "kseg0"
	case SegmentKSEG1:
		return "kseg1"
	case SegmentKSSEG:
		return "ksseg"
	case SegmentKSEG3:
		return "kseg3"
	default:
		return fmt.Sprintf("Segment(%d)", uint8(s))
	}
}

// KSEG1Base is the sign-extended base of kseg1.
const KSEG1Base uint64 = 0xFFFF_FFFF_A000_0000

// ResetVector is the virtual address the CPU fetches from after power-on
// reset. It lies in kseg1 and maps onto the PIF boot ROM.
const ResetVector uint64 = 0xFFFF_FFFF_BFC0_0000

// Classify returns the segment selected by bits [31:29] of vaddr.
func Classify(vaddr uint64) Segment {
	switch (vaddr >> 29) & 0b111 {
	case 0b000, 0b001, 0b010, 0b011:
		return SegmentKUSEG
	case 0b100:
		return SegmentKSEG0
	case 0b101:
		return SegmentKSEG1
	case 0b110:
		return SegmentKSSEG
	default:
		return SegmentKSEG3
	}
}

// Mapping is the result of a successful translation.
type Mapping struct {
	Physical  uint32
	Segment   Segment
	Cacheable bool
}

// UnsupportedSegmentError is returned for virtual addresses outside the
// translated segments.
type UnsupportedSegmentError struct {
	VAddr   uint64
	Segment Segment
}

func (e *UnsupportedSegmentError) Error() string {
	return fmt.Sprintf("unsupported virtual address segment %s: 0x%016X",
		e.Segment, e.VAddr)
}

// Translator maps virtual addresses to physical addresses.
type Translator struct{}

// NewTranslator creates a new Translator.
func NewTranslator() *Translator {
	return &Translator{}
}

// Lookup translates vaddr and reports the segment and its cacheability.
func (t *Translator) Lookup(vaddr uint64) (Mapping, error) {
	segment := Classify(vaddr)

	switch segment {
	case SegmentKSEG1:
		return Mapping{
			Physical:  uint32(vaddr - KSEG1Base),
			Segment:   SegmentKSEG1,
			Cacheable: false,
		}, nil
	default:
		return Mapping{}, &UnsupportedSegmentError{VAddr: vaddr, Segment: segment}
	}
}

// Translate returns the physical address for vaddr.
func (t *Translator) Translate(vaddr uint64) (uint32, error) {
	m, err := t.Lookup(vaddr)
	if err != nil {
		return 0, err
	}
	return m.Physical, nil
}
