package interconnect

// Range is a contiguous window of the physical address space.
type Range struct {
	Start  uint32 // Start address
	Length uint32 // Length of the mapping in bytes
}

// NewRange creates a Range.
func NewRange(start, length uint32) Range {
	return Range{Start: start, Length: length}
}

// Contains reports whether addr is located inside this range.
func (r Range) Contains(addr uint32) bool {
	return addr >= r.Start && addr-r.Start < r.Length
}

// Offset returns the distance between addr and Start. It does not check that
// the range contains addr.
func (r Range) Offset(addr uint32) uint32 {
	return addr - r.Start
}

// End returns the first address past the range.
func (r Range) End() uint32 {
	return r.Start + r.Length
}

// Physical memory map.
var (
	RDRAMRange     = NewRange(0x0000_0000, RDRAMSize)
	RSPStatusRange = NewRange(0x0404_0010, 4)
	PIFROMRange    = NewRange(0x1FC0_0000, PIFROMWindow)
	PIFRAMRange    = NewRange(0x1FC0_07C0, PIFRAMSize)
)
