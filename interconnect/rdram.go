package interconnect

// RDRAMSize is the logical capacity of the base RDRAM in bytes.
const RDRAMSize = 4 * 1024 * 1024

// rdramByteMask selects the CPU-visible byte of a cell. Bit 8 is the ninth
// RDRAM bit, which only the RDP uses.
const rdramByteMask = 0x00FF

// RDRAM stores one 9-bit RDRAM byte per 16-bit cell.
type RDRAM struct {
	cells []uint16
}

// NewRDRAM allocates a zeroed RDRAM.
func NewRDRAM() *RDRAM {
	return &RDRAM{cells: make([]uint16, RDRAMSize)}
}

// ReadWord returns the big-endian word at offset.
func (r *RDRAM) ReadWord(offset uint32) uint32 {
	c := r.cells[offset : offset+4]
	return uint32(c[0]&rdramByteMask)<<24 |
		uint32(c[1]&rdramByteMask)<<16 |
		uint32(c[2]&rdramByteMask)<<8 |
		uint32(c[3]&rdramByteMask)
}

// WriteWord stores value big-endian at offset. The ninth bit of each cell is
// preserved.
func (r *RDRAM) WriteWord(offset, value uint32) {
	c := r.cells[offset : offset+4]
	for i := range c {
		b := uint16(value>>(24-8*i)) & rdramByteMask
		c[i] = c[i]&^rdramByteMask | b
	}
}
