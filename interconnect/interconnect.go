// Package interconnect provides the N64 physical memory map.
//
// The Interconnect owns every memory region and peripheral register and
// dispatches each physical address to exactly one of them. All word accesses
// are big-endian. Addresses that match no region fail with an
// *UnmappedAddressError.
package interconnect

// Region names a dispatch target.
type Region uint8

// Dispatch targets.
const (
	RegionRDRAM Region = iota
	RegionRSPStatus
	RegionPIFROM
	RegionPIFRAM
)

func (r Region) String() string {
	switch r {
	case RegionRDRAM:
		return "RDRAM"
	case RegionRSPStatus:
		return "SP_STATUS"
	case RegionPIFROM:
		return "PIF ROM"
	case RegionPIFRAM:
		return "PIF RAM"
	default:
		return "unknown"
	}
}

// AccessCounts counts the word accesses to one region.
type AccessCounts struct {
	Reads  uint64
	Writes uint64
}

// Statistics holds per-region access counts.
type Statistics struct {
	RDRAM     AccessCounts
	RSPStatus AccessCounts
	PIFROM    AccessCounts
	PIFRAM    AccessCounts
}

// Interconnect dispatches physical addresses to memory and registers.
type Interconnect struct {
	pif   *PIF
	rdram *RDRAM
	rsp   *RSP

	stats Statistics
}

// New creates an Interconnect that takes ownership of the PIF ROM image.
// RDRAM is zeroed and the RSP starts in its power-on state.
func New(pifROM []byte) (*Interconnect, error) {
	pif, err := NewPIF(pifROM)
	if err != nil {
		return nil, err
	}

	return &Interconnect{
		pif:   pif,
		rdram: NewRDRAM(),
		rsp:   NewRSP(),
	}, nil
}

// Stats returns the access counts.
func (ic *Interconnect) Stats() Statistics {
	return ic.stats
}

// ResetStats clears the access counts.
func (ic *Interconnect) ResetStats() {
	ic.stats = Statistics{}
}

// RSP returns the signal processor register block.
func (ic *Interconnect) RSP() *RSP {
	return ic.rsp
}

// ReadWord returns the big-endian word at addr.
func (ic *Interconnect) ReadWord(addr uint32) (uint32, error) {
	if addr&0b11 != 0 {
		return 0, &MisalignedAddressError{Addr: addr}
	}

	switch {
	case PIFROMRange.Contains(addr):
		ic.stats.PIFROM.Reads++
		return ic.pif.ReadROM(PIFROMRange.Offset(addr)), nil
	case RSPStatusRange.Contains(addr):
		ic.stats.RSPStatus.Reads++
		return ic.rsp.ReadStatus(), nil
	case PIFRAMRange.Contains(addr):
		ic.stats.PIFRAM.Reads++
		return ic.pif.ReadRAM(PIFRAMRange.Offset(addr)), nil
	case RDRAMRange.Contains(addr):
		ic.stats.RDRAM.Reads++
		return ic.rdram.ReadWord(RDRAMRange.Offset(addr)), nil
	default:
		return 0, &UnmappedAddressError{Addr: addr}
	}
}

// WriteWord stores value big-endian at addr, using the same address matching
// as ReadWord.
func (ic *Interconnect) WriteWord(addr, value uint32) error {
	if addr&0b11 != 0 {
		return &MisalignedAddressError{Addr: addr}
	}

	switch {
	case PIFROMRange.Contains(addr):
		return &ReadOnlyError{Addr: addr, Region: RegionPIFROM}
	case RSPStatusRange.Contains(addr):
		ic.stats.RSPStatus.Writes++
		ic.rsp.WriteStatus(value)
	case PIFRAMRange.Contains(addr):
		ic.stats.PIFRAM.Writes++
		ic.pif.WriteRAM(PIFRAMRange.Offset(addr), value)
	case RDRAMRange.Contains(addr):
		ic.stats.RDRAM.Writes++
		ic.rdram.WriteWord(RDRAMRange.Offset(addr), value)
	default:
		return &UnmappedAddressError{Addr: addr, Write: true}
	}

	return nil
}
