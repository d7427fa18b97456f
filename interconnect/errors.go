package interconnect

import "fmt"

// UnmappedAddressError is returned when a physical address matches no
// memory region or register.
type UnmappedAddressError struct {
	Addr  uint32
	Write bool
}

func (e *UnmappedAddressError) Error() string {
	access := "read"
	if e.Write {
		access = "write"
	}
	return fmt.Sprintf("unrecognized physical address 0x%08X (%s)", e.Addr, access)
}

// ReadOnlyError is returned for writes to a read-only region.
type ReadOnlyError struct {
	Addr   uint32
	Region Region
}

func (e *ReadOnlyError) Error() string {
	return fmt.Sprintf("write to read-only %s at 0x%08X", e.Region, e.Addr)
}

// MisalignedAddressError is returned for word accesses that are not aligned
// to four bytes.
type MisalignedAddressError struct {
	Addr uint32
}

func (e *MisalignedAddressError) Error() string {
	return fmt.Sprintf("misaligned word access at 0x%08X", e.Addr)
}
