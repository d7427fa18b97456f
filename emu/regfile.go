// Package emu provides functional VR4300 emulation.
package emu

// NumGPRs is the number of general-purpose registers.
const NumGPRs = 32

// RegFile represents the VR4300 register file.
// It contains 32 general-purpose registers, 32 floating-point registers,
// the multiply/divide result pair HI/LO and the program counter.
type RegFile struct {
	// gpr holds general-purpose registers $0-$31.
	// gpr[0] is hardwired to zero and never written.
	gpr [NumGPRs]uint64

	// FPR holds the CP1 floating-point registers.
	FPR [32]float64

	// PC is the program counter. It carries the sign-extended virtual
	// address of the next instruction.
	PC uint64

	// HI and LO hold multiply/divide results.
	HI uint64
	LO uint64

	// LLBit is the load-linked flag.
	LLBit bool

	// FCR0 is the CP1 implementation/revision register.
	FCR0 uint32
	// FCR31 is the CP1 control/status register.
	FCR31 uint32
}

// ReadGPR reads a general-purpose register. Register 0 always returns 0.
// Indices beyond 31 are folded onto the 5-bit register number.
func (r *RegFile) ReadGPR(index uint8) uint64 {
	index &= NumGPRs - 1
	if index == 0 {
		return 0
	}
	return r.gpr[index]
}

// WriteGPR writes a general-purpose register. Writes to register 0 are
// discarded.
func (r *RegFile) WriteGPR(index uint8, value uint64) {
	index &= NumGPRs - 1
	if index == 0 {
		return
	}
	r.gpr[index] = value
}
