package emu

import "github.com/sarchlab/n64sim/insts"

// BranchUnit evaluates branch conditions and targets.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// BEQL reports whether rs == rt over the full 64 bits.
func (b *BranchUnit) BEQL(inst *insts.Instruction) bool {
	return b.regFile.ReadGPR(inst.Rs) == b.regFile.ReadGPR(inst.Rt)
}

// Target returns the branch destination relative to the branch at pc:
// pc + (sign_extend(offset) << 2).
func (b *BranchUnit) Target(pc uint64, inst *insts.Instruction) uint64 {
	return pc + uint64(inst.Offset()<<2)
}
