package emu

import "github.com/sarchlab/n64sim/insts"

// ALU implements the immediate arithmetic and logic operations.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// LUI loads the immediate into the upper half of the low word:
// rt = sign_extend(imm << 16)
func (a *ALU) LUI(inst *insts.Instruction) {
	value := int32(uint32(inst.Imm) << 16)
	a.regFile.WriteGPR(inst.Rt, uint64(int64(value)))
}

// ANDI performs a bitwise AND with the zero-extended immediate:
// rt = rs & zero_extend(imm)
func (a *ALU) ANDI(inst *insts.Instruction) {
	result := a.regFile.ReadGPR(inst.Rs) & inst.ImmZeroExt()
	a.regFile.WriteGPR(inst.Rt, result)
}

// ORI performs a bitwise OR with the zero-extended immediate:
// rt = rs | zero_extend(imm)
func (a *ALU) ORI(inst *insts.Instruction) {
	result := a.regFile.ReadGPR(inst.Rs) | inst.ImmZeroExt()
	a.regFile.WriteGPR(inst.Rt, result)
}
