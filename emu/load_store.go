package emu

import "github.com/sarchlab/n64sim/insts"

// LoadStoreUnit implements the word load and store operations.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		memory:  memory,
	}
}

// EffectiveAddress returns rs + sign_extend(offset).
func (lsu *LoadStoreUnit) EffectiveAddress(inst *insts.Instruction) uint64 {
	return lsu.regFile.ReadGPR(inst.Rs) + inst.ImmSignExt()
}

// LW performs a 32-bit load with sign extension: rt = sign_extend(mem[rs + offset])
func (lsu *LoadStoreUnit) LW(inst *insts.Instruction) error {
	value, err := lsu.memory.ReadWord(lsu.EffectiveAddress(inst))
	if err != nil {
		return err
	}

	lsu.regFile.WriteGPR(inst.Rt, uint64(int64(int32(value))))
	return nil
}

// SW performs a 32-bit store of the low word of rt: mem[rs + offset] = rt[31:0]
func (lsu *LoadStoreUnit) SW(inst *insts.Instruction) error {
	value := uint32(lsu.regFile.ReadGPR(inst.Rt))
	return lsu.memory.WriteWord(lsu.EffectiveAddress(inst), value)
}
