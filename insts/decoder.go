// Package insts provides VR4300 (MIPS III) instruction definitions and decoding.
package insts

import "fmt"

// Op represents a recognized VR4300 mnemonic.
type Op uint8

// VR4300 opcodes supported by the execution core.
const (
	OpUnknown Op = iota
	OpLUI
	OpANDI
	OpORI
	OpMTC0
	OpLW
	OpSW
	OpBEQL
)

var opNames = [...]string{
	OpUnknown: "UNKNOWN",
	OpLUI:     "LUI",
	OpANDI:    "ANDI",
	OpORI:     "ORI",
	OpMTC0:    "MTC0",
	OpLW:      "LW",
	OpSW:      "SW",
	OpBEQL:    "BEQL",
}

// String returns the assembler mnemonic of the opcode.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Primary opcode field values, bits [31:26].
const (
	opcodeCOP0 = 0b010000
	opcodeANDI = 0b001100
	opcodeORI  = 0b001101
	opcodeLUI  = 0b001111
	opcodeBEQL = 0b010100
	opcodeLW   = 0b100011
	opcodeSW   = 0b101011
)

// cop0MT is the rs sub-opcode selecting MTC0 inside the COP0 opcode space.
const cop0MT = 0b00100

// Instruction represents a decoded VR4300 instruction.
type Instruction struct {
	Word uint32 // Raw instruction word
	Op   Op     // Operation code

	Rs  uint8  // Source register, bits [25:21]
	Rt  uint8  // Target register, bits [20:16]
	Rd  uint8  // Destination register, bits [15:11]
	Imm uint16 // Immediate or offset, bits [15:0]
}

// ImmZeroExt returns the immediate zero-extended to 64 bits, as used by the
// logical immediate instructions.
func (i *Instruction) ImmZeroExt() uint64 {
	return uint64(i.Imm)
}

// ImmSignExt returns the immediate sign-extended to 64 bits.
func (i *Instruction) ImmSignExt() uint64 {
	return uint64(int64(int16(i.Imm)))
}

// Offset returns the 16-bit offset field as a signed value.
func (i *Instruction) Offset() int64 {
	return int64(int16(i.Imm))
}

// String renders the instruction word and mnemonic.
func (i *Instruction) String() string {
	return fmt.Sprintf("%s(0x%08X)", i.Op, i.Word)
}

// UnrecognizedInstructionError is returned when the opcode field of a word
// matches no supported mnemonic.
type UnrecognizedInstructionError struct {
	Word uint32
}

func (e *UnrecognizedInstructionError) Error() string {
	return fmt.Sprintf("unrecognized instruction 0x%08X (opcode 0b%06b)",
		e.Word, Opcode(e.Word))
}

// Opcode returns bits [31:26] of a word.
func Opcode(word uint32) uint8 {
	return uint8((word >> 26) & 0x3F)
}

// Rs returns the source register index in bits [25:21].
func Rs(word uint32) uint8 {
	return uint8((word >> 21) & 0x1F)
}

// Rt returns the target register index in bits [20:16].
func Rt(word uint32) uint8 {
	return uint8((word >> 16) & 0x1F)
}

// Rd returns the destination register index in bits [15:11].
func Rd(word uint32) uint8 {
	return uint8((word >> 11) & 0x1F)
}

// Imm returns the immediate value in bits [15:0].
func Imm(word uint32) uint16 {
	return uint16(word & 0xFFFF)
}

// Decoder decodes VR4300 machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new VR4300 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit instruction word.
//
// The operand fields are always populated. If the opcode is not recognized,
// the returned instruction has Op == OpUnknown and the error is an
// *UnrecognizedInstructionError naming the word.
func (d *Decoder) Decode(word uint32) (*Instruction, error) {
	inst := &Instruction{
		Word: word,
		Op:   OpUnknown,
		Rs:   Rs(word),
		Rt:   Rt(word),
		Rd:   Rd(word),
		Imm:  Imm(word),
	}

	inst.Op = d.resolveOp(word)
	if inst.Op == OpUnknown {
		return inst, &UnrecognizedInstructionError{Word: word}
	}

	return inst, nil
}

// resolveOp maps the opcode field (and, for COP0, the rs sub-opcode) onto
// the closed Op set.
func (d *Decoder) resolveOp(word uint32) Op {
	switch Opcode(word) {
	case opcodeLUI:
		return OpLUI
	case opcodeANDI:
		return OpANDI
	case opcodeORI:
		return OpORI
	case opcodeCOP0:
		if Rs(word) == cop0MT {
			return OpMTC0
		}
		return OpUnknown
	case opcodeLW:
		return OpLW
	case opcodeSW:
		return OpSW
	case opcodeBEQL:
		return OpBEQL
	default:
		return OpUnknown
	}
}
