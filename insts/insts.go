// Package insts provides VR4300 (MIPS III) instruction definitions and decoding.
//
// This package implements decoding of 32-bit MIPS machine words into structured
// instruction representations. It supports:
//   - Immediate ALU: LUI, ANDI, ORI
//   - Coprocessor 0: MTC0
//   - Load/Store: LW, SW
//   - Branch likely: BEQL
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode(0x3C081234) // LUI $t0, 0x1234
//	fmt.Printf("Op: %v, Rt: %d, Imm: %#x\n", inst.Op, inst.Rt, inst.Imm)
package insts
