// Package emu provides functional VR4300 emulation.
//
// A CPU fetches words through the kseg1 translation, decodes them and
// dispatches them to its execution units. Faults are returned from Step
// wrapped with the faulting PC; the CPU never recovers from them.
package emu

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/n64sim/cache"
	"github.com/sarchlab/n64sim/cp0"
	"github.com/sarchlab/n64sim/insts"
	"github.com/sarchlab/n64sim/mmu"
)

// ErrMaxInstructions is returned once the instruction budget is used up.
var ErrMaxInstructions = errors.New("max instructions reached")

// CPU executes VR4300 instructions functionally.
type CPU struct {
	regFile    *RegFile
	cp0        *cp0.CP0
	decoder    *insts.Decoder
	translator *mmu.Translator
	bus        Bus

	icache *cache.Cache
	dcache *cache.Cache

	fetchMemory *Memory
	dataMemory  *Memory

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	logger logrus.FieldLogger

	// Set by a taken BEQL. The PC already holds the branch target and the
	// next Step executes the delay-slot instruction found there.
	delaySlotPending bool

	// Execution state
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// CPUOption is a functional option for configuring the CPU.
type CPUOption func(*CPU)

// WithLogger sets the logger used for step tracing.
func WithLogger(logger logrus.FieldLogger) CPUOption {
	return func(c *CPU) {
		c.logger = logger
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) CPUOption {
	return func(c *CPU) {
		c.maxInstructions = max
	}
}

// WithICache attaches an instruction cache used for cacheable fetches.
func WithICache(icache *cache.Cache) CPUOption {
	return func(c *CPU) {
		c.icache = icache
	}
}

// WithDCache attaches a data cache used for cacheable loads and stores.
func WithDCache(dcache *cache.Cache) CPUOption {
	return func(c *CPU) {
		c.dcache = dcache
	}
}

// NewCPU creates a CPU attached to bus. All registers start at zero;
// PowerOnReset must be called before the first Step.
func NewCPU(bus Bus, opts ...CPUOption) *CPU {
	c := &CPU{
		regFile:    &RegFile{},
		cp0:        cp0.New(),
		decoder:    insts.NewDecoder(),
		translator: mmu.NewTranslator(),
		bus:        bus,
		logger:     logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.fetchMemory = NewMemory(c.translator, bus, c.icache)
	c.dataMemory = NewMemory(c.translator, bus, c.dcache)

	c.alu = NewALU(c.regFile)
	c.lsu = NewLoadStoreUnit(c.regFile, c.dataMemory)
	c.branchUnit = NewBranchUnit(c.regFile)

	return c
}

// RegFile returns the CPU's register file.
func (c *CPU) RegFile() *RegFile {
	return c.regFile
}

// CP0 returns the system control coprocessor.
func (c *CPU) CP0() *cp0.CP0 {
	return c.cp0
}

// InstructionCount returns the number of instructions executed.
func (c *CPU) InstructionCount() uint64 {
	return c.instructionCount
}

// DelaySlotPending reports whether the next Step executes the delay-slot
// instruction of a taken likely branch.
func (c *CPU) DelaySlotPending() bool {
	return c.delaySlotPending
}

// PowerOnReset points the PC at the reset vector and applies the CP0 cold
// reset defaults. General-purpose registers are left as they are.
func (c *CPU) PowerOnReset() {
	c.regFile.PC = mmu.ResetVector
	c.cp0.PowerOnReset()
	c.delaySlotPending = false
}

// Step executes a single instruction. On error the PC still addresses the
// faulting instruction.
func (c *CPU) Step() error {
	if c.maxInstructions > 0 && c.instructionCount >= c.maxInstructions {
		return ErrMaxInstructions
	}

	pc := c.regFile.PC

	// 1. Fetch
	word, err := c.fetchMemory.ReadWord(pc)
	if err != nil {
		return fmt.Errorf("fetch at PC=0x%016X: %w", pc, err)
	}

	// 2. Decode
	inst, err := c.decoder.Decode(word)
	if err != nil {
		return fmt.Errorf("decode at PC=0x%016X: %w", pc, err)
	}

	c.logger.WithFields(logrus.Fields{
		"pc":   fmt.Sprintf("0x%016X", pc),
		"word": fmt.Sprintf("0x%08X", word),
		"op":   inst.Op.String(),
	}).Debug("CPU Step")

	// 3. Execute
	// A likely branch in the delay slot may set the flag again.
	inDelaySlot := c.delaySlotPending
	c.delaySlotPending = false

	nextPC, err := c.execute(pc, inst)
	if err != nil {
		c.delaySlotPending = inDelaySlot
		return fmt.Errorf("execute %s at PC=0x%016X: %w", inst, pc, err)
	}

	c.regFile.PC = nextPC
	c.instructionCount++

	return nil
}

// Run executes instructions until a fault occurs or ctx is cancelled.
func (c *CPU) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.Step(); err != nil {
			return err
		}
	}
}

// execute dispatches a decoded instruction and returns the PC of the next
// instruction to fetch.
func (c *CPU) execute(pc uint64, inst *insts.Instruction) (uint64, error) {
	nextPC := pc + 4

	switch inst.Op {
	case insts.OpLUI:
		c.alu.LUI(inst)
	case insts.OpANDI:
		c.alu.ANDI(inst)
	case insts.OpORI:
		c.alu.ORI(inst)
	case insts.OpMTC0:
		data := c.regFile.ReadGPR(inst.Rt)
		c.logger.WithFields(logrus.Fields{
			"index": cp0.RegisterName(inst.Rd),
			"data":  fmt.Sprintf("0x%016X", data),
		}).Debug("CP0 write")
		if err := c.cp0.WriteReg(inst.Rd, data); err != nil {
			return 0, err
		}
	case insts.OpLW:
		if err := c.lsu.LW(inst); err != nil {
			return 0, err
		}
	case insts.OpSW:
		if err := c.lsu.SW(inst); err != nil {
			return 0, err
		}
	case insts.OpBEQL:
		// Not taken: the delay slot is annulled and the word after the
		// branch is not fetched by this step.
		if c.branchUnit.BEQL(inst) {
			c.delaySlotPending = true
			nextPC = c.branchUnit.Target(pc, inst)
		}
	case insts.OpUnknown:
		return 0, &insts.UnrecognizedInstructionError{Word: inst.Word}
	default:
		return 0, fmt.Errorf("unimplemented op %s", inst.Op)
	}

	return nextPC, nil
}
