package emu_test

import (
	"context"
	"encoding/binary"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sarchlab/n64sim/cache"
	"github.com/sarchlab/n64sim/cp0"
	"github.com/sarchlab/n64sim/emu"
	"github.com/sarchlab/n64sim/insts"
	"github.com/sarchlab/n64sim/interconnect"
	"github.com/sarchlab/n64sim/mmu"
)

const (
	// programBase is where test programs are placed in RDRAM.
	programBase uint32 = 0x1000
	// programPC is programBase seen through kseg1.
	programPC uint64 = mmu.KSEG1Base + uint64(programBase)
)

// countingBus records every physical address read through it.
type countingBus struct {
	emu.Bus
	reads map[uint32]int
}

func (b *countingBus) ReadWord(addr uint32) (uint32, error) {
	b.reads[addr]++
	return b.Bus.ReadWord(addr)
}

func newInterconnect(pifWords ...uint32) *interconnect.Interconnect {
	rom := make([]byte, interconnect.PIFROMSize)
	for i, w := range pifWords {
		binary.BigEndian.PutUint32(rom[i*4:], w)
	}

	ic, err := interconnect.New(rom)
	Expect(err).NotTo(HaveOccurred())
	return ic
}

func loadProgram(ic *interconnect.Interconnect, words ...uint32) {
	for i, w := range words {
		Expect(ic.WriteWord(programBase+uint32(i*4), w)).To(Succeed())
	}
}

var _ = Describe("CPU", func() {
	var (
		ic  *interconnect.Interconnect
		cpu *emu.CPU
	)

	BeforeEach(func() {
		ic = newInterconnect()
		cpu = emu.NewCPU(ic)
		cpu.RegFile().PC = programPC
	})

	Describe("NewCPU", func() {
		It("should start with every register zero", func() {
			c := emu.NewCPU(ic)

			Expect(c.RegFile().PC).To(BeZero())
			for i := uint8(0); i < emu.NumGPRs; i++ {
				Expect(c.RegFile().ReadGPR(i)).To(BeZero())
			}
			Expect(c.CP0().Status()).To(Equal(cp0.Status{}))
			Expect(c.InstructionCount()).To(BeZero())
		})
	})

	Describe("PowerOnReset", func() {
		It("should point the PC at the reset vector and reset CP0", func() {
			cpu.PowerOnReset()

			Expect(cpu.RegFile().PC).To(Equal(uint64(0xFFFF_FFFF_BFC0_0000)))
			Expect(cpu.CP0().Status().ErrorLevel).To(BeTrue())
			Expect(cpu.CP0().Config().Endianness).To(Equal(cp0.BigEndian))
		})

		It("should execute the first PIF ROM instruction", func() {
			// LUI $t0, 0x1234
			ic = newInterconnect(0x3C081234)
			cpu = emu.NewCPU(ic)
			cpu.PowerOnReset()

			Expect(cpu.Step()).To(Succeed())

			Expect(cpu.RegFile().ReadGPR(8)).To(Equal(uint64(0x1234_0000)))
			Expect(cpu.RegFile().PC).To(Equal(mmu.ResetVector + 4))
			Expect(ic.Stats().PIFROM.Reads).To(Equal(uint64(1)))
		})
	})

	Describe("ALU instructions", func() {
		It("should execute LUI", func() {
			loadProgram(ic, 0x3C081234) // LUI $t0, 0x1234

			Expect(cpu.Step()).To(Succeed())

			Expect(cpu.RegFile().ReadGPR(8)).To(Equal(uint64(0x1234_0000)))
			Expect(cpu.RegFile().PC).To(Equal(programPC + 4))
		})

		It("should sign-extend LUI results", func() {
			loadProgram(ic, 0x3C088000) // LUI $t0, 0x8000

			Expect(cpu.Step()).To(Succeed())

			Expect(cpu.RegFile().ReadGPR(8)).To(Equal(uint64(0xFFFF_FFFF_8000_0000)))
		})

		It("should execute ORI with a zero-extended immediate", func() {
			loadProgram(ic,
				0x3C081234, // LUI $t0, 0x1234
				0x3508F678, // ORI $t0, $t0, 0xF678
			)

			Expect(cpu.Step()).To(Succeed())
			Expect(cpu.Step()).To(Succeed())

			Expect(cpu.RegFile().ReadGPR(8)).To(Equal(uint64(0x1234_F678)))
		})

		It("should execute ANDI with a zero-extended immediate", func() {
			cpu.RegFile().WriteGPR(8, 0xFFFF_FFFF_FFFF_FFFF)
			loadProgram(ic, 0x3109F0FF) // ANDI $t1, $t0, 0xF0FF

			Expect(cpu.Step()).To(Succeed())

			Expect(cpu.RegFile().ReadGPR(9)).To(Equal(uint64(0xF0FF)))
		})

		It("should discard writes to $zero", func() {
			loadProgram(ic, 0x3C001234) // LUI $zero, 0x1234

			Expect(cpu.Step()).To(Succeed())

			Expect(cpu.RegFile().ReadGPR(0)).To(BeZero())
		})
	})

	Describe("MTC0", func() {
		It("should write Status from a GPR", func() {
			cpu.RegFile().WriteGPR(8, 0x3400_0000)
			loadProgram(ic, 0x40886000) // MTC0 $t0, $12

			Expect(cpu.Step()).To(Succeed())

			status := cpu.CP0().Status()
			Expect(status.CoprocessorUsable).To(Equal([4]bool{true, true, false, false}))
			Expect(status.AdditionalFPRegs).To(BeTrue())
		})

		It("should write Config from a GPR", func() {
			cpu.RegFile().WriteGPR(8, 0x0006_E463)
			loadProgram(ic, 0x40888000) // MTC0 $t0, $16

			Expect(cpu.Step()).To(Succeed())

			Expect(cpu.CP0().Config().K0).To(Equal(uint8(3)))
		})

		It("should fault on unimplemented registers", func() {
			cpu.RegFile().WriteGPR(8, 0xDEAD_BEEF)
			loadProgram(ic, 0x40886800) // MTC0 $t0, $13

			err := cpu.Step()

			var unimplemented *cp0.UnimplementedRegisterError
			Expect(errors.As(err, &unimplemented)).To(BeTrue())
			Expect(unimplemented.Index).To(Equal(uint8(13)))
			Expect(unimplemented.Data).To(Equal(uint64(0xDEAD_BEEF)))
			Expect(cpu.RegFile().PC).To(Equal(programPC))
		})
	})

	Describe("Load/Store instructions", func() {
		BeforeEach(func() {
			cpu.RegFile().WriteGPR(9, mmu.KSEG1Base+0x2000)
		})

		It("should execute LW with sign extension", func() {
			Expect(ic.WriteWord(0x2010, 0x8000_0001)).To(Succeed())
			loadProgram(ic, 0x8D280010) // LW $t0, 0x10($t1)

			Expect(cpu.Step()).To(Succeed())

			Expect(cpu.RegFile().ReadGPR(8)).To(Equal(uint64(0xFFFF_FFFF_8000_0001)))
		})

		It("should execute LW with a negative offset", func() {
			Expect(ic.WriteWord(0x1FFC, 0x0000_CAFE)).To(Succeed())
			loadProgram(ic, 0x8D28FFFC) // LW $t0, -4($t1)

			Expect(cpu.Step()).To(Succeed())

			Expect(cpu.RegFile().ReadGPR(8)).To(Equal(uint64(0xCAFE)))
		})

		It("should execute SW with the low word of rt", func() {
			cpu.RegFile().WriteGPR(8, 0xFFFF_FFFF_1234_5678)
			loadProgram(ic, 0xAD280004) // SW $t0, 4($t1)

			Expect(cpu.Step()).To(Succeed())

			Expect(ic.ReadWord(0x2004)).To(Equal(uint32(0x1234_5678)))
		})

		It("should fault on a store to the PIF ROM", func() {
			cpu.RegFile().WriteGPR(9, mmu.ResetVector)
			loadProgram(ic, 0xAD280004) // SW $t0, 4($t1)

			err := cpu.Step()

			var readOnly *interconnect.ReadOnlyError
			Expect(errors.As(err, &readOnly)).To(BeTrue())
			Expect(readOnly.Addr).To(Equal(uint32(0x1FC0_0004)))
		})
	})

	Describe("BEQL", func() {
		It("should run the target as the delay slot when taken", func() {
			loadProgram(ic,
				0x50000001, // BEQL $zero, $zero, +1
				0x340A0001, // ORI $t2, $zero, 1  (target)
				0x340B0002, // ORI $t3, $zero, 2
			)

			Expect(cpu.Step()).To(Succeed())
			Expect(cpu.RegFile().PC).To(Equal(programPC + 4))
			Expect(cpu.DelaySlotPending()).To(BeTrue())

			Expect(cpu.Step()).To(Succeed())
			Expect(cpu.RegFile().ReadGPR(10)).To(Equal(uint64(1)))
			Expect(cpu.RegFile().PC).To(Equal(programPC + 8))
			Expect(cpu.DelaySlotPending()).To(BeFalse())
			Expect(cpu.InstructionCount()).To(Equal(uint64(2)))
		})

		It("should measure the target from the branch itself", func() {
			counting := &countingBus{Bus: ic, reads: map[uint32]int{}}
			cpu = emu.NewCPU(counting)
			cpu.RegFile().PC = programPC
			loadProgram(ic,
				0x50000002, // BEQL $zero, $zero, +2
				0x340A0001, // ORI $t2, $zero, 1  (skipped)
				0x340B0002, // ORI $t3, $zero, 2  (target)
			)

			Expect(cpu.Step()).To(Succeed())
			Expect(cpu.RegFile().PC).To(Equal(programPC + 8))

			Expect(cpu.Step()).To(Succeed())
			Expect(cpu.RegFile().ReadGPR(11)).To(Equal(uint64(2)))
			Expect(cpu.RegFile().ReadGPR(10)).To(BeZero())
			Expect(cpu.RegFile().PC).To(Equal(programPC + 12))
			Expect(counting.reads[programBase+4]).To(BeZero())
		})

		It("should branch backwards", func() {
			cpu.RegFile().WriteGPR(8, 7)
			cpu.RegFile().WriteGPR(9, 7)
			Expect(ic.WriteWord(programBase-8, 0x340A0001)).To(Succeed()) // ORI $t2, $zero, 1
			loadProgram(ic, 0x5109FFFE)                                   // BEQL $t0, $t1, -2

			Expect(cpu.Step()).To(Succeed())
			Expect(cpu.RegFile().PC).To(Equal(programPC - 8))

			Expect(cpu.Step()).To(Succeed())
			Expect(cpu.RegFile().ReadGPR(10)).To(Equal(uint64(1)))
			Expect(cpu.RegFile().PC).To(Equal(programPC - 4))
		})

		It("should compare all 64 bits", func() {
			cpu.RegFile().WriteGPR(8, 0x1_0000_0007)
			cpu.RegFile().WriteGPR(9, 0x0_0000_0007)
			loadProgram(ic, 0x5109FFFE) // BEQL $t0, $t1, -2

			Expect(cpu.Step()).To(Succeed())

			Expect(cpu.RegFile().PC).To(Equal(programPC + 4))
			Expect(cpu.DelaySlotPending()).To(BeFalse())
		})

		It("should advance by 4 without fetching the delay slot when not taken", func() {
			counting := &countingBus{Bus: ic, reads: map[uint32]int{}}
			cpu = emu.NewCPU(counting)
			cpu.RegFile().PC = programPC
			cpu.RegFile().WriteGPR(8, 1)
			loadProgram(ic,
				0x51000001, // BEQL $t0, $zero, +1
				0x340A0001, // ORI $t2, $zero, 1  (annulled)
			)

			Expect(cpu.Step()).To(Succeed())

			Expect(cpu.RegFile().PC).To(Equal(programPC + 4))
			Expect(cpu.RegFile().ReadGPR(10)).To(BeZero())
			Expect(cpu.DelaySlotPending()).To(BeFalse())
			Expect(counting.reads[programBase]).To(Equal(1))
			Expect(counting.reads[programBase+4]).To(BeZero())
			Expect(cpu.InstructionCount()).To(Equal(uint64(1)))
		})

		It("should chain a likely branch found in the delay slot", func() {
			loadProgram(ic,
				0x50000001, // BEQL $zero, $zero, +1
				0x50000002, // BEQL $zero, $zero, +2  (delay slot)
				0x340A0001, // ORI $t2, $zero, 1  (skipped)
				0x340B0002, // ORI $t3, $zero, 2  (second target)
			)

			Expect(cpu.Step()).To(Succeed())
			Expect(cpu.Step()).To(Succeed())
			Expect(cpu.RegFile().PC).To(Equal(programPC + 12))
			Expect(cpu.DelaySlotPending()).To(BeTrue())

			Expect(cpu.Step()).To(Succeed())
			Expect(cpu.RegFile().ReadGPR(11)).To(Equal(uint64(2)))
			Expect(cpu.RegFile().ReadGPR(10)).To(BeZero())
			Expect(cpu.RegFile().PC).To(Equal(programPC + 16))
			Expect(cpu.DelaySlotPending()).To(BeFalse())
		})

		It("should keep the delay slot pending when it faults", func() {
			loadProgram(ic,
				0x50000001, // BEQL $zero, $zero, +1
				0xFC00BEEF, // unrecognized (delay slot)
			)

			Expect(cpu.Step()).To(Succeed())
			Expect(cpu.Step()).NotTo(Succeed())

			Expect(cpu.RegFile().PC).To(Equal(programPC + 4))
			Expect(cpu.DelaySlotPending()).To(BeTrue())
		})
	})

	Describe("Faults", func() {
		It("should name the word of an unrecognized instruction", func() {
			loadProgram(ic, 0xFC00BEEF)

			err := cpu.Step()

			var unrecognized *insts.UnrecognizedInstructionError
			Expect(errors.As(err, &unrecognized)).To(BeTrue())
			Expect(unrecognized.Word).To(Equal(uint32(0xFC00BEEF)))
			Expect(err.Error()).To(ContainSubstring("0xFC00BEEF"))
			Expect(cpu.RegFile().PC).To(Equal(programPC))
			Expect(cpu.InstructionCount()).To(BeZero())
		})

		It("should fault on fetches outside kseg1", func() {
			cpu.RegFile().PC = 0xFFFF_FFFF_8000_0000

			err := cpu.Step()

			var unsupported *mmu.UnsupportedSegmentError
			Expect(errors.As(err, &unsupported)).To(BeTrue())
			Expect(unsupported.Segment).To(Equal(mmu.SegmentKSEG0))
		})

		It("should name an unmapped physical address", func() {
			cpu.RegFile().PC = mmu.KSEG1Base + 0x0450_0000

			err := cpu.Step()

			var unmapped *interconnect.UnmappedAddressError
			Expect(errors.As(err, &unmapped)).To(BeTrue())
			Expect(unmapped.Addr).To(Equal(uint32(0x0450_0000)))
			Expect(err.Error()).To(ContainSubstring("0x04500000"))
		})

		It("should stop at the instruction budget", func() {
			cpu = emu.NewCPU(ic, emu.WithMaxInstructions(1))
			cpu.RegFile().PC = programPC
			loadProgram(ic, 0x3C081234, 0x3C091234)

			Expect(cpu.Step()).To(Succeed())
			Expect(cpu.Step()).To(MatchError(emu.ErrMaxInstructions))
			Expect(cpu.RegFile().ReadGPR(9)).To(BeZero())
		})
	})

	Describe("Run", func() {
		It("should return the first fault", func() {
			loadProgram(ic, 0x3C081234, 0x3C091234, 0xFC00BEEF)

			err := cpu.Run(context.Background())

			var unrecognized *insts.UnrecognizedInstructionError
			Expect(errors.As(err, &unrecognized)).To(BeTrue())
			Expect(cpu.InstructionCount()).To(Equal(uint64(2)))
		})

		It("should honour cancellation", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			Expect(cpu.Run(ctx)).To(MatchError(context.Canceled))
			Expect(cpu.InstructionCount()).To(BeZero())
		})
	})

	Describe("Caches", func() {
		It("should bypass the caches for kseg1 accesses", func() {
			icache := cache.New(cache.ICacheConfig(), ic)
			dcache := cache.New(cache.DCacheConfig(), ic)
			cpu = emu.NewCPU(ic, emu.WithICache(icache), emu.WithDCache(dcache))
			cpu.RegFile().PC = programPC
			cpu.RegFile().WriteGPR(9, mmu.KSEG1Base+0x2000)
			loadProgram(ic, 0x8D280010, 0xAD280004)

			Expect(cpu.Step()).To(Succeed())
			Expect(cpu.Step()).To(Succeed())

			Expect(icache.Stats()).To(Equal(cache.Statistics{}))
			Expect(dcache.Stats()).To(Equal(cache.Statistics{}))
		})
	})

	Describe("Logging", func() {
		It("should trace each step at debug level", func() {
			logger, hook := test.NewNullLogger()
			logger.SetLevel(logrus.DebugLevel)
			cpu = emu.NewCPU(ic, emu.WithLogger(logger))
			cpu.RegFile().PC = programPC
			cpu.RegFile().WriteGPR(8, 0x1)
			loadProgram(ic, 0x3C091234, 0x40886000)

			Expect(cpu.Step()).To(Succeed())
			entry := hook.LastEntry()
			Expect(entry.Message).To(Equal("CPU Step"))
			Expect(entry.Data["op"]).To(Equal("LUI"))
			Expect(entry.Data["word"]).To(Equal("0x3C091234"))

			Expect(cpu.Step()).To(Succeed())
			Expect(hook.LastEntry().Message).To(Equal("CP0 write"))
			Expect(hook.LastEntry().Data["index"]).To(Equal("Status"))
		})
	})
})
