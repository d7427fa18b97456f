package cp0

// Mode is the operating mode selected by the KSU field.
type Mode uint8

// Operating modes. The fourth KSU pattern (0b11) is reserved.
const (
	ModeKernel Mode = iota
	ModeSupervisor
	ModeUser
)

func (m Mode) String() string {
	switch m {
	case ModeKernel:
		return "Kernel"
	case ModeSupervisor:
		return "Supervisor"
	case ModeUser:
		return "User"
	default:
		return "Invalid"
	}
}

// ExceptionVectorLocation selects where TLB refill and general exception
// vectors live (the BEV bit).
type ExceptionVectorLocation uint8

// Exception vector locations.
const (
	VectorsNormal ExceptionVectorLocation = iota
	VectorsBootstrap
)

func (v ExceptionVectorLocation) String() string {
	if v == VectorsBootstrap {
		return "Bootstrap"
	}
	return "Normal"
}

// DiagnosticStatus is the DS area of the Status register, bits [24:16].
type DiagnosticStatus struct {
	InstructionTrace bool                    // ITS
	ExceptionVectors ExceptionVectorLocation // BEV
	TLBShutdown      bool                    // TS
	SoftReset        bool                    // SR, soft reset or NMI occurred
	Condition        bool                    // CH
}

// InterruptMask is the IM(7:0) area of the Status register.
type InterruptMask struct {
	Timer    bool    // IM(7)
	External [5]bool // IM(6:2), External[0] is IM(2)
	Software [2]bool // IM(1:0), Software[0] is IM(0)
}

// Status is the typed form of CP0 register 12.
type Status struct {
	CoprocessorUsable [4]bool // CU3..CU0, CoprocessorUsable[i] is CUi
	LowPower          bool    // RP
	AdditionalFPRegs  bool    // FR
	ReverseEndian     bool    // RE

	Diagnostic    DiagnosticStatus
	InterruptMask InterruptMask

	KernelAddressing64     bool // KX
	SupervisorAddressing64 bool // SX
	UserAddressing64       bool // UX

	Mode              Mode // KSU
	ErrorLevel        bool // ERL
	ExceptionLevel    bool // EXL
	InterruptsEnabled bool // IE
}

// Status register bit layout.
const (
	statusCUShift  = 28
	statusRP       = 1 << 27
	statusFR       = 1 << 26
	statusRE       = 1 << 25
	statusITS      = 1 << 24
	statusBEV      = 1 << 22
	statusTS       = 1 << 21
	statusSR       = 1 << 20
	statusCH       = 1 << 18
	statusIMShift  = 8
	statusKX       = 1 << 7
	statusSX       = 1 << 6
	statusUX       = 1 << 5
	statusKSUShift = 3
	statusKSUMask  = 0b11
	statusERL      = 1 << 2
	statusEXL      = 1 << 1
	statusIE       = 1 << 0
)

// DecodeStatus decodes a raw Status value. Reserved bits 23, 19, 17 and 16 are
// ignored. A KSU field of 0b11 is rejected with an *InvalidFieldError.
func DecodeStatus(raw uint32) (Status, error) {
	var s Status

	for i := range s.CoprocessorUsable {
		s.CoprocessorUsable[i] = raw&(1<<(statusCUShift+i)) != 0
	}
	s.LowPower = raw&statusRP != 0
	s.AdditionalFPRegs = raw&statusFR != 0
	s.ReverseEndian = raw&statusRE != 0

	s.Diagnostic.InstructionTrace = raw&statusITS != 0
	if raw&statusBEV != 0 {
		s.Diagnostic.ExceptionVectors = VectorsBootstrap
	}
	s.Diagnostic.TLBShutdown = raw&statusTS != 0
	s.Diagnostic.SoftReset = raw&statusSR != 0
	s.Diagnostic.Condition = raw&statusCH != 0

	im := raw >> statusIMShift
	s.InterruptMask.Software[0] = im&(1<<0) != 0
	s.InterruptMask.Software[1] = im&(1<<1) != 0
	for i := range s.InterruptMask.External {
		s.InterruptMask.External[i] = im&(1<<(2+i)) != 0
	}
	s.InterruptMask.Timer = im&(1<<7) != 0

	s.KernelAddressing64 = raw&statusKX != 0
	s.SupervisorAddressing64 = raw&statusSX != 0
	s.UserAddressing64 = raw&statusUX != 0

	ksu := (raw >> statusKSUShift) & statusKSUMask
	if ksu == statusKSUMask {
		return Status{}, &InvalidFieldError{
			Register: RegStatus, Field: "KSU", Value: ksu,
		}
	}
	s.Mode = Mode(ksu)

	s.ErrorLevel = raw&statusERL != 0
	s.ExceptionLevel = raw&statusEXL != 0
	s.InterruptsEnabled = raw&statusIE != 0

	return s, nil
}

// Encode returns the raw 32-bit value of the register.
func (s Status) Encode() uint32 {
	var raw uint32

	for i, usable := range s.CoprocessorUsable {
		raw |= bit(usable, statusCUShift+i)
	}
	raw |= flag(s.LowPower, statusRP)
	raw |= flag(s.AdditionalFPRegs, statusFR)
	raw |= flag(s.ReverseEndian, statusRE)

	raw |= flag(s.Diagnostic.InstructionTrace, statusITS)
	raw |= flag(s.Diagnostic.ExceptionVectors == VectorsBootstrap, statusBEV)
	raw |= flag(s.Diagnostic.TLBShutdown, statusTS)
	raw |= flag(s.Diagnostic.SoftReset, statusSR)
	raw |= flag(s.Diagnostic.Condition, statusCH)

	raw |= bit(s.InterruptMask.Software[0], statusIMShift+0)
	raw |= bit(s.InterruptMask.Software[1], statusIMShift+1)
	for i, enabled := range s.InterruptMask.External {
		raw |= bit(enabled, statusIMShift+2+i)
	}
	raw |= bit(s.InterruptMask.Timer, statusIMShift+7)

	raw |= flag(s.KernelAddressing64, statusKX)
	raw |= flag(s.SupervisorAddressing64, statusSX)
	raw |= flag(s.UserAddressing64, statusUX)

	raw |= (uint32(s.Mode) & statusKSUMask) << statusKSUShift
	raw |= flag(s.ErrorLevel, statusERL)
	raw |= flag(s.ExceptionLevel, statusEXL)
	raw |= flag(s.InterruptsEnabled, statusIE)

	return raw
}

// powerOnReset applies the cold reset values documented for Status: ERL and
// BEV set, TS, SR and RP cleared. Other fields keep their value.
func (s *Status) powerOnReset() {
	s.ErrorLevel = true
	s.Diagnostic.ExceptionVectors = VectorsBootstrap
	s.Diagnostic.TLBShutdown = false
	s.Diagnostic.SoftReset = false
	s.LowPower = false
}

func flag(set bool, mask uint32) uint32 {
	if set {
		return mask
	}
	return 0
}

func bit(set bool, pos int) uint32 {
	return flag(set, 1<<pos)
}
