package interconnect

// RSPStatus bits as read by the CPU.
const (
	RSPHalted uint32 = 1 << iota
	RSPBroke
	RSPDMABusy
	RSPDMAFull
	RSPIOFull
	RSPSingleStep
	RSPIntrOnBreak
	RSPSignal0 // signals 0..7 occupy bits 7..14
)

// RSP status write bits: each controllable flag has a clear/set pair.
const (
	rspClrHalt uint32 = 1 << iota
	rspSetHalt
	rspClrBroke
	rspClrIntr
	rspSetIntr
	rspClrSingleStep
	rspSetSingleStep
	rspClrIntrOnBreak
	rspSetIntrOnBreak
	rspClrSignal0 // signal n: clear at bit 9+2n, set at bit 10+2n
)

const rspNumSignals = 8

// rspPowerOnStatus is the status after power-on: the RSP starts halted.
const rspPowerOnStatus = RSPHalted

// RSP models the signal processor's status register.
type RSP struct {
	status uint32
}

// NewRSP returns an RSP in its power-on state.
func NewRSP() *RSP {
	return &RSP{status: rspPowerOnStatus}
}

// ReadStatus returns the status register.
func (r *RSP) ReadStatus() uint32 {
	return r.status
}

// WriteStatus applies a status write. A flag changes only when exactly one of
// its clear/set bits is written. The interrupt pair drives the MI interrupt
// line, which is not modeled.
func (r *RSP) WriteStatus(value uint32) {
	r.apply(value, rspClrHalt, rspSetHalt, RSPHalted)
	r.apply(value, rspClrSingleStep, rspSetSingleStep, RSPSingleStep)
	r.apply(value, rspClrIntrOnBreak, rspSetIntrOnBreak, RSPIntrOnBreak)

	if value&rspClrBroke != 0 {
		r.status &^= RSPBroke
	}

	for n := 0; n < rspNumSignals; n++ {
		clr := rspClrSignal0 << (2 * n)
		set := clr << 1
		r.apply(value, clr, set, RSPSignal0<<n)
	}
}

func (r *RSP) apply(value, clr, set, flag uint32) {
	switch {
	case value&clr != 0 && value&set == 0:
		r.status &^= flag
	case value&set != 0 && value&clr == 0:
		r.status |= flag
	}
}
