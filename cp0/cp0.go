// Package cp0 models the VR4300 system control coprocessor (CP0).
//
// Each modeled register has a typed form that is the source of truth for
// execution, plus a pure decode function and a pure encode method that
// hold every bit position of the hardware layout:
//
//	status, err := cp0.DecodeStatus(0x0040_0004)
//	raw := status.Encode() // 0x0040_0004
//
// Only Status (12) and Config (16) are modeled. Accesses to any other index
// fail with an *UnimplementedRegisterError.
package cp0

import "fmt"

// NumRegs is the number of CP0 register indices addressable by the 5-bit rd
// field.
const NumRegs = 32

// Modeled register indices.
const (
	RegStatus uint8 = 12
	RegConfig uint8 = 16
)

var regNames = [NumRegs]string{
	"Index", "Random", "EntryLo0", "EntryLo1",
	"Context", "PageMask", "Wired", "Reserved7",
	"BadVAddr", "Count", "EntryHi", "Compare",
	"Status", "Cause", "EPC", "PRId",
	"Config", "LLAddr", "WatchLo", "WatchHi",
	"XContext", "Reserved21", "Reserved22", "Reserved23",
	"Reserved24", "Reserved25", "ParityError", "CacheError",
	"TagLo", "TagHi", "ErrorEPC", "Reserved31",
}

// RegisterName returns the architectural name of a CP0 register index.
func RegisterName(index uint8) string {
	if int(index) < len(regNames) {
		return regNames[index]
	}
	return fmt.Sprintf("cp0r%d", index)
}

// CP0 holds the modeled coprocessor 0 registers.
type CP0 struct {
	status Status
	config Config
}

// New returns a CP0 with every register zero.
func New() *CP0 {
	return &CP0{}
}

// PowerOnReset applies the cold reset defaults. Config gets EP = D and
// BE = big endian. Status gets ERL and BEV set with TS, SR and RP cleared.
func (c *CP0) PowerOnReset() {
	c.config.powerOnReset()
	c.status.powerOnReset()
}

// Status returns the typed Status register.
func (c *CP0) Status() Status {
	return c.status
}

// Config returns the typed Config register.
func (c *CP0) Config() Config {
	return c.config
}

// WriteReg decodes the low 32 bits of data into the register at index and
// replaces it. The register is left untouched when decoding fails.
func (c *CP0) WriteReg(index uint8, data uint64) error {
	raw := uint32(data)

	switch index {
	case RegStatus:
		status, err := DecodeStatus(raw)
		if err != nil {
			return err
		}
		c.status = status
	case RegConfig:
		config, err := DecodeConfig(raw)
		if err != nil {
			return err
		}
		c.config = config
	default:
		return &UnimplementedRegisterError{Index: index, Data: data}
	}

	return nil
}

// ReadReg returns the encoded value of the register at index. No instruction
// reads CP0 yet; this serves diagnostics.
func (c *CP0) ReadReg(index uint8) (uint32, error) {
	switch index {
	case RegStatus:
		return c.status.Encode(), nil
	case RegConfig:
		return c.config.Encode(), nil
	default:
		return 0, &UnimplementedRegisterError{Index: index}
	}
}
