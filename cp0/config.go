package cp0

// DataTransferPattern is the EP field: the write-back data rate on the
// SysAD bus. The constant values are the raw EP encodings.
type DataTransferPattern uint8

// Data transfer patterns.
const (
	PatternNormal DataTransferPattern = 0 // "D", one doubleword per cycle
	PatternDxxDxx DataTransferPattern = 6 // one doubleword every three cycles
)

func (p DataTransferPattern) String() string {
	switch p {
	case PatternNormal:
		return "D"
	case PatternDxxDxx:
		return "DxxDxx"
	default:
		return "Invalid"
	}
}

// Endianness is the BE field.
type Endianness uint8

// Endianness values, in BE bit order.
const (
	LittleEndian Endianness = iota
	BigEndian
)

func (e Endianness) String() string {
	if e == BigEndian {
		return "Big"
	}
	return "Little"
}

// Config is the typed form of CP0 register 16.
type Config struct {
	ClockRatio          uint8 // EC, read-only on hardware, set by DivMode pins
	DataTransferPattern DataTransferPattern
	Endianness          Endianness
	CoprocessorUsable   bool  // CU
	K0                  uint8 // kseg0 coherency algorithm
}

// Config register bit layout.
const (
	configECShift = 28
	configECMask  = 0b111
	configEPShift = 24
	configEPMask  = 0b1111
	configBE      = 1 << 15
	configCU      = 1 << 3
	configK0Mask  = 0b111

	// configFixed holds the bits that always read back as 00000110 in [23:16]
	// and 11001000110 in [14:4].
	configFixed = 0x0006_6460

	// k0Uncached is the K0 pattern selecting uncached kseg0.
	k0Uncached = 0b010
)

// Kseg0Cacheable reports whether kseg0 accesses go through the caches.
func (c Config) Kseg0Cacheable() bool {
	return c.K0 != k0Uncached
}

// DecodeConfig decodes a raw Config value. EP values other than 0 and 6 are
// rejected with an *InvalidFieldError. The fixed bits are ignored.
func DecodeConfig(raw uint32) (Config, error) {
	var c Config

	ep := (raw >> configEPShift) & configEPMask
	switch DataTransferPattern(ep) {
	case PatternNormal, PatternDxxDxx:
		c.DataTransferPattern = DataTransferPattern(ep)
	default:
		return Config{}, &InvalidFieldError{
			Register: RegConfig, Field: "EP", Value: ep,
		}
	}

	c.ClockRatio = uint8((raw >> configECShift) & configECMask)
	if raw&configBE != 0 {
		c.Endianness = BigEndian
	}
	c.CoprocessorUsable = raw&configCU != 0
	c.K0 = uint8(raw & configK0Mask)

	return c, nil
}

// Encode returns the raw 32-bit value of the register, fixed bits included.
func (c Config) Encode() uint32 {
	raw := uint32(configFixed)
	raw |= (uint32(c.ClockRatio) & configECMask) << configECShift
	raw |= (uint32(c.DataTransferPattern) & configEPMask) << configEPShift
	raw |= flag(c.Endianness == BigEndian, configBE)
	raw |= flag(c.CoprocessorUsable, configCU)
	raw |= uint32(c.K0) & configK0Mask
	return raw
}

func (c *Config) powerOnReset() {
	c.DataTransferPattern = PatternNormal
	c.Endianness = BigEndian
}
