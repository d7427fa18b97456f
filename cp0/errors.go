package cp0

import "fmt"

// UnimplementedRegisterError is returned for accesses to a CP0 register the
// model does not implement.
type UnimplementedRegisterError struct {
	Index uint8
	Data  uint64
}

func (e *UnimplementedRegisterError) Error() string {
	return fmt.Sprintf("unimplemented cp0 register %d (%s), data 0x%X",
		e.Index, RegisterName(e.Index), e.Data)
}

// InvalidFieldError is returned when a raw register value carries a reserved
// encoding in an enumerated field.
type InvalidFieldError struct {
	Register uint8
	Field    string
	Value    uint32
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid %s field in cp0 %s: 0x%X",
		e.Field, RegisterName(e.Register), e.Value)
}
