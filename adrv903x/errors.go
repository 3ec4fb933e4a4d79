package adrv903x

import (
	"errors"
	"fmt"
)

// Error kinds returned by every core operation. Use errors.Is to test for them.
var (
	ErrNullPointer        = errors.New("null pointer")
	ErrInvalidParam       = errors.New("invalid parameter")
	ErrInvalidChannel     = errors.New("invalid channel")
	ErrNotImplemented     = errors.New("not implemented")
	ErrRegisterIO         = errors.New("register access failed")
	ErrConfigInconsistent = errors.New("configuration inconsistent")
)

// Error describes which operation and field failed and why.
type Error struct {
	Kind  error
	Op    string
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	s := e.Op + ": " + e.Kind.Error()
	if e.Field != "" {
		s += " (" + e.Field + ")"
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalidParam(op, field, format string, args ...any) error {
	return &Error{Kind: ErrInvalidParam, Op: op, Field: field, Msg: fmt.Sprintf(format, args...)}
}

func invalidChannel(op string, ch Channel, format string, args ...any) error {
	return &Error{Kind: ErrInvalidChannel, Op: op, Field: ch.String(), Msg: fmt.Sprintf(format, args...)}
}

func registerIO(op string, addr, mask uint32, err error) error {
	return &Error{
		Kind: ErrRegisterIO,
		Op:   op,
		Msg:  fmt.Sprintf("address 0x%08X mask 0x%08X", addr, mask),
		Err:  err,
	}
}
