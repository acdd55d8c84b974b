package core

import "errors"

// PinOp names the pin operation that failed
type PinOp uint8

const (
	OpRead PinOp = iota + 1
	OpWrite
	OpConfigure
)

func (op PinOp) String() string {
	switch op {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpConfigure:
		return "configure"
	default:
		return "unknown"
	}
}

// ErrNilCapability is returned by constructors given a nil pin, counter or delay
var ErrNilCapability = errors.New("nil capability")

// PinError reports a failed pin operation
type PinError struct {
	Op  PinOp
	Pin GPIOPin // NoPin when the capability is not pin-number based
	Err error
}

func (e *PinError) Error() string {
	if e.Pin == NoPin {
		return "pin " + e.Op.String() + ": " + e.Err.Error()
	}
	return "gpio" + utoa(uint32(e.Pin)) + " " + e.Op.String() + ": " + e.Err.Error()
}

func (e *PinError) Unwrap() error {
	return e.Err
}

// ScanError aborts a matrix scan.
// Op is OpWrite when driving column Col failed; Row is only meaningful for OpRead.
type ScanError struct {
	Col uint8
	Row uint8
	Op  PinOp
	Err error
}

func (e *ScanError) Error() string {
	msg := "matrix scan: column " + utoa(uint32(e.Col))
	if e.Op == OpRead {
		msg += " row " + utoa(uint32(e.Row))
	}
	return msg + " " + e.Op.String() + ": " + e.Err.Error()
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// asPinError wraps err in a PinError unless it already carries one
func asPinError(op PinOp, err error) error {
	var pe *PinError
	if errors.As(err, &pe) {
		return err
	}
	return &PinError{Op: op, Pin: NoPin, Err: err}
}
