package serialport

import (
	"errors"
	"strings"
)

// Predefined error types for robust error handling
var (
	// Failure classes reported by Open
	ErrOpen   = errors.New("serial device cannot be acquired")
	ErrConfig = errors.New("serial device rejected configuration")

	// Causes attached to ErrOpen when the OS reports them
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial device")
	ErrDeviceInUse      = errors.New("serial device already in use")

	ErrInvalidBaudRate = errors.New("invalid baud rate")
	ErrInvalidConfig   = errors.New("invalid serial configuration")
	ErrPortClosed      = errors.New("serial port is closed")
	ErrIO              = errors.New("serial I/O failed")
	ErrWriteTimeout    = errors.New("write operation timed out")
	ErrReadTimeout     = errors.New("read operation timed out")

	// Flat handle surface errors
	ErrInvalidArgument = errors.New("invalid argument")
	ErrHandleNotFound  = errors.New("serial port handle not found")

	ErrNotImplemented = errors.New("serial ports are not supported on this platform")
)

// PortError describes a failed operation on a named port. Kind is one of the
// package sentinels (ErrOpen, ErrConfig, ErrIO); Err is the underlying cause.
// errors.Is matches both.
type PortError struct {
	Op   string
	Port string
	Kind error
	Err  error
}

func (e *PortError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Port != "" {
		b.WriteString(" ")
		b.WriteString(e.Port)
	}
	if e.Kind != nil {
		b.WriteString(": ")
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *PortError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
