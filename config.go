package serialport

import (
	"fmt"
	"strings"
	"time"
)

// Parity represents the parity mode. Values match the Win32 DCB encoding.
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityMark
	ParitySpace
)

func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "N"
	case ParityOdd:
		return "O"
	case ParityEven:
		return "E"
	case ParityMark:
		return "M"
	case ParitySpace:
		return "S"
	default:
		return fmt.Sprintf("Parity(%d)", int(p))
	}
}

// ParseParity accepts none/odd/even/mark/space or their first letter.
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "none", "":
		return ParityNone, nil
	case "o", "odd":
		return ParityOdd, nil
	case "e", "even":
		return ParityEven, nil
	case "m", "mark":
		return ParityMark, nil
	case "s", "space":
		return ParitySpace, nil
	}
	return ParityNone, fmt.Errorf("%w: unknown parity %q", ErrInvalidConfig, s)
}

// StopBits represents the stop bit setting. Values match the Win32 DCB encoding.
type StopBits int

const (
	StopBitsOne StopBits = iota
	StopBitsOnePointFive
	StopBitsTwo
)

func (s StopBits) String() string {
	switch s {
	case StopBitsOne:
		return "1"
	case StopBitsOnePointFive:
		return "1.5"
	case StopBitsTwo:
		return "2"
	default:
		return fmt.Sprintf("StopBits(%d)", int(s))
	}
}

// ParseStopBits accepts "1", "1.5" or "2".
func ParseStopBits(s string) (StopBits, error) {
	switch strings.TrimSpace(s) {
	case "1", "":
		return StopBitsOne, nil
	case "1.5":
		return StopBitsOnePointFive, nil
	case "2":
		return StopBitsTwo, nil
	}
	return StopBitsOne, fmt.Errorf("%w: unknown stop bits %q", ErrInvalidConfig, s)
}

// Timeouts bounds every blocking read and write. The fields follow the
// COMMTIMEOUTS model: a total budget of Constant + len(buf)*Multiplier, and
// for reads an inter-byte gap after which the bytes received so far are
// returned. A zero total budget means no bound.
type Timeouts struct {
	ReadInterval         time.Duration
	ReadTotalMultiplier  time.Duration
	ReadTotalConstant    time.Duration
	WriteTotalMultiplier time.Duration
	WriteTotalConstant   time.Duration
}

// DefaultTimeouts returns the short fixed profile every port uses unless
// overridden: 1ms inter-byte gap, 15ms read budget, 50ms write budget.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		ReadInterval:         1 * time.Millisecond,
		ReadTotalMultiplier:  0,
		ReadTotalConstant:    15 * time.Millisecond,
		WriteTotalMultiplier: 0,
		WriteTotalConstant:   50 * time.Millisecond,
	}
}

func (t Timeouts) readBudget(n int) time.Duration {
	return t.ReadTotalConstant + time.Duration(n)*t.ReadTotalMultiplier
}

func (t Timeouts) writeBudget(n int) time.Duration {
	return t.WriteTotalConstant + time.Duration(n)*t.WriteTotalMultiplier
}

// Config holds the configuration for a serial port
type Config struct {
	BaudRate int
	DataBits int
	StopBits StopBits
	Parity   Parity
	Timeouts Timeouts
}

// String renders the line settings as "9600 8N1".
func (c Config) String() string {
	return fmt.Sprintf("%d %d%s%s", c.BaudRate, c.DataBits, c.Parity, c.StopBits)
}

// Option is a functional option for configuring a serial port
type Option func(*Config) error

// DefaultConfig returns 9600 baud, 8 data bits, 1 stop bit, no parity and the
// default timeout profile.
func DefaultConfig() Config {
	return Config{
		BaudRate: 9600,
		DataBits: 8,
		StopBits: StopBitsOne,
		Parity:   ParityNone,
		Timeouts: DefaultTimeouts(),
	}
}

// WithBaudRate sets the baud rate. The value is handed to the OS as is.
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		c.BaudRate = rate
		return nil
	}
}

// WithDataBits sets the number of data bits
func WithDataBits(bits int) Option {
	return func(c *Config) error {
		c.DataBits = bits
		return nil
	}
}

// WithStopBits sets the stop bits
func WithStopBits(bits StopBits) Option {
	return func(c *Config) error {
		c.StopBits = bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		c.Parity = parity
		return nil
	}
}

// WithTimeouts replaces the whole timeout profile.
func WithTimeouts(t Timeouts) Option {
	return func(c *Config) error {
		if t.ReadInterval < 0 || t.ReadTotalMultiplier < 0 || t.ReadTotalConstant < 0 ||
			t.WriteTotalMultiplier < 0 || t.WriteTotalConstant < 0 {
			return ErrInvalidConfig
		}
		c.Timeouts = t
		return nil
	}
}

// WithReadTimeouts sets the inter-byte gap and the total read budget.
func WithReadTimeouts(interval, total time.Duration) Option {
	return func(c *Config) error {
		if interval < 0 || total < 0 {
			return ErrInvalidConfig
		}
		c.Timeouts.ReadInterval = interval
		c.Timeouts.ReadTotalConstant = total
		return nil
	}
}

// WithWriteTimeout sets the total write budget.
func WithWriteTimeout(total time.Duration) Option {
	return func(c *Config) error {
		if total < 0 {
			return ErrInvalidConfig
		}
		c.Timeouts.WriteTotalConstant = total
		return nil
	}
}

// WithConfig copies a complete configuration.
func WithConfig(cfg Config) Option {
	return func(c *Config) error {
		*c = cfg
		return nil
	}
}
