package serialport

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Line is the line-control block as reported and accepted by the OS.
type Line struct {
	BaudRate int
	DataBits int
	StopBits StopBits
	Parity   Parity
}

// handle is an acquired OS device. Implementations live in the per-platform
// files; tests substitute fakes.
type handle interface {
	getLine() (Line, error)
	setLine(Line) error
	setTimeouts(Timeouts) error
	// read returns (n>0, nil), (0, ErrReadTimeout) or an OS error.
	read(p []byte) (int, error)
	// write returns (len(p), nil), (n, ErrWriteTimeout) or an OS error.
	write(p []byte) (int, error)
	purge() error
	// interrupt wakes a read or write blocked in another goroutine and makes
	// every later one fail with ErrPortClosed. It must be safe to call
	// concurrently with read and write.
	interrupt()
	close() error
}

// opener acquires exclusive read/write access to a device path.
type opener func(path string) (handle, error)

// Port owns at most one open serial device and mediates all I/O against it.
// The zero value is not usable; create ports with New.
type Port struct {
	mu       sync.RWMutex
	open     opener
	defaults []Option

	h      handle
	name   string
	config Config
	isOpen bool

	// active mirrors h so Close can wake blocked I/O without the write lock.
	activeMu sync.Mutex
	active   handle
}

// New returns a closed port. The options become defaults for every Open.
func New(opts ...Option) *Port {
	return newPort(openNative, opts...)
}

func newPort(open opener, opts ...Option) *Port {
	return &Port{
		open:     open,
		defaults: opts,
	}
}

// DevicePath maps a symbolic port name to the path handed to the OS by
// prefixing the platform device namespace.
func DevicePath(name string) string {
	if strings.HasPrefix(name, devicePathPrefix) || isAbsDevicePath(name) {
		return name
	}
	return devicePathPrefix + name
}

// Open acquires the named device and applies the line settings and timeouts.
// An already open port is closed first. On any failure the port is left
// closed and no handle is retained.
func (p *Port) Open(name string, opts ...Option) error {
	p.interrupt()
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isOpen {
		logger.WithField("port", p.name).Debug("closing port before reopen")
		p.closeLocked()
	}

	config := DefaultConfig()
	for _, opt := range p.defaults {
		if err := opt(&config); err != nil {
			return fmt.Errorf("open %s: %w", name, err)
		}
	}
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return fmt.Errorf("open %s: %w", name, err)
		}
	}

	path := DevicePath(name)
	h, err := p.open(path)
	if err != nil {
		logger.WithError(err).WithField("path", path).Debug("failed to acquire device")
		return &PortError{Op: "open", Port: name, Kind: ErrOpen, Err: err}
	}

	if err := configure(h, config); err != nil {
		if cerr := h.close(); cerr != nil {
			logger.WithError(cerr).WithField("port", name).Debug("failed to release device")
		}
		logger.WithError(err).WithField("port", name).Debug("device rejected configuration")
		return &PortError{Op: "configure", Port: name, Kind: ErrConfig, Err: err}
	}

	p.h = h
	p.name = name
	p.config = config
	p.isOpen = true
	p.setActive(h)

	logger.WithFields(logrus.Fields{
		"port": name,
		"path": path,
		"line": config.String(),
	}).Debug("port opened")
	return nil
}

// configure reads the current line block, overwrites the four line fields and
// applies it, then applies the timeout profile.
func configure(h handle, c Config) error {
	line, err := h.getLine()
	if err != nil {
		return fmt.Errorf("get line settings: %w", err)
	}

	line.BaudRate = c.BaudRate
	line.DataBits = c.DataBits
	line.StopBits = c.StopBits
	line.Parity = c.Parity

	if err := h.setLine(line); err != nil {
		return fmt.Errorf("set line settings: %w", err)
	}
	if err := h.setTimeouts(c.Timeouts); err != nil {
		return fmt.Errorf("set timeouts: %w", err)
	}
	return nil
}

// Close releases the device. Closing a closed port is a no-op and Close never
// reports an error; release failures are only logged. A Read or Write blocked
// in another goroutine returns ErrPortClosed.
func (p *Port) Close() error {
	p.interrupt()
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closeLocked()
	return nil
}

func (p *Port) closeLocked() {
	if !p.isOpen {
		return
	}
	p.setActive(nil)
	if err := p.h.close(); err != nil {
		logger.WithError(err).WithField("port", p.name).Debug("failed to release device")
	}
	logger.WithField("port", p.name).Debug("port closed")

	p.h = nil
	p.name = ""
	p.isOpen = false
}

func (p *Port) setActive(h handle) {
	p.activeMu.Lock()
	p.active = h
	p.activeMu.Unlock()
}

func (p *Port) interrupt() {
	p.activeMu.Lock()
	defer p.activeMu.Unlock()
	if p.active != nil {
		p.active.interrupt()
	}
}

// IsOpen reports whether the port currently owns a device.
func (p *Port) IsOpen() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isOpen
}

// Name returns the symbolic name of the open device, or "" when closed.
func (p *Port) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

// Config returns the configuration applied by the last successful Open.
func (p *Port) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config
}

// Write issues a single write bounded by the write timeout and returns the
// number of bytes the OS accepted. A short write caused by the timeout is
// reported as ErrWriteTimeout; it is not retried.
func (p *Port) Write(data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.isOpen {
		return 0, ErrPortClosed
	}
	if len(data) == 0 {
		return 0, nil
	}

	n, err := p.h.write(data)
	if n < 0 {
		n = 0
	}
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, ErrWriteTimeout):
		return n, ErrWriteTimeout
	case errors.Is(err, ErrPortClosed):
		return n, ErrPortClosed
	default:
		return n, &PortError{Op: "write", Port: p.name, Kind: ErrIO, Err: err}
	}
}

// Read issues a single read bounded by the read timeouts. It returns
// ErrReadTimeout when nothing arrived in the window and ErrPortClosed when
// the port was closed while waiting.
func (p *Port) Read(buf []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.isOpen {
		return 0, ErrPortClosed
	}
	if len(buf) == 0 {
		return 0, nil
	}

	n, err := p.h.read(buf)
	if n < 0 {
		n = 0
	}
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, ErrReadTimeout):
		return 0, ErrReadTimeout
	case errors.Is(err, ErrPortClosed):
		return 0, ErrPortClosed
	default:
		return n, &PortError{Op: "read", Port: p.name, Kind: ErrIO, Err: err}
	}
}

// Flush discards unread input and unsent output queued by the OS. It is a
// no-op on a closed port.
func (p *Port) Flush() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.isOpen {
		return nil
	}
	if err := p.h.purge(); err != nil {
		return &PortError{Op: "flush", Port: p.name, Kind: ErrIO, Err: err}
	}
	return nil
}
