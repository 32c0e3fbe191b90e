package serialport

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/atomic"
)

// Handle identifies a Port owned by a Registry. The zero Handle is never
// issued.
type Handle uintptr

// Registry maps opaque handles to ports for callers that cannot hold a *Port,
// such as code on the far side of a C boundary. Every method reports failure
// as a zero value and never returns an error.
type Registry struct {
	mu    sync.Mutex
	next  atomic.Uint64
	ports map[Handle]*Port

	newPort    func() *Port
	enumerator Enumerator
}

// Default is the registry used by the package-level flat functions.
var Default = NewRegistry()

// NewRegistry returns an empty registry that enumerates with
// DefaultEnumerator.
func NewRegistry() *Registry {
	return &Registry{
		ports:      make(map[Handle]*Port),
		newPort:    func() *Port { return New() },
		enumerator: DefaultEnumerator(),
	}
}

// Create allocates a closed port and returns its handle.
func (r *Registry) Create() Handle {
	h := Handle(r.next.Inc())
	p := r.newPort()

	r.mu.Lock()
	r.ports[h] = p
	r.mu.Unlock()
	return h
}

// Destroy closes the port if open and forgets the handle.
func (r *Registry) Destroy(h Handle) {
	r.mu.Lock()
	p, ok := r.ports[h]
	delete(r.ports, h)
	r.mu.Unlock()

	if ok {
		p.Close()
	}
}

func (r *Registry) lookup(h Handle) (*Port, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.ports[h]
	return p, ok
}

// OpenPort opens name at the given baud rate with 8 data bits, one stop bit
// and no parity.
func (r *Registry) OpenPort(h Handle, name string, baud int) bool {
	p, ok := r.lookup(h)
	if !ok {
		logger.WithField("handle", uint64(h)).Debug(ErrHandleNotFound.Error())
		return false
	}
	err := p.Open(name,
		WithBaudRate(baud),
		WithDataBits(8),
		WithStopBits(StopBitsOne),
		WithParity(ParityNone),
	)
	return err == nil
}

// ClosePort closes the port behind h. Unknown handles are ignored.
func (r *Registry) ClosePort(h Handle) {
	if p, ok := r.lookup(h); ok {
		p.Close()
	}
}

// WriteData writes data and returns the number of bytes accepted, or 0.
func (r *Registry) WriteData(h Handle, data []byte) int {
	p, ok := r.lookup(h)
	if !ok {
		return 0
	}
	n, err := p.Write(data)
	if err != nil && !errors.Is(err, ErrWriteTimeout) {
		return 0
	}
	return n
}

// ReadData reads into buf and returns the number of bytes received. A
// timeout and a failure both return 0.
func (r *Registry) ReadData(h Handle, buf []byte) int {
	p, ok := r.lookup(h)
	if !ok {
		return 0
	}
	n, err := p.Read(buf)
	if err != nil {
		return 0
	}
	return n
}

// IsPortOpen reports whether the port behind h is open.
func (r *Registry) IsPortOpen(h Handle) bool {
	p, ok := r.lookup(h)
	return ok && p.IsOpen()
}

// FlushPort discards queued input and output, ignoring failures.
func (r *Registry) FlushPort(h Handle) {
	if p, ok := r.lookup(h); ok {
		p.Flush()
	}
}

func (r *Registry) availablePorts() []string {
	names, err := r.enumerator.List(context.Background())
	if err != nil {
		logger.WithError(err).Debug("port enumeration failed")
		return nil
	}
	return names
}

// GetPortsCount runs a fresh enumeration and returns the number of ports.
func (r *Registry) GetPortsCount() int {
	return len(r.availablePorts())
}

// GetPortName runs a fresh enumeration and copies the name at index into buf
// as a NUL-terminated string, truncating it to len(buf)-1 bytes. It returns
// false and leaves buf untouched when index is out of range or buf is empty.
func (r *Registry) GetPortName(index int, buf []byte) bool {
	if len(buf) == 0 || index < 0 {
		return false
	}
	names := r.availablePorts()
	if index >= len(names) {
		return false
	}
	n := copy(buf[:len(buf)-1], names[index])
	buf[n] = 0
	return true
}

// Create allocates a port in Default.
func Create() Handle { return Default.Create() }

func Destroy(h Handle) { Default.Destroy(h) }

func OpenPort(h Handle, name string, baud int) bool { return Default.OpenPort(h, name, baud) }

func ClosePort(h Handle) { Default.ClosePort(h) }

func WriteData(h Handle, data []byte) int { return Default.WriteData(h, data) }

func ReadData(h Handle, buf []byte) int { return Default.ReadData(h, buf) }

func IsPortOpen(h Handle) bool { return Default.IsPortOpen(h) }

func FlushPort(h Handle) { Default.FlushPort(h) }

func GetPortsCount() int { return Default.GetPortsCount() }

func GetPortName(index int, buf []byte) bool { return Default.GetPortName(index, buf) }
