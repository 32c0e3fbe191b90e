//go:build windows

package serialport

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unsafe"

	"go.uber.org/atomic"
	"golang.org/x/sys/windows"
)

const (
	devicePathPrefix   = `\\.\`
	standardPrefix     = "COM"
	firstStandardIndex = 1
	precheckCharDevice = false
)

func isAbsDevicePath(name string) bool {
	return strings.HasPrefix(name, `\\`)
}

// dcb mirrors the Win32 DCB structure.
type dcb struct {
	DCBLength uint32
	BaudRate  uint32
	Flags     uint32
	_         uint16
	XonLim    uint16
	XoffLim   uint16
	ByteSize  byte
	Parity    byte
	StopBits  byte
	XonChar   byte
	XoffChar  byte
	ErrorChar byte
	EOFChar   byte
	EvtChar   byte
	_         uint16
}

// commTimeouts mirrors the Win32 COMMTIMEOUTS structure, in milliseconds.
type commTimeouts struct {
	ReadIntervalTimeout         uint32
	ReadTotalTimeoutMultiplier  uint32
	ReadTotalTimeoutConstant    uint32
	WriteTotalTimeoutMultiplier uint32
	WriteTotalTimeoutConstant   uint32
}

var (
	kernel32            = windows.NewLazySystemDLL("kernel32.dll")
	procGetCommState    = kernel32.NewProc("GetCommState")
	procSetCommState    = kernel32.NewProc("SetCommState")
	procSetCommTimeouts = kernel32.NewProc("SetCommTimeouts")
	procPurgeComm       = kernel32.NewProc("PurgeComm")
)

const (
	purgeTxClear = 0x0004
	purgeRxClear = 0x0008
)

type windowsHandle struct {
	h       windows.Handle
	state   dcb
	closing atomic.Bool
}

func openNative(path string) (handle, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}

	h, err := windows.CreateFile(
		p,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0, // exclusive access
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return nil, classifyOpenError(err)
	}
	return &windowsHandle{h: h}, nil
}

func classifyOpenError(err error) error {
	switch {
	case errors.Is(err, windows.ERROR_FILE_NOT_FOUND), errors.Is(err, windows.ERROR_PATH_NOT_FOUND):
		return fmt.Errorf("%w: %w", ErrDeviceNotFound, err)
	case errors.Is(err, windows.ERROR_ACCESS_DENIED), errors.Is(err, windows.ERROR_SHARING_VIOLATION):
		// COM ports held by another process report access denied
		return fmt.Errorf("%w: %w", ErrDeviceInUse, err)
	default:
		return err
	}
}

func (h *windowsHandle) getLine() (Line, error) {
	d := dcb{}
	d.DCBLength = uint32(unsafe.Sizeof(d))
	if r, _, err := procGetCommState.Call(uintptr(h.h), uintptr(unsafe.Pointer(&d))); r == 0 {
		return Line{}, fmt.Errorf("GetCommState: %w", err)
	}
	h.state = d

	return Line{
		BaudRate: int(d.BaudRate),
		DataBits: int(d.ByteSize),
		StopBits: StopBits(d.StopBits),
		Parity:   Parity(d.Parity),
	}, nil
}

// setLine overwrites the four line fields of the block read by getLine and
// lets SetCommState judge them.
func (h *windowsHandle) setLine(line Line) error {
	d := h.state
	d.DCBLength = uint32(unsafe.Sizeof(d))
	d.BaudRate = uint32(line.BaudRate)
	d.ByteSize = byte(line.DataBits)
	d.StopBits = byte(line.StopBits)
	d.Parity = byte(line.Parity)

	if r, _, err := procSetCommState.Call(uintptr(h.h), uintptr(unsafe.Pointer(&d))); r == 0 {
		return fmt.Errorf("SetCommState: %w", err)
	}
	h.state = d
	return nil
}

func millis(d time.Duration) uint32 {
	ms := d / time.Millisecond
	if ms == 0 && d > 0 {
		ms = 1
	}
	return uint32(ms)
}

func (h *windowsHandle) setTimeouts(t Timeouts) error {
	ct := commTimeouts{
		ReadIntervalTimeout:         millis(t.ReadInterval),
		ReadTotalTimeoutMultiplier:  millis(t.ReadTotalMultiplier),
		ReadTotalTimeoutConstant:    millis(t.ReadTotalConstant),
		WriteTotalTimeoutMultiplier: millis(t.WriteTotalMultiplier),
		WriteTotalTimeoutConstant:   millis(t.WriteTotalConstant),
	}
	if r, _, err := procSetCommTimeouts.Call(uintptr(h.h), uintptr(unsafe.Pointer(&ct))); r == 0 {
		return fmt.Errorf("SetCommTimeouts: %w", err)
	}
	return nil
}

func (h *windowsHandle) read(p []byte) (int, error) {
	if h.closing.Load() {
		return 0, ErrPortClosed
	}
	var n uint32
	if err := windows.ReadFile(h.h, p, &n, nil); err != nil {
		if h.closing.Load() {
			return int(n), ErrPortClosed
		}
		return int(n), err
	}
	if n == 0 && h.closing.Load() {
		return 0, ErrPortClosed
	}
	if n == 0 {
		return 0, ErrReadTimeout
	}
	return int(n), nil
}

func (h *windowsHandle) write(p []byte) (int, error) {
	if h.closing.Load() {
		return 0, ErrPortClosed
	}
	var n uint32
	if err := windows.WriteFile(h.h, p, &n, nil); err != nil {
		if h.closing.Load() {
			return int(n), ErrPortClosed
		}
		return int(n), err
	}
	if int(n) < len(p) {
		return int(n), ErrWriteTimeout
	}
	return int(n), nil
}

func (h *windowsHandle) purge() error {
	if r, _, err := procPurgeComm.Call(uintptr(h.h), purgeRxClear|purgeTxClear); r == 0 {
		return fmt.Errorf("PurgeComm: %w", err)
	}
	return nil
}

// interrupt cancels I/O pending on the handle from any thread.
func (h *windowsHandle) interrupt() {
	h.closing.Store(true)
	windows.CancelIoEx(h.h, nil)
}

func (h *windowsHandle) close() error {
	return windows.CloseHandle(h.h)
}
