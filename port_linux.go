//go:build linux

package serialport

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

const (
	devicePathPrefix   = "/dev/"
	standardPrefix     = "ttyS"
	firstStandardIndex = 0

	// Stat is cheaper than open for the many ttyS nodes that do not exist.
	precheckCharDevice = true
)

// Not exported by x/sys for every linux arch.
const tcCMSPAR uint32 = 0x40000000

func isAbsDevicePath(name string) bool {
	return strings.HasPrefix(name, "/")
}

var baudRates = map[int]uint32{
	50:      unix.B50,
	75:      unix.B75,
	110:     unix.B110,
	134:     unix.B134,
	150:     unix.B150,
	200:     unix.B200,
	300:     unix.B300,
	600:     unix.B600,
	1200:    unix.B1200,
	1800:    unix.B1800,
	2400:    unix.B2400,
	4800:    unix.B4800,
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	500000:  unix.B500000,
	576000:  unix.B576000,
	921600:  unix.B921600,
	1000000: unix.B1000000,
	1152000: unix.B1152000,
	1500000: unix.B1500000,
	2000000: unix.B2000000,
	2500000: unix.B2500000,
	3000000: unix.B3000000,
	3500000: unix.B3500000,
	4000000: unix.B4000000,
}

var dataBitsFlags = map[int]uint32{
	5: unix.CS5,
	6: unix.CS6,
	7: unix.CS7,
	8: unix.CS8,
}

// unixHandle is a tty opened non-blocking; reads and writes are bounded with
// poll(2) to reproduce the COMMTIMEOUTS behaviour. wake is an eventfd polled
// alongside the tty so interrupt can end a wait.
type unixHandle struct {
	fd       int
	wake     int
	termios  *unix.Termios
	timeouts Timeouts
}

// wakeValue is any non-zero eventfd counter increment.
var wakeValue = []byte{1, 0, 0, 0, 0, 0, 0, 0}

func openNative(path string) (handle, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, classifyOpenError(err)
	}

	// Exclusive access: flock covers cooperating programs, TIOCEXCL the rest.
	// Root bypasses TIOCEXCL on open, so a flag already set means another
	// holder.
	if err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		unix.Close(fd)
		return nil, classifyOpenError(err)
	}
	excl, err := unix.IoctlGetInt(fd, unix.TIOCGEXCL)
	if err != nil {
		unix.Close(fd)
		return nil, classifyOpenError(err)
	}
	if excl != 0 {
		unix.Close(fd)
		return nil, classifyOpenError(unix.EBUSY)
	}
	if err := unix.IoctlSetInt(fd, unix.TIOCEXCL, 0); err != nil {
		unix.Close(fd)
		return nil, classifyOpenError(err)
	}

	wake, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.IoctlSetInt(fd, unix.TIOCNXCL, 0)
		unix.Close(fd)
		return nil, err
	}

	return &unixHandle{fd: fd, wake: wake, timeouts: DefaultTimeouts()}, nil
}

func classifyOpenError(err error) error {
	switch {
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENXIO), errors.Is(err, unix.ENODEV):
		return fmt.Errorf("%w: %w", ErrDeviceNotFound, err)
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	case errors.Is(err, unix.EBUSY), errors.Is(err, unix.EWOULDBLOCK):
		return fmt.Errorf("%w: %w", ErrDeviceInUse, err)
	default:
		return err
	}
}

func (h *unixHandle) getLine() (Line, error) {
	t, err := unix.IoctlGetTermios(h.fd, unix.TCGETS)
	if err != nil {
		return Line{}, err
	}
	h.termios = t
	return decodeTermios(t), nil
}

func decodeTermios(t *unix.Termios) Line {
	var line Line

	if speed := t.Cflag & unix.CBAUD; speed == unix.BOTHER {
		line.BaudRate = int(t.Ospeed)
	} else {
		for rate, flag := range baudRates {
			if flag == speed {
				line.BaudRate = rate
				break
			}
		}
	}

	for bits, flag := range dataBitsFlags {
		if t.Cflag&unix.CSIZE == flag {
			line.DataBits = bits
			break
		}
	}

	if t.Cflag&unix.CSTOPB != 0 {
		line.StopBits = StopBitsTwo
	}

	switch {
	case t.Cflag&unix.PARENB == 0:
		line.Parity = ParityNone
	case t.Cflag&tcCMSPAR != 0 && t.Cflag&unix.PARODD != 0:
		line.Parity = ParityMark
	case t.Cflag&tcCMSPAR != 0:
		line.Parity = ParitySpace
	case t.Cflag&unix.PARODD != 0:
		line.Parity = ParityOdd
	default:
		line.Parity = ParityEven
	}
	return line
}

func (h *unixHandle) setLine(line Line) error {
	if h.termios == nil {
		if _, err := h.getLine(); err != nil {
			return err
		}
	}
	t := *h.termios

	// Raw mode: no input, output or line processing
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON | unix.IXOFF | unix.IXANY
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CRTSCTS
	t.Cflag |= unix.CREAD | unix.CLOCAL

	// Reads are bounded by poll. On the non-blocking fd VMIN=1 turns an
	// empty read into EAGAIN instead of 0, so 0 only means hangup.
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0

	size, ok := dataBitsFlags[line.DataBits]
	if !ok {
		return fmt.Errorf("%w: %d data bits", ErrInvalidConfig, line.DataBits)
	}
	t.Cflag &^= unix.CSIZE
	t.Cflag |= size

	switch line.StopBits {
	case StopBitsOne:
		t.Cflag &^= unix.CSTOPB
	case StopBitsTwo:
		t.Cflag |= unix.CSTOPB
	default:
		return fmt.Errorf("%w: %s stop bits", ErrInvalidConfig, line.StopBits)
	}

	t.Cflag &^= unix.PARENB | unix.PARODD | tcCMSPAR
	switch line.Parity {
	case ParityNone:
	case ParityOdd:
		t.Cflag |= unix.PARENB | unix.PARODD
	case ParityEven:
		t.Cflag |= unix.PARENB
	case ParityMark:
		t.Cflag |= unix.PARENB | unix.PARODD | tcCMSPAR
	case ParitySpace:
		t.Cflag |= unix.PARENB | tcCMSPAR
	default:
		return fmt.Errorf("%w: parity %d", ErrInvalidConfig, int(line.Parity))
	}

	if speed, ok := baudRates[line.BaudRate]; ok {
		t.Cflag = (t.Cflag &^ unix.CBAUD) | speed
		t.Ispeed = speed
		t.Ospeed = speed
		if err := unix.IoctlSetTermios(h.fd, unix.TCSETS, &t); err != nil {
			return err
		}
	} else {
		// Non-standard rates go through termios2
		if line.BaudRate <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidBaudRate, line.BaudRate)
		}
		t.Cflag = (t.Cflag &^ unix.CBAUD) | unix.BOTHER
		t.Ispeed = uint32(line.BaudRate)
		t.Ospeed = uint32(line.BaudRate)
		if err := unix.IoctlSetTermios(h.fd, unix.TCSETS2, &t); err != nil {
			return err
		}
	}

	h.termios = &t
	return nil
}

func (h *unixHandle) setTimeouts(t Timeouts) error {
	h.timeouts = t
	return nil
}

// poll waits for events on the descriptor. A negative wait blocks
// indefinitely. It reports false on timeout and ErrPortClosed once interrupt
// has been called.
func (h *unixHandle) poll(events int16, wait time.Duration) (bool, error) {
	ms := -1
	if wait >= 0 {
		ms = int(wait / time.Millisecond)
		if ms == 0 && wait > 0 {
			ms = 1
		}
	}

	fds := []unix.PollFd{
		{Fd: int32(h.fd), Events: events},
		{Fd: int32(h.wake), Events: unix.POLLIN},
	}
	for {
		n, err := unix.Poll(fds, ms)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return false, err
		}
		if fds[1].Revents != 0 {
			return false, ErrPortClosed
		}
		return n > 0, nil
	}
}

// interrupt leaves the eventfd readable, so every later poll returns at once.
func (h *unixHandle) interrupt() {
	unix.Write(h.wake, wakeValue)
}

func (h *unixHandle) read(p []byte) (int, error) {
	var deadline time.Time
	if budget := h.timeouts.readBudget(len(p)); budget > 0 {
		deadline = time.Now().Add(budget)
	}

	n := 0
	for n < len(p) {
		wait := time.Duration(-1)
		if !deadline.IsZero() {
			wait = time.Until(deadline)
			if wait <= 0 {
				break
			}
		}
		// Once data is flowing, a gap longer than the interval ends the read
		if n > 0 && h.timeouts.ReadInterval > 0 && (wait < 0 || h.timeouts.ReadInterval < wait) {
			wait = h.timeouts.ReadInterval
		}

		ready, err := h.poll(unix.POLLIN, wait)
		if errors.Is(err, ErrPortClosed) && n > 0 {
			break
		}
		if err != nil {
			return n, err
		}
		if !ready {
			break
		}

		m, err := unix.Read(h.fd, p[n:])
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			return n, err
		}
		if m == 0 {
			if n > 0 {
				break
			}
			return 0, io.EOF
		}
		n += m
	}

	if n == 0 {
		return 0, ErrReadTimeout
	}
	return n, nil
}

func (h *unixHandle) write(p []byte) (int, error) {
	var deadline time.Time
	if budget := h.timeouts.writeBudget(len(p)); budget > 0 {
		deadline = time.Now().Add(budget)
	}

	n := 0
	for n < len(p) {
		wait := time.Duration(-1)
		if !deadline.IsZero() {
			wait = time.Until(deadline)
			if wait <= 0 {
				return n, ErrWriteTimeout
			}
		}

		ready, err := h.poll(unix.POLLOUT, wait)
		if err != nil {
			return n, err
		}
		if !ready {
			return n, ErrWriteTimeout
		}

		m, err := unix.Write(h.fd, p[n:])
		if m > 0 {
			n += m
		}
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			return n, err
		}
	}
	return n, nil
}

func (h *unixHandle) purge() error {
	return unix.IoctlSetInt(h.fd, unix.TCFLSH, unix.TCIOFLUSH)
}

func (h *unixHandle) close() error {
	// openNative refuses ttys that were already exclusive, so the flag is ours
	unix.IoctlSetInt(h.fd, unix.TIOCNXCL, 0)
	unix.Close(h.wake)
	return unix.Close(h.fd)
}
