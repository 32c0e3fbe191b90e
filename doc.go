// Package serialport is a thin wrapper around the operating system's serial
// port primitives: open a named port with baud rate, data bits, stop bits and
// parity, read and write raw bytes under short fixed timeouts, flush queued
// I/O and find the ports that can be opened right now.
//
// Windows (COMn through CreateFile and the comm API) and Linux (ttySn and
// friends through termios) are supported.
//
// # Basic Usage
//
// Open a port with the default configuration (9600 8N1):
//
//	port := serialport.New()
//	if err := port.Open("COM3"); err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	n, err := port.Write([]byte("Hello"))
//	buffer := make([]byte, 256)
//	n, err = port.Read(buffer)
//
// Names are mapped to device paths by prefixing the platform namespace
// (\\.\COM3, /dev/ttyUSB0). Absolute paths are used as given.
//
// # Configuration Options
//
// Use functional options, either as defaults for every Open or per call:
//
//	port := serialport.New(serialport.WithBaudRate(115200))
//	err := port.Open("ttyUSB0",
//	    serialport.WithParity(serialport.ParityEven),
//	    serialport.WithStopBits(serialport.StopBitsTwo),
//	)
//
// Line settings are handed to the OS unchanged; an unsupported combination
// fails Open with ErrConfig and leaves the port closed.
//
// # Timeouts
//
// Every read waits at most 15ms for data and returns once the line has been
// idle for 1ms after the first byte. Every write is bounded by 50ms. Both are
// overridable:
//
//	serialport.WithReadTimeouts(10*time.Millisecond, time.Second)
//	serialport.WithWriteTimeout(500*time.Millisecond)
//
// A read that received nothing returns ErrReadTimeout. A write the port could
// not finish in time returns the bytes accepted and ErrWriteTimeout. Neither
// is retried. A zero total budget waits without bound; Close from another
// goroutine ends such a wait with ErrPortClosed.
//
// # Port Discovery
//
// ListPorts opens and immediately closes each standard name (COM1..COM256,
// ttyS0..ttyS255) and returns those that opened, sorted by index:
//
//	names, err := serialport.ListPorts(ctx)
//
// An Enumerator can scan other prefixes or ask the OS device registry, which
// also reports USB metadata:
//
//	e := serialport.DefaultEnumerator()
//	e.Method = serialport.MethodRegistry
//	infos, err := e.Details(ctx)
//
// # Flat Handle API
//
// For callers that cannot hold a *Port, a Registry hands out opaque Handles.
// Failures are reported as false or 0, mirroring the exported C functions of
// cmd/libserialport:
//
//	h := serialport.Create()
//	defer serialport.Destroy(h)
//	if serialport.OpenPort(h, "COM3", 9600) {
//	    serialport.WriteData(h, []byte("ping"))
//	}
//
// # Error Handling
//
// Open reports ErrOpen when the device cannot be acquired (also matching
// ErrDeviceNotFound, ErrDeviceInUse or ErrPermissionDenied when the OS says
// why) and ErrConfig when it rejects the settings. I/O failures match ErrIO.
// Use errors.Is:
//
//	if errors.Is(err, serialport.ErrDeviceInUse) {
//	    // another program holds the port
//	}
//
// # Logging
//
// Lifecycle events are logged at debug level through logrus. Route or silence
// them with SetLogger.
package serialport
