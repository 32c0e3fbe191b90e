// Command libserialport builds the flat port API as a C shared library:
//
//	go build -buildmode=c-shared -o serialport.dll ./cmd/libserialport
//
// Port handles cross the boundary as uintptr_t registry ids, which C callers
// may store in a void*. They are never Go pointers.
package main

/*
#include <stdbool.h>
#include <stdint.h>
*/
import "C"

import (
	"unsafe"

	"github.com/allbin/go-serialport"
)

//export CreateSerialPort
func CreateSerialPort() C.uintptr_t {
	return C.uintptr_t(serialport.Create())
}

//export DestroySerialPort
func DestroySerialPort(port C.uintptr_t) {
	serialport.Destroy(serialport.Handle(port))
}

//export OpenPort
func OpenPort(port C.uintptr_t, portName *C.char, baudRate C.int) C.int {
	if portName == nil {
		return 0
	}
	if serialport.OpenPort(serialport.Handle(port), C.GoString(portName), int(baudRate)) {
		return 1
	}
	return 0
}

//export ClosePort
func ClosePort(port C.uintptr_t) {
	serialport.ClosePort(serialport.Handle(port))
}

//export WriteData
func WriteData(port C.uintptr_t, data *C.char, length C.int) C.int {
	if data == nil || length <= 0 {
		return 0
	}
	buf := C.GoBytes(unsafe.Pointer(data), length)
	return C.int(serialport.WriteData(serialport.Handle(port), buf))
}

//export ReadData
func ReadData(port C.uintptr_t, buffer *C.char, bufferSize C.int) C.int {
	if buffer == nil || bufferSize <= 0 {
		return 0
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(buffer)), int(bufferSize))
	return C.int(serialport.ReadData(serialport.Handle(port), buf))
}

//export IsPortOpen
func IsPortOpen(port C.uintptr_t) C.int {
	if serialport.IsPortOpen(serialport.Handle(port)) {
		return 1
	}
	return 0
}

//export FlushPort
func FlushPort(port C.uintptr_t) {
	serialport.FlushPort(serialport.Handle(port))
}

//export GetPortsCount
func GetPortsCount() C.int {
	return C.int(serialport.GetPortsCount())
}

//export GetPortName
func GetPortName(index C.int, buffer *C.char, bufferSize C.int) C.bool {
	if buffer == nil || bufferSize <= 0 {
		return false
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(buffer)), int(bufferSize))
	return C.bool(serialport.GetPortName(int(index), buf))
}

func main() {}
