//go:build !linux && !windows

package serialport

import "strings"

const (
	devicePathPrefix   = "/dev/"
	standardPrefix     = "tty"
	firstStandardIndex = 0
	precheckCharDevice = true
)

func isAbsDevicePath(name string) bool {
	return strings.HasPrefix(name, "/")
}

func openNative(path string) (handle, error) {
	return nil, ErrNotImplemented
}
