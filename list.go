package serialport

import (
	"cmp"
	"os"
	"slices"
	"strconv"
	"strings"
)

// PortInfo describes an available port
type PortInfo struct {
	Name         string
	Path         string
	Description  string
	IsUSB        bool
	VendorID     string
	ProductID    string
	SerialNumber string
	Product      string
}

// StandardPortName builds the symbolic name for a numbered port, e.g. COM3.
func StandardPortName(prefix string, index int) string {
	return prefix + strconv.Itoa(index)
}

// symbolicName strips the device namespace from an OS path.
func symbolicName(path string) string {
	return strings.TrimPrefix(path, devicePathPrefix)
}

// portIndex returns the number embedded at the end of a port name, or -1.
func portIndex(name string) int {
	end := len(name)
	start := end
	for start > 0 && name[start-1] >= '0' && name[start-1] <= '9' {
		start--
	}
	if start == end {
		return -1
	}
	n, err := strconv.Atoi(name[start:end])
	if err != nil {
		return -1
	}
	return n
}

// sortByIndex orders names by their embedded index, ascending, and drops
// duplicates. Names without an index sort last.
func sortByIndex(names []string) []string {
	slices.SortStableFunc(names, func(a, b string) int {
		ia, ib := portIndex(a), portIndex(b)
		if ia < 0 {
			ia = int(^uint(0) >> 1)
		}
		if ib < 0 {
			ib = int(^uint(0) >> 1)
		}
		if c := cmp.Compare(ia, ib); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return slices.Compact(names)
}

// isCharacterDevice checks if the given path is a character device
func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	// Check if it's a character device
	mode := info.Mode()
	return mode&os.ModeCharDevice != 0
}

// Description provides a human-readable description for a port name
func Description(name string) string {
	name = symbolicName(name)
	switch {
	case strings.HasPrefix(name, "COM"):
		return "Communications Port"
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	default:
		return "Serial Port"
	}
}
