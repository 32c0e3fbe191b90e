package serialport

import (
	"runtime"
	"testing"
)

func TestIsCharacterDevice(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("device nodes are unix only")
	}

	tests := []struct {
		path     string
		expected bool
	}{
		{"/dev/null", true},     // Should exist and be a character device
		{"/dev/zero", true},     // Should exist and be a character device
		{"/tmp", false},         // Directory, not character device
		{"/nonexistent", false}, // Doesn't exist
	}

	for _, test := range tests {
		result := isCharacterDevice(test.path)
		if result != test.expected {
			t.Errorf("isCharacterDevice(%s) = %v, expected %v", test.path, result, test.expected)
		}
	}
}

func TestDescription(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"COM3", "Communications Port"},
		{"ttyUSB0", "USB Serial Port"},
		{"ttyACM0", "USB CDC/ACM Device"},
		{"ttyS0", "Standard Serial Port"},
		{"ttyAMA0", "ARM Serial Port"},
		{"ttymxc0", "i.MX Serial Port"},
		{"ttyO0", "OMAP Serial Port"},
		{"ttySAC0", "Samsung Serial Port"},
		{"ttyTHS0", "Tegra Serial Port"},
		{devicePathPrefix + "ttyUSB1", "USB Serial Port"},
		{"unknown", "Serial Port"},
	}

	for _, test := range tests {
		result := Description(test.name)
		if result != test.expected {
			t.Errorf("Description(%s) = %s, expected %s", test.name, result, test.expected)
		}
	}
}

func TestPortIndex(t *testing.T) {
	tests := []struct {
		name     string
		expected int
	}{
		{"COM1", 1},
		{"COM256", 256},
		{"ttyS0", 0},
		{"ttyUSB12", 12},
		{"ttyS", -1},
		{"", -1},
	}

	for _, test := range tests {
		if result := portIndex(test.name); result != test.expected {
			t.Errorf("portIndex(%q) = %d, expected %d", test.name, result, test.expected)
		}
	}
}

func TestSortByIndex(t *testing.T) {
	names := sortByIndex([]string{"COM10", "COM2", "COM1", "COM10", "console", "COM100"})
	expected := []string{"COM1", "COM2", "COM10", "COM100", "console"}

	if len(names) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("Expected %s at %d, got %s", expected[i], i, names[i])
		}
	}
}

func TestStandardPortName(t *testing.T) {
	if got := StandardPortName("COM", 3); got != "COM3" {
		t.Errorf("Expected COM3, got %s", got)
	}
}
