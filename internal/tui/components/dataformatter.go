package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/go-serialport/internal/tui/colors"
	"github.com/allbin/go-serialport/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// Direction of a frame relative to the local port
type Direction int

const (
	RX Direction = iota
	TX
)

// Frame is one read or one write shown in the monitor. For TX frames Written
// holds the bytes the port accepted and Err the write outcome.
type Frame struct {
	Time      time.Time
	Direction Direction
	Data      []byte
	Written   int
	Err       error
}

type DisplayMode struct {
	ShowHex        bool
	ShowASCII      bool
	ShowTimestamps bool
}

type DataFormatter struct {
	mode DisplayMode
}

func NewDataFormatter(mode DisplayMode) *DataFormatter {
	return &DataFormatter{mode: mode}
}

func (df *DataFormatter) Mode() DisplayMode {
	return df.mode
}

func (df *DataFormatter) ToggleHex() { df.mode.ShowHex = !df.mode.ShowHex }
func (df *DataFormatter) ToggleASCII() { df.mode.ShowASCII = !df.mode.ShowASCII }
func (df *DataFormatter) ToggleTimestamps() { df.mode.ShowTimestamps = !df.mode.ShowTimestamps }

// Printable replaces bytes outside printable ASCII with dots.
func Printable(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func indicator(f Frame) string {
	if f.Direction == RX {
		return lipgloss.NewStyle().Foreground(colors.Sky).Bold(true).Render("↙ RX")
	}

	color, label := colors.Green, "↗ TX ✓"
	switch {
	case f.Err != nil && f.Written > 0:
		color, label = colors.Yellow, fmt.Sprintf("↗ TX %d/%d", f.Written, len(f.Data))
	case f.Err != nil:
		color, label = colors.Red, "↗ TX ✗"
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(label)
}

func (df *DataFormatter) Format(f Frame) string {
	var parts []string
	if df.mode.ShowHex {
		parts = append(parts, fmt.Sprintf("HEX: % X", f.Data))
	}
	if df.mode.ShowASCII {
		parts = append(parts, "ASCII: "+Printable(f.Data))
	}
	if !df.mode.ShowHex && !df.mode.ShowASCII {
		parts = append(parts, fmt.Sprintf("BYTES: %d", len(f.Data)))
	}
	if f.Err != nil {
		parts = append(parts, lipgloss.NewStyle().Foreground(colors.Red).Render(f.Err.Error()))
	}

	line := indicator(f) + ": " + strings.Join(parts, "  ")
	if df.mode.ShowTimestamps {
		line = styles.TimestampStyle.Render(f.Time.Format("[15:04:05.000]")) + " " + line
	}
	return line
}

func (df *DataFormatter) FormatAll(frames []Frame) []string {
	lines := make([]string, len(frames))
	for i, f := range frames {
		lines[i] = df.Format(f)
	}
	return lines
}
