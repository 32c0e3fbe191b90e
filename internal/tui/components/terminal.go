package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
)

// maxFrames bounds the scrollback kept by a Terminal.
const maxFrames = 2000

// Terminal is a scrolling view of frames that follows the newest one.
type Terminal struct {
	viewport  viewport.Model
	formatter *DataFormatter
	frames    []Frame
	lines     []string
}

func NewTerminal(width, height int, mode DisplayMode) *Terminal {
	return &Terminal{
		viewport:  viewport.New(width, height),
		formatter: NewDataFormatter(mode),
	}
}

func (t *Terminal) SetSize(width, height int) {
	if height < 1 {
		height = 1
	}
	t.viewport.Width = width
	t.viewport.Height = height
	t.show()
}

func (t *Terminal) Append(f Frame) {
	t.frames = append(t.frames, f)
	t.lines = append(t.lines, t.formatter.Format(f))
	if len(t.frames) > maxFrames {
		drop := len(t.frames) - maxFrames
		t.frames = t.frames[drop:]
		t.lines = t.lines[drop:]
	}
	t.show()
}

func (t *Terminal) Frames() []Frame {
	return t.frames
}

func (t *Terminal) Clear() {
	t.frames = nil
	t.lines = nil
	t.show()
}

func (t *Terminal) Formatter() *DataFormatter {
	return t.formatter
}

// Refresh re-formats every frame, e.g. after the display mode changed.
func (t *Terminal) Refresh() {
	t.lines = t.formatter.FormatAll(t.frames)
	t.show()
}

func (t *Terminal) show() {
	t.viewport.SetContent(strings.Join(t.lines, "\n"))
	t.viewport.GotoBottom()
}

func (t *Terminal) View() string {
	return t.viewport.View()
}
