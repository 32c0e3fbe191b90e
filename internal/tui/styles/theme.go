package styles

import (
	"github.com/allbin/go-serialport/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(1, 2).
			Margin(1, 0)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext0)

	// Status bar sections
	ModeNormalStyle = lipgloss.NewStyle().
			Foreground(colors.Base).
			Background(colors.Blue).
			Bold(true).
			Padding(0, 1)

	ModeInsertStyle = lipgloss.NewStyle().
			Foreground(colors.Base).
			Background(colors.Green).
			Bold(true).
			Padding(0, 1)

	PortStyle = lipgloss.NewStyle().
			Foreground(colors.Mauve).
			Bold(true).
			Padding(0, 1)

	DetailStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext0).
			Padding(0, 1)

	ClockStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext1).
			Padding(0, 1)

	DividerStyle = lipgloss.NewStyle().
			Foreground(colors.Surface2).
			Padding(0, 1)

	BarStyle = lipgloss.NewStyle().
			Foreground(colors.Text).
			Background(colors.Surface0)
)

type StatusType int

const (
	StatusOpen StatusType = iota
	StatusClosed
	StatusError
)

// Indicator returns the single-character state marker for the status bar.
func Indicator(status StatusType) string {
	switch status {
	case StatusOpen:
		return lipgloss.NewStyle().Foreground(colors.Green).Render("●")
	case StatusError:
		return lipgloss.NewStyle().Foreground(colors.Red).Render("✗")
	default:
		return lipgloss.NewStyle().Foreground(colors.Yellow).Render("○")
	}
}
