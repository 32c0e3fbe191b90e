package components

import (
	"fmt"

	"github.com/allbin/go-serialport"
	"github.com/allbin/go-serialport/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// StatusBar is the single bottom line of the monitor: mode, port, state,
// line settings and clock.
type StatusBar struct {
	port   string
	config serialport.Config
	status styles.StatusType
	err    error
	rx, tx int
	width  int
}

func NewStatusBar(port string, config serialport.Config) *StatusBar {
	return &StatusBar{
		port:   port,
		config: config,
		status: styles.StatusClosed,
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetOpen() {
	sb.status = styles.StatusOpen
	sb.err = nil
}

func (sb *StatusBar) SetError(err error) {
	sb.status = styles.StatusError
	sb.err = err
}

func (sb *StatusBar) Err() error {
	return sb.err
}

// Count adds to the received and transmitted byte totals.
func (sb *StatusBar) Count(rx, tx int) {
	sb.rx += rx
	sb.tx += tx
}

func (sb *StatusBar) Render(insert bool, sendMode SendingMode, clock string) string {
	width := sb.width
	if width <= 0 {
		width = 80
	}

	mode := styles.ModeNormalStyle.Render("NORMAL")
	if insert {
		mode = styles.ModeInsertStyle.Render("INSERT " + sendMode.String())
	}
	divider := styles.DividerStyle.Render("│")

	left := lipgloss.JoinHorizontal(lipgloss.Left,
		mode,
		styles.PortStyle.Render(sb.port),
		styles.Indicator(sb.status),
		divider,
	)

	details := fmt.Sprintf("⚡ %s  rx %d  tx %d", sb.config, sb.rx, sb.tx)
	right := lipgloss.JoinHorizontal(lipgloss.Left,
		styles.DetailStyle.Render(details),
		divider,
		styles.ClockStyle.Render(clock),
	)

	spacer := width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacer < 1 {
		spacer = 1
	}
	content := lipgloss.JoinHorizontal(lipgloss.Left,
		left,
		lipgloss.NewStyle().Width(spacer).Render(""),
		right,
	)
	return styles.BarStyle.Width(width).Render(content)
}
