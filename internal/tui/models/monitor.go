package models

import (
	"context"
	"errors"
	"time"

	"github.com/allbin/go-serialport"
	"github.com/allbin/go-serialport/internal/tui/components"
	"github.com/allbin/go-serialport/internal/tui/keys"
	"github.com/allbin/go-serialport/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Conn is the part of *serialport.Port the monitor drives.
type Conn interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Flush() error
	Name() string
	Config() serialport.Config
}

// readStoppedMsg ends the read loop.
type readStoppedMsg struct{ err error }

type tickMsg time.Time

// Options tune the initial display of a Monitor.
type Options struct {
	Display components.DisplayMode
	Newline bool
}

// Monitor is the bubbletea model of the monitor command. It reads the port
// in a command loop and writes lines typed in insert mode.
type Monitor struct {
	conn   Conn
	buf    []byte
	ctx    context.Context
	cancel context.CancelFunc

	terminal  *components.Terminal
	statusBar *components.StatusBar
	input     *components.Input
	help      help.Model
	keys      keys.MonitorKeys

	insert bool
	ready  bool
}

func NewMonitor(conn Conn, opts Options) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	sb := components.NewStatusBar(conn.Name(), conn.Config())
	sb.SetOpen()

	return &Monitor{
		conn:      conn,
		buf:       make([]byte, 4096),
		ctx:       ctx,
		cancel:    cancel,
		terminal:  components.NewTerminal(80, 20, opts.Display),
		statusBar: sb,
		input:     components.NewInput(opts.Newline),
		help:      help.New(),
		keys:      keys.NewMonitorKeys(),
	}
}

// Stop ends the read loop. The caller still owns and closes the port.
func (m *Monitor) Stop() {
	m.cancel()
}

func (m *Monitor) Init() tea.Cmd {
	return tea.Batch(m.readNext(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// readNext waits for the next chunk of data. Read timeouts are the idle case
// and keep the loop waiting.
func (m *Monitor) readNext() tea.Cmd {
	return func() tea.Msg {
		for {
			if err := m.ctx.Err(); err != nil {
				return readStoppedMsg{}
			}
			n, err := m.conn.Read(m.buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, m.buf[:n])
				return components.Frame{Time: time.Now(), Direction: components.RX, Data: data}
			}
			switch {
			case err == nil, errors.Is(err, serialport.ErrReadTimeout):
				continue
			case m.ctx.Err() != nil:
				return readStoppedMsg{}
			default:
				return readStoppedMsg{err: err}
			}
		}
	}
}

func (m *Monitor) send(data []byte) tea.Cmd {
	return func() tea.Msg {
		n, err := m.conn.Write(data)
		return components.Frame{
			Time:      time.Now(),
			Direction: components.TX,
			Data:      data,
			Written:   n,
			Err:       err,
		}
	}
}

func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		return m, tick()

	case components.Frame:
		m.terminal.Append(msg)
		if msg.Direction == components.RX {
			m.statusBar.Count(len(msg.Data), 0)
			return m, m.readNext()
		}
		m.statusBar.Count(0, msg.Written)
		return m, nil

	case readStoppedMsg:
		if msg.err != nil {
			m.statusBar.SetError(msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		if m.insert {
			return m, m.updateInsert(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m *Monitor) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.InsertMode):
		m.insert = true
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Clear):
		m.terminal.Clear()
	case key.Matches(msg, m.keys.Flush):
		if err := m.conn.Flush(); err != nil {
			m.statusBar.SetError(err)
		}
	case key.Matches(msg, m.keys.ToggleHex):
		m.terminal.Formatter().ToggleHex()
		m.terminal.Refresh()
	case key.Matches(msg, m.keys.ToggleASCII):
		m.terminal.Formatter().ToggleASCII()
		m.terminal.Refresh()
	case key.Matches(msg, m.keys.ToggleTimestamps):
		m.terminal.Formatter().ToggleTimestamps()
		m.terminal.Refresh()
	}
	return m, nil
}

func (m *Monitor) updateInsert(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.Type == tea.KeyCtrlC:
		m.Stop()
		return tea.Quit
	case key.Matches(msg, m.keys.Escape):
		m.insert = false
		m.input.Blur()
		return nil
	case key.Matches(msg, m.keys.ToggleSendMode):
		m.input.ToggleMode()
		return nil
	case key.Matches(msg, m.keys.HistoryUp):
		m.input.HistoryUp()
		return nil
	case key.Matches(msg, m.keys.HistoryDown):
		m.input.HistoryDown()
		return nil
	case key.Matches(msg, m.keys.Send):
		data, err := m.input.Take()
		if err != nil {
			m.statusBar.SetError(err)
			return nil
		}
		if len(data) == 0 {
			return nil
		}
		return m.send(data)
	}
	return m.input.Update(msg)
}

func (m *Monitor) resize(width, height int) {
	// status bar, input box (three lines) and the content border
	m.terminal.SetSize(width, height-5)
	m.statusBar.SetWidth(width)
	m.input.SetWidth(width)
	m.help.Width = width
	m.ready = true
}

func (m *Monitor) View() string {
	content := "Initializing..."
	if m.ready {
		content = m.terminal.View()
	}

	sections := []string{
		styles.ContentBorderStyle.Render(content),
		m.input.View(m.insert),
	}
	if m.help.ShowAll {
		sections = append(sections, styles.HelpStyle.Render(m.help.View(m.keys)))
	}
	sections = append(sections,
		m.statusBar.Render(m.insert, m.input.Mode(), time.Now().Format("15:04:05")))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
