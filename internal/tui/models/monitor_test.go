package models

import (
	"sync"
	"testing"

	"github.com/allbin/go-serialport"
	"github.com/allbin/go-serialport/internal/tui/components"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu      sync.Mutex
	rx      [][]byte
	tx      []byte
	flushed int
	readErr error
}

func (c *fakeConn) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return 0, c.readErr
	}
	if len(c.rx) == 0 {
		return 0, serialport.ErrPortClosed
	}
	n := copy(p, c.rx[0])
	c.rx = c.rx[1:]
	return n, nil
}

func (c *fakeConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tx = append(c.tx, p...)
	return len(p), nil
}

func (c *fakeConn) Flush() error {
	c.flushed++
	return nil
}

func (c *fakeConn) Name() string { return "COM7" }
func (c *fakeConn) Config() serialport.Config { return serialport.DefaultConfig() }

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMonitorReceives(t *testing.T) {
	conn := &fakeConn{rx: [][]byte{[]byte("hello")}}
	m := NewMonitor(conn, Options{Display: components.DisplayMode{ShowASCII: true}})

	msg := m.readNext()()
	frame, ok := msg.(components.Frame)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), frame.Data)
	assert.Equal(t, components.RX, frame.Direction)

	_, cmd := m.Update(frame)
	assert.NotNil(t, cmd, "reading continues after data")
	assert.Len(t, m.terminal.Frames(), 1)

	// the fake reports the port closed once drained
	stopped, ok := cmd().(readStoppedMsg)
	require.True(t, ok)
	assert.ErrorIs(t, stopped.err, serialport.ErrPortClosed)
	m.Update(stopped)
	assert.ErrorIs(t, m.statusBar.Err(), serialport.ErrPortClosed)
}

func TestMonitorStopEndsReadLoop(t *testing.T) {
	conn := &fakeConn{readErr: serialport.ErrReadTimeout}
	m := NewMonitor(conn, Options{})
	m.Stop()

	msg := m.readNext()()
	assert.Equal(t, readStoppedMsg{}, msg)
}

func TestMonitorSendsInInsertMode(t *testing.T) {
	conn := &fakeConn{}
	m := NewMonitor(conn, Options{Newline: true})

	m.Update(keyPress("i"))
	require.True(t, m.insert)

	for _, r := range "AT" {
		m.Update(keyPress(string(r)))
	}
	_, cmd := m.Update(keyPress("enter"))
	require.NotNil(t, cmd)

	frame, ok := cmd().(components.Frame)
	require.True(t, ok)
	assert.Equal(t, components.TX, frame.Direction)
	assert.Equal(t, 3, frame.Written)
	assert.Equal(t, []byte("AT\n"), conn.tx)

	m.Update(frame)
	assert.Len(t, m.terminal.Frames(), 1)

	// q types in insert mode and quits only in normal mode
	m.Update(keyPress("q"))
	assert.True(t, m.insert)
	m.Update(keyPress("esc"))
	assert.False(t, m.insert)
	_, cmd = m.Update(keyPress("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestMonitorNormalKeys(t *testing.T) {
	conn := &fakeConn{}
	m := NewMonitor(conn, Options{Display: components.DisplayMode{ShowHex: true}})
	m.terminal.Append(components.Frame{Data: []byte("x")})

	m.Update(keyPress("f"))
	assert.Equal(t, 1, conn.flushed)

	m.Update(keyPress("a"))
	assert.True(t, m.terminal.Formatter().Mode().ShowASCII)

	m.Update(keyPress("c"))
	assert.Empty(t, m.terminal.Frames())

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Contains(t, m.View(), "COM7")
}
