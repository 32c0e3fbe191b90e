package components

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/allbin/go-serialport/internal/tui/colors"
	"github.com/allbin/go-serialport/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type SendingMode int

const (
	SendingModeASCII SendingMode = iota
	SendingModeHex
)

func (s SendingMode) String() string {
	if s == SendingModeHex {
		return "HEX"
	}
	return "ASCII"
}

const maxHistory = 100

// Input is the line editor used to send data from the monitor.
type Input struct {
	textInput textinput.Model
	mode      SendingMode
	newline   bool

	history []string
	// position in history while browsing, -1 when editing a new line
	cursor int
	draft  string
	width  int
}

func NewInput(newline bool) *Input {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 512
	ti.Placeholder = "Type data and press Enter to send..."

	return &Input{
		textInput: ti,
		newline:   newline,
		cursor:    -1,
	}
}

func (i *Input) SetWidth(width int) {
	i.width = width
	// border, padding, prompt and the space after it
	i.textInput.Width = max(width-6, 20)
}

func (i *Input) Focus() tea.Cmd {
	return i.textInput.Focus()
}

func (i *Input) Blur() {
	i.textInput.Blur()
}

func (i *Input) Mode() SendingMode {
	return i.mode
}

func (i *Input) ToggleMode() {
	if i.mode == SendingModeASCII {
		i.mode = SendingModeHex
		i.textInput.Placeholder = "Enter hex, e.g. 48 65 6C 6C 6F..."
	} else {
		i.mode = SendingModeASCII
		i.textInput.Placeholder = "Type data and press Enter to send..."
	}
}

// Take converts the current line to bytes, records it in the history and
// clears the editor. An empty line yields nil.
func (i *Input) Take() ([]byte, error) {
	line := i.textInput.Value()
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}

	var data []byte
	if i.mode == SendingModeHex {
		decoded, err := DecodeHex(line)
		if err != nil {
			return nil, err
		}
		data = decoded
	} else {
		data = []byte(line)
		if i.newline {
			data = append(data, '\n')
		}
	}

	i.remember(line)
	i.textInput.SetValue("")
	return data, nil
}

// DecodeHex accepts hex digits with optional spaces and 0x prefixes.
func DecodeHex(s string) ([]byte, error) {
	s = strings.NewReplacer(" ", "", "0x", "", "0X", "").Replace(s)
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return data, nil
}

func (i *Input) remember(line string) {
	if n := len(i.history); n == 0 || i.history[n-1] != line {
		i.history = append(i.history, line)
		if len(i.history) > maxHistory {
			i.history = i.history[1:]
		}
	}
	i.cursor = -1
	i.draft = ""
}

func (i *Input) HistoryUp() {
	if len(i.history) == 0 {
		return
	}
	if i.cursor == -1 {
		i.draft = i.textInput.Value()
		i.cursor = len(i.history) - 1
	} else if i.cursor > 0 {
		i.cursor--
	}
	i.textInput.SetValue(i.history[i.cursor])
}

func (i *Input) HistoryDown() {
	if i.cursor == -1 {
		return
	}
	if i.cursor < len(i.history)-1 {
		i.cursor++
		i.textInput.SetValue(i.history[i.cursor])
		return
	}
	i.cursor = -1
	i.textInput.SetValue(i.draft)
	i.draft = ""
}

func (i *Input) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return cmd
}

func (i *Input) View(insert bool) string {
	symbol, color := ">", colors.Green
	if i.mode == SendingModeHex {
		symbol, color = "#", colors.Yellow
	}
	prompt := lipgloss.NewStyle().Foreground(color).Bold(true).Render(symbol)

	content := lipgloss.NewStyle().Foreground(colors.Overlay0).Render("Press 'i' to send data")
	if insert {
		content = i.textInput.View()
	}

	style := styles.InputStyle.Width(max(i.width-4, 10))
	if insert {
		style = style.BorderForeground(colors.Green)
	}
	return style.Render(lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", content))
}
