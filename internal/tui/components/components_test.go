package components

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "48656c6c6f", "Hello", false},
		{"spaced", "48 65 6C 6C 6F", "Hello", false},
		{"prefixed", "0x48 65 6C 6c 6F", "Hello", false},
		{"packed prefixes", "0x480X69", "Hi", false},
		{"empty", "", "", false},
		{"odd length", "486", "", true},
		{"not hex", "zz", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := DecodeHex(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestInputTake(t *testing.T) {
	in := NewInput(true)

	data, err := in.Take()
	require.NoError(t, err)
	assert.Nil(t, data, "empty line")

	in.textInput.SetValue("AT")
	data, err = in.Take()
	require.NoError(t, err)
	assert.Equal(t, []byte("AT\n"), data)
	assert.Equal(t, "", in.textInput.Value())

	in.ToggleMode()
	assert.Equal(t, SendingModeHex, in.Mode())
	in.textInput.SetValue("02 03")
	data, err = in.Take()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x03}, data, "no newline in hex mode")

	in.textInput.SetValue("xyz")
	_, err = in.Take()
	assert.Error(t, err)
	assert.Equal(t, "xyz", in.textInput.Value(), "invalid input is kept for editing")
}

func TestInputHistory(t *testing.T) {
	in := NewInput(false)
	for _, line := range []string{"one", "two", "two"} {
		in.textInput.SetValue(line)
		_, err := in.Take()
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"one", "two"}, in.history)

	in.textInput.SetValue("draft")
	in.HistoryUp()
	assert.Equal(t, "two", in.textInput.Value())
	in.HistoryUp()
	assert.Equal(t, "one", in.textInput.Value())
	in.HistoryUp()
	assert.Equal(t, "one", in.textInput.Value())
	in.HistoryDown()
	assert.Equal(t, "two", in.textInput.Value())
	in.HistoryDown()
	assert.Equal(t, "draft", in.textInput.Value())
}

func TestFormatFrame(t *testing.T) {
	df := NewDataFormatter(DisplayMode{ShowHex: true, ShowASCII: true})
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	line := df.Format(Frame{Time: ts, Direction: RX, Data: []byte("Hi\n")})
	assert.Contains(t, line, "HEX: 48 69 0A")
	assert.Contains(t, line, "ASCII: Hi.")
	assert.NotContains(t, line, "03:04:05")

	df.ToggleTimestamps()
	df.ToggleHex()
	df.ToggleASCII()
	line = df.Format(Frame{Time: ts, Direction: TX, Data: []byte("abcd"), Written: 2, Err: errors.New("write operation timed out")})
	assert.Contains(t, line, "03:04:05.000")
	assert.Contains(t, line, "BYTES: 4")
	assert.Contains(t, line, "2/4")
	assert.True(t, strings.Contains(line, "timed out"))
}

func TestTerminalScrollback(t *testing.T) {
	term := NewTerminal(80, 10, DisplayMode{ShowHex: true})
	for i := 0; i < maxFrames+10; i++ {
		term.Append(Frame{Data: []byte{byte(i)}})
	}
	assert.Len(t, term.Frames(), maxFrames)

	term.Clear()
	assert.Empty(t, term.Frames())
}
