/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/allbin/go-serialport"
	"github.com/allbin/go-serialport/internal/tui/components"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [data] <port>",
	Short: "Send data to a serial port",
	Long: `Send data to a serial port with a single bounded write.

Data can be provided as:
- Command line argument: send "Hello World" COM3
- From stdin (pipe): echo "test data" | serialport send COM3
- Interactive mode: serialport send COM3 (prompts for input)

The write is bounded by the write timeout (--write-timeout, 50ms by default).
If the port accepts only part of the data before the timeout, the number of
bytes accepted is reported and the rest is not retried.

Example usage:
  serialport send "Hello World" COM3
  serialport send "AT+GMR" ttyUSB0 --newline --baud 115200
  serialport send "48 65 6c 6c 6f" COM3 --hex
  echo "test" | serialport send COM3`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		var data string
		var portName string

		// Parse arguments: either "send data port" or "send port"
		if len(args) == 1 {
			portName = args[0]
			stat, err := os.Stdin.Stat()
			if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
				data = promptForData()
			} else {
				stdinData, err := io.ReadAll(os.Stdin)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error reading from stdin: %v\n", err)
					os.Exit(1)
				}
				data = strings.TrimRight(string(stdinData), "\r\n")
			}
		} else {
			data = args[0]
			portName = args[1]
		}

		addNewline, _ := cmd.Flags().GetBool("newline")
		hexMode, _ := cmd.Flags().GetBool("hex")

		if hexMode {
			decoded, err := components.DecodeHex(data)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			data = string(decoded)
		}

		if addNewline && !hexMode {
			data += "\n"
		}

		if err := sendData(portName, []byte(data)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().BoolP("newline", "n", false, "Add newline character to the end of data")
	sendCmd.Flags().BoolP("hex", "x", false, "Interpret data as hexadecimal (e.g., '48656c6c6f' for 'Hello')")
}

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func promptForData() string {
	fmt.Print(infoStyle.Render("Enter data to send: "))

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}

func sendData(portName string, data []byte) error {
	fmt.Printf("%s Opening %s...\n", infoStyle.Render("⚡"), portName)

	port, err := openPort(portName)
	if err != nil {
		return fmt.Errorf("%s %v", errorStyle.Render("✗"), err)
	}
	defer port.Close()

	fmt.Printf("%s Opened %s (%s)\n", successStyle.Render("✓"), portName, port.Config())
	fmt.Printf("%s Sending %d bytes...\n", infoStyle.Render("📤"), len(data))

	n, err := port.Write(data)
	switch {
	case errors.Is(err, serialport.ErrWriteTimeout):
		fmt.Printf("%s Write timed out: %d of %d bytes accepted\n", warnStyle.Render("⚠"), n, len(data))
	case err != nil:
		return fmt.Errorf("%s failed to send data: %v", errorStyle.Render("✗"), err)
	default:
		fmt.Printf("%s Successfully sent %d bytes\n", successStyle.Render("✓"), n)
	}

	preview := data
	if len(preview) > 50 {
		preview = preview[:50]
	}
	fmt.Printf("%s Data: %s\n", infoStyle.Render("📋"), printable(preview, len(data) > 50))
	return nil
}

// printable replaces non-printable bytes for display
func printable(data []byte, truncated bool) string {
	s := strings.Map(func(r rune) rune {
		if r < 32 || r > 126 {
			return '·'
		}
		return r
	}, string(data))
	if truncated {
		s += "..."
	}
	return s
}
