/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/allbin/go-serialport/internal/tui/components"
	"github.com/allbin/go-serialport/internal/tui/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor <port>",
	Short: "Watch and send data on a serial port in a terminal UI",
	Long: `Open a serial port and display incoming data in real time.

Features include:
- Received and sent data with timestamps
- ASCII and hex display modes
- Insert mode (i) for sending ASCII or hex lines, with history
- Flushing queued I/O (f)
- Byte counters and line settings in the status bar

Example usage:
  serialport monitor COM3
  serialport monitor ttyUSB0 --baud 115200 --newline`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		noTimestamps, _ := cmd.Flags().GetBool("no-timestamps")
		hexOnly, _ := cmd.Flags().GetBool("hex-only")
		newline, _ := cmd.Flags().GetBool("newline")

		if err := runMonitor(args[0], models.Options{
			Display: components.DisplayMode{
				ShowHex:        true,
				ShowASCII:      !hexOnly,
				ShowTimestamps: !noTimestamps,
			},
			Newline: newline,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().Bool("no-timestamps", false, "Hide timestamps")
	monitorCmd.Flags().Bool("hex-only", false, "Show only the hex column")
	monitorCmd.Flags().BoolP("newline", "n", false, "Append a newline to lines sent in ASCII mode")
}

func runMonitor(name string, opts models.Options) error {
	port, err := openPort(name)
	if err != nil {
		return err
	}
	defer port.Close()

	m := models.NewMonitor(port, opts)
	defer m.Stop()

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
