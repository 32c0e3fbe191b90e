/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/allbin/go-serialport"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// loopbackCmd represents the loopback command
var loopbackCmd = &cobra.Command{
	Use:   "loopback <port-a> <port-b>",
	Short: "Check a loopback-wired pair of serial ports",
	Long: `Write payloads of increasing size to one port and read them back on the
other, checking that every byte arrives in order without loss or duplication.

Both ports are opened with the same line settings. Payload sizes run from 1 up
to --max bytes.

Example usage:
  serialport loopback COM3 COM4
  serialport loopback ttyUSB0 ttyUSB1 --max 512 --baud 115200`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		maxSize, _ := cmd.Flags().GetInt("max")
		settle, _ := cmd.Flags().GetDuration("settle")
		if maxSize <= 0 {
			fmt.Fprintf(os.Stderr, "Error: --max must be positive\n")
			os.Exit(1)
		}

		if err := runLoopback(cmd.Context(), args[0], args[1], maxSize, settle); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(loopbackCmd)

	loopbackCmd.Flags().Int("max", 256, "Largest payload size to check")
	loopbackCmd.Flags().Duration("settle", time.Second, "How long to wait for a payload to arrive")
}

func runLoopback(ctx context.Context, nameA, nameB string, maxSize int, settle time.Duration) error {
	a, err := openPort(nameA)
	if err != nil {
		return err
	}
	defer a.Close()

	b, err := openPort(nameB)
	if err != nil {
		return err
	}
	defer b.Close()

	a.Flush()
	b.Flush()

	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true)
	failStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	failed := 0
	for size := 1; size <= maxSize; size++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := roundTrip(a, b, payload(size), settle); err != nil {
			failed++
			fmt.Printf("%s %4d bytes: %v\n", failStyle.Render("✗"), size, err)
			b.Flush()
			continue
		}
		fmt.Printf("%s %4d bytes\n", okStyle.Render("✓"), size)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d payload sizes failed", failed, maxSize)
	}
	return nil
}

// payload returns size bytes of a pattern that never repeats within 256 bytes.
func payload(size int) []byte {
	p := make([]byte, size)
	for i := range p {
		p[i] = byte(i*7 + size)
	}
	return p
}

// roundTrip writes data to src and expects exactly the same bytes on dst.
func roundTrip(src, dst *serialport.Port, data []byte, settle time.Duration) error {
	deadline := time.Now().Add(settle)
	sent := 0
	for sent < len(data) && time.Now().Before(deadline) {
		n, err := src.Write(data[sent:])
		sent += n
		if err != nil && !errors.Is(err, serialport.ErrWriteTimeout) {
			return err
		}
	}
	if sent < len(data) {
		return fmt.Errorf("only %d bytes accepted", sent)
	}

	got := make([]byte, 0, len(data))
	buf := make([]byte, len(data))
	for len(got) < len(data) && time.Now().Before(deadline) {
		n, err := dst.Read(buf[:len(data)-len(got)])
		got = append(got, buf[:n]...)
		if err != nil && !errors.Is(err, serialport.ErrReadTimeout) {
			return err
		}
	}

	if len(got) < len(data) {
		return fmt.Errorf("lost %d bytes", len(data)-len(got))
	}
	if !bytes.Equal(got, data) {
		return fmt.Errorf("payload corrupted or out of order")
	}
	// Anything still arriving is a duplicate
	if n, _ := dst.Read(buf[:1]); n > 0 {
		return fmt.Errorf("unexpected extra bytes")
	}
	return nil
}
