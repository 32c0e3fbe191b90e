/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/allbin/go-serialport"
	"github.com/spf13/cobra"
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <port>",
	Short: "Read data from a serial port",
	Long: `Read incoming data from a serial port and write it to stdout or a file.

Each read waits at most the read timeout (--read-timeout, 15ms by default);
reads that time out are simply retried. Reading stops after --duration, once
--count bytes arrived, or on Ctrl+C.

The output file is opened in append mode, allowing you to resume captures
without overwriting existing data.

Example usage:
  serialport read COM3
  serialport read ttyUSB0 --output capture.log --baud 115200
  serialport read COM3 --count 16 --hex
  serialport read COM3 --duration 10s`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		duration, _ := cmd.Flags().GetDuration("duration")
		count, _ := cmd.Flags().GetInt("count")
		outputPath, _ := cmd.Flags().GetString("output")
		hexDump, _ := cmd.Flags().GetBool("hex")
		bufferSize, _ := cmd.Flags().GetInt("buffer")
		if bufferSize <= 0 {
			fmt.Fprintf(os.Stderr, "Error: buffer size must be positive\n")
			os.Exit(1)
		}

		ctx := cmd.Context()
		if duration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, duration)
			defer cancel()
		}

		err := runRead(ctx, args[0], outputPath, hexDump, bufferSize, count)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().DurationP("duration", "d", 0, "Stop reading after this long (0 reads until interrupted)")
	readCmd.Flags().IntP("count", "c", 0, "Stop after this many bytes (0 for no limit)")
	readCmd.Flags().StringP("output", "o", "", "Append received data to this file instead of stdout")
	readCmd.Flags().Bool("hex", false, "Write a hex dump instead of raw bytes")
	readCmd.Flags().Int("buffer", 4096, "Read buffer size")
}

func runRead(ctx context.Context, portName, outputPath string, hexDump bool, bufferSize, count int) error {
	port, err := openPort(portName)
	if err != nil {
		return fmt.Errorf("failed to open port: %w", err)
	}
	defer port.Close()

	fmt.Fprintf(os.Stderr, "Reading from %s (%s), press Ctrl+C to stop\n", portName, port.Config())

	start := time.Now()
	total, err := capture(ctx, port, outputPath, hexDump, bufferSize, count)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "\nRead complete: %d bytes in %v\n", total, time.Since(start).Round(time.Millisecond))
	return nil
}

// capture copies reads from r to stdout or the output file. The hex dumper and
// the file are closed before it returns, also on error, so the last dump line
// is always written.
func capture(ctx context.Context, r io.Reader, outputPath string, hexDump bool, bufferSize, count int) (total int, err error) {
	var out io.Writer = os.Stdout
	if outputPath != "" {
		file, ferr := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if ferr != nil {
			return 0, fmt.Errorf("failed to open output file: %w", ferr)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output file: %w", cerr)
			}
		}()
		out = file
	}
	if hexDump {
		dumper := hex.Dumper(out)
		defer func() {
			if cerr := dumper.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("write error: %w", cerr)
			}
		}()
		out = dumper
	}

	buffer := make([]byte, bufferSize)
	for ctx.Err() == nil && (count <= 0 || total < count) {
		want := buffer
		if count > 0 && count-total < len(want) {
			want = buffer[:count-total]
		}

		n, rerr := r.Read(want)
		if n > 0 {
			if _, werr := out.Write(want[:n]); werr != nil {
				return total, fmt.Errorf("write error: %w", werr)
			}
			total += n
		}
		if rerr != nil && !errors.Is(rerr, serialport.ErrReadTimeout) {
			return total, fmt.Errorf("read error: %w", rerr)
		}
	}
	return total, nil
}
