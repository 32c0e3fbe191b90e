/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/allbin/go-serialport"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display information about a serial port",
	Long: `Display what is known about a serial port: its device path, a description,
USB metadata from the OS device registry and whether it can be opened with
the configured line settings right now.

Examples:
  serialport info COM3
  serialport info ttyUSB0 --baud 115200`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		fmt.Printf("Port Information: %s\n\n", name)
		fmt.Printf("  Path:        %s\n", serialport.DevicePath(name))
		fmt.Printf("  Description: %s\n", serialport.Description(name))

		e := serialport.DefaultEnumerator()
		e.Method = serialport.MethodRegistry
		e.Prefix = ""
		infos, err := e.Details(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error querying device registry: %v\n", err)
		}
		for _, info := range infos {
			if info.Name != name || !info.IsUSB {
				continue
			}
			fmt.Println("\nUSB Device Information:")
			fmt.Printf("  Vendor ID:    %s\n", info.VendorID)
			fmt.Printf("  Product ID:   %s\n", info.ProductID)
			if info.SerialNumber != "" {
				fmt.Printf("  Serial:       %s\n", info.SerialNumber)
			}
			if info.Product != "" {
				fmt.Printf("  Product:      %s\n", info.Product)
			}
		}

		port, err := openPort(name)
		if err != nil {
			fmt.Printf("\n  Open:        failed (%v)\n", err)
			os.Exit(1)
		}
		defer port.Close()
		fmt.Printf("\n  Open:        ok, %s\n", port.Config())
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
