/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	"github.com/allbin/go-serialport"
	"github.com/spf13/cobra"
)

// countCmd represents the count command
var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of available standard ports",
	Long: `Print how many standard serial ports can be opened right now.

Runs a fresh probe of all standard port names on every call, the same scan
the shared library performs for GetPortsCount.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(serialport.GetPortsCount())
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
}
