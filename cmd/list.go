/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/allbin/go-serialport"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List the serial ports that can be opened right now.

By default every standard port name (COM1..COM256 on Windows, ttyS0..ttyS255
on Linux) is opened and immediately closed; names that open are listed in
ascending index order. Ports held by another program are not listed.

With --registry the OS device registry is asked instead, which also reports
USB metadata and includes adapters such as ttyUSB* and ttyACM*.

Example usage:
  serialport list
  serialport list --table
  serialport list --registry --table
  serialport list --prefix ttyUSB`,
	Run: func(cmd *cobra.Command, args []string) {
		registry, _ := cmd.Flags().GetBool("registry")
		tableFormat, _ := cmd.Flags().GetBool("table")

		e := listEnumerator(registry)

		if registry {
			infos, err := e.Details(cmd.Context())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
				os.Exit(1)
			}
			if len(infos) == 0 {
				fmt.Println("No serial ports found")
				return
			}
			if tableFormat {
				renderTable(infos, true)
				return
			}
			for _, info := range infos {
				fmt.Println(info.Name)
			}
			return
		}

		names, err := e.List(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}
		if len(names) == 0 {
			fmt.Println("No serial ports found")
			return
		}
		if tableFormat {
			infos := make([]serialport.PortInfo, 0, len(names))
			for _, name := range names {
				infos = append(infos, serialport.PortInfo{
					Name:        name,
					Path:        serialport.DevicePath(name),
					Description: serialport.Description(name),
				})
			}
			renderTable(infos, false)
			return
		}
		for _, name := range names {
			fmt.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("registry", "r", false, "Ask the OS device registry instead of probing names")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a table")
}

// listEnumerator applies the --prefix setting. In registry mode an empty
// prefix lists every port the registry knows.
func listEnumerator(registry bool) serialport.Enumerator {
	e := serialport.DefaultEnumerator()
	prefix := viper.GetString("prefix")
	if registry {
		e.Method = serialport.MethodRegistry
		e.Prefix = prefix
	} else if prefix != "" {
		e.Prefix = prefix
	}
	return e
}

const (
	columnPort    = "port"
	columnPath    = "path"
	columnDesc    = "desc"
	columnUSB     = "usb"
	columnSerial  = "serial"
	columnProduct = "product"
)

// renderTable renders the port list as a static table
func renderTable(infos []serialport.PortInfo, withUSB bool) {
	columns := []table.Column{
		table.NewColumn(columnPort, "Port", 10),
		table.NewColumn(columnPath, "Path", 16),
		table.NewColumn(columnDesc, "Description", 22),
	}
	if withUSB {
		columns = append(columns,
			table.NewColumn(columnUSB, "VID:PID", 11),
			table.NewColumn(columnSerial, "Serial", 16),
			table.NewColumn(columnProduct, "Product", 24),
		)
	}

	rows := make([]table.Row, 0, len(infos))
	for _, info := range infos {
		data := table.RowData{
			columnPort: info.Name,
			columnPath: info.Path,
			columnDesc: info.Description,
		}
		if withUSB && info.IsUSB {
			data[columnUSB] = info.VendorID + ":" + info.ProductID
			data[columnSerial] = info.SerialNumber
			data[columnProduct] = info.Product
		}
		rows = append(rows, table.NewRow(data))
	}

	fmt.Printf("Found %d serial port(s):\n\n", len(infos))
	fmt.Println(table.New(columns).WithRows(rows).BorderRounded().View())
}
