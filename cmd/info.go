/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/allbin/go-serialid"
	"github.com/allbin/go-serialid/internal/tui/styles"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info [port]",
	Short: "Display detailed information about a serial port",
	Long: `Display the metadata discovery found for one serial port.

The port is named by its device path or picked by USB identity.

Examples:
  serialid info /dev/ttyUSB0
  serialid info --vid 0403 --pid 6001
  serialid info --serial A50285BI`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger()
		defer logger.Sync()

		detector, err := newDetector(logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		match := selector(cmd)
		if len(args) == 1 {
			match = serial.ByPath(args[0])
		}
		if match == nil {
			fmt.Fprintln(os.Stderr, "Error: pass a device path or one of --vid, --serial, --location")
			os.Exit(1)
		}

		info, err := detector.FindPort(match)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting port info: %v\n", err)
			os.Exit(1)
		}

		printInfo(os.Stdout, info)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	addSelectorFlags(infoCmd)
}

func printInfo(w io.Writer, info serial.PortMetadata) {
	fmt.Fprintf(w, "%s %s\n\n", styles.HeaderStyle.Render("Port Information:"), info.Path)
	fmt.Fprintf(w, "  Description: %s\n", info.Description())

	if !info.HasUSBController {
		fmt.Fprintln(w, styles.MutedStyle.Render("\n  No USB device found above this port"))
		return
	}

	fmt.Fprintln(w, "\nUSB Device Information:")
	fmt.Fprintf(w, "  Vendor ID:    %s\n", value(info.VendorID, "unknown"))
	fmt.Fprintf(w, "  Product ID:   %s\n", value(info.ProductID, "unknown"))
	if info.VendorName != nil {
		fmt.Fprintf(w, "  Vendor:       %s\n", *info.VendorName)
	}
	if info.ProductName != nil {
		fmt.Fprintf(w, "  Product:      %s\n", *info.ProductName)
	}
	if info.SerialNumber != nil {
		fmt.Fprintf(w, "  Serial:       %s\n", *info.SerialNumber)
	}
	if info.LocationID != nil {
		fmt.Fprintf(w, "  Location:     %s\n", *info.LocationID)
	}
}
