/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/allbin/go-serialid"
	"github.com/allbin/go-serialid/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List serial devices and the USB hardware behind them",
	Long: `List every serial device the kernel exposes, in device tree order.

For devices that sit below a USB device the vendor, product, location and
serial number are resolved; vendor and product names come from the identity
table. Platform UARTs are listed with their path only.

Devices whose metadata cannot be read are skipped. Use --verbose to see why.

Examples:
  serialid list
  serialid list --table
  serialid list --filter usb --json
  serialid list --vid 2341
  serialid list --usbids /usr/share/hwdata/usb.ids`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger()
		defer logger.Sync()

		detector, err := newDetector(logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		report, err := detector.DiscoverReport()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}

		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")
		jsonFormat, _ := cmd.Flags().GetBool("json")

		ports, err := filterPorts(report.Ports, filterType, selector(cmd))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		switch {
		case jsonFormat:
			err = renderJSON(os.Stdout, ports)
		case len(ports) == 0:
			fmt.Println("No serial ports found")
		case tableFormat:
			renderTable(os.Stdout, ports, len(report.Skipped))
		default:
			renderSimple(os.Stdout, ports)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, standard, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
	listCmd.Flags().Bool("json", false, "Print the port metadata as JSON")
	addSelectorFlags(listCmd)
}

// filterPorts keeps the ports of the requested type that match, when set
func filterPorts(ports []serial.PortMetadata, filterType string, match serial.Matcher) ([]serial.PortMetadata, error) {
	var keep func(serial.PortMetadata) bool
	switch strings.ToLower(filterType) {
	case "", "all":
		keep = func(serial.PortMetadata) bool { return true }
	case "usb":
		keep = func(p serial.PortMetadata) bool { return p.HasUSBController }
	case "standard":
		keep = func(p serial.PortMetadata) bool { return !p.HasUSBController }
	default:
		return nil, fmt.Errorf("unknown filter %q (expected usb, standard or all)", filterType)
	}

	filtered := make([]serial.PortMetadata, 0, len(ports))
	for _, p := range ports {
		if keep(p) && (match == nil || match(p)) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// renderTable renders the port list in a styled static table format
func renderTable(w io.Writer, ports []serial.PortMetadata, skipped int) {
	fmt.Fprintf(w, "Found %d serial port(s):\n\n", len(ports))

	portWidth := 22
	idWidth := 10
	locWidth := 10
	descWidth := 32

	headerStyle := styles.HeaderStyle.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("240"))

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %s",
		portWidth, "Port",
		idWidth, "VID:PID",
		locWidth, "Location",
		descWidth, "Description",
		"Serial")
	fmt.Fprintln(w, headerStyle.Render(header))

	for _, p := range ports {
		ids, location, serialNumber := "-", "-", "-"
		if p.HasUSBController {
			ids = value(p.VendorID, "?") + ":" + value(p.ProductID, "?")
			location = value(p.LocationID, "-")
			serialNumber = value(p.SerialNumber, "-")
		}

		row := fmt.Sprintf("%-*s %-*s %-*s %-*s %s",
			portWidth, p.Path,
			idWidth, ids,
			locWidth, location,
			descWidth, p.Description(),
			serialNumber)
		if p.HasUSBController {
			row = styles.USBStyle.Render(row)
		}
		fmt.Fprintln(w, row)
	}

	if skipped > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styles.WarningStyle.Render(
			fmt.Sprintf("%d device(s) skipped, run with --verbose for details", skipped)))
	}
}

// renderSimple prints one port per line
func renderSimple(w io.Writer, ports []serial.PortMetadata) {
	for _, p := range ports {
		fmt.Fprintln(w, p.String())
	}
}

func renderJSON(w io.Writer, ports []serial.PortMetadata) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ports)
}

func value(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
