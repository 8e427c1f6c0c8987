/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/allbin/go-serialid/internal/tui/styles"
	"github.com/allbin/go-serialid/usbids"
	"github.com/spf13/cobra"
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup [vendor-id] [product-id]",
	Short: "Resolve USB vendor and product IDs to names",
	Long: `Look up USB IDs in the identity table without touching any device.

IDs are hex and may be written with or without a 0x prefix and leading
zeros. With --export the whole table is written as JSON, which turns a
usb.ids file into the JSON format accepted by --usbids.

Examples:
  serialid lookup 2341 0043
  serialid lookup 0x0403
  serialid lookup --usbids /usr/share/hwdata/usb.ids 1a86 7523
  serialid lookup --usbids /usr/share/hwdata/usb.ids --export > ids.json`,
	Args: cobra.RangeArgs(0, 2),
	Run: func(cmd *cobra.Command, args []string) {
		export, _ := cmd.Flags().GetBool("export")
		if !export && len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Error: pass a vendor ID or --export")
			os.Exit(1)
		}

		logger := newLogger()
		defer logger.Sync()

		detector, err := newDetector(logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		db := detector.Database()

		if export {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(db); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		var productID *string
		if len(args) == 2 {
			productID = &args[1]
		}
		if !printLookup(os.Stdout, db, args[0], productID) {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().Bool("export", false, "Write the identity table as JSON")
}

// printLookup prints the names known for the IDs and reports whether the
// vendor was found.
func printLookup(w io.Writer, db *usbids.Database, vendorID string, productID *string) bool {
	vid := usbids.NormalizeID(vendorID)
	if productID != nil {
		pid := usbids.NormalizeID(*productID)
		productID = &pid
	}

	name := db.Query(vid, productID)
	if name.Vendor == nil {
		fmt.Fprintf(w, "%s vendor %s is not in the identity table (%d vendors)\n",
			styles.ErrorStyle.Render("✗"), vid, db.Len())
		return false
	}

	fmt.Fprintf(w, "Vendor:  %s\n", *name.Vendor)
	if productID == nil {
		return true
	}
	if name.Product == nil {
		fmt.Fprintf(w, "Product: %s\n", styles.MutedStyle.Render("unknown"))
	} else {
		fmt.Fprintf(w, "Product: %s\n", *name.Product)
	}
	return true
}
