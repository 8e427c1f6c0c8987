package serial

import (
	"path/filepath"
	"strings"

	"github.com/allbin/go-serialid/usbids"
)

// PortMetadata describes one discovered serial device. The ID fields are
// lowercase hex without prefix or padding and are nil unless a USB device
// was found above the port; the name fields are nil unless the identity
// database knows the IDs.
type PortMetadata struct {
	Path             string  `json:"path"`
	HasUSBController bool    `json:"hasUsbController"`
	VendorID         *string `json:"vendorId,omitempty"`
	ProductID        *string `json:"productId,omitempty"`
	LocationID       *string `json:"locationId,omitempty"`
	VendorName       *string `json:"vendorName,omitempty"`
	ProductName      *string `json:"productName,omitempty"`
	SerialNumber     *string `json:"serialNumber,omitempty"`
}

// String renders the record as "path (vid:pid vendor product)", or just the
// path for ports without a USB controller.
func (m PortMetadata) String() string {
	if !m.HasUSBController {
		return m.Path
	}

	var b strings.Builder
	b.WriteString(m.Path)
	b.WriteString(" (")
	b.WriteString(deref(m.VendorID, "?"))
	b.WriteString(":")
	b.WriteString(deref(m.ProductID, "?"))
	if m.VendorName != nil {
		b.WriteString(" ")
		b.WriteString(*m.VendorName)
	}
	if m.ProductName != nil {
		b.WriteString(" ")
		b.WriteString(*m.ProductName)
	}
	b.WriteString(")")
	return b.String()
}

// Description returns the most specific human readable name available.
func (m PortMetadata) Description() string {
	switch {
	case m.ProductName != nil && m.VendorName != nil:
		return *m.VendorName + " " + *m.ProductName
	case m.ProductName != nil:
		return *m.ProductName
	case m.VendorName != nil:
		return *m.VendorName
	default:
		return portDescription(filepath.Base(m.Path))
	}
}

// portDescription names a port by its kernel device name
func portDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	default:
		return "Serial Port"
	}
}

func deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

// Matcher selects ports for Detector.FindPort
type Matcher func(PortMetadata) bool

// ByPath matches the device path exactly
func ByPath(path string) Matcher {
	return func(m PortMetadata) bool {
		return m.Path == path
	}
}

// ByVendorProduct matches USB vendor and product IDs in any common hex
// spelling ("0x2341", "2341", "0043"). An empty productID matches any
// product of the vendor.
func ByVendorProduct(vendorID, productID string) Matcher {
	vid := usbids.NormalizeID(vendorID)
	pid := ""
	if productID != "" {
		pid = usbids.NormalizeID(productID)
	}
	return func(m PortMetadata) bool {
		if m.VendorID == nil || *m.VendorID != vid {
			return false
		}
		return pid == "" || (m.ProductID != nil && *m.ProductID == pid)
	}
}

// ByLocation matches the USB location ID, which identifies the physical
// port a device is plugged into.
func ByLocation(locationID string) Matcher {
	loc := usbids.NormalizeID(locationID)
	return func(m PortMetadata) bool {
		return m.LocationID != nil && *m.LocationID == loc
	}
}

// BySerialNumber matches the USB serial number string exactly
func BySerialNumber(serial string) Matcher {
	return func(m PortMetadata) bool {
		return m.SerialNumber != nil && *m.SerialNumber == serial
	}
}

// ByVendorName matches a case-insensitive substring of the resolved vendor
// name.
func ByVendorName(name string) Matcher {
	needle := strings.ToLower(name)
	return func(m PortMetadata) bool {
		return m.VendorName != nil && strings.Contains(strings.ToLower(*m.VendorName), needle)
	}
}
