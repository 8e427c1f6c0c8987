package usbids

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Parse reads a table in the linux-usb usb.ids format:
//
//	2341  Arduino SA
//		0043  Uno R3 (CDC ACM)
//
// Vendor lines start in column zero, product lines with a single tab.
// Interface lines (two tabs), comments and everything from the first
// class section ("C 00  ...") onwards are ignored. IDs are normalised to
// lowercase without leading zeros so they compare equal to the IDs the
// serial package extracts.
func Parse(r io.Reader) (*Database, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "\t\t") {
			continue
		}

		if strings.HasPrefix(line, "\t") {
			if len(entries) == 0 {
				return nil, fmt.Errorf("%w: line %d: product without vendor", ErrMalformedData, lineNo)
			}
			id, name, err := splitIDLine(strings.TrimPrefix(line, "\t"))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedData, lineNo, err)
			}
			last := &entries[len(entries)-1]
			last.Devices = append(last.Devices, Device{ProductID: id, ProductName: name})
			continue
		}

		// Class, audio, HID and language sections use a short type prefix
		// ("C 00", "AT 0100", "HID 22") and come after all vendors.
		if isSectionHeader(line) {
			break
		}

		id, name, err := splitIDLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedData, lineNo, err)
		}
		entries = append(entries, Entry{VendorID: id, VendorName: name})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}

	return newDatabase(entries)
}

func splitIDLine(line string) (string, string, error) {
	id, name, ok := strings.Cut(line, "  ")
	if !ok || len(id) != 4 {
		return "", "", fmt.Errorf("expected \"xxxx  name\", got %q", line)
	}
	for i := 0; i < len(id); i++ {
		if !isHex(id[i]) {
			return "", "", fmt.Errorf("invalid hex ID %q", id)
		}
	}
	return NormalizeID(id), strings.TrimSpace(name), nil
}

// NormalizeID lowercases a hexadecimal ID and strips leading zeros, so
// "0403" becomes "403". A zero ID stays "0".
func NormalizeID(id string) string {
	id = strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(id, "0x"), "0X"))
	id = strings.TrimLeft(id, "0")
	if id == "" {
		return "0"
	}
	return id
}

func isSectionHeader(line string) bool {
	prefix, _, ok := strings.Cut(line, " ")
	if !ok || len(prefix) == 0 || len(prefix) >= 4 {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if prefix[i] < 'A' || prefix[i] > 'Z' {
			return false
		}
	}
	return true
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
