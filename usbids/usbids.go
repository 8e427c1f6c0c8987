// Package usbids resolves USB vendor and product IDs to human-readable names.
//
// A Database is loaded once from a JSON table (or the linux-usb usb.ids text
// format, see Parse) and is read-only afterwards, so a single instance can be
// shared between goroutines.
//
// IDs are matched as exact strings. The serial package produces them as
// lowercase hexadecimal without a prefix or zero padding ("2341", "403"), so
// tables should use the same form.
package usbids

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedData is returned when an identity table cannot be decoded.
var ErrMalformedData = errors.New("malformed USB identity data")

//go:embed default.json
var defaultTable []byte

// Device is a product entry under a vendor.
type Device struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
}

// Entry is one vendor of the identity table.
type Entry struct {
	VendorID   string   `json:"vendorId"`
	VendorName string   `json:"vendorName"`
	Devices    []Device `json:"devices,omitempty"`
}

// Name is the result of a query. A nil field means the ID was not found.
type Name struct {
	Vendor  *string
	Product *string
}

// Database is an immutable vendor/product lookup table.
type Database struct {
	entries []Entry
}

// Load decodes a JSON identity table.
func Load(data []byte) (*Database, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var entries []Entry
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	return newDatabase(entries)
}

// Default returns the table compiled into the package. It covers the
// common USB-to-serial bridges and development boards.
func Default() *Database {
	db, err := Load(defaultTable)
	if err != nil {
		panic("usbids: embedded table is invalid: " + err.Error())
	}
	return db
}

func newDatabase(entries []Entry) (*Database, error) {
	for i, e := range entries {
		if e.VendorID == "" {
			return nil, fmt.Errorf("%w: entry %d has no vendor ID", ErrMalformedData, i)
		}
		for j, d := range e.Devices {
			if d.ProductID == "" {
				return nil, fmt.Errorf("%w: vendor %s device %d has no product ID", ErrMalformedData, e.VendorID, j)
			}
		}
	}
	return &Database{entries: entries}, nil
}

// Query looks up a vendor and, when productID is non-nil, one of its
// products. The first vendor entry with a matching ID wins even if later
// entries repeat the ID; products are matched within that entry only.
func (db *Database) Query(vendorID string, productID *string) Name {
	var name Name
	for i := range db.entries {
		entry := &db.entries[i]
		if entry.VendorID != vendorID {
			continue
		}

		vendor := entry.VendorName
		name.Vendor = &vendor

		if productID != nil {
			for _, d := range entry.Devices {
				if d.ProductID == *productID {
					product := d.ProductName
					name.Product = &product
					break
				}
			}
		}
		return name
	}
	return name
}

// Len returns the number of vendor entries.
func (db *Database) Len() int {
	return len(db.entries)
}

// Entries returns a copy of the table in load order.
func (db *Database) Entries() []Entry {
	out := make([]Entry, len(db.entries))
	for i, e := range db.entries {
		out[i] = e
		out[i].Devices = append([]Device(nil), e.Devices...)
	}
	return out
}

// MarshalJSON encodes the table in the form accepted by Load.
func (db *Database) MarshalJSON() ([]byte, error) {
	if db.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(db.entries)
}
