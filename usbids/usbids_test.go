package usbids

import (
	"encoding/json"
	"errors"
	"testing"
)

const testTable = `[
  {"vendorId": "2341", "vendorName": "Arduino", "devices": [
    {"productId": "43", "productName": "Uno R3"},
    {"productId": "42", "productName": "Mega 2560 R3"}
  ]},
  {"vendorId": "403", "vendorName": "FTDI", "devices": [
    {"productId": "6001", "productName": "FT232"}
  ]},
  {"vendorId": "2341", "vendorName": "Arduino (duplicate)", "devices": [
    {"productId": "8036", "productName": "Leonardo"}
  ]},
  {"vendorId": "dead", "vendorName": "No Devices"}
]`

func strPtr(s string) *string { return &s }

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func mustLoad(t *testing.T, data string) *Database {
	t.Helper()
	db, err := Load([]byte(data))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return db
}

func TestQuery(t *testing.T) {
	db := mustLoad(t, testTable)

	tests := []struct {
		name        string
		vendorID    string
		productID   *string
		wantVendor  *string
		wantProduct *string
	}{
		{"vendor and product", "2341", strPtr("43"), strPtr("Arduino"), strPtr("Uno R3")},
		{"second product", "2341", strPtr("42"), strPtr("Arduino"), strPtr("Mega 2560 R3")},
		{"vendor only", "403", nil, strPtr("FTDI"), nil},
		{"unknown product", "2341", strPtr("ffff"), strPtr("Arduino"), nil},
		{"unknown vendor", "beef", strPtr("43"), nil, nil},
		{"vendor without devices", "dead", strPtr("1"), strPtr("No Devices"), nil},
		{"first match wins", "2341", strPtr("8036"), strPtr("Arduino"), nil},
		{"case sensitive", "2341", strPtr("6001"), strPtr("Arduino"), nil},
		{"padded ID does not match", "0403", nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := db.Query(tt.vendorID, tt.productID)
			if deref(got.Vendor) != deref(tt.wantVendor) {
				t.Errorf("Vendor = %s, want %s", deref(got.Vendor), deref(tt.wantVendor))
			}
			if deref(got.Product) != deref(tt.wantProduct) {
				t.Errorf("Product = %s, want %s", deref(got.Product), deref(tt.wantProduct))
			}
		})
	}
}

func TestQueryEmptyDatabase(t *testing.T) {
	db := mustLoad(t, `[]`)
	got := db.Query("2341", strPtr("43"))
	if got.Vendor != nil || got.Product != nil {
		t.Errorf("expected empty name, got %s/%s", deref(got.Vendor), deref(got.Product))
	}
	if db.Len() != 0 {
		t.Errorf("Len = %d, want 0", db.Len())
	}
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `vendor=2341`},
		{"object instead of array", `{"vendorId": "2341"}`},
		{"numeric vendor ID", `[{"vendorId": 9025, "vendorName": "Arduino"}]`},
		{"missing vendor ID", `[{"vendorName": "Arduino"}]`},
		{"missing product ID", `[{"vendorId": "2341", "vendorName": "Arduino", "devices": [{"productName": "Uno"}]}]`},
		{"unknown field", `[{"vendorId": "2341", "vendorName": "Arduino", "vendor": "x"}]`},
		{"truncated", `[{"vendorId": "2341"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.data))
			if !errors.Is(err, ErrMalformedData) {
				t.Errorf("Load() error = %v, want ErrMalformedData", err)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	original := mustLoad(t, testTable)

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	reloaded := mustLoad(t, string(data))

	if reloaded.Len() != original.Len() {
		t.Fatalf("Len = %d, want %d", reloaded.Len(), original.Len())
	}

	for _, entry := range original.Entries() {
		queries := []*string{nil}
		for _, d := range entry.Devices {
			queries = append(queries, strPtr(d.ProductID))
		}
		for _, pid := range queries {
			want := original.Query(entry.VendorID, pid)
			got := reloaded.Query(entry.VendorID, pid)
			if deref(got.Vendor) != deref(want.Vendor) || deref(got.Product) != deref(want.Product) {
				t.Errorf("Query(%s, %s) = %s/%s, want %s/%s", entry.VendorID, deref(pid),
					deref(got.Vendor), deref(got.Product), deref(want.Vendor), deref(want.Product))
			}
		}
	}
}

func TestEntriesIsCopy(t *testing.T) {
	db := mustLoad(t, testTable)

	entries := db.Entries()
	entries[0].VendorName = "changed"
	entries[0].Devices[0].ProductName = "changed"

	got := db.Query("2341", strPtr("43"))
	if deref(got.Vendor) != "Arduino" || deref(got.Product) != "Uno R3" {
		t.Errorf("database mutated through Entries(): %s/%s", deref(got.Vendor), deref(got.Product))
	}
}

func TestDefault(t *testing.T) {
	db := Default()
	if db.Len() == 0 {
		t.Fatal("embedded table is empty")
	}

	got := db.Query("2341", strPtr("43"))
	if deref(got.Vendor) != "Arduino SA" {
		t.Errorf("Vendor = %s, want Arduino SA", deref(got.Vendor))
	}
	if got.Product == nil {
		t.Error("expected Uno R3 product name")
	}

	got = db.Query("403", strPtr("6001"))
	if got.Vendor == nil || got.Product == nil {
		t.Error("expected FTDI FT232 to resolve")
	}
}
