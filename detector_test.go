package serial

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/allbin/go-serialid/registry"
	"github.com/allbin/go-serialid/registry/registrytest"
	"github.com/allbin/go-serialid/usbids"
)

func TestNewDetectorIdentitySources(t *testing.T) {
	dir := t.TempDir()

	jsonFile := filepath.Join(dir, "ids.json")
	if err := os.WriteFile(jsonFile, []byte(arduinoTable), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", jsonFile, err)
	}
	idsFile := filepath.Join(dir, "usb.ids")
	if err := os.WriteFile(idsFile, []byte("2341  Arduino SA\n\t0043  Uno R3 (CDC ACM)\n"), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", idsFile, err)
	}
	badFile := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(badFile, []byte(`{"not": "a list"}`), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", badFile, err)
	}

	tests := []struct {
		name       string
		opt        DetectorOption
		wantVendor string
		wantErr    error
	}{
		{"default table", nil, "Arduino SA", nil},
		{"json data", WithIdentityData([]byte(arduinoTable)), "Arduino", nil},
		{"json file", WithIdentityFile(jsonFile), "Arduino", nil},
		{"usb.ids file", WithIdentityFile(idsFile), "Arduino SA", nil},
		{"database", WithDatabase(usbids.Default()), "Arduino SA", nil},
		{"malformed data", WithIdentityData([]byte("not json")), "", usbids.ErrMalformedData},
		{"malformed file", WithIdentityFile(badFile), "", usbids.ErrMalformedData},
		{"missing file", WithIdentityFile(filepath.Join(dir, "missing.json")), "", os.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := []DetectorOption{WithRegistry(registrytest.New())}
			if tt.opt != nil {
				opts = append(opts, tt.opt)
			}

			d, err := NewDetector(opts...)
			if tt.wantErr != nil {
				if !errors.Is(err, ErrIdentityDataUnavailable) || !errors.Is(err, tt.wantErr) {
					t.Errorf("NewDetector error = %v, expected ErrIdentityDataUnavailable wrapping %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewDetector failed: %v", err)
			}

			name := d.Database().Query("2341", nil)
			if name.Vendor == nil || *name.Vendor != tt.wantVendor {
				t.Errorf("vendor 2341 = %v, expected %q", name.Vendor, tt.wantVendor)
			}
		})
	}
}

func TestNewDetectorNilRegistry(t *testing.T) {
	if _, err := NewDetector(WithRegistry(nil)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewDetector(WithRegistry(nil)) error = %v, expected ErrInvalidConfig", err)
	}
}

func TestFindPort(t *testing.T) {
	reg := registrytest.New(
		registrytest.Device("/dev/ttyS0", nil),
		usbTree("/dev/ttyUSB0", map[string]any{
			registry.KeyVendorID:     uint64(0x403),
			registry.KeyProductID:    uint64(0x6001),
			registry.KeyLocationID:   uint64(0x01200000),
			registry.KeySerialNumber: "A50285BI",
		}),
		usbTree("/dev/ttyACM0", map[string]any{
			registry.KeyVendorID:   uint64(0x2341),
			registry.KeyProductID:  uint64(0x43),
			registry.KeyLocationID: uint64(0x01300000),
		}),
	)
	d := newTestDetector(t, reg)

	tests := []struct {
		name     string
		match    Matcher
		expected string
	}{
		{"path", ByPath("/dev/ttyS0"), "/dev/ttyS0"},
		{"vendor and product", ByVendorProduct("0x2341", "0043"), "/dev/ttyACM0"},
		{"vendor only", ByVendorProduct("0403", ""), "/dev/ttyUSB0"},
		{"location", ByLocation("0x01300000"), "/dev/ttyACM0"},
		{"serial number", BySerialNumber("A50285BI"), "/dev/ttyUSB0"},
		{"vendor name", ByVendorName("arduino"), "/dev/ttyACM0"},
		{"no match", ByVendorProduct("1a86", "7523"), ""},
		{"wrong product", ByVendorProduct("2341", "1"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port, err := d.FindPort(tt.match)
			if tt.expected == "" {
				if !errors.Is(err, ErrDeviceNotFound) {
					t.Errorf("FindPort error = %v, expected ErrDeviceNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindPort failed: %v", err)
			}
			if port.Path != tt.expected {
				t.Errorf("FindPort = %s, expected %s", port.Path, tt.expected)
			}
		})
	}

	if n := reg.Outstanding(); n != 0 {
		t.Errorf("%d registry handles leaked", n)
	}
}

func TestFindPortRegistryError(t *testing.T) {
	reg := registrytest.New()
	reg.MatchErr = errors.New("no registry")
	d := newTestDetector(t, reg)

	if _, err := d.FindPort(ByPath("/dev/ttyS0")); !errors.Is(err, ErrRegistryUnavailable) {
		t.Errorf("FindPort error = %v, expected ErrRegistryUnavailable", err)
	}
}

func TestPortMetadataString(t *testing.T) {
	tests := []struct {
		name        string
		meta        PortMetadata
		str         string
		description string
	}{
		{
			name:        "platform uart",
			meta:        PortMetadata{Path: "/dev/ttyS0"},
			str:         "/dev/ttyS0",
			description: "Standard Serial Port",
		},
		{
			name: "unknown usb device",
			meta: PortMetadata{
				Path:             "/dev/ttyUSB0",
				HasUSBController: true,
				VendorID:         strPtr("1234"),
			},
			str:         "/dev/ttyUSB0 (1234:?)",
			description: "USB Serial Port",
		},
		{
			name: "known vendor",
			meta: PortMetadata{
				Path:             "/dev/ttyACM0",
				HasUSBController: true,
				VendorID:         strPtr("2341"),
				ProductID:        strPtr("9999"),
				VendorName:       strPtr("Arduino"),
			},
			str:         "/dev/ttyACM0 (2341:9999 Arduino)",
			description: "Arduino",
		},
		{
			name: "known product",
			meta: PortMetadata{
				Path:             "/dev/ttyACM0",
				HasUSBController: true,
				VendorID:         strPtr("2341"),
				ProductID:        strPtr("43"),
				VendorName:       strPtr("Arduino"),
				ProductName:      strPtr("Uno R3"),
			},
			str:         "/dev/ttyACM0 (2341:43 Arduino Uno R3)",
			description: "Arduino Uno R3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.meta.String(); got != tt.str {
				t.Errorf("String() = %q, expected %q", got, tt.str)
			}
			if got := tt.meta.Description(); got != tt.description {
				t.Errorf("Description() = %q, expected %q", got, tt.description)
			}
		})
	}
}

func TestPortFromMetadata(t *testing.T) {
	meta := PortMetadata{Path: "/dev/ttyACM0", HasUSBController: true}
	p, err := NewPort(meta, WithLineConfig(LineConfig{Baud9600, Baud9600, ParityNone, 8, false}))
	if err != nil {
		t.Fatalf("NewPort failed: %v", err)
	}
	if p.Path() != "/dev/ttyACM0" || p.Metadata() != meta {
		t.Errorf("port does not carry its metadata: %+v", p.Metadata())
	}
	if p.Config().RxBaudRate != Baud9600 {
		t.Errorf("Config() = %v", p.Config())
	}
	if p.State() != StateClosed {
		t.Errorf("new port State() = %v", p.State())
	}

	if _, err := NewPort(meta, WithLineConfig(LineConfig{DataBits: 9})); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewPort with invalid config error = %v, expected ErrInvalidConfig", err)
	}
}
