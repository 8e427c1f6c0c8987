package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/allbin/go-serialid"
	"github.com/allbin/go-serialid/usbids"
	"github.com/spf13/viper"
)

func setViper(t *testing.T, values map[string]any) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.SetDefault("baud", 115200)
	viper.SetDefault("data-bits", 8)
	viper.SetDefault("parity", "none")
	for k, v := range values {
		viper.Set(k, v)
	}
}

func TestLineConfig(t *testing.T) {
	tests := []struct {
		name     string
		values   map[string]any
		expected string
		wantErr  error
	}{
		{"defaults", nil, "115200 8N1", nil},
		{"7E1", map[string]any{"baud": 9600, "data-bits": 7, "parity": "even"}, "9600 7E1", nil},
		{"two stop bits", map[string]any{"baud": 300, "parity": "o", "two-stop-bits": true}, "300 8O2", nil},
		{"split rates", map[string]any{"baud": 115200, "rx-baud": 9600}, "9600/115200 8N1", nil},
		{"custom rate", map[string]any{"baud": 250000}, "250000 8N1", nil},
		{"bad parity", map[string]any{"parity": "mark"}, "", serial.ErrInvalidConfig},
		{"bad data bits", map[string]any{"data-bits": 9}, "", serial.ErrInvalidConfig},
		{"zero baud", map[string]any{"baud": 0}, "", serial.ErrInvalidBaudRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setViper(t, tt.values)

			cfg, err := lineConfig()
			if tt.wantErr != nil {
				if !errors.Is(err, serial.ErrConfiguration) {
					t.Errorf("lineConfig error = %v, expected a configuration error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("lineConfig failed: %v", err)
			}
			if cfg.String() != tt.expected {
				t.Errorf("lineConfig = %s, expected %s", cfg, tt.expected)
			}
		})
	}
}

func TestNewRegistrySource(t *testing.T) {
	for _, source := range []string{"", "sysfs", "enumerator", "Enumerator"} {
		setViper(t, map[string]any{"source": source})
		if _, err := newRegistry(); err != nil {
			t.Errorf("newRegistry(%q) failed: %v", source, err)
		}
	}

	setViper(t, map[string]any{"source": "ioregistry"})
	if _, err := newRegistry(); err == nil {
		t.Error("newRegistry should reject unknown sources")
	}
}

func TestPrintLookup(t *testing.T) {
	db := usbids.Default()

	tests := []struct {
		name     string
		vendor   string
		product  *string
		found    bool
		contains string
	}{
		{"vendor", "0x2341", nil, true, "Vendor:  Arduino SA"},
		{"padded product", "2341", strPtr("0043"), true, "Uno R3"},
		{"unknown product", "2341", strPtr("ffff"), true, "Product: "},
		{"unknown vendor", "ffff", nil, false, "not in the identity table"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if got := printLookup(&buf, db, tt.vendor, tt.product); got != tt.found {
				t.Errorf("printLookup = %v, expected %v", got, tt.found)
			}
			if !bytes.Contains(buf.Bytes(), []byte(tt.contains)) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.contains)
			}
		})
	}
}

func TestLineEnding(t *testing.T) {
	tests := map[string]string{"none": "", "lf": "\n", "cr": "\r", "crlf": "\r\n"}
	for name, expected := range tests {
		got, err := lineEnding(name)
		if err != nil || string(got) != expected {
			t.Errorf("lineEnding(%q) = %q, %v", name, got, err)
		}
	}
	if _, err := lineEnding("lfcr"); err == nil {
		t.Error("lineEnding should reject unknown names")
	}
}

func TestPreview(t *testing.T) {
	if got := preview([]byte("OK\r\n"), 10); got != "OK··" {
		t.Errorf("preview = %q", got)
	}
	if got := preview([]byte("abcdef"), 3); got != "abc..." {
		t.Errorf("preview = %q", got)
	}
}
