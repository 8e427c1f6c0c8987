package registry

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.bug.st/serial/enumerator"
)

func newTestEnumerator(ports []*enumerator.PortDetails, err error) *Enumerator {
	return &Enumerator{
		list: func() ([]*enumerator.PortDetails, error) {
			return ports, err
		},
	}
}

func TestEnumeratorUSBPort(t *testing.T) {
	e := newTestEnumerator([]*enumerator.PortDetails{
		{
			Name:         "/dev/ttyACM0",
			IsUSB:        true,
			VID:          "2341",
			PID:          "0043",
			SerialNumber: "85735313233351D0E1C1",
			Product:      "Arduino Uno",
		},
	}, nil)

	entries := collect(t, e)
	if len(entries) != 1 {
		t.Fatalf("expected 1 port, got %d", len(entries))
	}
	port := entries[0]

	class, err := e.ClassName(port)
	if err != nil || class != ClassSerial {
		t.Errorf("ClassName(port) = %q, %v", class, err)
	}
	path, err := e.Property(port, KeyCalloutDevice)
	if err != nil || path != "/dev/ttyACM0" {
		t.Errorf("callout device = %v, %v", path, err)
	}

	parent, err := e.Parent(port)
	if err != nil {
		t.Fatalf("Parent failed: %v", err)
	}
	class, _ = e.ClassName(parent)
	if class != ClassUSBDevice {
		t.Errorf("ClassName(parent) = %q, expected %q", class, ClassUSBDevice)
	}

	props, err := e.Properties(parent)
	if err != nil {
		t.Fatalf("Properties failed: %v", err)
	}
	expected := map[string]any{
		KeyVendorID:      uint64(0x2341),
		KeyProductID:     uint64(0x43),
		KeySerialNumber:  "85735313233351D0E1C1",
		KeyProductString: "Arduino Uno",
	}
	if diff := cmp.Diff(expected, props); diff != "" {
		t.Errorf("USB properties mismatch (-expected +got):\n%s", diff)
	}

	if _, err := e.Parent(parent); !errors.Is(err, ErrNoParent) {
		t.Errorf("Parent(usb) error = %v, expected ErrNoParent", err)
	}
	if _, err := e.Property(parent, KeyLocationID); !errors.Is(err, ErrPropertyNotFound) {
		t.Errorf("location ID error = %v, expected ErrPropertyNotFound", err)
	}

	e.Release(parent)
	e.Release(port)
	if n := e.Outstanding(); n != 0 {
		t.Errorf("Outstanding() = %d, expected 0", n)
	}
}

func TestEnumeratorNativePort(t *testing.T) {
	e := newTestEnumerator([]*enumerator.PortDetails{
		nil,
		{Name: "/dev/ttyS0"},
	}, nil)

	entries := collect(t, e)
	if len(entries) != 1 {
		t.Fatalf("expected nil ports to be skipped, got %d entries", len(entries))
	}
	if _, err := e.Parent(entries[0]); !errors.Is(err, ErrNoParent) {
		t.Errorf("Parent(native) error = %v, expected ErrNoParent", err)
	}
	e.Release(entries[0])
}

func TestEnumeratorErrors(t *testing.T) {
	listErr := errors.New("enumeration failed")
	e := newTestEnumerator(nil, listErr)

	if _, err := e.Match(ClassSerial); !errors.Is(err, listErr) {
		t.Errorf("Match error = %v, expected %v", err, listErr)
	}
	if _, err := e.Match(ClassUSBDevice); !errors.Is(err, ErrUnsupportedClass) {
		t.Errorf("Match(%s) error = %v, expected ErrUnsupportedClass", ClassUSBDevice, err)
	}
}

func TestParseHexProperty(t *testing.T) {
	tests := []struct {
		raw      string
		expected any
	}{
		{"2341", uint64(0x2341)},
		{"0403", uint64(0x403)},
		{"ABCD", uint64(0xabcd)},
		{"zz", "zz"},
	}
	for _, tt := range tests {
		if got := parseHexProperty(tt.raw); got != tt.expected {
			t.Errorf("parseHexProperty(%q) = %#v, expected %#v", tt.raw, got, tt.expected)
		}
	}
}
