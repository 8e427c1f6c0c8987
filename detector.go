package serial

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/allbin/go-serialid/registry"
	"github.com/allbin/go-serialid/usbids"
)

// Detector finds the serial ports attached to the host and names them.
// The identity database is loaded once by NewDetector and only read
// afterwards, so one Detector can serve concurrent discovery calls if its
// registry can.
type Detector struct {
	registry registry.Registry
	db       *usbids.Database
	logger   *zap.Logger
}

type detectorConfig struct {
	registry registry.Registry
	db       *usbids.Database
	data     []byte
	file     string
	logger   *zap.Logger
}

// DetectorOption configures a Detector
type DetectorOption func(*detectorConfig) error

// WithRegistry sets the device registry to walk (default: sysfs under /sys)
func WithRegistry(reg registry.Registry) DetectorOption {
	return func(c *detectorConfig) error {
		if reg == nil {
			return fmt.Errorf("%w: nil registry", ErrInvalidConfig)
		}
		c.registry = reg
		return nil
	}
}

// WithIdentityData loads the identity database from a JSON table
func WithIdentityData(data []byte) DetectorOption {
	return func(c *detectorConfig) error {
		c.data = data
		return nil
	}
}

// WithIdentityFile loads the identity database from a file: a JSON table,
// or the usb.ids text format when the name ends in ".ids".
func WithIdentityFile(path string) DetectorOption {
	return func(c *detectorConfig) error {
		c.file = path
		return nil
	}
}

// WithDatabase uses an already loaded identity database
func WithDatabase(db *usbids.Database) DetectorOption {
	return func(c *detectorConfig) error {
		c.db = db
		return nil
	}
}

// WithDetectorLogger sets the logger used for skipped devices and
// discovery details
func WithDetectorLogger(logger *zap.Logger) DetectorOption {
	return func(c *detectorConfig) error {
		c.logger = logger
		return nil
	}
}

// NewDetector loads the identity database and returns a detector. Without
// identity options the embedded default table is used.
func NewDetector(opts ...DetectorOption) (*Detector, error) {
	var cfg detectorConfig
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.registry == nil {
		cfg.registry = registry.NewSysfs()
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	db, err := loadDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIdentityDataUnavailable, err)
	}
	cfg.logger.Debug("loaded USB identity database", zap.Int("vendors", db.Len()))

	return &Detector{
		registry: cfg.registry,
		db:       db,
		logger:   cfg.logger,
	}, nil
}

func loadDatabase(cfg detectorConfig) (*usbids.Database, error) {
	switch {
	case cfg.db != nil:
		return cfg.db, nil
	case cfg.file != "":
		data, err := os.ReadFile(cfg.file)
		if err != nil {
			return nil, err
		}
		if filepath.Ext(cfg.file) == ".ids" {
			return usbids.Parse(bytes.NewReader(data))
		}
		return usbids.Load(data)
	case cfg.data != nil:
		return usbids.Load(cfg.data)
	default:
		return usbids.Default(), nil
	}
}

// Database returns the identity database the detector resolves names with
func (d *Detector) Database() *usbids.Database {
	return d.db
}

// DiscoverSerialPorts lists the serial ports in registry order. A device
// that cannot be described is skipped; see DiscoverReport for the reasons.
func (d *Detector) DiscoverSerialPorts() ([]PortMetadata, error) {
	ports, _, err := d.enumerateSerialDevices()
	return ports, err
}

// Report is the result of a discovery pass including the devices that
// were skipped.
type Report struct {
	Ports   []PortMetadata
	Skipped []error
}

// DiscoverReport is DiscoverSerialPorts with the per-device failures.
func (d *Detector) DiscoverReport() (Report, error) {
	ports, skipped, err := d.enumerateSerialDevices()
	return Report{Ports: ports, Skipped: skipped}, err
}

// FindPort returns the first discovered port accepted by match.
func (d *Detector) FindPort(match Matcher) (PortMetadata, error) {
	ports, err := d.DiscoverSerialPorts()
	if err != nil {
		return PortMetadata{}, err
	}
	for _, p := range ports {
		if match(p) {
			return p, nil
		}
	}
	return PortMetadata{}, ErrDeviceNotFound
}
