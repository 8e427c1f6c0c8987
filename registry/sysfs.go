package registry

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Sysfs is a Registry over the Linux sysfs device tree.
//
// Serial devices are the entries of <root>/class/tty that have a "device"
// link, which excludes virtual consoles and pseudo terminals. Parents are
// found by walking up the resolved sysfs path until <root>/devices. USB
// device nodes (the ones with an idVendor attribute) report the class
// ClassUSBDevice; every other node reports its kernel subsystem name, such
// as "tty", "usb-serial" or "usb" for USB interfaces.
type Sysfs struct {
	root    string
	devDir  string
	handles Handles[string]
}

// SysfsOption configures a Sysfs registry.
type SysfsOption func(*Sysfs)

// WithSysfsRoot sets the sysfs mount point (default /sys).
func WithSysfsRoot(root string) SysfsOption {
	return func(s *Sysfs) {
		s.root = root
	}
}

// WithDevDir sets the directory device nodes live in (default /dev).
func WithDevDir(dir string) SysfsOption {
	return func(s *Sysfs) {
		s.devDir = dir
	}
}

// NewSysfs returns a registry reading from /sys, or the configured root.
func NewSysfs(opts ...SysfsOption) *Sysfs {
	s := &Sysfs{
		root:   "/sys",
		devDir: "/dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Outstanding reports how many handles have not been released.
func (s *Sysfs) Outstanding() int {
	return s.handles.Outstanding()
}

// Match lists the tty class in directory order.
func (s *Sysfs) Match(class string) (Iterator, error) {
	if class != ClassSerial {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedClass, class)
	}

	ttyDir := filepath.Join(s.root, "class", "tty")
	entries, err := os.ReadDir(ttyDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ttyDir, err)
	}

	var nodes []string
	for _, entry := range entries {
		link := filepath.Join(ttyDir, entry.Name())

		// Only ttys backed by hardware (or a driver) have a device link
		if _, err := os.Lstat(filepath.Join(link, "device")); err != nil {
			continue
		}

		resolved, err := filepath.EvalSymlinks(link)
		if err != nil {
			continue
		}
		nodes = append(nodes, resolved)
	}

	return NewSliceIterator(&s.handles, nodes), nil
}

// Parent returns the enclosing directory of e in the device tree.
func (s *Sysfs) Parent(e Entry) (Entry, error) {
	path, err := s.handles.Lookup(e)
	if err != nil {
		return 0, err
	}

	devices, err := filepath.EvalSymlinks(filepath.Join(s.root, "devices"))
	if err != nil {
		return 0, ErrNoParent
	}

	parent := filepath.Dir(path)
	if parent == devices || !strings.HasPrefix(parent, devices+string(filepath.Separator)) {
		return 0, ErrNoParent
	}
	return s.handles.Acquire(parent), nil
}

// ClassName reports ClassUSBDevice for USB devices and the subsystem name
// otherwise.
func (s *Sysfs) ClassName(e Entry) (string, error) {
	path, err := s.handles.Lookup(e)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	if fileExists(filepath.Join(path, "idVendor")) {
		return ClassUSBDevice, nil
	}

	link, err := os.Readlink(filepath.Join(path, "subsystem"))
	if errors.Is(err, fs.ErrNotExist) {
		return ClassGeneric, nil
	}
	if err != nil {
		return "", err
	}
	return filepath.Base(link), nil
}

// Property reads one attribute of e. Hex ID attributes are returned as
// uint64; unparsable values are returned as the raw string.
func (s *Sysfs) Property(e Entry, key string) (any, error) {
	path, err := s.handles.Lookup(e)
	if err != nil {
		return nil, err
	}
	return s.property(path, key)
}

// Properties returns every known property present on e.
func (s *Sysfs) Properties(e Entry) (map[string]any, error) {
	path, err := s.handles.Lookup(e)
	if err != nil {
		return nil, err
	}

	props := make(map[string]any)
	keys := []string{
		KeyCalloutDevice, KeyVendorID, KeyProductID, KeyLocationID,
		KeySerialNumber, KeyVendorString, KeyProductString,
	}
	for _, key := range keys {
		value, err := s.property(path, key)
		if errors.Is(err, ErrPropertyNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		props[key] = value
	}
	return props, nil
}

// Release invalidates e.
func (s *Sysfs) Release(e Entry) error {
	return s.handles.Release(e)
}

func (s *Sysfs) property(path, key string) (any, error) {
	switch key {
	case KeyCalloutDevice:
		return s.devicePath(path)
	case KeyVendorID, KeyProductID:
		raw, err := readAttr(path, key)
		if err != nil {
			return nil, err
		}
		if v, err := strconv.ParseUint(raw, 16, 32); err == nil {
			return v, nil
		}
		return raw, nil
	case KeyLocationID:
		return locationID(path)
	case KeySerialNumber:
		return readAttr(path, "serial")
	case KeyVendorString:
		return readAttr(path, "manufacturer")
	case KeyProductString:
		return readAttr(path, "product")
	default:
		return readAttr(path, key)
	}
}

// devicePath returns /dev/<DEVNAME> for nodes that have a device number.
func (s *Sysfs) devicePath(path string) (any, error) {
	if !fileExists(filepath.Join(path, "dev")) {
		return nil, ErrPropertyNotFound
	}

	name := filepath.Base(path)
	if devName := ueventValue(path, "DEVNAME"); devName != "" {
		name = devName
	}
	return filepath.Join(s.devDir, name), nil
}

// locationID packs the bus number into the top byte and each port of the
// devpath into the following nibbles, so bus 1 port 4.2 is 0x01420000.
func locationID(path string) (any, error) {
	busRaw, err := readAttr(path, "busnum")
	if err != nil {
		return nil, err
	}
	devpath, err := readAttr(path, "devpath")
	if err != nil {
		return nil, err
	}

	bus, err := strconv.ParseUint(busRaw, 10, 8)
	if err != nil {
		return busRaw, nil
	}

	loc := bus << 24
	shift := 20
	for _, part := range strings.Split(devpath, ".") {
		if shift < 0 {
			break
		}
		port, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return devpath, nil
		}
		loc |= (port & 0xf) << shift
		shift -= 4
	}
	return loc, nil
}

func readAttr(dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrPropertyNotFound
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func ueventValue(dir, key string) string {
	f, err := os.Open(filepath.Join(dir, "uevent"))
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		k, v, ok := strings.Cut(scanner.Text(), "=")
		if ok && k == key {
			return v
		}
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
