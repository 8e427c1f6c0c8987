package serial

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/allbin/go-serialid/registry"
)

// usbClassMarker identifies the USB device node among a port's ancestors.
const usbClassMarker = "USB"

// enumerateSerialDevices walks every serial device the registry knows of, in
// registry order. Devices that cannot be described are logged, left out of
// the result and returned in skipped. Only failing to obtain the match set
// fails the whole call.
func (d *Detector) enumerateSerialDevices() (ports []PortMetadata, skipped []error, err error) {
	it, err := d.registry.Match(registry.ClassSerial)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrRegistryUnavailable, err)
	}
	if it == nil {
		return nil, nil, ErrIteratorUnavailable
	}
	defer func() {
		if releaseErr := it.Release(); releaseErr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to release registry iterator: %w", releaseErr))
		}
	}()

	ports = []PortMetadata{}
	for {
		entry, ok := it.Next()
		if !ok {
			break
		}

		meta, err := d.describeDevice(entry)
		if err != nil {
			d.logger.Warn("skipping serial device",
				zap.Uint32("entry", uint32(entry)),
				zap.Error(err))
			skipped = append(skipped, err)
			continue
		}

		d.logger.Debug("found serial device",
			zap.String("path", meta.Path),
			zap.Bool("usb", meta.HasUSBController))
		ports = append(ports, meta)
	}
	return ports, skipped, nil
}

// describeDevice builds the metadata for one matched device and releases
// the device handle.
func (d *Detector) describeDevice(entry registry.Entry) (PortMetadata, error) {
	defer d.release(entry)

	path, err := d.devicePath(entry)
	if err != nil {
		return PortMetadata{}, err
	}
	meta := PortMetadata{Path: path}

	props, err := d.findUSBController(entry)
	if err != nil {
		return PortMetadata{}, fmt.Errorf("%s: %w", path, err)
	}
	if props == nil {
		return meta, nil
	}

	meta.HasUSBController = true
	if meta.VendorID, err = hexProperty(props, registry.KeyVendorID); err != nil {
		return PortMetadata{}, fmt.Errorf("%s: %w", path, err)
	}
	if meta.ProductID, err = hexProperty(props, registry.KeyProductID); err != nil {
		return PortMetadata{}, fmt.Errorf("%s: %w", path, err)
	}
	if meta.LocationID, err = hexProperty(props, registry.KeyLocationID); err != nil {
		return PortMetadata{}, fmt.Errorf("%s: %w", path, err)
	}
	if serial, ok := props[registry.KeySerialNumber].(string); ok && serial != "" {
		meta.SerialNumber = &serial
	}

	if meta.VendorID != nil {
		name := d.db.Query(*meta.VendorID, meta.ProductID)
		meta.VendorName = name.Vendor
		meta.ProductName = name.Product
	}
	return meta, nil
}

func (d *Detector) devicePath(entry registry.Entry) (string, error) {
	value, err := d.registry.Property(entry, registry.KeyCalloutDevice)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPortPathInvalid, err)
	}
	path, ok := value.(string)
	if !ok || path == "" {
		return "", fmt.Errorf("%w: %v", ErrPortPathInvalid, value)
	}
	return path, nil
}

// findUSBController ascends from device until an ancestor's class name
// contains "USB" and returns that ancestor's properties. It returns nil
// properties when the top of the tree is reached first. The device handle
// itself stays with the caller.
func (d *Detector) findUSBController(device registry.Entry) (map[string]any, error) {
	next, err := d.registry.Parent(device)
	for {
		if errors.Is(err, registry.ErrNoParent) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		var props map[string]any
		var found bool
		props, found, next, err = d.visitAncestor(next)
		if found {
			return props, err
		}
	}
}

// visitAncestor inspects one ancestor and releases it. When it is not the
// USB device, the handle of its parent is returned for the next step.
func (d *Detector) visitAncestor(e registry.Entry) (props map[string]any, found bool, parent registry.Entry, err error) {
	defer d.release(e)

	class, err := d.registry.ClassName(e)
	if err != nil {
		return nil, false, 0, err
	}
	if strings.Contains(class, usbClassMarker) {
		props, err = d.registry.Properties(e)
		if err == nil && props == nil {
			props = map[string]any{}
		}
		return props, true, 0, err
	}

	parent, err = d.registry.Parent(e)
	return nil, false, parent, err
}

func (d *Detector) release(e registry.Entry) {
	if err := d.registry.Release(e); err != nil {
		d.logger.Warn("failed to release registry entry",
			zap.Uint32("entry", uint32(e)),
			zap.Error(err))
	}
}

// hexProperty formats an integer property as lowercase hex. A missing
// property is nil; a property that is not an integer is an error.
func hexProperty(props map[string]any, key string) (*string, error) {
	value, ok := props[key]
	if !ok {
		return nil, nil
	}

	var s string
	switch v := value.(type) {
	case int:
		s = strconv.FormatInt(int64(v), 16)
	case int8:
		s = strconv.FormatInt(int64(v), 16)
	case int16:
		s = strconv.FormatInt(int64(v), 16)
	case int32:
		s = strconv.FormatInt(int64(v), 16)
	case int64:
		s = strconv.FormatInt(v, 16)
	case uint:
		s = strconv.FormatUint(uint64(v), 16)
	case uint8:
		s = strconv.FormatUint(uint64(v), 16)
	case uint16:
		s = strconv.FormatUint(uint64(v), 16)
	case uint32:
		s = strconv.FormatUint(uint64(v), 16)
	case uint64:
		s = strconv.FormatUint(v, 16)
	default:
		return nil, fmt.Errorf("%w: %s is %T", ErrInvalidPropertyID, key, value)
	}
	return &s, nil
}
