// Package registry describes the host device registry that serial port
// discovery walks, and provides implementations of it.
//
// The model follows a service registry: devices are nodes in a tree, the
// caller holds opaque handles (Entry) to nodes, asks a node for its class
// name, parent and properties, and releases every handle it obtained.
// Sysfs walks Linux sysfs; Enumerator adapts go.bug.st/serial's port
// enumerator for hosts without sysfs.
package registry

import "errors"

// Entry is an opaque handle to a registry node. The zero Entry is never
// handed out.
type Entry uint32

// ClassSerial matches every serial device, real or virtual, that has a
// device node.
const ClassSerial = "serial"

// ClassUSBDevice is the class name reported for USB device nodes, the ones
// carrying vendor and product IDs.
const ClassUSBDevice = "USBDevice"

// ClassGeneric is reported for nodes without a known class.
const ClassGeneric = "device"

// Property keys understood by the registries in this package.
const (
	KeyCalloutDevice = "IOCalloutDevice"
	KeyVendorID      = "idVendor"
	KeyProductID     = "idProduct"
	KeyLocationID    = "locationID"
	KeySerialNumber  = "USB Serial Number"
	KeyVendorString  = "USB Vendor Name"
	KeyProductString = "USB Product Name"
)

var (
	ErrUnsupportedClass = errors.New("registry: unsupported device class")
	ErrNoParent         = errors.New("registry: node has no parent")
	ErrPropertyNotFound = errors.New("registry: property not found")
	ErrInvalidHandle    = errors.New("registry: invalid or released handle")
)

// Iterator yields the entries of a match set. Entries returned by Next are
// owned by the caller and must be released through the Registry; Release
// frees the iterator itself.
type Iterator interface {
	Next() (Entry, bool)
	Release() error
}

// Registry is the host's device registry.
type Registry interface {
	// Match returns an iterator over all devices of the given class. When no
	// iterator can be created it returns an error, or a nil Iterator
	// interface value; a typed nil pointer wrapped in the interface is not
	// detected by callers and panics on Next.
	Match(class string) (Iterator, error)
	// Parent returns a new handle to the parent of e, or ErrNoParent.
	Parent(e Entry) (Entry, error)
	ClassName(e Entry) (string, error)
	// Property returns a single property, or ErrPropertyNotFound.
	Property(e Entry, key string) (any, error)
	Properties(e Entry) (map[string]any, error)
	Release(e Entry) error
}
