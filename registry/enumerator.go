package registry

import (
	"fmt"
	"strconv"

	"go.bug.st/serial/enumerator"
)

// Enumerator is a Registry built on go.bug.st/serial's port enumerator,
// for hosts where sysfs is not available. The enumerator reports a flat
// port list, so the tree is at most two levels deep: every port is a root
// node, and USB ports get one synthetic ClassUSBDevice parent carrying the
// VID, PID and serial number. Location IDs are not available.
type Enumerator struct {
	list    func() ([]*enumerator.PortDetails, error)
	handles Handles[enumNode]
}

type enumNode struct {
	port *enumerator.PortDetails
	usb  bool
}

// NewEnumerator returns a registry backed by enumerator.GetDetailedPortsList.
func NewEnumerator() *Enumerator {
	return &Enumerator{list: enumerator.GetDetailedPortsList}
}

// Outstanding reports how many handles have not been released.
func (e *Enumerator) Outstanding() int {
	return e.handles.Outstanding()
}

// Match enumerates the ports in the order the enumerator reports them.
func (e *Enumerator) Match(class string) (Iterator, error) {
	if class != ClassSerial {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedClass, class)
	}

	ports, err := e.list()
	if err != nil {
		return nil, err
	}

	nodes := make([]enumNode, 0, len(ports))
	for _, p := range ports {
		if p == nil {
			continue
		}
		nodes = append(nodes, enumNode{port: p})
	}
	return NewSliceIterator(&e.handles, nodes), nil
}

func (e *Enumerator) Parent(entry Entry) (Entry, error) {
	node, err := e.handles.Lookup(entry)
	if err != nil {
		return 0, err
	}
	if node.usb || !node.port.IsUSB {
		return 0, ErrNoParent
	}
	return e.handles.Acquire(enumNode{port: node.port, usb: true}), nil
}

func (e *Enumerator) ClassName(entry Entry) (string, error) {
	node, err := e.handles.Lookup(entry)
	if err != nil {
		return "", err
	}
	if node.usb {
		return ClassUSBDevice, nil
	}
	return ClassSerial, nil
}

func (e *Enumerator) Property(entry Entry, key string) (any, error) {
	props, err := e.Properties(entry)
	if err != nil {
		return nil, err
	}
	value, ok := props[key]
	if !ok {
		return nil, ErrPropertyNotFound
	}
	return value, nil
}

func (e *Enumerator) Properties(entry Entry) (map[string]any, error) {
	node, err := e.handles.Lookup(entry)
	if err != nil {
		return nil, err
	}

	props := make(map[string]any)
	if !node.usb {
		props[KeyCalloutDevice] = node.port.Name
		return props, nil
	}

	if node.port.VID != "" {
		props[KeyVendorID] = parseHexProperty(node.port.VID)
	}
	if node.port.PID != "" {
		props[KeyProductID] = parseHexProperty(node.port.PID)
	}
	if node.port.SerialNumber != "" {
		props[KeySerialNumber] = node.port.SerialNumber
	}
	if node.port.Product != "" {
		props[KeyProductString] = node.port.Product
	}
	return props, nil
}

func (e *Enumerator) Release(entry Entry) error {
	return e.handles.Release(entry)
}

// parseHexProperty turns the enumerator's "2341" style IDs into numbers,
// matching what the sysfs registry reports.
func parseHexProperty(raw string) any {
	if v, err := strconv.ParseUint(raw, 16, 32); err == nil {
		return v
	}
	return raw
}
