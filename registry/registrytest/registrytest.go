// Package registrytest provides a scripted device registry for tests.
package registrytest

import (
	"fmt"
	"sync"

	"github.com/allbin/go-serialid/registry"
)

// Node is one device in a scripted tree.
type Node struct {
	Name       string
	Class      string
	ClassErr   error
	Parent     *Node
	Properties map[string]any
}

// Registry serves a fixed list of devices. Handle bookkeeping is strict:
// releasing a handle twice is recorded in DoubleReleases.
type Registry struct {
	Devices []*Node

	// MatchErr is returned by Match when set.
	MatchErr error
	// NilIterator makes Match return a nil iterator without an error.
	NilIterator bool
	// IteratorErr is returned by the iterator's Release when set.
	IteratorErr error

	handles registry.Handles[*Node]

	mu               sync.Mutex
	iteratorReleases int
	doubleReleases   int
}

// New returns a registry enumerating devices in order.
func New(devices ...*Node) *Registry {
	return &Registry{Devices: devices}
}

// Device returns a serial device node with the given callout path.
func Device(path string, parent *Node) *Node {
	return &Node{
		Name:       path,
		Class:      "IOSerialBSDClient",
		Parent:     parent,
		Properties: map[string]any{registry.KeyCalloutDevice: path},
	}
}

// Chain links nodes so that each is the parent of the one before it and
// returns the first.
func Chain(nodes ...*Node) *Node {
	for i := 0; i+1 < len(nodes); i++ {
		nodes[i].Parent = nodes[i+1]
	}
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// Outstanding reports handles that were acquired and never released.
func (r *Registry) Outstanding() int {
	return r.handles.Outstanding()
}

// IteratorReleases reports how many times an iterator was released.
func (r *Registry) IteratorReleases() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.iteratorReleases
}

// DoubleReleases reports releases of handles that were not live.
func (r *Registry) DoubleReleases() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doubleReleases
}

func (r *Registry) Match(class string) (registry.Iterator, error) {
	if r.MatchErr != nil {
		return nil, r.MatchErr
	}
	if class != registry.ClassSerial {
		return nil, fmt.Errorf("%w: %q", registry.ErrUnsupportedClass, class)
	}
	if r.NilIterator {
		return nil, nil
	}
	return &iterator{r: r, inner: registry.NewSliceIterator(&r.handles, r.Devices)}, nil
}

func (r *Registry) Parent(e registry.Entry) (registry.Entry, error) {
	node, err := r.handles.Lookup(e)
	if err != nil {
		return 0, err
	}
	if node.Parent == nil {
		return 0, registry.ErrNoParent
	}
	return r.handles.Acquire(node.Parent), nil
}

func (r *Registry) ClassName(e registry.Entry) (string, error) {
	node, err := r.handles.Lookup(e)
	if err != nil {
		return "", err
	}
	if node.ClassErr != nil {
		return "", node.ClassErr
	}
	return node.Class, nil
}

func (r *Registry) Property(e registry.Entry, key string) (any, error) {
	node, err := r.handles.Lookup(e)
	if err != nil {
		return nil, err
	}
	value, ok := node.Properties[key]
	if !ok {
		return nil, registry.ErrPropertyNotFound
	}
	return value, nil
}

func (r *Registry) Properties(e registry.Entry) (map[string]any, error) {
	node, err := r.handles.Lookup(e)
	if err != nil {
		return nil, err
	}
	props := make(map[string]any, len(node.Properties))
	for k, v := range node.Properties {
		props[k] = v
	}
	return props, nil
}

func (r *Registry) Release(e registry.Entry) error {
	err := r.handles.Release(e)
	if err != nil {
		r.mu.Lock()
		r.doubleReleases++
		r.mu.Unlock()
	}
	return err
}

type iterator struct {
	r     *Registry
	inner registry.Iterator
}

func (it *iterator) Next() (registry.Entry, bool) {
	return it.inner.Next()
}

func (it *iterator) Release() error {
	it.r.mu.Lock()
	it.r.iteratorReleases++
	it.r.mu.Unlock()

	if err := it.inner.Release(); err != nil {
		return err
	}
	return it.r.IteratorErr
}
