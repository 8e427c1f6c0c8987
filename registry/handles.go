package registry

import "sync"

// Handles maps live Entry values to the nodes they reference. It is safe
// for concurrent use, so one registry can serve concurrent discovery calls.
type Handles[T any] struct {
	mu   sync.Mutex
	next Entry
	live map[Entry]T
}

// Acquire returns a new handle for node.
func (h *Handles[T]) Acquire(node T) Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.live == nil {
		h.live = make(map[Entry]T)
	}
	h.next++
	h.live[h.next] = node
	return h.next
}

// Lookup returns the node behind e.
func (h *Handles[T]) Lookup(e Entry) (T, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	node, ok := h.live[e]
	if !ok {
		var zero T
		return zero, ErrInvalidHandle
	}
	return node, nil
}

// Release invalidates e. Releasing a handle twice returns ErrInvalidHandle.
func (h *Handles[T]) Release(e Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.live[e]; !ok {
		return ErrInvalidHandle
	}
	delete(h.live, e)
	return nil
}

// Outstanding reports how many handles have not been released.
func (h *Handles[T]) Outstanding() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}

// sliceIterator hands out handles for a fixed list of nodes, acquiring each
// handle only when Next reaches it.
type sliceIterator[T any] struct {
	handles  *Handles[T]
	nodes    []T
	pos      int
	released bool
}

// NewSliceIterator returns an Iterator over nodes whose entries are
// allocated from handles.
func NewSliceIterator[T any](handles *Handles[T], nodes []T) Iterator {
	return &sliceIterator[T]{handles: handles, nodes: nodes}
}

func (it *sliceIterator[T]) Next() (Entry, bool) {
	if it.released || it.pos >= len(it.nodes) {
		return 0, false
	}
	node := it.nodes[it.pos]
	it.pos++
	return it.handles.Acquire(node), true
}

func (it *sliceIterator[T]) Release() error {
	if it.released {
		return ErrInvalidHandle
	}
	it.released = true
	it.nodes = nil
	return nil
}
