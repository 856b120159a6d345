package frontier

import (
	"bytes"
	"sync"
)

// QueueRegistry is an ordered, rotating collection of queues: O(1)
// lookup by QueueWithinCrawl, insertion order preserved so Recovery's
// sort and the dispatcher's round-robin rotation are deterministic,
// and a cursor for fair dispatch.
//
// One mutex guards order, index membership, and the cursor. It is
// held only for the duration of a map operation or a cursor step,
// never across a KV-store call.
type QueueRegistry struct {
	mu       sync.Mutex
	order    []QueueWithinCrawl
	index    map[QueueWithinCrawl]*QueueMetadata
	cursor   int
	deleting map[QueueWithinCrawl]bool
}

// NewQueueRegistry returns an empty registry.
func NewQueueRegistry() *QueueRegistry {
	return &QueueRegistry{
		index:    make(map[QueueWithinCrawl]*QueueMetadata),
		deleting: make(map[QueueWithinCrawl]bool),
	}
}

// GetOrInsert returns the metadata for q, creating it via factory (and
// appending q to the insertion order) if this is the first time q has
// been seen.
func (r *QueueRegistry) GetOrInsert(q QueueWithinCrawl, factory func() *QueueMetadata) (meta *QueueMetadata, wasNew bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.index[q]; ok {
		return m, false
	}
	m := factory()
	r.index[q] = m
	r.order = append(r.order, q)
	return m, true
}

// Get returns the metadata for q, if any.
func (r *QueueRegistry) Get(q QueueWithinCrawl) (*QueueMetadata, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.index[q]
	return m, ok
}

// Remove deletes q from the registry, returning its metadata if it
// was present.
func (r *QueueRegistry) Remove(q QueueWithinCrawl) (*QueueMetadata, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.index[q]
	if !ok {
		return nil, false
	}
	delete(r.index, q)
	for i, o := range r.order {
		if o == q {
			r.order = append(r.order[:i], r.order[i+1:]...)
			if r.cursor > i || r.cursor >= len(r.order) {
				r.cursor = 0
			}
			break
		}
	}
	return m, true
}

// Keys returns a snapshot copy of the insertion order. Callers hold no
// lock on the returned slice.
func (r *QueueRegistry) Keys() []QueueWithinCrawl {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]QueueWithinCrawl, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered queues.
func (r *QueueRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// RotationFrom returns a snapshot of every registered queue, starting
// at the current cursor position and wrapping around. It does not move
// the cursor; the Get Pipeline calls Advance afterwards. This is the
// ordering the Get Pipeline dispatches queues in.
func (r *QueueRegistry) RotationFrom() []QueueWithinCrawl {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.order)
	if n == 0 {
		return nil
	}
	out := make([]QueueWithinCrawl, n)
	for i := 0; i < n; i++ {
		out[i] = r.order[(r.cursor+i)%n]
	}
	return out
}

// Advance steps the round-robin cursor forward by the number of
// queues that were visited in the last dispatch sweep, wrapping at the
// end of the order.
func (r *QueueRegistry) Advance(visited int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.order) == 0 {
		r.cursor = 0
		return
	}
	r.cursor = (r.cursor + visited) % len(r.order)
}

// MarkDeleting records that q is being torn down; concurrent Puts
// against it must be dropped. Guarded by the same mutex as order/
// index; a false negative here only risks one extra Put being applied
// just before the range-delete removes it again.
func (r *QueueRegistry) MarkDeleting(q QueueWithinCrawl) {
	r.mu.Lock()
	r.deleting[q] = true
	r.mu.Unlock()
}

// UnmarkDeleting clears the deleting flag for q.
func (r *QueueRegistry) UnmarkDeleting(q QueueWithinCrawl) {
	r.mu.Lock()
	delete(r.deleting, q)
	r.mu.Unlock()
}

// IsDeleting reports whether q is currently being torn down.
func (r *QueueRegistry) IsDeleting(q QueueWithinCrawl) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleting[q]
}

// NextInOrder returns the queue whose encoded key prefix immediately
// follows q's in KV-store byte order among currently registered queues,
// used by DeleteQueue to bound its range-delete. ok is false if no
// registered queue's prefix sorts after q's.
func (r *QueueRegistry) NextInOrder(q QueueWithinCrawl) (next QueueWithinCrawl, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := encodeQueuePrefix(q)
	var best QueueWithinCrawl
	var bestPrefix []byte
	found := false
	for _, o := range r.order {
		if o == q {
			continue
		}
		p := encodeQueuePrefix(o)
		if bytes.Compare(start, p) < 0 && (!found || bytes.Compare(p, bestPrefix) < 0) {
			best, bestPrefix = o, p
			found = true
		}
	}
	return best, found
}
