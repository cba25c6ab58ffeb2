package feed

import (
	"slices"
	"sync"
)

// RingBuffer is a fixed-capacity, thread-safe ring buffer of formatted edits.
// When the buffer is full, the oldest edit is evicted to make room for new entries.
// All methods are safe for concurrent use.
type RingBuffer struct {
	mu    sync.RWMutex
	items []FormattedEdit
	cap   int
	head  int // index of the oldest element
	count int // number of elements currently stored
}

// NewRingBuffer creates a new RingBuffer with the given capacity.
// Capacity must be at least 1.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{
		items: make([]FormattedEdit, capacity),
		cap:   capacity,
	}
}

// Add inserts an edit into the buffer. If the buffer is full, the oldest
// edit is overwritten.
func (rb *RingBuffer) Add(e FormattedEdit) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.count == rb.cap {
		rb.items[rb.head] = e
		rb.head = (rb.head + 1) % rb.cap
		return
	}
	rb.items[(rb.head+rb.count)%rb.cap] = e
	rb.count++
}

// ListAll returns all edits oldest first.
func (rb *RingBuffer) ListAll() []FormattedEdit {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	return rb.listLocked()
}

// ListNewestFirst returns all edits, most recent first.
func (rb *RingBuffer) ListNewestFirst() []FormattedEdit {
	all := rb.ListAll()
	slices.Reverse(all)
	return all
}

// ListByNamespace returns the buffered edits made in ns, oldest first.
func (rb *RingBuffer) ListByNamespace(ns int) []FormattedEdit {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	var result []FormattedEdit
	for _, e := range rb.listLocked() {
		if e.Namespace == ns {
			result = append(result, e)
		}
	}
	return result
}

// ListByTag returns the buffered edits carrying tag, oldest first.
func (rb *RingBuffer) ListByTag(tag string) []FormattedEdit {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	var result []FormattedEdit
	for _, e := range rb.listLocked() {
		if slices.Contains(e.Tags, tag) {
			result = append(result, e)
		}
	}
	return result
}

// Len returns the number of edits currently in the buffer.
func (rb *RingBuffer) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count
}

// Cap returns the capacity of the buffer.
func (rb *RingBuffer) Cap() int {
	return rb.cap
}

// listLocked returns all edits in chronological order.
// Caller must hold at least a read lock.
func (rb *RingBuffer) listLocked() []FormattedEdit {
	if rb.count == 0 {
		return nil
	}
	result := make([]FormattedEdit, rb.count)
	for i := 0; i < rb.count; i++ {
		result[i] = rb.items[(rb.head+i)%rb.cap]
	}
	return result
}
