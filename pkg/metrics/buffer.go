// Package metrics pkg/metrics/buffer.go
package metrics

import "iter"

// RingBuffer is a fixed-capacity FIFO window. Pushing into a full buffer
// evicts the oldest element. Insertion order is temporal order.
type RingBuffer[T any] struct {
	data  []T
	start int
	size  int
}

// NewRingBuffer creates a buffer with the given capacity. Capacities below
// one are clamped to one.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}

	return &RingBuffer[T]{
		data: make([]T, capacity),
	}
}

// Push appends an item, evicting the oldest if the buffer is full.
func (b *RingBuffer[T]) Push(item T) {
	if b.size < len(b.data) {
		b.data[(b.start+b.size)%len(b.data)] = item
		b.size++

		return
	}

	b.data[b.start] = item
	b.start = (b.start + 1) % len(b.data)
}

// Len returns the number of items currently held.
func (b *RingBuffer[T]) Len() int {
	return b.size
}

// IsEmpty reports whether the buffer holds no items.
func (b *RingBuffer[T]) IsEmpty() bool {
	return b.size == 0
}

// Capacity returns the fixed capacity.
func (b *RingBuffer[T]) Capacity() int {
	return len(b.data)
}

// All returns an iterator over the items, oldest first. Each call yields a
// fresh traversal.
func (b *RingBuffer[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < b.size; i++ {
			if !yield(b.data[(b.start+i)%len(b.data)]) {
				return
			}
		}
	}
}

// AsSlice returns a snapshot of the items ordered newest first. Used for
// "most recent N" queries such as recent-failure scans.
func (b *RingBuffer[T]) AsSlice() []T {
	out := make([]T, b.size)

	for i := 0; i < b.size; i++ {
		out[i] = b.data[(b.start+b.size-1-i)%len(b.data)]
	}

	return out
}

// Latest returns the most recent item, if any.
func (b *RingBuffer[T]) Latest() (T, bool) {
	var zero T

	if b.size == 0 {
		return zero, false
	}

	return b.data[(b.start+b.size-1)%len(b.data)], true
}

// Oldest returns the least recent item, if any.
func (b *RingBuffer[T]) Oldest() (T, bool) {
	var zero T

	if b.size == 0 {
		return zero, false
	}

	return b.data[b.start], true
}

// Clear removes all items without changing capacity.
func (b *RingBuffer[T]) Clear() {
	var zero T

	for i := range b.data {
		b.data[i] = zero
	}

	b.start = 0
	b.size = 0
}

// Clone returns a deep copy of the buffer. Element values are copied as-is.
func (b *RingBuffer[T]) Clone() *RingBuffer[T] {
	out := &RingBuffer[T]{
		data:  make([]T, len(b.data)),
		start: b.start,
		size:  b.size,
	}
	copy(out.data, b.data)

	return out
}
