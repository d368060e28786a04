package buffer

import (
	"sync"
)

// circularBuffer is a thread-safe circular buffer with configurable overflow
// policies.
type circularBuffer[T any] struct {
	mu       sync.RWMutex
	items    []T
	capacity int
	size     int
	head     int // next write position
	tail     int // next read position
	stats    *Statistics
	opts     *bufferOptions[T]
}

// NewCircularBuffer creates a circular buffer with the given capacity.
// A capacity below 1 is raised to 1.
func NewCircularBuffer[T any](capacity int, options ...Option[T]) Buffer[T] {
	if capacity <= 0 {
		capacity = 1
	}

	return &circularBuffer[T]{
		items:    make([]T, capacity),
		capacity: capacity,
		stats:    NewStatistics(),
		opts:     applyOptions(options...),
	}
}

// Write adds an item to the buffer according to the overflow policy.
func (cb *circularBuffer[T]) Write(item T) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.size == cb.capacity {
		switch cb.opts.overflowPolicy {
		case DropOldest:
			dropped := cb.items[cb.tail]
			cb.tail = (cb.tail + 1) % cb.capacity
			cb.size--

			cb.stats.Overflow()
			cb.stats.Drop()

			if cb.opts.dropCallback != nil {
				// Run the callback outside the lock to avoid deadlock.
				defer cb.opts.dropCallback(dropped)
			}

		case DropNewest:
			cb.stats.Overflow()
			cb.stats.Drop()

			if cb.opts.dropCallback != nil {
				defer cb.opts.dropCallback(item)
			}
			return nil
		}
	}

	cb.items[cb.head] = item
	cb.head = (cb.head + 1) % cb.capacity
	cb.size++

	cb.stats.Write()
	cb.stats.UpdateSize(int64(cb.size))

	return nil
}

// Read retrieves and removes one item from the buffer.
func (cb *circularBuffer[T]) Read() (T, bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	var zero T

	if cb.size == 0 {
		return zero, false
	}

	item := cb.items[cb.tail]
	cb.items[cb.tail] = zero // clear for GC
	cb.tail = (cb.tail + 1) % cb.capacity
	cb.size--

	cb.stats.Read()
	cb.stats.UpdateSize(int64(cb.size))

	return item, true
}

// ReadBatch retrieves and removes up to max items from the buffer.
func (cb *circularBuffer[T]) ReadBatch(max int) []T {
	if max <= 0 {
		return nil
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.size == 0 {
		return nil
	}

	readCount := max
	if readCount > cb.size {
		readCount = cb.size
	}

	result := make([]T, readCount)
	var zero T

	for i := 0; i < readCount; i++ {
		result[i] = cb.items[cb.tail]
		cb.items[cb.tail] = zero
		cb.tail = (cb.tail + 1) % cb.capacity
		cb.size--

		cb.stats.Read()
	}

	cb.stats.UpdateSize(int64(cb.size))

	return result
}

// Peek retrieves the oldest item without removing it.
func (cb *circularBuffer[T]) Peek() (T, bool) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	var zero T

	if cb.size == 0 {
		return zero, false
	}

	cb.stats.Peek()
	return cb.items[cb.tail], true
}

// Snapshot returns a copy of all buffered items, oldest first.
func (cb *circularBuffer[T]) Snapshot() []T {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return cb.copyNewest(cb.size)
}

// Recent returns a copy of the newest n items, oldest first.
func (cb *circularBuffer[T]) Recent(n int) []T {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	if n > cb.size {
		n = cb.size
	}
	return cb.copyNewest(n)
}

// copyNewest copies the newest n items in oldest-first order.
// Caller must hold at least a read lock.
func (cb *circularBuffer[T]) copyNewest(n int) []T {
	if n <= 0 {
		return nil
	}

	result := make([]T, n)
	start := (cb.tail + cb.size - n) % cb.capacity
	for i := 0; i < n; i++ {
		result[i] = cb.items[(start+i)%cb.capacity]
	}
	return result
}

// Size returns the current number of items in the buffer.
func (cb *circularBuffer[T]) Size() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.size
}

// Capacity returns the maximum number of items the buffer can hold.
func (cb *circularBuffer[T]) Capacity() int {
	return cb.capacity // immutable, no lock needed
}

// IsFull returns true if the buffer is at maximum capacity.
func (cb *circularBuffer[T]) IsFull() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.size == cb.capacity
}

// IsEmpty returns true if the buffer contains no items.
func (cb *circularBuffer[T]) IsEmpty() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.size == 0
}

// Clear removes all items from the buffer.
func (cb *circularBuffer[T]) Clear() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	var zero T
	for i := 0; i < cb.capacity; i++ {
		cb.items[i] = zero
	}

	cb.head = 0
	cb.tail = 0
	cb.size = 0

	cb.stats.UpdateSize(0)
}

// Stats returns buffer statistics.
func (cb *circularBuffer[T]) Stats() *Statistics {
	return cb.stats
}
