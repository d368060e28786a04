// Package buffer provides generic, thread-safe bounded buffer implementations.
//
// The central type is a fixed-capacity circular buffer with configurable
// overflow policies (DropOldest by default, giving O(1) FIFO eviction) and
// always-on statistics. In addition to queue-style Read/ReadBatch access it
// supports non-destructive window scans (Snapshot, Recent) for consumers that
// analyze recent history in place, such as the event tracker.
package buffer

// Buffer represents a generic bounded buffer parameterized by item type T.
type Buffer[T any] interface {
	// Write adds an item to the buffer. Behavior when full depends on the
	// overflow policy.
	Write(item T) error

	// Read retrieves and removes one item from the buffer.
	// Returns the zero value and false if the buffer is empty.
	Read() (T, bool)

	// ReadBatch retrieves and removes up to max items from the buffer.
	ReadBatch(max int) []T

	// Peek retrieves the oldest item without removing it.
	Peek() (T, bool)

	// Snapshot returns a copy of the buffered items, oldest first, without
	// removing them.
	Snapshot() []T

	// Recent returns a copy of the newest n buffered items, oldest first,
	// without removing them. n larger than the current size returns all.
	Recent(n int) []T

	// Size returns the current number of items in the buffer.
	Size() int

	// Capacity returns the maximum number of items the buffer can hold.
	Capacity() int

	// IsFull returns true if the buffer is at maximum capacity.
	IsFull() bool

	// IsEmpty returns true if the buffer contains no items.
	IsEmpty() bool

	// Clear removes all items from the buffer.
	Clear()

	// Stats returns buffer statistics (always collected).
	Stats() *Statistics
}

// OverflowPolicy defines how the buffer behaves when it reaches capacity.
type OverflowPolicy int

const (
	// DropOldest removes the oldest item to make room for new items.
	DropOldest OverflowPolicy = iota

	// DropNewest drops new items when the buffer is full.
	DropNewest
)

// String returns a human-readable representation of the overflow policy.
func (p OverflowPolicy) String() string {
	switch p {
	case DropOldest:
		return "DropOldest"
	case DropNewest:
		return "DropNewest"
	default:
		return "Unknown"
	}
}

// DropCallback is called with each item dropped due to the overflow policy.
type DropCallback[T any] func(item T)

// Option configures buffer behavior using the functional options pattern.
type Option[T any] func(*bufferOptions[T])

type bufferOptions[T any] struct {
	overflowPolicy OverflowPolicy
	dropCallback   DropCallback[T]
}

// WithOverflowPolicy sets the overflow behavior for the buffer.
// Defaults to DropOldest if not specified.
func WithOverflowPolicy[T any](policy OverflowPolicy) Option[T] {
	return func(opts *bufferOptions[T]) {
		opts.overflowPolicy = policy
	}
}

// WithDropCallback sets a callback invoked with each dropped item.
func WithDropCallback[T any](callback DropCallback[T]) Option[T] {
	return func(opts *bufferOptions[T]) {
		opts.dropCallback = callback
	}
}

func applyOptions[T any](options ...Option[T]) *bufferOptions[T] {
	opts := &bufferOptions[T]{
		overflowPolicy: DropOldest,
	}

	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	return opts
}
