// Package concvec provides concurrent append-only vectors: many goroutines
// push simultaneously without locks while any goroutine reads by positional
// index, concurrently with ongoing pushes.
//
// Two interchangeable implementations are provided:
//   - Fixed: pre-allocated storage with a fixed capacity, O(1) random access
//   - List: unbounded linked node chain, O(idx) random access
//
// Both reserve the right to write a position with an atomic compare-and-swap
// and make the element visible with a separate atomic publication step, so
// a reader never observes a half-written element. Elements are write-once:
// once published they are never mutated or removed.
package concvec

// Reservation/publication pattern after Dmitry Vyukov's bounded MPMC queue
// https://www.1024cores.net/home/lock-free-algorithms/queues/bounded-mpmc-queue
// degenerated to write-once slots: a position is reserved at most once and
// its publication signal fires exactly once.

// Vector is the common contract of the two vectors.
//
// Implementations are append-only and non-blocking: Push returns false when
// a fixed-capacity vector is full (the unbounded variant always returns
// true), Get returns false for indices that are out of range or not yet
// published. Len is advisory: under concurrent pushes the number of
// elements actually readable at the same instant may be lower.
type Vector[T any] interface {
	// Push appends a value. Returns false if the vector is full.
	Push(v T) bool

	// Get returns a pointer to the element at idx, or false if idx is out
	// of range or the element is not visible yet. Elements are write-once:
	// a returned pointer stays valid and its value never changes.
	Get(idx int) (*T, bool)

	// Len returns the advisory element count.
	Len() int
}

var (
	_ Vector[int] = (*Fixed[int])(nil)
	_ Vector[int] = (*List[int])(nil)
)
