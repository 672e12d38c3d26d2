package concvec

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
)

const goschedEvery = 64 // reduce runtime.Gosched() frequency in hot loops

type fslot[T any] struct {
	published atomic.Uint32 // 0 until val is fully written, then 1, exactly once
	val       T
}

// Fixed is a fixed-capacity concurrent append-only vector.
//
// Storage for all slots is allocated up front; a slot is owned by the
// goroutine that wins its index via CAS on the reservation counter and is
// written exactly once. Readers trust a slot's value only after observing
// its publication flag.
type Fixed[T any] struct {
	// Optional padding to avoid false sharing between hot fields.
	_     [64]byte
	slots []fslot[T]
	_     [64]byte
	next  atomic.Uint64 // reservation counter: next free index and advisory length
	_     [64]byte

	pushAttempts uint64
	pushRetries  uint64
	pushFull     uint64
}

// FixedStats is a snapshot of Fixed push counters.
type FixedStats struct {
	PushAttempts uint64
	PushRetries  uint64
	PushFull     uint64
}

// NewFixed creates a vector with a fixed capacity.
// 'capacity' must be > 0.
func NewFixed[T any](capacity int) *Fixed[T] {
	if capacity <= 0 {
		panic("capacity must be > 0")
	}

	return &Fixed[T]{
		slots: make([]fslot[T], capacity),
	}
}

// Push appends a value.
// Returns false if the vector is full — no retry, the caller decides
// whether to retry elsewhere, drop the value or propagate.
// Safe to call concurrently from many goroutines.
func (v *Fixed[T]) Push(val T) bool {
	atomic.AddUint64(&v.pushAttempts, 1)
	var spins uint32
	for {
		pos := v.next.Load()
		if pos == uint64(len(v.slots)) {
			atomic.AddUint64(&v.pushFull, 1)
			return false
		}

		// Try to reserve index pos. Exactly one competing goroutine wins
		// per distinct counter value.
		if v.next.CompareAndSwap(pos, pos+1) {
			s := &v.slots[pos]
			if s.published.Load() != 0 {
				panic("concvec: slot reserved twice")
			}
			s.val = val
			// Publish the value, strictly after the value write.
			s.published.Store(1)
			return true
		}

		atomic.AddUint64(&v.pushRetries, 1)
		spins++
		if spins%goschedEvery == 0 {
			runtime.Gosched()
		}
	}
}

// Get returns a pointer to the element at idx.
// Returns (nil, false) if idx is out of range or the slot is not published
// yet — "never reserved" and "write in flight" are indistinguishable on
// purpose. Published elements are never mutated, so the returned pointer
// stays valid for as long as the caller holds it.
// Safe to call concurrently with pushes; never blocks, never retries.
func (v *Fixed[T]) Get(idx int) (*T, bool) {
	if idx < 0 || idx >= len(v.slots) {
		return nil, false
	}

	s := &v.slots[idx]
	if s.published.Load() == 0 {
		return nil, false
	}
	return &s.val, true
}

// Len returns the advisory length: the reservation counter. Pushes in
// flight mean the number of published (readable) slots may be lower at the
// same instant.
func (v *Fixed[T]) Len() int {
	return int(v.next.Load())
}

// Cap returns the fixed capacity.
func (v *Fixed[T]) Cap() int {
	return len(v.slots)
}

// Stats retrieves the current push counters.
func (v *Fixed[T]) Stats() FixedStats {
	return FixedStats{
		PushAttempts: atomic.LoadUint64(&v.pushAttempts),
		PushRetries:  atomic.LoadUint64(&v.pushRetries),
		PushFull:     atomic.LoadUint64(&v.pushFull),
	}
}

// Close finalizes the vector: release is called exactly once for every
// published element, unpublished slots are skipped, then all slots and the
// reservation counter are reset.
// Close must only be called when no other goroutine accesses the vector;
// under that precondition it is idempotent.
func (v *Fixed[T]) Close(release func(T)) {
	var zero T
	for i := range v.slots {
		s := &v.slots[i]
		if s.published.Load() == 0 {
			continue
		}
		if release != nil {
			release(s.val)
		}
		s.val = zero
		s.published.Store(0)
	}
	v.next.Store(0)
}

// String dumps all slots for diagnostics, "_" marking unpublished ones.
// Best-effort snapshot under concurrent pushes, not a stable format.
func (v *Fixed[T]) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fixed{len: %d, slots: [", v.next.Load())
	for i := range v.slots {
		if i > 0 {
			b.WriteByte(' ')
		}
		s := &v.slots[i]
		if s.published.Load() == 0 {
			b.WriteByte('_')
		} else {
			fmt.Fprintf(&b, "%v", s.val)
		}
	}
	b.WriteString("]}")
	return b.String()
}
