package concvec

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
)

type node[T any] struct {
	val  T
	next atomic.Pointer[node[T]] // nil until a later push links its node here
}

// List is an unbounded concurrent append-only vector backed by a linked
// node chain. Push never fails; random access walks the chain, so Get
// costs O(idx) — the price of unbounded capacity.
type List[T any] struct {
	head  atomic.Pointer[node[T]]
	tail  atomic.Pointer[node[T]]
	count atomic.Uint64 // advisory length

	pushAttempts uint64
	pushRetries  uint64
}

// ListStats is a snapshot of List push counters.
type ListStats struct {
	PushAttempts uint64
	PushRetries  uint64
}

// NewList creates an empty vector.
func NewList[T any]() *List[T] {
	return &List[T]{}
}

// Push appends a value. Always returns true: the vector grows without
// bound and the CAS loop retries until it wins.
// Safe to call concurrently from many goroutines.
//
// After the tail CAS succeeds, the superseded tail's next pointer is set
// in a separate step; a concurrent walk can briefly find the chain one
// node shorter than the advisory count. Get bounds itself by the count and
// reports such nodes as not visible yet.
func (l *List[T]) Push(val T) bool {
	atomic.AddUint64(&l.pushAttempts, 1)
	n := &node[T]{val: val}

	if l.tail.CompareAndSwap(nil, n) {
		// Won the empty->nonempty transition; only this goroutine stores
		// head. Until the store completes, head is not authoritative.
		l.head.Store(n)
	} else {
		var spins uint32
		for {
			prev := l.tail.Load()
			if prev == nil {
				panic("concvec: tail is nil behind a live push")
			}
			if l.tail.CompareAndSwap(prev, n) {
				// Link the superseded tail to the new node.
				prev.next.Store(n)
				break
			}

			atomic.AddUint64(&l.pushRetries, 1)
			spins++
			if spins%goschedEvery == 0 {
				runtime.Gosched()
			}
		}
	}

	l.count.Add(1)
	return true
}

// Get returns a pointer to the element at idx.
// Returns (nil, false) when idx is at or beyond the advisory count, or
// when the walk meets a link a concurrent push has not set yet. Published
// nodes are never mutated or unlinked, so the returned pointer stays valid
// for as long as the caller holds it.
// Cost is O(idx); never blocks, never retries.
func (l *List[T]) Get(idx int) (*T, bool) {
	if idx < 0 || uint64(idx) >= l.count.Load() {
		return nil, false
	}

	p := l.head.Load()
	for i := 0; i < idx && p != nil; i++ {
		p = p.next.Load()
	}
	if p == nil {
		// Counted, but the chain up to idx is not fully linked yet.
		return nil, false
	}
	return &p.val, true
}

// Len returns the advisory count; it may momentarily exceed the number of
// nodes a concurrent walk can reach.
func (l *List[T]) Len() int {
	return int(l.count.Load())
}

// Stats retrieves the current push counters.
func (l *List[T]) Stats() ListStats {
	return ListStats{
		PushAttempts: atomic.LoadUint64(&l.pushAttempts),
		PushRetries:  atomic.LoadUint64(&l.pushRetries),
	}
}

// Close reclaims the chain: walks from head to tail inclusive, calling
// release exactly once per element, then resets head, tail and count.
// Close must only be called when no other goroutine accesses the vector;
// under that precondition it is idempotent.
func (l *List[T]) Close(release func(T)) {
	tail := l.tail.Load()
	for p := l.head.Load(); p != nil; {
		if release != nil {
			release(p.val)
		}
		if p == tail {
			break
		}
		p = p.next.Load()
	}
	l.head.Store(nil)
	l.tail.Store(nil)
	l.count.Store(0)
}

// String dumps a snapshot of the chain for diagnostics. The snapshot may
// disagree with the dumped count under concurrent pushes — the chain can
// hold a node the count does not include yet, and vice versa.
// Not a stable format.
func (l *List[T]) String() string {
	head := l.head.Load()
	tail := l.tail.Load()

	var b strings.Builder
	fmt.Fprintf(&b, "List{len: %d, items: [", l.count.Load())
	for p := head; p != nil; p = p.next.Load() {
		if p != head {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v", p.val)
		if p == tail {
			break
		}
	}
	b.WriteString("]}")
	return b.String()
}
