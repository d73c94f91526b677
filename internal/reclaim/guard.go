// Licensed under the MIT License. See LICENSE file in the project root for details.

package reclaim

// Guard is a scoped pin on a single, possibly null, possibly tagged
// pointer value. A Guard with a non-null pointer keeps its
// owning Participant inside a critical section; resetting, retiring, or
// moving out of the Guard is what lets the participant leave it. Go has no
// destructors, so callers are responsible for calling Reset (typically via
// defer) or Retire exactly once per Guard that ever held a non-null value.
type Guard[T any] struct {
	participant *Participant
	ptr         *T
	tag         uint8
}

// NewGuard returns a Guard with no pinned pointer, owned by p.
func NewGuard[T any](p *Participant) *Guard[T] {
	return &Guard[T]{participant: p}
}

// NewGuardFromValue pins v directly without loading it from a
// ConcurrentPointer, for pointers obtained some other way (e.g. the result
// of a CAS).
func NewGuardFromValue[T any](p *Participant, v Marked[T]) *Guard[T] {
	g := &Guard[T]{participant: p}
	g.installValue(v)
	return g
}

func (g *Guard[T]) installValue(v Marked[T]) {
	if v.ptr != nil {
		g.participant.enterCritical()
	}
	g.ptr, g.tag = v.ptr, v.tag
}

// Acquire loads src with order and pins the result, entering the critical
// section first if the guard wasn't already holding a non-null value. A
// relaxed fast-path check
// avoids entering the critical section for sources that are obviously
// null.
func (g *Guard[T]) Acquire(src *ConcurrentPointer[T], order Order) {
	if src.Load(OrderRelaxed).IsNull() {
		g.Reset()
		return
	}

	if g.ptr == nil {
		g.participant.enterCritical()
	}
	v := src.Load(order) // (1) potentially synchronizes-with a release store on src
	g.ptr, g.tag = v.ptr, v.tag
	if g.ptr == nil {
		g.participant.leaveCritical()
	}
}

// AcquireIfEqual validates an optimistic snapshot: if src no longer equals
// expected, the guard is
// reset and the comparison result is returned without ever entering the
// critical section for a value that turned out to be stale.
func (g *Guard[T]) AcquireIfEqual(src *ConcurrentPointer[T], expected Marked[T], order Order) bool {
	actual := src.Load(OrderRelaxed)
	if actual.IsNull() || actual != expected {
		g.Reset()
		return actual == expected
	}

	if g.ptr == nil {
		g.participant.enterCritical()
	}
	v := src.Load(order) // (2) potentially synchronizes-with a release store on src
	if v.IsNull() || v != expected {
		g.participant.leaveCritical()
		g.ptr, g.tag = nil, 0
		return v == expected
	}
	g.ptr, g.tag = v.ptr, v.tag
	return true
}

// Reset releases the pin, leaving the critical section if it was held.
func (g *Guard[T]) Reset() {
	if g.ptr != nil {
		g.participant.leaveCritical()
	}
	g.ptr, g.tag = nil, 0
}

// Retire hands the held pointer to the engine for deferred destruction,
// attaching deleter as the callback the eventual reclaiming participant
// will invoke, then resets the guard. ptr's type must embed Reclaimable
// (see pointer.go); retiring a type that doesn't is a programming error
// caught only by debugAssert.
func (g *Guard[T]) Retire(deleter func()) {
	debugAssert(g.ptr != nil, "Retire called on a guard holding no pointer")
	if g.ptr == nil {
		return
	}

	r, ok := any(g.ptr).(Retirable)
	debugAssert(ok, "Retire: guarded type does not embed Reclaimable")
	if ok {
		link := r.Link()
		link.del = deleter
		g.participant.addRetired(link)
	}
	g.Reset()
}

// Clone returns a new Guard sharing the same pin as g: both guards
// independently participate in the critical section (the re-entrancy
// counter on the shared participant accounts for both), and releasing
// either one alone does not let the section end.
func (g *Guard[T]) Clone() *Guard[T] {
	c := &Guard[T]{participant: g.participant, ptr: g.ptr, tag: g.tag}
	if c.ptr != nil {
		g.participant.enterCritical()
	}
	return c
}

// MoveTo transfers g's pin to a freshly constructed Guard without entering
// or leaving the critical section, and clears g.
func (g *Guard[T]) MoveTo() *Guard[T] {
	c := &Guard[T]{participant: g.participant, ptr: g.ptr, tag: g.tag}
	g.ptr, g.tag = nil, 0
	return c
}

// AssignFrom is the copy-assignment form of Clone: g first releases
// whatever it held, then shares other's pin.
func (g *Guard[T]) AssignFrom(other *Guard[T]) {
	if g == other {
		return
	}
	g.Reset()
	g.ptr, g.tag = other.ptr, other.tag
	if g.ptr != nil {
		g.participant.enterCritical()
	}
}

// AssignMoveFrom is the move-assignment form of MoveTo: g releases
// whatever it held, then takes other's pin without touching the critical
// section, and clears other.
func (g *Guard[T]) AssignMoveFrom(other *Guard[T]) {
	if g == other {
		return
	}
	g.Reset()
	g.ptr, g.tag = other.ptr, other.tag
	other.ptr, other.tag = nil, 0
}

// Pointer returns the currently held pointer, or nil.
func (g *Guard[T]) Pointer() *T { return g.ptr }

// Tag returns the tag bits of the currently held pointer.
func (g *Guard[T]) Tag() uint8 { return g.tag }

// IsNull reports whether the guard currently holds no pointer.
func (g *Guard[T]) IsNull() bool { return g.ptr == nil }

// AcquireGuard default-constructs a guard for p and calls Acquire on src.
func AcquireGuard[T any](p *Participant, src *ConcurrentPointer[T], order Order) *Guard[T] {
	g := NewGuard[T](p)
	g.Acquire(src, order)
	return g
}
