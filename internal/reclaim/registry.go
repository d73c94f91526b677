// Licensed under the MIT License. See LICENSE file in the project root for details.

package reclaim

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// numEpochs is the modulus of the global epoch counter. Three epochs leave
// a full epoch of in-flight retirements between "definitely safe" and
// "just retired".
const numEpochs = 3

// controlBlock is a thread's (goroutine's) entry in the thread-block
// registry. Cache-line padded so that one goroutine spinning on
// inCritical/localEpoch never shares a line with a neighboring entry.
type controlBlock struct {
	inCritical atomic.Bool
	localEpoch atomic.Uint32
	inUse      atomic.Bool
	next       atomic.Pointer[controlBlock]
	_          cpu.CacheLinePad
}

// registry is the lock-free, append-mostly set of control blocks, one per
// goroutine that has ever entered a critical section. Entries are never
// removed from the list, only marked reusable, so forward iteration never
// needs to synchronize with release.
type registry struct {
	head atomic.Pointer[controlBlock]
}

// acquireEntry returns a reusable control block or allocates a new one and
// prepends it to the list.
func (r *registry) acquireEntry() *controlBlock {
	for cb := r.head.Load(); cb != nil; cb = cb.next.Load() {
		if cb.inUse.CompareAndSwap(false, true) {
			cb.localEpoch.Store(numEpochs) // sentinel "never observed an epoch"
			return cb
		}
	}

	cb := &controlBlock{}
	cb.inUse.Store(true)
	cb.localEpoch.Store(numEpochs)
	for {
		head := r.head.Load()
		cb.next.Store(head)
		if r.head.CompareAndSwap(head, cb) {
			return cb
		}
	}
}

// releaseEntry marks cb reusable without unlinking it. Iteration remains
// safe without locks because the list never shrinks.
func (r *registry) releaseEntry(cb *controlBlock) {
	cb.inUse.Store(false)
}

// forEach calls fn for every control block in the registry, stopping early
// if fn returns false. Used only by the epoch-advance protocol's scan.
func (r *registry) forEach(fn func(*controlBlock) bool) {
	for cb := r.head.Load(); cb != nil; cb = cb.next.Load() {
		if !fn(cb) {
			return
		}
	}
}
