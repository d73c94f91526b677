// Licensed under the MIT License. See LICENSE file in the project root for details.

package reclaim

// Participant holds one thread's (goroutine's) reclamation state: its
// control-block handle, the three retire buckets, and the two counters
// governing epoch observation. Every field below is touched only by the
// goroutine that owns the Participant except for the control block's two
// atomics, which the epoch-advance protocol reads from other goroutines.
type Participant struct {
	engine      *Engine
	cb          *controlBlock
	enterCount  uint32
	sinceUpdate uint32
	retireLists [numEpochs]*Reclaimable
	closed      bool
}

func (p *Participant) ensureControlBlock() {
	if p.cb == nil {
		p.cb = p.engine.registry.acquireEntry()
	}
}

// enterCritical marks the participant active on the first re-entrant call
// and runs the epoch-observation protocol. Nested calls (from a second
// guard pinning a second pointer) only bump
// the re-entrancy counter.
func (p *Participant) enterCritical() {
	p.enterCount++
	if p.enterCount == 1 {
		p.doEnterCritical()
	}
}

// leaveCritical mirrors enterCritical; the critical section ends only once
// every guard that entered it has been reset or retired.
func (p *Participant) leaveCritical() {
	debugAssert(p.enterCount > 0, "leaveCritical called without a matching enterCritical")
	p.enterCount--
	if p.enterCount == 0 {
		p.doLeaveCritical()
	}
}

func (p *Participant) doEnterCritical() {
	p.ensureControlBlock()

	// (3) relaxed store: publishes this goroutine's presence. The
	// sequentially-consistent total order needed to make this store
	// visible to a concurrent epoch-advance scan is established by Go's
	// own atomic.Bool, which provides at least the ordering of a release
	// store here; see tryAdvanceEpoch below for the paired scan.
	p.cb.inCritical.Store(true)

	// (4) acquire-load: pairs with the release-CAS in tryAdvanceEpoch
	// step 7, publishing whichever goroutine last advanced the epoch.
	epoch := p.engine.epoch.Load()

	switch {
	case p.cb.localEpoch.Load() != epoch:
		// New epoch observed from some other participant; adopt it.
		p.sinceUpdate = 0
	case p.sinceUpdate == p.engine.threshold:
		p.sinceUpdate = 0
		newEpoch := (epoch + 1) % numEpochs
		if !p.tryAdvanceEpoch(epoch) {
			return
		}
		epoch = newEpoch
	default:
		p.sinceUpdate++
		return
	}

	// We either just advanced the global epoch ourselves or we're
	// observing a new epoch published by someone else. Either way the
	// bucket we're about to adopt is two epochs behind and safe to free.
	p.cb.localEpoch.Store(epoch)
	p.destroyBucket(epoch)
}

func (p *Participant) doLeaveCritical() {
	// (5) release-store: pairs with the acquire-fence an epoch-advancer
	// executes after scanning the registry and finding no blocker.
	p.cb.inCritical.Store(false)
}

// tryAdvanceEpoch attempts to push the global epoch forward. curr is the
// epoch this participant observed as current; it returns false only when
// another participant is
// still pinned on the epoch that would be overwritten, in which case no
// retry happens this pass. Any other outcome (CAS success, or discovering
// the epoch was already advanced by someone else) is reported as true.
func (p *Participant) tryAdvanceEpoch(curr uint32) bool {
	e := p.engine
	newEpoch := (curr + 1) % numEpochs
	oldEpoch := (curr + numEpochs - 1) % numEpochs

	blocked := false
	e.registry.forEach(func(cb *controlBlock) bool {
		if cb.inCritical.Load() && cb.localEpoch.Load() == oldEpoch {
			blocked = true
			return false
		}
		return true
	})
	if blocked {
		return false
	}

	if e.epoch.Load() != curr {
		return true // someone else already advanced it
	}

	// (6) acquire-fence: synchronizes-with every blocking reader's
	// release-store of inCritical = false observed by the scan above.
	//
	// (7) release-CAS: synchronizes-with the acquire-load in
	// doEnterCritical step 4.
	if e.epoch.CompareAndSwap(curr, newEpoch) {
		p.adoptOrphans()
	}
	return true
}

// adoptOrphans absorbs every abandoned orphan record into this
// participant's own retire buckets, honoring each orphan's own
// targetEpoch rather than this participant's current epoch.
func (p *Participant) adoptOrphans() {
	for cur := p.engine.orphans.adoptAll(); cur != nil; {
		next := cur.next
		cur.next = nil
		p.pushRetired(&cur.retirable, cur.target)
		cur = next
	}
}

func (p *Participant) pushRetired(link *Reclaimable, epoch uint32) {
	link.next = p.retireLists[epoch]
	p.retireLists[epoch] = link
}

// addRetired pushes link onto the bucket for the current local epoch; this
// is what Guard.Retire calls after attaching the deleter.
func (p *Participant) addRetired(link *Reclaimable) {
	p.pushRetired(link, p.cb.localEpoch.Load())
}

func (p *Participant) destroyBucket(epoch uint32) {
	head := p.retireLists[epoch]
	p.retireLists[epoch] = nil
	destroyList(head)
}

func (p *Participant) hasRetired() bool {
	for _, head := range p.retireLists {
		if head != nil {
			return true
		}
	}
	return false
}

// Close tears down the participant. If it still holds retired nodes, they
// are handed to the orphan stash so a surviving participant can reclaim
// them. Close is idempotent.
func (p *Participant) Close() {
	if p.closed {
		return
	}
	p.closed = true

	if p.cb == nil {
		return // never entered a critical section; nothing was ever retired
	}

	if p.hasRetired() {
		// global_epoch - 1 (mod numEpochs) guarantees a full cycle: by
		// the time this orphan's bucket is itself safe to reclaim, every
		// node in all three of its lists is definitely unreachable.
		target := (p.engine.epoch.Load() + numEpochs - 1) % numEpochs
		p.engine.orphans.abandon(newOrphan(target, p.retireLists))
		p.retireLists = [numEpochs]*Reclaimable{}
	}

	debugAssert(!p.cb.inCritical.Load(), "participant closed while still in a critical section")
	p.engine.registry.releaseEntry(p.cb)
	p.cb = nil
}
