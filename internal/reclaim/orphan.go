// Licensed under the MIT License. See LICENSE file in the project root for details.

package reclaim

import "sync/atomic"

// orphanNode carries the three retire-bucket heads of a participant that
// exited while nodes were still awaiting reclamation. It is itself
// retirable: once adopted, it is pushed into the adopter's bucket at
// targetEpoch as a single object whose deleter walks all three of its own
// lists, rather than being spliced into three separate adopter buckets.
type orphanNode struct {
	next      *orphanNode // abandon-stack link; distinct from retirable.next
	target    uint32
	lists     [numEpochs]*Reclaimable
	retirable Reclaimable
}

func newOrphan(target uint32, lists [numEpochs]*Reclaimable) *orphanNode {
	o := &orphanNode{target: target, lists: lists}
	o.retirable.del = func() {
		for _, head := range o.lists {
			destroyList(head)
		}
	}
	return o
}

// orphanStack is a lock-free LIFO stash for abandoned orphan records.
type orphanStack struct {
	head atomic.Pointer[orphanNode]
}

// abandon pushes o onto the stack.
func (s *orphanStack) abandon(o *orphanNode) {
	for {
		head := s.head.Load()
		o.next = head
		if s.head.CompareAndSwap(head, o) {
			return
		}
	}
}

// adoptAll atomically takes the entire chain, leaving the stack empty.
func (s *orphanStack) adoptAll() *orphanNode {
	return s.head.Swap(nil)
}
