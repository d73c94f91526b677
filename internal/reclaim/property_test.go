// Licensed under the MIT License. See LICENSE file in the project root for details.

package reclaim

import (
	"testing"

	"pgregory.net/rapid"
)

// TestPropertyRetireTickSequenceNeverDestroysAGuardedObject generates random
// sequences of acquire/retire/tick/reset operations against a single
// participant and checks that an object is never destroyed while a guard is
// still holding it (the "no use-after-free" property). At the end every
// remaining guard is reset and three ticks are run; eventual destruction of
// the retired objects is not asserted here.
func TestPropertyRetireTickSequenceNeverDestroysAGuardedObject(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := NewEngine(WithUpdateThreshold(0))
		p := e.NewParticipant()
		defer p.Close()

		destroyed := map[int]bool{}
		live := map[int]*Guard[trackedNode]{}
		nextID := 0

		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			choice := rapid.IntRange(0, 2).Draw(rt, "op")
			switch choice {
			case 0: // acquire a fresh guard on a brand new object
				id := nextID
				nextID++
				node := &trackedNode{id: id}
				ptr := NewConcurrentPointer[trackedNode](MarkedOf(node, 0))
				g := AcquireGuard(p, ptr, OrderAcquire)
				if g.IsNull() {
					continue
				}
				live[id] = g
			case 1: // retire a live, currently-guarded object
				if len(live) == 0 {
					continue
				}
				for id, g := range live {
					capturedID := id
					g.Retire(func() { destroyed[capturedID] = true })
					delete(live, id)
					break
				}
			case 2: // tick the epoch forward
				tick(p)
			}

			for id := range live {
				if destroyed[id] {
					rt.Fatalf("object %d was destroyed while still guarded", id)
				}
			}
		}

		for _, g := range live {
			g.Reset()
		}
		tickN(p, 3)
	})
}

// TestPropertyClonedGuardsShareReclamationFate checks that cloning a guard
// and releasing the clones in any order never reclaims the pointee before
// the last clone releases it.
func TestPropertyClonedGuardsShareReclamationFate(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := NewEngine(WithUpdateThreshold(0))
		p := e.NewParticipant()
		defer p.Close()

		x := &trackedNode{id: 1}
		ptr := NewConcurrentPointer[trackedNode](MarkedOf(x, 0))
		root := AcquireGuard(p, ptr, OrderAcquire)

		numClones := rapid.IntRange(1, 5).Draw(rt, "numClones")
		clones := make([]*Guard[trackedNode], 0, numClones)
		for i := 0; i < numClones; i++ {
			clones = append(clones, root.Clone())
		}

		destroyed := false
		root.Retire(func() { destroyed = true })

		order := shufflePermutation(rt, numClones)
		for i, idx := range order {
			tickN(p, 3)
			if i < len(order)-1 && destroyed {
				rt.Fatalf("object destroyed while clone %d still live", idx)
			}
			clones[idx].Reset()
		}

		tickN(p, 3)
		if !destroyed {
			rt.Fatalf("object was never destroyed after every clone released")
		}
	})
}

// shufflePermutation draws a random permutation of [0, n) using a
// Fisher-Yates shuffle driven by rapid's deterministic draw source, since
// rapid has no built-in permutation generator.
func shufflePermutation(rt *rapid.T, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rapid.IntRange(0, i).Draw(rt, "swap")
		out[i], out[j] = out[j], out[i]
	}
	return out
}
