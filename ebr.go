// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package ebr provides epoch-based safe memory reclamation for lock-free
// data structures.
//
// This is the public entry point for the library. It re-exports the
// engine implemented in internal/reclaim: the internal package stays
// non-importable by downstream code, while callers get a single stable
// import path.
//
// # Quick Start
//
//	import "github.com/kianostad/ebr"
//
//	engine := ebr.NewEngine()
//	p := engine.NewParticipant()
//	defer p.Close()
//
//	type node struct {
//	    ebr.Reclaimable
//	    value int
//	}
//
//	head := ebr.NewConcurrentPointer[node](ebr.Marked[node]{})
//	g := ebr.AcquireGuard(p, head, ebr.OrderAcquire)
//	defer g.Reset()
//
// # See Also
//
// For the engine's internals, see internal/reclaim.
package ebr

import reclaim "github.com/kianostad/ebr/internal/reclaim"

// Re-export core types so downstream code never imports internal/reclaim
// directly.
type (
	// Engine is a reclamation scheme: a global epoch, a thread-block
	// registry, and an orphan stash.
	Engine = reclaim.Engine

	// Participant is one goroutine's reclamation state.
	Participant = reclaim.Participant

	// Guard is a scoped pin on a single pointer value.
	Guard[T any] = reclaim.Guard[T]

	// ConcurrentPointer is an atomic pointer carrying a small tag.
	ConcurrentPointer[T any] = reclaim.ConcurrentPointer[T]

	// Marked is a pointer bundled with its tag, as loaded from or
	// stored to a ConcurrentPointer.
	Marked[T any] = reclaim.Marked[T]

	// Order documents the intended memory ordering of a
	// ConcurrentPointer operation.
	Order = reclaim.Order

	// Reclaimable is embedded in user node types to make them
	// retireable by the engine.
	Reclaimable = reclaim.Reclaimable

	// Retirable is implemented by any node type that embeds
	// Reclaimable.
	Retirable = reclaim.Retirable

	// Option configures an Engine at construction time.
	Option = reclaim.Option
)

// Memory-order constants, re-exported for call sites that don't want to
// import internal/reclaim's names directly.
const (
	OrderRelaxed = reclaim.OrderRelaxed
	OrderAcquire = reclaim.OrderAcquire
	OrderRelease = reclaim.OrderRelease
	OrderSeqCst  = reclaim.OrderSeqCst
)

// NewEngine constructs a fresh reclamation scheme.
func NewEngine(opts ...Option) *Engine { return reclaim.NewEngine(opts...) }

// DefaultEngine returns the process-wide reclamation scheme, created on
// first use.
func DefaultEngine() *Engine { return reclaim.DefaultEngine() }

// WithUpdateThreshold sets U, the update threshold: the engine attempts to
// advance the global epoch on every (U+1)-th critical-section entry per
// participant. The default is 0 ("every entry").
func WithUpdateThreshold(u uint32) Option { return reclaim.WithUpdateThreshold(u) }

// NewConcurrentPointer returns a ConcurrentPointer initialized to v.
func NewConcurrentPointer[T any](v Marked[T]) *ConcurrentPointer[T] {
	return reclaim.NewConcurrentPointer[T](v)
}

// MarkedOf packs a pointer and a tag into a Marked value.
func MarkedOf[T any](ptr *T, tag uint8) Marked[T] { return reclaim.MarkedOf[T](ptr, tag) }

// NewGuard returns a Guard with no pinned pointer, owned by p.
func NewGuard[T any](p *Participant) *Guard[T] { return reclaim.NewGuard[T](p) }

// NewGuardFromValue pins v directly without loading it from a
// ConcurrentPointer.
func NewGuardFromValue[T any](p *Participant, v Marked[T]) *Guard[T] {
	return reclaim.NewGuardFromValue[T](p, v)
}

// AcquireGuard default-constructs a guard for p and calls Acquire on src.
func AcquireGuard[T any](p *Participant, src *ConcurrentPointer[T], order Order) *Guard[T] {
	return reclaim.AcquireGuard[T](p, src, order)
}
