// Licensed under the MIT License. See LICENSE file in the project root for details.

package reclaim

import "sync/atomic"

// Engine is a reclamation scheme: the global epoch, the thread-block
// registry, and the orphan stash, bundled together. Rather than hard-coding
// a single process-wide singleton, Engine is a value callers construct
// explicitly; DefaultEngine (doc.go) provides a process-wide instance for
// callers that don't need isolation between independently-reclaimed data
// structures, and tests construct private Engines so that concurrent test
// cases never share registry state.
type Engine struct {
	epoch     atomic.Uint32
	registry  registry
	orphans   orphanStack
	threshold uint32
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithUpdateThreshold sets U, the update threshold: the engine attempts to
// advance the global epoch on every (U+1)-th critical-section entry per
// participant. The default is 0 ("every entry").
func WithUpdateThreshold(u uint32) Option {
	return func(e *Engine) { e.threshold = u }
}

// NewEngine constructs a fresh reclamation scheme, initialized to the
// all-zero epoch state.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewParticipant returns a new per-thread participant bound to this
// engine. Go goroutines have no native thread-local storage and may
// migrate between OS threads, so a Participant is an explicit handle
// threaded through operations rather than looked up implicitly. Callers own one
// Participant per worker goroutine and must call Close when that goroutine
// exits (see participant.go).
func (e *Engine) NewParticipant() *Participant {
	return &Participant{engine: e}
}
