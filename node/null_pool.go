package node

import "github.com/grailbio/base/log"

// NullPool performs no deduplication: Generate always allocates a fresh
// node. Useful for tree searches and benchmarking the substrate.
type NullPool[S any] struct {
	stateField Field[S]
	allocator  *Allocator
}

// NewNullPool returns a pool over the given allocator. The state field must
// belong to the allocator's layout.
func NewNullPool[S any](allocator *Allocator, stateField Field[S]) *NullPool[S] {
	if allocator.LayoutID() != stateField.LayoutID() {
		log.Panicf("node: mismatched layouts")
	}
	return &NullPool[S]{stateField: stateField, allocator: allocator}
}

// StateField returns the field holding each node's state.
func (p *NullPool[S]) StateField() Field[S] { return p.stateField }

// Get always reports no node; the pool does not track states.
func (p *NullPool[S]) Get(S) (Ref, bool) { return Ref{}, false }

// Reset implements Pool.
func (p *NullPool[S]) Reset() {
	p.allocator.Reset()
}

// Generate implements Pool.
func (p *NullPool[S]) Generate(state S) Ref {
	n := p.allocator.NewNode()
	SetUnchecked(n, p.stateField, state)
	return n
}
