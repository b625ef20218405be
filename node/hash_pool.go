package node

import "github.com/grailbio/base/log"

// HashPool deduplicates nodes by state using a hash map. One live node per
// state per search; Reset invalidates them all.
type HashPool[S comparable] struct {
	stateField Field[S]
	allocator  *Allocator
	nodes      map[S]Ref
}

// NewHashPool returns a pool over the given allocator. The state field must
// belong to the allocator's layout.
func NewHashPool[S comparable](allocator *Allocator, stateField Field[S]) *HashPool[S] {
	if allocator.LayoutID() != stateField.LayoutID() {
		log.Panicf("node: mismatched layouts")
	}
	return &HashPool[S]{
		stateField: stateField,
		allocator:  allocator,
		nodes:      make(map[S]Ref),
	}
}

// StateField returns the field holding each node's state.
func (p *HashPool[S]) StateField() Field[S] { return p.stateField }

// Get returns the node for state if one was generated this search.
func (p *HashPool[S]) Get(state S) (Ref, bool) {
	n, ok := p.nodes[state]
	return n, ok
}

// Reset implements Pool.
func (p *HashPool[S]) Reset() {
	clear(p.nodes)
	p.allocator.Reset()
}

// Generate implements Pool.
func (p *HashPool[S]) Generate(state S) Ref {
	if n, ok := p.nodes[state]; ok {
		return n
	}
	n := p.allocator.NewNode()
	SetUnchecked(n, p.stateField, state)
	p.nodes[state] = n
	return n
}
