package node

import (
	"bytes"

	farm "github.com/dgryski/go-farm"
)

// ComplexPool deduplicates nodes by states that are too expensive or too
// irregular to use as map keys directly. States are stored by value and
// indirected through a dense index kept in the node; identity is decided by
// the caller-supplied byte key, hashed with farmhash.
//
// The key function must be a pure function of the state and must not call
// back into the pool.
type ComplexPool[S any] struct {
	allocator  *Allocator
	stateField Field[int]
	key        func(S) []byte

	buckets map[uint64][]int32
	states  []S
	keys    [][]byte
	nodes   []Ref
}

// NewComplexPool adds the pool's index field to the layout under
// construction and returns the pool over the built allocator.
func NewComplexPool[S any](b *Builder, key func(S) []byte) *ComplexPool[S] {
	stateField := AddField(b, -1)
	return &ComplexPool[S]{
		allocator:  b.Build(),
		stateField: stateField,
		key:        key,
		buckets:    make(map[uint64][]int32),
	}
}

// StateOf returns the state the node was generated for.
func (p *ComplexPool[S]) StateOf(n Ref) S {
	return p.states[GetUnchecked(n, p.stateField)]
}

// Reset implements Pool.
func (p *ComplexPool[S]) Reset() {
	clear(p.buckets)
	p.states = p.states[:0]
	p.keys = p.keys[:0]
	p.nodes = p.nodes[:0]
	p.allocator.Reset()
}

// Generate implements Pool.
func (p *ComplexPool[S]) Generate(state S) Ref {
	key := p.key(state)
	hash := farm.Hash64(key)
	for _, idx := range p.buckets[hash] {
		if bytes.Equal(p.keys[idx], key) {
			return p.nodes[idx]
		}
	}
	idx := len(p.states)
	n := p.allocator.NewNode()
	SetUnchecked(n, p.stateField, idx)
	p.states = append(p.states, state)
	p.keys = append(p.keys, key)
	p.nodes = append(p.nodes, n)
	p.buckets[hash] = append(p.buckets[hash], int32(idx))
	return n
}

// Get returns the node for state if one was generated this search.
func (p *ComplexPool[S]) Get(state S) (Ref, bool) {
	key := p.key(state)
	for _, idx := range p.buckets[farm.Hash64(key)] {
		if bytes.Equal(p.keys[idx], key) {
			return p.nodes[idx], true
		}
	}
	return Ref{}, false
}
