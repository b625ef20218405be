// Package ess defines the explicit state space adapter: the bundle of
// constructors and containers domain-agnostic preprocessing (dense id
// mapping, differential heuristics) needs from a finite search domain.
package ess

import (
	"github.com/grailbio/pathfind/cpd"
	"github.com/grailbio/pathfind/node"
)

// Domain is a finite, explicitly enumerable state space.
//
// AuxSize and AuxIndex define a dense indexing of the state universe used
// for auxiliary per-state containers; AuxIndex must be injective over
// ListValidStates and less than AuxSize.
type Domain[S comparable] interface {
	ListValidStates() []S
	AddStateField(b *node.Builder) node.Field[S]
	NewPool(alloc *node.Allocator, state node.Field[S]) node.Pool[S]
	NewExpander(pool node.Pool[S], state node.Field[S]) node.Expander[node.WeightedEdge]
	AuxSize() int
	AuxIndex(s S) int
}

// Mapper assigns dense ids to a domain's states in DFS preorder, and records
// where each connected component's id range ends.
type Mapper[S comparable] struct {
	fromID        []S
	toID          []int // indexed by Domain.AuxIndex
	componentEnds []int
}

// DFSPreorder enumerates the domain depth-first from each unvisited valid
// state, assigning ids in visit order.
func DFSPreorder[S comparable](domain Domain[S]) *Mapper[S] {
	states := domain.ListValidStates()
	m := &Mapper[S]{
		fromID: make([]S, 0, len(states)),
		toID:   make([]int, domain.AuxSize()),
	}
	for i := range m.toID {
		m.toID[i] = -1
	}

	b := node.NewBuilder()
	state := domain.AddStateField(b)
	pool := domain.NewPool(b.Build(), state)

	for _, s := range states {
		if m.toID[domain.AuxIndex(s)] != -1 {
			continue
		}

		pool.Reset()
		expander := domain.NewExpander(pool, state)

		cpd.DFSTraversal(pool.Generate(s), expander, func(n node.Ref) bool {
			ns := node.Get(n, state)
			if m.toID[domain.AuxIndex(ns)] != -1 {
				return false
			}
			m.toID[domain.AuxIndex(ns)] = len(m.fromID)
			m.fromID = append(m.fromID, ns)
			return true
		})

		// The DFS exhausted one connected component.
		m.componentEnds = append(m.componentEnds, len(m.fromID))
	}
	return m
}

// States returns the number of mapped states.
func (m *Mapper[S]) States() int { return len(m.fromID) }

// Components returns the number of connected components.
func (m *Mapper[S]) Components() int { return len(m.componentEnds) }

// ToState returns the state with the given id.
func (m *Mapper[S]) ToState(id int) S { return m.fromID[id] }

// ToID returns the dense id of a state.
func (m *Mapper[S]) ToID(domain Domain[S], s S) int { return m.toID[domain.AuxIndex(s)] }

// ComponentID returns the component index of a state's dense id.
func (m *Mapper[S]) ComponentID(id int) int {
	lo, hi := 0, len(m.componentEnds)
	for lo < hi {
		mid := (lo + hi) / 2
		if m.componentEnds[mid] <= id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// ComponentIDRange returns the [start, end) id range of a component.
func (m *Mapper[S]) ComponentIDRange(component int) (int, int) {
	end := m.componentEnds[component]
	start := 0
	if component > 0 {
		start = m.componentEnds[component-1]
	}
	return start, end
}

// SameComponent reports whether two dense ids share a connected component.
func (m *Mapper[S]) SameComponent(id1, id2 int) bool {
	return m.ComponentID(id1) == m.ComponentID(id2)
}
