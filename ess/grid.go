package ess

import (
	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/node"
)

// GridDomain adapts a bit grid to the Domain contract, using the dense array
// pool and the 8-connected expander.
type GridDomain struct {
	Map *grid.BitGrid
}

// ListValidStates implements Domain.
func (d GridDomain) ListValidStates() []grid.Point {
	var states []grid.Point
	for y := 0; y < d.Map.Height(); y++ {
		for x := 0; x < d.Map.Width(); x++ {
			if d.Map.Get(x, y) {
				states = append(states, grid.Point{x, y})
			}
		}
	}
	return states
}

// AddStateField implements Domain.
func (d GridDomain) AddStateField(b *node.Builder) node.Field[grid.Point] {
	return node.AddField(b, grid.Point{-1, -1})
}

// NewPool implements Domain.
func (d GridDomain) NewPool(alloc *node.Allocator, state node.Field[grid.Point]) node.Pool[grid.Point] {
	return grid.NewPool(alloc, state, d.Map.Width(), d.Map.Height())
}

// NewExpander implements Domain.
func (d GridDomain) NewExpander(pool node.Pool[grid.Point], state node.Field[grid.Point]) node.Expander[node.WeightedEdge] {
	return &weightedGridExpander{
		inner: grid.NewEightConnectedExpander(d.Map, pool.(*grid.Pool)),
	}
}

// AuxSize implements Domain.
func (d GridDomain) AuxSize() int { return d.Map.Width() * d.Map.Height() }

// AuxIndex implements Domain.
func (d GridDomain) AuxIndex(s grid.Point) int { return s.Y*d.Map.Width() + s.X }

// weightedGridExpander strips the direction off grid edges so grid domains
// satisfy the generic expander shape.
type weightedGridExpander struct {
	inner *grid.EightConnectedExpander
	buf   []grid.Edge
}

func (e *weightedGridExpander) Expand(n node.Ref, edges *[]node.WeightedEdge) {
	e.buf = e.buf[:0]
	e.inner.Expand(n, &e.buf)
	for _, edge := range e.buf {
		*edges = append(*edges, node.WeightedEdge{Succ: edge.Succ, Cost: edge.Cost})
	}
}
