package jps

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/node"
)

// CanonicalExpander emits single-step edges for the canonical successor set
// of a cell. It explores exactly the canonical search tree without jumping,
// which is what first-move propagation needs.
type CanonicalExpander struct {
	m    *grid.BitGrid
	pool grid.StateMapper
}

// NewCanonicalExpander returns a canonical expander over the map.
func NewCanonicalExpander(m *grid.BitGrid, pool grid.StateMapper) *CanonicalExpander {
	if pool.Width() < m.Width() || pool.Height() < m.Height() {
		log.Panicf("jps: node pool (%dx%d) too small for map (%dx%d)",
			pool.Width(), pool.Height(), m.Width(), m.Height())
	}
	return &CanonicalExpander{m: m, pool: pool}
}

// Expand implements node.Expander.
func (e *CanonicalExpander) Expand(n node.Ref, edges *[]grid.Edge) {
	s := node.GetUnchecked(n, e.pool.StateField())

	dir := grid.NoDirection
	if parent := n.Parent(); !parent.IsNil() {
		dir = grid.ReachedDirection(node.GetUnchecked(parent, e.pool.StateField()), s)
	}

	e.ExpandDirs(n, edges, CanonicalSuccessors(e.m.Neighborhood(s.X, s.Y), dir))
}

// ExpandDirs emits one edge per direction in dirs, bypassing the canonical
// computation. Every direction in dirs must lead to a traversable cell.
func (e *CanonicalExpander) ExpandDirs(n node.Ref, edges *[]grid.Edge, dirs grid.DirSet) {
	s := node.GetUnchecked(n, e.pool.StateField())
	dirs.Each(func(d grid.Direction) {
		dx, dy := d.Offset()
		cost := 1.0
		if d.IsDiagonal() {
			cost = grid.SafeSqrt2
		}
		*edges = append(*edges, grid.Edge{
			Succ: e.pool.GenerateUnchecked(grid.Point{s.X + dx, s.Y + dy}),
			Cost: cost,
			Dir:  d,
		})
	})
}
