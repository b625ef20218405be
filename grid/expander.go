package grid

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/pathfind/node"
)

// SafeSqrt2 is sqrt(2) rounded through float32. Every diagonal step cost and
// octile distance in this module uses it so that equal-cost ties resolve
// identically on every platform; the contents of precomputed first-move
// oracles depend on this.
const SafeSqrt2 = float64(float32(1.41421356237309504880168872420969808))

// Edge is a weighted, directed grid edge.
type Edge struct {
	Succ node.Ref
	Cost float64
	Dir  Direction
}

// Successor implements node.Edge.
func (e Edge) Successor() node.Ref { return e.Succ }

// EdgeCost implements node.Edge.
func (e Edge) EdgeCost() float64 { return e.Cost }

// EdgeID implements node.IdentifiedEdge; the id is the direction.
func (e Edge) EdgeID() int { return int(e.Dir) }

// OctileDistance returns the 8-connected distance between two points on an
// obstacle-free plane.
func OctileDistance(from, to Point) float64 {
	dx := abs(from.X - to.X)
	dy := abs(from.Y - to.Y)
	diagonals := dx
	if dy < dx {
		diagonals = dy
	}
	orthos := dx + dy - 2*diagonals
	return float64(orthos) + float64(diagonals)*SafeSqrt2
}

// EightConnectedExpander emits every traversable neighbor of a cell, with
// diagonal moves requiring both adjacent orthogonals to be open.
type EightConnectedExpander struct {
	m    *BitGrid
	pool StateMapper
}

// NewEightConnectedExpander returns an expander over the map. The pool must
// cover the map's coordinate range.
func NewEightConnectedExpander(m *BitGrid, pool StateMapper) *EightConnectedExpander {
	if pool.Width() < m.Width() || pool.Height() < m.Height() {
		log.Panicf("grid: node pool (%dx%d) too small for map (%dx%d)",
			pool.Width(), pool.Height(), m.Width(), m.Height())
	}
	return &EightConnectedExpander{m: m, pool: pool}
}

// Expand implements node.Expander.
func (e *EightConnectedExpander) Expand(n node.Ref, edges *[]Edge) {
	s := node.GetUnchecked(n, e.pool.StateField())
	x, y := s.X, s.Y

	if !e.m.Get(x, y) {
		log.Panicf("grid: expansion of untraversable cell (%d, %d)", x, y)
	}

	north := e.m.GetUnchecked(x, y-1)
	if north {
		*edges = append(*edges, Edge{e.pool.GenerateUnchecked(Point{x, y - 1}), 1.0, North})
	}
	south := e.m.GetUnchecked(x, y+1)
	if south {
		*edges = append(*edges, Edge{e.pool.GenerateUnchecked(Point{x, y + 1}), 1.0, South})
	}
	if e.m.GetUnchecked(x-1, y) {
		*edges = append(*edges, Edge{e.pool.GenerateUnchecked(Point{x - 1, y}), 1.0, West})
		if north && e.m.GetUnchecked(x-1, y-1) {
			*edges = append(*edges, Edge{e.pool.GenerateUnchecked(Point{x - 1, y - 1}), SafeSqrt2, NorthWest})
		}
		if south && e.m.GetUnchecked(x-1, y+1) {
			*edges = append(*edges, Edge{e.pool.GenerateUnchecked(Point{x - 1, y + 1}), SafeSqrt2, SouthWest})
		}
	}
	if e.m.GetUnchecked(x+1, y) {
		*edges = append(*edges, Edge{e.pool.GenerateUnchecked(Point{x + 1, y}), 1.0, East})
		if north && e.m.GetUnchecked(x+1, y-1) {
			*edges = append(*edges, Edge{e.pool.GenerateUnchecked(Point{x + 1, y - 1}), SafeSqrt2, NorthEast})
		}
		if south && e.m.GetUnchecked(x+1, y+1) {
			*edges = append(*edges, Edge{e.pool.GenerateUnchecked(Point{x + 1, y + 1}), SafeSqrt2, SouthEast})
		}
	}
}
