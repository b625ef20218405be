package jps

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/node"
)

// PlusExpander is the offline JPS+ expander: the same canonical search as
// Expander, but every jump is an O(1) database lookup.
type PlusExpander struct {
	pool   grid.StateMapper
	jumpDB *JumpDatabase
	target grid.Point
}

// NewPlusExpander returns a JPS+ expander towards target.
func NewPlusExpander(jumpDB *JumpDatabase, pool grid.StateMapper, target grid.Point) *PlusExpander {
	if pool.Width() < jumpDB.Width() || pool.Height() < jumpDB.Height() {
		log.Panicf("jps: node pool (%dx%d) too small for map (%dx%d)",
			pool.Width(), pool.Height(), jumpDB.Width(), jumpDB.Height())
	}
	return &PlusExpander{pool: pool, jumpDB: jumpDB, target: target}
}

func (e *PlusExpander) jumpOrtho(x, y int, dir grid.Direction, cost float64, edges *[]node.WeightedEdge) {
	dx, dy := dir.Offset()
	if dist, ok := e.jumpDB.OrthoJump(x, y, dir, e.target); ok {
		*edges = append(*edges, node.WeightedEdge{
			Succ: e.pool.GenerateUnchecked(grid.Point{x + dx*dist, y + dy*dist}),
			Cost: cost + float64(dist),
		})
	}
}

func (e *PlusExpander) jumpDiagonal(x, y int, dir grid.Direction, edges *[]node.WeightedEdge) {
	dx, dy := dir.Offset()
	var dirX, dirY grid.Direction
	if dx < 0 {
		dirX = grid.West
	} else {
		dirX = grid.East
	}
	if dy < 0 {
		dirY = grid.North
	} else {
		dirY = grid.South
	}

	cost := 0.0
	for {
		dist, turnDir, turnDist, ok := e.jumpDB.DiagonalJump(x, y, dir, e.target)
		if !ok {
			return
		}
		x += dx * dist
		y += dy * dist
		cost += float64(dist) * grid.SafeSqrt2

		// A turn means the target was intercepted by leaving the diagonal
		// partway through; the post-turn leg is orthogonal.
		switch turnDir {
		case dirX:
			x += dx * turnDist
			cost += float64(turnDist)
		case dirY:
			y += dy * turnDist
			cost += float64(turnDist)
		}

		if (grid.Point{x, y}) == e.target {
			*edges = append(*edges, node.WeightedEdge{
				Succ: e.pool.GenerateUnchecked(grid.Point{x, y}),
				Cost: cost,
			})
			return
		}

		e.jumpOrtho(x, y, dirX, cost, edges)
		e.jumpOrtho(x, y, dirY, cost, edges)
	}
}

// Expand implements node.Expander.
func (e *PlusExpander) Expand(n node.Ref, edges *[]node.WeightedEdge) {
	s := node.GetUnchecked(n, e.pool.StateField())
	x, y := s.X, s.Y

	dir := grid.NoDirection
	if parent := n.Parent(); !parent.IsNil() {
		dir = grid.ReachedDirection(node.GetUnchecked(parent, e.pool.StateField()), s)
	}

	successors := CanonicalSuccessors(e.jumpDB.Map().Neighborhood(x, y), dir)

	if successors.Has(grid.North) {
		e.jumpOrtho(x, y, grid.North, 0.0, edges)
	}
	if successors.Has(grid.West) {
		e.jumpOrtho(x, y, grid.West, 0.0, edges)
	}
	if successors.Has(grid.South) {
		e.jumpOrtho(x, y, grid.South, 0.0, edges)
	}
	if successors.Has(grid.East) {
		e.jumpOrtho(x, y, grid.East, 0.0, edges)
	}
	if successors.Has(grid.NorthWest) {
		e.jumpDiagonal(x, y, grid.NorthWest, edges)
	}
	if successors.Has(grid.SouthWest) {
		e.jumpDiagonal(x, y, grid.SouthWest, edges)
	}
	if successors.Has(grid.SouthEast) {
		e.jumpDiagonal(x, y, grid.SouthEast, edges)
	}
	if successors.Has(grid.NorthEast) {
		e.jumpDiagonal(x, y, grid.NorthEast, edges)
	}
}
