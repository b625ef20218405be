package oracle

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/jps"
	"github.com/grailbio/pathfind/node"
)

// BBExpander is the JPS+BB expander: JPS+ with each candidate direction
// filtered by the source's bounding boxes. Cells without boxes (non-jump
// points, including most start cells) expand unfiltered.
type BBExpander struct {
	pool   grid.StateMapper
	bb     *PartialCellBB
	target grid.Point
}

// NewBBExpander returns a JPS+BB expander towards target.
func NewBBExpander(bb *PartialCellBB, pool grid.StateMapper, target grid.Point) *BBExpander {
	if pool.Width() < bb.Map().Width() || pool.Height() < bb.Map().Height() {
		log.Panicf("oracle: node pool (%dx%d) too small for map (%dx%d)",
			pool.Width(), pool.Height(), bb.Map().Width(), bb.Map().Height())
	}
	return &BBExpander{pool: pool, bb: bb, target: target}
}

func (e *BBExpander) jumpOrtho(x, y int, dir grid.Direction, cost float64, edges *[]node.WeightedEdge) {
	dx, dy := dir.Offset()
	if dist, ok := e.bb.JumpDB().OrthoJump(x, y, dir, e.target); ok {
		*edges = append(*edges, node.WeightedEdge{
			Succ: e.pool.GenerateUnchecked(grid.Point{x + dx*dist, y + dy*dist}),
			Cost: cost + float64(dist),
		})
	}
}

func (e *BBExpander) jumpDiagonal(x, y int, dir grid.Direction, edges *[]node.WeightedEdge) {
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
		dist, turnDir, turnDist, ok := e.bb.JumpDB().DiagonalJump(x, y, dir, e.target)
		if !ok {
			return
		}
		x += dx * dist
		y += dy * dist
		cost += float64(dist) * grid.SafeSqrt2

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
func (e *BBExpander) Expand(n node.Ref, edges *[]node.WeightedEdge) {
	s := node.GetUnchecked(n, e.pool.StateField())
	x, y := s.X, s.Y

	dir := grid.NoDirection
	if parent := n.Parent(); !parent.IsNil() {
		dir = grid.ReachedDirection(node.GetUnchecked(parent, e.pool.StateField()), s)
	}

	successors := jps.CanonicalSuccessors(e.bb.Map().Neighborhood(x, y), dir)
	successors = e.bb.Filter(s, e.target, successors)

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
