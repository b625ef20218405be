package oracle

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/jps"
	"github.com/grailbio/pathfind/node"
)

// TopsExpander is the Topping+ search expander: JPS+ jumps pruned by the
// partial-cell CPD. At a jump point with a stored row, only the oracle's
// committed first move survives; diagonal scans consult the oracle at every
// intermediate jump point.
type TopsExpander struct {
	pool   grid.StateMapper
	m      *grid.BitGrid
	jumpDB *jps.JumpDatabase
	oracle *PartialCellCpd
	target grid.Point
}

// NewTopsExpander returns a Topping+ expander towards target.
func NewTopsExpander(m *grid.BitGrid, jumpDB *jps.JumpDatabase, oracle *PartialCellCpd, pool grid.StateMapper, target grid.Point) *TopsExpander {
	if pool.Width() < m.Width() || pool.Height() < m.Height() {
		log.Panicf("oracle: node pool (%dx%d) too small for map (%dx%d)",
			pool.Width(), pool.Height(), m.Width(), m.Height())
	}
	if m.Width() != jumpDB.Width() || m.Height() != jumpDB.Height() {
		log.Panicf("oracle: jump database dimensions (%dx%d) disagree with map (%dx%d)",
			jumpDB.Width(), jumpDB.Height(), m.Width(), m.Height())
	}
	return &TopsExpander{pool: pool, m: m, jumpDB: jumpDB, oracle: oracle, target: target}
}

func (e *TopsExpander) jumpOrtho(x, y int, dir grid.Direction, cost float64, edges *[]node.WeightedEdge) {
	dx, dy := dir.Offset()
	if dist, ok := e.jumpDB.OrthoJump(x, y, dir, e.target); ok {
		*edges = append(*edges, node.WeightedEdge{
			Succ: e.pool.GenerateUnchecked(grid.Point{x + dx*dist, y + dy*dist}),
			Cost: cost + float64(dist),
		})
	}
}

func (e *TopsExpander) jumpDiagonal(x, y int, dir grid.Direction, edges *[]node.WeightedEdge) {
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

		if firstMove, ok := e.oracle.Query(grid.Point{x, y}, e.target); ok {
			switch firstMove {
			case dirX:
				e.jumpOrtho(x, y, dirX, cost, edges)
				return
			case dirY:
				e.jumpOrtho(x, y, dirY, cost, edges)
				return
			case dir:
				// Continue along the diagonal.
			default:
				return
			}
		} else {
			e.jumpOrtho(x, y, dirX, cost, edges)
			e.jumpOrtho(x, y, dirY, cost, edges)
		}
	}
}

// Expand implements node.Expander.
func (e *TopsExpander) Expand(n node.Ref, edges *[]node.WeightedEdge) {
	s := node.GetUnchecked(n, e.pool.StateField())
	x, y := s.X, s.Y

	dir := grid.NoDirection
	if parent := n.Parent(); !parent.IsNil() {
		dir = grid.ReachedDirection(node.GetUnchecked(parent, e.pool.StateField()), s)
	}

	successors := jps.CanonicalSuccessors(e.m.Neighborhood(x, y), dir)

	if firstMove, ok := e.oracle.Query(s, e.target); ok {
		successors &= firstMove.Bit()
	}

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
