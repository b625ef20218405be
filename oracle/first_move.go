package oracle

import (
	"math"

	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/jps"
	"github.com/grailbio/pathfind/node"
)

// FirstMoveComputer runs the grid-specialized first-move Dijkstra used by
// oracle construction: canonical expansion over the bucket queue, direction
// bitsets for both the first moves and the still-to-explore successor set.
// One computer is a per-worker context; Compute may be called repeatedly.
type FirstMoveComputer struct {
	m          *grid.BitGrid
	pool       *grid.Pool
	bqf        *grid.BucketQueueFactory
	state      node.Field[grid.Point]
	g          node.Field[float64]
	successors node.Field[grid.DirSet]
	firstMove  node.Field[grid.DirSet]
}

// NewFirstMoveComputer allocates a computer with its own node layout and
// pool sized for the map.
func NewFirstMoveComputer(m *grid.BitGrid) *FirstMoveComputer {
	b := node.NewBuilder()
	state := node.AddField(b, grid.Point{-1, -1})
	successors := node.AddField(b, grid.AllDirs)
	firstMove := node.AddField(b, grid.AllDirs)
	g := node.AddField(b, math.Inf(1))
	bqf := grid.NewBucketQueueFactory(b)
	pool := grid.NewPool(b.BuildWithCapacity(m.Width()*m.Height()), state, m.Width(), m.Height())

	return &FirstMoveComputer{
		m:          m,
		pool:       pool,
		bqf:        bqf,
		state:      state,
		g:          g,
		successors: successors,
		firstMove:  firstMove,
	}
}

// Compute runs the search from source and reports every settled cell with
// its first-move direction set. On equal-g ties both the first moves and
// the remaining canonical successors accumulate by union; on a strict
// improvement both reset. The successor set is then used as the expansion
// filter, so no node is re-expanded from the same direction twice.
func (c *FirstMoveComputer) Compute(source grid.Point, found func(grid.Point, grid.DirSet)) {
	c.pool.Reset()

	var edges []grid.Edge
	expander := jps.NewCanonicalExpander(c.m, c.pool)
	open := c.bqf.NewQueue(c.g, 0.999)

	startNode := c.pool.Generate(source)
	node.Set(startNode, c.g, 0.0)

	expander.Expand(startNode, &edges)
	for _, edge := range edges {
		n := edge.Succ
		s := node.GetUnchecked(n, c.state)
		node.SetUnchecked(n, c.g, edge.Cost)
		node.SetUnchecked(n, c.firstMove, edge.Dir.Bit())
		node.SetUnchecked(n, c.successors,
			jps.CanonicalSuccessors(c.m.Neighborhood(s.X, s.Y), edge.Dir))
		n.SetParent(startNode)
		open.Relaxed(n)
	}

	for {
		n, ok := open.Next()
		if !ok {
			return
		}
		found(node.GetUnchecked(n, c.state), node.GetUnchecked(n, c.firstMove))

		edges = edges[:0]
		expander.ExpandDirs(n, &edges, node.GetUnchecked(n, c.successors))
		nodeG := node.GetUnchecked(n, c.g)
		for _, edge := range edges {
			successor := edge.Succ
			s := node.GetUnchecked(successor, c.state)
			newG := edge.Cost + nodeG
			if newG < node.GetUnchecked(successor, c.g) {
				node.SetUnchecked(successor, c.g, newG)
				node.SetUnchecked(successor, c.firstMove, node.GetUnchecked(n, c.firstMove))
				node.SetUnchecked(successor, c.successors,
					jps.CanonicalSuccessors(c.m.Neighborhood(s.X, s.Y), edge.Dir))
				successor.SetParent(n)
				open.Relaxed(successor)
			} else if newG == node.GetUnchecked(successor, c.g) {
				// Ties contribute every equally-optimal first move, and
				// widen the canonical frontier for the successor's own
				// expansion.
				node.SetUnchecked(successor, c.firstMove,
					node.GetUnchecked(successor, c.firstMove)|node.GetUnchecked(n, c.firstMove))
				node.SetUnchecked(successor, c.successors,
					node.GetUnchecked(successor, c.successors)|
						jps.CanonicalSuccessors(c.m.Neighborhood(s.X, s.Y), edge.Dir))
			}
		}
	}
}

// Map returns the computer's map.
func (c *FirstMoveComputer) Map() *grid.BitGrid { return c.m }
