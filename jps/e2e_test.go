package jps_test

import (
	"math/rand"
	"testing"

	"github.com/grailbio/pathfind/astar"
	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/jps"
	"github.com/grailbio/pathfind/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const costTolerance = 1e-9

type gridSearch struct {
	state    node.Field[grid.Point]
	searcher *astar.Searcher
	pqf      *node.PriorityQueueFactory
	pool     *grid.Pool
}

func newGridSearch(width, height int) *gridSearch {
	b := node.NewBuilder()
	state := node.AddField(b, grid.Point{-1, -1})
	searcher := astar.NewSearcher(b)
	pqf := node.NewPriorityQueueFactory(b)
	pool := grid.NewPool(b.Build(), state, width, height)
	return &gridSearch{state: state, searcher: searcher, pqf: pqf, pool: pool}
}

// countingExpander counts Expand calls, for expansion-pruning assertions.
type countingExpander[E any] struct {
	inner node.Expander[E]
	n     int
}

func (c *countingExpander[E]) Expand(n node.Ref, edges *[]E) {
	c.n++
	c.inner.Expand(n, edges)
}

func (s *gridSearch) dijkstra(m *grid.BitGrid, start, target grid.Point) (float64, int, bool) {
	s.pool.Reset()
	exp := &countingExpander[grid.Edge]{inner: grid.NewEightConnectedExpander(m, s.pool)}
	path, ok := astar.Search[grid.Edge](
		s.searcher,
		exp,
		s.pqf.NewQueue(s.searcher.Ordering()),
		func(node.Ref) float64 { return 0 },
		func(n node.Ref) bool { return node.Get(n, s.state) == target },
		s.pool.Generate(start),
	)
	if !ok {
		return 0, exp.n, false
	}
	return node.Get(path[len(path)-1], s.searcher.G()), exp.n, true
}

func (s *gridSearch) jps(g *jps.Grid, start, target grid.Point) (float64, int, bool) {
	s.pool.Reset()
	exp := &countingExpander[node.WeightedEdge]{inner: jps.NewExpander(g, s.pool, target)}
	path, ok := astar.Search[node.WeightedEdge](
		s.searcher,
		exp,
		s.pqf.NewQueue(s.searcher.Ordering()),
		func(n node.Ref) float64 { return grid.OctileDistance(node.Get(n, s.state), target) },
		func(n node.Ref) bool { return node.Get(n, s.state) == target },
		s.pool.Generate(start),
	)
	if !ok {
		return 0, exp.n, false
	}
	return node.Get(path[len(path)-1], s.searcher.G()), exp.n, true
}

func (s *gridSearch) jpsPlus(db *jps.JumpDatabase, start, target grid.Point) (float64, bool) {
	s.pool.Reset()
	exp := jps.NewPlusExpander(db, s.pool, target)
	path, ok := astar.Search[node.WeightedEdge](
		s.searcher,
		exp,
		s.pqf.NewQueue(s.searcher.Ordering()),
		func(n node.Ref) float64 { return grid.OctileDistance(node.Get(n, s.state), target) },
		func(n node.Ref) bool { return node.Get(n, s.state) == target },
		s.pool.Generate(start),
	)
	if !ok {
		return 0, false
	}
	return node.Get(path[len(path)-1], s.searcher.G()), true
}

// S1: an 8x8 grid with a vertical wall forces the optimal path around its
// gap; JPS expands far fewer nodes than Dijkstra.
func TestWalledGrid(t *testing.T) {
	m := openGrid(8, 8)
	for y := 0; y < 6; y++ {
		m.Set(4, y, false)
	}
	start := grid.Point{2, 2}
	target := grid.Point{6, 2}

	s := newGridSearch(8, 8)
	dijkstraCost, dijkstraExpands, ok := s.dijkstra(m, start, target)
	require.True(t, ok)
	assert.InDelta(t, 4+4*grid.SafeSqrt2, dijkstraCost, costTolerance)

	jpsCost, jpsExpands, ok := s.jps(jps.NewGrid(m), start, target)
	require.True(t, ok)
	assert.InDelta(t, dijkstraCost, jpsCost, costTolerance)
	assert.Less(t, jpsExpands, dijkstraExpands)

	plusCost, ok := s.jpsPlus(jps.NewJumpDatabase(m), start, target)
	require.True(t, ok)
	assert.Equal(t, jpsCost, plusCost)
}

// S2: fully open 16x16, corner to corner.
func TestOpenGridDiagonal(t *testing.T) {
	m := openGrid(16, 16)
	start := grid.Point{0, 0}
	target := grid.Point{15, 15}

	s := newGridSearch(16, 16)
	jpsCost, _, ok := s.jps(jps.NewGrid(m), start, target)
	require.True(t, ok)
	assert.InDelta(t, 15*grid.SafeSqrt2, jpsCost, costTolerance)

	plusCost, ok := s.jpsPlus(jps.NewJumpDatabase(m), start, target)
	require.True(t, ok)
	assert.InDelta(t, 15*grid.SafeSqrt2, plusCost, costTolerance)

	dijkstraCost, _, ok := s.dijkstra(m, start, target)
	require.True(t, ok)
	assert.InDelta(t, dijkstraCost, jpsCost, costTolerance)
}

func TestJpsMatchesDijkstraOnRandomMaps(t *testing.T) {
	for seed := int64(0); seed < 6; seed++ {
		m := randomMap(seed, 32, 32, 0.7)
		jpsGrid := jps.NewGrid(m)
		db := jps.NewJumpDatabase(m)
		s := newGridSearch(32, 32)

		rng := rand.New(rand.NewSource(seed + 100))
		instances := 0
		for instances < 40 {
			start := grid.Point{rng.Intn(32), rng.Intn(32)}
			target := grid.Point{rng.Intn(32), rng.Intn(32)}
			if !m.Get(start.X, start.Y) || !m.Get(target.X, target.Y) {
				continue
			}
			instances++

			want, _, reachable := s.dijkstra(m, start, target)
			got, _, ok := s.jps(jpsGrid, start, target)
			require.Equal(t, reachable, ok, "seed=%d %v->%v", seed, start, target)
			if !reachable {
				continue
			}
			require.InDelta(t, want, got, costTolerance, "jps seed=%d %v->%v", seed, start, target)

			plus, ok := s.jpsPlus(db, start, target)
			require.True(t, ok, "jps+ seed=%d %v->%v", seed, start, target)
			require.InDelta(t, want, plus, costTolerance, "jps+ seed=%d %v->%v", seed, start, target)
		}
	}
}

func TestJpsStartEqualsTarget(t *testing.T) {
	m := openGrid(4, 4)
	s := newGridSearch(4, 4)
	cost, _, ok := s.jps(jps.NewGrid(m), grid.Point{1, 1}, grid.Point{1, 1})
	require.True(t, ok)
	assert.Equal(t, 0.0, cost)
}

func TestJpsUnreachableTarget(t *testing.T) {
	m := openGrid(8, 8)
	// Wall off the right column completely.
	for y := 0; y < 8; y++ {
		m.Set(6, y, false)
	}
	s := newGridSearch(8, 8)
	_, _, ok := s.jps(jps.NewGrid(m), grid.Point{1, 1}, grid.Point{7, 3})
	assert.False(t, ok)

	_, ok = s.jpsPlus(jps.NewJumpDatabase(m), grid.Point{1, 1}, grid.Point{7, 3})
	assert.False(t, ok)

	_, _, ok = s.dijkstra(m, grid.Point{1, 1}, grid.Point{7, 3})
	assert.False(t, ok)
}

func openGrid(width, height int) *grid.BitGrid {
	g := grid.NewBitGrid(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.Set(x, y, true)
		}
	}
	return g
}

func randomMap(seed int64, width, height int, openProb float64) *grid.BitGrid {
	rng := rand.New(rand.NewSource(seed))
	g := grid.NewBitGrid(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.Set(x, y, rng.Float64() < openProb)
		}
	}
	return g
}
