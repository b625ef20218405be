package tdh

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/grailbio/pathfind/ess"
	"github.com/grailbio/pathfind/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

// trueDistances computes single-source 8-connected distances by Dijkstra for
// verification.
func trueDistances(domain ess.GridDomain, from grid.Point) map[grid.Point]float64 {
	s := newSearcher[grid.Point](domain)
	out := map[grid.Point]float64{}
	s.search(from, func(p grid.Point, g float64) { out[p] = g })
	return out
}

// S6: the differential heuristic is admissible and consistent.
func TestAdmissibleAndConsistent(t *testing.T) {
	m := randomMap(5, 24, 24, 0.8)
	domain := ess.GridDomain{Map: m}
	mapper := ess.DFSPreorder[grid.Point](domain)
	h := Calculate[grid.Point](domain, mapper, 4)

	rng := rand.New(rand.NewSource(55))
	states := domain.ListValidStates()

	for trial := 0; trial < 30; trial++ {
		s := states[rng.Intn(len(states))]
		dists := trueDistances(domain, s)

		for target, d := range dists {
			// Admissibility.
			est := h.H(s, target)
			require.LessOrEqual(t, est, d+1e-9, "s=%v t=%v", s, target)
			// Symmetry.
			assert.Equal(t, est, h.H(target, s))
		}
	}

	// Consistency: |h(s, t) - h(s', t)| <= cost(s, s') for neighbors s, s'.
	for trial := 0; trial < 200; trial++ {
		s := states[rng.Intn(len(states))]
		target := states[rng.Intn(len(states))]
		if mapper.ComponentID(mapper.ToID(domain, s)) != mapper.ComponentID(mapper.ToID(domain, target)) {
			continue
		}
		for d := grid.North; d <= grid.NorthEast; d++ {
			dx, dy := d.Offset()
			nx, ny := s.X+dx, s.Y+dy
			if nx < 0 || ny < 0 || nx >= m.Width() || ny >= m.Height() || !m.Get(nx, ny) {
				continue
			}
			if d.IsDiagonal() && !(m.Get(s.X+dx, s.Y) && m.Get(s.X, s.Y+dy)) {
				continue
			}
			cost := 1.0
			if d.IsDiagonal() {
				cost = grid.SafeSqrt2
			}
			neighbor := grid.Point{nx, ny}
			diff := h.H(s, target) - h.H(neighbor, target)
			if diff < 0 {
				diff = -diff
			}
			require.LessOrEqual(t, diff, cost+1e-9, "s=%v n=%v t=%v", s, neighbor, target)
		}
	}
}

func TestHeuristicNontrivial(t *testing.T) {
	// On open ground the landmark bound is reasonably tight along a line
	// through a pivot; at minimum it must be positive for distinct states.
	m := grid.NewBitGrid(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			m.Set(x, y, true)
		}
	}
	domain := ess.GridDomain{Map: m}
	mapper := ess.DFSPreorder[grid.Point](domain)
	h := Calculate[grid.Point](domain, mapper, 3)

	assert.Greater(t, h.H(grid.Point{0, 0}, grid.Point{15, 15}), 0.0)
	assert.Equal(t, 0.0, h.H(grid.Point{7, 7}, grid.Point{7, 7}))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := randomMap(13, 12, 12, 0.75)
	domain := ess.GridDomain{Map: m}
	mapper := ess.DFSPreorder[grid.Point](domain)
	h := Calculate[grid.Point](domain, mapper, 2)

	var buf bytes.Buffer
	require.NoError(t, h.Save(mapper, &buf))
	assert.Equal(t, 8+mapper.States()*2*8, buf.Len())

	saved := buf.Bytes()
	loaded, err := Load[grid.Point](domain, mapper, 2, bytes.NewReader(saved))
	require.NoError(t, err)

	for _, s := range domain.ListValidStates() {
		for _, target := range domain.ListValidStates() {
			require.Equal(t, h.H(s, target), loaded.H(s, target))
		}
	}

	// A file generated with a different pivot count is rejected up front.
	_, err = Load[grid.Point](domain, mapper, 3, bytes.NewReader(saved))
	assert.Error(t, err)
}
