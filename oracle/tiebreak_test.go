package oracle

import (
	"testing"

	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/jps"
	"github.com/stretchr/testify/assert"
)

// S4: on open ground with a single northern jump point, a W|E first-move
// set is untouched (neither move is non-canonical for going north).
func TestTiebreakOpenNeighborhood(t *testing.T) {
	table := ComputeTiebreakTable(grid.AllDirs, grid.North.Bit())
	fm := grid.West.Bit() | grid.East.Bit()
	assert.Equal(t, fm, table[fm])

	// The empty set is a wildcard.
	assert.Equal(t, grid.AllDirs, table[0])
}

func TestTiebreakConstrains(t *testing.T) {
	// Fully open neighborhood, northern jump point: a first-move set that
	// is canonical for north and not excused by any irrelevance case must
	// shrink to the canonical set.
	table := ComputeTiebreakTable(grid.AllDirs, grid.North.Bit())
	canonical := jps.CanonicalSuccessors(grid.AllDirs, grid.North)
	fm := grid.North.Bit() | grid.NorthWest.Bit()
	assert.Equal(t, fm&canonical, table[fm])
}

// Every valid first-move set must keep at least one move after
// tie-breaking, for every neighborhood and every plausible jump point set.
func TestTiebreakNeverEmpty(t *testing.T) {
	for nb := 0; nb < 256; nb++ {
		nbSet := grid.DirSet(nb)

		var jpDirs grid.DirSet

		// Orthogonal jump points.
		for _, dir := range [...]grid.Direction{grid.North, grid.South, grid.East, grid.West} {
			if !nbSet.Has(dir.Backwards()) {
				continue
			}
			successors := jps.CanonicalSuccessors(nbSet, dir)
			if successors&^dir.Bit() != 0 {
				jpDirs |= dir.Bit()
			}
		}

		// Potential diagonal jump points. More jump points only shrink the
		// valid sets, so testing the maximal plausible set covers the rest.
		for _, dir := range [...]grid.Direction{grid.NorthWest, grid.NorthEast, grid.SouthWest, grid.SouthEast} {
			var dirX, dirY grid.Direction
			if dir == grid.NorthWest || dir == grid.SouthWest {
				dirX = grid.West
			} else {
				dirX = grid.East
			}
			if dir == grid.NorthWest || dir == grid.NorthEast {
				dirY = grid.North
			} else {
				dirY = grid.South
			}

			wedge := dirX.Backwards().Bit() | dirY.Backwards().Bit() | dir.Backwards().Bit()
			if wedge.IsSubset(nbSet) && !nbSet.IsDisjoint(dirX.Bit()|dirY.Bit()) {
				jpDirs |= dir.Bit()
			}
		}

		if jpDirs.IsEmpty() {
			continue
		}

		// ComputeTiebreakTable panics on an empty result.
		assert.NotPanics(t, func() { ComputeTiebreakTable(nbSet, jpDirs) }, "nb=%08b jps=%08b", nb, jpDirs)
	}
}

func TestIndependentJumpPointsOpenGrid(t *testing.T) {
	// A fully open map has no jump points at all.
	m := grid.NewBitGrid(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			m.Set(x, y, true)
		}
	}
	jumpPoints := IndependentJumpPoints(m, jps.NewJumpDatabase(m))
	assert.Empty(t, jumpPoints)
}

func TestIndependentJumpPointsObstacle(t *testing.T) {
	m := grid.NewBitGrid(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			m.Set(x, y, true)
		}
	}
	m.Set(3, 3, false)

	jumpPoints := IndependentJumpPoints(m, jps.NewJumpDatabase(m))
	assert.NotEmpty(t, jumpPoints)
	// The four corners around the obstacle anchor jump points.
	for _, p := range []grid.Point{{2, 2}, {4, 2}, {2, 4}, {4, 4}} {
		assert.Contains(t, jumpPoints, p)
	}
}
