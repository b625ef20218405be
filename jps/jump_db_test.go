package jps

import (
	"math/rand"
	"testing"

	"github.com/grailbio/pathfind/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func TestJumpDatabaseOpenGrid(t *testing.T) {
	m := openGrid(8, 8)
	db := NewJumpDatabase(m)

	// Straight east across open ground runs into the padding wall.
	dist, jp := db.Get(0, 0, grid.East)
	assert.Equal(t, 7, dist)
	assert.False(t, jp)

	// Can't go north from the top row.
	dist, jp = db.Get(0, 0, grid.NorthEast)
	assert.Equal(t, 0, dist)
	assert.False(t, jp)

	dist, jp = db.Get(0, 0, grid.SouthEast)
	assert.Equal(t, 7, dist)
	assert.False(t, jp)
}

func TestJumpDatabaseForcedNeighbor(t *testing.T) {
	// One obstacle creates a jump point behind it.
	//   . . . . .
	//   . . # . .
	//   . . . . .
	m := openGrid(5, 3)
	m.Set(2, 1, false)

	// Scanning east along the bottom row, the cell past the obstacle is a
	// jump point: (3, 2) has a forced neighbor at (2, 1)'s shadow.
	dist, jp := db3x5Get(t, m, 0, 2, grid.East)
	assert.True(t, jp)
	assert.Equal(t, 3, dist)
}

func db3x5Get(t *testing.T, m *grid.BitGrid, x, y int, d grid.Direction) (int, bool) {
	t.Helper()
	return NewJumpDatabase(m).Get(x, y, d)
}

// The precomputed database must agree with the online block scan for every
// cell and orthogonal direction.
func TestJumpDatabaseAgreesWithBlockScan(t *testing.T) {
	for seed := int64(0); seed < 4; seed++ {
		m := randomMap(seed, 64, 48, 0.75)
		jpsGrid := NewGrid(m)
		db := NewJumpDatabase(m)

		for y := 0; y < m.Height(); y++ {
			for x := 0; x < m.Width(); x++ {
				if !m.Get(x, y) {
					continue
				}
				check := func(d grid.Direction, scanX, forced bool, stop int) {
					dist, jp := db.Get(x, y, d)
					if jp {
						require.True(t, forced, "seed=%d (%d,%d) %v", seed, x, y, d)
						var online int
						if scanX {
							online = stop - x
						} else {
							online = stop - y
						}
						if online < 0 {
							online = -online
						}
						require.Equal(t, dist, online, "seed=%d (%d,%d) %v", seed, x, y, d)
					} else {
						require.False(t, forced, "seed=%d (%d,%d) %v", seed, x, y, d)
						var online int
						if scanX {
							online = stop - x
						} else {
							online = stop - y
						}
						if online < 0 {
							online = -online
						}
						// A dead-end scan stops on the wall, one past the last
						// traversable cell.
						require.Equal(t, dist+1, online, "seed=%d (%d,%d) %v", seed, x, y, d)
					}
				}

				if m.Get(x+1, y) {
					stop, forced := jumpRight(jpsGrid.Map, x, y, 0, 0)
					check(grid.East, true, forced, stop)
				}
				if m.Get(x-1, y) {
					stop, forced := jumpLeft(jpsGrid.Map, x, y, 0, 0)
					check(grid.West, true, forced, stop)
				}
				if m.Get(x, y+1) {
					stop, forced := jumpRight(jpsGrid.TMap, y, x, 0, 0)
					check(grid.South, false, forced, stop)
				}
				if m.Get(x, y-1) {
					stop, forced := jumpLeft(jpsGrid.TMap, y, x, 0, 0)
					check(grid.North, false, forced, stop)
				}
			}
		}
	}
}

func TestOrthoJumpTargetInterception(t *testing.T) {
	m := openGrid(8, 8)
	db := NewJumpDatabase(m)

	// The target sits mid-scan on the axis: the jump truncates there.
	dist, ok := db.OrthoJump(0, 3, grid.East, grid.Point{5, 3})
	require.True(t, ok)
	assert.Equal(t, 5, dist)

	// Off-axis target does not rescue a dead-end jump.
	_, ok = db.OrthoJump(0, 3, grid.East, grid.Point{5, 4})
	assert.False(t, ok)
}

func TestDiagonalJumpTargetInterception(t *testing.T) {
	m := openGrid(16, 16)
	db := NewJumpDatabase(m)

	// Direct diagonal hit.
	dist, turnDir, _, ok := db.DiagonalJump(0, 0, grid.SouthEast, grid.Point{15, 15})
	require.True(t, ok)
	assert.Equal(t, 15, dist)
	assert.Equal(t, grid.NoDirection, turnDir)

	// Target reachable by turning off the diagonal onto an orthogonal.
	dist, turnDir, turnDist, ok := db.DiagonalJump(0, 0, grid.SouthEast, grid.Point{4, 9})
	require.True(t, ok)
	assert.Equal(t, 4, dist)
	assert.Equal(t, grid.South, turnDir)
	assert.Equal(t, 5, turnDist)

	// Unreachable by this diagonal: no successor on open ground.
	_, _, _, ok = db.DiagonalJump(8, 8, grid.NorthWest, grid.Point{15, 15})
	assert.False(t, ok)
}

func TestJumpDatabaseDimensionLimit(t *testing.T) {
	assert.Panics(t, func() { NewJumpDatabase(grid.NewBitGrid(1<<15+1, 4)) })
}
