// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package jps

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/pathfind/grid"
)

// JumpDatabase precomputes, for every cell and every direction, the distance
// to the next jump point (or to the wall) in that direction. Entries pack
// (distance << 1) | jumpPoint into a uint16, which bounds maps to 2^15 cells
// per side.
type JumpDatabase struct {
	m  *grid.BitGrid
	db *grid.Grid[[8]uint16]
}

const maxJumpDBDim = 1 << 15

// NewJumpDatabase builds the database for a map with four sweeps: the
// north/west entries top-down, south/east bottom-up, then the diagonals in
// the same two passes over the finished orthogonal entries.
func NewJumpDatabase(m *grid.BitGrid) *JumpDatabase {
	if m.Width() > maxJumpDBDim {
		log.Panicf("jps: map cannot be wider than %d tiles", maxJumpDBDim)
	}
	if m.Height() > maxJumpDBDim {
		log.Panicf("jps: map cannot be taller than %d tiles", maxJumpDBDim)
	}

	db := grid.NewGrid(m.Width(), m.Height(), func(_, _ int) [8]uint16 { return [8]uint16{} })

	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			nb := m.Neighborhood(x, y)

			// West. The western neighbor is a jump point when stepping onto
			// it forces a turn; otherwise extend its entry by one, keeping
			// the flag.
			westJP1 := grid.West.Bit() | grid.NorthWest.Bit() | grid.North.Bit()
			westJP2 := grid.West.Bit() | grid.SouthWest.Bit() | grid.South.Bit()
			if nb&westJP1 == grid.West.Bit()|grid.NorthWest.Bit() ||
				nb&westJP2 == grid.West.Bit()|grid.SouthWest.Bit() {
				db.Ptr(x, y)[grid.West] = 3
			} else if nb.Has(grid.West) {
				db.Ptr(x, y)[grid.West] = db.At(x-1, y)[grid.West] + 2
			}

			// North.
			northJP1 := grid.North.Bit() | grid.NorthWest.Bit() | grid.West.Bit()
			northJP2 := grid.North.Bit() | grid.NorthEast.Bit() | grid.East.Bit()
			if nb&northJP1 == grid.North.Bit()|grid.NorthWest.Bit() ||
				nb&northJP2 == grid.North.Bit()|grid.NorthEast.Bit() {
				db.Ptr(x, y)[grid.North] = 3
			} else if nb.Has(grid.North) {
				db.Ptr(x, y)[grid.North] = db.At(x, y-1)[grid.North] + 2
			}
		}
	}

	for y := m.Height() - 1; y >= 0; y-- {
		for x := m.Width() - 1; x >= 0; x-- {
			nb := m.Neighborhood(x, y)

			// East.
			eastJP1 := grid.East.Bit() | grid.NorthEast.Bit() | grid.North.Bit()
			eastJP2 := grid.East.Bit() | grid.SouthEast.Bit() | grid.South.Bit()
			if nb&eastJP1 == grid.East.Bit()|grid.NorthEast.Bit() ||
				nb&eastJP2 == grid.East.Bit()|grid.SouthEast.Bit() {
				db.Ptr(x, y)[grid.East] = 3
			} else if nb.Has(grid.East) {
				db.Ptr(x, y)[grid.East] = db.At(x+1, y)[grid.East] + 2
			}

			// South.
			southJP1 := grid.South.Bit() | grid.SouthWest.Bit() | grid.West.Bit()
			southJP2 := grid.South.Bit() | grid.SouthEast.Bit() | grid.East.Bit()
			if nb&southJP1 == grid.South.Bit()|grid.SouthWest.Bit() ||
				nb&southJP2 == grid.South.Bit()|grid.SouthEast.Bit() {
				db.Ptr(x, y)[grid.South] = 3
			} else if nb.Has(grid.South) {
				db.Ptr(x, y)[grid.South] = db.At(x, y+1)[grid.South] + 2
			}
		}
	}

	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			nb := m.Neighborhood(x, y)

			// NorthWest. The diagonal neighbor is a jump point if either of
			// its same-direction orthogonal jumps leads anywhere.
			nwWedge := grid.North.Bit() | grid.West.Bit() | grid.NorthWest.Bit()
			if nwWedge.IsSubset(nb) {
				if db.At(x-1, y-1)[grid.West]&1 != 0 || db.At(x-1, y-1)[grid.North]&1 != 0 {
					db.Ptr(x, y)[grid.NorthWest] = 3
				} else {
					db.Ptr(x, y)[grid.NorthWest] = db.At(x-1, y-1)[grid.NorthWest] + 2
				}
			}

			// NorthEast.
			neWedge := grid.North.Bit() | grid.East.Bit() | grid.NorthEast.Bit()
			if neWedge.IsSubset(nb) {
				if db.At(x+1, y-1)[grid.East]&1 != 0 || db.At(x+1, y-1)[grid.North]&1 != 0 {
					db.Ptr(x, y)[grid.NorthEast] = 3
				} else {
					db.Ptr(x, y)[grid.NorthEast] = db.At(x+1, y-1)[grid.NorthEast] + 2
				}
			}
		}
	}

	for y := m.Height() - 1; y >= 0; y-- {
		for x := m.Width() - 1; x >= 0; x-- {
			nb := m.Neighborhood(x, y)

			// SouthWest.
			swWedge := grid.South.Bit() | grid.West.Bit() | grid.SouthWest.Bit()
			if swWedge.IsSubset(nb) {
				if db.At(x-1, y+1)[grid.West]&1 != 0 || db.At(x-1, y+1)[grid.South]&1 != 0 {
					db.Ptr(x, y)[grid.SouthWest] = 3
				} else {
					db.Ptr(x, y)[grid.SouthWest] = db.At(x-1, y+1)[grid.SouthWest] + 2
				}
			}

			// SouthEast.
			seWedge := grid.South.Bit() | grid.East.Bit() | grid.SouthEast.Bit()
			if seWedge.IsSubset(nb) {
				if db.At(x+1, y+1)[grid.East]&1 != 0 || db.At(x+1, y+1)[grid.South]&1 != 0 {
					db.Ptr(x, y)[grid.SouthEast] = 3
				} else {
					db.Ptr(x, y)[grid.SouthEast] = db.At(x+1, y+1)[grid.SouthEast] + 2
				}
			}
		}
	}

	return &JumpDatabase{m: m, db: db}
}

// Map returns the map the database was built from.
func (db *JumpDatabase) Map() *grid.BitGrid { return db.m }

// Width returns the map width.
func (db *JumpDatabase) Width() int { return db.db.Width() }

// Height returns the map height.
func (db *JumpDatabase) Height() int { return db.db.Height() }

// Get returns the jump distance from (x, y) in dir and whether the jump ends
// at a jump point. Distance 0 with a false flag means the move is blocked.
func (db *JumpDatabase) Get(x, y int, dir grid.Direction) (int, bool) {
	raw := db.db.At(x, y)[dir]
	return int(raw >> 1), raw&1 != 0
}

// OrthoJump finds the end of an orthogonal jump from (x, y), stopping early
// at the target if the scan line crosses it. It returns the distance to the
// successor (a jump point or the target), or false if the jump dead-ends.
func (db *JumpDatabase) OrthoJump(x, y int, dir grid.Direction, target grid.Point) (int, bool) {
	dist, successor := db.Get(x, y, dir)

	switch dir {
	case grid.North:
		if x == target.X && y > target.Y && y-dist <= target.Y {
			return y - target.Y, true
		}
	case grid.West:
		if y == target.Y && x > target.X && x-dist <= target.X {
			return x - target.X, true
		}
	case grid.South:
		if x == target.X && y < target.Y && y+dist >= target.Y {
			return target.Y - y, true
		}
	case grid.East:
		if y == target.Y && x < target.X && x+dist >= target.X {
			return target.X - x, true
		}
	default:
		log.Panicf("jps: orthogonal jump with diagonal direction %v", dir)
	}
	if successor {
		return dist, true
	}
	return 0, false
}

// DiagonalJump finds the end of a diagonal jump from (x, y) with target
// interception. On success it returns the diagonal distance and, when the
// target is reached by turning onto an orthogonal partway through, the turn
// direction and the post-turn distance (turnDir is grid.NoDirection when no
// turn is involved).
func (db *JumpDatabase) DiagonalJump(x, y int, dir grid.Direction, target grid.Point) (dist int, turnDir grid.Direction, turnDist int, ok bool) {
	switch dir {
	case grid.NorthWest:
		return db.diagonalJump(x, y, -1, -1, dir, grid.West, grid.North, target)
	case grid.SouthWest:
		return db.diagonalJump(x, y, -1, 1, dir, grid.West, grid.South, target)
	case grid.SouthEast:
		return db.diagonalJump(x, y, 1, 1, dir, grid.East, grid.South, target)
	case grid.NorthEast:
		return db.diagonalJump(x, y, 1, -1, dir, grid.East, grid.North, target)
	default:
		log.Panicf("jps: diagonal jump with orthogonal direction %v", dir)
		return
	}
}

func (db *JumpDatabase) diagonalJump(x, y, dx, dy int, dir, dirX, dirY grid.Direction, target grid.Point) (int, grid.Direction, int, bool) {
	dist, successor := db.Get(x, y, dir)

	xTargetDist := dx * (target.X - x)
	yTargetDist := dy * (target.Y - y)

	extent := dist
	if !successor {
		extent++
	}

	if xTargetDist > 0 && xTargetDist < extent {
		// Passed the target on the x axis; check the y-axis followup jump.
		if xTargetDist == yTargetDist {
			return xTargetDist, grid.NoDirection, 0, true
		}
		turnX := target.X
		turnY := y + dy*xTargetDist
		remaining := dy * (target.Y - turnY)
		if remaining > 0 {
			if d2, _ := db.Get(turnX, turnY, dirY); remaining <= d2 {
				return xTargetDist, dirY, remaining, true
			}
		}
	}

	if yTargetDist > 0 && yTargetDist < extent {
		// Passed the target on the y axis; check the x-axis followup jump.
		turnX := x + dx*yTargetDist
		turnY := target.Y
		remaining := dx * (target.X - turnX)
		if remaining > 0 {
			if d2, _ := db.Get(turnX, turnY, dirX); remaining <= d2 {
				return yTargetDist, dirX, remaining, true
			}
		}
	}

	if successor {
		return dist, grid.NoDirection, 0, true
	}
	return 0, grid.NoDirection, 0, false
}
