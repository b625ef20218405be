// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package oracle builds and queries partial-cell first-move oracles:
// compressed path database rows (Topping+) and per-direction bounding boxes
// (JPS+BB) anchored at the map's independent jump points.
package oracle

import (
	"sort"

	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/jps"
)

const diagonals = grid.DirSet(1<<grid.NorthWest | 1<<grid.SouthWest | 1<<grid.SouthEast | 1<<grid.NorthEast)

// IndependentJumpPoints enumerates the cells the partial oracles anchor at:
// every cell that is a jump point for some orthogonal incoming direction,
// plus all diagonally-reachable jump points on the diagonal rays out of
// those cells. The value records the incoming directions for which the cell
// acts as a jump point.
func IndependentJumpPoints(m *grid.BitGrid, jumpDB *jps.JumpDatabase) map[grid.Point]grid.DirSet {
	jumpPoints := make(map[grid.Point]grid.DirSet)

	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if !m.Get(x, y) {
				continue
			}

			nb := m.Neighborhood(x, y)
			var jpSuccessors grid.DirSet
			var jpDirs grid.DirSet

			for _, dir := range [...]grid.Direction{grid.North, grid.South, grid.East, grid.West} {
				if !nb.Has(dir.Backwards()) {
					continue
				}
				dirs := jps.CanonicalSuccessors(nb, dir)
				if dirs&^dir.Bit() != 0 {
					jpDirs |= dir.Bit()
					jpSuccessors |= dirs
				}
			}

			if jpDirs.IsEmpty() {
				continue
			}
			jumpPoints[grid.Point{x, y}] |= jpDirs

			jpSuccessors &= diagonals
			jpSuccessors.Each(func(dir grid.Direction) {
				collectDiagonalJps(jumpPoints, jumpDB, x, y, dir)
			})
		}
	}

	return jumpPoints
}

func collectDiagonalJps(jumpPoints map[grid.Point]grid.DirSet, jumpDB *jps.JumpDatabase, x, y int, dir grid.Direction) {
	dx, dy := dir.Offset()
	for {
		dist, jp := jumpDB.Get(x, y, dir)
		if !jp {
			return
		}
		x += dx * dist
		y += dy * dist
		jumpPoints[grid.Point{x, y}] |= dir.Bit()
	}
}

// sortedJumpPoints flattens the map into deterministic (y, x) order for
// stable iteration and serialization.
func sortedJumpPoints(jumpPoints map[grid.Point]grid.DirSet) []grid.Point {
	points := make([]grid.Point, 0, len(jumpPoints))
	for p := range jumpPoints {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Y != points[j].Y {
			return points[i].Y < points[j].Y
		}
		return points[i].X < points[j].X
	})
	return points
}
