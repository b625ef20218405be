// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package jps

import "github.com/grailbio/pathfind/grid"

// canonicalTables[d][nb] is the canonical successor set for a cell with
// traversable neighborhood nb entered moving in direction d; index
// grid.NoDirection covers start cells. Built once at init; each entry is a
// pure function of nb.
var canonicalTables [9][256]grid.DirSet

func init() {
	for d := grid.Direction(0); d <= grid.NoDirection; d++ {
		for nb := 0; nb < 256; nb++ {
			canonicalTables[d][nb] = computeCanonical(grid.DirSet(nb), d)
		}
	}
}

// CanonicalSuccessors returns the set of directions a canonical search must
// explore from a cell with neighborhood nb that was entered moving in
// direction dir (grid.NoDirection for the start cell).
func CanonicalSuccessors(nb grid.DirSet, dir grid.Direction) grid.DirSet {
	return canonicalTables[dir][nb]
}

func computeCanonical(nb grid.DirSet, dir grid.Direction) grid.DirSet {
	n := nb.Has(grid.North)
	w := nb.Has(grid.West)
	s := nb.Has(grid.South)
	e := nb.Has(grid.East)
	nw := nb.Has(grid.NorthWest)
	sw := nb.Has(grid.SouthWest)
	se := nb.Has(grid.SouthEast)
	ne := nb.Has(grid.NorthEast)

	var out grid.DirSet
	ortho := func(fwd bool, fwdDir grid.Direction,
		left, leftBackDiag bool, leftDir grid.Direction, leftFwdDiag bool, leftFwdDir grid.Direction,
		right, rightBackDiag bool, rightDir grid.Direction, rightFwdDiag bool, rightFwdDir grid.Direction) {
		if fwd {
			out |= fwdDir.Bit()
		}
		// A side orthogonal is canonical only when its backwards-side
		// diagonal is blocked (forced neighbor); the forward diagonal on that
		// side follows when its wedge is open.
		if left && !leftBackDiag {
			out |= leftDir.Bit()
			if fwd && leftFwdDiag {
				out |= leftFwdDir.Bit()
			}
		}
		if right && !rightBackDiag {
			out |= rightDir.Bit()
			if fwd && rightFwdDiag {
				out |= rightFwdDir.Bit()
			}
		}
	}
	diag := func(x bool, xDir grid.Direction, y bool, yDir grid.Direction, d bool, dDir grid.Direction) {
		if x {
			out |= xDir.Bit()
		}
		if y {
			out |= yDir.Bit()
		}
		if x && y && d {
			out |= dDir.Bit()
		}
	}

	switch dir {
	case grid.North:
		ortho(n, grid.North, w, sw, grid.West, nw, grid.NorthWest, e, se, grid.East, ne, grid.NorthEast)
	case grid.South:
		ortho(s, grid.South, w, nw, grid.West, sw, grid.SouthWest, e, ne, grid.East, se, grid.SouthEast)
	case grid.West:
		ortho(w, grid.West, n, ne, grid.North, nw, grid.NorthWest, s, se, grid.South, sw, grid.SouthWest)
	case grid.East:
		ortho(e, grid.East, n, nw, grid.North, ne, grid.NorthEast, s, sw, grid.South, se, grid.SouthEast)
	case grid.NorthWest:
		diag(w, grid.West, n, grid.North, nw, grid.NorthWest)
	case grid.SouthWest:
		diag(w, grid.West, s, grid.South, sw, grid.SouthWest)
	case grid.SouthEast:
		diag(e, grid.East, s, grid.South, se, grid.SouthEast)
	case grid.NorthEast:
		diag(e, grid.East, n, grid.North, ne, grid.NorthEast)
	default:
		if n {
			out |= grid.North.Bit()
		}
		if w {
			out |= grid.West.Bit()
		}
		if s {
			out |= grid.South.Bit()
		}
		if e {
			out |= grid.East.Bit()
		}
		if n && w && nw {
			out |= grid.NorthWest.Bit()
		}
		if s && w && sw {
			out |= grid.SouthWest.Bit()
		}
		if s && e && se {
			out |= grid.SouthEast.Bit()
		}
		if n && e && ne {
			out |= grid.NorthEast.Bit()
		}
	}
	return out
}
