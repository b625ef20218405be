package oracle

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/jps"
)

// TiebreakTable maps each of the 256 possible first-move sets to a dominant
// subset that stays valid as a first move for every target reachable
// through the source's incident jump points. Applying it before compression
// makes runs merge far more often.
type TiebreakTable [256]grid.DirSet

// ComputeTiebreakTable builds the table for a source with neighborhood nb
// and incident jump-point directions jpDirs. Index 0 (the empty set, which
// no reachable target produces) maps to the all-ones wildcard.
func ComputeTiebreakTable(nb grid.DirSet, jpDirs grid.DirSet) TiebreakTable {
	validMoves := jps.CanonicalSuccessors(nb, grid.NoDirection)
	var result TiebreakTable
	result[0] = grid.AllDirs
	for fm := 1; fm < 256; fm++ {
		fmDirs := grid.DirSet(fm)
		result[fm] = fmDirs

		if !fmDirs.IsSubset(validMoves) {
			// Contains illegal moves; no reachable target produces it.
			continue
		}

		jpDirs.Each(func(jp grid.Direction) {
			if isIrrelevantJumpPoint(jp, fmDirs, nb) {
				return
			}
			result[fm] &= jps.CanonicalSuccessors(nb, jp)
		})

		if result[fm].IsEmpty() {
			log.Panicf("oracle: tiebreak table empty for nb=%08b jps=%08b fm=%08b", nb, jpDirs, fm)
		}
	}
	return result
}

// isIrrelevantJumpPoint reports whether targets behind jump point jp cannot
// have produced the first-move set fm, in which case jp must not constrain
// it.
func isIrrelevantJumpPoint(jp grid.Direction, fm, nb grid.DirSet) bool {
	canonical := jps.CanonicalSuccessors(nb, jp)
	// Non-canonical for jp entirely.
	if canonical.IsDisjoint(fm) {
		return true
	}

	// Backwards moves, switchbacks, and diagonal-to-diagonal turns: an
	// optimal path through jp never starts inside its backwards cone.
	var cone grid.DirSet
	switch jp {
	case grid.North:
		cone = grid.SouthWest.Bit() | grid.South.Bit() | grid.SouthEast.Bit()
	case grid.West:
		cone = grid.NorthEast.Bit() | grid.East.Bit() | grid.SouthEast.Bit()
	case grid.South:
		cone = grid.NorthWest.Bit() | grid.North.Bit() | grid.NorthEast.Bit()
	case grid.East:
		cone = grid.NorthWest.Bit() | grid.West.Bit() | grid.SouthWest.Bit()
	case grid.NorthWest:
		cone = grid.SouthWest.Bit() | grid.South.Bit() | grid.SouthEast.Bit() | grid.East.Bit() | grid.NorthEast.Bit()
	case grid.SouthWest:
		cone = grid.SouthEast.Bit() | grid.East.Bit() | grid.NorthEast.Bit() | grid.North.Bit() | grid.NorthWest.Bit()
	case grid.SouthEast:
		cone = grid.NorthEast.Bit() | grid.North.Bit() | grid.NorthWest.Bit() | grid.West.Bit() | grid.SouthWest.Bit()
	case grid.NorthEast:
		cone = grid.NorthWest.Bit() | grid.West.Bit() | grid.SouthWest.Bit() | grid.South.Bit() | grid.SouthEast.Bit()
	}
	if !fm.IsDisjoint(cone) {
		return true
	}

	// Orthogonal-to-orthogonal turns: a side first move with its backward
	// diagonal open reaches jp's targets without passing the source.
	switch jp {
	case grid.North:
		if fm.Has(grid.West) && nb.Has(grid.SouthWest) {
			return true
		}
		if fm.Has(grid.East) && nb.Has(grid.SouthEast) {
			return true
		}
	case grid.West:
		if fm.Has(grid.South) && nb.Has(grid.SouthEast) {
			return true
		}
		if fm.Has(grid.North) && nb.Has(grid.NorthEast) {
			return true
		}
	case grid.South:
		if fm.Has(grid.West) && nb.Has(grid.NorthWest) {
			return true
		}
		if fm.Has(grid.East) && nb.Has(grid.NorthEast) {
			return true
		}
	case grid.East:
		if fm.Has(grid.South) && nb.Has(grid.SouthWest) {
			return true
		}
		if fm.Has(grid.North) && nb.Has(grid.NorthWest) {
			return true
		}
	}

	return false
}
