// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package cpd implements compressed path database rows: per-source
// first-move vectors compressed into runs and laid out in Eytzinger order
// for branch-predictable lookup.
package cpd

import (
	"encoding/binary"
	"io"
	"math/bits"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// StateIDMapper maps search states to dense ids and back.
type StateIDMapper[S any] interface {
	NumIDs() int
	StateToID(s S) int
	IDToState(id int) S
}

// MaxStates bounds the id space of a CPD row; ids occupy 26 bits of each
// entry.
const MaxStates = 1 << 26

const moveBits = 6

// Row is a compressed first-move vector: a strictly increasing run sequence
// of (startID, moveIndex) pairs, stored in Eytzinger order. The first move
// for a target id is the move of the run with the largest startID <= id.
type Row struct {
	runs []uint32
}

func packEntry(startID int, mask uint64) uint32 {
	return uint32(startID)<<moveBits | uint32(bits.TrailingZeros64(mask))&(1<<moveBits-1)
}

func entryStart(e uint32) int { return int(e >> moveBits) }
func entryMove(e uint32) int  { return int(e & (1<<moveBits - 1)) }

// Compress builds a row from the per-id first-move bitmasks. Within each
// emitted run every retained move leads to an optimal path; the
// lowest-numbered one is committed. An empty input produces an empty row.
func Compress(firstMoves []uint64) *Row {
	if len(firstMoves) >= MaxStates {
		log.Panicf("cpd: %d states exceed the %d-state id space", len(firstMoves), MaxStates)
	}
	if len(firstMoves) == 0 {
		return &Row{}
	}

	var sorted []uint32
	currentID := 0
	currentMoves := ^uint64(0)
	for id, moves := range firstMoves {
		if currentMoves&moves == 0 {
			sorted = append(sorted, packEntry(currentID, currentMoves))
			currentID = id
			currentMoves = moves
		} else {
			currentMoves &= moves
		}
	}
	// The zero-mask terminator flushes the pending run.
	sorted = append(sorted, packEntry(currentID, currentMoves))

	return &Row{runs: eytzinger(sorted)}
}

// eytzinger reorders a sorted slice into implicit-binary-tree order: an
// in-order walk of the tree indexed by {k -> 2k+1, 2k+2} visits the sorted
// sequence.
func eytzinger(sorted []uint32) []uint32 {
	out := make([]uint32, len(sorted))
	next := 0
	var fill func(k int)
	fill = func(k int) {
		if k >= len(out) {
			return
		}
		fill(2*k + 1)
		out[k] = sorted[next]
		next++
		fill(2*k + 2)
	}
	fill(0)
	return out
}

// Lookup returns the committed first-move index for the target id.
func (r *Row) Lookup(id int) int {
	i := 0
	result := 0
	for i < len(r.runs) {
		if id < entryStart(r.runs[i]) {
			i = 2*i + 1
		} else {
			result = entryMove(r.runs[i])
			i = 2*i + 2
		}
	}
	return result
}

// Len returns the number of runs.
func (r *Row) Len() int { return len(r.runs) }

// Save writes the row: a u32 length then the entries, little-endian.
func (r *Row) Save(w io.Writer) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(len(r.runs)))
	if _, err := w.Write(buf[:]); err != nil {
		return errors.E(err, "cpd: writing row length")
	}
	for _, run := range r.runs {
		binary.LittleEndian.PutUint32(buf[:], run)
		if _, err := w.Write(buf[:]); err != nil {
			return errors.E(err, "cpd: writing row entries")
		}
	}
	return nil
}

// LoadRow reads a row written by Save.
func LoadRow(rd io.Reader) (*Row, error) {
	var buf [4]byte
	if _, err := io.ReadFull(rd, buf[:]); err != nil {
		return nil, errors.E(err, "cpd: reading row length")
	}
	runs := make([]uint32, binary.LittleEndian.Uint32(buf[:]))
	for i := range runs {
		if _, err := io.ReadFull(rd, buf[:]); err != nil {
			return nil, errors.E(err, "cpd: reading row entries")
		}
		runs[i] = binary.LittleEndian.Uint32(buf[:])
	}
	return &Row{runs: runs}, nil
}
