// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package oracle

import (
	"encoding/binary"
	"io"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/pathfind/cpd"
	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/jps"
	"github.com/grailbio/pathfind/parallel"
	"v.io/x/lib/vlog"
)

// PartialCellCpd is the Topping+ oracle: a compressed first-move row for
// every independent jump point, plus the dense state-id mapper the rows are
// indexed by.
type PartialCellCpd struct {
	mapper *GridMapper
	jumpDB *jps.JumpDatabase
	rows   map[grid.Point]*cpd.Row
}

// ProgressFunc reports preprocessing progress: items done, total items, and
// elapsed wall time. It may be called from multiple workers, serialized.
type ProgressFunc func(done, total int, elapsed time.Duration)

// ComputePartialCellCpd builds the oracle for a map. Jump points are
// processed by one worker per CPU, each with a private FirstMoveComputer;
// progress may be nil.
func ComputePartialCellCpd(m *grid.BitGrid, progress ProgressFunc) *PartialCellCpd {
	jumpDB := jps.NewJumpDatabase(m)
	mapper := DFSPreorderMapper(m)
	jumpPoints := IndependentJumpPoints(m, jumpDB)
	points := sortedJumpPoints(jumpPoints)

	start := time.Now()
	var mu sync.Mutex
	done := 0
	rows := make(map[grid.Point]*cpd.Row, len(points))

	_ = parallel.For(points,
		func() *FirstMoveComputer { return NewFirstMoveComputer(m) },
		func(computer *FirstMoveComputer, source grid.Point) error {
			table := ComputeTiebreakTable(m.Neighborhood(source.X, source.Y), jumpPoints[source])

			firstMoves := make([]uint64, mapper.NumIDs())
			unvisited := uint64(table[grid.AllDirs])
			for i := range firstMoves {
				firstMoves[i] = unvisited
			}
			computer.Compute(source, func(p grid.Point, fm grid.DirSet) {
				firstMoves[mapper.StateToID(p)] = uint64(table[fm])
			})
			row := cpd.Compress(firstMoves)

			mu.Lock()
			rows[source] = row
			done++
			if progress != nil {
				progress(done, len(points), time.Since(start))
			}
			mu.Unlock()
			return nil
		})

	vlog.VI(1).Infof("oracle: computed %d jump point rows in %v", len(points), time.Since(start))
	return &PartialCellCpd{mapper: mapper, jumpDB: jumpDB, rows: rows}
}

// Map returns the oracle's map.
func (o *PartialCellCpd) Map() *grid.BitGrid { return o.jumpDB.Map() }

// JumpDB returns the jump database built alongside the oracle.
func (o *PartialCellCpd) JumpDB() *jps.JumpDatabase { return o.jumpDB }

// Mapper returns the oracle's state-id mapper.
func (o *PartialCellCpd) Mapper() *GridMapper { return o.mapper }

// NumJumpPoints returns the number of stored rows.
func (o *PartialCellCpd) NumJumpPoints() int { return len(o.rows) }

// Query returns the committed first move from a jump point towards target,
// or false if the oracle holds no row for pos.
func (o *PartialCellCpd) Query(pos, target grid.Point) (grid.Direction, bool) {
	row, ok := o.rows[pos]
	if !ok {
		return grid.NoDirection, false
	}
	id := o.mapper.StateToID(target)
	if id < 0 {
		return grid.NoDirection, false
	}
	return grid.Direction(row.Lookup(id)), true
}

// Save writes the oracle as a snappy-framed stream holding the mapper, a
// u32 jump point count, then each jump point's coordinates and row,
// little-endian, in (y, x) order.
func (o *PartialCellCpd) Save(w io.Writer) error {
	zw := snappy.NewBufferedWriter(w)
	if err := o.mapper.Save(zw); err != nil {
		return err
	}
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(o.rows)))
	if _, err := zw.Write(buf[:4]); err != nil {
		return errors.E(err, "oracle: writing jump point count")
	}
	points := make(map[grid.Point]grid.DirSet, len(o.rows))
	for p := range o.rows {
		points[p] = 0
	}
	for _, p := range sortedJumpPoints(points) {
		binary.LittleEndian.PutUint32(buf[:4], uint32(int32(p.X)))
		binary.LittleEndian.PutUint32(buf[4:], uint32(int32(p.Y)))
		if _, err := zw.Write(buf[:]); err != nil {
			return errors.E(err, "oracle: writing jump point")
		}
		if err := o.rows[p].Save(zw); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return errors.E(err, "oracle: flushing snappy stream")
	}
	return nil
}

// LoadPartialCellCpd reads an oracle written by Save, rebuilding the jump
// database from the map. The map must be the one the oracle was built for.
func LoadPartialCellCpd(m *grid.BitGrid, rd io.Reader) (*PartialCellCpd, error) {
	jumpDB := jps.NewJumpDatabase(m)
	r := snappy.NewReader(rd)
	mapper, err := LoadMapper(r)
	if err != nil {
		return nil, err
	}

	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:4]); err != nil {
		return nil, errors.E(err, "oracle: reading jump point count")
	}
	numJps := int(binary.LittleEndian.Uint32(buf[:4]))

	rows := make(map[grid.Point]*cpd.Row, numJps)
	for i := 0; i < numJps; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, errors.E(err, "oracle: reading jump point")
		}
		x := int(int32(binary.LittleEndian.Uint32(buf[:4])))
		y := int(int32(binary.LittleEndian.Uint32(buf[4:])))
		if x < 0 || y < 0 || x >= m.Width() || y >= m.Height() {
			return nil, errors.E("oracle: jump point out of bounds")
		}
		row, err := cpd.LoadRow(r)
		if err != nil {
			return nil, err
		}
		rows[grid.Point{x, y}] = row
	}

	return &PartialCellCpd{mapper: mapper, jumpDB: jumpDB, rows: rows}, nil
}
