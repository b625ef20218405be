package oracle

import (
	"encoding/binary"
	"io"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/jps"
	"github.com/grailbio/pathfind/parallel"
	"v.io/x/lib/vlog"
)

// Rectangle is a half-open axis-aligned box [LowX, HighX) x [LowY, HighY).
// The zero rectangle is empty.
type Rectangle struct {
	LowX, LowY, HighX, HighY int16
}

// IsEmpty reports whether the rectangle covers no cells.
func (r *Rectangle) IsEmpty() bool {
	return r.LowX == r.HighX && r.LowY == r.HighY
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r *Rectangle) Contains(x, y int) bool {
	return x >= int(r.LowX) && y >= int(r.LowY) && x < int(r.HighX) && y < int(r.HighY)
}

func (r *Rectangle) grow(x, y int16) {
	if r.IsEmpty() {
		*r = Rectangle{LowX: x, LowY: y, HighX: x + 1, HighY: y + 1}
		return
	}
	r.LowX = min16(r.LowX, x)
	r.LowY = min16(r.LowY, y)
	r.HighX = max16(r.HighX, x+1)
	r.HighY = max16(r.HighY, y+1)
}

func (r *Rectangle) areaIncrease(x, y int16) int {
	if r.IsEmpty() {
		return 1
	}
	growthX := max16(max16(r.LowX-x, x-r.HighX), 0)
	growthY := max16(max16(r.LowY-y, y-r.HighY), 0)
	return int(growthX)*int(r.HighY-r.LowY) +
		int(growthY)*int(r.HighX-r.LowX) +
		int(growthX)*int(growthY)
}

func min16(a, b int16) int16 {
	if a < b {
		return a
	}
	return b
}

func max16(a, b int16) int16 {
	if a > b {
		return a
	}
	return b
}

// PartialCellBB is the JPS+BB oracle: eight first-move rectangles for every
// independent jump point. A target is a valid first move in direction d from
// a source iff it lies in the source's rectangle d.
type PartialCellBB struct {
	jumpDB *jps.JumpDatabase
	rects  map[grid.Point]*[8]Rectangle
}

// ComputePartialCellBB builds the bounding-box oracle for a map. Each
// settled cell is assigned to the single tie-broken direction whose
// rectangle grows the least.
func ComputePartialCellBB(m *grid.BitGrid, progress ProgressFunc) *PartialCellBB {
	jumpDB := jps.NewJumpDatabase(m)
	jumpPoints := IndependentJumpPoints(m, jumpDB)
	points := sortedJumpPoints(jumpPoints)

	start := time.Now()
	var mu sync.Mutex
	done := 0
	rects := make(map[grid.Point]*[8]Rectangle, len(points))

	_ = parallel.For(points,
		func() *FirstMoveComputer { return NewFirstMoveComputer(m) },
		func(computer *FirstMoveComputer, source grid.Point) error {
			table := ComputeTiebreakTable(m.Neighborhood(source.X, source.Y), jumpPoints[source])

			var result [8]Rectangle
			computer.Compute(source, func(p grid.Point, fm grid.DirSet) {
				fm = table[fm]
				best := grid.NoDirection
				bestIncrease := 0
				fm.Each(func(d grid.Direction) {
					if increase := result[d].areaIncrease(int16(p.X), int16(p.Y)); best == grid.NoDirection || increase < bestIncrease {
						best = d
						bestIncrease = increase
					}
				})
				result[best].grow(int16(p.X), int16(p.Y))
			})

			mu.Lock()
			rects[source] = &result
			done++
			if progress != nil {
				progress(done, len(points), time.Since(start))
			}
			mu.Unlock()
			return nil
		})

	vlog.VI(1).Infof("oracle: computed %d bounding box sets in %v", len(points), time.Since(start))
	return &PartialCellBB{jumpDB: jumpDB, rects: rects}
}

// Map returns the oracle's map.
func (o *PartialCellBB) Map() *grid.BitGrid { return o.jumpDB.Map() }

// JumpDB returns the jump database built alongside the oracle.
func (o *PartialCellBB) JumpDB() *jps.JumpDatabase { return o.jumpDB }

// NumJumpPoints returns the number of stored rectangle sets.
func (o *PartialCellBB) NumJumpPoints() int { return len(o.rects) }

// Filter removes from canonical every direction whose rectangle does not
// cover the target. Sources without rectangles pass through unfiltered.
func (o *PartialCellBB) Filter(pos, target grid.Point, canonical grid.DirSet) grid.DirSet {
	rects, ok := o.rects[pos]
	if !ok {
		return canonical
	}
	out := canonical
	canonical.Each(func(d grid.Direction) {
		if !rects[d].Contains(target.X, target.Y) {
			out &^= d.Bit()
		}
	})
	return out
}

// Save writes the oracle as a snappy-framed stream: a u32 jump point count
// then, per jump point, its i16 coordinates and the eight rectangles as i16
// quadruples, little-endian, in (y, x) order.
func (o *PartialCellBB) Save(w io.Writer) error {
	zw := snappy.NewBufferedWriter(w)
	var buf [2]byte
	writeI16 := func(v int16) error {
		binary.LittleEndian.PutUint16(buf[:], uint16(v))
		_, err := zw.Write(buf[:])
		return err
	}

	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], uint32(len(o.rects)))
	if _, err := zw.Write(count[:]); err != nil {
		return errors.E(err, "oracle: writing bounding box count")
	}

	points := make(map[grid.Point]grid.DirSet, len(o.rects))
	for p := range o.rects {
		points[p] = 0
	}
	for _, p := range sortedJumpPoints(points) {
		if err := writeI16(int16(p.X)); err != nil {
			return errors.E(err, "oracle: writing bounding boxes")
		}
		if err := writeI16(int16(p.Y)); err != nil {
			return errors.E(err, "oracle: writing bounding boxes")
		}
		for _, rect := range o.rects[p] {
			for _, v := range [...]int16{rect.LowX, rect.LowY, rect.HighX, rect.HighY} {
				if err := writeI16(v); err != nil {
					return errors.E(err, "oracle: writing bounding boxes")
				}
			}
		}
	}
	if err := zw.Close(); err != nil {
		return errors.E(err, "oracle: flushing snappy stream")
	}
	return nil
}

// LoadPartialCellBB reads an oracle written by Save, rebuilding the jump
// database from the map.
func LoadPartialCellBB(m *grid.BitGrid, rd io.Reader) (*PartialCellBB, error) {
	jumpDB := jps.NewJumpDatabase(m)
	r := snappy.NewReader(rd)

	var count [4]byte
	if _, err := io.ReadFull(r, count[:]); err != nil {
		return nil, errors.E(err, "oracle: reading bounding box count")
	}
	numJps := int(binary.LittleEndian.Uint32(count[:]))

	var buf [2]byte
	readI16 := func() (int16, error) {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return int16(binary.LittleEndian.Uint16(buf[:])), nil
	}

	rects := make(map[grid.Point]*[8]Rectangle, numJps)
	for i := 0; i < numJps; i++ {
		x, err := readI16()
		if err != nil {
			return nil, errors.E(err, "oracle: reading bounding boxes")
		}
		y, err := readI16()
		if err != nil {
			return nil, errors.E(err, "oracle: reading bounding boxes")
		}
		if int(x) < 0 || int(y) < 0 || int(x) >= m.Width() || int(y) >= m.Height() {
			return nil, errors.E("oracle: bounding box jump point out of bounds")
		}
		var result [8]Rectangle
		for d := 0; d < 8; d++ {
			vals := [4]int16{}
			for j := range vals {
				if vals[j], err = readI16(); err != nil {
					return nil, errors.E(err, "oracle: reading bounding boxes")
				}
			}
			result[d] = Rectangle{LowX: vals[0], LowY: vals[1], HighX: vals[2], HighY: vals[3]}
		}
		rects[grid.Point{int(x), int(y)}] = &result
	}

	return &PartialCellBB{jumpDB: jumpDB, rects: rects}, nil
}
