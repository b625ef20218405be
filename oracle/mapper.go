package oracle

import (
	"encoding/binary"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/pathfind/cpd"
	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/node"
)

// GridMapper assigns DFS-preorder ids to every traversable cell of a map.
type GridMapper struct {
	grid  *grid.Grid[int32]
	cells []grid.Point
}

const unmapped = int32(-1)

// DFSPreorderMapper enumerates the map's traversable cells depth-first from
// each unvisited cell in row-major order.
func DFSPreorderMapper(m *grid.BitGrid) *GridMapper {
	ids := grid.NewGrid(m.Width(), m.Height(), func(_, _ int) int32 { return unmapped })
	var cells []grid.Point

	b := node.NewBuilder()
	state := node.AddField(b, grid.Point{-1, -1})
	pool := grid.NewPool(b.Build(), state, m.Width(), m.Height())

	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if !m.Get(x, y) || ids.At(x, y) != unmapped {
				continue
			}

			pool.Reset()
			cpd.DFSTraversal(pool.Generate(grid.Point{x, y}),
				grid.NewEightConnectedExpander(m, pool),
				func(n node.Ref) bool {
					s := node.Get(n, state)
					if ids.At(s.X, s.Y) != unmapped {
						return false
					}
					ids.Set(s.X, s.Y, int32(len(cells)))
					cells = append(cells, s)
					return true
				})
		}
	}

	if len(cells) >= cpd.MaxStates {
		log.Panicf("oracle: %d states exceed the CPD id space", len(cells))
	}
	return &GridMapper{grid: ids, cells: cells}
}

// NumIDs implements cpd.StateIDMapper.
func (m *GridMapper) NumIDs() int { return len(m.cells) }

// StateToID implements cpd.StateIDMapper.
func (m *GridMapper) StateToID(s grid.Point) int { return int(m.grid.At(s.X, s.Y)) }

// IDToState implements cpd.StateIDMapper.
func (m *GridMapper) IDToState(id int) grid.Point { return m.cells[id] }

// Save writes the id table: a u32 state count, the id-ordered coordinate
// pairs, then the map dimensions, all little-endian.
func (m *GridMapper) Save(w io.Writer) error {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(m.cells)))
	if _, err := w.Write(buf[:4]); err != nil {
		return errors.E(err, "oracle: writing mapper header")
	}
	for _, p := range m.cells {
		binary.LittleEndian.PutUint32(buf[:4], uint32(int32(p.X)))
		binary.LittleEndian.PutUint32(buf[4:], uint32(int32(p.Y)))
		if _, err := w.Write(buf[:]); err != nil {
			return errors.E(err, "oracle: writing mapper cells")
		}
	}
	binary.LittleEndian.PutUint32(buf[:4], uint32(int32(m.grid.Width())))
	binary.LittleEndian.PutUint32(buf[4:], uint32(int32(m.grid.Height())))
	if _, err := w.Write(buf[:]); err != nil {
		return errors.E(err, "oracle: writing mapper dimensions")
	}
	return nil
}

// LoadMapper reads a mapper written by Save.
func LoadMapper(r io.Reader) (*GridMapper, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:4]); err != nil {
		return nil, errors.E(err, "oracle: reading mapper header")
	}
	count := int(binary.LittleEndian.Uint32(buf[:4]))

	cells := make([]grid.Point, count)
	for i := range cells {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, errors.E(err, "oracle: reading mapper cells")
		}
		cells[i] = grid.Point{
			X: int(int32(binary.LittleEndian.Uint32(buf[:4]))),
			Y: int(int32(binary.LittleEndian.Uint32(buf[4:]))),
		}
	}

	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, errors.E(err, "oracle: reading mapper dimensions")
	}
	width := int(int32(binary.LittleEndian.Uint32(buf[:4])))
	height := int(int32(binary.LittleEndian.Uint32(buf[4:])))

	ids := grid.NewGrid(width, height, func(_, _ int) int32 { return unmapped })
	for i, p := range cells {
		ids.Set(p.X, p.Y, int32(i))
	}
	return &GridMapper{grid: ids, cells: cells}, nil
}
