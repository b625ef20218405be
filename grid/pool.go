package grid

import (
	"math"

	"github.com/grailbio/base/log"
	"github.com/grailbio/pathfind/node"
)

// StateMapper is the node-generation contract grid expanders work against:
// a way to turn in-bounds coordinates into nodes carrying a Point state.
type StateMapper interface {
	Width() int
	Height() int
	StateField() node.Field[Point]
	// GenerateUnchecked returns the node for p without bounds checking; p
	// must be in-bounds of the mapper.
	GenerateUnchecked(p Point) node.Ref
}

type poolSlot struct {
	num uint64
	ref node.Ref
}

// Pool is the dense array node pool: a width x height table of slots with a
// per-search generation counter, so Reset is O(1).
type Pool struct {
	slots        []poolSlot
	width        int
	height       int
	searchNumber uint64
	stateField   node.Field[Point]
	allocator    *node.Allocator
}

// NewPool returns a pool covering a width x height state space.
func NewPool(allocator *node.Allocator, stateField node.Field[Point], width, height int) *Pool {
	if allocator.LayoutID() != stateField.LayoutID() {
		log.Panicf("grid: mismatched layouts")
	}
	return &Pool{
		slots:        make([]poolSlot, width*height),
		width:        width,
		height:       height,
		searchNumber: 1,
		stateField:   stateField,
		allocator:    allocator,
	}
}

// Width returns the pool's state-space width.
func (p *Pool) Width() int { return p.width }

// Height returns the pool's state-space height.
func (p *Pool) Height() int { return p.height }

// StateField implements StateMapper.
func (p *Pool) StateField() node.Field[Point] { return p.stateField }

// Reset invalidates all nodes by bumping the generation counter.
func (p *Pool) Reset() {
	p.searchNumber++
	if p.searchNumber == 0 {
		for i := range p.slots {
			p.slots[i] = poolSlot{}
		}
		p.searchNumber = 1
	}
	p.allocator.Reset()
}

// Generate implements node.Pool.
func (p *Pool) Generate(s Point) node.Ref {
	p.boundsCheck(s)
	return p.GenerateUnchecked(s)
}

// Get returns the node for s if one was generated this search.
func (p *Pool) Get(s Point) (node.Ref, bool) {
	p.boundsCheck(s)
	slot := p.slots[s.Y*p.width+s.X]
	if slot.num != p.searchNumber {
		return node.Ref{}, false
	}
	return slot.ref, true
}

// GenerateUnchecked implements StateMapper.
func (p *Pool) GenerateUnchecked(s Point) node.Ref {
	slot := &p.slots[s.Y*p.width+s.X]
	if slot.num == p.searchNumber {
		return slot.ref
	}
	n := p.allocator.NewNode()
	node.SetUnchecked(n, p.stateField, s)
	*slot = poolSlot{num: p.searchNumber, ref: n}
	return n
}

func (p *Pool) boundsCheck(s Point) {
	if s.X < 0 || s.Y < 0 || s.X >= p.width || s.Y >= p.height {
		log.Panicf("grid: state (%d, %d) out of bounds of %dx%d pool", s.X, s.Y, p.width, p.height)
	}
}

// HashMapper adapts a point-keyed HashPool to the StateMapper contract. The
// pool accepts any coordinates, so the advertised dimensions are unbounded.
type HashMapper struct {
	*node.HashPool[Point]
}

// Width implements StateMapper.
func (HashMapper) Width() int { return math.MaxInt32 }

// Height implements StateMapper.
func (HashMapper) Height() int { return math.MaxInt32 }

// GenerateUnchecked implements StateMapper.
func (m HashMapper) GenerateUnchecked(p Point) node.Ref { return m.Generate(p) }

// NullMapper adapts a point-keyed NullPool to the StateMapper contract.
type NullMapper struct {
	*node.NullPool[Point]
}

// Width implements StateMapper.
func (NullMapper) Width() int { return math.MaxInt32 }

// Height implements StateMapper.
func (NullMapper) Height() int { return math.MaxInt32 }

// GenerateUnchecked implements StateMapper.
func (m NullMapper) GenerateUnchecked(p Point) node.Ref { return m.Generate(p) }
