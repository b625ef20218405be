package grid

import "github.com/grailbio/base/log"

// Point is a grid coordinate. It doubles as the search state for all grid
// expanders.
type Point struct {
	X, Y int
}

// Grid is a dense row-major 2-D array.
type Grid[T any] struct {
	width, height int
	cells         []T
}

// NewGrid returns a width x height grid with every cell set to init(x, y).
func NewGrid[T any](width, height int, init func(x, y int) T) *Grid[T] {
	if width < 0 || height < 0 {
		log.Panicf("grid: dimensions must be non-negative: %dx%d", width, height)
	}
	cells := make([]T, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			cells[y*width+x] = init(x, y)
		}
	}
	return &Grid[T]{width: width, height: height, cells: cells}
}

// Width returns the grid width.
func (g *Grid[T]) Width() int { return g.width }

// Height returns the grid height.
func (g *Grid[T]) Height() int { return g.height }

// Storage returns the backing row-major cell slice.
func (g *Grid[T]) Storage() []T { return g.cells }

// At returns the cell at (x, y).
func (g *Grid[T]) At(x, y int) T {
	g.boundsCheck(x, y)
	return g.cells[y*g.width+x]
}

// Ptr returns a pointer to the cell at (x, y).
func (g *Grid[T]) Ptr(x, y int) *T {
	g.boundsCheck(x, y)
	return &g.cells[y*g.width+x]
}

// Set stores v into the cell at (x, y).
func (g *Grid[T]) Set(x, y int, v T) {
	g.boundsCheck(x, y)
	g.cells[y*g.width+x] = v
}

func (g *Grid[T]) boundsCheck(x, y int) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		log.Panicf("grid: (%d, %d) out of bounds of %dx%d grid", x, y, g.width, g.height)
	}
}
