// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package grid

import (
	"encoding/binary"

	"github.com/grailbio/base/log"
)

// BitGrid is a 2-D traversability map stored one bit per cell; set bits are
// traversable. The map is padded with one row above and below and one column
// left and right: writes to the padding panic, reads of it return
// non-traversable. Eight extra bytes at each end of the bit array make
// unconditional 64-bit row reads valid everywhere in the padded range.
type BitGrid struct {
	width, height    int
	paddedWidthBytes int
	bits             []byte
}

const maxGridDim = 2_000_000_000

// NewBitGrid returns an all-blocked grid of the given dimensions.
func NewBitGrid(width, height int) *BitGrid {
	if width < 0 || height < 0 {
		log.Panicf("grid: dimensions must be non-negative: %dx%d", width, height)
	}
	if width >= maxGridDim || height >= maxGridDim {
		log.Panicf("grid: dimensions must be < %d: %dx%d", maxGridDim, width, height)
	}
	// Pad each row to a whole number of bytes with at least one padding
	// column between rows; one extra bit covers the bottom-right corner.
	paddedWidthBytes := width/8 + 1
	nbits := paddedWidthBytes * 8 * (height + 2)
	nbytes := 8 + (nbits+8)/8 + 8
	return &BitGrid{
		width:            width,
		height:           height,
		paddedWidthBytes: paddedWidthBytes,
		bits:             make([]byte, nbytes),
	}
}

// Width returns the unpadded width.
func (g *BitGrid) Width() int { return g.width }

// Height returns the unpadded height.
func (g *BitGrid) Height() int { return g.height }

func (g *BitGrid) index(x, y int) (byteIdx, bit int) {
	paddedX := x + 1
	paddedY := y + 1
	return paddedX/8 + paddedY*g.paddedWidthBytes + 8, paddedX % 8
}

// Get returns the traversability of (x, y). The coordinates may lie in the
// one-cell padded halo.
func (g *BitGrid) Get(x, y int) bool {
	g.paddedBoundsCheck(x, y)
	return g.GetUnchecked(x, y)
}

// GetUnchecked is Get without the bounds check. The coordinates must be
// padded in-bounds: x in [-1, width], y in [-1, height].
func (g *BitGrid) GetUnchecked(x, y int) bool {
	byteIdx, bit := g.index(x, y)
	return g.bits[byteIdx]&(1<<bit) != 0
}

// Set stores the traversability of (x, y). The coordinates must be strictly
// inside the unpadded grid.
func (g *BitGrid) Set(x, y int, traversable bool) {
	g.unpaddedBoundsCheck(x, y)
	byteIdx, bit := g.index(x, y)
	g.bits[byteIdx] &^= 1 << bit
	if traversable {
		g.bits[byteIdx] |= 1 << bit
	}
}

// Neighborhood returns the set of directions whose adjacent cell is
// traversable. (x, y) must be unpadded in-bounds.
func (g *BitGrid) Neighborhood(x, y int) DirSet {
	g.unpaddedBoundsCheck(x, y)
	var nb DirSet
	if g.GetUnchecked(x, y-1) {
		nb |= North.Bit()
	}
	if g.GetUnchecked(x-1, y) {
		nb |= West.Bit()
	}
	if g.GetUnchecked(x, y+1) {
		nb |= South.Bit()
	}
	if g.GetUnchecked(x+1, y) {
		nb |= East.Bit()
	}
	if g.GetUnchecked(x-1, y-1) {
		nb |= NorthWest.Bit()
	}
	if g.GetUnchecked(x-1, y+1) {
		nb |= SouthWest.Bit()
	}
	if g.GetUnchecked(x+1, y-1) {
		nb |= NorthEast.Bit()
	}
	if g.GetUnchecked(x+1, y+1) {
		nb |= SouthEast.Bit()
	}
	return nb
}

// RowRight returns the traversability of a run of cells starting at (x, y)
// and extending right, with the requested cell in the least significant bit.
// At least 57 cells of information are returned; higher bits are zero or, for
// cells outside the padded grid, unspecified. The coordinates must be padded
// in-bounds.
func (g *BitGrid) RowRight(x, y int) uint64 {
	byteIdx, bit := g.index(x, y)
	return binary.LittleEndian.Uint64(g.bits[byteIdx:]) >> bit
}

// RowLeft is the leftward mirror of RowRight: the requested cell lands in the
// most significant bit and cells to its left fill the lower-significance
// bits below it.
func (g *BitGrid) RowLeft(x, y int) uint64 {
	byteIdx, bit := g.index(x, y)
	return binary.LittleEndian.Uint64(g.bits[byteIdx-7:]) << (7 - bit)
}

func (g *BitGrid) paddedBoundsCheck(x, y int) {
	if x < -1 || y < -1 || x > g.width || y > g.height {
		log.Panicf("grid: (%d, %d) outside padded bounds of %dx%d map", x, y, g.width, g.height)
	}
}

func (g *BitGrid) unpaddedBoundsCheck(x, y int) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		log.Panicf("grid: (%d, %d) out of bounds of %dx%d map", x, y, g.width, g.height)
	}
}
