// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package node

import (
	"math"
	"os"
	"sync/atomic"
	"unsafe"

	"github.com/grailbio/base/log"
)

// LayoutID identifies a node layout. Every node allocated by an Allocator is
// tagged with the allocator's layout id, and every Field carries the id of the
// Builder that produced it; checked accessors compare the two.
type LayoutID uint64

// header is the fixed prefix of every node. The parent pointer refers to
// another node of the same allocator (or is nil); it is the only node-to-node
// reference, and is kept alive by the allocator's chunk list rather than by
// the GC tracing node memory.
type header struct {
	layoutID LayoutID
	parent   unsafe.Pointer
}

const (
	headerSize  = unsafe.Sizeof(header{})
	headerAlign = unsafe.Alignof(header{})

	// Arena chunks are []uint64-backed, so node offsets may assume 8-byte
	// base alignment but never more.
	maxFieldAlign = 8
)

var layoutIDCounter uint64

func newLayoutID() LayoutID {
	id := atomic.AddUint64(&layoutIDCounter, 1) - 1
	if id > math.MaxInt64 {
		// Layout safety relies on ids never being reused. Once the counter
		// crosses the halfway mark we terminate the process rather than risk
		// a wrap; this is the same strategy strong reference counts use.
		// Allocating this many layouts is only possible by discarding node
		// allocators in a tight loop for a very long time.
		log.Error.Printf("node: layout id space exhausted")
		os.Exit(2)
	}
	return LayoutID(id)
}

// Field is a handle to a typed member of a node layout. The zero Field is
// not valid; obtain one from AddField.
//
// T must be a plain value type: no Go pointers, maps, slices, channels, or
// strings. Node memory is untyped and invisible to the garbage collector.
type Field[T any] struct {
	layoutID LayoutID
	offset   uintptr
}

// LayoutID returns the id of the layout the field belongs to.
func (f Field[T]) LayoutID() LayoutID { return f.layoutID }

// Builder accumulates a node layout: a running size/alignment and a byte
// prototype holding the per-field default values.
type Builder struct {
	layoutID  LayoutID
	size      uintptr
	align     uintptr
	prototype []byte
}

// NewBuilder returns a builder for a fresh layout containing only the node
// header.
func NewBuilder() *Builder {
	b := &Builder{
		layoutID:  newLayoutID(),
		size:      headerSize,
		align:     headerAlign,
		prototype: make([]byte, headerSize),
	}
	hdr := header{layoutID: b.layoutID}
	copy(b.prototype, unsafe.Slice((*byte)(unsafe.Pointer(&hdr)), headerSize))
	return b
}

// AddField extends the layout of b with a member of type T, records def as
// the member's default value, and returns a handle to it.
func AddField[T any](b *Builder, def T) Field[T] {
	size := unsafe.Sizeof(def)
	align := unsafe.Alignof(def)
	if align > maxFieldAlign {
		log.Panicf("node: field alignment %d exceeds arena alignment", align)
	}
	offset := (b.size + align - 1) &^ (align - 1)
	b.size = offset + size
	if align > b.align {
		b.align = align
	}
	for uintptr(len(b.prototype)) < b.size {
		b.prototype = append(b.prototype, 0)
	}
	// Byte-wise copy; the prototype buffer makes no alignment promises.
	copy(b.prototype[offset:], unsafe.Slice((*byte)(unsafe.Pointer(&def)), size))
	return Field[T]{layoutID: b.layoutID, offset: offset}
}

// Build finalizes the layout and returns an allocator for it.
func (b *Builder) Build() *Allocator {
	return b.BuildWithCapacity(0)
}

// BuildWithCapacity is like Build, but pre-reserves arena space for capacity
// nodes.
func (b *Builder) BuildWithCapacity(capacity int) *Allocator {
	size := (b.size + b.align - 1) &^ (b.align - 1)
	// Nodes are placed back to back, so the stride keeps 8-byte alignment.
	size = (size + maxFieldAlign - 1) &^ (maxFieldAlign - 1)
	prototype := make([]byte, size)
	copy(prototype, b.prototype)
	a := &Allocator{
		layoutID:  b.layoutID,
		nodeSize:  size,
		prototype: prototype,
	}
	if capacity > 0 {
		a.chunks = append(a.chunks, make([]uint64, (uintptr(capacity)*size+7)/8))
	}
	return a
}

// Allocator owns an arena of nodes sharing one layout. It is not safe for
// concurrent use.
type Allocator struct {
	layoutID  LayoutID
	nodeSize  uintptr
	prototype []byte

	chunks   [][]uint64
	chunkIdx int
	offset   uintptr // byte offset into chunks[chunkIdx]
}

// LayoutID returns the id of the layout this allocator produces.
func (a *Allocator) LayoutID() LayoutID { return a.layoutID }

// Reset invalidates every node handed out by the allocator. The underlying
// chunks are retained for reuse; outstanding Refs must not be used again.
func (a *Allocator) Reset() {
	a.chunkIdx = 0
	a.offset = 0
}

const minChunkNodes = 256

// NewNode allocates a node initialized with the layout's default bytes.
func (a *Allocator) NewNode() Ref {
	for {
		if a.chunkIdx < len(a.chunks) {
			chunk := a.chunks[a.chunkIdx]
			if a.offset+a.nodeSize <= uintptr(len(chunk))*8 {
				p := unsafe.Add(unsafe.Pointer(&chunk[0]), a.offset)
				a.offset += a.nodeSize
				copy(unsafe.Slice((*byte)(p), a.nodeSize), a.prototype)
				return Ref{p}
			}
			a.chunkIdx++
			a.offset = 0
			continue
		}
		words := uintptr(minChunkNodes) * a.nodeSize / 8
		if len(a.chunks) > 0 {
			if prev := uintptr(len(a.chunks[len(a.chunks)-1])); prev*2 > words {
				words = prev * 2
			}
		}
		a.chunks = append(a.chunks, make([]uint64, words))
	}
}

// Ref is a reference to a node. The zero Ref is nil.
type Ref struct {
	p unsafe.Pointer
}

// IsNil reports whether the reference is nil.
func (n Ref) IsNil() bool { return n.p == nil }

// Eq reports whether two references point at the same node.
func (n Ref) Eq(o Ref) bool { return n.p == o.p }

// LayoutID returns the layout id the node was allocated with.
func (n Ref) LayoutID() LayoutID {
	return (*header)(n.p).layoutID
}

// Parent returns the node's parent link, or a nil Ref.
func (n Ref) Parent() Ref {
	return Ref{(*header)(n.p).parent}
}

// SetParent sets the node's parent link. Pass a nil Ref to clear it.
func (n Ref) SetParent(parent Ref) {
	(*header)(n.p).parent = parent.p
}

func (n Ref) checkLayout(id LayoutID) {
	if n.LayoutID() != id {
		log.Panicf("node: mismatched layout: node has %d, field has %d", n.LayoutID(), id)
	}
}

// Get reads the field f of node n. It panics if f belongs to a different
// layout than n.
func Get[T any](n Ref, f Field[T]) T {
	n.checkLayout(f.layoutID)
	return GetUnchecked(n, f)
}

// Set writes the field f of node n. It panics if f belongs to a different
// layout than n.
func Set[T any](n Ref, f Field[T], value T) {
	n.checkLayout(f.layoutID)
	SetUnchecked(n, f, value)
}

// GetUnchecked is Get without the layout check. The caller must guarantee
// that n was allocated with the layout f belongs to.
func GetUnchecked[T any](n Ref, f Field[T]) T {
	return *(*T)(unsafe.Add(n.p, f.offset))
}

// SetUnchecked is Set without the layout check. The caller must guarantee
// that n was allocated with the layout f belongs to.
func SetUnchecked[T any](n Ref, f Field[T], value T) {
	*(*T)(unsafe.Add(n.p, f.offset)) = value
}
