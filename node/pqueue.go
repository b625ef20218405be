// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package node

import (
	"cmp"
	"math"

	"github.com/grailbio/base/log"
)

// Comparator orders nodes by their field contents.
//
// Le must only be called with nodes whose layout makes CompatibleLayout
// return true.
type Comparator interface {
	Le(a, b Ref) bool
	CompatibleLayout(id LayoutID) bool
}

type fieldCmp[T cmp.Ordered] struct {
	f Field[T]
}

func (c fieldCmp[T]) Le(a, b Ref) bool {
	return GetUnchecked(a, c.f) <= GetUnchecked(b, c.f)
}

func (c fieldCmp[T]) CompatibleLayout(id LayoutID) bool {
	return c.f.layoutID == id
}

type reverseCmp struct {
	inner Comparator
}

func (c reverseCmp) Le(a, b Ref) bool                  { return c.inner.Le(b, a) }
func (c reverseCmp) CompatibleLayout(id LayoutID) bool { return c.inner.CompatibleLayout(id) }

type lexCmp []Comparator

func (c lexCmp) Le(a, b Ref) bool {
	for i, inner := range c {
		if i == len(c)-1 {
			return inner.Le(a, b)
		}
		aLeB := inner.Le(a, b)
		bLeA := inner.Le(b, a)
		if aLeB && bLeA {
			continue
		}
		return aLeB
	}
	return true
}

func (c lexCmp) CompatibleLayout(id LayoutID) bool {
	for _, inner := range c {
		if !inner.CompatibleLayout(id) {
			return false
		}
	}
	return true
}

// Ascending orders nodes by increasing value of f.
func Ascending[T cmp.Ordered](f Field[T]) Comparator { return fieldCmp[T]{f} }

// Descending orders nodes by decreasing value of f.
func Descending[T cmp.Ordered](f Field[T]) Comparator { return reverseCmp{fieldCmp[T]{f}} }

// Reverse inverts the order of c.
func Reverse(c Comparator) Comparator { return reverseCmp{c} }

// Lexicographic combines comparators into a tuple order: later comparators
// break ties of the earlier ones.
func Lexicographic(cs ...Comparator) Comparator { return lexCmp(cs) }

// PriorityQueueFactory reserves the heap-index field used by all priority
// queues over one layout.
type PriorityQueueFactory struct {
	index Field[int]
}

// NewPriorityQueueFactory adds the heap-index field to the layout under
// construction.
func NewPriorityQueueFactory(b *Builder) *PriorityQueueFactory {
	return &PriorityQueueFactory{index: AddField(b, math.MaxInt)}
}

// NewQueue returns an empty queue ordered by cmp. The comparator's layout
// must match the factory's.
func (f *PriorityQueueFactory) NewQueue(cmp Comparator) *PriorityQueue {
	if !cmp.CompatibleLayout(f.index.layoutID) {
		log.Panicf("node: comparator layout incompatible with priority queue")
	}
	return &PriorityQueue{cmp: cmp, index: f.index}
}

// PriorityQueue is a binary min-heap of nodes with O(log n) decrease-key.
// Each node stores its own heap index in the factory's index field; Relaxed
// detects membership by heap[index] == node.
type PriorityQueue struct {
	cmp   Comparator
	index Field[int]
	heap  []Ref
}

// Relaxed implements OpenList.
func (q *PriorityQueue) Relaxed(n Ref) {
	index := GetUnchecked(n, q.index)
	if index >= len(q.heap) || !q.heap[index].Eq(n) {
		q.heap = append(q.heap, n)
		q.siftUp(n, len(q.heap)-1)
	} else {
		q.siftUp(n, index)
	}
}

// Next implements OpenList.
func (q *PriorityQueue) Next() (Ref, bool) {
	if len(q.heap) == 0 {
		return Ref{}, false
	}
	ret := q.heap[0]
	last := q.heap[len(q.heap)-1]
	q.heap = q.heap[:len(q.heap)-1]
	if len(q.heap) > 0 {
		q.heap[0] = last
		q.siftDown(last, 0)
	}
	return ret, true
}

// Len returns the number of queued nodes.
func (q *PriorityQueue) Len() int { return len(q.heap) }

func (q *PriorityQueue) siftUp(n Ref, index int) {
	for index > 0 {
		parentIndex := (index - 1) / 2
		parent := q.heap[parentIndex]
		if q.cmp.Le(parent, n) {
			break
		}
		q.heap[index] = parent
		SetUnchecked(parent, q.index, index)
		index = parentIndex
	}
	q.heap[index] = n
	SetUnchecked(n, q.index, index)
}

func (q *PriorityQueue) siftDown(n Ref, index int) {
	for {
		childIndex := index*2 + 1
		if childIndex >= len(q.heap) {
			break
		}
		child := q.heap[childIndex]
		if childIndex+1 < len(q.heap) {
			if child2 := q.heap[childIndex+1]; !q.cmp.Le(child, child2) {
				childIndex++
				child = child2
			}
		}
		if q.cmp.Le(n, child) {
			break
		}
		q.heap[index] = child
		SetUnchecked(child, q.index, index)
		index = childIndex
	}
	q.heap[index] = n
	SetUnchecked(n, q.index, index)
}
