// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package node implements the heterogeneous search-node substrate: a node
// layout is declared field by field at construction time, nodes are
// arena-allocated byte blocks tagged with their layout id, and fields are
// read and written through offset-typed handles.
//
// The point of the design is composability. Independent search subsystems
// (an open list, a searcher, a heuristic) each reserve their own per-node
// fields on a shared Builder without knowing about one another:
//
//	b := node.NewBuilder()
//	state := node.AddField(b, grid.Point{X: -1, Y: -1})
//	g := node.AddField(b, math.Inf(1))
//	pq := node.NewPriorityQueueFactory(b)
//	pool := node.NewHashPool(b.Build(), state)
//
// Node memory is untyped and not traced by the garbage collector, so field
// types must not contain Go pointers. The parent link in the node header is
// the single exception; it may only refer to nodes of the same allocator,
// which keeps the target alive through the allocator's chunk list.
package node
