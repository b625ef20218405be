// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package astar provides a reusable best-first search driver over the node
// substrate. It owns the g/h/f fields and the open+closed loop; expanders,
// open lists, and heuristics plug in from outside.
package astar

import (
	"math"

	"github.com/grailbio/pathfind/node"
)

// Searcher reserves the per-node search fields on a layout under
// construction.
type Searcher struct {
	g node.Field[float64]
	h node.Field[float64]
	f node.Field[float64]
}

// NewSearcher adds the g, h, and f fields to the layout.
func NewSearcher(b *node.Builder) *Searcher {
	return &Searcher{
		g: node.AddField(b, math.Inf(1)),
		h: node.AddField(b, math.NaN()),
		f: node.AddField(b, math.Inf(1)),
	}
}

// G returns the g field, holding the cost of the best known path to a node.
func (s *Searcher) G() node.Field[float64] { return s.g }

// Ordering returns the open-list comparator: f, ties broken by h.
func (s *Searcher) Ordering() node.Comparator {
	return node.Lexicographic(node.Ascending(s.f), node.Ascending(s.h))
}

// Search runs best-first search from start and returns the node path to the
// first goal popped, or false if the open list empties. The heuristic is
// evaluated lazily, once per reached node.
func Search[E node.Edge](
	s *Searcher,
	expander node.Expander[E],
	openList node.OpenList,
	heuristic func(node.Ref) float64,
	goal func(node.Ref) bool,
	start node.Ref,
) ([]node.Ref, bool) {
	var edges []E

	node.Set(start, s.g, 0.0)
	node.Set(start, s.h, heuristic(start))
	node.Set(start, s.f, node.Get(start, s.h))
	openList.Relaxed(start)

	for {
		n, ok := openList.Next()
		if !ok {
			return nil, false
		}
		if goal(n) {
			var path []node.Ref
			for ; !n.IsNil(); n = n.Parent() {
				path = append(path, n)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path, true
		}

		edges = edges[:0]
		expander.Expand(n, &edges)

		nodeG := node.GetUnchecked(n, s.g)
		for _, edge := range edges {
			successor := edge.Successor()
			newG := nodeG + edge.EdgeCost()
			if newG < node.GetUnchecked(successor, s.g) {
				if math.IsNaN(node.GetUnchecked(successor, s.h)) {
					node.SetUnchecked(successor, s.h, heuristic(successor))
				}
				node.SetUnchecked(successor, s.g, newG)
				node.SetUnchecked(successor, s.f, newG+node.GetUnchecked(successor, s.h))
				successor.SetParent(n)
				openList.Relaxed(successor)
			}
		}
	}
}
