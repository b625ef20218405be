// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package oracle

import (
	"math"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/jps"
	"github.com/grailbio/pathfind/node"
)

// ToppingPlus extracts optimal paths by walking the partial-cell CPD: no
// open list, just repeated oracle lookups resolved into jumps.
type ToppingPlus struct {
	m      *grid.BitGrid
	jumpDB *jps.JumpDatabase
	oracle *PartialCellCpd
	pool   *node.HashPool[grid.Point]
	state  node.Field[grid.Point]
	cost   node.Field[float64]
}

// NewToppingPlus returns an extractor over the oracle. The jump database
// must match the map's dimensions.
func NewToppingPlus(m *grid.BitGrid, jumpDB *jps.JumpDatabase, oracle *PartialCellCpd) *ToppingPlus {
	if m.Width() != jumpDB.Width() || m.Height() != jumpDB.Height() {
		log.Panicf("oracle: jump database dimensions (%dx%d) disagree with map (%dx%d)",
			jumpDB.Width(), jumpDB.Height(), m.Width(), m.Height())
	}

	b := node.NewBuilder()
	state := node.AddField(b, grid.Point{-1, -1})
	cost := node.AddField(b, math.Inf(1))
	return &ToppingPlus{
		m:      m,
		jumpDB: jumpDB,
		oracle: oracle,
		pool:   node.NewHashPool(b.Build(), state),
		state:  state,
		cost:   cost,
	}
}

// GetPath returns an optimal path from start to target and its cost. The
// path is extracted by following the CPD from each start successor until a
// node with known cost-to-target is reached, then unwinding accumulated
// octile distances. A start successor whose CPD move is not canonical for
// the direction it was entered from is rejected; if every start successor
// is rejected, an error is returned rather than a silently suboptimal path.
func (t *ToppingPlus) GetPath(start, target grid.Point) ([]grid.Point, float64, error) {
	t.pool.Reset()

	startNode := t.pool.Generate(start)
	targetNode := t.pool.Generate(target)
	node.Set(targetNode, t.cost, 0.0)

	var starts []node.WeightedEdge
	NewTopsExpander(t.m, t.jumpDB, t.oracle, grid.HashMapper{HashPool: t.pool}, target).
		Expand(startNode, &starts)

	for _, edge := range starts {
		if edge.Succ.Eq(targetNode) {
			return []grid.Point{start, target}, edge.Cost, nil
		}
	}

	var nodeStack []node.Ref
	rejected := 0

startSuccessor:
	for _, edge := range starts {
		currentNode := edge.Succ
		prevState := start
		nodeStack = nodeStack[:0]

		steps := 0
		for math.IsInf(node.Get(currentNode, t.cost), 1) {
			if steps++; steps > t.oracle.Mapper().NumIDs() {
				log.Panicf("oracle: cpd walk from (%d, %d) did not terminate", start.X, start.Y)
			}
			s := node.Get(currentNode, t.state)
			going := grid.ReachedDirection(prevState, s)
			canonical := jps.CanonicalSuccessors(t.m.Neighborhood(s.X, s.Y), going)

			dir, ok := t.oracle.Query(s, target)
			if !ok {
				log.Panicf("oracle: cpd has no move for jump point (%d, %d)", s.X, s.Y)
			}

			if !canonical.Has(dir) {
				rejected++
				continue startSuccessor
			}

			var nextState grid.Point
			if dir.IsDiagonal() {
				dist, turnDir, turnDist, ok := t.jumpDB.DiagonalJump(s.X, s.Y, dir, target)
				if !ok {
					log.Panicf("oracle: cpd move %v dead-ends at (%d, %d)", dir, s.X, s.Y)
				}
				dx, dy := dir.Offset()
				nextState = grid.Point{s.X + dx*dist, s.Y + dy*dist}
				if turnDir != grid.NoDirection {
					tdx, tdy := turnDir.Offset()
					nextState.X += tdx * turnDist
					nextState.Y += tdy * turnDist
				}
			} else {
				dist, ok := t.jumpDB.OrthoJump(s.X, s.Y, dir, target)
				if !ok {
					log.Panicf("oracle: cpd move %v dead-ends at (%d, %d)", dir, s.X, s.Y)
				}
				dx, dy := dir.Offset()
				nextState = grid.Point{s.X + dx*dist, s.Y + dy*dist}
			}

			nextNode := t.pool.Generate(nextState)
			// The parent link is reused as a forward successor link here;
			// no node ever needs both during extraction.
			currentNode.SetParent(nextNode)
			nodeStack = append(nodeStack, currentNode)
			currentNode = nextNode
			prevState = s
		}

		for len(nodeStack) > 0 {
			prevNode := nodeStack[len(nodeStack)-1]
			nodeStack = nodeStack[:len(nodeStack)-1]
			node.Set(prevNode, t.cost,
				node.Get(currentNode, t.cost)+
					grid.OctileDistance(node.Get(prevNode, t.state), node.Get(currentNode, t.state)))
			currentNode = prevNode
		}

		if newCost := node.Get(currentNode, t.cost) + edge.Cost; newCost < node.Get(startNode, t.cost) {
			node.Set(startNode, t.cost, newCost)
			startNode.SetParent(currentNode)
		}
	}

	if math.IsInf(node.Get(startNode, t.cost), 1) {
		if rejected > 0 {
			return nil, 0, errors.E("oracle: all start successors rejected by cpd canonicality check")
		}
		return nil, 0, errors.E("oracle: no path")
	}

	path := []grid.Point{start}
	for n := startNode.Parent(); !n.IsNil(); n = n.Parent() {
		path = append(path, node.Get(n, t.state))
	}
	return path, node.Get(startNode, t.cost), nil
}
