package cpd

import (
	"math"

	"github.com/grailbio/base/log"
	"github.com/grailbio/pathfind/node"
)

// FirstMoveSearcher reserves the fields of a first-move Dijkstra: per-node
// cost and the bitset of start moves that begin an optimal path to the node.
type FirstMoveSearcher struct {
	firstMove node.Field[uint64]
	g         node.Field[float64]
	pqf       *node.PriorityQueueFactory
}

// NewFirstMoveSearcher adds the searcher's fields to the layout under
// construction.
func NewFirstMoveSearcher(b *node.Builder) *FirstMoveSearcher {
	return &FirstMoveSearcher{
		firstMove: node.AddField(b, uint64(0)),
		g:         node.AddField(b, math.Inf(1)),
		pqf:       node.NewPriorityQueueFactory(b),
	}
}

// SearchFirstMoves runs Dijkstra from start and calls found with each
// settled node and its first-move bitset. Ties union the parents' bitsets:
// every equally-optimal first move is retained. Edge ids above 62 panic
// (bit 63 is reserved).
func SearchFirstMoves[E node.IdentifiedEdge](
	s *FirstMoveSearcher,
	start node.Ref,
	expander node.Expander[E],
	found func(n node.Ref, firstMoves uint64),
) {
	node.Set(start, s.g, 0.0)

	open := s.pqf.NewQueue(node.Ascending(s.g))
	var edges []E

	// The start expansion seeds each successor's bitset with its own edge.
	expander.Expand(start, &edges)
	for _, edge := range edges {
		n := edge.Successor()
		id := edge.EdgeID()
		if id >= 63 {
			log.Panicf("cpd: edge id %d exceeds maximum supported value 62", id)
		}
		node.SetUnchecked(n, s.g, edge.EdgeCost())
		node.SetUnchecked(n, s.firstMove, 1<<id)
		open.Relaxed(n)
	}

	for {
		n, ok := open.Next()
		if !ok {
			return
		}
		found(n, node.GetUnchecked(n, s.firstMove))
		edges = edges[:0]
		expander.Expand(n, &edges)
		nodeG := node.GetUnchecked(n, s.g)
		for _, edge := range edges {
			successor := edge.Successor()
			newG := edge.EdgeCost() + nodeG
			if newG < node.GetUnchecked(successor, s.g) {
				node.SetUnchecked(successor, s.g, newG)
				node.SetUnchecked(successor, s.firstMove, node.GetUnchecked(n, s.firstMove))
				successor.SetParent(n)
				open.Relaxed(successor)
			} else if newG == node.GetUnchecked(successor, s.g) {
				// A tie: all of the parent's first moves also reach the
				// successor optimally.
				node.SetUnchecked(successor, s.firstMove,
					node.GetUnchecked(successor, s.firstMove)|node.GetUnchecked(n, s.firstMove))
			}
		}
	}
}

// ComputeRow runs a first-move search from start and compresses the result
// into a CPD row over the mapper's id space.
func ComputeRow[S any, E node.IdentifiedEdge](
	mapper StateIDMapper[S],
	s *FirstMoveSearcher,
	expander node.Expander[E],
	start node.Ref,
	state node.Field[S],
) *Row {
	if mapper.NumIDs() >= MaxStates {
		log.Panicf("cpd: %d states exceed the %d-state id space", mapper.NumIDs(), MaxStates)
	}
	firstMoves := make([]uint64, mapper.NumIDs())
	for i := range firstMoves {
		firstMoves[i] = ^uint64(0)
	}
	SearchFirstMoves(s, start, expander, func(n node.Ref, fm uint64) {
		firstMoves[mapper.StateToID(node.Get(n, state))] = fm
	})
	return Compress(firstMoves)
}
