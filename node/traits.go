package node

// Edge is the minimal contract search drivers need from an expander's edges.
type Edge interface {
	Successor() Ref
	EdgeCost() float64
}

// IdentifiedEdge is an edge with a small dense move id (< 63), as required by
// first-move search.
type IdentifiedEdge interface {
	Edge
	EdgeID() int
}

// Expander produces the outgoing edges of a node. Implementations append to
// *edges and may assume it has been cleared by the caller.
type Expander[E any] interface {
	Expand(n Ref, edges *[]E)
}

// OpenList is the open-list contract shared by the priority queue and the
// bucket queue. Relaxed either inserts the node or repositions it after its
// key decreased; Next pops a minimal node.
type OpenList interface {
	Relaxed(n Ref)
	Next() (Ref, bool)
}

// Pool maps search states to nodes. Within one search Generate returns the
// same node for the same state; Reset invalidates all nodes.
type Pool[S any] interface {
	Reset()
	Generate(state S) Ref
}

// WeightedEdge is the ordinary weighted search edge.
type WeightedEdge struct {
	Succ Ref
	Cost float64
}

// Successor implements Edge.
func (e WeightedEdge) Successor() Ref { return e.Succ }

// EdgeCost implements Edge.
func (e WeightedEdge) EdgeCost() float64 { return e.Cost }
