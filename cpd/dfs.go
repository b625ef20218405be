package cpd

import "github.com/grailbio/pathfind/node"

// DFSTraversal walks the state space depth-first from start. found is called
// once per discovered node and reports whether the node is new; edges of
// already-seen nodes are not expanded.
func DFSTraversal[E node.Edge](
	start node.Ref,
	expander node.Expander[E],
	found func(n node.Ref) bool,
) {
	found(start)
	var rootEdges []E
	expander.Expand(start, &rootEdges)
	stack := [][]E{rootEdges}

	for len(stack) > 0 {
		edges := &stack[len(stack)-1]
		if len(*edges) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		edge := (*edges)[len(*edges)-1]
		*edges = (*edges)[:len(*edges)-1]
		n := edge.Successor()
		if found(n) {
			var newEdges []E
			expander.Expand(n, &newEdges)
			stack = append(stack, newEdges)
		}
	}
}
