// Package tdh implements the differential (landmark) heuristic: distances
// from a handful of pivot states, chosen by farthest-point sampling per
// connected component, turned into an admissible and consistent lower bound.
package tdh

import (
	"encoding/binary"
	"io"
	"math"
	"math/rand"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/pathfind/ess"
	"github.com/grailbio/pathfind/node"
	"github.com/grailbio/pathfind/parallel"
)

// DifferentialHeuristic stores, for every state, its distance to each of n
// pivots.
type DifferentialHeuristic[S comparable] struct {
	n    int
	aux  func(S) int
	data []float64 // AuxSize * n; +Inf where unreachable
}

const pivotSeed = 0x633d5c07

// Calculate builds an n-pivot heuristic for the domain. Components are
// processed in parallel; within a component, pivot 0 is the state farthest
// from a seeded random probe and each later pivot maximizes the minimum
// distance to the pivots before it.
func Calculate[S comparable](domain ess.Domain[S], mapper *ess.Mapper[S], n int) *DifferentialHeuristic[S] {
	h := &DifferentialHeuristic[S]{
		n:    n,
		aux:  domain.AuxIndex,
		data: make([]float64, domain.AuxSize()*n),
	}
	for i := range h.data {
		h.data[i] = math.Inf(1)
	}

	components := make([]int, mapper.Components())
	for i := range components {
		components[i] = i
	}

	// Components own disjoint aux index ranges, so workers never write the
	// same slot.
	_ = parallel.For(components, func() *searcher[S] { return newSearcher(domain) },
		func(ctx *searcher[S], component int) error {
			rng := rand.New(rand.NewSource(pivotSeed ^ int64(component)<<16))
			start, end := mapper.ComponentIDRange(component)
			for i := 0; i < n; i++ {
				var pivot S
				if i == 0 {
					// Probe from a random state; the farthest state found
					// becomes the first pivot.
					pivot = mapper.ToState(start + rng.Intn(end-start))
					farthest := pivot
					dist := 0.0
					ctx.search(pivot, func(s S, g float64) {
						if g > dist {
							dist = g
							farthest = s
						}
					})
					pivot = farthest
				} else {
					dist := -1.0
					for id := start; id < end; id++ {
						s := mapper.ToState(id)
						d := math.Inf(1)
						for j := 0; j < i; j++ {
							d = math.Min(d, h.data[h.aux(s)*n+j])
						}
						if d > dist {
							dist = d
							pivot = s
						}
					}
				}

				ctx.search(pivot, func(s S, g float64) {
					h.data[h.aux(s)*n+i] = g
				})
			}
			return nil
		})

	return h
}

// NumPivots returns the number of pivots per component.
func (h *DifferentialHeuristic[S]) NumPivots() int { return h.n }

// H returns the heuristic estimate between two states: the largest
// per-pivot distance difference.
func (h *DifferentialHeuristic[S]) H(s, goal S) float64 {
	best := 0.0
	sd := h.data[h.aux(s)*h.n:][:h.n]
	gd := h.data[h.aux(goal)*h.n:][:h.n]
	for i := 0; i < h.n; i++ {
		if math.IsInf(sd[i], 1) || math.IsInf(gd[i], 1) {
			continue
		}
		if d := math.Abs(sd[i] - gd[i]); d > best {
			best = d
		}
	}
	return best
}

// Save writes a header of u32 state and pivot counts, then the pivot
// distances in mapper id order, little-endian f64.
func (h *DifferentialHeuristic[S]) Save(mapper *ess.Mapper[S], w io.Writer) error {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[:4], uint32(mapper.States()))
	binary.LittleEndian.PutUint32(buf[4:], uint32(h.n))
	if _, err := w.Write(buf[:]); err != nil {
		return errors.E(err, "tdh: writing header")
	}
	for id := 0; id < mapper.States(); id++ {
		base := h.aux(mapper.ToState(id)) * h.n
		for i := 0; i < h.n; i++ {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(h.data[base+i]))
			if _, err := w.Write(buf[:]); err != nil {
				return errors.E(err, "tdh: writing pivot distances")
			}
		}
	}
	return nil
}

// Load reads a heuristic written by Save. The header's state and pivot
// counts must match the mapper and n; a mismatch (typically a stale file
// generated with different settings) is an error rather than a silently
// misframed read.
func Load[S comparable](domain ess.Domain[S], mapper *ess.Mapper[S], n int, r io.Reader) (*DifferentialHeuristic[S], error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, errors.E(err, "tdh: reading header")
	}
	states := int(binary.LittleEndian.Uint32(buf[:4]))
	pivots := int(binary.LittleEndian.Uint32(buf[4:]))
	if states != mapper.States() {
		return nil, errors.E("tdh: state count mismatch", states, mapper.States())
	}
	if pivots != n {
		return nil, errors.E("tdh: pivot count mismatch", pivots, n)
	}

	h := &DifferentialHeuristic[S]{
		n:    n,
		aux:  domain.AuxIndex,
		data: make([]float64, domain.AuxSize()*n),
	}
	for i := range h.data {
		h.data[i] = math.Inf(1)
	}
	for id := 0; id < mapper.States(); id++ {
		base := h.aux(mapper.ToState(id)) * n
		for i := 0; i < n; i++ {
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return nil, errors.E(err, "tdh: reading pivot distances")
			}
			h.data[base+i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[:]))
		}
	}
	return h, nil
}

// searcher is a per-worker Dijkstra context over the domain.
type searcher[S comparable] struct {
	domain ess.Domain[S]
	pool   node.Pool[S]
	state  node.Field[S]
	g      node.Field[float64]
	pqf    *node.PriorityQueueFactory
}

func newSearcher[S comparable](domain ess.Domain[S]) *searcher[S] {
	b := node.NewBuilder()
	state := domain.AddStateField(b)
	g := node.AddField(b, math.Inf(1))
	pqf := node.NewPriorityQueueFactory(b)
	return &searcher[S]{
		domain: domain,
		pool:   domain.NewPool(b.Build(), state),
		state:  state,
		g:      g,
		pqf:    pqf,
	}
}

// search runs Dijkstra from start, reporting each settled state and its
// distance.
func (s *searcher[S]) search(start S, f func(S, float64)) {
	s.pool.Reset()

	expander := s.domain.NewExpander(s.pool, s.state)
	open := s.pqf.NewQueue(node.Ascending(s.g))
	var edges []node.WeightedEdge

	startNode := s.pool.Generate(start)
	node.Set(startNode, s.g, 0.0)
	open.Relaxed(startNode)

	for {
		n, ok := open.Next()
		if !ok {
			return
		}
		nodeG := node.GetUnchecked(n, s.g)
		f(node.GetUnchecked(n, s.state), nodeG)

		edges = edges[:0]
		expander.Expand(n, &edges)
		for _, edge := range edges {
			successor := edge.Succ
			newG := nodeG + edge.Cost
			if newG < node.GetUnchecked(successor, s.g) {
				node.SetUnchecked(successor, s.g, newG)
				successor.SetParent(n)
				open.Relaxed(successor)
			}
		}
	}
}
