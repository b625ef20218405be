// pf-diff-h preprocesses a map into an N-pivot differential heuristic
// (-generate, written to <map>.dh<N> for N pivots) or runs A* with the loaded heuristic
// over a scenario.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/pathfind/astar"
	"github.com/grailbio/pathfind/ess"
	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/movingai"
	"github.com/grailbio/pathfind/node"
	"github.com/grailbio/pathfind/tdh"
)

var (
	generate = flag.Bool("generate", false, "preprocess the map instead of solving a scenario")
	pivots   = flag.Int("pivots", 8, "number of pivot states per connected component")
)

func dhPath(mapPath string, pivots int) string {
	return fmt.Sprintf("%s.dh%d", mapPath, pivots)
}

func main() {
	shutdown := grail.Init()
	defer shutdown()

	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: pf-diff-h [-generate] [-pivots N] <map-or-scenario>")
	}

	if *generate {
		mapPath := flag.Arg(0)
		m, err := movingai.ReadBitGrid(mapPath)
		if err != nil {
			log.Fatalf("reading map: %v", err)
		}
		domain := ess.GridDomain{Map: m}
		mapper := ess.DFSPreorder[grid.Point](domain)
		h := tdh.Calculate[grid.Point](domain, mapper, *pivots)

		f, err := os.Create(dhPath(mapPath, *pivots))
		if err != nil {
			log.Fatalf("creating %s: %v", dhPath(mapPath, *pivots), err)
		}
		w := bufio.NewWriter(f)
		if err := h.Save(mapper, w); err != nil {
			log.Fatalf("writing %s: %v", dhPath(mapPath, *pivots), err)
		}
		if err := w.Flush(); err != nil {
			log.Fatalf("writing %s: %v", dhPath(mapPath, *pivots), err)
		}
		if err := f.Close(); err != nil {
			log.Fatalf("writing %s: %v", dhPath(mapPath, *pivots), err)
		}
		log.Printf("wrote %s (%d pivots, %d states)", dhPath(mapPath, *pivots), *pivots, mapper.States())
		return
	}

	scen, err := movingai.ReadScenario(flag.Arg(0))
	if err != nil {
		log.Fatalf("reading scenario: %v", err)
	}
	m, err := movingai.ReadBitGrid(scen.MapPath)
	if err != nil {
		log.Fatalf("reading map: %v", err)
	}
	domain := ess.GridDomain{Map: m}
	mapper := ess.DFSPreorder[grid.Point](domain)

	f, err := os.Open(dhPath(scen.MapPath, *pivots))
	if err != nil {
		log.Fatalf("opening heuristic (run with -generate first?): %v", err)
	}
	h, err := tdh.Load[grid.Point](domain, mapper, *pivots, bufio.NewReader(f))
	if err != nil {
		log.Fatalf("reading heuristic: %v", err)
	}
	f.Close()

	b := node.NewBuilder()
	state := node.AddField(b, grid.Point{X: -1, Y: -1})
	searcher := astar.NewSearcher(b)
	pqf := node.NewPriorityQueueFactory(b)
	pool := grid.NewPool(b.Build(), state, m.Width(), m.Height())

	for _, problem := range scen.Instances {
		pool.Reset()
		target := problem.Target

		path, ok := astar.Search[grid.Edge](
			searcher,
			grid.NewEightConnectedExpander(m, pool),
			pqf.NewQueue(searcher.Ordering()),
			func(n node.Ref) float64 { return h.H(node.Get(n, state), target) },
			func(n node.Ref) bool { return node.Get(n, state) == target },
			pool.Generate(problem.Start),
		)
		if !ok {
			fmt.Println("failed to find path")
			continue
		}
		points := make([]grid.Point, len(path))
		for i, n := range path {
			points[i] = node.Get(n, state)
		}
		fmt.Printf("%.2f %s\n", node.Get(path[len(path)-1], searcher.G()), movingai.FormatPath(points))
	}
}
