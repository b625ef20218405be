// pf-jps runs online Jump Point Search over the instances of a MovingAI
// scenario file and prints one "<cost> <path>" line per instance. The path
// lists jump points, not every cell.
package main

import (
	"flag"
	"fmt"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/pathfind/astar"
	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/jps"
	"github.com/grailbio/pathfind/movingai"
	"github.com/grailbio/pathfind/node"
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: pf-jps <scenario>")
	}

	scen, err := movingai.ReadScenario(flag.Arg(0))
	if err != nil {
		log.Fatalf("reading scenario: %v", err)
	}
	m, err := movingai.ReadBitGrid(scen.MapPath)
	if err != nil {
		log.Fatalf("reading map: %v", err)
	}
	jpsGrid := jps.NewGrid(m)

	b := node.NewBuilder()
	state := node.AddField(b, grid.Point{X: -1, Y: -1})
	searcher := astar.NewSearcher(b)
	pqf := node.NewPriorityQueueFactory(b)
	pool := grid.NewPool(b.Build(), state, m.Width(), m.Height())

	for _, problem := range scen.Instances {
		pool.Reset()
		target := problem.Target

		path, ok := astar.Search[node.WeightedEdge](
			searcher,
			jps.NewExpander(jpsGrid, pool, target),
			pqf.NewQueue(searcher.Ordering()),
			func(n node.Ref) float64 { return grid.OctileDistance(node.Get(n, state), target) },
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
