// pf-jps-plus-bb preprocesses a map into per-jump-point bounding boxes
// (-generate, written to <map>.bb) or runs JPS+BB over a scenario.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/pathfind/astar"
	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/movingai"
	"github.com/grailbio/pathfind/node"
	"github.com/grailbio/pathfind/oracle"
)

var generate = flag.Bool("generate", false, "preprocess the map instead of solving a scenario")

func bbPath(mapPath string) string { return mapPath + ".bb" }

func progress(done, total int, elapsed time.Duration) {
	if done&0x3F != 0 && done != total {
		return
	}
	fmt.Fprintf(os.Stderr, "\r%5.1f%% (%v)    ", float64(done)/float64(total)*100, elapsed.Round(time.Second))
	if done == total {
		fmt.Fprintln(os.Stderr)
	}
}

func main() {
	shutdown := grail.Init()
	defer shutdown()

	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: pf-jps-plus-bb [-generate] <map-or-scenario>")
	}

	if *generate {
		mapPath := flag.Arg(0)
		m, err := movingai.ReadBitGrid(mapPath)
		if err != nil {
			log.Fatalf("reading map: %v", err)
		}
		bb := oracle.ComputePartialCellBB(m, progress)

		f, err := os.Create(bbPath(mapPath))
		if err != nil {
			log.Fatalf("creating %s: %v", bbPath(mapPath), err)
		}
		w := bufio.NewWriter(f)
		if err := bb.Save(w); err != nil {
			log.Fatalf("writing %s: %v", bbPath(mapPath), err)
		}
		if err := w.Flush(); err != nil {
			log.Fatalf("writing %s: %v", bbPath(mapPath), err)
		}
		if err := f.Close(); err != nil {
			log.Fatalf("writing %s: %v", bbPath(mapPath), err)
		}
		log.Printf("wrote %s (%d jump points)", bbPath(mapPath), bb.NumJumpPoints())
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

	f, err := os.Open(bbPath(scen.MapPath))
	if err != nil {
		log.Fatalf("opening bounding boxes (run with -generate first?): %v", err)
	}
	bb, err := oracle.LoadPartialCellBB(m, bufio.NewReader(f))
	if err != nil {
		log.Fatalf("reading bounding boxes: %v", err)
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

		path, ok := astar.Search[node.WeightedEdge](
			searcher,
			oracle.NewBBExpander(bb, pool, target),
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
