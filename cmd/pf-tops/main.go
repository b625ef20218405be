// pf-tops runs A* with the CPD-pruned Topping+ expander over the instances
// of a MovingAI scenario file. The oracle must have been generated with
// pf-topping-plus -generate (it is read from <map>.top+).
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/pathfind/astar"
	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/movingai"
	"github.com/grailbio/pathfind/node"
	"github.com/grailbio/pathfind/oracle"
)

const cpdMagic = 0xA53BE83F

func main() {
	shutdown := grail.Init()
	defer shutdown()

	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: pf-tops <scenario>")
	}

	scen, err := movingai.ReadScenario(flag.Arg(0))
	if err != nil {
		log.Fatalf("reading scenario: %v", err)
	}
	m, err := movingai.ReadBitGrid(scen.MapPath)
	if err != nil {
		log.Fatalf("reading map: %v", err)
	}

	f, err := os.Open(scen.MapPath + ".top+")
	if err != nil {
		log.Fatalf("opening oracle (run pf-topping-plus -generate first?): %v", err)
	}
	r := bufio.NewReader(f)
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		log.Fatalf("reading oracle: %v", err)
	}
	if binary.LittleEndian.Uint32(magic[:]) != cpdMagic {
		log.Fatalf("%s.top+: not a partial-cell cpd file", scen.MapPath)
	}
	o, err := oracle.LoadPartialCellCpd(m, r)
	if err != nil {
		log.Fatalf("reading oracle: %v", err)
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
			oracle.NewTopsExpander(m, o.JumpDB(), o, pool, target),
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
