// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// pf-astar runs A* with the octile heuristic over the instances of a
// MovingAI scenario file and prints one "<cost> <path>" line per instance.
package main

import (
	"flag"
	"fmt"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/pathfind/astar"
	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/movingai"
	"github.com/grailbio/pathfind/node"
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: pf-astar <scenario>")
	}

	scen, err := movingai.ReadScenario(flag.Arg(0))
	if err != nil {
		log.Fatalf("reading scenario: %v", err)
	}
	m, err := movingai.ReadBitGrid(scen.MapPath)
	if err != nil {
		log.Fatalf("reading map: %v", err)
	}

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
