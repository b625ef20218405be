package jps_test

import (
	"math/rand"
	"testing"

	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/jps"
)

func benchmarkInstances(m *grid.BitGrid, seed int64, count int) [][2]grid.Point {
	rng := rand.New(rand.NewSource(seed))
	var out [][2]grid.Point
	for len(out) < count {
		start := grid.Point{rng.Intn(m.Width()), rng.Intn(m.Height())}
		target := grid.Point{rng.Intn(m.Width()), rng.Intn(m.Height())}
		if !m.Get(start.X, start.Y) || !m.Get(target.X, target.Y) {
			continue
		}
		out = append(out, [2]grid.Point{start, target})
	}
	return out
}

func BenchmarkDijkstra(b *testing.B) {
	m := randomMap(1, 128, 128, 0.8)
	instances := benchmarkInstances(m, 2, 16)
	s := newGridSearch(128, 128)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		inst := instances[i%len(instances)]
		s.dijkstra(m, inst[0], inst[1])
	}
}

func BenchmarkJps(b *testing.B) {
	m := randomMap(1, 128, 128, 0.8)
	jpsGrid := jps.NewGrid(m)
	instances := benchmarkInstances(m, 2, 16)
	s := newGridSearch(128, 128)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		inst := instances[i%len(instances)]
		s.jps(jpsGrid, inst[0], inst[1])
	}
}

func BenchmarkJpsPlus(b *testing.B) {
	m := randomMap(1, 128, 128, 0.8)
	db := jps.NewJumpDatabase(m)
	instances := benchmarkInstances(m, 2, 16)
	s := newGridSearch(128, 128)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		inst := instances[i%len(instances)]
		s.jpsPlus(db, inst[0], inst[1])
	}
}

func BenchmarkJumpDatabaseBuild(b *testing.B) {
	m := randomMap(1, 256, 256, 0.8)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		jps.NewJumpDatabase(m)
	}
}
