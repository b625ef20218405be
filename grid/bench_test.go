package grid

import (
	"math"
	"math/rand"
	"testing"

	"github.com/grailbio/pathfind/node"
)

func BenchmarkRowRight(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	g := randomBitGrid(rng, 512, 512, 0.8)
	b.ResetTimer()
	var sink uint64
	for i := 0; i < b.N; i++ {
		sink ^= g.RowRight(i&255, (i>>8)&255)
	}
	_ = sink
}

func BenchmarkNeighborhood(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	g := randomBitGrid(rng, 512, 512, 0.8)
	b.ResetTimer()
	var sink DirSet
	for i := 0; i < b.N; i++ {
		sink |= g.Neighborhood(i&255, (i>>8)&255)
	}
	_ = sink
}

func BenchmarkBucketQueue(b *testing.B) {
	bld := node.NewBuilder()
	g := node.AddField(bld, math.Inf(1))
	factory := NewBucketQueueFactory(bld)
	alloc := bld.Build()
	rng := rand.New(rand.NewSource(1))

	b.ResetTimer()
	for i := 0; i < b.N; i += 1024 {
		alloc.Reset()
		q := factory.NewQueue(g, 0.999)
		for j := 0; j < 512; j++ {
			n := alloc.NewNode()
			node.SetUnchecked(n, g, rng.Float64()*64)
			q.Relaxed(n)
		}
		for {
			if _, ok := q.Next(); !ok {
				break
			}
		}
	}
}
