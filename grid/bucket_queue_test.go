package grid

import (
	"math"
	"math/rand"
	"testing"

	"github.com/grailbio/pathfind/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketQueueMonotone(t *testing.T) {
	b := node.NewBuilder()
	g := node.AddField(b, math.Inf(1))
	factory := NewBucketQueueFactory(b)
	alloc := b.Build()

	const width = 0.999
	q := factory.NewQueue(g, width)

	rng := rand.New(rand.NewSource(3))
	n := 0
	for i := 0; i < 500; i++ {
		v := rng.Float64() * 40
		ref := alloc.NewNode()
		node.Set(ref, g, v)
		q.Relaxed(ref)
		n++
	}

	prev := -1
	for {
		ref, ok := q.Next()
		if !ok {
			break
		}
		n--
		bucket := int(node.Get(ref, g) / width)
		require.GreaterOrEqual(t, bucket, prev)
		prev = bucket
	}
	assert.Equal(t, 0, n)
}

func TestBucketQueueRelaxMovesNode(t *testing.T) {
	b := node.NewBuilder()
	g := node.AddField(b, math.Inf(1))
	factory := NewBucketQueueFactory(b)
	alloc := b.Build()

	q := factory.NewQueue(g, 0.999)

	far := alloc.NewNode()
	node.Set(far, g, 30.0)
	q.Relaxed(far)

	near := alloc.NewNode()
	node.Set(near, g, 10.0)
	q.Relaxed(near)

	// Improve far below near; it must come out first and exactly once.
	node.Set(far, g, 2.0)
	q.Relaxed(far)

	ref, ok := q.Next()
	require.True(t, ok)
	assert.True(t, ref.Eq(far))
	ref, ok = q.Next()
	require.True(t, ok)
	assert.True(t, ref.Eq(near))
	_, ok = q.Next()
	assert.False(t, ok)
}

func TestBucketQueueSameBucketNoop(t *testing.T) {
	b := node.NewBuilder()
	g := node.AddField(b, math.Inf(1))
	factory := NewBucketQueueFactory(b)
	alloc := b.Build()

	q := factory.NewQueue(g, 0.999)
	ref := alloc.NewNode()
	node.Set(ref, g, 5.0)
	q.Relaxed(ref)
	// A relaxation within the same bucket must not duplicate the node.
	node.Set(ref, g, 5.2)
	q.Relaxed(ref)

	_, ok := q.Next()
	require.True(t, ok)
	_, ok = q.Next()
	assert.False(t, ok)
}

func TestBucketQueueInterleaved(t *testing.T) {
	b := node.NewBuilder()
	g := node.AddField(b, math.Inf(1))
	factory := NewBucketQueueFactory(b)
	alloc := b.Build()

	q := factory.NewQueue(g, 0.999)
	rng := rand.New(rand.NewSource(11))

	// Dijkstra-like usage: pop a node, push successors with larger g.
	seed := alloc.NewNode()
	node.Set(seed, g, 0.0)
	q.Relaxed(seed)

	popped := 0
	prev := 0
	for {
		ref, ok := q.Next()
		if !ok {
			break
		}
		popped++
		bucket := int(node.Get(ref, g) / 0.999)
		require.GreaterOrEqual(t, bucket, prev)
		prev = bucket
		if popped < 300 {
			for i := 0; i < 2; i++ {
				succ := alloc.NewNode()
				node.Set(succ, g, node.Get(ref, g)+1+rng.Float64())
				q.Relaxed(succ)
			}
		}
	}
	assert.Greater(t, popped, 300)
}

func TestRingCap(t *testing.T) {
	assert.Equal(t, 2, ringCap(2))
	assert.Equal(t, 4, ringCap(3))
	assert.Equal(t, 16, ringCap(9))
	assert.Equal(t, 16, ringCap(16))
	assert.Equal(t, 32, ringCap(17))
	assert.Equal(t, 1024, ringCap(1000))
}

func TestPoolGenerationReset(t *testing.T) {
	b := node.NewBuilder()
	state := node.AddField(b, Point{-1, -1})
	g := node.AddField(b, math.Inf(1))
	pool := NewPool(b.Build(), state, 8, 8)

	n1 := pool.Generate(Point{2, 3})
	n2 := pool.Generate(Point{2, 3})
	assert.True(t, n1.Eq(n2))
	assert.Equal(t, Point{2, 3}, node.Get(n1, state))
	node.Set(n1, g, 4.5)

	_, ok := pool.Get(Point{4, 4})
	assert.False(t, ok)
	got, ok := pool.Get(Point{2, 3})
	require.True(t, ok)
	assert.True(t, got.Eq(n1))

	pool.Reset()
	_, ok = pool.Get(Point{2, 3})
	assert.False(t, ok)
	n3 := pool.Generate(Point{2, 3})
	assert.Equal(t, math.Inf(1), node.Get(n3, g))

	assert.Panics(t, func() { pool.Generate(Point{8, 0}) })
}

func TestEightConnectedExpander(t *testing.T) {
	m := NewBitGrid(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			m.Set(x, y, true)
		}
	}
	m.Set(1, 0, false)

	b := node.NewBuilder()
	state := node.AddField(b, Point{-1, -1})
	pool := NewPool(b.Build(), state, 4, 4)
	exp := NewEightConnectedExpander(m, pool)

	var edges []Edge
	exp.Expand(pool.Generate(Point{1, 1}), &edges)

	got := map[Direction]float64{}
	for _, e := range edges {
		got[e.Dir] = e.Cost
	}
	// North is blocked, so both northern diagonals are cut too.
	assert.NotContains(t, got, North)
	assert.NotContains(t, got, NorthWest)
	assert.NotContains(t, got, NorthEast)
	assert.Equal(t, 1.0, got[West])
	assert.Equal(t, 1.0, got[East])
	assert.Equal(t, 1.0, got[South])
	assert.Equal(t, SafeSqrt2, got[SouthWest])
	assert.Equal(t, SafeSqrt2, got[SouthEast])
}
