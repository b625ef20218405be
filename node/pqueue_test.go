package node_test

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/grailbio/pathfind/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityQueueOrdering(t *testing.T) {
	b := node.NewBuilder()
	g := node.AddField(b, math.Inf(1))
	factory := node.NewPriorityQueueFactory(b)
	alloc := b.Build()

	rng := rand.New(rand.NewSource(1))
	keys := make([]float64, 1000)
	q := factory.NewQueue(node.Ascending(g))
	for i := range keys {
		keys[i] = rng.Float64() * 100
		n := alloc.NewNode()
		node.Set(n, g, keys[i])
		q.Relaxed(n)
	}
	sort.Float64s(keys)

	for _, want := range keys {
		n, ok := q.Next()
		require.True(t, ok)
		assert.Equal(t, want, node.Get(n, g))
	}
	_, ok := q.Next()
	assert.False(t, ok)
}

func TestPriorityQueueDecreaseKey(t *testing.T) {
	b := node.NewBuilder()
	g := node.AddField(b, math.Inf(1))
	factory := node.NewPriorityQueueFactory(b)
	alloc := b.Build()

	q := factory.NewQueue(node.Ascending(g))
	a := alloc.NewNode()
	c := alloc.NewNode()
	node.Set(a, g, 10.0)
	node.Set(c, g, 5.0)
	q.Relaxed(a)
	q.Relaxed(c)

	// Decrease a's key below c's; a must come out first and only once.
	node.Set(a, g, 1.0)
	q.Relaxed(a)
	assert.Equal(t, 2, q.Len())

	n, ok := q.Next()
	require.True(t, ok)
	assert.True(t, n.Eq(a))
	n, ok = q.Next()
	require.True(t, ok)
	assert.True(t, n.Eq(c))
	_, ok = q.Next()
	assert.False(t, ok)
}

func TestLexicographicTieBreak(t *testing.T) {
	b := node.NewBuilder()
	f := node.AddField(b, math.Inf(1))
	h := node.AddField(b, math.Inf(1))
	factory := node.NewPriorityQueueFactory(b)
	alloc := b.Build()

	// Order by f, ties broken by h: the classic A* ordering.
	q := factory.NewQueue(node.Lexicographic(node.Ascending(f), node.Ascending(h)))

	mk := func(fv, hv float64) node.Ref {
		n := alloc.NewNode()
		node.Set(n, f, fv)
		node.Set(n, h, hv)
		q.Relaxed(n)
		return n
	}
	lowH := mk(7.0, 1.0)
	highH := mk(7.0, 4.0)
	best := mk(3.0, 9.0)

	n, _ := q.Next()
	assert.True(t, n.Eq(best))
	n, _ = q.Next()
	assert.True(t, n.Eq(lowH))
	n, _ = q.Next()
	assert.True(t, n.Eq(highH))
}

func TestDescendingAndLayoutMismatch(t *testing.T) {
	b := node.NewBuilder()
	g := node.AddField(b, 0.0)
	factory := node.NewPriorityQueueFactory(b)
	alloc := b.Build()

	q := factory.NewQueue(node.Descending(g))
	for _, v := range []float64{1, 3, 2} {
		n := alloc.NewNode()
		node.Set(n, g, v)
		q.Relaxed(n)
	}
	n, _ := q.Next()
	assert.Equal(t, 3.0, node.Get(n, g))

	assert.Panics(t, func() {
		other := node.NewBuilder()
		f := node.AddField(other, 0.0)
		factory.NewQueue(node.Ascending(f))
	})
}
