package grid

import (
	"math"
	"math/bits"

	"github.com/grailbio/base/log"
	"github.com/grailbio/pathfind/node"
)

// BucketPos records a queued node's bucket number and its slot within the
// bucket, enabling O(1) removal on relaxation.
type BucketPos struct {
	Bucket uint32
	Index  uint32
}

// BucketQueueFactory reserves the bucket-position field used by bucket
// queues over one layout.
type BucketQueueFactory struct {
	pos node.Field[BucketPos]
}

// NewBucketQueueFactory adds the bucket-position field to the layout under
// construction.
func NewBucketQueueFactory(b *node.Builder) *BucketQueueFactory {
	return &BucketQueueFactory{
		pos: node.AddField(b, BucketPos{Bucket: math.MaxUint32, Index: math.MaxUint32}),
	}
}

// NewQueue returns an empty bucket queue ordered by the g field. bucketWidth
// is the g-range of one bucket; a value slightly under 1 (0.999) keeps
// integer-cost moves together on octile grids.
func (f *BucketQueueFactory) NewQueue(g node.Field[float64], bucketWidth float64) *BucketQueue {
	if g.LayoutID() != f.pos.LayoutID() {
		log.Panicf("grid: g field layout incompatible with bucket queue")
	}
	return &BucketQueue{
		width:   bucketWidth,
		g:       g,
		pos:     f.pos,
		buckets: make([][]node.Ref, 8),
	}
}

// BucketQueue is a monotone integer-bucket open list for nearly-uniform edge
// costs. Buckets form a ring; advancing past an emptied bucket recycles its
// storage. Callers must keep g values non-negative and must not relax a node
// into a different bucket after it was popped.
type BucketQueue struct {
	bucketNumber uint32
	width        float64
	g            node.Field[float64]
	pos          node.Field[BucketPos]

	buckets [][]node.Ref // ring storage; len is a power of two
	head    int          // ring index of bucket bucketNumber
	count   int          // number of ring slots in use
}

// Relaxed implements node.OpenList.
func (q *BucketQueue) Relaxed(n node.Ref) {
	bp := node.GetUnchecked(n, q.pos)
	newBucket := uint32(node.GetUnchecked(n, q.g) / q.width)
	if bp.Bucket == newBucket {
		return
	}

	mask := len(q.buckets) - 1
	if bp.Bucket != math.MaxUint32 {
		slot := &q.buckets[(q.head+int(bp.Bucket-q.bucketNumber))&mask]
		last := len(*slot) - 1
		swapped := (*slot)[last]
		*slot = (*slot)[:last]
		if !swapped.Eq(n) {
			(*slot)[bp.Index] = swapped
			node.SetUnchecked(swapped, q.pos, bp)
		}
	}

	rel := int(newBucket - q.bucketNumber)
	if rel+1 > q.count {
		q.count = rel + 1
		if q.count > len(q.buckets) {
			q.grow(q.count)
			mask = len(q.buckets) - 1
		}
	}
	slot := &q.buckets[(q.head+rel)&mask]
	node.SetUnchecked(n, q.pos, BucketPos{Bucket: newBucket, Index: uint32(len(*slot))})
	*slot = append(*slot, n)
}

// Next implements node.OpenList.
func (q *BucketQueue) Next() (node.Ref, bool) {
	for q.count > 0 {
		slot := &q.buckets[q.head]
		if m := len(*slot); m > 0 {
			n := (*slot)[m-1]
			*slot = (*slot)[:m-1]
			return n, true
		}
		q.head = (q.head + 1) & (len(q.buckets) - 1)
		q.count--
		q.bucketNumber++
	}
	return node.Ref{}, false
}

func (q *BucketQueue) grow(need int) {
	buckets := make([][]node.Ref, ringCap(need))
	mask := len(q.buckets) - 1
	for i := 0; i < len(q.buckets); i++ {
		buckets[i] = q.buckets[(q.head+i)&mask]
	}
	q.buckets = buckets
	q.head = 0
}

// ringCap returns the smallest power of two >= n, the ring length that fits
// n buckets while keeping index wrapping a mask operation.
func ringCap(n int) int {
	return 1 << bits.Len(uint(n-1))
}
