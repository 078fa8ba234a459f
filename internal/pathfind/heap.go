package pathfind

import (
	"container/heap"

	"github.com/piwi3910/cablerouter/internal/grid"
)

// openEntry is one push of a node onto OPEN. A node may have several
// entries; stale ones are skipped on pop through the closed set.
type openEntry struct {
	id  grid.NodeID
	f   float64
	seq uint64
}

// openQueue is a min-heap on f, ties broken by insertion order.
type openQueue []openEntry

func (q openQueue) Len() int { return len(q) }
func (q openQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}
func (q openQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *openQueue) Push(x interface{}) {
	*q = append(*q, x.(openEntry))
}

func (q *openQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// openList wraps openQueue with the sequence counter.
type openList struct {
	queue openQueue
	seq   uint64
}

func (o *openList) push(id grid.NodeID, f float64) {
	heap.Push(&o.queue, openEntry{id: id, f: f, seq: o.seq})
	o.seq++
}

func (o *openList) pop() grid.NodeID {
	return heap.Pop(&o.queue).(openEntry).id
}

func (o *openList) len() int {
	return o.queue.Len()
}

func (o *openList) clear() {
	o.queue = o.queue[:0]
	o.seq = 0
}
