package juriscraper

import (
	"container/heap"
	"sync"
)

// ------------------------------------------------------------------------

// pqItem is one slot in the priority queue: a request plus the FIFO
// sequence number assigned when it was enqueued.
type pqItem struct {
	req  *Request
	seq  uint64
	index int
}

// ------------------------------------------------------------------------

// pqHeap implements container/heap.Interface ordered by (priority,
// seq): lowest priority number first, FIFO among ties.
type pqHeap []*pqItem

func (h pqHeap) Len() int { return len(h) }

func (h pqHeap) Less(i, j int) bool {
	if h[i].req.Priority != h[j].req.Priority {
		return h[i].req.Priority < h[j].req.Priority
	}

	return h[i].seq < h[j].seq
}

func (h pqHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *pqHeap) Push(x any) {
	item := x.(*pqItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *pqHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]

	return item
}

// ------------------------------------------------------------------------

// PriorityQueue is a min-priority, FIFO-tie-broken queue of requests.
// It is safe for concurrent use: ParallelDriver shares one instance
// across workers.
type PriorityQueue struct {
	mu      sync.Mutex
	heap    pqHeap
	nextSeq uint64
}

// NewPriorityQueue returns a pointer to a newly created, empty queue.
func NewPriorityQueue() *PriorityQueue {
	q := &PriorityQueue{heap: pqHeap{}}
	heap.Init(&q.heap)

	return q
}

// ------------------------------------------------------------------------

// Push enqueues req. Ties at equal priority are broken by insertion
// order, guaranteed by the monotonic counter guarded under q.mu.
func (q *PriorityQueue) Push(req *Request) {
	q.mu.Lock()
	defer q.mu.Unlock()

	seq := q.nextSeq
	q.nextSeq++

	heap.Push(&q.heap, &pqItem{req: req, seq: seq})
}

// ------------------------------------------------------------------------

// Pop removes and returns the highest-priority (lowest-number),
// earliest-enqueued request. ok is false if the queue was empty.
func (q *PriorityQueue) Pop() (req *Request, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.heap.Len() == 0 {
		return nil, false
	}

	item := heap.Pop(&q.heap).(*pqItem)

	return item.req, true
}

// ------------------------------------------------------------------------

// Len returns the number of requests currently queued.
func (q *PriorityQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.heap.Len()
}

// ------------------------------------------------------------------------

// Drain empties the queue without returning its contents, used by the
// serial driver's "stop immediately" cancellation path.
func (q *PriorityQueue) Drain() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.heap = pqHeap{}
	heap.Init(&q.heap)
}
