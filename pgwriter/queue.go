package pgwriter

import (
	"sync"

	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/book"
)

// snapshotItem is one queued write: a top-of-book projection stamped with
// the event time it was derived from.
type snapshotItem struct {
	tsUs   int64
	symbol string
	tob    book.TopOfBook
}

// boundedQueue is a single-producer, single-consumer FIFO of fixed capacity.
// Enqueue never blocks: when full, the oldest item is dropped to make room
// for the new one (§4.6's backpressure policy — recency over completeness).
// Only Dequeue blocks, via a condition variable, waiting for work.
type boundedQueue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []snapshotItem
	capacity int
	closed   bool
}

func newBoundedQueue(capacity int) *boundedQueue {
	q := &boundedQueue{capacity: capacity}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends item, dropping the oldest queued item first if the queue
// is already at capacity.
func (q *boundedQueue) Enqueue(item snapshotItem) {
	q.mu.Lock()
	if len(q.items) >= q.capacity {
		q.items = q.items[1:]
	}
	q.items = append(q.items, item)
	q.mu.Unlock()
	q.cond.Signal()
}

// Dequeue blocks until an item is available or the queue is closed, in
// which case it returns ok=false.
func (q *boundedQueue) Dequeue() (snapshotItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return snapshotItem{}, false
	}

	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Close wakes any blocked Dequeue call so the worker can exit.
func (q *boundedQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Len reports the current queue depth (used by tests).
func (q *boundedQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
