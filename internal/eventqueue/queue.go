// Package eventqueue is a scratch max-heap on Significance, used by
// subsystems that must process a batch of fired events in priority
// order within a single tick. It is not the event log — nothing here is
// persisted.
package eventqueue

import (
	"container/heap"

	"github.com/talgya/aethelgard/internal/event"
)

// item wraps an event with the insertion sequence used to break ties:
// lower sequence (earlier insertion) sorts first among equal
// Significance, making the queue stable.
type item struct {
	evt Event
	seq uint64
}

// Event is the payload type stored in the queue, carrying the domain
// event plus nothing else — a thin alias kept distinct from event.Event
// so the queue's own package stays import-light for callers that only
// need enqueue/dequeue.
type Event = event.Event

type innerHeap []item

func (h innerHeap) Len() int { return len(h) }

func (h innerHeap) Less(i, j int) bool {
	if h[i].evt.Significance != h[j].evt.Significance {
		return h[i].evt.Significance > h[j].evt.Significance
	}
	return h[i].seq < h[j].seq
}

func (h innerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *innerHeap) Push(x any) { *h = append(*h, x.(item)) }

func (h *innerHeap) Pop() any {
	old := *h
	n := len(old)
	last := old[n-1]
	*h = old[:n-1]
	return last
}

// Queue is a max-heap on Significance, stable on ties by insertion
// order.
type Queue struct {
	h      innerHeap
	nextSeq uint64
}

// New returns an empty queue.
func New() *Queue { return &Queue{} }

// Enqueue adds e in O(log n).
func (q *Queue) Enqueue(e Event) {
	heap.Push(&q.h, item{evt: e, seq: q.nextSeq})
	q.nextSeq++
}

// Dequeue removes and returns the max-significance event, or ok=false
// if the queue is empty.
func (q *Queue) Dequeue() (e Event, ok bool) {
	if len(q.h) == 0 {
		return Event{}, false
	}
	it := heap.Pop(&q.h).(item)
	return it.evt, true
}

// Peek returns the max-significance event without removing it, or
// ok=false if empty.
func (q *Queue) Peek() (e Event, ok bool) {
	if len(q.h) == 0 {
		return Event{}, false
	}
	return q.h[0].evt, true
}

// Size reports the number of queued events.
func (q *Queue) Size() int { return len(q.h) }

// IsEmpty reports whether the queue holds no events.
func (q *Queue) IsEmpty() bool { return len(q.h) == 0 }

// Drain removes and returns every queued event in priority-descending
// order, leaving the queue empty.
func (q *Queue) Drain() []Event {
	out := make([]Event, 0, len(q.h))
	for len(q.h) > 0 {
		e, _ := q.Dequeue()
		out = append(out, e)
	}
	return out
}

// Clear empties the queue without returning its contents.
func (q *Queue) Clear() {
	q.h = nil
}
