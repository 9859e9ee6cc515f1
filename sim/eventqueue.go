package sim

import (
	"container/heap"
	"sync"
)

// EventQueue orders events by time. Events due at the same time come out in
// the order they were pushed.
type EventQueue interface {
	Push(evt Event)
	Pop() Event
	Len() int
	Peek() Event
}

// TimedQueue is a thread safe EventQueue.
type TimedQueue struct {
	lock    sync.Mutex
	entries queueHeap
	pushed  uint64
}

// NewEventQueue creates an empty TimedQueue.
func NewEventQueue() *TimedQueue {
	return &TimedQueue{}
}

// Push adds an event.
func (q *TimedQueue) Push(evt Event) {
	q.lock.Lock()
	defer q.lock.Unlock()

	heap.Push(&q.entries, queuedEvent{evt: evt, seq: q.pushed})
	q.pushed++
}

// Pop removes and returns the earliest event.
func (q *TimedQueue) Pop() Event {
	q.lock.Lock()
	defer q.lock.Unlock()

	return heap.Pop(&q.entries).(queuedEvent).evt
}

// Len returns the number of queued events.
func (q *TimedQueue) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()

	return len(q.entries)
}

// Peek returns the earliest event without removing it.
func (q *TimedQueue) Peek() Event {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.entries[0].evt
}

type queuedEvent struct {
	evt Event
	seq uint64
}

type queueHeap []queuedEvent

func (h queueHeap) Len() int {
	return len(h)
}

func (h queueHeap) Less(i, j int) bool {
	ti, tj := h[i].evt.Time(), h[j].evt.Time()
	if ti != tj {
		return ti < tj
	}

	return h[i].seq < h[j].seq
}

func (h queueHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *queueHeap) Push(x any) {
	*h = append(*h, x.(queuedEvent))
}

func (h *queueHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]

	return e
}
