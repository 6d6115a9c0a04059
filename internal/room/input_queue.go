package room

import "sync"

// InputQueue buffers a single player's pending input in a fixed-size ring. It is safe for
// concurrent producers and a single consumer. When full, the oldest pending event is
// overwritten so a fast client never blocks its connection.
type InputQueue struct {
	mu      sync.Mutex
	data    []InputEvent
	head    int
	count   int
	dropped uint64
}

// NewInputQueue constructs a queue holding at most capacity events.
func NewInputQueue(capacity int) *InputQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &InputQueue{
		data: make([]InputEvent, capacity),
	}
}

// Enqueue appends ev to the tail. It reports false when an older event had to be dropped
// to make room.
func (q *InputQueue) Enqueue(ev InputEvent) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	tail := (q.head + q.count) % len(q.data)
	q.data[tail] = ev

	if q.count == len(q.data) {
		q.head = (q.head + 1) % len(q.data)
		q.dropped++
		return false
	}

	q.count++
	return true
}

// Drain returns all queued events in submission order and empties the queue.
func (q *InputQueue) Drain() []InputEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return nil
	}

	events := make([]InputEvent, q.count)
	for i := range events {
		idx := (q.head + i) % len(q.data)
		events[i] = q.data[idx]
		q.data[idx] = InputEvent{}
	}
	q.head = 0
	q.count = 0

	return events
}

// Len reports the number of queued events.
func (q *InputQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Capacity reports the maximum number of events the queue holds.
func (q *InputQueue) Capacity() int {
	return len(q.data)
}

// Dropped reports how many events have been discarded due to overflow.
func (q *InputQueue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
