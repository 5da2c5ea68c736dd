package scheduler

import (
	"container/heap"
	"time"
)

// pqueue is a container/heap min-heap ordered on (Time, Priority), in the
// same style as the teacher's zset/scheduler heap.Interface implementations,
// extended with a serial index so a specific submission can be removed in
// O(log n) instead of scanned for.
type pqueue struct {
	items []*Event
	index map[uint64]int // serial -> position in items
}

func newPQueue() *pqueue {
	return &pqueue{index: make(map[uint64]int)}
}

func (q *pqueue) Len() int { return len(q.items) }

func (q *pqueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if !a.Time.Equal(b.Time) {
		return a.Time.Before(b.Time)
	}
	return a.Priority < b.Priority
}

func (q *pqueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.index[q.items[i].serial] = i
	q.index[q.items[j].serial] = j
}

func (q *pqueue) Push(x any) {
	e := x.(*Event)
	q.index[e.serial] = len(q.items)
	q.items = append(q.items, e)
}

func (q *pqueue) Pop() any {
	old := q.items
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	delete(q.index, e.serial)
	return e
}

func (q *pqueue) empty() bool { return len(q.items) == 0 }

func (q *pqueue) push(e *Event) { heap.Push(q, e) }

func (q *pqueue) peek() *Event { return q.items[0] }

func (q *pqueue) pop() *Event { return heap.Pop(q).(*Event) }

// removeSerial removes the event with the given serial, if still queued.
func (q *pqueue) removeSerial(serial uint64) (*Event, bool) {
	i, ok := q.index[serial]
	if !ok {
		return nil, false
	}
	return heap.Remove(q, i).(*Event), true
}

// maxTime returns the latest Time among all queued events, or zero if empty.
func (q *pqueue) maxTime() (time.Time, bool) {
	var max time.Time
	found := false
	for _, e := range q.items {
		if !found || e.Time.After(max) {
			max = e.Time
			found = true
		}
	}
	return max, found
}

// snapshot returns every queued event, including the stop sentinel if one is
// pending, in heap-pop (ascending (Time, Priority)) order. It is a copy: the
// caller cannot mutate internal queue state through it.
func (q *pqueue) snapshot() []Event {
	cp := make([]*Event, len(q.items))
	copy(cp, q.items)
	tmp := &pqueue{items: cp, index: make(map[uint64]int, len(cp))}
	for i, e := range tmp.items {
		tmp.index[e.serial] = i
	}

	out := make([]Event, 0, len(tmp.items))
	for tmp.Len() > 0 {
		out = append(out, *tmp.pop())
	}
	return out
}
