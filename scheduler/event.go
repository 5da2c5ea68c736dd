package scheduler

import "time"

// Action is bound, nullary, effectful work — the Go stand-in for a callable
// closed over whatever positional/keyword state its caller needs. A non-nil
// return is the ActionException case: the dispatcher logs it, optionally
// retries it, and keeps running regardless.
type Action func() error

// Event is the scheduling record returned as a cancellation handle. Ordering
// is defined on (Time, Priority) only: Action and RecurringID play no part
// in comparisons, and ties between equal (Time, Priority) pairs break in
// heap-arbitrary order, not insertion order.
type Event struct {
	Time        time.Time
	Priority    int
	RecurringID uint64 // 0 for a one-shot event
	Action      Action

	// serial is the scheduler's internal monotonic submission counter. Two
	// events can compare equal on (Time, Priority) while naming different
	// submissions; Cancel uses serial to remove the exact one a caller holds
	// a handle to, rather than an arbitrary (time, priority) match.
	serial uint64
}

// maxPriority sorts after every caller-submitted event at the same time,
// making it safe to use as the stop sentinel's priority.
const maxPriority = int(^uint(0) >> 1)

func newSentinel(at time.Time, serial uint64) *Event {
	return &Event{Time: at, Priority: maxPriority, serial: serial}
}

func (e *Event) isSentinel() bool {
	return e.Action == nil && e.Priority == maxPriority
}
