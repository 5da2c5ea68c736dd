// Package vclock provides a manually-advanced clock and timer fixture for
// deterministic scheduler tests, grounded directly on the original event
// scheduler's test_util.TestTimer: a monotonic virtual time value, a set of
// pending virtual timers, and (when bound to a live scheduler) a
// synchronization protocol that lets AdvanceTime block until the
// dispatcher has actually processed whatever the advance made due.
//
// It is not a copy of clockwork.FakeClock: clockwork exposes no hook for
// observing a caller-owned condition variable's waiter state, which the
// synchronization protocol below needs and the scheduler's parkgate.Gate
// supplies.
package vclock

import (
	"fmt"
	"sync"
	"time"

	"github.com/imtaco/eventsched/clock"
	"github.com/imtaco/eventsched/internal/parkgate"
)

// epoch is the fixture's zero point; Now() starts here and only moves
// forward via AdvanceTime.
var epoch = time.Unix(0, 0).UTC()

// Fixture is a clock.Source implementation (Now + AfterFunc) whose time only
// advances when a test calls AdvanceTime. It is instance-scoped, not
// process-wide: each test constructs and owns its own Fixture.
type Fixture struct {
	mu     sync.Mutex
	now    time.Time
	timers []*virtualTimer
	gate   *parkgate.Gate
}

// New returns a Fixture with virtual time at the epoch, unbound from any
// scheduler.
func New() *Fixture {
	return &Fixture{now: epoch}
}

// BindScheduler attaches the fixture to a scheduler's dispatcher park/wake
// signal, enabling AdvanceTime's synchronized mode. Call once, before
// starting the scheduler.
func (f *Fixture) BindScheduler(gate *parkgate.Gate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = gate
}

// Now returns the current virtual time.
func (f *Fixture) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Reset restores the fixture to its initial, unbound state.
func (f *Fixture) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = epoch
	f.timers = nil
	f.gate = nil
}

// AfterFunc registers a virtual timer that fires callback once virtual time
// reaches Now()+delay, only as a side effect of a later AdvanceTime call —
// no real-time wall clock is ever involved.
func (f *Fixture) AfterFunc(delay time.Duration, callback func()) clock.Timer {
	f.mu.Lock()
	defer f.mu.Unlock()

	vt := &virtualTimer{
		fixture:  f,
		deadline: f.now.Add(delay),
		callback: callback,
	}
	f.timers = append(f.timers, vt)
	return vt
}

// AdvanceTime moves virtual time forward by delta. delta must be
// non-negative: mirroring the original TestTimer.advance_time, a negative
// increment is a programmer error and panics rather than silently doing
// nothing.
//
// If the fixture is unbound (no BindScheduler call), due timers fire
// synchronously before AdvanceTime returns. If bound, AdvanceTime first
// waits (bounded, to avoid hanging a test on a dispatcher bug) for the
// dispatcher to be parked, fires due timers, and then — only if any timer
// actually fired — waits for the dispatcher to complete the resulting
// wake-and-process cycle before returning. This lets tests write
// "AdvanceTime(d); assert on the result" without a manual sleep or retry
// loop.
func (f *Fixture) AdvanceTime(delta time.Duration) {
	if delta < 0 {
		panic(fmt.Sprintf("vclock: time increment must be non-negative, got %s", delta))
	}

	f.mu.Lock()
	f.now = f.now.Add(delta)
	gate := f.gate
	f.mu.Unlock()

	if gate == nil {
		f.fireDue()
		return
	}

	gate.WaitParked(time.Second)
	fired := f.fireDue()
	if fired {
		gate.WaitNextPark(time.Second)
	}
}

// WaitIdle blocks, bounded by timeout, until the dispatcher is parked with
// nothing left to do. Unlike AdvanceTime it does not move virtual time or
// fire any timer; it is for synchronizing with dispatcher work that was
// already due when it was submitted (which fires on the very next dispatcher
// wakeup, with no virtual timer involved for AdvanceTime to trigger). A
// no-op returning true immediately if the fixture is unbound.
func (f *Fixture) WaitIdle(timeout time.Duration) bool {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()

	if gate == nil {
		return true
	}
	return gate.WaitParked(timeout)
}

// fireDue fires and removes every virtual timer whose deadline has passed,
// returning whether any fired. Callbacks run outside the fixture's lock, the
// same discipline the scheduler itself uses for actions.
func (f *Fixture) fireDue() bool {
	f.mu.Lock()
	now := f.now
	var due []*virtualTimer
	remaining := f.timers[:0:0]
	for _, vt := range f.timers {
		if !vt.fired && !vt.deadline.After(now) {
			vt.fired = true
			due = append(due, vt)
		} else {
			remaining = append(remaining, vt)
		}
	}
	f.timers = remaining
	f.mu.Unlock()

	for _, vt := range due {
		vt.callback()
	}
	return len(due) > 0
}

// cancel removes vt from the pending set if it hasn't fired yet, reporting
// whether it did so (mirrors clock.Timer.Stop's contract).
func (f *Fixture) cancel(vt *virtualTimer) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if vt.fired {
		return false
	}
	for i, t := range f.timers {
		if t == vt {
			f.timers = append(f.timers[:i], f.timers[i+1:]...)
			vt.fired = true // prevent a late fireDue race from also firing it
			return true
		}
	}
	return false
}

// virtualTimer implements clock.Timer against a Fixture.
type virtualTimer struct {
	fixture  *Fixture
	deadline time.Time
	callback func()
	fired    bool
}

func (t *virtualTimer) Stop() bool {
	return t.fixture.cancel(t)
}

// var _ clock.Source = (*Fixture)(nil) documents that Fixture satisfies the
// interface scheduler.NewWithClock requires.
var _ clock.Source = (*Fixture)(nil)
