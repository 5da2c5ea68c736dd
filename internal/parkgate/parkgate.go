// Package parkgate lets an external observer detect when a single dispatcher
// goroutine is blocked on its own condition variable, and wait for it to
// complete a subsequent wake-process-reparked cycle.
//
// sync.Cond exposes no waiter count, unlike Python's threading.Condition
// (whose _waiters list the original event scheduler's test fixture inspects
// directly). The dispatcher reports its own park/notify transitions
// explicitly instead, per the scheduler's own design notes on this
// substitute.
package parkgate

import (
	"sync"
	"time"
)

// Gate is bound one-to-one with a single dispatcher goroutine.
type Gate struct {
	mu      sync.Mutex
	waiting bool
	parked  chan struct{}
	closed  bool
}

// New returns a Gate ready for a dispatcher to bracket its cond.Wait calls.
func New() *Gate {
	return &Gate{parked: make(chan struct{})}
}

// Enter must be called immediately before the dispatcher blocks on its
// condition variable, while still holding the condition variable's lock. It
// also wakes anyone blocked in WaitNextPark, since reaching this point means
// the previous wake-and-process cycle is done.
func (g *Gate) Enter() {
	g.mu.Lock()
	g.waiting = true
	if !g.closed {
		close(g.parked)
		g.parked = make(chan struct{})
	}
	g.mu.Unlock()
}

// Notify must be called together with cond.Broadcast/Signal, while still
// holding the condition variable's lock, every time the dispatcher is woken.
// It does not wake anyone itself; it clears Parked atomically with the wake.
//
// This matters because CPython's threading.Condition removes a waiter from
// _waiters at notify() time, not when the woken thread actually resumes —
// and the original scheduler's test fixture holds the condition variable's
// own lock across its whole advance_time step, so a notified-but-not-yet-
// resumed waiter is never mistaken for one still parked. Go's sync.Cond
// gives no such signal on its own: if Parked were only cleared after Wait
// returns, a caller racing the dispatcher could observe a stale park left
// over from before the very notification it's waiting to see the effect of.
// Requiring Notify to be called under the same lock as the state change
// being signalled (every call site in the dispatcher already holds it for
// the Broadcast anyway) closes that gap the same way the original fixture's
// single held lock does.
func (g *Gate) Notify() {
	g.mu.Lock()
	g.waiting = false
	g.mu.Unlock()
}

// Close marks the dispatcher as permanently gone, waking any remaining
// waiters for good. Safe to call more than once.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.closed {
		g.closed = true
		g.waiting = false
		close(g.parked)
	}
}

// Parked reports whether the dispatcher is, right now, genuinely blocked in
// cond.Wait — not merely signalled but not yet resumed.
func (g *Gate) Parked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.waiting
}

// WaitParked blocks, bounded by timeout, until Parked is true. Returns the
// final observed value, so callers can distinguish a timeout from success.
func (g *Gate) WaitParked(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for !g.Parked() {
		if time.Now().After(deadline) {
			return g.Parked()
		}
		time.Sleep(time.Millisecond)
	}
	return true
}

// WaitNextPark blocks, bounded by timeout, until the dispatcher parks again
// (or exits for good), signalling that a wake-and-process cycle has
// completed since the call was made.
func (g *Gate) WaitNextPark(timeout time.Duration) bool {
	g.mu.Lock()
	ch := g.parked
	g.mu.Unlock()

	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}
