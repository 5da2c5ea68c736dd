// Package clock defines the scheduler's time and timer collaborator
// contracts, and a production implementation over clockwork.
package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock returns the current monotonic instant.
type Clock interface {
	Now() time.Time
}

// Timer is a one-shot delayed-callback handle. Stop reports whether the
// callback was prevented from firing (false if it already fired or was
// already stopped).
type Timer interface {
	Stop() bool
}

// TimerFactory constructs a Timer that will invoke callback after delay,
// unless cancelled first via the returned Timer's Stop.
type TimerFactory interface {
	AfterFunc(delay time.Duration, callback func()) Timer
}

// Source bundles Clock and TimerFactory, the pair a Scheduler is
// constructed with.
type Source interface {
	Clock
	TimerFactory
}

// real wraps clockwork.Clock, the production time source. clockwork.Timer
// already satisfies Timer (Stop() bool), so no adaptation is needed beyond
// the interface narrowing.
type real struct {
	clockwork.Clock
}

// NewReal returns the production Source, backed by the real OS clock and
// real OS timers.
func NewReal() Source {
	return real{Clock: clockwork.NewRealClock()}
}

func (r real) AfterFunc(delay time.Duration, callback func()) Timer {
	return r.Clock.AfterFunc(delay, callback)
}
