// Package scheduler implements an always-on, in-process priority-queue
// dispatcher: a single goroutine pops due (time, priority)-ordered events
// and runs their actions, supporting one-shot and recurring submissions,
// cancellation, and graceful or hard shutdown.
package scheduler

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/imtaco/eventsched/clock"
	"github.com/imtaco/eventsched/internal/log"
	"github.com/imtaco/eventsched/internal/parkgate"
	"github.com/imtaco/eventsched/internal/retry"
)

// State is the scheduler's lifecycle state.
type State int32

const (
	Stopped State = iota
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "STOPPED"
	case Running:
		return "RUNNING"
	case Stopping:
		return "STOPPING"
	default:
		return "UNKNOWN"
	}
}

// Option configures optional collaborators on a Scheduler.
type Option func(*Scheduler)

// WithMetrics attaches OpenTelemetry instrumentation (see NewMetrics).
func WithMetrics(m *Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// WithRetry retries a failing action's single invocation with backoff before
// the dispatcher gives up on it and moves on (§7).
func WithRetry(r retry.Retry) Option {
	return func(s *Scheduler) { s.retrier = r }
}

// Scheduler is the dispatcher. Zero value is not usable; construct with New.
type Scheduler struct {
	mu   sync.Mutex
	cond *sync.Cond
	gate *parkgate.Gate

	clock  clock.Clock
	timers clock.TimerFactory

	queue    *pqueue
	registry *registry

	nextSerial uint64
	nextID     uint64

	state        State
	pendingTimer clock.Timer

	logger  *log.Logger
	metrics *Metrics
	retrier retry.Retry

	done chan struct{}
}

// New constructs a Scheduler backed by the real OS clock. Call Start to
// launch the dispatcher goroutine.
func New(logger *log.Logger, opts ...Option) *Scheduler {
	return newScheduler(logger, clock.NewReal(), opts...)
}

// NewWithClock constructs a Scheduler backed by an arbitrary clock.Source —
// used by tests with a vclock.Fixture, which implements clock.Source itself.
func NewWithClock(logger *log.Logger, src clock.Source, opts ...Option) *Scheduler {
	return newScheduler(logger, src, opts...)
}

func newScheduler(logger *log.Logger, src clock.Source, opts ...Option) *Scheduler {
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Scheduler{
		clock:    src,
		timers:   src,
		queue:    newPQueue(),
		registry: newRegistry(),
		gate:     parkgate.New(),
		logger:   logger.Module("scheduler"),
		state:    Stopped,
		done:     make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Gate exposes the dispatcher's park/wake signal for vclock.Fixture to bind
// to. Not meant for general callers.
func (s *Scheduler) Gate() *parkgate.Gate {
	return s.gate
}

// Start transitions STOPPED -> RUNNING and launches the dispatcher
// goroutine. Returns CodeNotRunning if the scheduler is not STOPPED: a
// scheduler cannot be restarted after Stop, since its dispatcher goroutine
// and done channel are one-shot.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Stopped {
		return errNotRunning("start")
	}
	s.state = Running
	go s.run()
	return nil
}

// Stop requests dispatcher shutdown. If hard is true, the queue is cleared
// first (pending events are abandoned); otherwise the dispatcher drains all
// due and not-yet-due events before exiting. Stop blocks until the
// dispatcher goroutine has fully exited.
func (s *Scheduler) Stop(hard bool) error {
	s.mu.Lock()
	if s.state != Running {
		s.mu.Unlock()
		return errNotRunning("stop")
	}
	s.state = Stopping

	if hard {
		s.clearLocked()
	}

	at := s.clock.Now()
	if max, ok := s.queue.maxTime(); ok && max.After(at) {
		at = max
	}
	s.nextSerial++
	s.queue.push(newSentinel(at, s.nextSerial))
	s.notifyLocked()
	s.mu.Unlock()

	runtime.Gosched()
	<-s.done

	s.mu.Lock()
	s.state = Stopped
	s.mu.Unlock()
	return nil
}

// State reports the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// EnterAbs schedules action to run at the given absolute time. The returned
// Event is a cancellation handle; pass it to Cancel to remove it before it
// fires.
func (s *Scheduler) EnterAbs(t time.Time, priority int, action Action) (*Event, error) {
	if action == nil {
		return nil, errInvalidArgument("enterabs", "action must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Running {
		return nil, errNotRunning("enterabs")
	}

	e := s.newEventLocked(t, priority, action, 0)
	s.queue.push(e)
	s.recordScheduled()
	s.notifyLocked()

	cp := *e
	return &cp, nil
}

// Enter schedules action to run after delay, relative to the scheduler's
// own clock.
func (s *Scheduler) Enter(delay time.Duration, priority int, action Action) (*Event, error) {
	return s.EnterAbs(s.clock.Now().Add(delay), priority, action)
}

// EnterRecurring schedules action to run every interval, starting one
// interval from now, until CancelRecurring or CancelAll removes it. The
// returned id is stable across re-scheduling; it is NOT a queue handle like
// the *Event from EnterAbs/Enter.
func (s *Scheduler) EnterRecurring(interval time.Duration, priority int, action Action) (uint64, error) {
	if action == nil {
		return 0, errInvalidArgument("enter_recurring", "action must not be nil")
	}
	if interval <= 0 {
		return 0, errInvalidArgument("enter_recurring", "interval must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Running {
		return 0, errNotRunning("enter_recurring")
	}

	s.nextID++
	id := s.nextID
	e := s.newEventLocked(s.clock.Now().Add(interval), priority, action, id)
	s.registry.put(id, e, interval)
	s.queue.push(e)
	s.recordScheduled()
	s.notifyLocked()

	return id, nil
}

// Cancel removes ev from the queue if it is still pending. Cancelling an
// already-fired or already-cancelled handle is a documented no-op, not an
// error — only a non-RUNNING scheduler makes Cancel fail.
func (s *Scheduler) Cancel(ev *Event) error {
	if ev == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Running {
		return errNotRunning("cancel")
	}

	if _, ok := s.queue.removeSerial(ev.serial); ok {
		s.recordCancelledN(1)
		s.notifyLocked()
	}
	return nil
}

// CancelRecurring stops future firings of id and removes its currently
// queued occurrence. Returns CodeNotFound if id is unknown.
func (s *Scheduler) CancelRecurring(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Running {
		return errNotRunning("cancel_recurring")
	}

	entry, ok := s.registry.get(id)
	if !ok {
		return errNotFound("cancel_recurring")
	}

	s.registry.delete(id)
	if _, removed := s.queue.removeSerial(entry.event.serial); removed {
		s.recordCancelledN(1)
	}
	s.notifyLocked()
	return nil
}

// CancelAll clears every queued event and recurring registration.
func (s *Scheduler) CancelAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Running {
		return errNotRunning("cancel_all")
	}

	s.clearLocked()
	s.notifyLocked()
	return nil
}

// Snapshot returns every currently queued, non-sentinel event in
// (Time, Priority) order. It is a point-in-time copy.
func (s *Scheduler) Snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.queue.snapshot()
	out := make([]Event, 0, len(all))
	for _, e := range all {
		if e.isSentinel() {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *Scheduler) newEventLocked(t time.Time, priority int, action Action, recurringID uint64) *Event {
	s.nextSerial++
	return &Event{Time: t, Priority: priority, Action: action, RecurringID: recurringID, serial: s.nextSerial}
}

func (s *Scheduler) clearLocked() {
	n := s.queue.Len()
	s.queue = newPQueue()
	s.registry = newRegistry()
	if s.pendingTimer != nil {
		s.pendingTimer.Stop()
		s.pendingTimer = nil
	}
	s.recordCancelledN(n)
}

// run is the dispatcher loop (spec §4.2): park while nothing is due, wake on
// a timer or a new submission, pop and either reschedule (if recurring) or
// drop the popped event, then invoke its action with the lock released —
// the load-bearing difference from the original Python event_scheduler,
// whose run() appears to invoke the action while still holding its
// condition variable's lock. Go's sync.Mutex is not reentrant, so releasing
// the lock before invoking the action isn't just cleaner, it's required:
// without it, an action that reentrantly calls Enter/Cancel would deadlock.
func (s *Scheduler) run() {
	defer close(s.done)
	defer s.gate.Close()

	for {
		s.mu.Lock()

		if s.queue.empty() || s.pendingTimer != nil {
			s.gate.Enter()
			s.cond.Wait()
		}

		if s.pendingTimer != nil {
			s.pendingTimer.Stop()
			s.pendingTimer = nil
		}

		if s.queue.empty() {
			s.mu.Unlock()
			continue
		}

		head := s.queue.peek()
		if head.isSentinel() {
			s.queue.pop()
			s.notifyLocked()
			s.mu.Unlock()
			return
		}

		now := s.clock.Now()
		if head.Time.After(now) {
			delay := head.Time.Sub(now)
			s.pendingTimer = s.timers.AfterFunc(delay, s.wake)
			s.notifyLocked()
			s.mu.Unlock()
			continue
		}

		e := s.queue.pop()
		s.recordPopped()
		if e.RecurringID != 0 {
			s.rescheduleRecurringLocked(e)
		}
		s.mu.Unlock()

		s.invoke(e)

		s.mu.Lock()
		s.notifyLocked()
		s.mu.Unlock()
	}
}

func (s *Scheduler) wake() {
	s.mu.Lock()
	s.notifyLocked()
	s.mu.Unlock()
}

// notifyLocked wakes the dispatcher, called with s.mu held. It always
// routes through s.gate.Notify first so the gate's parked state clears
// atomically with the wake rather than only once cond.Wait actually
// returns — see parkgate.Gate.Notify.
func (s *Scheduler) notifyLocked() {
	s.gate.Notify()
	s.cond.Broadcast()
}

// rescheduleRecurringLocked pushes the next occurrence of a recurring event
// that just fired, unless it was cancelled in the meantime (invariant 2:
// exactly one queued event per live recurring id).
func (s *Scheduler) rescheduleRecurringLocked(e *Event) {
	entry, ok := s.registry.get(e.RecurringID)
	if !ok || s.state != Running {
		return
	}
	next := s.newEventLocked(e.Time.Add(entry.interval), e.Priority, e.Action, e.RecurringID)
	s.registry.put(e.RecurringID, next, entry.interval)
	s.queue.push(next)
	s.recordScheduled()
}

// invoke runs e's action outside the scheduler lock, recovering a panic and
// optionally retrying a returned error, neither of which ever propagates out
// to the dispatcher loop (§7: the dispatcher survives any single action).
func (s *Scheduler) invoke(e *Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("action panicked",
				log.Any("recover", r),
				log.Int("priority", e.Priority),
				log.Int64("recurring_id", int64(e.RecurringID)))
			s.recordActionError()
		}
	}()

	run := e.Action
	if s.retrier != nil {
		run = s.withRetry(run)
	}

	start := s.clock.Now()
	err := run()
	s.recordLatency(s.clock.Now().Sub(start))

	if err != nil {
		s.logger.Warn("action returned error",
			log.Error(err),
			log.Int("priority", e.Priority),
			log.Int64("recurring_id", int64(e.RecurringID)))
		s.recordActionError()
		return
	}
	s.recordExecuted()
}

func (s *Scheduler) withRetry(action Action) Action {
	return func() error {
		return s.retrier.Do(context.Background(), action)
	}
}
