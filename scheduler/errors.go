package scheduler

import schederr "github.com/imtaco/eventsched/internal/errors"

// Status codes, checked with errors.Is against the internal/errors.Code
// sentinels the teacher's error type supports.
const (
	// CodeNotRunning is returned by Stop and by every submission or
	// cancellation made while the scheduler is not in the RUNNING state, and
	// by Start when the scheduler is not STOPPED.
	CodeNotRunning schederr.Code = "scheduler: not running"
	// CodeNotFound is returned by CancelRecurring for an unknown id.
	CodeNotFound schederr.Code = "scheduler: not found"
	// CodeInvalidArgument is returned for programmer-error arguments (nil
	// action, non-positive recurring interval).
	CodeInvalidArgument schederr.Code = "scheduler: invalid argument"
)

func errNotRunning(op string) error {
	return schederr.New(CodeNotRunning, op+" requires a running scheduler")
}

func errNotFound(op string) error {
	return schederr.New(CodeNotFound, op+": unknown recurring id")
}

func errInvalidArgument(op, reason string) error {
	return schederr.New(CodeInvalidArgument, op+": "+reason)
}
