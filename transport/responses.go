package transport

import (
	"time"

	"github.com/imtaco/eventsched/scheduler"
)

// EventView is the JSON projection of a queued scheduler.Event.
type EventView struct {
	Time        time.Time `json:"time"`
	Priority    int       `json:"priority"`
	RecurringID uint64    `json:"recurring_id,omitempty"`
}

func toEventView(ev *scheduler.Event) EventView {
	return EventView{
		Time:        ev.Time,
		Priority:    ev.Priority,
		RecurringID: ev.RecurringID,
	}
}

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
