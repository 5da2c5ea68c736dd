package transport

import "time"

// ScheduleRequest creates a one-shot event. Exactly one of DelayMS or At must
// be set; DelayMS is relative to the scheduler's own clock (so it behaves
// correctly against a bound vclock.Fixture in tests), At is an absolute
// RFC3339 timestamp.
type ScheduleRequest struct {
	DelayMS  *int64     `json:"delay_ms,omitempty" binding:"omitempty,delay"`
	At       *time.Time `json:"at,omitempty"`
	Priority int        `json:"priority" binding:"priority"`
	Label    string     `json:"label" binding:"required,min=1,max=200"`
}

// RecurringRequest creates a recurring event, firing every IntervalMS
// milliseconds starting one interval from now.
type RecurringRequest struct {
	IntervalMS int64  `json:"interval_ms" binding:"interval"`
	Priority   int    `json:"priority" binding:"priority"`
	Label      string `json:"label" binding:"required,min=1,max=200"`
}

// EventIDURI binds a one-shot event's handle id from the URL path.
type EventIDURI struct {
	ID string `uri:"id" binding:"required,uuid4"`
}

// RecurringIDURI binds a recurring event's numeric id from the URL path.
type RecurringIDURI struct {
	ID uint64 `uri:"id" binding:"required"`
}
