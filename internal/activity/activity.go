// Package activity keeps a small, bounded, in-memory record of recent
// scheduler lifecycle transitions for operational introspection. It is not a
// persistence layer: entries are lost on restart and the oldest entry is
// evicted once the bound is reached.
package activity

import (
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Transition is one recorded lifecycle event: scheduled, fired, or
// cancelled.
type Transition struct {
	Seq       uint64    `json:"seq"`
	Label     string    `json:"label"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	KindScheduled = "scheduled"
	KindFired     = "fired"
	KindCancelled = "cancelled"
)

// Recorder is a fixed-capacity ring of the most recent Transitions,
// implemented over an LRU cache keyed by a monotonic sequence number: the
// cache's own least-recently-used eviction is, for a strictly increasing key
// that is never re-read before insertion, exactly ring-buffer eviction of
// the oldest entry.
type Recorder struct {
	cache *lru.Cache[uint64, Transition]
	seq   uint64
	now   func() time.Time
}

// NewRecorder returns a Recorder retaining at most capacity entries.
func NewRecorder(capacity int) *Recorder {
	cache, err := lru.New[uint64, Transition](capacity)
	if err != nil {
		panic(err) // only returns an error for capacity <= 0, a caller bug
	}
	return &Recorder{cache: cache, now: time.Now}
}

// Record appends a transition, evicting the oldest if the recorder is full.
func (r *Recorder) Record(kind, label string) {
	seq := atomic.AddUint64(&r.seq, 1)
	r.cache.Add(seq, Transition{
		Seq:       seq,
		Label:     label,
		Kind:      kind,
		Timestamp: r.now(),
	})
}

// Recent returns every retained transition, oldest first.
func (r *Recorder) Recent() []Transition {
	keys := r.cache.Keys()
	out := make([]Transition, 0, len(keys))
	for _, k := range keys {
		if t, ok := r.cache.Peek(k); ok {
			out = append(out, t)
		}
	}
	return out
}
