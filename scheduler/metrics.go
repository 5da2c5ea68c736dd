package scheduler

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"

	ootel "github.com/imtaco/eventsched/internal/otel"
)

// Metrics records dispatcher activity as OpenTelemetry instruments, built
// with the teacher's MetricFactory pattern (internal/otel).
type Metrics struct {
	scheduled   metric.Int64Counter
	executed    metric.Int64Counter
	actionError metric.Int64Counter
	cancelled   metric.Int64Counter
	queueDepth  metric.Int64UpDownCounter
	fireLatency metric.Float64Histogram
}

// NewMetrics registers the scheduler's instruments under meterName, prefixed
// "eventsched".
func NewMetrics(meterName string) *Metrics {
	f := ootel.NewFactory(meterName, ootel.PrefixEventScheduler)
	m := &Metrics{}
	f.Int64Counter(&m.scheduled, "scheduled_total")
	f.Int64Counter(&m.executed, "executed_total")
	f.Int64Counter(&m.actionError, "action_errors_total")
	f.Int64Counter(&m.cancelled, "cancelled_total")
	f.Int64UpDownCounter(&m.queueDepth, "queue_depth")
	f.Float64Histogram(&m.fireLatency, "fire_latency_seconds")
	return m
}

func (s *Scheduler) recordScheduled() {
	if s.metrics == nil {
		return
	}
	s.metrics.scheduled.Add(context.Background(), 1)
	s.metrics.queueDepth.Add(context.Background(), 1)
}

func (s *Scheduler) recordPopped() {
	if s.metrics == nil {
		return
	}
	s.metrics.queueDepth.Add(context.Background(), -1)
}

func (s *Scheduler) recordExecuted() {
	if s.metrics == nil {
		return
	}
	s.metrics.executed.Add(context.Background(), 1)
}

func (s *Scheduler) recordActionError() {
	if s.metrics == nil {
		return
	}
	s.metrics.actionError.Add(context.Background(), 1)
}

func (s *Scheduler) recordCancelledN(n int) {
	if s.metrics == nil || n == 0 {
		return
	}
	s.metrics.cancelled.Add(context.Background(), int64(n))
	s.metrics.queueDepth.Add(context.Background(), -int64(n))
}

func (s *Scheduler) recordLatency(d time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.fireLatency.Record(context.Background(), d.Seconds())
}
