// Package redis publishes fired scheduler events to a Redis stream, for
// consumers outside the process. This is supplemental: the scheduler itself
// has no knowledge of Redis or any other external collaborator.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/imtaco/eventsched/internal/log"
	"github.com/imtaco/eventsched/scheduler"
)

// Publisher writes one XADD per fired event to a single stream.
type Publisher interface {
	Publish(ctx context.Context, label string) error
}

func NewPublisher(client *redis.Client, stream string, logger *log.Logger) Publisher {
	return &publisherImpl{
		client: client,
		stream: stream,
		logger: logger,
		clock:  clockwork.NewRealClock(),
	}
}

type publisherImpl struct {
	client *redis.Client
	stream string
	logger *log.Logger
	clock  clockwork.Clock
}

func (p *publisherImpl) Publish(ctx context.Context, label string) error {
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"label": label,
			"fired_at": p.clock.Now().UTC().Format(time.RFC3339Nano),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish fired event: %w", err)
	}

	p.logger.Debug("published fired event",
		log.String("stream", p.stream),
		log.String("label", label))
	return nil
}

// Wrap decorates action so that, after it returns successfully, the fired
// event's label is published to the stream. A publish failure is returned
// as the wrapped action's own error (the dispatcher's standard ActionError
// handling then applies — logged, optionally retried, never fatal).
func Wrap(pub Publisher, label string, action scheduler.Action) scheduler.Action {
	return func() error {
		if err := action(); err != nil {
			return err
		}
		return pub.Publish(context.Background(), label)
	}
}
