package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/imtaco/eventsched/internal/log"
)

type PublisherTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	logger *log.Logger
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherTestSuite))
}

func (s *PublisherTestSuite) SetupTest() {
	mr := miniredis.RunT(s.T())
	s.mr = mr
	s.client = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	s.logger = log.NewNop()
}

func (s *PublisherTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func (s *PublisherTestSuite) TestPublishAppendsToStream() {
	ctx := context.Background()
	pub := NewPublisher(s.client, "fired-stream", s.logger)

	s.Require().NoError(pub.Publish(ctx, "alarm-1"))

	length := s.client.XLen(ctx, "fired-stream").Val()
	s.Equal(int64(1), length)

	entries := s.client.XRange(ctx, "fired-stream", "-", "+").Val()
	s.Require().Len(entries, 1)
	s.Equal("alarm-1", entries[0].Values["label"])
	s.Contains(entries[0].Values, "fired_at")
}

func (s *PublisherTestSuite) TestPublishMultipleEntriesPreserveOrder() {
	ctx := context.Background()
	pub := NewPublisher(s.client, "fired-stream", s.logger)

	s.Require().NoError(pub.Publish(ctx, "first"))
	s.Require().NoError(pub.Publish(ctx, "second"))

	entries := s.client.XRange(ctx, "fired-stream", "-", "+").Val()
	s.Require().Len(entries, 2)
	s.Equal("first", entries[0].Values["label"])
	s.Equal("second", entries[1].Values["label"])
}

func (s *PublisherTestSuite) TestWrapPublishesOnlyAfterActionSucceeds() {
	ctx := context.Background()
	pub := NewPublisher(s.client, "fired-stream", s.logger)

	failing := Wrap(pub, "never-published", func() error {
		return errors.New("action failed")
	})
	s.Require().Error(failing())
	s.Equal(int64(0), s.client.XLen(ctx, "fired-stream").Val())

	succeeding := Wrap(pub, "published", func() error {
		return nil
	})
	s.Require().NoError(succeeding())
	s.Equal(int64(1), s.client.XLen(ctx, "fired-stream").Val())
}
