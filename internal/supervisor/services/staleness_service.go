// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/folio/internal/events"
	"github.com/tomtom215/folio/internal/metrics"
)

// StaleMarker is the part of the engine notified of store changes.
type StaleMarker interface {
	MarkStale(reason string) bool
}

// Subscriber delivers messages published on a topic.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// errSubscriptionClosed makes the supervisor restart the watcher when the
// bus drops a subscription.
var errSubscriptionClosed = errors.New("subscription closed")

// StalenessService marks the serving model stale when change notifications
// arrive. It never starts training.
type StalenessService struct {
	subscriber Subscriber
	marker     StaleMarker
	topics     []string
	logger     zerolog.Logger
	name       string
}

// NewStalenessService creates a watcher for the given topics, or for every
// change topic when none are given.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStalenessService(subscriber Subscriber, marker StaleMarker, logger zerolog.Logger, topics ...string) *StalenessService {
	if len(topics) == 0 {
		topics = events.Topics()
	}
	return &StalenessService{
		subscriber: subscriber,
		marker:     marker,
		topics:     topics,
		logger:     logger.With().Str("service", "staleness").Logger(),
		name:       "staleness-service",
	}
}

// Serve implements the suture.Service interface.
func (s *StalenessService) Serve(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, topic := range s.topics {
		msgs, err := s.subscriber.Subscribe(gctx, topic)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		g.Go(func() error {
			return s.consume(gctx, topic, msgs)
		})
	}

	s.logger.Info().Strs("topics", s.topics).Msg("staleness service running")

	err := g.Wait()
	if ctx.Err() != nil {
		s.logger.Info().Msg("staleness service shutting down")
		return ctx.Err()
	}
	return err
}

func (s *StalenessService) consume(ctx context.Context, topic string, msgs <-chan *message.Message) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("%s: %w", topic, errSubscriptionClosed)
			}
			s.handle(topic, msg)
		}
	}
}

// handle always acks: a malformed notification is not worth redelivering.
func (s *StalenessService) handle(topic string, msg *message.Message) {
	defer msg.Ack()

	logger := s.logger.With().
		Str("topic", topic).
		Str("message_id", msg.UUID).
		Str("correlation_id", msg.Metadata.Get(events.MetadataCorrelationID)).
		Logger()

	ev, err := events.Decode(msg)
	if err != nil {
		logger.Warn().Err(err).Msg("dropping malformed change notification")
		return
	}

	metrics.RecordStaleEvent(topic)
	if s.marker.MarkStale(ev.StaleReason()) {
		logger.Info().Str("reason", ev.StaleReason()).Msg("model marked stale")
		return
	}
	logger.Debug().Str("reason", ev.StaleReason()).Msg("change notification ignored, model already stale or absent")
}

// String returns the service name for logging.
func (s *StalenessService) String() string {
	return s.name
}
