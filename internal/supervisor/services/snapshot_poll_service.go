// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/folio/internal/events"
	"github.com/tomtom215/folio/internal/snapshot"
)

// Fingerprinter reports the current state of the external store.
type Fingerprinter interface {
	Fingerprint(ctx context.Context) (snapshot.Fingerprint, error)
}

// Publisher publishes change notifications.
type Publisher interface {
	Publish(ctx context.Context, ev events.ChangeEvent) error
}

// SnapshotPollService watches file exports and publishes a change
// notification when one of them is rewritten.
type SnapshotPollService struct {
	source    Fingerprinter
	publisher Publisher
	interval  time.Duration
	logger    zerolog.Logger
	name      string

	baseline snapshot.Fingerprint
	primed   bool
}

// NewSnapshotPollService creates a poller. Interval defaults to 30s.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSnapshotPollService(source Fingerprinter, publisher Publisher, interval time.Duration, logger zerolog.Logger) *SnapshotPollService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SnapshotPollService{
		source:    source,
		publisher: publisher,
		interval:  interval,
		logger:    logger.With().Str("service", "snapshot_poll").Logger(),
		name:      "snapshot-poll-service",
	}
}

// Serve implements the suture.Service interface.
func (s *SnapshotPollService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("snapshot poller starting")

	s.poll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("snapshot poller shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

// poll compares the store against the last seen fingerprint. The first
// successful poll only records the baseline.
func (s *SnapshotPollService) poll(ctx context.Context) {
	fp, err := s.source.Fingerprint(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("snapshot fingerprint failed")
		return
	}
	if !s.primed {
		s.baseline, s.primed = fp, true
		return
	}

	var changes []events.ChangeEvent
	if fp.Catalog != s.baseline.Catalog {
		changes = append(changes, events.NewChangeEvent(events.TopicCatalogChanged, s.name, "catalog export rewritten"))
	}
	if fp.Ratings != s.baseline.Ratings {
		changes = append(changes, events.NewChangeEvent(events.TopicRatingsChanged, s.name, "ratings export rewritten"))
	}
	if fp.Bookmarks != s.baseline.Bookmarks {
		changes = append(changes, events.NewChangeEvent(events.TopicRatingsChanged, s.name, "bookmarks export rewritten"))
	}

	for _, ev := range changes {
		if err := s.publisher.Publish(ctx, ev); err != nil {
			// Keep the old baseline so the change is reported again next tick.
			s.logger.Warn().Err(err).Str("topic", ev.Topic).Msg("change notification publish failed")
			return
		}
		s.logger.Info().Str("topic", ev.Topic).Str("reason", ev.Reason).Msg("store change detected")
	}
	s.baseline = fp
}

// String returns the service name for logging.
func (s *SnapshotPollService) String() string {
	return s.name
}
