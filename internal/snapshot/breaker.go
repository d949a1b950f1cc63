// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/folio/internal/metrics"
	"github.com/tomtom215/folio/internal/recommend"
)

// ErrSourceUnavailable is returned while the breaker rejects loads.
var ErrSourceUnavailable = errors.New("snapshot source unavailable")

// BreakerConfig configures the circuit breaker around a snapshot source.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32        // Allowed in half-open state
	Interval         time.Duration // Reset interval for counts
	Timeout          time.Duration // Time to stay open
	FailureThreshold uint32        // Consecutive failures before opening
}

// DefaultBreakerConfig returns production defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "snapshot-source",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 3,
	}
}

// BreakerSource protects a SnapshotSource with a circuit breaker.
type BreakerSource struct {
	source recommend.SnapshotSource
	cb     *gobreaker.CircuitBreaker[*recommend.Snapshot]
	logger zerolog.Logger
}

// NewBreakerSource wraps source.
func NewBreakerSource(source recommend.SnapshotSource, cfg BreakerConfig, logger zerolog.Logger) *BreakerSource {
	logger = logger.With().Str("component", "snapshot_breaker").Str("breaker", cfg.Name).Logger()
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}

	metrics.SetSnapshotBreakerState(stateToInt(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[*recommend.Snapshot](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A caller giving up is not a store failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("snapshot source breaker state transition")
			metrics.SetSnapshotBreakerState(stateToInt(to))
		},
	})

	return &BreakerSource{source: source, cb: cb, logger: logger}
}

// LoadSnapshot loads through the breaker.
func (b *BreakerSource) LoadSnapshot(ctx context.Context) (*recommend.Snapshot, error) {
	snap, err := b.cb.Execute(func() (*recommend.Snapshot, error) {
		return b.source.LoadSnapshot(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordSnapshotLoad("breaker_open")
			b.logger.Warn().Err(err).Msg("snapshot load rejected")
			return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
		metrics.RecordSnapshotLoad("error")
		return nil, err
	}
	metrics.RecordSnapshotLoad("success")
	return snap, nil
}

// State returns the breaker state name (closed, half-open, open).
func (b *BreakerSource) State() string {
	return b.cb.State().String()
}

func stateToInt(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
