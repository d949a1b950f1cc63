// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/folio/internal/logging"
	"github.com/tomtom215/folio/internal/recommend"
)

// Trainer is the part of the engine the retrain service drives.
type Trainer interface {
	Train(ctx context.Context) (recommend.TrainingMetadata, error)
}

// RetrainServiceConfig holds configuration for the retrain service.
type RetrainServiceConfig struct {
	// TrainOnStartup trains once when the service starts.
	TrainOnStartup bool

	// TrainTimeout bounds a single training run. Default: 30m
	TrainTimeout time.Duration
}

// RetrainService runs administrative retrain requests under supervision.
// Requests arrive through Trigger; there is no schedule, so a model is only
// rebuilt when an operator asks for it.
type RetrainService struct {
	engine   Trainer
	config   RetrainServiceConfig
	logger   zerolog.Logger
	triggers chan string
	name     string
}

// NewRetrainService creates a new retrain service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRetrainService(engine Trainer, cfg RetrainServiceConfig, logger zerolog.Logger) *RetrainService {
	if cfg.TrainTimeout <= 0 {
		cfg.TrainTimeout = 30 * time.Minute
	}
	return &RetrainService{
		engine:   engine,
		config:   cfg,
		logger:   logger.With().Str("service", "retrain").Logger(),
		triggers: make(chan string, 1),
		name:     "retrain-service",
	}
}

// Trigger requests a retrain. It never blocks; a request made while another
// is still queued is merged into it and Trigger returns false.
func (s *RetrainService) Trigger(reason string) bool {
	select {
	case s.triggers <- reason:
		return true
	default:
		return false
	}
}

// Serve implements the suture.Service interface.
func (s *RetrainService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("train_timeout", s.config.TrainTimeout).
		Msg("retrain service starting")

	if s.config.TrainOnStartup {
		s.train(ctx, "startup")
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("retrain service shutting down")
			return ctx.Err()

		case reason := <-s.triggers:
			s.train(ctx, reason)
		}
	}
}

// train performs one training run. Failures are logged, never returned,
// so a bad snapshot does not restart the service.
func (s *RetrainService) train(ctx context.Context, reason string) {
	trainCtx, cancel := context.WithTimeout(logging.ContextWithNewCorrelationID(ctx), s.config.TrainTimeout)
	defer cancel()

	logger := s.logger.With().
		Str("reason", reason).
		Str("correlation_id", logging.CorrelationIDFromContext(trainCtx)).
		Logger()
	logger.Info().Msg("retrain requested")

	meta, err := s.engine.Train(trainCtx)
	switch {
	case err == nil:
		logger.Info().
			Int("model_version", meta.ModelVersion).
			Int64("duration_ms", meta.DurationMS).
			Msg("retrain complete")
	case errors.Is(err, recommend.ErrRetrainThrottled), errors.Is(err, recommend.ErrTrainingInProgress):
		logger.Info().Err(err).Msg("retrain skipped")
	case ctx.Err() != nil:
		logger.Info().Msg("retrain interrupted by shutdown")
	default:
		logger.Warn().Err(err).Msg("retrain failed, previous model still serving")
	}
}

// String returns the service name for logging.
func (s *RetrainService) String() string {
	return s.name
}
