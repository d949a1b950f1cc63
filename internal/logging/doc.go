// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

// Package logging provides Folio's zerolog-based structured logging.
//
// The global logger is configured once from the logging section of the
// configuration and handed to components as zerolog.Logger values, usually
// tagged with WithComponent. Libraries that log through slog (Suture via
// sutureslog, Watermill) are bridged with NewSlogLogger so everything lands in
// one stream.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  cfg.Logging.Level,
//	    Format: cfg.Logging.Format,
//	    Caller: cfg.Logging.Caller,
//	})
//
//	engineLogger := logging.WithComponent("engine")
//	engineLogger.Info().Int("books", n).Msg("snapshot loaded")
//
// # Configuration
//
// Environment Variables (read by the config package):
//
//	FOLIO_LOGGING_LEVEL   - trace, debug, info, warn, error, disabled (default: info)
//	FOLIO_LOGGING_FORMAT  - json, console (default: json)
//	FOLIO_LOGGING_CALLER  - include caller file:line (default: false)
//
// Log output goes to stderr; stdout carries command results.
//
// # Correlation IDs
//
// Every training run and CLI invocation runs under a correlation ID:
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Info().Msg("training started")
//	// {"level":"info","correlation_id":"1f0c9a2e","message":"Training started"}
//
// The same ID is copied into change event metadata and the run_id tagged log
// lines of a training run, so a run can be followed from trigger to publication.
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send(), and prefer typed fields
// over Msgf:
//
//	logger.Info().Int("model_version", v).Dur("duration", d).Msg("model published")
package logging
