// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct
// metadata and is safe for concurrent use. Fields are named by their koanf
// tag, so a failure on Config.Recommend.ContentWeight is reported as
// "recommend.content_weight".
//
// Example:
//
//	type SnapshotConfig struct {
//	    PollInterval time.Duration `koanf:"poll_interval" validate:"gte=0"`
//	}
//
//	if err := validation.ValidateStruct(&cfg); err != nil {
//	    return fmt.Errorf("invalid configuration: %w", err)
//	}
package validation
