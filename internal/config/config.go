// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package config

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/folio/internal/recommend"
	"github.com/tomtom215/folio/internal/validation"
)

// Config holds all application configuration.
type Config struct {
	Logging    LoggingConfig    `koanf:"logging"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Snapshot   SnapshotConfig   `koanf:"snapshot"`
	History    HistoryConfig    `koanf:"history"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig holds the recommendation engine options.
type RecommendConfig struct {
	ContentWeight               float64       `koanf:"content_weight" validate:"gte=0,lte=1"`
	CollaborativeWeight         float64       `koanf:"collaborative_weight" validate:"gte=0,lte=1"`
	NeighborCount               int           `koanf:"neighbor_count" validate:"min=1"`
	MinRatingCountForPopularity int           `koanf:"min_rating_count_for_popularity" validate:"gte=2"`
	ColdStartRatingThreshold    int           `koanf:"cold_start_rating_threshold" validate:"gte=1,lte=5"`
	BookmarksAsAnchors          bool          `koanf:"bookmarks_as_anchors"`
	MaxFeatures                 int           `koanf:"max_features" validate:"min=1"`
	RetrainMinInterval          time.Duration `koanf:"retrain_min_interval" validate:"gte=0"`
	Workers                     int           `koanf:"workers" validate:"gte=0"`
	DefaultLimit                int           `koanf:"default_limit" validate:"min=1"`
	MaxLimit                    int           `koanf:"max_limit" validate:"min=1"`
	TrainTimeout                time.Duration `koanf:"train_timeout" validate:"gt=0"`
}

// SnapshotConfig locates the external store exports.
type SnapshotConfig struct {
	CatalogPath   string        `koanf:"catalog_path"`
	RatingsPath   string        `koanf:"ratings_path"`
	BookmarksPath string        `koanf:"bookmarks_path"`
	PollInterval  time.Duration `koanf:"poll_interval" validate:"gte=0"` // 0 disables polling
	Breaker       BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures the circuit breaker around the snapshot source.
type BreakerConfig struct {
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"min=1"`
	MaxRequests      uint32        `koanf:"max_requests" validate:"min=1"`
	Interval         time.Duration `koanf:"interval" validate:"gte=0"`
	Timeout          time.Duration `koanf:"timeout" validate:"gt=0"`
}

// HistoryConfig configures the training history store.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// SupervisorConfig configures the watch command's supervisor tree.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold" validate:"gte=0"`
	FailureDecay     float64       `koanf:"failure_decay" validate:"gte=0"`
	FailureBackoff   time.Duration `koanf:"failure_backoff" validate:"gte=0"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
	TrainOnStartup   bool          `koanf:"train_on_startup"`
	EventBuffer      int           `koanf:"event_buffer" validate:"gte=0"`
}

// Validate checks struct tags, then the rules spanning several fields.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	r := c.Recommend
	if sum := r.ContentWeight + r.CollaborativeWeight; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("recommend.content_weight + recommend.collaborative_weight must equal 1.0, got %g", sum)
	}
	if r.MaxLimit < r.DefaultLimit {
		return fmt.Errorf("recommend.max_limit (%d) must be >= recommend.default_limit (%d)", r.MaxLimit, r.DefaultLimit)
	}
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}
	if (c.Snapshot.CatalogPath == "") != (c.Snapshot.RatingsPath == "") {
		return fmt.Errorf("snapshot.catalog_path and snapshot.ratings_path must be set together")
	}
	return nil
}

// HasSnapshotFiles reports whether a file-backed snapshot source is configured.
func (c *Config) HasSnapshotFiles() bool {
	return c.Snapshot.CatalogPath != "" && c.Snapshot.RatingsPath != ""
}

// EngineConfig converts the recommend section into the engine's configuration.
func (c *Config) EngineConfig() *recommend.Config {
	r := c.Recommend
	return &recommend.Config{
		ContentWeight:               r.ContentWeight,
		CollaborativeWeight:         r.CollaborativeWeight,
		NeighborCount:               r.NeighborCount,
		MinRatingCountForPopularity: r.MinRatingCountForPopularity,
		ColdStartRatingThreshold:    r.ColdStartRatingThreshold,
		BookmarksAsAnchors:          r.BookmarksAsAnchors,
		MaxFeatures:                 r.MaxFeatures,
		RetrainMinInterval:          r.RetrainMinInterval,
		Workers:                     r.Workers,
		Limits: recommend.LimitsConfig{
			DefaultLimit: r.DefaultLimit,
			MaxLimit:     r.MaxLimit,
		},
	}
}
