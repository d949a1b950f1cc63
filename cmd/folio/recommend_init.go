// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/folio/internal/config"
	"github.com/tomtom215/folio/internal/recommend"
	"github.com/tomtom215/folio/internal/recommend/algorithms"
	"github.com/tomtom215/folio/internal/recommend/storage"
	"github.com/tomtom215/folio/internal/snapshot"
)

// errNoSnapshotFiles is returned when a command needs data but the snapshot
// section names no export files.
var errNoSnapshotFiles = errors.New("snapshot.catalog_path and snapshot.ratings_path must be configured")

// RecommendComponents holds the engine and the collaborators built for it.
type RecommendComponents struct {
	Engine  *recommend.Engine
	Files   *snapshot.FileSource
	Source  *snapshot.BreakerSource
	History *storage.HistoryStore
}

// initRecommend wires the engine from configuration: the file exports behind
// a circuit breaker as its snapshot source, and the badger history store when
// enabled.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(cfg *config.Config, logger zerolog.Logger) (*RecommendComponents, error) {
	if !cfg.HasSnapshotFiles() {
		return nil, errNoSnapshotFiles
	}

	files, err := snapshot.NewFileSource(snapshot.FileConfig{
		CatalogPath:   cfg.Snapshot.CatalogPath,
		RatingsPath:   cfg.Snapshot.RatingsPath,
		BookmarksPath: cfg.Snapshot.BookmarksPath,
	})
	if err != nil {
		return nil, err
	}

	source := snapshot.NewBreakerSource(files, buildBreakerConfig(cfg), logger)

	components := &RecommendComponents{Files: files, Source: source}
	opts := []recommend.Option{recommend.WithSource(source)}

	if cfg.History.Enabled {
		history, err := storage.OpenHistoryStore(cfg.History.Path, false)
		if err != nil {
			return nil, err
		}
		components.History = history
		opts = append(opts, recommend.WithHistory(history))
		logger.Debug().Str("path", cfg.History.Path).Msg("training history enabled")
	}

	engineCfg := cfg.EngineConfig()
	engine, err := recommend.NewEngine(engineCfg,
		algorithms.NewBuilder(logger),
		algorithms.NewPopularity(algorithms.PopularityConfig{MinCount: engineCfg.MinRatingCountForPopularity}),
		logger,
		opts...)
	if err != nil {
		components.Close()
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}
	components.Engine = engine

	logger.Debug().
		Float64("content_weight", engineCfg.ContentWeight).
		Float64("collaborative_weight", engineCfg.CollaborativeWeight).
		Int("neighbor_count", engineCfg.NeighborCount).
		Str("catalog_path", cfg.Snapshot.CatalogPath).
		Msg("recommendation engine initialized")

	return components, nil
}

// buildBreakerConfig maps the snapshot breaker section onto the decorator's config.
func buildBreakerConfig(cfg *config.Config) snapshot.BreakerConfig {
	bc := snapshot.DefaultBreakerConfig()
	bc.FailureThreshold = cfg.Snapshot.Breaker.FailureThreshold
	bc.MaxRequests = cfg.Snapshot.Breaker.MaxRequests
	bc.Interval = cfg.Snapshot.Breaker.Interval
	bc.Timeout = cfg.Snapshot.Breaker.Timeout
	return bc
}

// Close releases the history store, if one was opened.
func (c *RecommendComponents) Close() error {
	if c == nil || c.History == nil {
		return nil
	}
	return c.History.Close()
}
