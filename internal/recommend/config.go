// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package recommend

import (
	"fmt"
	"math"
	"time"
)

// weightTolerance is the allowed deviation of the weight sum from 1.0.
const weightTolerance = 1e-9

// MinPopularityRatingCount is the smallest accepted popularity threshold. With
// a prior weight below 2 a single 5-star rating outranks hundreds of 4.5s.
const MinPopularityRatingCount = 2

// Config contains all configuration for the recommendation engine.
type Config struct {
	// ContentWeight is the hybrid weight of the content component.
	// Default: 0.5.
	ContentWeight float64 `json:"content_weight"`

	// CollaborativeWeight is the hybrid weight of the collaborative component.
	// ContentWeight + CollaborativeWeight must equal 1.0.
	// Default: 0.5.
	CollaborativeWeight float64 `json:"collaborative_weight"`

	// NeighborCount is k for the user k-NN and the default size of
	// similar-book lookups. Clamped to the number of available neighbors.
	// Default: 10.
	NeighborCount int `json:"neighbor_count"`

	// MinRatingCountForPopularity is the rating count a book needs to enter the
	// confident popularity tier. It is also the prior weight of the Bayesian average.
	// Must be at least MinPopularityRatingCount. Default: 10.
	MinRatingCountForPopularity int `json:"min_rating_count_for_popularity"`

	// ColdStartRatingThreshold is the minimum score for a rated book to count
	// as liked when computing the content component.
	// Default: 4.
	ColdStartRatingThreshold int `json:"cold_start_rating_threshold"`

	// BookmarksAsAnchors makes bookmarked books count as liked for the content component.
	// Default: false.
	BookmarksAsAnchors bool `json:"bookmarks_as_anchors"`

	// MaxFeatures caps the TF-IDF vocabulary at the most frequent terms.
	// Default: 500.
	MaxFeatures int `json:"max_features"`

	// RetrainMinInterval is the minimum spacing between accepted retrain requests.
	// Zero disables rate limiting.
	// Default: 1m.
	RetrainMinInterval time.Duration `json:"retrain_min_interval"`

	// Workers bounds parallelism during model builds. Zero means GOMAXPROCS.
	// Default: 0.
	Workers int `json:"workers"`

	// Limits contains result size limits.
	Limits LimitsConfig `json:"limits"`
}

// LimitsConfig bounds result list sizes.
type LimitsConfig struct {
	// DefaultLimit is used when a caller passes a zero limit to the fallback-aware
	// entry points (Recommend, Popular).
	// Default: 20.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit caps every requested list size.
	// Default: 100.
	MaxLimit int `json:"max_limit"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() *Config {
	return &Config{
		ContentWeight:               0.5,
		CollaborativeWeight:         0.5,
		NeighborCount:               10,
		MinRatingCountForPopularity: 10,
		ColdStartRatingThreshold:    4,
		BookmarksAsAnchors:          false,
		MaxFeatures:                 500,
		RetrainMinInterval:          time.Minute,
		Workers:                     0,
		Limits: LimitsConfig{
			DefaultLimit: 20,
			MaxLimit:     100,
		},
	}
}

// Validate checks the configuration for errors. All errors wrap ErrInvalidArgument.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if c.ContentWeight < 0 || c.ContentWeight > 1 {
		return fmt.Errorf("%w: content_weight must be in [0, 1], got %f", ErrInvalidArgument, c.ContentWeight)
	}
	if c.CollaborativeWeight < 0 || c.CollaborativeWeight > 1 {
		return fmt.Errorf("%w: collaborative_weight must be in [0, 1], got %f", ErrInvalidArgument, c.CollaborativeWeight)
	}
	if sum := c.ContentWeight + c.CollaborativeWeight; math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: content_weight + collaborative_weight must equal 1.0, got %f", ErrInvalidArgument, sum)
	}

	if c.NeighborCount < 1 {
		return fmt.Errorf("%w: neighbor_count must be positive, got %d", ErrInvalidArgument, c.NeighborCount)
	}
	if c.MinRatingCountForPopularity < MinPopularityRatingCount {
		return fmt.Errorf("%w: min_rating_count_for_popularity must be at least %d, got %d",
			ErrInvalidArgument, MinPopularityRatingCount, c.MinRatingCountForPopularity)
	}
	if c.ColdStartRatingThreshold < MinRating || c.ColdStartRatingThreshold > MaxRating {
		return fmt.Errorf("%w: cold_start_rating_threshold must be in [%d, %d], got %d",
			ErrInvalidArgument, MinRating, MaxRating, c.ColdStartRatingThreshold)
	}
	if c.MaxFeatures < 1 {
		return fmt.Errorf("%w: max_features must be positive, got %d", ErrInvalidArgument, c.MaxFeatures)
	}
	if c.RetrainMinInterval < 0 {
		return fmt.Errorf("%w: retrain_min_interval must be non-negative, got %v", ErrInvalidArgument, c.RetrainMinInterval)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidArgument, c.Workers)
	}

	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("%w: limits.default_limit must be positive, got %d", ErrInvalidArgument, c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("%w: limits.max_limit must be >= limits.default_limit, got %d < %d",
			ErrInvalidArgument, c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
