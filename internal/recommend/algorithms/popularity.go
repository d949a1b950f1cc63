// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package algorithms

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/folio/internal/recommend"
)

// Popularity ranks books by catalog rating with the rating count acting as a
// confidence weight. It needs no trained model and is the fallback for cold
// users and for engines without a published model.
//
// Books are ranked in three tiers:
//
//  1. books with at least MinCount ratings
//  2. rated books below MinCount
//  3. unrated books, in catalog order
//
// Within the first two tiers books are ordered by the Bayesian average
//
//	score(b) = (C * m + avg_b * n_b) / (C + n_b)
//
// where C = MinCount and m is the rating-weighted mean over the catalog.
// A single 5-star rating cannot outrank hundreds of 4.5-star ratings.
type Popularity struct {
	minCount int
}

// PopularityConfig contains configuration for the popularity ranker.
type PopularityConfig struct {
	// MinCount is the rating count for the confident tier and the prior weight.
	// Values below recommend.MinPopularityRatingCount are raised to it.
	MinCount int
}

// NewPopularity creates a new popularity ranker.
func NewPopularity(cfg PopularityConfig) *Popularity {
	if cfg.MinCount < recommend.MinPopularityRatingCount {
		cfg.MinCount = recommend.MinPopularityRatingCount
	}
	return &Popularity{minCount: cfg.MinCount}
}

// popularEntry is a ranking candidate.
type popularEntry struct {
	pos   int
	id    int
	tier  int
	score float64
	count int
}

// Rank returns up to q.Limit books of q.Category that pass q.Filter.
func (p *Popularity) Rank(ctx context.Context, books []recommend.BookRecord, q recommend.PopularQuery) ([]recommend.ScoredBook, error) {
	if q.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", recommend.ErrInvalidArgument, q.Limit)
	}

	var filter *BookFilter
	if q.Filter != "" {
		f, err := CompileFilter(q.Filter)
		if err != nil {
			return nil, err
		}
		filter = f
	}

	prior := p.priorMean(books)
	c := float64(p.minCount)

	entries := make([]popularEntry, 0, len(books))
	for i := range books {
		if i%1024 == 0 && ContextCancelled(ctx) {
			return nil, ctx.Err()
		}

		b := &books[i]
		if !q.Category.Matches(b) {
			continue
		}
		if filter != nil {
			ok, err := filter.Match(b)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}

		e := popularEntry{pos: i, id: b.ID, count: b.RatingsCount}
		switch {
		case b.RatingsCount <= 0:
			e.tier = 2
		case b.RatingsCount >= p.minCount:
			e.tier = 0
		default:
			e.tier = 1
		}
		if b.RatingsCount > 0 {
			n := float64(b.RatingsCount)
			e.score = (c*prior + b.AverageRating*n) / (c + n)
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.tier != b.tier {
			return a.tier < b.tier
		}
		if a.score != b.score {
			return a.score > b.score
		}
		if a.count != b.count {
			return a.count > b.count
		}
		return a.pos < b.pos
	})

	if len(entries) > q.Limit {
		entries = entries[:q.Limit]
	}
	out := make([]recommend.ScoredBook, len(entries))
	for i, e := range entries {
		out[i] = recommend.ScoredBook{BookID: e.id, Score: e.score}
	}
	return out, nil
}

// priorMean is the rating-weighted mean rating across rated books.
func (p *Popularity) priorMean(books []recommend.BookRecord) float64 {
	var sum, n float64
	for i := range books {
		if books[i].RatingsCount > 0 {
			sum += books[i].AverageRating * float64(books[i].RatingsCount)
			n += float64(books[i].RatingsCount)
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}
