// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package algorithms

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/folio/internal/recommend"
)

// Builder trains TrainedModels from snapshots. The content and collaborative
// halves are independent and are built concurrently.
type Builder struct {
	logger zerolog.Logger
}

// NewBuilder creates a model builder.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBuilder(logger zerolog.Logger) *Builder {
	return &Builder{logger: logger.With().Str("component", "model_builder").Logger()}
}

// Build trains a model from snap. The snapshot is copied, so later changes to
// it do not affect the returned model.
func (b *Builder) Build(ctx context.Context, snap *recommend.Snapshot, cfg *recommend.Config) (recommend.Model, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil snapshot", recommend.ErrInvalidArgument)
	}
	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}

	catalog := cloneCatalog(snap.Books)
	index := make(map[int]int, len(catalog))
	inCatalog := make(map[int]struct{}, len(catalog))
	for i := range catalog {
		index[catalog[i].ID] = i
		inCatalog[catalog[i].ID] = struct{}{}
	}

	var (
		content *ContentIndex
		collab  *CollaborativeModel
		ratings *RatingMatrix
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fm, err := BuildFeatures(gctx, catalog, cfg.MaxFeatures)
		if err != nil {
			return fmt.Errorf("build features: %w", err)
		}
		content = NewContentIndex(fm)
		return nil
	})
	g.Go(func() error {
		ratings = BuildRatingMatrix(snap.Ratings, inCatalog)
		m, err := NewCollaborativeModel(gctx, KNNConfig{
			K:          cfg.NeighborCount,
			NumWorkers: cfg.Workers,
		}, ratings, catalog)
		if err != nil {
			return fmt.Errorf("build collaborative model: %w", err)
		}
		collab = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bookmarks, bookmarkCount := collectBookmarks(snap.Bookmarks, index)

	if ratings.Dropped > 0 {
		b.logger.Warn().
			Int("dropped", ratings.Dropped).
			Msg("ignored ratings for books missing from the catalog")
	}

	model := &TrainedModel{
		catalog:   catalog,
		index:     index,
		content:   content,
		collab:    collab,
		bookmarks: bookmarks,
		hybrid: HybridConfig{
			ContentWeight:       cfg.ContentWeight,
			CollaborativeWeight: cfg.CollaborativeWeight,
			LikeThreshold:       cfg.ColdStartRatingThreshold,
			BookmarksAsAnchors:  cfg.BookmarksAsAnchors,
		},
		stats: recommend.ModelStats{
			Books:          len(catalog),
			Ratings:        ratings.Count,
			Users:          len(ratings.Users),
			Bookmarks:      bookmarkCount,
			Vocabulary:     len(content.Features().Vocabulary),
			DroppedRatings: ratings.Dropped,
		},
	}

	b.logger.Debug().
		Int("books", model.stats.Books).
		Int("ratings", model.stats.Ratings).
		Int("users", model.stats.Users).
		Int("vocabulary", model.stats.Vocabulary).
		Msg("model built")

	return model, nil
}

// cloneCatalog deep-copies the slice fields of every record.
func cloneCatalog(books []recommend.BookRecord) []recommend.BookRecord {
	out := make([]recommend.BookRecord, len(books))
	for i := range books {
		out[i] = books[i]
		out[i].Authors = append([]string(nil), books[i].Authors...)
		out[i].Categories = append([]string(nil), books[i].Categories...)
	}
	return out
}

// collectBookmarks deduplicates bookmarks per user, keeps only catalog books
// and orders each user's list by catalog position.
func collectBookmarks(marks []recommend.Bookmark, index map[int]int) (map[int][]int, int) {
	seen := make(map[[2]int]struct{}, len(marks))
	byUser := make(map[int][]int)
	for _, bm := range marks {
		if _, ok := index[bm.BookID]; !ok {
			continue
		}
		key := [2]int{bm.UserID, bm.BookID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		byUser[bm.UserID] = append(byUser[bm.UserID], bm.BookID)
	}
	for _, books := range byUser {
		sort.Slice(books, func(i, j int) bool {
			return index[books[i]] < index[books[j]]
		})
	}
	return byUser, len(seen)
}
