// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package recommend

import (
	"context"
	"errors"
	"fmt"
)

// Model is a fully built, immutable recommendation model. All methods must be
// safe for concurrent use; the engine never mutates a published model.
type Model interface {
	// SimilarBooks returns up to k books most similar in content to bookID,
	// excluding bookID, sorted by score descending with ties in catalog order.
	SimilarBooks(bookID, k int) ([]ScoredBook, error)

	// PredictScore estimates the rating userID would give bookID.
	PredictScore(userID, bookID int) (float64, error)

	// RecommendForUser returns up to k unrated books by predicted score.
	// Users without ratings get an empty list.
	RecommendForUser(userID, k int) ([]ScoredBook, error)

	// ForYou returns up to n hybrid-scored books. coldStart is true when the
	// user has neither ratings nor bookmarks, in which case items is nil.
	ForYou(userID, n int) (items []ScoredBook, coldStart bool, err error)

	// Book returns the catalog record for bookID.
	Book(bookID int) (BookRecord, bool)

	// Catalog returns the catalog in snapshot order. Callers must not modify it.
	Catalog() []BookRecord

	// Stats describes the data the model was built from.
	Stats() ModelStats
}

// Trainer builds a Model from a snapshot.
type Trainer interface {
	Build(ctx context.Context, snap *Snapshot, cfg *Config) (Model, error)
}

// Ranker produces the popularity ranking over a catalog.
type Ranker interface {
	Rank(ctx context.Context, books []BookRecord, q PopularQuery) ([]ScoredBook, error)
}

// SnapshotSource supplies training snapshots from the external store.
type SnapshotSource interface {
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
}

// HistoryRecorder persists metadata of successful training runs.
type HistoryRecorder interface {
	RecordTraining(ctx context.Context, meta TrainingMetadata) error
}

// ValidateSnapshot rejects snapshots that cannot produce a usable model:
// an empty catalog, duplicate book identifiers, or scores outside the rating scale.
// Ratings that reference books missing from the catalog are not an error here.
func ValidateSnapshot(snap *Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	if len(snap.Books) == 0 {
		return errors.New("empty catalog")
	}

	seen := make(map[int]struct{}, len(snap.Books))
	for i := range snap.Books {
		id := snap.Books[i].ID
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate book id %d", id)
		}
		seen[id] = struct{}{}
	}

	for i := range snap.Ratings {
		r := &snap.Ratings[i]
		if r.Score < MinRating || r.Score > MaxRating {
			return fmt.Errorf("rating by user %d for book %d has score %d outside [%d, %d]",
				r.UserID, r.BookID, r.Score, MinRating, MaxRating)
		}
	}

	return nil
}
