// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package algorithms

import (
	"github.com/tomtom215/folio/internal/recommend"
)

// TrainedModel is the immutable product of one training run: the content
// index, the collaborative model and the bookmark sets, all built from the
// same snapshot. It is never mutated after construction and is safe for
// concurrent use.
type TrainedModel struct {
	catalog []recommend.BookRecord
	index   map[int]int

	content *ContentIndex
	collab  *CollaborativeModel

	// bookmarks maps user_id -> book ids in catalog order
	bookmarks map[int][]int

	hybrid HybridConfig
	stats  recommend.ModelStats
}

// SimilarBooks returns books most similar in content to bookID.
func (m *TrainedModel) SimilarBooks(bookID, k int) ([]recommend.ScoredBook, error) {
	return m.content.SimilarBooks(bookID, k)
}

// PredictScore estimates the rating userID would give bookID.
func (m *TrainedModel) PredictScore(userID, bookID int) (float64, error) {
	return m.collab.PredictScore(userID, bookID)
}

// RecommendForUser ranks unrated books by collaborative prediction.
func (m *TrainedModel) RecommendForUser(userID, k int) ([]recommend.ScoredBook, error) {
	return m.collab.RecommendForUser(userID, k)
}

// Book returns the catalog record for bookID.
func (m *TrainedModel) Book(bookID int) (recommend.BookRecord, bool) {
	i, ok := m.index[bookID]
	if !ok {
		return recommend.BookRecord{}, false
	}
	return m.catalog[i], true
}

// Catalog returns the catalog in snapshot order.
func (m *TrainedModel) Catalog() []recommend.BookRecord {
	return m.catalog
}

// Stats describes the data the model was built from.
func (m *TrainedModel) Stats() recommend.ModelStats {
	return m.stats
}

// Bookmarks returns the catalog books userID bookmarked.
func (m *TrainedModel) Bookmarks(userID int) []int {
	return m.bookmarks[userID]
}
