// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package algorithms

import (
	"fmt"
	"sort"

	"github.com/tomtom215/folio/internal/recommend"
)

// ContentIndex answers content-similarity queries over a FeatureMatrix.
//
// Similarities are computed on demand from the row vectors instead of being
// materialized as an n x n matrix:
//
//	sim(a, b) = dot(v_a, v_b) / (|v_a| * |v_b|)
//
// sim(a, a) is 1 for every book, including books with empty text, and a book
// with a zero vector has similarity 0 with every other book.
type ContentIndex struct {
	features *FeatureMatrix
}

// NewContentIndex creates a content index over fm.
func NewContentIndex(fm *FeatureMatrix) *ContentIndex {
	return &ContentIndex{features: fm}
}

// Features returns the underlying feature matrix.
func (c *ContentIndex) Features() *FeatureMatrix {
	return c.features
}

// similarityRows returns the cosine similarity of two rows.
func (c *ContentIndex) similarityRows(i, j int) float64 {
	if i == j {
		return 1
	}
	fm := c.features
	return cosineSimilarity(fm.Rows[i], fm.Rows[j], fm.Norms[i], fm.Norms[j])
}

// Similarity returns the content similarity of two books.
func (c *ContentIndex) Similarity(a, b int) (float64, error) {
	i, ok := c.features.Row(a)
	if !ok {
		return 0, fmt.Errorf("%w: book %d", recommend.ErrNotFound, a)
	}
	j, ok := c.features.Row(b)
	if !ok {
		return 0, fmt.Errorf("%w: book %d", recommend.ErrNotFound, b)
	}
	return c.similarityRows(i, j), nil
}

// SimilarBooks returns up to k books most similar to bookID, excluding bookID
// itself, sorted by score descending with ties in catalog order.
func (c *ContentIndex) SimilarBooks(bookID, k int) ([]recommend.ScoredBook, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", recommend.ErrInvalidArgument, k)
	}
	row, ok := c.features.Row(bookID)
	if !ok {
		return nil, fmt.Errorf("%w: book %d", recommend.ErrNotFound, bookID)
	}

	fm := c.features
	scored := make([]recommend.ScoredBook, 0, fm.Len()-1)
	for j := 0; j < fm.Len(); j++ {
		if j == row {
			continue
		}
		scored = append(scored, recommend.ScoredBook{
			BookID: fm.BookIDs[j],
			Score:  c.similarityRows(row, j),
		})
	}

	// Stable sort keeps catalog order among equal scores
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}
