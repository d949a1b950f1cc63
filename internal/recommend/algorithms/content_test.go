// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package algorithms

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/folio/internal/recommend"
)

func newContentIndex(t *testing.T, books []recommend.BookRecord) *ContentIndex {
	t.Helper()
	fm, err := BuildFeatures(context.Background(), books, 500)
	if err != nil {
		t.Fatalf("BuildFeatures() error = %v", err)
	}
	return NewContentIndex(fm)
}

func TestContentIndex_SimilarBooks(t *testing.T) {
	t.Parallel()

	books := append(fantasyCatalog(), recommend.BookRecord{ID: 4})
	idx := newContentIndex(t, books)

	tests := []struct {
		name    string
		bookID  int
		k       int
		want    []int
		wantErr error
	}{
		{"similar fantasy ranks first", bookA, 2, []int{bookB, bookC}, nil},
		{"truncates to k", bookA, 1, []int{bookB}, nil},
		{"k larger than catalog", bookB, 10, []int{bookA, bookC, 4}, nil},
		{"zero scores keep catalog order", bookC, 3, []int{bookA, bookB, 4}, nil},
		{"empty-text book", 4, 3, []int{bookA, bookB, bookC}, nil},
		{"unknown book", 99, 3, nil, recommend.ErrNotFound},
		{"zero k", bookA, 0, nil, recommend.ErrInvalidArgument},
		{"negative k", bookA, -1, nil, recommend.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := idx.SimilarBooks(tt.bookID, tt.k)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SimilarBooks() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SimilarBooks() error = %v", err)
			}
			if ids := bookIDs(got); !equalInts(ids, tt.want) {
				t.Errorf("SimilarBooks(%d, %d) = %v, want %v", tt.bookID, tt.k, ids, tt.want)
			}
			for i, it := range got {
				if it.BookID == tt.bookID {
					t.Errorf("result includes query book %d", tt.bookID)
				}
				if i > 0 && it.Score > got[i-1].Score {
					t.Errorf("scores not non-increasing at %d: %f > %f", i, it.Score, got[i-1].Score)
				}
			}
		})
	}
}

func TestContentIndex_Similarity(t *testing.T) {
	t.Parallel()

	books := append(fantasyCatalog(), recommend.BookRecord{ID: 4})
	idx := newContentIndex(t, books)
	ids := []int{bookA, bookB, bookC, 4}

	for _, a := range ids {
		self, err := idx.Similarity(a, a)
		if err != nil {
			t.Fatalf("Similarity(%d, %d) error = %v", a, a, err)
		}
		if self != 1 {
			t.Errorf("Similarity(%d, %d) = %f, want 1", a, a, self)
		}
		for _, b := range ids {
			ab, _ := idx.Similarity(a, b)
			ba, _ := idx.Similarity(b, a)
			if ab != ba {
				t.Errorf("Similarity(%d, %d) = %f, Similarity(%d, %d) = %f, want equal", a, b, ab, b, a, ba)
			}
			if ab < 0 || ab > 1 {
				t.Errorf("Similarity(%d, %d) = %f, want within [0, 1]", a, b, ab)
			}
		}
	}

	if sim, _ := idx.Similarity(4, bookA); sim != 0 {
		t.Errorf("empty-text similarity = %f, want 0", sim)
	}
	if _, err := idx.Similarity(99, bookA); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("Similarity() unknown book error = %v, want ErrNotFound", err)
	}
}
