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

// popularCatalog contains:
//
//	1 X: 5.0 from 1 rating (novel)
//	2 Y: 4.5 from 200 ratings (novel)
//	3 Z: unrated
//	4 W: 3.0 from 50 ratings (manga)
//	5 V: unrated (manga)
func popularCatalog() []recommend.BookRecord {
	return []recommend.BookRecord{
		{ID: 1, Title: "X", AverageRating: 5.0, RatingsCount: 1, IsNovel: true, Categories: []string{"Fantasy"}},
		{ID: 2, Title: "Y", AverageRating: 4.5, RatingsCount: 200, IsNovel: true, Categories: []string{"Fantasy"}},
		{ID: 3, Title: "Z"},
		{ID: 4, Title: "W", AverageRating: 3.0, RatingsCount: 50, IsManga: true},
		{ID: 5, Title: "V", IsManga: true},
	}
}

func TestPopularity_Rank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   recommend.PopularQuery
		want    []int
		wantErr error
	}{
		{
			name:  "confident books outrank a single perfect rating",
			query: recommend.PopularQuery{Limit: 10},
			want:  []int{2, 4, 1, 3, 5},
		},
		{
			name:  "limit",
			query: recommend.PopularQuery{Limit: 2},
			want:  []int{2, 4},
		},
		{
			name:  "manga only",
			query: recommend.PopularQuery{Category: recommend.CategoryManga, Limit: 10},
			want:  []int{4, 5},
		},
		{
			name:  "novels only",
			query: recommend.PopularQuery{Category: recommend.CategoryNovel, Limit: 10},
			want:  []int{2, 1},
		},
		{
			name:  "filter expression",
			query: recommend.PopularQuery{Limit: 10, Filter: "book.ratings_count > 100"},
			want:  []int{2},
		},
		{
			name:  "filter on list membership",
			query: recommend.PopularQuery{Limit: 10, Filter: `"Fantasy" in book.categories`},
			want:  []int{2, 1},
		},
		{
			name:    "invalid filter",
			query:   recommend.PopularQuery{Limit: 10, Filter: "book.("},
			wantErr: recommend.ErrInvalidArgument,
		},
		{
			name:    "zero limit",
			query:   recommend.PopularQuery{Limit: 0},
			wantErr: recommend.ErrInvalidArgument,
		},
	}

	p := NewPopularity(PopularityConfig{MinCount: 10})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := p.Rank(context.Background(), popularCatalog(), tt.query)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Rank() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Rank() error = %v", err)
			}
			if ids := bookIDs(got); !equalInts(ids, tt.want) {
				t.Errorf("Rank() = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestPopularity_SmallMinCountIsRaised(t *testing.T) {
	t.Parallel()

	for _, minCount := range []int{-1, 0, 1} {
		p := NewPopularity(PopularityConfig{MinCount: minCount})
		got, err := p.Rank(context.Background(), popularCatalog(), recommend.PopularQuery{Limit: 3})
		if err != nil {
			t.Fatalf("Rank(MinCount=%d) error = %v", minCount, err)
		}
		// A single 5-star rating must not outrank 200 ratings averaging 4.5
		if ids := bookIDs(got); !equalInts(ids, []int{2, 4, 1}) {
			t.Errorf("Rank(MinCount=%d) = %v, want [2 4 1]", minCount, ids)
		}
	}
}

func TestPopularity_UnratedCatalogOrder(t *testing.T) {
	t.Parallel()

	books := []recommend.BookRecord{{ID: 9}, {ID: 3}, {ID: 7}}
	p := NewPopularity(PopularityConfig{MinCount: 10})
	got, err := p.Rank(context.Background(), books, recommend.PopularQuery{Limit: 10})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if ids := bookIDs(got); !equalInts(ids, []int{9, 3, 7}) {
		t.Errorf("Rank() = %v, want catalog order [9 3 7]", ids)
	}
}
