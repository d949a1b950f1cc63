// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package algorithms

import (
	"errors"
	"reflect"
	"testing"

	"github.com/tomtom215/folio/internal/recommend"
)

func TestTrainedModel_ForYou(t *testing.T) {
	t.Parallel()

	snap := &recommend.Snapshot{
		Books: fantasyCatalog(),
		Ratings: []recommend.RatingEntry{
			{UserID: 1, BookID: bookA, Score: 5},
			{UserID: 4, BookID: bookC, Score: 2}, // disliked, not an anchor
		},
		Bookmarks: []recommend.Bookmark{
			{UserID: 3, BookID: bookA},
			{UserID: 3, BookID: bookA},
		},
	}

	t.Run("textually similar book ranks above unrelated book", func(t *testing.T) {
		t.Parallel()
		m := buildModel(t, snap, nil)
		items, cold, err := m.ForYou(1, 10)
		if err != nil {
			t.Fatalf("ForYou() error = %v", err)
		}
		if cold {
			t.Fatal("ForYou() coldStart = true, want false")
		}
		if ids := bookIDs(items); !equalInts(ids, []int{bookB, bookC}) {
			t.Fatalf("ForYou(1) = %v, want [%d %d]", ids, bookB, bookC)
		}
		if items[0].Score <= 0 {
			t.Errorf("score of B = %f, want > 0", items[0].Score)
		}
		if items[0].Score <= items[1].Score {
			t.Errorf("score of B %f should exceed score of C %f", items[0].Score, items[1].Score)
		}
	})

	t.Run("cold user", func(t *testing.T) {
		t.Parallel()
		m := buildModel(t, snap, nil)
		items, cold, err := m.ForYou(2, 10)
		if err != nil {
			t.Fatalf("ForYou() error = %v", err)
		}
		if !cold || items != nil {
			t.Errorf("ForYou(2) = (%v, %v), want (nil, true)", items, cold)
		}
	})

	t.Run("bookmarks alone are not cold", func(t *testing.T) {
		t.Parallel()
		m := buildModel(t, snap, nil)
		items, cold, err := m.ForYou(3, 10)
		if err != nil {
			t.Fatalf("ForYou() error = %v", err)
		}
		if cold {
			t.Fatal("ForYou(3) coldStart = true, want false")
		}
		// No anchors and no predictions: nothing scores above 0
		if len(items) != 0 {
			t.Errorf("ForYou(3) = %v, want an empty list", bookIDs(items))
		}
	})

	t.Run("bookmarks as anchors", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.BookmarksAsAnchors = true
		m := buildModel(t, snap, cfg)
		items, _, err := m.ForYou(3, 10)
		if err != nil {
			t.Fatalf("ForYou() error = %v", err)
		}
		// The bookmarked book itself is excluded and the cookbook scores 0
		if ids := bookIDs(items); !equalInts(ids, []int{bookB}) {
			t.Errorf("ForYou(3) = %v, want [%d]", ids, bookB)
		}
	})

	t.Run("low ratings are not anchors", func(t *testing.T) {
		t.Parallel()
		m := buildModel(t, snap, nil)
		items, _, err := m.ForYou(4, 10)
		if err != nil {
			t.Fatalf("ForYou() error = %v", err)
		}
		// A is predicted from its snapshot mean; B has no signal at all
		if ids := bookIDs(items); !equalInts(ids, []int{bookA}) {
			t.Errorf("ForYou(4) = %v, want [%d]", ids, bookA)
		}
		for _, it := range items {
			if it.Score <= 0 {
				t.Errorf("ForYou(4) item %d score = %f, want > 0", it.BookID, it.Score)
			}
		}
	})

	t.Run("truncates to n", func(t *testing.T) {
		t.Parallel()
		m := buildModel(t, snap, nil)
		items, _, err := m.ForYou(1, 1)
		if err != nil {
			t.Fatalf("ForYou() error = %v", err)
		}
		if len(items) != 1 {
			t.Errorf("len(ForYou(1, 1)) = %d, want 1", len(items))
		}
	})

	t.Run("invalid n", func(t *testing.T) {
		t.Parallel()
		m := buildModel(t, snap, nil)
		if _, _, err := m.ForYou(1, 0); !errors.Is(err, recommend.ErrInvalidArgument) {
			t.Errorf("ForYou(n=0) error = %v, want ErrInvalidArgument", err)
		}
	})
}

func TestTrainedModel_Deterministic(t *testing.T) {
	t.Parallel()

	books := []recommend.BookRecord{
		{ID: 1, Title: "The Dragon Saga", Authors: []string{"Ann Lee"}, Categories: []string{"Fantasy"}},
		{ID: 2, Title: "Dragon Epic", Categories: []string{"Fantasy"}, Description: "dragons and knights"},
		{ID: 3, Title: "Weeknight Cooking", Categories: []string{"Cooking"}},
		{ID: 4, Title: "Knights of the Sea", Categories: []string{"Adventure"}},
		{ID: 5, Title: "Baking Bread", Categories: []string{"Cooking"}, Description: "recipes for bread"},
		{ID: 6},
	}
	var ratings []recommend.RatingEntry
	for u := 1; u <= 8; u++ {
		for b := 1; b <= 6; b++ {
			if (u+b)%3 == 0 {
				ratings = append(ratings, recommend.RatingEntry{UserID: u, BookID: b, Score: 1 + (u*b)%5})
			}
		}
	}
	snap := &recommend.Snapshot{Books: books, Ratings: ratings}

	first := buildModel(t, snap, nil)
	second := buildModel(t, snap, nil)

	for _, b := range books {
		s1, err1 := first.SimilarBooks(b.ID, 5)
		s2, err2 := second.SimilarBooks(b.ID, 5)
		if err1 != nil || err2 != nil {
			t.Fatalf("SimilarBooks(%d) errors = %v, %v", b.ID, err1, err2)
		}
		if !reflect.DeepEqual(s1, s2) {
			t.Errorf("SimilarBooks(%d) differs between builds: %v vs %v", b.ID, s1, s2)
		}
	}
	for u := 1; u <= 9; u++ {
		r1, _ := first.RecommendForUser(u, 10)
		r2, _ := second.RecommendForUser(u, 10)
		if !reflect.DeepEqual(r1, r2) {
			t.Errorf("RecommendForUser(%d) differs between builds: %v vs %v", u, r1, r2)
		}
		f1, c1, _ := first.ForYou(u, 10)
		f2, c2, _ := second.ForYou(u, 10)
		if c1 != c2 || !reflect.DeepEqual(f1, f2) {
			t.Errorf("ForYou(%d) differs between builds", u)
		}
	}
}
