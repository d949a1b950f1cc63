// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package algorithms

import (
	"context"
	"math"
	"testing"

	"github.com/tomtom215/folio/internal/recommend"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"lowercases and drops stop words", "The Dragon and the Saga", []string{"dragon", "saga"}},
		{"drops single characters", "The Dragon's Saga, vol. 2", []string{"dragon", "saga", "vol"}},
		{"keeps digits and underscores", "book_two 1984", []string{"book_two", "1984"}},
		{"empty text", "", []string{}},
		{"only stop words", "and the of", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Tokenize(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Tokenize(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuildFeatures(t *testing.T) {
	t.Parallel()

	t.Run("empty catalog yields empty matrix", func(t *testing.T) {
		t.Parallel()
		fm, err := BuildFeatures(context.Background(), nil, 10)
		if err != nil {
			t.Fatalf("BuildFeatures() error = %v", err)
		}
		if fm.Len() != 0 || len(fm.Vocabulary) != 0 {
			t.Errorf("got %d rows and %d terms, want 0 and 0", fm.Len(), len(fm.Vocabulary))
		}
	})

	t.Run("vocabulary keeps most frequent terms alphabetically", func(t *testing.T) {
		t.Parallel()
		books := []recommend.BookRecord{
			{ID: 1, Title: "alpha alpha beta"},
			{ID: 2, Title: "alpha gamma"},
		}
		fm, err := BuildFeatures(context.Background(), books, 2)
		if err != nil {
			t.Fatalf("BuildFeatures() error = %v", err)
		}
		want := []string{"alpha", "beta"}
		if len(fm.Vocabulary) != 2 || fm.Vocabulary[0] != want[0] || fm.Vocabulary[1] != want[1] {
			t.Errorf("Vocabulary = %v, want %v", fm.Vocabulary, want)
		}
	})

	t.Run("rows are unit length or zero", func(t *testing.T) {
		t.Parallel()
		books := append(fantasyCatalog(), recommend.BookRecord{ID: 4})
		fm, err := BuildFeatures(context.Background(), books, 500)
		if err != nil {
			t.Fatalf("BuildFeatures() error = %v", err)
		}
		for i, norm := range fm.Norms {
			if fm.BookIDs[i] == 4 {
				if norm != 0 {
					t.Errorf("empty-text book norm = %f, want 0", norm)
				}
				continue
			}
			if math.Abs(norm-1) > 1e-12 {
				t.Errorf("row %d norm = %f, want 1", i, norm)
			}
		}
	})

	t.Run("smoothed idf weights rare terms higher", func(t *testing.T) {
		t.Parallel()
		fm, err := BuildFeatures(context.Background(), fantasyCatalog(), 500)
		if err != nil {
			t.Fatalf("BuildFeatures() error = %v", err)
		}
		col := make(map[string]int)
		for j, term := range fm.Vocabulary {
			col[term] = j
		}
		row, _ := fm.Row(bookA)
		// "fantasy" appears in two books, "saga" only in one
		if fm.Rows[row][col["saga"]] <= fm.Rows[row][col["fantasy"]] {
			t.Errorf("saga weight %f should exceed fantasy weight %f",
				fm.Rows[row][col["saga"]], fm.Rows[row][col["fantasy"]])
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := BuildFeatures(ctx, fantasyCatalog(), 500); err == nil {
			t.Error("BuildFeatures() with canceled context should return error")
		}
	})
}
