// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package algorithms

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/folio/internal/recommend"
)

// Book ids of the fantasy/cooking fixture.
const (
	bookA = 1
	bookB = 2
	bookC = 3
)

// fantasyCatalog returns two textually similar fantasy books and one cookbook.
func fantasyCatalog() []recommend.BookRecord {
	return []recommend.BookRecord{
		{ID: bookA, Title: "fantasy dragon saga"},
		{ID: bookB, Title: "fantasy dragon epic"},
		{ID: bookC, Title: "cooking recipes"},
	}
}

// testConfig returns the default engine config with rate limiting disabled.
func testConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.RetrainMinInterval = 0
	cfg.Workers = 2
	return cfg
}

// buildModel trains a TrainedModel or fails the test.
func buildModel(t *testing.T, snap *recommend.Snapshot, cfg *recommend.Config) *TrainedModel {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	b := NewBuilder(zerolog.New(io.Discard))
	m, err := b.Build(context.Background(), snap, cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	tm, ok := m.(*TrainedModel)
	if !ok {
		t.Fatalf("Build() returned %T, want *TrainedModel", m)
	}
	return tm
}

// bookIDs extracts the ids of a ranked list.
func bookIDs(items []recommend.ScoredBook) []int {
	ids := make([]int, len(items))
	for i, it := range items {
		ids[i] = it.BookID
	}
	return ids
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
