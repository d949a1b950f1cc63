// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/folio/internal/recommend"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	store, err := OpenHistoryStore("", true)
	if err != nil {
		t.Fatalf("OpenHistoryStore() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

func testRun(version int) recommend.TrainingMetadata {
	started := time.Date(2026, 3, 1, 12, 0, version, 0, time.UTC)
	return recommend.TrainingMetadata{
		RunID:        fmt.Sprintf("run-%d", version),
		ModelVersion: version,
		CatalogSize:  10 * version,
		RatingCount:  100 * version,
		Stats:        recommend.ModelStats{Books: 10 * version, Ratings: 90 * version},
		StartedAt:    started,
		Duration:     time.Second,
		DurationMS:   1000,
	}
}

func TestHistoryStore_RecordAndList(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	// Out of order on purpose; keys sort by start time.
	for _, v := range []int{2, 10, 1} {
		if err := store.RecordTraining(ctx, testRun(v)); err != nil {
			t.Fatalf("RecordTraining(%d) error = %v", v, err)
		}
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("List() returned %d runs, want 3", len(runs))
	}
	for i, want := range []int{10, 2, 1} {
		if runs[i].ModelVersion != want {
			t.Errorf("runs[%d].ModelVersion = %d, want %d", i, runs[i].ModelVersion, want)
		}
	}
	if runs[0].Stats.Books != 100 || !runs[0].StartedAt.Equal(testRun(10).StartedAt) {
		t.Errorf("runs[0] = %+v, want the stored metadata", runs[0])
	}

	limited, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(limited) != 2 || limited[1].ModelVersion != 2 {
		t.Errorf("List(2) = %+v, want versions 10 and 2", limited)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
}

func TestHistoryStore_Latest(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Latest(ctx); !errors.Is(err, ErrNoHistory) {
		t.Fatalf("Latest() on empty store error = %v, want ErrNoHistory", err)
	}

	for v := 1; v <= 3; v++ {
		if err := store.RecordTraining(ctx, testRun(v)); err != nil {
			t.Fatalf("RecordTraining(%d) error = %v", v, err)
		}
	}

	latest, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest.ModelVersion != 3 {
		t.Errorf("Latest().ModelVersion = %d, want 3", latest.ModelVersion)
	}
}

func TestHistoryStore_SameRunOverwrites(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	first := testRun(1)
	second := testRun(1)
	second.Stats.Books = 99

	if err := store.RecordTraining(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordTraining(ctx, second); err != nil {
		t.Fatal(err)
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Stats.Books != 99 {
		t.Errorf("List() = %+v, want the single rewritten run", runs)
	}
}

func TestHistoryStore_RepeatedVersionsAcrossProcesses(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	// Each process publishes version 1 with its own run id and start time.
	earlier := testRun(1)
	later := testRun(1)
	later.RunID = "second-process"
	later.StartedAt = earlier.StartedAt.Add(time.Hour)

	for _, run := range []recommend.TrainingMetadata{earlier, later} {
		if err := store.RecordTraining(ctx, run); err != nil {
			t.Fatalf("RecordTraining(%s) error = %v", run.RunID, err)
		}
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("List() returned %d runs, want 2", len(runs))
	}
	if runs[0].RunID != "second-process" || runs[1].RunID != earlier.RunID {
		t.Errorf("List() run ids = [%s %s], want newest first", runs[0].RunID, runs[1].RunID)
	}
}

func TestHistoryStore_RecordErrors(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	t.Run("unpublished run", func(t *testing.T) {
		t.Parallel()
		err := store.RecordTraining(context.Background(), recommend.TrainingMetadata{RunID: "failed"})
		if !errors.Is(err, recommend.ErrInvalidArgument) {
			t.Errorf("RecordTraining(version 0) error = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("missing run id", func(t *testing.T) {
		t.Parallel()
		run := testRun(1)
		run.RunID = ""
		if err := store.RecordTraining(context.Background(), run); !errors.Is(err, recommend.ErrInvalidArgument) {
			t.Errorf("RecordTraining(no run id) error = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := store.RecordTraining(ctx, testRun(1)); !errors.Is(err, context.Canceled) {
			t.Errorf("RecordTraining() error = %v, want context.Canceled", err)
		}
	})
}

func TestHistoryStore_Persistence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	store, err := OpenHistoryStore(dir, false)
	if err != nil {
		t.Fatalf("OpenHistoryStore() error = %v", err)
	}
	if err := store.RecordTraining(ctx, testRun(4)); err != nil {
		t.Fatalf("RecordTraining() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenHistoryStore(dir, false)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	latest, err := reopened.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest.ModelVersion != 4 {
		t.Errorf("Latest().ModelVersion after reopen = %d, want 4", latest.ModelVersion)
	}
}
