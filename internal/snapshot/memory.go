// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package snapshot

import (
	"context"
	"errors"
	"sync"

	"github.com/tomtom215/folio/internal/recommend"
)

// ErrNoSnapshot is returned when a source has nothing to load.
var ErrNoSnapshot = errors.New("no snapshot available")

// MemorySource serves the most recently Set snapshot.
type MemorySource struct {
	mu   sync.RWMutex
	snap *recommend.Snapshot
}

// NewMemorySource creates a source holding snap, which may be nil.
func NewMemorySource(snap *recommend.Snapshot) *MemorySource {
	s := &MemorySource{}
	s.Set(snap)
	return s
}

// Set replaces the held snapshot.
func (s *MemorySource) Set(snap *recommend.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = copySnapshot(snap)
}

// LoadSnapshot returns a copy of the held snapshot.
func (s *MemorySource) LoadSnapshot(ctx context.Context) (*recommend.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, ErrNoSnapshot
	}
	return copySnapshot(s.snap), nil
}

// copySnapshot copies the top-level slices so callers can append or reorder
// without affecting the source. Book records are shared read-only.
func copySnapshot(snap *recommend.Snapshot) *recommend.Snapshot {
	if snap == nil {
		return nil
	}
	return &recommend.Snapshot{
		Books:     append([]recommend.BookRecord(nil), snap.Books...),
		Ratings:   append([]recommend.RatingEntry(nil), snap.Ratings...),
		Bookmarks: append([]recommend.Bookmark(nil), snap.Bookmarks...),
		TakenAt:   snap.TakenAt,
	}
}
