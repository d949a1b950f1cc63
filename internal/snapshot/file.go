// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/folio/internal/recommend"
)

// FileConfig locates the JSON exports of the external store.
type FileConfig struct {
	// CatalogPath is a JSON array of book records. Required.
	CatalogPath string

	// RatingsPath is a JSON array of rating entries. Required.
	RatingsPath string

	// BookmarksPath is a JSON array of bookmarks. Optional; a missing file
	// yields no bookmarks.
	BookmarksPath string
}

// FileSource loads snapshots from JSON files on every call, so the latest
// export is always used.
type FileSource struct {
	cfg FileConfig
	now func() time.Time
}

// NewFileSource creates a file-backed source.
func NewFileSource(cfg FileConfig) (*FileSource, error) {
	if cfg.CatalogPath == "" {
		return nil, fmt.Errorf("%w: catalog path is required", recommend.ErrInvalidArgument)
	}
	if cfg.RatingsPath == "" {
		return nil, fmt.Errorf("%w: ratings path is required", recommend.ErrInvalidArgument)
	}
	return &FileSource{cfg: cfg, now: time.Now}, nil
}

// LoadSnapshot reads and decodes all configured files.
func (s *FileSource) LoadSnapshot(ctx context.Context) (*recommend.Snapshot, error) {
	snap := &recommend.Snapshot{TakenAt: s.now().UTC()}

	if err := readJSON(ctx, s.cfg.CatalogPath, &snap.Books); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if err := readJSON(ctx, s.cfg.RatingsPath, &snap.Ratings); err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	if s.cfg.BookmarksPath != "" {
		err := readJSON(ctx, s.cfg.BookmarksPath, &snap.Bookmarks)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load bookmarks: %w", err)
		}
	}
	return snap, nil
}

// Fingerprint identifies the state of each export file by size and
// modification time. Equal fingerprints mean the file has not changed.
type Fingerprint struct {
	Catalog   string
	Ratings   string
	Bookmarks string
}

// Fingerprint returns the current fingerprint of the configured files.
// A missing bookmarks file is a valid state, not an error.
func (s *FileSource) Fingerprint(ctx context.Context) (Fingerprint, error) {
	if err := ctx.Err(); err != nil {
		return Fingerprint{}, err
	}
	var (
		fp  Fingerprint
		err error
	)
	if fp.Catalog, err = fileFingerprint(s.cfg.CatalogPath); err != nil {
		return Fingerprint{}, err
	}
	if fp.Ratings, err = fileFingerprint(s.cfg.RatingsPath); err != nil {
		return Fingerprint{}, err
	}
	if s.cfg.BookmarksPath != "" {
		fp.Bookmarks, err = fileFingerprint(s.cfg.BookmarksPath)
		if errors.Is(err, fs.ErrNotExist) {
			fp.Bookmarks, err = "missing", nil
		}
		if err != nil {
			return Fingerprint{}, err
		}
	}
	return fp, nil
}

func fileFingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	return fmt.Sprintf("%d:%d", info.Size(), info.ModTime().UnixNano()), nil
}

func readJSON(ctx context.Context, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
