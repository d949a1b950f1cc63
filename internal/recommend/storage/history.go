// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/folio/internal/recommend"
)

const trainingKeyPrefix = "training:"

// ErrNoHistory is returned by Latest when no training run has been recorded.
var ErrNoHistory = errors.New("no training history")

var _ recommend.HistoryRecorder = (*HistoryStore)(nil)

// HistoryStore keeps metadata of successful training runs in BadgerDB,
// keyed by start time so iteration order matches publication order.
type HistoryStore struct {
	db *badger.DB
}

// OpenHistoryStore opens (or creates) the history database at path.
// When inMemory is true path is ignored and nothing touches the disk.
func OpenHistoryStore(path string, inMemory bool) (*HistoryStore, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB internal logs
	opts.ValueLogFileSize = 16 << 20
	opts.SyncWrites = !inMemory

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open training history: %w", err)
	}
	return &HistoryStore{db: db}, nil
}

// NewHistoryStoreFromDB wraps an existing BadgerDB connection.
func NewHistoryStoreFromDB(db *badger.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// trainingKeyTime is fixed width so lexical key order is start time order.
const trainingKeyTime = "20060102T150405.000000000Z"

// trainingKey orders runs by start time. Model versions restart with every
// process, so the run id keeps runs of different processes apart.
func trainingKey(meta recommend.TrainingMetadata) []byte {
	return []byte(trainingKeyPrefix + meta.StartedAt.UTC().Format(trainingKeyTime) + ":" + meta.RunID)
}

// RecordTraining stores the metadata of a published model.
// Recording the same run twice overwrites the earlier entry.
func (s *HistoryStore) RecordTraining(ctx context.Context, meta recommend.TrainingMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if meta.ModelVersion <= 0 {
		return fmt.Errorf("%w: model version %d", recommend.ErrInvalidArgument, meta.ModelVersion)
	}
	if meta.RunID == "" || meta.StartedAt.IsZero() {
		return fmt.Errorf("%w: run id and start time are required", recommend.ErrInvalidArgument)
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal training metadata: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(trainingKey(meta), data); err != nil {
			return fmt.Errorf("set training metadata: %w", err)
		}
		return nil
	})
}

// List returns up to limit runs, newest first. A limit of zero or less returns all runs.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]recommend.TrainingMetadata, error) {
	runs := make([]recommend.TrainingMetadata, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(trainingKeyPrefix)
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration must start past the last key carrying the prefix.
		seek := append([]byte(trainingKeyPrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var meta recommend.TrainingMetadata
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			}); err != nil {
				return fmt.Errorf("decode training metadata %s: %w", it.Item().Key(), err)
			}
			runs = append(runs, meta)
			if limit > 0 && len(runs) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// Latest returns the most recently published run.
func (s *HistoryStore) Latest(ctx context.Context) (recommend.TrainingMetadata, error) {
	runs, err := s.List(ctx, 1)
	if err != nil {
		return recommend.TrainingMetadata{}, err
	}
	if len(runs) == 0 {
		return recommend.TrainingMetadata{}, ErrNoHistory
	}
	return runs[0], nil
}

// Count returns the number of recorded runs.
func (s *HistoryStore) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(trainingKeyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	return count, err
}

// Close closes the underlying database.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
