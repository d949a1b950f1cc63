// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

// Package storage records the history of training runs.
//
// Trained models themselves live only in memory; what is persisted is the
// metadata of each successful run (run id, model version, snapshot sizes,
// model statistics, and timings) so operators can see when and from what
// data the serving model was built.
//
// # Storage Format
//
// Runs are stored in BadgerDB as JSON values keyed by start time and run id:
//
//	training:20260301T120007.000000000Z:<run id> -> {"run_id": "...", "model_version": 7, ...}
//
// The fixed-width UTC timestamp keeps lexical key order equal to start order,
// so List walks the prefix in reverse to return the newest runs first. Model
// versions restart with each process; the run id keeps runs from separate
// processes (every CLI invocation trains its own engine) from overwriting
// each other.
//
// # Usage
//
//	store, err := storage.OpenHistoryStore("/var/lib/folio/history", false)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	engine, err := recommend.NewEngine(cfg, trainer, ranker, logger,
//	    recommend.WithHistory(store))
//
// # Thread Safety
//
// HistoryStore is safe for concurrent use; every operation runs in its own
// Badger transaction.
package storage
