// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

// Package recommend implements the lifecycle of Folio's hybrid book
// recommendation model and the queries it serves.
//
// # Architecture
//
// A model is trained from an immutable Snapshot of the catalog, the user
// ratings, and the user bookmarks. Training is performed by a Trainer
// (see package algorithms) and produces a Model combining:
//
//   - Content similarity: TF-IDF vectors over book text, compared by cosine
//   - Collaborative filtering: user-based k-nearest neighbours over ratings
//   - Hybrid scoring: a weighted blend of the two for "for you" lists
//
// Popularity ranking is served by a Ranker and does not need a trained model;
// it backs cold-start users and the period before the first training run.
//
// # Lifecycle
//
// The Engine moves through four states:
//
//	absent -> training -> ready <-> stale
//	              ^          |
//	              +----------+
//
// A successful run publishes a new model atomically: queries observe either
// the complete previous model or the complete new one. A failed run keeps the
// prior model serving. Change notifications mark a ready model stale but never
// start training; retraining is an explicit administrative action, limited to
// one run at a time and rate limited by Config.RetrainMinInterval.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg,
//	    algorithms.NewBuilder(logger),
//	    algorithms.NewPopularity(algorithms.PopularityConfig{MinCount: cfg.MinRatingCountForPopularity}),
//	    logger,
//	    recommend.WithSource(source),
//	    recommend.WithHistory(history))
//	if err != nil {
//	    return err
//	}
//
//	if _, err := engine.Train(ctx); err != nil {
//	    return err
//	}
//
//	res, err := engine.Recommend(ctx, userID, 20)
//
// # Errors
//
// Every error returned by the engine wraps one of the sentinels in errors.go
// and can be classified with errors.Is.
//
// # Thread Safety
//
// The engine is safe for concurrent use. Queries read the published model
// through an atomic pointer and never block on training.
package recommend
