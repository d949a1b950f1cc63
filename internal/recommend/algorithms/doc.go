// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

// Package algorithms implements the recommendation signals behind the engine.
//
// A Builder turns a recommend.Snapshot into a TrainedModel which implements
// recommend.Model. Popularity implements recommend.Ranker and works without a
// trained model.
//
// # Signals
//
// Content-Based Filtering:
//   - BuildFeatures: TF-IDF over title, authors, categories and description
//   - ContentIndex: cosine similarity between feature rows, computed on demand
//
// Collaborative Filtering:
//   - BuildRatingMatrix: sparse user x book matrix, latest rating wins
//   - CollaborativeModel: user-based k-NN with cosine similarity
//
// Hybrid:
//   - TrainedModel.ForYou: weighted blend of content and collaborative scores
//
// Baselines:
//   - Popularity: confidence-weighted catalog rating, with category and CEL filters
//
// # Usage Example
//
//	builder := algorithms.NewBuilder(logger)
//	model, err := builder.Build(ctx, snapshot, recommend.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	similar, err := model.SimilarBooks(bookID, 10)
//
// # Determinism
//
// Building twice from the same snapshot yields identical rankings. Every
// floating-point accumulation runs in a fixed order and every sort has a
// total tie-break.
//
// # Thread Safety
//
// TrainedModel is immutable after Build and safe for concurrent use.
package algorithms
