// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package algorithms

import (
	"context"
	"runtime"

	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/folio/internal/recommend"
)

// Ensure the algorithms implement the engine interfaces.
var (
	_ recommend.Model   = (*TrainedModel)(nil)
	_ recommend.Trainer = (*Builder)(nil)
	_ recommend.Ranker  = (*Popularity)(nil)
)

// neighbor represents a similar user with their similarity score.
type neighbor struct {
	ID         int
	Similarity float64
}

// cosineSimilarity computes cosine similarity between two dense vectors with
// precomputed norms. A zero vector is similar to nothing.
func cosineSimilarity(a, b []float64, normA, normB float64) float64 {
	if len(a) != len(b) || len(a) == 0 || normA == 0 || normB == 0 {
		return 0
	}
	sim := floats.Dot(a, b) / (normA * normB)
	if sim > 1 {
		return 1
	}
	return sim
}

// workerCount resolves the configured worker bound.
func workerCount(configured int) int {
	if configured > 0 {
		return configured
	}
	return runtime.GOMAXPROCS(0)
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
