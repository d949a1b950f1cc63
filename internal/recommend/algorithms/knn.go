// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package algorithms

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/folio/internal/recommend"
)

// ========== Rating Matrix ==========

// sparseVector is a user's ratings sorted by book id.
type sparseVector struct {
	books  []int
	scores []float64
	norm   float64
}

// RatingMatrix is the sparse user x book matrix built from a rating snapshot.
// Missing pairs are unobserved, never zero.
type RatingMatrix struct {
	// Users lists users with at least one rating, ascending.
	Users []int

	// Count is the number of distinct (user, book) ratings kept.
	Count int

	// Dropped is the number of ratings that referenced books outside the catalog.
	Dropped int

	vectors map[int]*sparseVector
	lookup  map[int]map[int]float64 // user_id -> book_id -> score
}

// BuildRatingMatrix collapses duplicate ratings (the latest RatedAt wins, equal
// timestamps resolved by snapshot position) and drops ratings for books not in
// the catalog.
//
//nolint:gocritic // rangeValCopy: RatingEntry is small
func BuildRatingMatrix(ratings []recommend.RatingEntry, catalog map[int]struct{}) *RatingMatrix {
	type pair struct{ user, book int }

	latest := make(map[pair]recommend.RatingEntry, len(ratings))
	rm := &RatingMatrix{
		vectors: make(map[int]*sparseVector),
		lookup:  make(map[int]map[int]float64),
	}

	for _, r := range ratings {
		if _, ok := catalog[r.BookID]; !ok {
			rm.Dropped++
			continue
		}
		key := pair{r.UserID, r.BookID}
		if prev, ok := latest[key]; ok && prev.RatedAt.After(r.RatedAt) {
			continue
		}
		latest[key] = r
	}

	for key, r := range latest {
		if rm.lookup[key.user] == nil {
			rm.lookup[key.user] = make(map[int]float64)
		}
		rm.lookup[key.user][key.book] = float64(r.Score)
	}
	rm.Count = len(latest)

	rm.Users = make([]int, 0, len(rm.lookup))
	for userID := range rm.lookup {
		rm.Users = append(rm.Users, userID)
	}
	sort.Ints(rm.Users)

	for _, userID := range rm.Users {
		scores := rm.lookup[userID]
		vec := &sparseVector{
			books:  make([]int, 0, len(scores)),
			scores: make([]float64, 0, len(scores)),
		}
		for bookID := range scores {
			vec.books = append(vec.books, bookID)
		}
		sort.Ints(vec.books)
		for _, bookID := range vec.books {
			vec.scores = append(vec.scores, scores[bookID])
		}
		vec.norm = floats.Norm(vec.scores, 2)
		rm.vectors[userID] = vec
	}

	return rm
}

// Rating returns the score userID gave bookID.
func (rm *RatingMatrix) Rating(userID, bookID int) (float64, bool) {
	s, ok := rm.lookup[userID][bookID]
	return s, ok
}

// UserRatings returns the books rated by userID with their scores, ascending by book id.
func (rm *RatingMatrix) UserRatings(userID int) ([]int, []float64) {
	vec, ok := rm.vectors[userID]
	if !ok {
		return nil, nil
	}
	return vec.books, vec.scores
}

// HasUser reports whether userID rated at least one catalog book.
func (rm *RatingMatrix) HasUser(userID int) bool {
	_, ok := rm.vectors[userID]
	return ok
}

// sparseCosine computes cosine similarity of two sorted sparse vectors.
func sparseCosine(a, b *sparseVector) float64 {
	if a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	i, j := 0, 0
	for i < len(a.books) && j < len(b.books) {
		switch {
		case a.books[i] == b.books[j]:
			dot += a.scores[i] * b.scores[j]
			i++
			j++
		case a.books[i] < b.books[j]:
			i++
		default:
			j++
		}
	}
	return dot / (a.norm * b.norm)
}

// ========== User-Based Collaborative Filtering ==========

// KNNConfig contains configuration for the collaborative model.
type KNNConfig struct {
	// K is the number of neighbors to consider.
	// Clamped to the number of other users, never an error.
	K int

	// MinSimilarity is the similarity a neighbor must exceed.
	MinSimilarity float64

	// NumWorkers bounds neighbor computation parallelism. Zero means GOMAXPROCS.
	NumWorkers int
}

// DefaultKNNConfig returns default KNN configuration.
func DefaultKNNConfig() KNNConfig {
	return KNNConfig{
		K:             10,
		MinSimilarity: 0,
	}
}

// CollaborativeModel implements user-based collaborative filtering.
// It predicts the rating a user would give a book from the ratings of the
// user's nearest neighbors:
//
//	score(u, b) = sum_{v in N(u), r(v,b) exists} sim(u, v) * r(v, b) / sum sim(u, v)
//
// where N(u) is the set of k most similar users by cosine over rating vectors.
// When no neighbor rated b the prediction falls back to the mean snapshot
// rating of b, then to the catalog average rating.
type CollaborativeModel struct {
	config  KNNConfig
	ratings *RatingMatrix

	// neighbors stores precomputed top-K neighbors per user
	neighbors map[int][]neighbor

	// bookMean is the mean snapshot rating per book
	bookMean map[int]float64

	catalog      []recommend.BookRecord
	catalogIndex map[int]int
}

// NewCollaborativeModel fits the neighbor structure over rm.
func NewCollaborativeModel(ctx context.Context, cfg KNNConfig, rm *RatingMatrix, catalog []recommend.BookRecord) (*CollaborativeModel, error) {
	if cfg.K <= 0 {
		return nil, fmt.Errorf("%w: neighbor count must be positive, got %d", recommend.ErrInvalidArgument, cfg.K)
	}

	m := &CollaborativeModel{
		config:       cfg,
		ratings:      rm,
		neighbors:    make(map[int][]neighbor, len(rm.Users)),
		bookMean:     make(map[int]float64),
		catalog:      catalog,
		catalogIndex: make(map[int]int, len(catalog)),
	}
	for i := range catalog {
		m.catalogIndex[catalog[i].ID] = i
	}

	// Per-book means, accumulated in user order for reproducible sums
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, userID := range rm.Users {
		vec := rm.vectors[userID]
		for i, bookID := range vec.books {
			sums[bookID] += vec.scores[i]
			counts[bookID]++
		}
	}
	for bookID, s := range sums {
		m.bookMean[bookID] = s / float64(counts[bookID])
	}

	if err := m.computeNeighbors(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// computeNeighbors precomputes the neighbor lists in parallel chunks.
func (m *CollaborativeModel) computeNeighbors(ctx context.Context) error {
	users := m.ratings.Users
	results := make([][]neighbor, len(users))

	workers := workerCount(m.config.NumWorkers)
	chunkSize := (len(users) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(users); start += chunkSize {
		end := start + chunkSize
		if end > len(users) {
			end = len(users)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if ContextCancelled(gctx) {
					return gctx.Err()
				}
				results[i] = m.computeUserNeighbors(users[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, userID := range users {
		m.neighbors[userID] = results[i]
	}
	return nil
}

// computeUserNeighbors computes the k most similar users for a given user.
func (m *CollaborativeModel) computeUserNeighbors(userID int) []neighbor {
	userVec := m.ratings.vectors[userID]
	neighbors := make([]neighbor, 0)

	for _, otherID := range m.ratings.Users {
		if otherID == userID {
			continue
		}
		sim := sparseCosine(userVec, m.ratings.vectors[otherID])
		if sim > m.config.MinSimilarity {
			neighbors = append(neighbors, neighbor{ID: otherID, Similarity: sim})
		}
	}

	// Sort by similarity (descending), then user id for determinism
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].ID < neighbors[j].ID
	})

	k := m.config.K
	if others := len(m.ratings.Users) - 1; k > others {
		k = others
	}
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}

// neighborsOf returns the precomputed neighbors of userID.
func (m *CollaborativeModel) neighborsOf(userID int) []neighbor {
	return m.neighbors[userID]
}

// PredictScore estimates the rating userID would give bookID.
//
// Errors: ErrNotFound for a book outside the catalog, ErrUnpredictable for a
// user without ratings or a book without any rating evidence.
func (m *CollaborativeModel) PredictScore(userID, bookID int) (float64, error) {
	idx, ok := m.catalogIndex[bookID]
	if !ok {
		return 0, fmt.Errorf("%w: book %d", recommend.ErrNotFound, bookID)
	}
	if !m.ratings.HasUser(userID) {
		return 0, fmt.Errorf("%w: user %d has no ratings", recommend.ErrUnpredictable, userID)
	}

	var num, den float64
	for _, n := range m.neighbors[userID] {
		if r, ok := m.ratings.Rating(n.ID, bookID); ok {
			num += n.Similarity * r
			den += n.Similarity
		}
	}
	if den > 0 {
		return num / den, nil
	}

	if mean, ok := m.bookMean[bookID]; ok {
		return mean, nil
	}
	if b := &m.catalog[idx]; b.RatingsCount > 0 {
		return b.AverageRating, nil
	}
	return 0, fmt.Errorf("%w: book %d has no ratings", recommend.ErrUnpredictable, bookID)
}

// RecommendForUser returns up to k catalog books userID has not rated, sorted
// by predicted score descending with ties by book id ascending. A user without
// ratings gets an empty list. Unpredictable books are skipped.
func (m *CollaborativeModel) RecommendForUser(userID, k int) ([]recommend.ScoredBook, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", recommend.ErrInvalidArgument, k)
	}
	out := make([]recommend.ScoredBook, 0)
	if !m.ratings.HasUser(userID) {
		return out, nil
	}

	for i := range m.catalog {
		bookID := m.catalog[i].ID
		if _, rated := m.ratings.Rating(userID, bookID); rated {
			continue
		}
		score, err := m.PredictScore(userID, bookID)
		if err != nil {
			continue
		}
		out = append(out, recommend.ScoredBook{BookID: bookID, Score: score})
	}

	sortByScoreThenID(out)
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// sortByScoreThenID orders by score descending, book id ascending.
func sortByScoreThenID(items []recommend.ScoredBook) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].BookID < items[j].BookID
	})
}
