// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package algorithms

import (
	"fmt"

	"github.com/tomtom215/folio/internal/recommend"
)

// HybridConfig contains the blending parameters for personalized rankings.
type HybridConfig struct {
	// ContentWeight and CollaborativeWeight sum to 1.
	ContentWeight       float64
	CollaborativeWeight float64

	// LikeThreshold is the minimum score for a rated book to act as a content anchor.
	LikeThreshold int

	// BookmarksAsAnchors adds bookmarked books to the content anchors.
	BookmarksAsAnchors bool
}

// ForYou returns up to n books the user has not rated, ranked by
//
//	hybrid(b) = w_c * content(b) + w_f * collaborative(b)
//
// content(b) is the maximum content similarity between b and the user's anchor
// books (books rated at or above LikeThreshold, plus bookmarks when
// BookmarksAsAnchors is set). collaborative(b) is the
// predicted score divided by the maximum rating, or 0 when the prediction is
// unpredictable. Books the user rated or bookmarked are not candidates, and
// books without a positive score are left out. Ties are broken by book id
// ascending.
//
// A user with neither ratings nor bookmarks is cold: ForYou returns a nil list
// and coldStart true. A user with signals but no positive candidate gets an
// empty list.
func (m *TrainedModel) ForYou(userID, n int) ([]recommend.ScoredBook, bool, error) {
	if n <= 0 {
		return nil, false, fmt.Errorf("%w: n must be positive, got %d", recommend.ErrInvalidArgument, n)
	}

	rm := m.collab.ratings
	ratedBooks, ratedScores := rm.UserRatings(userID)
	bookmarked := m.bookmarks[userID]
	if len(ratedBooks) == 0 && len(bookmarked) == 0 {
		return nil, true, nil
	}

	anchors := m.anchorRows(ratedBooks, ratedScores, bookmarked)

	skip := make(map[int]struct{}, len(bookmarked))
	for _, bookID := range bookmarked {
		skip[bookID] = struct{}{}
	}

	fm := m.content.Features()
	out := make([]recommend.ScoredBook, 0, len(m.catalog))
	for row := range m.catalog {
		bookID := m.catalog[row].ID
		if _, rated := rm.Rating(userID, bookID); rated {
			continue
		}
		if _, marked := skip[bookID]; marked {
			continue
		}

		var content float64
		for _, a := range anchors {
			if a == row {
				continue
			}
			if sim := cosineSimilarity(fm.Rows[row], fm.Rows[a], fm.Norms[row], fm.Norms[a]); sim > content {
				content = sim
			}
		}

		var collab float64
		if pred, err := m.collab.PredictScore(userID, bookID); err == nil {
			collab = pred / recommend.MaxRating
		}

		score := m.hybrid.ContentWeight*content + m.hybrid.CollaborativeWeight*collab
		if score <= 0 {
			continue
		}
		out = append(out, recommend.ScoredBook{BookID: bookID, Score: score})
	}

	sortByScoreThenID(out)
	if len(out) > n {
		out = out[:n]
	}
	return out, false, nil
}

// anchorRows returns the feature rows of the user's liked books.
func (m *TrainedModel) anchorRows(ratedBooks []int, ratedScores []float64, bookmarked []int) []int {
	seen := make(map[int]struct{})
	rows := make([]int, 0, len(ratedBooks)+len(bookmarked))
	add := func(bookID int) {
		row, ok := m.index[bookID]
		if !ok {
			return
		}
		if _, dup := seen[row]; dup {
			return
		}
		seen[row] = struct{}{}
		rows = append(rows, row)
	}

	threshold := float64(m.hybrid.LikeThreshold)
	for i, bookID := range ratedBooks {
		if ratedScores[i] >= threshold {
			add(bookID)
		}
	}
	if m.hybrid.BookmarksAsAnchors {
		for _, bookID := range bookmarked {
			add(bookID)
		}
	}
	return rows
}
