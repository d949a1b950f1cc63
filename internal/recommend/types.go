// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package recommend

import (
	"fmt"
	"strings"
	"time"
)

// Rating scale bounds. Scores outside [MinRating, MaxRating] are rejected at training time.
const (
	MinRating = 1
	MaxRating = 5
)

// BookRecord is an immutable catalog entry as seen by the engine at training time.
// Optional text fields default to empty values; the engine never inspects field presence.
type BookRecord struct {
	// ID is the catalog identifier of the book.
	ID int `json:"id"`

	// GoogleBooksID is the external metadata identifier, if the book was imported.
	GoogleBooksID string `json:"google_books_id,omitempty"`

	// Title is the book title.
	Title string `json:"title"`

	// Authors lists author names in display order.
	Authors []string `json:"authors"`

	// Categories lists subject categories. The first entry is the primary category.
	Categories []string `json:"categories"`

	// Description is the free-text synopsis.
	Description string `json:"description"`

	// AverageRating is the catalog-maintained mean rating (0 when unrated).
	AverageRating float64 `json:"average_rating"`

	// RatingsCount is the number of ratings behind AverageRating.
	RatingsCount int `json:"ratings_count"`

	// IsManga marks manga titles.
	IsManga bool `json:"is_manga"`

	// IsNovel marks novels.
	IsNovel bool `json:"is_novel"`

	// ThumbnailURL is the cover image URL.
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// Text returns the concatenated text used for feature extraction:
// title, authors, categories and description separated by spaces.
func (b *BookRecord) Text() string {
	parts := make([]string, 0, 2+len(b.Authors)+len(b.Categories))
	parts = append(parts, b.Title)
	parts = append(parts, b.Authors...)
	parts = append(parts, b.Categories...)
	parts = append(parts, b.Description)
	return strings.Join(parts, " ")
}

// PrimaryCategory returns the first category, or "" if the book has none.
func (b *BookRecord) PrimaryCategory() string {
	if len(b.Categories) == 0 {
		return ""
	}
	return b.Categories[0]
}

// HasCategory reports whether the book lists the category (case-insensitive).
func (b *BookRecord) HasCategory(category string) bool {
	for _, c := range b.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// RatingEntry is a single user rating of a book.
type RatingEntry struct {
	// UserID identifies the rating user.
	UserID int `json:"user_id"`

	// BookID identifies the rated book.
	BookID int `json:"book_id"`

	// Score is the rating on the 1-5 scale.
	Score int `json:"score"`

	// RatedAt orders duplicate ratings; the latest one wins.
	// Entries with equal timestamps are ordered by position in the snapshot.
	RatedAt time.Time `json:"rated_at,omitempty"`
}

// Bookmark records that a user saved a book. A (user, book) pair is unique.
type Bookmark struct {
	UserID    int       `json:"user_id"`
	BookID    int       `json:"book_id"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Snapshot is a read-only copy of the external catalog and rating store
// used for one training cycle.
type Snapshot struct {
	Books     []BookRecord  `json:"books"`
	Ratings   []RatingEntry `json:"ratings"`
	Bookmarks []Bookmark    `json:"bookmarks"`
	TakenAt   time.Time     `json:"taken_at"`
}

// ScoredBook is a book identifier paired with a ranking score.
type ScoredBook struct {
	BookID int     `json:"book_id"`
	Score  float64 `json:"score"`
}

// Source names the signal that produced a result list.
type Source string

const (
	// SourceContent is content similarity alone.
	SourceContent Source = "content"
	// SourceCategory is the same-category fallback for similar books.
	SourceCategory Source = "category"
	// SourceCollaborative is the user k-NN prediction.
	SourceCollaborative Source = "collaborative"
	// SourceHybrid is the weighted content + collaborative blend.
	SourceHybrid Source = "hybrid"
	// SourcePopularity is the confidence-weighted popularity ranking.
	SourcePopularity Source = "popularity"
)

// Result is a ranked recommendation list with its provenance.
type Result struct {
	// Items is the ranked list, best first.
	Items []ScoredBook `json:"items"`

	// ColdStart is true when the user had no personalization signal
	// (no ratings and no bookmarks). It distinguishes "no personalization
	// possible" from "personalization computed but empty".
	ColdStart bool `json:"cold_start"`

	// Source names the signal behind Items.
	Source Source `json:"source"`

	// ModelVersion is the version of the model that served the request,
	// or 0 when no trained model was involved.
	ModelVersion int `json:"model_version"`
}

// Category selects a slice of the catalog for popularity ranking.
type Category int

const (
	// CategoryAll applies no filter.
	CategoryAll Category = iota
	// CategoryManga keeps books flagged as manga.
	CategoryManga
	// CategoryNovel keeps books flagged as novels.
	CategoryNovel
)

// String returns the query-string form of the category.
func (c Category) String() string {
	switch c {
	case CategoryManga:
		return "manga"
	case CategoryNovel:
		return "novel"
	default:
		return "all"
	}
}

// Matches reports whether the book belongs to the category.
func (c Category) Matches(b *BookRecord) bool {
	switch c {
	case CategoryManga:
		return b.IsManga
	case CategoryNovel:
		return b.IsNovel
	default:
		return true
	}
}

// ParseCategory parses "manga", "novel", "all" or "" (all).
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return CategoryAll, nil
	case "manga":
		return CategoryManga, nil
	case "novel":
		return CategoryNovel, nil
	default:
		return CategoryAll, fmt.Errorf("%w: unknown category %q", ErrInvalidArgument, s)
	}
}

// PopularQuery parameterizes a popularity ranking.
type PopularQuery struct {
	// Category restricts the ranking to manga, novels or everything.
	Category Category `json:"category"`

	// Limit is the maximum number of books returned. Zero means the configured default.
	Limit int `json:"limit"`

	// Filter is an optional boolean CEL expression over `book`.
	Filter string `json:"filter,omitempty"`
}

// State is the lifecycle state of the served model.
type State int32

const (
	// StateAbsent means no model has ever been published.
	StateAbsent State = iota
	// StateTraining means a build is in flight; the previous model, if any, keeps serving.
	StateTraining
	// StateReady means the published model reflects the last known data.
	StateReady
	// StateStale means the data changed after the published model was built.
	StateStale
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateTraining:
		return "training"
	case StateReady:
		return "ready"
	case StateStale:
		return "stale"
	default:
		return "unknown"
	}
}

// ModelStats describes the data a trained model was built from.
type ModelStats struct {
	Books          int `json:"books"`
	Ratings        int `json:"ratings"`
	Users          int `json:"users"`
	Bookmarks      int `json:"bookmarks"`
	Vocabulary     int `json:"vocabulary"`
	DroppedRatings int `json:"dropped_ratings"`
}

// TrainingMetadata is reported by every training run.
type TrainingMetadata struct {
	// RunID uniquely identifies the training run.
	RunID string `json:"run_id"`

	// ModelVersion is the version published by the run, 0 if the run failed.
	ModelVersion int `json:"model_version"`

	// CatalogSize is the number of books in the snapshot.
	CatalogSize int `json:"catalog_size"`

	// RatingCount is the number of ratings in the snapshot.
	RatingCount int `json:"rating_count"`

	// Stats is populated on success with the post-normalization counts.
	Stats ModelStats `json:"stats"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall-clock training time.
	Duration time.Duration `json:"duration"`

	// DurationMS is Duration in milliseconds, for log and JSON consumers.
	DurationMS int64 `json:"duration_ms"`
}

// Status is a point-in-time view of the lifecycle manager.
type Status struct {
	// State is the current lifecycle state.
	State State `json:"state"`

	// Serving is true when some model answers queries (ready, stale, or training with a prior model).
	Serving bool `json:"serving"`

	// ModelVersion is the version of the serving model (0 if none).
	ModelVersion int `json:"model_version"`

	// LastTraining is the metadata of the last successful run.
	LastTraining *TrainingMetadata `json:"last_training,omitempty"`

	// LastError is the error of the most recent failed run, cleared on success.
	LastError string `json:"last_error,omitempty"`

	// StaleReason is the first change notification received since the model was built.
	StaleReason string `json:"stale_reason,omitempty"`

	// StaleSince is when the model became stale.
	StaleSince time.Time `json:"stale_since,omitempty"`
}
