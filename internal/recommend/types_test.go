// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package recommend

import (
	"errors"
	"testing"
)

func TestBookRecord_Text(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		book BookRecord
		want string
	}{
		{
			name: "all fields",
			book: BookRecord{
				Title:       "Dragon Saga",
				Authors:     []string{"Ann Lee", "Bo Kim"},
				Categories:  []string{"Fantasy"},
				Description: "A long tale",
			},
			want: "Dragon Saga Ann Lee Bo Kim Fantasy A long tale",
		},
		{
			name: "missing fields",
			book: BookRecord{Title: "Alone"},
			want: "Alone ",
		},
		{
			name: "empty record",
			book: BookRecord{},
			want: " ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.book.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBookRecord_Categories(t *testing.T) {
	t.Parallel()

	b := BookRecord{Categories: []string{"Fantasy", "Young Adult"}}
	if got := b.PrimaryCategory(); got != "Fantasy" {
		t.Errorf("PrimaryCategory() = %q, want %q", got, "Fantasy")
	}
	if !b.HasCategory("young adult") {
		t.Error("HasCategory(\"young adult\") = false, want true")
	}
	if b.HasCategory("Cooking") {
		t.Error("HasCategory(\"Cooking\") = true, want false")
	}

	var empty BookRecord
	if got := empty.PrimaryCategory(); got != "" {
		t.Errorf("PrimaryCategory() of empty record = %q, want empty", got)
	}
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{"", CategoryAll, false},
		{"all", CategoryAll, false},
		{"Manga", CategoryManga, false},
		{" novel ", CategoryNovel, false},
		{"comics", CategoryAll, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCategory(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCategory(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("ParseCategory(%q) error = %v, want ErrInvalidArgument", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if !tt.wantErr && got.String() != normalizedCategory(tt.in) {
				t.Errorf("String() = %q, want %q", got.String(), normalizedCategory(tt.in))
			}
		})
	}
}

func normalizedCategory(s string) string {
	switch s {
	case "Manga":
		return "manga"
	case " novel ":
		return "novel"
	default:
		return "all"
	}
}

func TestCategory_Matches(t *testing.T) {
	t.Parallel()

	manga := &BookRecord{IsManga: true}
	novel := &BookRecord{IsNovel: true}
	plain := &BookRecord{}

	tests := []struct {
		category Category
		book     *BookRecord
		want     bool
	}{
		{CategoryAll, plain, true},
		{CategoryManga, manga, true},
		{CategoryManga, novel, false},
		{CategoryNovel, novel, true},
		{CategoryNovel, plain, false},
	}

	for _, tt := range tests {
		if got := tt.category.Matches(tt.book); got != tt.want {
			t.Errorf("%v.Matches(%+v) = %v, want %v", tt.category, tt.book, got, tt.want)
		}
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state State
		want  string
	}{
		{StateAbsent, "absent"},
		{StateTraining, "training"},
		{StateReady, "ready"},
		{StateStale, "stale"},
		{State(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestValidateSnapshot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		snap    *Snapshot
		wantErr bool
	}{
		{"nil", nil, true},
		{"empty catalog", &Snapshot{}, true},
		{"duplicate ids", &Snapshot{Books: []BookRecord{{ID: 1}, {ID: 1}}}, true},
		{"score too low", &Snapshot{Books: []BookRecord{{ID: 1}}, Ratings: []RatingEntry{{BookID: 1, Score: 0}}}, true},
		{"score too high", &Snapshot{Books: []BookRecord{{ID: 1}}, Ratings: []RatingEntry{{BookID: 1, Score: 6}}}, true},
		{"unknown book rating is allowed", &Snapshot{Books: []BookRecord{{ID: 1}}, Ratings: []RatingEntry{{BookID: 9, Score: 3}}}, false},
		{"valid", &Snapshot{Books: []BookRecord{{ID: 1}, {ID: 2}}, Ratings: []RatingEntry{{BookID: 1, Score: 5}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateSnapshot(tt.snap); (err != nil) != tt.wantErr {
				t.Errorf("ValidateSnapshot() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
