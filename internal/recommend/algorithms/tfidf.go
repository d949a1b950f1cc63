// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package algorithms

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/folio/internal/recommend"
)

// FeatureMatrix holds one L2-normalized TF-IDF row per catalog book.
//
// Rows are in catalog order and columns follow Vocabulary, which is sorted
// alphabetically. A book whose text yields no vocabulary terms has a zero row.
type FeatureMatrix struct {
	// Vocabulary is the sorted term list backing the columns.
	Vocabulary []string

	// BookIDs maps row index to book id.
	BookIDs []int

	// Rows holds the dense feature vectors.
	Rows [][]float64

	// Norms holds the L2 norm of each row (1 or 0).
	Norms []float64

	index map[int]int
}

// Row returns the row index of bookID.
func (fm *FeatureMatrix) Row(bookID int) (int, bool) {
	i, ok := fm.index[bookID]
	return i, ok
}

// Len returns the number of rows.
func (fm *FeatureMatrix) Len() int {
	return len(fm.Rows)
}

// Tokenize lower-cases text and splits it into runs of letters, digits and
// underscores. Tokens shorter than two characters and stop words are dropped.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < 2 || isStopWord(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// BuildFeatures vectorizes the catalog text with TF-IDF.
//
// The vocabulary keeps the maxFeatures terms with the highest corpus-wide
// count (ties alphabetical). Term weights are raw counts times the smoothed
// idf ln((1+n)/(1+df))+1. An empty catalog yields an empty matrix.
func BuildFeatures(ctx context.Context, books []recommend.BookRecord, maxFeatures int) (*FeatureMatrix, error) {
	fm := &FeatureMatrix{
		BookIDs: make([]int, len(books)),
		Rows:    make([][]float64, len(books)),
		Norms:   make([]float64, len(books)),
		index:   make(map[int]int, len(books)),
	}

	docs := make([]map[string]int, len(books))
	corpusCount := make(map[string]int)
	for i := range books {
		fm.BookIDs[i] = books[i].ID
		fm.index[books[i].ID] = i

		counts := make(map[string]int)
		for _, tok := range Tokenize(books[i].Text()) {
			counts[tok]++
			corpusCount[tok]++
		}
		docs[i] = counts
	}

	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	fm.Vocabulary = selectVocabulary(corpusCount, maxFeatures)
	column := make(map[string]int, len(fm.Vocabulary))
	for j, term := range fm.Vocabulary {
		column[term] = j
	}

	// Document frequency over the selected vocabulary
	df := make([]int, len(fm.Vocabulary))
	for _, counts := range docs {
		for term := range counts {
			if j, ok := column[term]; ok {
				df[j]++
			}
		}
	}

	n := float64(len(books))
	idf := make([]float64, len(fm.Vocabulary))
	for j := range idf {
		idf[j] = math.Log((1+n)/(1+float64(df[j]))) + 1
	}

	for i, counts := range docs {
		row := make([]float64, len(fm.Vocabulary))
		for term, c := range counts {
			if j, ok := column[term]; ok {
				row[j] = float64(c) * idf[j]
			}
		}
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
			fm.Norms[i] = floats.Norm(row, 2)
		}
		fm.Rows[i] = row
	}

	return fm, nil
}

// selectVocabulary returns the top maxFeatures terms by count, sorted alphabetically.
func selectVocabulary(corpusCount map[string]int, maxFeatures int) []string {
	terms := make([]string, 0, len(corpusCount))
	for term := range corpusCount {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		ci, cj := corpusCount[terms[i]], corpusCount[terms[j]]
		if ci != cj {
			return ci > cj
		}
		return terms[i] < terms[j]
	})
	if maxFeatures > 0 && len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)
	return terms
}
