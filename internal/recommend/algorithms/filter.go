// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package algorithms

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/tomtom215/folio/internal/recommend"
)

var (
	// filterEnv is shared by all filters; a cel.Env is safe for concurrent use.
	filterEnv     *cel.Env
	filterEnvErr  error
	filterEnvOnce sync.Once
)

func getFilterEnv() (*cel.Env, error) {
	filterEnvOnce.Do(func() {
		filterEnv, filterEnvErr = cel.NewEnv(
			cel.Variable("book", cel.MapType(cel.StringType, cel.DynType)),
			cel.CrossTypeNumericComparisons(true),
		)
	})
	return filterEnv, filterEnvErr
}

// BookFilter is a compiled boolean expression over a book.
//
// Expressions see a single variable `book` with the fields title, authors,
// categories, average_rating, ratings_count, is_manga and is_novel:
//
//	book.average_rating >= 4 && "Fantasy" in book.categories
//	book.is_manga && book.ratings_count > 10
type BookFilter struct {
	expr string
	prg  cel.Program
}

// CompileFilter compiles expr. Syntax and type errors wrap ErrInvalidArgument.
func CompileFilter(expr string) (*BookFilter, error) {
	env, err := getFilterEnv()
	if err != nil {
		return nil, fmt.Errorf("filter environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: filter %q: %v", recommend.ErrInvalidArgument, expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: filter %q: %v", recommend.ErrInvalidArgument, expr, err)
	}
	return &BookFilter{expr: expr, prg: prg}, nil
}

// Match evaluates the filter against b.
func (f *BookFilter) Match(b *recommend.BookRecord) (bool, error) {
	out, _, err := f.prg.Eval(map[string]any{"book": bookActivation(b)})
	if err != nil {
		return false, fmt.Errorf("%w: filter %q: %v", recommend.ErrInvalidArgument, f.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: filter %q must return bool, got %T",
			recommend.ErrInvalidArgument, f.expr, out.Value())
	}
	return result, nil
}

// String returns the source expression.
func (f *BookFilter) String() string {
	return f.expr
}

func bookActivation(b *recommend.BookRecord) map[string]any {
	authors := b.Authors
	if authors == nil {
		authors = []string{}
	}
	categories := b.Categories
	if categories == nil {
		categories = []string{}
	}
	return map[string]any{
		"id":             int64(b.ID),
		"title":          b.Title,
		"authors":        authors,
		"categories":     categories,
		"average_rating": b.AverageRating,
		"ratings_count":  int64(b.RatingsCount),
		"is_manga":       b.IsManga,
		"is_novel":       b.IsNovel,
	}
}
