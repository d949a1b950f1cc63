// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/folio/internal/config"
	"github.com/tomtom215/folio/internal/recommend"
)

// errUsage reports a flag error already printed by the flag set.
var errUsage = errors.New("usage error")

// errHistoryDisabled is returned by the history command without a history store.
var errHistoryDisabled = errors.New("training history is disabled (set history.enabled)")

type commandEnv struct {
	cfg        *config.Config
	components *RecommendComponents
	logger     zerolog.Logger
	out        io.Writer
	errOut     io.Writer
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, env *commandEnv, args []string) error
}

var commands = []command{
	{"train", "train a model from the configured snapshot and print its metadata", runTrain},
	{"similar", "books most similar in content to -book", runSimilar},
	{"for-you", "hybrid recommendations for -user, without fallback", runForYou},
	{"recommend", "recommendations for -user, falling back to popular books", runRecommend},
	{"collab", "collaborative-filtering recommendations for -user", runCollab},
	{"predict", "predicted rating of -book by -user", runPredict},
	{"popular", "popular books, optionally by -category and -filter", runPopular},
	{"history", "recorded training runs, newest first", runHistory},
	{"watch", "supervise change watching and retrain on SIGHUP", runWatch},
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// newFlagSet returns a flag set that reports errors to the command's stderr.
func (env *commandEnv) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("folio "+name, flag.ContinueOnError)
	fs.SetOutput(env.errOut)
	return fs
}

// parse wraps flag parsing errors in errUsage.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %v\n", fs.Args())
		return errUsage
	}
	return nil
}

// requirePositive checks that a required id flag was set.
func requirePositive(fs *flag.FlagSet, name string, v int) error {
	if v <= 0 {
		fmt.Fprintf(fs.Output(), "-%s is required and must be positive\n", name)
		fs.Usage()
		return errUsage
	}
	return nil
}

// print writes v as indented JSON followed by a newline.
func (env *commandEnv) print(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintf(env.out, "%s\n", data)
	return err
}

// train publishes a model from the configured snapshot.
func (env *commandEnv) train(ctx context.Context) (recommend.TrainingMetadata, error) {
	meta, err := env.components.Engine.Train(ctx)
	if err != nil {
		return meta, err
	}
	env.logger.Info().
		Str("run_id", meta.RunID).
		Int("model_version", meta.ModelVersion).
		Int("books", meta.Stats.Books).
		Int("ratings", meta.Stats.Ratings).
		Int64("duration_ms", meta.DurationMS).
		Msg("model trained")
	return meta, nil
}

func runTrain(ctx context.Context, env *commandEnv, args []string) error {
	fs := env.newFlagSet("train")
	if err := parse(fs, args); err != nil {
		return err
	}
	meta, err := env.train(ctx)
	if err != nil {
		return err
	}
	return env.print(meta)
}

func runSimilar(ctx context.Context, env *commandEnv, args []string) error {
	fs := env.newFlagSet("similar")
	bookID := fs.Int("book", 0, "book id (required)")
	k := fs.Int("k", env.cfg.Recommend.DefaultLimit, "number of books")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requirePositive(fs, "book", *bookID); err != nil {
		return err
	}
	if _, err := env.train(ctx); err != nil {
		return err
	}
	res, err := env.components.Engine.SimilarBooks(ctx, *bookID, *k)
	if err != nil {
		return err
	}
	return env.print(res)
}

// userQuery parses the -user and -n flags shared by the per-user commands.
func userQuery(env *commandEnv, name string, args []string) (userID, n int, err error) {
	fs := env.newFlagSet(name)
	user := fs.Int("user", 0, "user id (required)")
	limit := fs.Int("n", env.cfg.Recommend.DefaultLimit, "number of books")
	if err := parse(fs, args); err != nil {
		return 0, 0, err
	}
	if err := requirePositive(fs, "user", *user); err != nil {
		return 0, 0, err
	}
	return *user, *limit, nil
}

func runForYou(ctx context.Context, env *commandEnv, args []string) error {
	userID, n, err := userQuery(env, "for-you", args)
	if err != nil {
		return err
	}
	if _, err := env.train(ctx); err != nil {
		return err
	}
	res, err := env.components.Engine.ForYou(ctx, userID, n)
	if err != nil {
		return err
	}
	return env.print(res)
}

// runRecommend serves popular books when training fails, the same way the
// engine does when no model is ready.
func runRecommend(ctx context.Context, env *commandEnv, args []string) error {
	userID, n, err := userQuery(env, "recommend", args)
	if err != nil {
		return err
	}
	if _, err := env.train(ctx); err != nil {
		env.logger.Warn().Err(err).Msg("training failed, recommending without a model")
	}
	res, err := env.components.Engine.Recommend(ctx, userID, n)
	if err != nil {
		return err
	}
	return env.print(res)
}

func runCollab(ctx context.Context, env *commandEnv, args []string) error {
	userID, n, err := userQuery(env, "collab", args)
	if err != nil {
		return err
	}
	if _, err := env.train(ctx); err != nil {
		return err
	}
	items, err := env.components.Engine.RecommendForUser(ctx, userID, n)
	if err != nil {
		return err
	}
	return env.print(recommend.Result{
		Items:        items,
		Source:       recommend.SourceCollaborative,
		ModelVersion: env.components.Engine.Status().ModelVersion,
	})
}

func runPredict(ctx context.Context, env *commandEnv, args []string) error {
	fs := env.newFlagSet("predict")
	userID := fs.Int("user", 0, "user id (required)")
	bookID := fs.Int("book", 0, "book id (required)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requirePositive(fs, "user", *userID); err != nil {
		return err
	}
	if err := requirePositive(fs, "book", *bookID); err != nil {
		return err
	}
	if _, err := env.train(ctx); err != nil {
		return err
	}
	score, err := env.components.Engine.PredictScore(ctx, *userID, *bookID)
	if err != nil {
		return err
	}
	return env.print(struct {
		UserID int     `json:"user_id"`
		BookID int     `json:"book_id"`
		Score  float64 `json:"score"`
	}{*userID, *bookID, score})
}

// runPopular ranks straight from the snapshot; popularity needs no model.
func runPopular(ctx context.Context, env *commandEnv, args []string) error {
	fs := env.newFlagSet("popular")
	category := fs.String("category", "all", "manga, novel or all")
	limit := fs.Int("limit", env.cfg.Recommend.DefaultLimit, "number of books")
	filter := fs.String("filter", "", `CEL expression over book, e.g. 'book.average_rating >= 4.0'`)
	if err := parse(fs, args); err != nil {
		return err
	}
	cat, err := recommend.ParseCategory(*category)
	if err != nil {
		fmt.Fprintln(fs.Output(), err)
		return errUsage
	}
	res, err := env.components.Engine.Popular(ctx, recommend.PopularQuery{
		Category: cat,
		Limit:    *limit,
		Filter:   *filter,
	})
	if err != nil {
		return err
	}
	return env.print(res)
}

func runHistory(ctx context.Context, env *commandEnv, args []string) error {
	fs := env.newFlagSet("history")
	limit := fs.Int("limit", 10, "number of runs; 0 lists all")
	if err := parse(fs, args); err != nil {
		return err
	}
	history := env.components.History
	if history == nil {
		return errHistoryDisabled
	}
	runs, err := history.List(ctx, *limit)
	if err != nil {
		return err
	}
	return env.print(runs)
}
