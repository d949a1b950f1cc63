// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/folio/internal/logging"
	"github.com/tomtom215/folio/internal/metrics"
)

// Note: the engine depends on Trainer and Ranker interfaces only. The concrete
// algorithms live in the algorithms package and are wired in by the caller,
// which keeps this package free of import cycles.

// Engine owns the served recommendation model and its lifecycle.
// Queries read the published model without locking; training builds a
// replacement off to the side and swaps it in atomically.
// It is safe for concurrent use.
type Engine struct {
	// Configuration
	config *Config
	logger zerolog.Logger

	// Collaborators
	trainer Trainer
	ranker  Ranker
	source  SnapshotSource
	history HistoryRecorder
	now     func() time.Time

	// Published model, nil until the first successful training run
	current atomic.Pointer[servingModel]

	// Training serialization
	trainMu sync.Mutex
	limiter *rate.Limiter
	version int

	// Lifecycle status
	statusMu      sync.RWMutex
	state         State
	lastTraining  *TrainingMetadata
	lastError     string
	staleReason   string
	staleSince    time.Time
	pendingReason string
	pendingSince  time.Time
	staleGen      uint64
}

// servingModel pairs a published model with the run that produced it.
type servingModel struct {
	model Model
	meta  TrainingMetadata
}

// Option configures optional Engine collaborators.
type Option func(*Engine)

// WithSource sets the snapshot source used by Train and by Popular before
// any model exists.
func WithSource(src SnapshotSource) Option {
	return func(e *Engine) { e.source = src }
}

// WithHistory records metadata of every successful training run.
func WithHistory(h HistoryRecorder) Option {
	return func(e *Engine) { e.history = h }
}

// WithClock overrides the wall clock. Used by tests to drive rate limiting.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a recommendation engine with no published model.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, trainer Trainer, ranker Ranker, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if trainer == nil {
		return nil, errors.New("trainer is required")
	}
	if ranker == nil {
		return nil, errors.New("ranker is required")
	}

	e := &Engine{
		config:  cfg.Clone(),
		logger:  logger.With().Str("component", "recommend").Logger(),
		trainer: trainer,
		ranker:  ranker,
		now:     time.Now,
		state:   StateAbsent,
	}
	for _, opt := range opts {
		opt(e)
	}

	if cfg.RetrainMinInterval > 0 {
		e.limiter = rate.NewLimiter(rate.Every(cfg.RetrainMinInterval), 1)
	}

	metrics.SetModelState(int(StateAbsent))
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Train loads a snapshot from the configured source and trains on it.
func (e *Engine) Train(ctx context.Context) (TrainingMetadata, error) {
	if e.source == nil {
		return TrainingMetadata{}, fmt.Errorf("%w: no snapshot source configured", ErrTrainingFailed)
	}
	return e.runTraining(ctx, e.source.LoadSnapshot)
}

// TrainSnapshot builds a model from snap and publishes it on success.
// At most one training run is in flight; a concurrent request gets
// ErrTrainingInProgress and requests faster than the configured interval get
// ErrRetrainThrottled. On failure the previous model keeps serving.
func (e *Engine) TrainSnapshot(ctx context.Context, snap *Snapshot) (TrainingMetadata, error) {
	return e.runTraining(ctx, func(context.Context) (*Snapshot, error) {
		return snap, nil
	})
}

func (e *Engine) runTraining(ctx context.Context, load func(context.Context) (*Snapshot, error)) (TrainingMetadata, error) {
	if err := e.acquireTrainingLock(); err != nil {
		metrics.RecordTraining(metrics.TrainingRejected, 0)
		return TrainingMetadata{}, err
	}
	defer e.trainMu.Unlock()

	startedAt := e.now()
	// Only published runs spend a token, so a failed run can be retried at once.
	if e.limiter != nil && e.limiter.TokensAt(startedAt) < 1 {
		metrics.RecordTraining(metrics.TrainingThrottled, 0)
		return TrainingMetadata{}, ErrRetrainThrottled
	}

	meta := TrainingMetadata{
		RunID:     uuid.New().String(),
		StartedAt: startedAt,
	}
	logger := e.runLogger(ctx, meta.RunID)

	prior, gen := e.beginTraining()
	logger.Info().Str("prior_state", prior.String()).Msg("starting model training")

	wallStart := time.Now()
	model, err := e.build(ctx, load, &meta)
	meta.Duration = time.Since(wallStart)
	meta.DurationMS = meta.Duration.Milliseconds()

	if err != nil {
		state := e.failTraining(prior, gen, err)
		metrics.RecordTraining(metrics.TrainingFailed, meta.Duration)
		logger.Error().
			Err(err).
			Str("state", state.String()).
			Int64("duration_ms", meta.DurationMS).
			Msg("model training failed")
		return meta, trainingFailed(err)
	}

	if e.limiter != nil {
		e.limiter.AllowN(startedAt, 1)
	}

	e.version++
	meta.ModelVersion = e.version
	meta.Stats = model.Stats()

	e.current.Store(&servingModel{model: model, meta: meta})
	state := e.completeTraining(gen, meta)

	metrics.RecordTraining(metrics.TrainingSuccess, meta.Duration)
	metrics.RecordModelPublished(meta.ModelVersion, meta.Stats.Books, meta.Stats.Ratings)

	if e.history != nil {
		if herr := e.history.RecordTraining(ctx, meta); herr != nil {
			logger.Warn().Err(herr).Msg("failed to record training history")
		}
	}

	logger.Info().
		Int("version", meta.ModelVersion).
		Int("books", meta.Stats.Books).
		Int("ratings", meta.Stats.Ratings).
		Int("users", meta.Stats.Users).
		Int("vocabulary", meta.Stats.Vocabulary).
		Int("dropped_ratings", meta.Stats.DroppedRatings).
		Str("state", state.String()).
		Int64("duration_ms", meta.DurationMS).
		Msg("model training complete")

	return meta, nil
}

// acquireTrainingLock attempts to acquire the training lock.
func (e *Engine) acquireTrainingLock() error {
	if !e.trainMu.TryLock() {
		return ErrTrainingInProgress
	}
	return nil
}

// runLogger returns the logger for one training run.
func (e *Engine) runLogger(ctx context.Context, runID string) zerolog.Logger {
	lc := e.logger.With().Str("run_id", runID)
	if cid := logging.CorrelationIDFromContext(ctx); cid != "" {
		lc = lc.Str("correlation_id", cid)
	}
	return lc.Logger()
}

// build loads, validates and trains. meta receives the snapshot sizes.
func (e *Engine) build(ctx context.Context, load func(context.Context) (*Snapshot, error), meta *TrainingMetadata) (Model, error) {
	snap, err := load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if snap != nil {
		meta.CatalogSize = len(snap.Books)
		meta.RatingCount = len(snap.Ratings)
	}

	if err := ValidateSnapshot(snap); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	model, err := e.trainer.Build(ctx, snap, e.config)
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	if model == nil || model.Stats().Books == 0 {
		return nil, errors.New("trained model has no books")
	}
	return model, nil
}

// beginTraining moves to StateTraining and returns the prior state together
// with the staleness generation observed at the start of the run.
func (e *Engine) beginTraining() (State, uint64) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	prior := e.state
	e.state = StateTraining
	e.pendingReason = ""
	e.pendingSince = time.Time{}
	metrics.SetModelState(int(StateTraining))
	return prior, e.staleGen
}

// completeTraining settles the state after a successful publish. Changes
// reported while the build ran leave the new model stale.
func (e *Engine) completeTraining(gen uint64, meta TrainingMetadata) State {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	if e.staleGen != gen {
		e.state = StateStale
		e.staleReason = e.pendingReason
		e.staleSince = e.pendingSince
	} else {
		e.state = StateReady
		e.staleReason = ""
		e.staleSince = time.Time{}
	}
	e.pendingReason = ""
	e.pendingSince = time.Time{}
	e.lastTraining = &meta
	e.lastError = ""

	metrics.SetModelState(int(e.state))
	return e.state
}

// failTraining reverts to the state that held before the run.
func (e *Engine) failTraining(prior State, gen uint64, err error) State {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	switch {
	case e.current.Load() == nil:
		e.state = StateAbsent
	case prior == StateStale:
		e.state = StateStale
	case e.staleGen != gen:
		e.state = StateStale
		e.staleReason = e.pendingReason
		e.staleSince = e.pendingSince
	default:
		e.state = StateReady
	}
	e.pendingReason = ""
	e.pendingSince = time.Time{}
	e.lastError = err.Error()

	metrics.SetModelState(int(e.state))
	return e.state
}

// MarkStale records that the catalog or ratings changed after the served model
// was built. It never triggers training. It returns true when the notification
// changed the lifecycle status: a ready model becomes stale, and a run in
// flight will publish a stale model.
func (e *Engine) MarkStale(reason string) bool {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	switch e.state {
	case StateReady:
		e.state = StateStale
		e.staleReason = reason
		e.staleSince = e.now()
		e.staleGen++
		metrics.SetModelState(int(StateStale))
		e.logger.Info().Str("reason", reason).Msg("model marked stale")
		return true
	case StateTraining:
		if e.pendingReason == "" {
			e.pendingReason = reason
			e.pendingSince = e.now()
			e.staleGen++
			return true
		}
		return false
	default:
		return false
	}
}

// Status returns a point-in-time view of the lifecycle.
func (e *Engine) Status() Status {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()

	st := Status{
		State:       e.state,
		LastError:   e.lastError,
		StaleReason: e.staleReason,
		StaleSince:  e.staleSince,
	}
	if e.lastTraining != nil {
		meta := *e.lastTraining
		st.LastTraining = &meta
	}
	if sm := e.current.Load(); sm != nil {
		st.Serving = true
		st.ModelVersion = sm.meta.ModelVersion
	}
	return st
}

// serving returns the published model or ErrModelNotReady.
func (e *Engine) serving() (*servingModel, error) {
	sm := e.current.Load()
	if sm == nil {
		return nil, ErrModelNotReady
	}
	return sm, nil
}

// clampLimit caps a requested size at the configured maximum.
func (e *Engine) clampLimit(k int) int {
	if k > e.config.Limits.MaxLimit {
		return e.config.Limits.MaxLimit
	}
	return k
}

// SimilarBooks returns books with content most similar to bookID. When no
// book has a positive similarity it falls back to books sharing the primary
// category of bookID, in catalog order with score 0.
func (e *Engine) SimilarBooks(_ context.Context, bookID, k int) (*Result, error) {
	const op = "similar_books"

	sm, err := e.serving()
	if err != nil {
		metrics.RecordQueryError(op, errorType(err))
		return nil, err
	}
	k = e.clampLimit(k)

	items, err := sm.model.SimilarBooks(bookID, k)
	if err != nil {
		metrics.RecordQueryError(op, errorType(err))
		return nil, err
	}

	res := &Result{Items: items, Source: SourceContent, ModelVersion: sm.meta.ModelVersion}
	if !hasPositive(items) {
		res.Items = categoryNeighbors(sm.model, bookID, k)
		res.Source = SourceCategory
	}

	metrics.RecordQuery(op, string(res.Source))
	return res, nil
}

// PredictScore estimates the rating userID would give bookID.
func (e *Engine) PredictScore(_ context.Context, userID, bookID int) (float64, error) {
	const op = "predict_score"

	sm, err := e.serving()
	if err != nil {
		metrics.RecordQueryError(op, errorType(err))
		return 0, err
	}
	score, err := sm.model.PredictScore(userID, bookID)
	if err != nil {
		metrics.RecordQueryError(op, errorType(err))
		return 0, err
	}
	metrics.RecordQuery(op, string(SourceCollaborative))
	return score, nil
}

// RecommendForUser ranks unrated books by collaborative prediction alone.
func (e *Engine) RecommendForUser(_ context.Context, userID, k int) ([]ScoredBook, error) {
	const op = "recommend_for_user"

	sm, err := e.serving()
	if err != nil {
		metrics.RecordQueryError(op, errorType(err))
		return nil, err
	}
	items, err := sm.model.RecommendForUser(userID, e.clampLimit(k))
	if err != nil {
		metrics.RecordQueryError(op, errorType(err))
		return nil, err
	}
	metrics.RecordQuery(op, string(SourceCollaborative))
	return items, nil
}

// ForYou returns the hybrid ranking for userID. Result.ColdStart is set and
// Items is empty when the user has neither ratings nor bookmarks.
func (e *Engine) ForYou(_ context.Context, userID, n int) (*Result, error) {
	const op = "for_you"

	sm, err := e.serving()
	if err != nil {
		metrics.RecordQueryError(op, errorType(err))
		return nil, err
	}
	items, cold, err := sm.model.ForYou(userID, e.clampLimit(n))
	if err != nil {
		metrics.RecordQueryError(op, errorType(err))
		return nil, err
	}
	metrics.RecordQuery(op, string(SourceHybrid))
	return &Result{
		Items:        items,
		ColdStart:    cold,
		Source:       SourceHybrid,
		ModelVersion: sm.meta.ModelVersion,
	}, nil
}

// Recommend is the personalized entry point. It serves the hybrid ranking and
// degrades to popularity when no model is ready, the user is cold, the hybrid
// list is empty, or the hybrid scorer fails. Invalid arguments are returned.
func (e *Engine) Recommend(ctx context.Context, userID, n int) (*Result, error) {
	if n == 0 {
		n = e.config.Limits.DefaultLimit
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidArgument, n)
	}

	res, err := e.ForYou(ctx, userID, n)
	var reason string
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return nil, err
	case errors.Is(err, ErrModelNotReady):
		reason = "not_ready"
	case err != nil:
		reason = "error"
		e.logger.Warn().Err(err).Int("user_id", userID).Msg("personalized recommendation failed, serving popular books")
	case res.ColdStart:
		reason = "cold_start"
	case len(res.Items) == 0:
		reason = "empty"
	default:
		return res, nil
	}

	metrics.RecordPopularityFallback(reason)
	pop, perr := e.Popular(ctx, PopularQuery{Category: CategoryAll, Limit: n})
	if perr != nil {
		return nil, perr
	}
	pop.ColdStart = reason == "cold_start"
	return pop, nil
}

// Popular ranks books by confidence-weighted popularity. It uses the served
// model's catalog, or a fresh snapshot when no model has been published.
func (e *Engine) Popular(ctx context.Context, q PopularQuery) (*Result, error) {
	const op = "popular"

	if q.Limit == 0 {
		q.Limit = e.config.Limits.DefaultLimit
	}
	if q.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidArgument, q.Limit)
	}
	q.Limit = e.clampLimit(q.Limit)

	var (
		books   []BookRecord
		version int
	)
	if sm := e.current.Load(); sm != nil {
		books = sm.model.Catalog()
		version = sm.meta.ModelVersion
	} else if e.source != nil {
		snap, err := e.source.LoadSnapshot(ctx)
		if err != nil {
			metrics.RecordQueryError(op, "snapshot")
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		books = snap.Books
	} else {
		metrics.RecordQueryError(op, errorType(ErrModelNotReady))
		return nil, ErrModelNotReady
	}

	items, err := e.ranker.Rank(ctx, books, q)
	if err != nil {
		metrics.RecordQueryError(op, errorType(err))
		return nil, err
	}
	metrics.RecordQuery(op, string(SourcePopularity))
	return &Result{Items: items, Source: SourcePopularity, ModelVersion: version}, nil
}

// hasPositive reports whether any item scored above zero.
func hasPositive(items []ScoredBook) bool {
	for _, it := range items {
		if it.Score > 0 {
			return true
		}
	}
	return false
}

// categoryNeighbors returns up to k other books sharing the primary category
// of bookID, in catalog order.
func categoryNeighbors(m Model, bookID, k int) []ScoredBook {
	out := make([]ScoredBook, 0)
	book, ok := m.Book(bookID)
	if !ok {
		return out
	}
	category := book.PrimaryCategory()
	if category == "" {
		return out
	}

	catalog := m.Catalog()
	for i := range catalog {
		if len(out) >= k {
			break
		}
		b := &catalog[i]
		if b.ID == bookID || !b.HasCategory(category) {
			continue
		}
		out = append(out, ScoredBook{BookID: b.ID, Score: 0})
	}
	return out
}

// errorType maps an error to a metric label.
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrUnpredictable):
		return "unpredictable"
	case errors.Is(err, ErrModelNotReady):
		return "not_ready"
	default:
		return "internal"
	}
}
