package suggestions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"cinelist/internal/config"
	"cinelist/internal/logging"
	"cinelist/internal/movie"
	"cinelist/internal/recommend"
	"cinelist/internal/services"
	"cinelist/internal/store"
)

const component = "suggestions"

// ErrAlreadyPresent reports a replacement candidate that resolved to a movie
// already saved or already suggested.
var ErrAlreadyPresent = errors.New("suggested movie is already present")

// Resolver turns a candidate title and year into a full record. A nil record
// with a nil error means nothing matched.
type Resolver interface {
	LookupByExactTitle(ctx context.Context, title string, year int) (*movie.Record, error)
}

// Source produces recommendation candidates.
type Source interface {
	RequestSuggestions(ctx context.Context, sample []movie.SampleTuple, excluded []string, count int) ([]recommend.Candidate, error)
	RequestOneSuggestion(ctx context.Context, sample []movie.SampleTuple, excluded []string) (recommend.Candidate, error)
}

// StateStore is the persistence the engine reads and mutates.
type StateStore interface {
	Load(ctx context.Context) (store.State, error)
	Update(ctx context.Context, fn func(*store.State) error) (store.State, error)
}

// Options tunes the engine.
type Options struct {
	// Count caps the suggestion set and the candidates considered per request.
	Count int
	// SampleSize caps how many records of each list ground the request.
	SampleSize int
	// Concurrency bounds parallel metadata lookups.
	Concurrency int
	// Backfill allows one extra request when drops leave the set short.
	Backfill      bool
	DefaultReason string
}

// OptionsFromConfig maps the suggestions config section onto Options.
func OptionsFromConfig(cfg config.Suggestions) Options {
	return Options{
		Count:         cfg.Count,
		SampleSize:    cfg.SampleSize,
		Concurrency:   cfg.Concurrency,
		Backfill:      cfg.Backfill,
		DefaultReason: cfg.DefaultReason,
	}
}

func (o Options) withDefaults() Options {
	if o.Count <= 0 {
		o.Count = 5
	}
	if o.SampleSize <= 0 {
		o.SampleSize = 5
	}
	if o.Concurrency <= 0 {
		o.Concurrency = o.Count
	}
	if o.DefaultReason == "" {
		o.DefaultReason = "Recommended based on your taste"
	}
	return o
}

// Status distinguishes a generated set from the no-input case.
type Status int

const (
	// StatusOK means a set was generated and persisted (it may be empty).
	StatusOK Status = iota
	// StatusNoInput means both lists were empty; nothing was requested.
	StatusNoInput
)

func (s Status) String() string {
	if s == StatusNoInput {
		return "no_input"
	}
	return "ok"
}

// Outcome is the result of Generate.
type Outcome struct {
	Status      Status
	Suggestions []movie.Record
	// Candidates is how many candidates were considered; Dropped how many of
	// those did not make it into the set.
	Candidates int
	Dropped    int
}

// ReplaceOutcome is the result of ReplaceOne.
type ReplaceOutcome struct {
	// Applied is false when the target left the set before the replacement
	// was ready; the new suggestion is then discarded.
	Applied     bool
	Index       int
	Suggestion  movie.Record
	Suggestions []movie.Record
}

// Engine maintains the suggestion set. Mutations run one at a time; a call
// made while another is in flight waits for it.
type Engine struct {
	store    StateStore
	resolver Resolver
	source   Source
	opts     Options
	logger   *slog.Logger

	mu sync.Mutex
}

// New constructs an Engine.
func New(st StateStore, resolver Resolver, source Source, opts Options, logger *slog.Logger) *Engine {
	return &Engine{
		store:    st,
		resolver: resolver,
		source:   source,
		opts:     opts.withDefaults(),
		logger:   logging.NewComponentLogger(logger, component),
	}
}

// Current returns the persisted suggestion set.
func (e *Engine) Current(ctx context.Context) ([]movie.Record, error) {
	state, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return state.Suggestions, nil
}

// Generate replaces the whole suggestion set with fresh recommendations
// grounded on both lists. When both lists are empty it returns StatusNoInput
// without calling out. A failure from the suggestion source leaves the prior
// set untouched.
func (e *Engine) Generate(ctx context.Context) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx = services.WithOperation(ctx, "generate")
	logger := logging.WithContext(ctx, e.logger)

	state, err := e.store.Load(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if state.Empty() {
		logger.Info("no saved movies to ground suggestions", logging.String(logging.FieldEventType, "suggestions_no_input"))
		return Outcome{Status: StatusNoInput, Suggestions: []movie.Record{}}, nil
	}

	excl := newExclusions(state.ToWatch, state.Watched)
	sample := buildSample(state, e.opts.SampleSize)

	candidates, err := e.source.RequestSuggestions(ctx, sample, excl.titleList(), e.opts.Count)
	if err != nil {
		return Outcome{}, unavailable("generate", err)
	}
	if len(candidates) > e.opts.Count {
		logger.Debug("discarding surplus candidates",
			logging.Int("returned", len(candidates)),
			logging.Int("considered", e.opts.Count))
		candidates = candidates[:e.opts.Count]
	}

	considered := len(candidates)
	resolved, err := e.enrich(ctx, candidates, excl)
	if err != nil {
		return Outcome{}, err
	}

	if e.opts.Backfill && len(resolved) < e.opts.Count {
		extra, tried := e.backfill(ctx, sample, excl, e.opts.Count-len(resolved))
		resolved = append(resolved, extra...)
		considered += tried
	}

	saved, err := e.store.Update(ctx, func(s *store.State) error {
		// Lists may have changed while candidates were resolving.
		kept := make([]movie.Record, 0, len(resolved))
		for _, rec := range resolved {
			if !s.InLists(rec.ID) {
				kept = append(kept, rec)
			}
		}
		s.Suggestions = kept
		return nil
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("persist suggestions: %w", err)
	}

	outcome := Outcome{
		Status:      StatusOK,
		Suggestions: saved.Suggestions,
		Candidates:  considered,
		Dropped:     considered - len(saved.Suggestions),
	}
	logger.Info("suggestions generated",
		logging.String(logging.FieldEventType, "suggestions_generated"),
		logging.Int("candidates", outcome.Candidates),
		logging.Int("kept", len(outcome.Suggestions)),
		logging.Int("dropped", outcome.Dropped))
	return outcome, nil
}

// backfill runs one extra request for missing entries. Failures are logged and
// leave the primary result as is.
func (e *Engine) backfill(ctx context.Context, sample []movie.SampleTuple, excl *exclusions, missing int) ([]movie.Record, int) {
	logger := logging.WithContext(ctx, e.logger)
	candidates, err := e.source.RequestSuggestions(ctx, sample, excl.titleList(), missing)
	if err != nil {
		logging.WarnWithContext(logger, "backfill request failed", "suggestions_backfill_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "generate again later"),
			logging.String(logging.FieldImpact, "suggestion set is shorter than configured"),
		)
		return nil, 0
	}
	if len(candidates) > missing {
		candidates = candidates[:missing]
	}
	extra, err := e.enrich(ctx, candidates, excl)
	if err != nil {
		return nil, len(candidates)
	}
	logger.Debug("backfill round finished", logging.Int("requested", missing), logging.Int("kept", len(extra)))
	return extra, len(candidates)
}

// ReplaceOne swaps a single suggestion for a fresh one at the same position.
// Exclusions cover both lists and every current suggestion. The candidate is
// generated even if targetID is no longer suggested; it is then discarded and
// Applied is false.
func (e *Engine) ReplaceOne(ctx context.Context, targetID string) (ReplaceOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx = services.WithOperation(ctx, "replace")
	logger := logging.WithContext(ctx, e.logger).With(logging.String("target_id", targetID))

	state, err := e.store.Load(ctx)
	if err != nil {
		return ReplaceOutcome{}, err
	}
	excl := newExclusions(state.ToWatch, state.Watched, state.Suggestions)
	sample := buildSample(state, e.opts.SampleSize)

	candidate, err := e.source.RequestOneSuggestion(ctx, sample, excl.titleList())
	if err != nil {
		return ReplaceOutcome{}, unavailable("replace", err)
	}
	rec, err := e.resolver.LookupByExactTitle(ctx, candidate.Title, candidate.ReleaseYear())
	if err != nil {
		return ReplaceOutcome{}, unavailable("replace", err)
	}
	if rec == nil {
		return ReplaceOutcome{}, services.Wrap(services.ErrNotFound, component, "replace",
			fmt.Sprintf("no metadata match for %q (%s)", candidate.Title, candidate.Year), nil)
	}
	replacement := e.withReason(*rec, candidate.Reason)

	outcome := ReplaceOutcome{Index: -1, Suggestion: replacement}
	saved, err := e.store.Update(ctx, func(s *store.State) error {
		if s.Known(replacement.ID) {
			return fmt.Errorf("%w: %s (%s)", ErrAlreadyPresent, replacement.Title, replacement.ID)
		}
		idx := movie.IndexOf(s.Suggestions, targetID)
		if idx < 0 {
			return errNotApplied
		}
		s.Suggestions[idx] = replacement
		outcome.Applied = true
		outcome.Index = idx
		return nil
	})
	switch {
	case errors.Is(err, errNotApplied):
		logger.Info("replacement discarded; target no longer suggested",
			logging.String(logging.FieldMovieID, replacement.ID))
		outcome.Suggestions = saved.Suggestions
		return outcome, nil
	case errors.Is(err, ErrAlreadyPresent):
		logger.Debug("replacement rejected", logging.String(logging.FieldMovieID, replacement.ID), logging.Error(err))
		return ReplaceOutcome{}, err
	case err != nil:
		return ReplaceOutcome{}, fmt.Errorf("persist replacement: %w", err)
	}

	outcome.Suggestions = saved.Suggestions
	logger.Info("suggestion replaced",
		logging.String(logging.FieldMovieID, replacement.ID),
		logging.Int("index", outcome.Index))
	return outcome, nil
}

var errNotApplied = errors.New("replacement target gone")

func (e *Engine) withReason(rec movie.Record, reason string) movie.Record {
	rec = rec.Clone()
	rec.UserRating = nil
	rec.Reason = reason
	if rec.Reason == "" {
		rec.Reason = e.opts.DefaultReason
	}
	return rec
}

func unavailable(op string, err error) error {
	if errors.Is(err, services.ErrUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return services.Wrap(services.ErrUnavailable, component, op, "", err)
}
