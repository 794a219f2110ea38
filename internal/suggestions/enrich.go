package suggestions

import (
	"context"

	"golang.org/x/sync/errgroup"

	"cinelist/internal/logging"
	"cinelist/internal/movie"
	"cinelist/internal/recommend"
	"cinelist/internal/store"
	"cinelist/internal/textutil"
)

// exclusions holds the folded titles and external IDs a suggestion may not
// repeat.
type exclusions struct {
	titles []string
	seen   map[string]struct{}
	ids    map[string]struct{}
}

func newExclusions(lists ...[]movie.Record) *exclusions {
	ex := &exclusions{
		seen: make(map[string]struct{}),
		ids:  make(map[string]struct{}),
	}
	for _, list := range lists {
		for _, rec := range list {
			ex.add(rec)
		}
	}
	return ex
}

func (x *exclusions) add(rec movie.Record) {
	if rec.ID != "" {
		x.ids[rec.ID] = struct{}{}
	}
	title := textutil.FoldTitle(rec.Title)
	if title == "" {
		return
	}
	if _, ok := x.seen[title]; ok {
		return
	}
	x.seen[title] = struct{}{}
	x.titles = append(x.titles, title)
}

func (x *exclusions) hasID(id string) bool {
	_, ok := x.ids[id]
	return ok
}

func (x *exclusions) titleList() []string {
	return append([]string(nil), x.titles...)
}

// buildSample takes up to perList records from each list, watched first.
func buildSample(state store.State, perList int) []movie.SampleTuple {
	sample := make([]movie.SampleTuple, 0, 2*perList)
	for _, list := range [][]movie.Record{state.Watched, state.ToWatch} {
		for i, rec := range list {
			if i >= perList {
				break
			}
			sample = append(sample, rec.Sample())
		}
	}
	return sample
}

// enrich resolves candidates concurrently and returns the survivors in
// candidate order. Misses, lookup errors, excluded IDs, and repeats within the
// batch are dropped. Survivors are added to excl.
func (e *Engine) enrich(ctx context.Context, candidates []recommend.Candidate, excl *exclusions) ([]movie.Record, error) {
	logger := logging.WithContext(ctx, e.logger)
	results := make([]*movie.Record, len(candidates))

	var g errgroup.Group
	g.SetLimit(e.opts.Concurrency)
	for i, candidate := range candidates {
		g.Go(func() error {
			rec, err := e.resolver.LookupByExactTitle(ctx, candidate.Title, candidate.ReleaseYear())
			if err != nil {
				logger.Debug("candidate dropped",
					logging.String("title", candidate.Title),
					logging.String("year", candidate.Year),
					logging.String("drop_reason", "lookup_failed"),
					logging.Error(err))
				return nil
			}
			if rec == nil {
				logger.Debug("candidate dropped",
					logging.String("title", candidate.Title),
					logging.String("year", candidate.Year),
					logging.String("drop_reason", "no_match"))
				return nil
			}
			enriched := e.withReason(*rec, candidate.Reason)
			results[i] = &enriched
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]movie.Record, 0, len(results))
	for _, rec := range results {
		if rec == nil {
			continue
		}
		if excl.hasID(rec.ID) {
			logger.Debug("candidate dropped",
				logging.String(logging.FieldMovieID, rec.ID),
				logging.String("title", rec.Title),
				logging.String("drop_reason", "already_known"))
			continue
		}
		excl.add(*rec)
		out = append(out, *rec)
	}
	return out, nil
}
