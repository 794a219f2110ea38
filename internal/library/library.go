package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cinelist/internal/logging"
	"cinelist/internal/movie"
	"cinelist/internal/services"
	"cinelist/internal/store"
	"cinelist/internal/textutil"
)

var (
	// ErrDuplicate indicates the movie is already saved in one of the lists.
	ErrDuplicate = errors.New("movie already saved")
	// ErrInvalidRating indicates a rating outside 1-10.
	ErrInvalidRating = fmt.Errorf("rating must be between %d and %d", movie.MinRating, movie.MaxRating)
)

// StateStore is the persistence the library mutates.
type StateStore interface {
	Load(ctx context.Context) (store.State, error)
	Update(ctx context.Context, fn func(*store.State) error) (store.State, error)
}

// Location names where a record lives.
type Location string

const (
	LocationToWatch    Location = "toWatch"
	LocationWatched    Location = "watched"
	LocationSuggestion Location = "suggestions"
)

// Library applies list operations to the persisted state. Every operation is
// a single store update, so list exclusivity holds after each call.
type Library struct {
	store  StateStore
	logger *slog.Logger
}

// New constructs a Library.
func New(st StateStore, logger *slog.Logger) *Library {
	return &Library{
		store:  st,
		logger: logging.NewComponentLogger(logger, "library"),
	}
}

// AddToWatch saves rec at the head of the to-watch list.
func (l *Library) AddToWatch(ctx context.Context, rec movie.Record) (store.State, error) {
	if err := requireID(rec); err != nil {
		return store.State{}, err
	}
	entry := rec.Clone().WithoutRating()
	entry.Reason = ""
	state, err := l.store.Update(ctx, func(s *store.State) error {
		if s.InLists(entry.ID) {
			return fmt.Errorf("%w: %s", ErrDuplicate, entry.Title)
		}
		s.ToWatch = prepend(s.ToWatch, entry)
		s.Suggestions = without(s.Suggestions, entry.ID)
		return nil
	})
	if err != nil {
		return state, err
	}
	l.logger.Info("added to watch list", logging.String(logging.FieldMovieID, entry.ID), logging.String("title", entry.Title))
	return state, nil
}

// AddWatched saves rec at the head of the watched list with rating.
func (l *Library) AddWatched(ctx context.Context, rec movie.Record, rating int) (store.State, error) {
	if err := requireID(rec); err != nil {
		return store.State{}, err
	}
	if !movie.ValidRating(rating) {
		return store.State{}, ErrInvalidRating
	}
	entry := rec.Clone().WithRating(rating)
	entry.Reason = ""
	state, err := l.store.Update(ctx, func(s *store.State) error {
		if s.InLists(entry.ID) {
			return fmt.Errorf("%w: %s", ErrDuplicate, entry.Title)
		}
		s.Watched = prepend(s.Watched, entry)
		s.Suggestions = without(s.Suggestions, entry.ID)
		return nil
	})
	if err != nil {
		return state, err
	}
	l.logger.Info("added to watched list",
		logging.String(logging.FieldMovieID, entry.ID),
		logging.String("title", entry.Title),
		logging.Int("rating", rating))
	return state, nil
}

// MarkAsWatched moves a to-watch entry to the head of the watched list and
// sets its rating.
func (l *Library) MarkAsWatched(ctx context.Context, id string, rating int) (store.State, error) {
	if !movie.ValidRating(rating) {
		return store.State{}, ErrInvalidRating
	}
	state, err := l.store.Update(ctx, func(s *store.State) error {
		idx := movie.IndexOf(s.ToWatch, id)
		if idx < 0 {
			return notFound("mark watched", id, LocationToWatch)
		}
		entry := s.ToWatch[idx].WithRating(rating)
		s.ToWatch = removeAt(s.ToWatch, idx)
		s.Watched = prepend(s.Watched, entry)
		return nil
	})
	if err != nil {
		return state, err
	}
	l.logger.Info("marked as watched", logging.String(logging.FieldMovieID, id), logging.Int("rating", rating))
	return state, nil
}

// MarkAsUnwatched moves a watched entry back to the head of the to-watch list
// and clears its rating.
func (l *Library) MarkAsUnwatched(ctx context.Context, id string) (store.State, error) {
	state, err := l.store.Update(ctx, func(s *store.State) error {
		idx := movie.IndexOf(s.Watched, id)
		if idx < 0 {
			return notFound("mark unwatched", id, LocationWatched)
		}
		entry := s.Watched[idx].WithoutRating()
		s.Watched = removeAt(s.Watched, idx)
		s.ToWatch = prepend(s.ToWatch, entry)
		return nil
	})
	if err != nil {
		return state, err
	}
	l.logger.Info("marked as unwatched", logging.String(logging.FieldMovieID, id))
	return state, nil
}

// SetRating changes the rating of a watched entry in place.
func (l *Library) SetRating(ctx context.Context, id string, rating int) (store.State, error) {
	if !movie.ValidRating(rating) {
		return store.State{}, ErrInvalidRating
	}
	return l.store.Update(ctx, func(s *store.State) error {
		idx := movie.IndexOf(s.Watched, id)
		if idx < 0 {
			return notFound("rate", id, LocationWatched)
		}
		s.Watched[idx] = s.Watched[idx].WithRating(rating)
		return nil
	})
}

// Remove deletes id from whichever list holds it and clears the selection
// when it pointed at the removed record.
func (l *Library) Remove(ctx context.Context, id string) (store.State, error) {
	state, err := l.store.Update(ctx, func(s *store.State) error {
		switch {
		case movie.IndexOf(s.ToWatch, id) >= 0:
			s.ToWatch = without(s.ToWatch, id)
		case movie.IndexOf(s.Watched, id) >= 0:
			s.Watched = without(s.Watched, id)
		default:
			return notFound("remove", id, "")
		}
		if s.SelectedMovie != nil && s.SelectedMovie.ID == id {
			s.SelectedMovie = nil
		}
		return nil
	})
	if err != nil {
		return state, err
	}
	l.logger.Info("removed from lists", logging.String(logging.FieldMovieID, id))
	return state, nil
}

// Refresh merges fuller detail fields into a saved record without touching
// its rating or position.
func (l *Library) Refresh(ctx context.Context, details movie.Record) (store.State, error) {
	if err := requireID(details); err != nil {
		return store.State{}, err
	}
	return l.store.Update(ctx, func(s *store.State) error {
		found := false
		for _, list := range [][]movie.Record{s.ToWatch, s.Watched, s.Suggestions} {
			if idx := movie.IndexOf(list, details.ID); idx >= 0 {
				list[idx] = list[idx].MergeDetails(details)
				found = true
			}
		}
		if s.SelectedMovie != nil && s.SelectedMovie.ID == details.ID {
			merged := s.SelectedMovie.MergeDetails(details)
			s.SelectedMovie = &merged
			found = true
		}
		if !found {
			return notFound("refresh", details.ID, "")
		}
		return nil
	})
}

// Select records which movie the detail view shows. The record does not need
// to be saved in a list.
func (l *Library) Select(ctx context.Context, rec movie.Record) (store.State, error) {
	if err := requireID(rec); err != nil {
		return store.State{}, err
	}
	selected := rec.Clone()
	return l.store.Update(ctx, func(s *store.State) error {
		s.SelectedMovie = &selected
		return nil
	})
}

// ClearSelection forgets the selected movie.
func (l *Library) ClearSelection(ctx context.Context) (store.State, error) {
	return l.store.Update(ctx, func(s *store.State) error {
		s.SelectedMovie = nil
		return nil
	})
}

// Find returns the saved or suggested record for id and where it lives.
func (l *Library) Find(ctx context.Context, id string) (movie.Record, Location, error) {
	state, err := l.store.Load(ctx)
	if err != nil {
		return movie.Record{}, "", err
	}
	rec, loc, ok := locate(state, id)
	if !ok {
		return movie.Record{}, "", notFound("find", id, "")
	}
	return rec, loc, nil
}

// Resolve maps user input to a known external ID. Input that is already a
// known ID is returned as is; otherwise the closest title across both lists
// and the suggestions wins.
func (l *Library) Resolve(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", services.Wrap(services.ErrValidation, "library", "resolve", "empty query", nil)
	}
	state, err := l.store.Load(ctx)
	if err != nil {
		return "", err
	}
	if _, _, ok := locate(state, query); ok {
		return query, nil
	}

	all := make([]movie.Record, 0, len(state.ToWatch)+len(state.Watched)+len(state.Suggestions))
	all = append(all, state.ToWatch...)
	all = append(all, state.Watched...)
	all = append(all, state.Suggestions...)
	titles := make([]string, len(all))
	for i, rec := range all {
		titles[i] = rec.Title
	}
	idx, score := textutil.BestMatch(query, titles, textutil.DefaultMatchThreshold)
	decision := "none"
	if idx >= 0 {
		decision = "matched"
	}
	l.logger.Debug("resolved title query",
		logging.String("query", query),
		logging.String("decision_result", decision),
		logging.Float64("score", score))
	if idx < 0 {
		return "", notFound("resolve", query, "")
	}
	return all[idx].ID, nil
}

func locate(state store.State, id string) (movie.Record, Location, bool) {
	if idx := movie.IndexOf(state.ToWatch, id); idx >= 0 {
		return state.ToWatch[idx], LocationToWatch, true
	}
	if idx := movie.IndexOf(state.Watched, id); idx >= 0 {
		return state.Watched[idx], LocationWatched, true
	}
	if idx := movie.IndexOf(state.Suggestions, id); idx >= 0 {
		return state.Suggestions[idx], LocationSuggestion, true
	}
	return movie.Record{}, "", false
}

func requireID(rec movie.Record) error {
	if strings.TrimSpace(rec.ID) == "" {
		return services.Wrap(services.ErrValidation, "library", "", "movie record has no external id", nil)
	}
	return nil
}

func notFound(op, id string, where Location) error {
	msg := id
	if where != "" {
		msg = fmt.Sprintf("%s not in %s", id, where)
	}
	return services.Wrap(services.ErrNotFound, "library", op, msg, nil)
}

func prepend(records []movie.Record, rec movie.Record) []movie.Record {
	out := make([]movie.Record, 0, len(records)+1)
	out = append(out, rec)
	return append(out, records...)
}

func removeAt(records []movie.Record, idx int) []movie.Record {
	out := make([]movie.Record, 0, len(records)-1)
	out = append(out, records[:idx]...)
	return append(out, records[idx+1:]...)
}

func without(records []movie.Record, id string) []movie.Record {
	out := make([]movie.Record, 0, len(records))
	for _, rec := range records {
		if rec.ID != id {
			out = append(out, rec)
		}
	}
	return out
}
