package suggestions

import (
	"context"
	"fmt"

	"cinelist/internal/logging"
	"cinelist/internal/movie"
	"cinelist/internal/services"
	"cinelist/internal/store"
)

// Target is the list a promoted suggestion moves into.
type Target string

const (
	TargetToWatch Target = "toWatch"
	TargetWatched Target = "watched"
)

// Promote moves a suggestion into a user list. Watched entries need a rating
// on the 1-10 scale; the reason is dropped. The suggestion leaves the set
// without a replacement.
func (e *Engine) Promote(ctx context.Context, id string, target Target, rating int) (movie.Record, error) {
	switch target {
	case TargetToWatch:
	case TargetWatched:
		if !movie.ValidRating(rating) {
			return movie.Record{}, services.Wrap(services.ErrValidation, component, "promote",
				fmt.Sprintf("rating must be between %d and %d", movie.MinRating, movie.MaxRating), nil)
		}
	default:
		return movie.Record{}, services.Wrap(services.ErrValidation, component, "promote", fmt.Sprintf("unknown target %q", target), nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var promoted movie.Record
	_, err := e.store.Update(ctx, func(s *store.State) error {
		idx := movie.IndexOf(s.Suggestions, id)
		if idx < 0 {
			return services.Wrap(services.ErrNotFound, component, "promote", id+" is not suggested", nil)
		}
		if s.InLists(id) {
			return fmt.Errorf("%w: %s", ErrAlreadyPresent, id)
		}
		promoted = s.Suggestions[idx].Clone()
		promoted.Reason = ""
		s.Suggestions = append(s.Suggestions[:idx:idx], s.Suggestions[idx+1:]...)
		if target == TargetWatched {
			promoted = promoted.WithRating(rating)
			s.Watched = append([]movie.Record{promoted}, s.Watched...)
		} else {
			promoted = promoted.WithoutRating()
			s.ToWatch = append([]movie.Record{promoted}, s.ToWatch...)
		}
		return nil
	})
	if err != nil {
		return movie.Record{}, err
	}
	e.logger.Info("suggestion promoted",
		logging.String(logging.FieldMovieID, id),
		logging.String("target", string(target)))
	return promoted, nil
}

// Dismiss removes a suggestion without replacing it and returns the remaining
// set.
func (e *Engine) Dismiss(ctx context.Context, id string) ([]movie.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	saved, err := e.store.Update(ctx, func(s *store.State) error {
		idx := movie.IndexOf(s.Suggestions, id)
		if idx < 0 {
			return services.Wrap(services.ErrNotFound, component, "dismiss", id+" is not suggested", nil)
		}
		s.Suggestions = append(s.Suggestions[:idx:idx], s.Suggestions[idx+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("suggestion dismissed", logging.String(logging.FieldMovieID, id))
	return saved.Suggestions, nil
}
