package store

import (
	"fmt"

	"cinelist/internal/movie"
)

// State is the persisted aggregate. It is written as one JSON blob on every
// mutation and read back wholesale.
type State struct {
	ToWatch       []movie.Record `json:"toWatch" validate:"dive"`
	Watched       []movie.Record `json:"watched" validate:"dive"`
	SelectedMovie *movie.Record  `json:"selectedMovie,omitempty"`
	Suggestions   []movie.Record `json:"suggestions" validate:"dive"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := State{
		ToWatch:     movie.CloneAll(s.ToWatch),
		Watched:     movie.CloneAll(s.Watched),
		Suggestions: movie.CloneAll(s.Suggestions),
	}
	if s.SelectedMovie != nil {
		selected := s.SelectedMovie.Clone()
		out.SelectedMovie = &selected
	}
	return out
}

// Empty reports whether both user lists are empty.
func (s State) Empty() bool {
	return len(s.ToWatch) == 0 && len(s.Watched) == 0
}

// InLists reports whether id is saved in either user list.
func (s State) InLists(id string) bool {
	return movie.IndexOf(s.ToWatch, id) >= 0 || movie.IndexOf(s.Watched, id) >= 0
}

// Known reports whether id is saved in either list or currently suggested.
func (s State) Known(id string) bool {
	return s.InLists(id) || movie.IndexOf(s.Suggestions, id) >= 0
}

// MaxSuggestions bounds the current suggestion set.
const MaxSuggestions = 5

// Check verifies the cross-list invariants: every record has an ID, an ID
// lives in at most one list, and suggestions never repeat or overlap a list.
// The suggestion set holds at most MaxSuggestions records.
func (s State) Check() error {
	seen := make(map[string]string, len(s.ToWatch)+len(s.Watched))
	for _, list := range []struct {
		name    string
		records []movie.Record
	}{
		{"toWatch", s.ToWatch},
		{"watched", s.Watched},
	} {
		for _, rec := range list.records {
			if rec.ID == "" {
				return fmt.Errorf("%w: record without id in %s", ErrInvalidState, list.name)
			}
			if prior, ok := seen[rec.ID]; ok {
				if prior == list.name {
					return fmt.Errorf("%w: %s appears twice in %s", ErrInvalidState, rec.ID, prior)
				}
				return fmt.Errorf("%w: %s appears in both %s and %s", ErrInvalidState, rec.ID, prior, list.name)
			}
			seen[rec.ID] = list.name
		}
	}

	if len(s.Suggestions) > MaxSuggestions {
		return fmt.Errorf("%w: %d suggestions exceeds limit of %d", ErrInvalidState, len(s.Suggestions), MaxSuggestions)
	}
	suggested := make(map[string]struct{}, len(s.Suggestions))
	for _, rec := range s.Suggestions {
		if rec.ID == "" {
			return fmt.Errorf("%w: suggestion without id", ErrInvalidState)
		}
		if list, ok := seen[rec.ID]; ok {
			return fmt.Errorf("%w: suggestion %s already in %s", ErrInvalidState, rec.ID, list)
		}
		if _, ok := suggested[rec.ID]; ok {
			return fmt.Errorf("%w: duplicate suggestion %s", ErrInvalidState, rec.ID)
		}
		suggested[rec.ID] = struct{}{}
	}
	return nil
}

// normalize replaces nil lists with empty ones so the blob always carries
// arrays.
func (s *State) normalize() {
	if s.ToWatch == nil {
		s.ToWatch = []movie.Record{}
	}
	if s.Watched == nil {
		s.Watched = []movie.Record{}
	}
	if s.Suggestions == nil {
		s.Suggestions = []movie.Record{}
	}
}
