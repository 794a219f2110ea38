package store

import (
	"context"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"cinelist/internal/logging"
	"cinelist/internal/movie"
	"cinelist/internal/services"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Export writes the persisted state to w in the interchange layout, which is
// exactly the stored shape.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	st, err := s.Load(ctx)
	if err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	encoded = append(encoded, '\n')
	if _, err := w.Write(encoded); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// Import replaces the whole state with the interchange document read from r.
// Records must carry an ID and title, ratings must be on the 1-10 scale, and
// the lists must be mutually exclusive. Suggestions that overlap a list are
// dropped rather than rejected.
func (s *Store) Import(ctx context.Context, r io.Reader) (State, error) {
	var incoming State
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&incoming); err != nil {
		return State{}, services.Wrap(services.ErrValidation, "store", "import", "decode document", err)
	}
	if err := validate.Struct(incoming); err != nil {
		return State{}, services.Wrap(services.ErrValidation, "store", "import", "invalid record", err)
	}

	incoming.Suggestions = admissibleSuggestions(incoming)

	if err := incoming.Check(); err != nil {
		return State{}, services.Wrap(services.ErrValidation, "store", "import", "", err)
	}

	st, err := s.Update(ctx, func(current *State) error {
		*current = incoming
		return nil
	})
	if err != nil {
		return State{}, err
	}
	s.logger.Info("state imported",
		logging.Int("to_watch", len(st.ToWatch)),
		logging.Int("watched", len(st.Watched)),
		logging.Int("suggestions", len(st.Suggestions)))
	return st, nil
}

// admissibleSuggestions keeps the imported suggestions that could have been
// produced locally: first occurrence only, never a list member, and no more
// than MaxSuggestions in document order.
func admissibleSuggestions(st State) []movie.Record {
	kept := make([]movie.Record, 0, min(len(st.Suggestions), MaxSuggestions))
	seen := make(map[string]struct{}, len(st.Suggestions))
	for _, rec := range st.Suggestions {
		if len(kept) == MaxSuggestions {
			break
		}
		if _, dup := seen[rec.ID]; dup || st.InLists(rec.ID) {
			continue
		}
		seen[rec.ID] = struct{}{}
		kept = append(kept, rec)
	}
	return kept
}
