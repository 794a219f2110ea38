package testsupport

import (
	"context"
	"testing"

	"cinelist/internal/config"
	"cinelist/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg, nil)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

// Seed replaces the store contents with state.
func Seed(t testing.TB, st *store.Store, state store.State) {
	t.Helper()

	if _, err := st.Update(context.Background(), func(s *store.State) error {
		*s = state
		return nil
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
}
