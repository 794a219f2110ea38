package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"cinelist/internal/config"
	"cinelist/internal/logging"
)

const stateKey = "state"

// Store persists the State aggregate in a SQLite key/value table. One process
// at a time may hold the data directory; within the process Update is the
// single writer.
type Store struct {
	db     *sql.DB
	path   string
	lock   *flock.Flock
	logger *slog.Logger

	mu sync.Mutex
}

// Open locks the data directory and opens (creating if needed) the database.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("store: config required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrLocked, cfg.LockPath())
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := initSchema(context.Background(), db); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return &Store{
		db:     db,
		path:   dbPath,
		lock:   lock,
		logger: logging.NewComponentLogger(logger, "store"),
	}, nil
}

// Close closes the database and releases the directory lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = fmt.Errorf("release lock: %w", unlockErr)
		}
	}
	return err
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns a copy of the persisted state. A fresh database yields an
// empty state.
func (s *Store) Load(ctx context.Context) (State, error) {
	ctx = ensureContext(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Update runs fn against a copy of the current state and, when fn succeeds
// and the result keeps the list invariants, writes the whole state back.
// An error from fn or the invariant check leaves the stored state untouched.
func (s *Store) Update(ctx context.Context, fn func(*State) error) (State, error) {
	ctx = ensureContext(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return State{}, err
	}
	next := current.Clone()
	if err := fn(&next); err != nil {
		return current, err
	}
	if err := next.Check(); err != nil {
		return current, err
	}
	if err := s.save(ctx, next); err != nil {
		return current, err
	}
	return next.Clone(), nil
}

// Reset clears all lists, the selection, and suggestions.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.Update(ctx, func(st *State) error {
		*st = State{}
		return nil
	})
	if err == nil {
		s.logger.Info("state reset")
	}
	return err
}

func (s *Store) load(ctx context.Context) (State, error) {
	raw, ok, err := s.readValue(ctx, stateKey)
	if err != nil {
		return State{}, err
	}
	var st State
	if ok && len(raw) > 0 {
		if err := json.Unmarshal(raw, &st); err != nil {
			return State{}, fmt.Errorf("decode state: %w", err)
		}
	}
	st.normalize()
	return st, nil
}

func (s *Store) save(ctx context.Context, st State) error {
	st.normalize()
	encoded, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.writeValue(ctx, stateKey, encoded); err != nil {
		return err
	}
	s.logger.Debug("state saved",
		logging.Int("to_watch", len(st.ToWatch)),
		logging.Int("watched", len(st.Watched)),
		logging.Int("suggestions", len(st.Suggestions)))
	return nil
}
