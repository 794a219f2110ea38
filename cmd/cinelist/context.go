package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"cinelist/internal/config"
	"cinelist/internal/library"
	"cinelist/internal/logging"
	"cinelist/internal/omdb"
	"cinelist/internal/recommend"
	"cinelist/internal/services"
	"cinelist/internal/store"
	"cinelist/internal/suggestions"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		c.logger = logging.NewNop()
		cfg, err := c.ensureConfig()
		if err != nil {
			return
		}
		if logger, err := logging.NewFromConfig(cfg); err == nil {
			c.logger = logger
		}
	})
	return c.logger
}

// session holds what a single command invocation works with. The store stays
// open, and the data directory locked, until the command returns.
type session struct {
	ctx     context.Context
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	library *library.Library
}

func (c *commandContext) withSession(cmd *cobra.Command, operation string, fn func(*session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger := c.log()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = services.WithRequestID(ctx, uuid.NewString())
	ctx = services.WithOperation(ctx, operation)

	st, err := store.Open(cfg, logger)
	if err != nil {
		if errors.Is(err, store.ErrLocked) {
			return fmt.Errorf("another cinelist process is using %s; retry when it finishes", cfg.Paths.DataDir)
		}
		return err
	}
	defer st.Close()

	sess := &session{
		ctx:     ctx,
		cfg:     cfg,
		logger:  logging.WithContext(ctx, logger),
		store:   st,
		library: library.New(st, logger),
	}
	return fn(sess)
}

func (s *session) metadata() (*omdb.Client, error) {
	return omdb.NewFromConfig(s.cfg, s.logger)
}

// engine builds the suggestion engine. Offline engines have no metadata or
// suggestion clients and serve only reads, promotions, and dismissals.
func (s *session) engine(online bool) (*suggestions.Engine, error) {
	opts := suggestions.OptionsFromConfig(s.cfg.Suggestions)
	if !online {
		return suggestions.New(s.store, nil, nil, opts, s.logger), nil
	}
	meta, err := s.metadata()
	if err != nil {
		return nil, err
	}
	source, err := recommend.NewFromConfig(s.cfg, s.logger)
	if err != nil {
		return nil, err
	}
	return suggestions.New(s.store, meta, source, opts, s.logger), nil
}

// resolveID maps an ID or a saved title onto a known external ID.
func (s *session) resolveID(arg string) (string, error) {
	return s.library.Resolve(s.ctx, arg)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// describeError prefixes the error with a short hint for the common kinds.
func describeError(err error) string {
	switch services.Kind(err) {
	case "unavailable":
		return fmt.Sprintf("%v (the service may be down; try again later)", err)
	case "configuration":
		return fmt.Sprintf("%v (run `cinelist config init` to create a config file)", err)
	default:
		return err.Error()
	}
}
