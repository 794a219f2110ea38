package testsupport

import (
	"path/filepath"
	"testing"

	"cinelist/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.OMDb.APIKey = "test"
	cfgVal.LLM.APIKey = "test"
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithOMDbServer points the metadata client at a test server.
func WithOMDbServer(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OMDb.BaseURL = url
		b.cfg.OMDb.RequestsPerSecond = 0
		b.cfg.OMDb.CacheTTLSeconds = 0
	}
}

// WithLLMServer points the recommendation client at a test server.
func WithLLMServer(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = url
		b.cfg.LLM.RetryAttempts = 1
	}
}

// WithSuggestionCount overrides the suggestion set size.
func WithSuggestionCount(count int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Suggestions.Count = count
	}
}

// WithBackfill toggles the suggestion backfill round.
func WithBackfill(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Suggestions.Backfill = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
