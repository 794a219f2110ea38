package recommend

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"cinelist/internal/config"
	"cinelist/internal/logging"
	"cinelist/internal/movie"
	"cinelist/internal/services"
	"cinelist/internal/services/llm"
)

const (
	component = "recommend"

	defaultTemperature        = 0.9
	defaultReplaceTemperature = 1.0
)

// ErrUnparseable reports model output from which no title/year pair could be
// recovered. It is always wrapped with services.ErrUnavailable.
var ErrUnparseable = errors.New("no suggestions could be parsed from model output")

// Candidate is an unresolved recommendation returned by the model.
type Candidate struct {
	Title  string `json:"title"`
	Year   string `json:"year"`
	Reason string `json:"reason,omitempty"`
}

func (c Candidate) valid() bool {
	return c.Title != "" && c.Year != ""
}

// ReleaseYear returns the numeric year, 0 when it cannot be read.
func (c Candidate) ReleaseYear() int {
	return movie.ParseYear(c.Year)
}

// Completer is the chat completion capability the client needs.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Client requests movie recommendations from a language model.
type Client struct {
	completer          Completer
	temperature        float64
	replaceTemperature float64
	logger             *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTemperatures overrides the sampling temperatures for bulk and single
// requests.
func WithTemperatures(bulk, single float64) Option {
	return func(c *Client) {
		c.temperature = bulk
		c.replaceTemperature = single
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, component)
		}
	}
}

// New constructs a Client around completer.
func New(completer Completer, opts ...Option) *Client {
	client := &Client{
		completer:          completer,
		temperature:        defaultTemperature,
		replaceTemperature: defaultReplaceTemperature,
		logger:             logging.NewComponentLogger(nil, component),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// NewFromConfig builds the OpenRouter-backed client described by cfg.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "config required", nil)
	}
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "api key required (set llm.api_key or OPENROUTER_API_KEY)", nil)
	}
	completer := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	}, llm.WithRetryMaxAttempts(cfg.LLM.RetryAttempts))
	return New(completer,
		WithTemperatures(cfg.Suggestions.Temperature, cfg.Suggestions.ReplaceTemperature),
		WithLogger(logger),
	), nil
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthCheck confirms the model endpoint answers. Completers without a
// health check of their own are assumed healthy.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c == nil || c.completer == nil {
		return services.Wrap(services.ErrConfiguration, component, "health_check", "suggestion source not configured", nil)
	}
	checker, ok := c.completer.(healthChecker)
	if !ok {
		return nil
	}
	if err := checker.HealthCheck(ctx); err != nil {
		return services.Wrap(services.ErrUnavailable, component, "health_check", "model did not answer", err)
	}
	return nil
}

// RequestSuggestions asks for count recommendations grounded on sample. The
// model may return more or fewer; callers decide how many to consider.
func (c *Client) RequestSuggestions(ctx context.Context, sample []movie.SampleTuple, excluded []string, count int) ([]Candidate, error) {
	if count <= 0 {
		count = 1
	}
	return c.request(ctx, "request_suggestions", sample, excluded, count, c.temperature)
}

// RequestOneSuggestion asks for a single recommendation at a higher
// temperature than the bulk request.
func (c *Client) RequestOneSuggestion(ctx context.Context, sample []movie.SampleTuple, excluded []string) (Candidate, error) {
	candidates, err := c.request(ctx, "request_one_suggestion", sample, excluded, 1, c.replaceTemperature)
	if err != nil {
		return Candidate{}, err
	}
	return candidates[0], nil
}

func (c *Client) request(ctx context.Context, op string, sample []movie.SampleTuple, excluded []string, count int, temperature float64) ([]Candidate, error) {
	if c == nil || c.completer == nil {
		return nil, services.Wrap(services.ErrConfiguration, component, op, "suggestion source not configured", nil)
	}
	content, err := c.completer.Complete(ctx, llm.Request{
		System:      systemPrompt,
		User:        buildUserPrompt(sample, excluded, count),
		Temperature: temperature,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, component, op, "suggestion source unavailable", err)
	}

	result := Parse(content)
	if !result.OK() {
		logging.WarnWithContext(c.logger, "model output could not be parsed", "suggestion_parse_failed",
			logging.String(logging.FieldOperation, op),
			logging.String("response_snippet", llm.SummarizeSnippet(content)),
			logging.String(logging.FieldErrorHint, "retry the request or switch llm.model"),
			logging.String(logging.FieldImpact, "no suggestions were produced"),
		)
		return nil, services.Wrap(services.ErrUnavailable, component, op, "suggestion source unavailable", ErrUnparseable)
	}
	c.logger.Debug("suggestion candidates parsed",
		logging.String(logging.FieldOperation, op),
		logging.String("parse_strategy", result.Kind.String()),
		logging.Int("candidate_count", len(result.Candidates)),
		logging.Int("requested", count))
	return result.Candidates, nil
}
