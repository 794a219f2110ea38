package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	defaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	defaultTimeout  = 15 * time.Second

	healthSystemPrompt = "Reply with a single JSON object and nothing else."
	healthUserPrompt   = `Return {"ok":true}`
)

// Config holds the connection settings for an OpenRouter-compatible endpoint.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// Client sends chat completions and retries transient failures.
type Client struct {
	cfg   Config
	http  *http.Client
	retry retryPolicy
}

// Option customizes the client.
type Option func(*Client)

// WithRetryMaxAttempts sets the total number of attempts per completion.
// Values below one mean a single attempt.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retry.attempts = attempts
	}
}

// WithRetryBackoff sets the first backoff delay and the ceiling applied to
// every delay, including server-provided Retry-After hints.
func WithRetryBackoff(base, ceiling time.Duration) Option {
	return func(c *Client) {
		c.retry.base = base
		c.retry.ceiling = ceiling
	}
}

// WithSleeper replaces the timer used between attempts.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(c *Client) {
		c.retry.sleep = sleep
	}
}

// NewClient builds a client for cfg. An empty BaseURL targets OpenRouter.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.Referer = strings.TrimSpace(cfg.Referer)
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultEndpoint
	}

	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: timeout},
		retry: defaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Request describes one chat completion.
type Request struct {
	System      string
	User        string
	Temperature float64
	// JSON asks the provider for a JSON-only reply.
	JSON bool
}

// Complete returns the raw content of the first non-empty choice.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	return c.complete(ctx, "llm complete", req)
}

// HealthCheck asks the model for a fixed JSON object and fails unless it
// comes back. It exercises the key, the model name and the endpoint together.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.complete(ctx, "llm health", Request{
		System: healthSystemPrompt,
		User:   healthUserPrompt,
		JSON:   true,
	})
	if err != nil {
		return err
	}
	var reply struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal([]byte(StripCodeFence(content)), &reply); err != nil {
		return fmt.Errorf("llm health: decode reply %s: %w", SummarizeSnippet(content), err)
	}
	if !reply.OK {
		return fmt.Errorf("llm health: unexpected reply %s", SummarizeSnippet(content))
	}
	return nil
}

func (c *Client) complete(ctx context.Context, op string, req Request) (string, error) {
	system := strings.TrimSpace(req.System)
	user := strings.TrimSpace(req.User)
	switch {
	case c.cfg.APIKey == "":
		return "", fmt.Errorf("%s: api key required", op)
	case system == "":
		return "", fmt.Errorf("%s: system prompt required", op)
	case user == "":
		return "", fmt.Errorf("%s: user prompt required", op)
	}

	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: req.Temperature,
	}
	if req.JSON {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	attempts := c.retry.maxAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		content, err := c.attempt(ctx, op, payload)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		delay, ok := c.retry.delay(ctx, err, attempt)
		if !ok {
			return "", err
		}
		if err := c.retry.wait(ctx, delay); err != nil {
			return "", err
		}
	}
	if attempts == 1 {
		return "", lastErr
	}
	return "", fmt.Errorf("%s: gave up after %d attempts: %w", op, attempts, lastErr)
}

// attempt sends the payload once and turns an empty reply into an error.
func (c *Client) attempt(ctx context.Context, op string, payload chatRequest) (string, error) {
	reply, raw, err := c.send(ctx, payload)
	if err != nil {
		return "", err
	}
	if len(reply.Choices) == 0 {
		return "", fmt.Errorf("%s: reply had no choices", op)
	}
	content, finish := reply.content()
	if content == "" {
		return "", &emptyReplyError{
			op:      op,
			finish:  finish,
			refusal: reply.refusal(),
			snippet: SummarizeSnippet(string(raw)),
		}
	}
	return content, nil
}

type emptyReplyError struct {
	op      string
	finish  string
	refusal string
	snippet string
}

func (e *emptyReplyError) Error() string {
	return fmt.Sprintf("%s: empty content (finish_reason=%q, refusal=%q, response_snippet=%s)",
		e.op, e.finish, e.refusal, e.snippet)
}

func isEmptyReply(err error) bool {
	var target *emptyReplyError
	return errors.As(err, &target)
}
