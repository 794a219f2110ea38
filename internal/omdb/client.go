package omdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"cinelist/internal/config"
	"cinelist/internal/logging"
	"cinelist/internal/movie"
	"cinelist/internal/services"
)

const (
	component          = "omdb"
	defaultHTTPTimeout = 10 * time.Second
	defaultCacheTTL    = 10 * time.Minute
	notAvailable       = "N/A"
	pingID             = "tt0000000"
)

// Filters narrows a text search.
type Filters struct {
	Year int
	// Type is one of movie, series, or episode. Empty searches all types.
	Type string
}

// Metadata defines the lookups the library and suggestion engine rely on.
type Metadata interface {
	SearchByText(ctx context.Context, query string, filters Filters) ([]movie.Record, error)
	LookupByExactTitle(ctx context.Context, title string, year int) (*movie.Record, error)
	FetchDetails(ctx context.Context, id string) (*movie.Record, error)
}

// Client provides access to the OMDb API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *slog.Logger

	cacheTTL time.Duration
	mu       sync.Mutex
	cache    map[string]cacheEntry
}

type cacheEntry struct {
	record  *movie.Record
	expires time.Time
}

var _ Metadata = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithRateLimit paces outbound requests. A non-positive rate disables pacing.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithCacheTTL overrides how long exact-title lookups are remembered. Zero
// disables the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// WithLogger attaches a logger for breaker transitions and cache activity.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, component)
		}
	}
}

// New creates an OMDb client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "api key required (set omdb.api_key or OMDB_API_KEY)", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "base url required", nil)
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     logging.NewComponentLogger(nil, component),
		cacheTTL:   defaultCacheTTL,
		cache:      make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.breaker = newBreaker(client.logger)
	return client, nil
}

// NewFromConfig builds a client from the omdb config section.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "config required", nil)
	}
	return New(cfg.OMDb.APIKey, cfg.OMDb.BaseURL,
		WithTimeout(time.Duration(cfg.OMDb.TimeoutSeconds)*time.Second),
		WithRateLimit(cfg.OMDb.RequestsPerSecond, cfg.OMDb.Burst),
		WithCacheTTL(time.Duration(cfg.OMDb.CacheTTLSeconds)*time.Second),
		WithLogger(logger),
	)
}

// SearchByText returns the list-form matches for query. A provider "not found"
// answer is an empty result, not an error.
func (c *Client) SearchByText(ctx context.Context, query string, filters Filters) ([]movie.Record, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, component, "search", "query must not be empty", nil)
	}
	params := url.Values{}
	params.Set("s", query)
	if filters.Year > 0 {
		params.Set("y", strconv.Itoa(filters.Year))
	}
	if kind := strings.ToLower(strings.TrimSpace(filters.Type)); kind != "" {
		params.Set("type", kind)
	}

	body, err := c.get(ctx, "search", params)
	if err != nil {
		return nil, err
	}
	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, services.Wrap(services.ErrUnavailable, component, "search", "decode response", err)
	}
	if !payload.ok() {
		if isMiss(payload.Error) {
			return []movie.Record{}, nil
		}
		return nil, services.Wrap(services.ErrUnavailable, component, "search", payload.Error, nil)
	}
	results := make([]movie.Record, 0, len(payload.Search))
	for _, rec := range payload.Search {
		if strings.TrimSpace(rec.ID) == "" {
			continue
		}
		results = append(results, clean(rec))
	}
	return results, nil
}

// LookupByExactTitle resolves a title (and optional year) to a full record.
// When the exact lookup misses it falls back to a text search and fetches the
// details of the first hit. Returns nil, nil when nothing matches.
func (c *Client) LookupByExactTitle(ctx context.Context, title string, year int) (*movie.Record, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, services.Wrap(services.ErrValidation, component, "lookup", "title must not be empty", nil)
	}
	key := strings.ToLower(title) + "|" + strconv.Itoa(year)
	if rec, ok := c.cached(key); ok {
		return rec, nil
	}

	params := url.Values{}
	params.Set("t", title)
	params.Set("plot", "full")
	if year > 0 {
		params.Set("y", strconv.Itoa(year))
	}
	rec, err := c.detail(ctx, "lookup", params)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		c.logger.Debug("exact title lookup missed; falling back to search",
			logging.String("title", title),
			logging.Int("year", year))
		matches, err := c.SearchByText(ctx, title, Filters{Year: year})
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			rec, err = c.FetchDetails(ctx, matches[0].ID)
			if err != nil {
				return nil, err
			}
		}
	}

	c.store(key, rec)
	return rec, nil
}

// FetchDetails returns the full record (extended plot) for an external ID, or
// nil, nil when the provider does not know it.
func (c *Client) FetchDetails(ctx context.Context, id string) (*movie.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, services.Wrap(services.ErrValidation, component, "details", "id must not be empty", nil)
	}
	params := url.Values{}
	params.Set("i", id)
	params.Set("plot", "full")
	return c.detail(ctx, "details", params)
}

// Ping issues one detail lookup for a placeholder ID. A "not found" answer
// proves the key is accepted; any provider or transport error is returned.
func (c *Client) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("i", pingID)
	_, err := c.detail(ctx, "ping", params)
	return err
}

func (c *Client) detail(ctx context.Context, op string, params url.Values) (*movie.Record, error) {
	body, err := c.get(ctx, op, params)
	if err != nil {
		return nil, err
	}
	var payload detailResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, services.Wrap(services.ErrUnavailable, component, op, "decode response", err)
	}
	if !payload.ok() {
		if isMiss(payload.Error) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrUnavailable, component, op, payload.Error, nil)
	}
	if strings.TrimSpace(payload.ID) == "" {
		return nil, nil
	}
	rec := clean(payload.Record)
	return &rec, nil
}

// get performs one paced, breaker-guarded GET and returns the raw body.
func (c *Client) get(ctx context.Context, op string, params url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, services.Wrap(services.ErrUnavailable, component, op, "rate limiter", err)
		}
	}
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, component, op, "parse base url", err)
	}
	params.Set("apikey", c.apiKey)
	endpoint.RawQuery = params.Encode()

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetch(ctx, endpoint.String())
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, services.Wrap(services.ErrUnavailable, component, op, "circuit open; metadata service failing", err)
		}
		return nil, services.Wrap(services.ErrUnavailable, component, op, "request failed", err)
	}
	return body, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body (latency=%v): %w", latency, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb returned %d (latency=%v): %s", resp.StatusCode, latency, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (c *Client) cached(key string) (*movie.Record, bool) {
	if c.cacheTTL <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache[key]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	if entry.record == nil {
		return nil, true
	}
	rec := entry.record.Clone()
	return &rec, true
}

func (c *Client) store(key string, rec *movie.Record) {
	if c.cacheTTL <= 0 {
		return
	}
	var stored *movie.Record
	if rec != nil {
		clone := rec.Clone()
		stored = &clone
	}
	c.mu.Lock()
	c.cache[key] = cacheEntry{record: stored, expires: time.Now().Add(c.cacheTTL)}
	c.mu.Unlock()
}

type searchResponse struct {
	Response     string         `json:"Response"`
	Error        string         `json:"Error"`
	Search       []movie.Record `json:"Search"`
	TotalResults string         `json:"totalResults"`
}

func (r searchResponse) ok() bool { return responseOK(r.Response) }

type detailResponse struct {
	movie.Record
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

func (r detailResponse) ok() bool { return responseOK(r.Response) }

func responseOK(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}

// isMiss reports whether a provider error string means "nothing matched"
// rather than a service problem.
func isMiss(message string) bool {
	lower := strings.ToLower(strings.TrimSpace(message))
	switch {
	case lower == "":
		return true
	case strings.Contains(lower, "not found"),
		strings.Contains(lower, "incorrect imdb id"),
		strings.Contains(lower, "too many results"):
		return true
	default:
		return false
	}
}

func clean(rec movie.Record) movie.Record {
	for _, field := range []*string{
		&rec.Year, &rec.Genre, &rec.Plot, &rec.Actors,
		&rec.Runtime, &rec.IMDbRating, &rec.Poster, &rec.Type,
	} {
		if strings.TrimSpace(*field) == notAvailable {
			*field = ""
		}
	}
	rec.ID = strings.TrimSpace(rec.ID)
	rec.Title = strings.TrimSpace(rec.Title)
	rec.UserRating = nil
	rec.Reason = ""
	return rec
}
