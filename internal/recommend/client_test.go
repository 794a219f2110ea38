package recommend_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cinelist/internal/config"
	"cinelist/internal/movie"
	"cinelist/internal/recommend"
	"cinelist/internal/services"
	"cinelist/internal/services/llm"
)

type fakeCompleter struct {
	reply    string
	err      error
	requests []llm.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

var sample = []movie.SampleTuple{
	{Title: "Blade Runner", Year: "1982", Genre: "Sci-Fi", Rating: "9"},
	{Title: "Heat", Year: "1995", Genre: "Crime", Rating: "unrated"},
}

func TestRequestSuggestionsUsesBulkTemperature(t *testing.T) {
	fake := &fakeCompleter{reply: `[{"title":"Alien","year":"1979","reason":"tension"},{"title":"Ran","year":"1985"}]`}
	client := recommend.New(fake, recommend.WithTemperatures(0.9, 1.0))

	got, err := client.RequestSuggestions(context.Background(), sample, []string{"blade runner", "heat"}, 5)
	if err != nil {
		t.Fatalf("RequestSuggestions returned error: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Alien" || got[1].ReleaseYear() != 1985 {
		t.Fatalf("unexpected candidates %#v", got)
	}
	if len(fake.requests) != 1 {
		t.Fatalf("expected 1 completion, got %d", len(fake.requests))
	}
	req := fake.requests[0]
	if req.Temperature != 0.9 {
		t.Fatalf("expected temperature 0.9, got %v", req.Temperature)
	}
	if req.JSON {
		t.Fatal("expected free-text completion so fallback parsing stays possible")
	}
	for _, want := range []string{"Recommend exactly 5 movies", "Blade Runner", "- heat"} {
		if !strings.Contains(req.User, want) {
			t.Fatalf("user prompt missing %q:\n%s", want, req.User)
		}
	}
}

func TestRequestOneSuggestionUsesReplaceTemperature(t *testing.T) {
	fake := &fakeCompleter{reply: `title: "Dune", year: "2021", reason: "epic scale"`}
	client := recommend.New(fake, recommend.WithTemperatures(0.9, 1.0))

	got, err := client.RequestOneSuggestion(context.Background(), sample, nil)
	if err != nil {
		t.Fatalf("RequestOneSuggestion returned error: %v", err)
	}
	if got != (recommend.Candidate{Title: "Dune", Year: "2021", Reason: "epic scale"}) {
		t.Fatalf("unexpected candidate %#v", got)
	}
	if fake.requests[0].Temperature != 1.0 {
		t.Fatalf("expected temperature 1.0, got %v", fake.requests[0].Temperature)
	}
	if !strings.Contains(fake.requests[0].User, "exactly 1 movie") {
		t.Fatalf("unexpected prompt %q", fake.requests[0].User)
	}
}

func TestRequestSuggestionsTransportFailure(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("connection refused")}
	client := recommend.New(fake)

	_, err := client.RequestSuggestions(context.Background(), sample, nil, 5)
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestRequestSuggestionsParseFailure(t *testing.T) {
	fake := &fakeCompleter{reply: "Sorry, I can't recommend anything right now."}
	client := recommend.New(fake)

	_, err := client.RequestSuggestions(context.Background(), sample, nil, 5)
	if !errors.Is(err, services.ErrUnavailable) || !errors.Is(err, recommend.ErrUnparseable) {
		t.Fatalf("expected unavailable parse error, got %v", err)
	}
}

func TestNewFromConfigRequiresAPIKey(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIKey = ""
	if _, err := recommend.NewFromConfig(&cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

type checkedCompleter struct {
	fakeCompleter
	healthErr error
}

func (c *checkedCompleter) HealthCheck(context.Context) error {
	return c.healthErr
}

func TestHealthCheck(t *testing.T) {
	if err := recommend.New(&fakeCompleter{}).HealthCheck(context.Background()); err != nil {
		t.Fatalf("expected completer without health check to pass, got %v", err)
	}
	if err := recommend.New(&checkedCompleter{}).HealthCheck(context.Background()); err != nil {
		t.Fatalf("expected healthy completer to pass, got %v", err)
	}
	failing := &checkedCompleter{healthErr: errors.New("401 unauthorized")}
	if err := recommend.New(failing).HealthCheck(context.Background()); !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}
