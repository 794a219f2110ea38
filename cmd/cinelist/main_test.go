package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"cinelist/internal/movie"
)

type cliTestEnv struct {
	configPath string
	baseDir    string
	llmURL     string
	llmCalls   *atomic.Int32
	omdbCalls  *atomic.Int32
}

var testCatalog = []movie.Record{
	{ID: "tt0113277", Title: "Heat", Year: "1995", Genre: "Crime, Drama", Type: "movie", Plot: "A group of high-end professional thieves."},
	{ID: "tt0083658", Title: "Blade Runner", Year: "1982", Genre: "Sci-Fi", Type: "movie"},
	{ID: "tt0078748", Title: "Alien", Year: "1979", Genre: "Horror, Sci-Fi", Type: "movie"},
	{ID: "tt0443706", Title: "Zodiac", Year: "2007", Genre: "Crime, Mystery", Type: "movie"},
	{ID: "tt1160419", Title: "Dune", Year: "2021", Genre: "Adventure, Sci-Fi", Type: "movie", Runtime: "155 min"},
}

const (
	bulkSuggestions = "```json\n[{\"title\":\"Alien\",\"year\":\"1979\",\"reason\":\"Ridley Scott classic\"},{\"title\":\"Heat\",\"year\":\"1995\",\"reason\":\"already saved\"},{\"title\":\"Zodiac\",\"year\":\"2007\"}]\n```"
	oneSuggestion   = `Here you go: title: "Dune", year: "2021", reason: "epic scale"`
)

func newOMDbServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	detail := func(rec movie.Record) map[string]any {
		return map[string]any{
			"imdbID": rec.ID, "Title": rec.Title, "Year": rec.Year, "Genre": rec.Genre,
			"Type": rec.Type, "Plot": rec.Plot, "Runtime": rec.Runtime, "Poster": "N/A", "Response": "True",
		}
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		var payload any = map[string]any{"Response": "False", "Error": "Movie not found!"}
		switch {
		case q.Get("i") != "":
			payload = map[string]any{"Response": "False", "Error": "Incorrect IMDb ID."}
			for _, rec := range testCatalog {
				if rec.ID == q.Get("i") {
					payload = detail(rec)
				}
			}
		case q.Get("t") != "":
			for _, rec := range testCatalog {
				if strings.EqualFold(rec.Title, q.Get("t")) {
					payload = detail(rec)
				}
			}
		case q.Get("s") != "":
			var hits []map[string]any
			for _, rec := range testCatalog {
				if strings.Contains(strings.ToLower(rec.Title), strings.ToLower(q.Get("s"))) {
					hits = append(hits, map[string]any{"imdbID": rec.ID, "Title": rec.Title, "Year": rec.Year, "Type": rec.Type, "Poster": "N/A"})
				}
			}
			if len(hits) > 0 {
				payload = map[string]any{"Search": hits, "totalResults": fmt.Sprint(len(hits)), "Response": "True"}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode omdb response: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newLLMServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode llm request: %v", err)
		}
		content := bulkSuggestions
		for _, msg := range body.Messages {
			if strings.Contains(msg.Content, "exactly 1 movie") {
				content = oneSuggestion
			}
			if strings.Contains(msg.Content, `{"ok":true}`) {
				content = `{"ok":true}`
			}
		}
		payload := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": content}},
			},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode llm response: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:   base,
		llmCalls:  new(atomic.Int32),
		omdbCalls: new(atomic.Int32),
	}
	omdbServer := newOMDbServer(t, env.omdbCalls)
	llmServer := newLLMServer(t, env.llmCalls)
	env.llmURL = llmServer.URL

	env.configPath = filepath.Join(base, "config.toml")
	contents := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[omdb]
api_key = "test"
base_url = %q
requests_per_second = 100
burst = 10
cache_ttl_seconds = 0

[llm]
api_key = "test"
base_url = %q
retry_attempts = 1

[logging]
level = "error"
`, filepath.Join(base, "data"), filepath.Join(base, "logs"), omdbServer.URL, llmServer.URL)
	if err := os.WriteFile(env.configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustRun(t *testing.T, env *cliTestEnv, args ...string) string {
	t.Helper()
	out, _, err := runCLI(t, args, env.configPath)
	if err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out
}

func listJSON(t *testing.T, env *cliTestEnv) map[string][]movie.Record {
	t.Helper()
	out := mustRun(t, env, "--json", "list")
	var lists map[string][]movie.Record
	if err := json.Unmarshal([]byte(out), &lists); err != nil {
		t.Fatalf("decode list output %q: %v", out, err)
	}
	return lists
}

func TestCLIListCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRun(t, env, "add", "tt0113277")
	if !strings.Contains(out, "Added Heat (1995) to your to-watch list") {
		t.Fatalf("unexpected add output: %q", out)
	}
	out = mustRun(t, env, "add", "blade", "runner")
	if !strings.Contains(out, "Blade Runner (1982)") {
		t.Fatalf("unexpected add-by-title output: %q", out)
	}
	if _, _, err := runCLI(t, []string{"add", "tt0113277"}, env.configPath); err == nil {
		t.Fatal("expected duplicate add to fail")
	}

	out = mustRun(t, env, "watched", "Blade Runner", "--rating", "9")
	if !strings.Contains(out, "Marked Blade Runner (1982) 9/10 as watched") {
		t.Fatalf("unexpected watched output: %q", out)
	}

	lists := listJSON(t, env)
	if len(lists["toWatch"]) != 1 || lists["toWatch"][0].ID != "tt0113277" {
		t.Fatalf("unexpected toWatch list %#v", lists["toWatch"])
	}
	if len(lists["watched"]) != 1 || *lists["watched"][0].UserRating != 9 {
		t.Fatalf("unexpected watched list %#v", lists["watched"])
	}

	mustRun(t, env, "rate", "Blade Runner", "7")
	out = mustRun(t, env, "list", "watched")
	if !strings.Contains(out, "Blade Runner") || !strings.Contains(out, "7/10") {
		t.Fatalf("unexpected list output: %q", out)
	}
	if _, _, err := runCLI(t, []string{"rate", "Blade Runner", "11"}, env.configPath); err == nil {
		t.Fatal("expected out-of-range rating to fail")
	}

	mustRun(t, env, "unwatch", "tt0083658")
	lists = listJSON(t, env)
	if len(lists["watched"]) != 0 || len(lists["toWatch"]) != 2 || lists["toWatch"][0].UserRating != nil {
		t.Fatalf("unexpected lists after unwatch %#v", lists)
	}

	out = mustRun(t, env, "list", "--sort", "title")
	if strings.Index(out, "Blade Runner") > strings.Index(out, "Heat") {
		t.Fatalf("expected title sort, got %q", out)
	}

	mustRun(t, env, "remove", "Heat")
	lists = listJSON(t, env)
	if len(lists["toWatch"]) != 1 || lists["toWatch"][0].ID != "tt0083658" {
		t.Fatalf("unexpected lists after remove %#v", lists)
	}
}

func TestCLISearchAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRun(t, env, "search", "a")
	for _, title := range []string{"Heat", "Blade Runner", "Zodiac"} {
		if !strings.Contains(out, title) {
			t.Fatalf("search output missing %s: %q", title, out)
		}
	}
	out = mustRun(t, env, "search", "nothing-matches")
	if !strings.Contains(out, "No results") {
		t.Fatalf("unexpected empty search output: %q", out)
	}

	out = mustRun(t, env, "show", "tt1160419")
	if !strings.Contains(out, "Dune (2021)") || !strings.Contains(out, "155 min") {
		t.Fatalf("unexpected show output: %q", out)
	}
	out = mustRun(t, env, "show")
	if !strings.Contains(out, "Dune (2021)") {
		t.Fatalf("expected selected movie, got %q", out)
	}
	mustRun(t, env, "select", "--clear")
	out = mustRun(t, env, "show")
	if !strings.Contains(out, "No movie selected") {
		t.Fatalf("expected no selection, got %q", out)
	}
}

func TestCLISuggestWithEmptyListsSkipsRequests(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRun(t, env, "suggest")
	if !strings.Contains(out, "Add movies") {
		t.Fatalf("unexpected output: %q", out)
	}
	if env.llmCalls.Load() != 0 || env.omdbCalls.Load() != 0 {
		t.Fatalf("expected no external calls, got llm=%d omdb=%d", env.llmCalls.Load(), env.omdbCalls.Load())
	}
}

func TestCLISuggestFlow(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRun(t, env, "add", "tt0113277")
	mustRun(t, env, "watched", "tt0083658", "--rating", "9")

	out := mustRun(t, env, "suggest")
	if !strings.Contains(out, "Alien") || !strings.Contains(out, "Zodiac") {
		t.Fatalf("unexpected suggest output: %q", out)
	}
	if !strings.Contains(out, "1 candidate(s) skipped") {
		t.Fatalf("expected skipped count, got %q", out)
	}

	var current []movie.Record
	out = mustRun(t, env, "--json", "suggest", "list")
	if err := json.Unmarshal([]byte(out), &current); err != nil {
		t.Fatalf("decode suggestions: %v", err)
	}
	if len(current) != 2 || current[0].ID != "tt0078748" || current[1].ID != "tt0443706" {
		t.Fatalf("unexpected suggestions %#v", current)
	}
	if current[1].Reason != "Recommended based on your taste" {
		t.Fatalf("expected default reason, got %q", current[1].Reason)
	}

	out = mustRun(t, env, "suggest", "replace", "Alien")
	if !strings.Contains(out, "Replaced #1 with Dune (2021)") {
		t.Fatalf("unexpected replace output: %q", out)
	}

	out = mustRun(t, env, "suggest", "promote", "Dune", "--rating", "8")
	if !strings.Contains(out, "Added Dune (2021) 8/10 to your watched list") {
		t.Fatalf("unexpected promote output: %q", out)
	}
	out = mustRun(t, env, "suggest", "dismiss", "tt0443706")
	if !strings.Contains(out, "0 suggestion(s) left") {
		t.Fatalf("unexpected dismiss output: %q", out)
	}

	lists := listJSON(t, env)
	if len(lists["watched"]) != 2 || lists["watched"][0].ID != "tt1160419" {
		t.Fatalf("unexpected watched list %#v", lists["watched"])
	}
}

func TestCLIExportImportReset(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRun(t, env, "add", "tt0113277")

	exportPath := filepath.Join(env.baseDir, "backup", "cinelist.json")
	_, stderr, err := runCLI(t, []string{"export", "--output", exportPath}, env.configPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(stderr, "Exported to") {
		t.Fatalf("unexpected export stderr: %q", stderr)
	}

	if _, _, err := runCLI(t, []string{"reset"}, env.configPath); err == nil {
		t.Fatal("expected reset without --yes to fail")
	}
	mustRun(t, env, "reset", "--yes")
	if lists := listJSON(t, env); len(lists["toWatch"]) != 0 {
		t.Fatalf("expected empty lists after reset, got %#v", lists)
	}

	out := mustRun(t, env, "import", exportPath, "--yes")
	if !strings.Contains(out, "Imported 1 to watch, 0 watched, 0 suggestions") {
		t.Fatalf("unexpected import output: %q", out)
	}
	if lists := listJSON(t, env); len(lists["toWatch"]) != 1 {
		t.Fatalf("expected restored list, got %#v", lists)
	}

	bad := filepath.Join(env.baseDir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"toWatch":[{"imdbID":"tt1","Title":"A"}],"watched":[{"imdbID":"tt1","Title":"A","userRating":5}]}`), 0o644); err != nil {
		t.Fatalf("write bad import: %v", err)
	}
	if _, _, err := runCLI(t, []string{"import", bad, "--yes"}, env.configPath); err == nil {
		t.Fatal("expected overlapping import to fail")
	}
}

func TestCLIConcurrentInvocationsSerializeOnLock(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRun(t, env, "add", "tt0113277")

	var wg sync.WaitGroup
	var failures atomic.Int32
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := runCLI(t, []string{"list"}, env.configPath); err != nil {
				if !strings.Contains(err.Error(), "another cinelist process") {
					t.Errorf("unexpected error: %v", err)
				}
				failures.Add(1)
			}
		}()
	}
	wg.Wait()
	if failures.Load() == 4 {
		t.Fatal("expected at least one invocation to acquire the store")
	}
}
