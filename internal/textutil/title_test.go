package textutil

import (
	"math"
	"slices"
	"testing"
)

func TestFoldTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Dune", "dune"},
		{"  The   MATRIX ", "the matrix"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FoldTitle(tt.input); got != tt.want {
			t.Errorf("FoldTitle(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDisplayTitle(t *testing.T) {
	if got := DisplayTitle("blade runner"); got != "Blade Runner" {
		t.Errorf("DisplayTitle(lower) = %q", got)
	}
	if got := DisplayTitle("eXistenZ"); got != "eXistenZ" {
		t.Errorf("DisplayTitle(mixed) = %q, want unchanged", got)
	}
}

func TestSnippet(t *testing.T) {
	if got := Snippet("short text", 20); got != "short text" {
		t.Errorf("Snippet(short) = %q", got)
	}
	if got := Snippet("a long plot summary here", 10); got != "a long ..." {
		t.Errorf("Snippet(long) = %q", got)
	}
}

func TestBestMatch(t *testing.T) {
	titles := []string{"The Matrix", "The Matrix Reloaded", "Heat", "Arrival"}

	if idx, score := BestMatch("the matrix", titles, DefaultMatchThreshold); idx != 0 || score != 1 {
		t.Fatalf("exact folded match = (%d, %v), want (0, 1)", idx, score)
	}
	if idx, _ := BestMatch("matrix reloaded", titles, DefaultMatchThreshold); idx != 1 {
		t.Fatalf("fuzzy match = %d, want 1", idx)
	}
	if idx, _ := BestMatch("casablanca", titles, DefaultMatchThreshold); idx != -1 {
		t.Fatalf("unmatched query = %d, want -1", idx)
	}
	if idx, _ := BestMatch("", titles, DefaultMatchThreshold); idx != -1 {
		t.Fatalf("empty query = %d, want -1", idx)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Up", []string{"up"}},
		{"M", []string{"m"}},
		{"Léon: The Professional", []string{"leon", "the", "professional"}},
		{"Amélie", []string{"amelie"}},
		{"Das Boot (1981)", []string{"das", "boot", "1981"}},
		{"千と千尋の神隠し", []string{"千と千尋の神隠し"}},
		{"Crouching Tiger, Hidden Dragon", []string{"crouching", "tiger", "hidden", "dragon"}},
		{"  ", nil},
	}
	for _, tt := range tests {
		if got := Tokenize(tt.input); !slices.Equal(got, tt.want) {
			t.Errorf("Tokenize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBestMatchShortAndAccentedTitles(t *testing.T) {
	titles := []string{"Up", "Léon: The Professional", "Amélie", "Upgrade"}

	if idx, _ := BestMatch("leon the professional", titles, DefaultMatchThreshold); idx != 1 {
		t.Fatalf("accent-insensitive match = %d, want 1", idx)
	}
	if idx, _ := BestMatch("amelie", titles, DefaultMatchThreshold); idx != 2 {
		t.Fatalf("accent-insensitive match = %d, want 2", idx)
	}
	if idx, _ := BestMatch("UP", titles, DefaultMatchThreshold); idx != 0 {
		t.Fatalf("short title match = %d, want 0", idx)
	}
}

func TestCosine(t *testing.T) {
	empty := newTermVector("")
	heat := newTermVector("Heat")
	if got := cosine(empty, heat); got != 0 {
		t.Fatalf("cosine with empty vector = %v, want 0", got)
	}
	if got := cosine(heat, newTermVector("HEAT")); math.Abs(got-1) > 1e-9 {
		t.Fatalf("cosine of identical titles = %v, want 1", got)
	}
	if got := cosine(heat, newTermVector("Arrival")); got != 0 {
		t.Fatalf("cosine of disjoint titles = %v, want 0", got)
	}
	a, b := newTermVector("Blade Runner"), newTermVector("Blade Runner 2049")
	if ab, ba := cosine(a, b), cosine(b, a); math.Abs(ab-ba) > 1e-9 || ab <= 0 || ab >= 1 {
		t.Fatalf("partial overlap cosine = %v / %v, want symmetric in (0,1)", ab, ba)
	}
}

func TestInverseDocumentFrequencyDownWeightsCommonTerms(t *testing.T) {
	docs := []termVector{
		newTermVector("The Matrix"),
		newTermVector("The Thing"),
		newTermVector("The Fly"),
	}
	idf := inverseDocumentFrequency(docs)
	if idf["the"] != 0 {
		t.Fatalf("idf of a term in every doc = %v, want 0", idf["the"])
	}
	if idf["matrix"] <= 0 {
		t.Fatalf("idf of a rare term = %v, want positive", idf["matrix"])
	}
	weighted := docs[0].reweight(idf)
	if _, ok := weighted.weights["the"]; ok {
		t.Fatal("expected zero-weight term to be dropped")
	}
}
