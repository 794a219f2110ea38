package recommend_test

import (
	"reflect"
	"testing"

	"cinelist/internal/recommend"
)

func TestParseStructured(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []recommend.Candidate
	}{
		{
			name: "plain array",
			text: `[{"title":"Heat","year":"1995","reason":"taut crime epic"},{"title":"Arrival","year":2016}]`,
			want: []recommend.Candidate{
				{Title: "Heat", Year: "1995", Reason: "taut crime epic"},
				{Title: "Arrival", Year: "2016"},
			},
		},
		{
			name: "code fence with prose",
			text: "Sure! Here you go:\n```json\n[{\"title\": \"Alien\", \"year\": \"1979\", \"reason\": \"tension\"}]\n```\nEnjoy.",
			want: []recommend.Candidate{{Title: "Alien", Year: "1979", Reason: "tension"}},
		},
		{
			name: "single object",
			text: `My pick: {"title": "Paprika", "year": "2006", "reason": "dream logic"}`,
			want: []recommend.Candidate{{Title: "Paprika", Year: "2006", Reason: "dream logic"}},
		},
		{
			name: "wrapped array",
			text: `{"suggestions": [{"title": "Zodiac", "year": "2007"}]}`,
			want: []recommend.Candidate{{Title: "Zodiac", Year: "2007"}},
		},
		{
			name: "brackets inside strings",
			text: `[{"title":"Heat [Director's Cut]","year":"1995","reason":"has } and ] inside"}]`,
			want: []recommend.Candidate{{Title: "Heat [Director's Cut]", Year: "1995", Reason: "has } and ] inside"}},
		},
		{
			name: "skips leading non-candidate literal",
			text: `See note [1]. [{"title":"Ran","year":"1985"}]`,
			want: []recommend.Candidate{{Title: "Ran", Year: "1985"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := recommend.Parse(tt.text)
			if got.Kind != recommend.ParsedStructured {
				t.Fatalf("Kind = %v, want structured", got.Kind)
			}
			if !reflect.DeepEqual(got.Candidates, tt.want) {
				t.Fatalf("Candidates = %#v, want %#v", got.Candidates, tt.want)
			}
		})
	}
}

func TestParseFallbackExtractsFieldMarkers(t *testing.T) {
	got := recommend.Parse(`title: "Dune", year: "2021", reason: "epic scale"`)
	if got.Kind != recommend.ParsedFallback {
		t.Fatalf("Kind = %v, want fallback", got.Kind)
	}
	want := []recommend.Candidate{{Title: "Dune", Year: "2021", Reason: "epic scale"}}
	if !reflect.DeepEqual(got.Candidates, want) {
		t.Fatalf("Candidates = %#v, want %#v", got.Candidates, want)
	}
}

func TestParseFallbackMultipleAndMissingReason(t *testing.T) {
	text := `1. Title: Heat
Year: 1995
Reason: a slow burn

2. Title: "Ronin"
Year: 1998`
	got := recommend.Parse(text)
	if got.Kind != recommend.ParsedFallback {
		t.Fatalf("Kind = %v, want fallback", got.Kind)
	}
	want := []recommend.Candidate{
		{Title: "Heat", Year: "1995", Reason: "a slow burn"},
		{Title: "Ronin", Year: "1998"},
	}
	if !reflect.DeepEqual(got.Candidates, want) {
		t.Fatalf("Candidates = %#v, want %#v", got.Candidates, want)
	}
}

func TestParseFallbackOnBrokenJSON(t *testing.T) {
	got := recommend.Parse(`[{"title": "Solaris", "year": "1972", "reason": "meditative",}`)
	if got.Kind != recommend.ParsedFallback {
		t.Fatalf("Kind = %v, want fallback", got.Kind)
	}
	if len(got.Candidates) != 1 || got.Candidates[0].Title != "Solaris" || got.Candidates[0].Year != "1972" {
		t.Fatalf("unexpected candidates %#v", got.Candidates)
	}
}

func TestParseFailed(t *testing.T) {
	for _, text := range []string{
		"",
		"I cannot help with that.",
		`[{"title": "No Year"}]`,
		`title: "Only a title"`,
	} {
		got := recommend.Parse(text)
		if got.Kind != recommend.ParseFailed || got.OK() {
			t.Fatalf("Parse(%q) = %#v, want failed", text, got)
		}
	}
}
