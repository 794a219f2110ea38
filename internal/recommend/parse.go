package recommend

import (
	"regexp"
	"strings"

	"github.com/goccy/go-json"

	"cinelist/internal/services/llm"
)

// ParseKind reports which strategy produced a ParseResult.
type ParseKind int

const (
	// ParseFailed means neither strategy found a title/year pair.
	ParseFailed ParseKind = iota
	// ParsedStructured means a JSON array or object literal was decoded.
	ParsedStructured
	// ParsedFallback means candidates were pattern-extracted from free text.
	ParsedFallback
)

func (k ParseKind) String() string {
	switch k {
	case ParsedStructured:
		return "structured"
	case ParsedFallback:
		return "fallback"
	default:
		return "failed"
	}
}

// ParseResult is the outcome of interpreting model output.
type ParseResult struct {
	Kind       ParseKind
	Candidates []Candidate
}

// OK reports whether at least one candidate was recovered.
func (r ParseResult) OK() bool {
	return r.Kind != ParseFailed && len(r.Candidates) > 0
}

// wrapperKeys are the object fields models use to wrap a candidate array.
var wrapperKeys = []string{"suggestions", "movies", "recommendations", "results"}

// Parse interprets untrusted model text. It first looks for a well-formed JSON
// array or object literal; only when that yields nothing does it fall back to
// extracting title/year/reason field markers from the raw text. Candidates
// without both a title and a year are discarded.
func Parse(text string) ParseResult {
	if candidates := parseStructured(text); len(candidates) > 0 {
		return ParseResult{Kind: ParsedStructured, Candidates: candidates}
	}
	if candidates := parseFallback(text); len(candidates) > 0 {
		return ParseResult{Kind: ParsedFallback, Candidates: candidates}
	}
	return ParseResult{Kind: ParseFailed}
}

type rawCandidate struct {
	Title  string     `json:"title"`
	Year   flexString `json:"year"`
	Reason string     `json:"reason"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(trimmed)
	return nil
}

func parseStructured(text string) []Candidate {
	bodies := []string{text}
	if fenced := llm.StripCodeFence(extractFence(text)); fenced != "" {
		bodies = append([]string{fenced}, bodies...)
	}
	for _, body := range bodies {
		for offset := 0; offset < len(body); {
			literal, next := findLiteral(body, offset)
			if literal != "" {
				if candidates := decodeLiteral(literal); len(candidates) > 0 {
					return candidates
				}
			}
			offset = next
		}
	}
	return nil
}

// extractFence returns the first fenced block in text including its fences,
// or "" when text has none.
func extractFence(text string) string {
	start := strings.Index(text, "```")
	if start < 0 {
		return ""
	}
	end := strings.Index(text[start+3:], "```")
	if end < 0 {
		return ""
	}
	return text[start : start+3+end+3]
}

// findLiteral scans from offset for the first balanced [...] or {...} span,
// honoring string quoting and escapes. It returns the literal (empty when the
// span never closes) and the index to resume scanning from.
func findLiteral(text string, offset int) (string, int) {
	start := strings.IndexAny(text[offset:], "[{")
	if start < 0 {
		return "", len(text)
	}
	start += offset

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return text[start : i+1], start + 1
			}
		}
	}
	return "", start + 1
}

func decodeLiteral(literal string) []Candidate {
	data := []byte(literal)
	if literal[0] == '[' {
		var list []rawCandidate
		if err := json.Unmarshal(data, &list); err != nil {
			return nil
		}
		return normalizeCandidates(list)
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil
	}
	for key, value := range wrapped {
		for _, wrapper := range wrapperKeys {
			if !strings.EqualFold(key, wrapper) {
				continue
			}
			var list []rawCandidate
			if err := json.Unmarshal(value, &list); err == nil {
				if candidates := normalizeCandidates(list); len(candidates) > 0 {
					return candidates
				}
			}
		}
	}

	var single rawCandidate
	if err := json.Unmarshal(data, &single); err != nil {
		return nil
	}
	return normalizeCandidates([]rawCandidate{single})
}

func normalizeCandidates(list []rawCandidate) []Candidate {
	out := make([]Candidate, 0, len(list))
	for _, raw := range list {
		candidate := Candidate{
			Title:  cleanField(raw.Title),
			Year:   cleanField(string(raw.Year)),
			Reason: cleanField(raw.Reason),
		}
		if candidate.valid() {
			out = append(out, candidate)
		}
	}
	return out
}

var (
	titleMarker  = regexp.MustCompile(`(?i)["']?\btitle\b["']?\s*[:=]\s*(?:"([^"\n]*)"|'([^'\n]*)'|([^,\n}\]]+))`)
	yearMarker   = regexp.MustCompile(`(?i)["']?\byear\b["']?\s*[:=]\s*["']?(\d{4})`)
	reasonMarker = regexp.MustCompile(`(?i)["']?\breason\b["']?\s*[:=]\s*(?:"([^"\n]*)"|'([^'\n]*)'|([^\n}\]]+))`)
)

// parseFallback pairs every title marker with the year and reason markers
// that follow it before the next title.
func parseFallback(text string) []Candidate {
	titles := titleMarker.FindAllStringSubmatchIndex(text, -1)
	out := make([]Candidate, 0, len(titles))
	for i, loc := range titles {
		segmentEnd := len(text)
		if i+1 < len(titles) {
			segmentEnd = titles[i+1][0]
		}
		segment := text[loc[1]:segmentEnd]

		candidate := Candidate{Title: cleanField(firstGroup(text, loc))}
		if m := yearMarker.FindStringSubmatch(segment); m != nil {
			candidate.Year = m[1]
		}
		if m := reasonMarker.FindStringSubmatchIndex(segment); m != nil {
			candidate.Reason = cleanField(firstGroup(segment, m))
		}
		if candidate.valid() {
			out = append(out, candidate)
		}
	}
	return out
}

// firstGroup returns the first non-empty capture group of a submatch index.
func firstGroup(text string, loc []int) string {
	for g := 1; g*2+1 < len(loc); g++ {
		start, end := loc[g*2], loc[g*2+1]
		if start >= 0 && end > start {
			return text[start:end]
		}
	}
	return ""
}

func cleanField(value string) string {
	value = strings.TrimSpace(value)
	value = strings.Trim(value, `"'*`)
	return strings.TrimSpace(value)
}
