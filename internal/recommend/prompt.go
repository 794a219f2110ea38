package recommend

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"cinelist/internal/movie"
)

const systemPrompt = `You are a film recommendation assistant. You receive a sample of movies a
viewer has saved, each with title, year, genre, and the viewer's rating (1-10)
or "unrated" for titles they have not seen yet. Recommend titles the viewer is
likely to enjoy. Favor variety: mix well-known and lesser-known titles across
decades and countries.

Never recommend a title from the sample or from the excluded list.

Respond with a JSON array only, no prose, where each element is:
{"title": "<exact title as released>", "year": "<four digit release year>", "reason": "<one sentence on why it fits this viewer>"}`

func buildUserPrompt(sample []movie.SampleTuple, excluded []string, count int) string {
	var b strings.Builder
	if count == 1 {
		b.WriteString("Recommend exactly 1 movie as a JSON array with one element.\n\n")
	} else {
		fmt.Fprintf(&b, "Recommend exactly %d movies.\n\n", count)
	}

	encoded, err := json.Marshal(sample)
	if err != nil || len(sample) == 0 {
		encoded = []byte("[]")
	}
	b.WriteString("Viewer sample:\n")
	b.Write(encoded)
	b.WriteString("\n")

	if len(excluded) > 0 {
		b.WriteString("\nExcluded titles (do not recommend any of these):\n")
		for _, title := range excluded {
			title = strings.TrimSpace(title)
			if title == "" {
				continue
			}
			b.WriteString("- ")
			b.WriteString(title)
			b.WriteString("\n")
		}
	}
	return b.String()
}
