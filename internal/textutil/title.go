package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FoldTitle returns the comparison key for a title: whitespace collapsed and
// case folded. Two titles that differ only by case share a key.
func FoldTitle(title string) string {
	collapsed := strings.Join(strings.Fields(title), " ")
	if collapsed == "" {
		return ""
	}
	return cases.Fold().String(collapsed)
}

// DisplayTitle title-cases a title typed in lowercase for presentation.
// Titles that already carry capitals are returned unchanged.
func DisplayTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" || title != strings.ToLower(title) {
		return title
	}
	return cases.Title(language.Und).String(title)
}

// Snippet shortens text to at most limit runes, appending an ellipsis when cut.
func Snippet(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
