package library

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"cinelist/internal/movie"
	"cinelist/internal/textutil"
)

// SortKey orders a list for display.
type SortKey string

const (
	// SortAdded keeps stored order, newest first.
	SortAdded  SortKey = "added"
	SortTitle  SortKey = "title"
	SortYear   SortKey = "year"
	SortRating SortKey = "rating"
	// SortIMDb orders by the third-party rating.
	SortIMDb SortKey = "imdb"
)

// ParseSortKey validates a user-supplied sort key. Empty means SortAdded.
func ParseSortKey(value string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(value)))
	switch key {
	case "":
		return SortAdded, nil
	case SortAdded, SortTitle, SortYear, SortRating, SortIMDb:
		return key, nil
	default:
		return "", fmt.Errorf("unknown sort key %q (want added, title, year, rating, or imdb)", value)
	}
}

// Sorted returns a sorted copy of records. Title sorts ascending; year and
// the rating keys sort descending with unrated entries last. Ties keep stored
// order.
func Sorted(records []movie.Record, key SortKey) []movie.Record {
	out := movie.CloneAll(records)
	if out == nil {
		out = []movie.Record{}
	}
	switch key {
	case SortTitle:
		slices.SortStableFunc(out, func(a, b movie.Record) int {
			return cmp.Compare(textutil.FoldTitle(a.Title), textutil.FoldTitle(b.Title))
		})
	case SortYear:
		slices.SortStableFunc(out, func(a, b movie.Record) int {
			return descending(float64(a.ReleaseYear()), float64(b.ReleaseYear()))
		})
	case SortRating:
		slices.SortStableFunc(out, func(a, b movie.Record) int {
			return descending(userRating(a), userRating(b))
		})
	case SortIMDb:
		slices.SortStableFunc(out, func(a, b movie.Record) int {
			return descending(imdbRating(a), imdbRating(b))
		})
	}
	return out
}

// descending orders larger values first; zero (missing) sorts last.
func descending(a, b float64) int {
	switch {
	case a == b:
		return 0
	case a == 0:
		return 1
	case b == 0:
		return -1
	default:
		return cmp.Compare(b, a)
	}
}

func userRating(rec movie.Record) float64 {
	if rec.UserRating == nil {
		return 0
	}
	return float64(*rec.UserRating)
}

func imdbRating(rec movie.Record) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(rec.IMDbRating), 64)
	if err != nil {
		return 0
	}
	return value
}
