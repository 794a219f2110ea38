package library

import (
	"reflect"
	"testing"

	"cinelist/internal/movie"
)

func ids(records []movie.Record) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = rec.ID
	}
	return out
}

func TestSorted(t *testing.T) {
	records := []movie.Record{
		{ID: "a", Title: "heat", Year: "1995", IMDbRating: "8.3"},
		{ID: "b", Title: "Alien", Year: "1979", IMDbRating: "N/A"},
		{ID: "c", Title: "Zodiac", Year: "2007", IMDbRating: "7.7"},
	}
	records[0] = records[0].WithRating(6)
	records[2] = records[2].WithRating(9)

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortAdded, []string{"a", "b", "c"}},
		{SortTitle, []string{"b", "a", "c"}},
		{SortYear, []string{"c", "a", "b"}},
		{SortRating, []string{"c", "a", "b"}},
		{SortIMDb, []string{"a", "c", "b"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			if got := ids(Sorted(records, tt.key)); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Sorted(%s) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
	if ids(records)[0] != "a" {
		t.Fatal("Sorted must not reorder its input")
	}
}

func TestParseSortKey(t *testing.T) {
	if key, err := ParseSortKey(""); err != nil || key != SortAdded {
		t.Fatalf("ParseSortKey(empty) = %q, %v", key, err)
	}
	if key, err := ParseSortKey("Rating"); err != nil || key != SortRating {
		t.Fatalf("ParseSortKey(Rating) = %q, %v", key, err)
	}
	if _, err := ParseSortKey("popularity"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}
