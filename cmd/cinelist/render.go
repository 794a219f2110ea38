package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"cinelist/internal/movie"
	"cinelist/internal/textutil"
)

const reasonSnippetLength = 160

func ratingLabel(rec movie.Record) string {
	if rec.UserRating == nil {
		return "-"
	}
	return strconv.Itoa(*rec.UserRating) + "/10"
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

// printRecords writes a numbered table of records. withReason adds the
// suggestion reason column; withRating the user rating column.
func printRecords(out io.Writer, records []movie.Record, withRating, withReason bool) {
	headers := []string{"#", "ID", "Title", "Year", "Genre"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft}
	if withRating {
		headers = append(headers, "Rating")
		aligns = append(aligns, alignRight)
	}
	if withReason {
		headers = append(headers, "Reason")
		aligns = append(aligns, alignLeft)
	}
	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		row := []string{
			strconv.Itoa(i + 1),
			rec.ID,
			textutil.DisplayTitle(rec.Title),
			orDash(rec.Year),
			orDash(rec.Genre),
		}
		if withRating {
			row = append(row, ratingLabel(rec))
		}
		if withReason {
			row = append(row, textutil.Snippet(rec.Reason, reasonSnippetLength))
		}
		rows = append(rows, row)
	}
	fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
}

// printDetail writes the full view of one record.
func printDetail(out io.Writer, rec movie.Record, where string) {
	fmt.Fprintf(out, "%s (%s)\n", textutil.DisplayTitle(rec.Title), orDash(rec.Year))
	fmt.Fprintf(out, "  ID:          %s\n", rec.ID)
	if where != "" {
		fmt.Fprintf(out, "  Saved in:    %s\n", where)
	}
	fmt.Fprintf(out, "  Type:        %s\n", orDash(rec.Type))
	fmt.Fprintf(out, "  Genre:       %s\n", orDash(rec.Genre))
	fmt.Fprintf(out, "  Runtime:     %s\n", orDash(rec.Runtime))
	fmt.Fprintf(out, "  Cast:        %s\n", orDash(rec.Actors))
	fmt.Fprintf(out, "  IMDb rating: %s\n", orDash(rec.IMDbRating))
	fmt.Fprintf(out, "  Your rating: %s\n", ratingLabel(rec))
	if rec.Reason != "" {
		fmt.Fprintf(out, "  Suggested:   %s\n", rec.Reason)
	}
	if rec.Plot != "" {
		fmt.Fprintf(out, "\n%s\n", rec.Plot)
	}
}
