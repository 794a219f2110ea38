package movie

import (
	"strconv"
	"strings"
)

const (
	// MinRating and MaxRating bound the user-assigned rating scale.
	MinRating = 1
	MaxRating = 10

	unrated = "unrated"
)

// Record is a movie or show identified by its external (IMDb) ID. JSON names
// follow the metadata provider so detail payloads and the persisted state
// share one shape.
type Record struct {
	ID         string `json:"imdbID" validate:"required"`
	Title      string `json:"Title" validate:"required"`
	Year       string `json:"Year,omitempty"`
	Genre      string `json:"Genre,omitempty"`
	Plot       string `json:"Plot,omitempty"`
	Actors     string `json:"Actors,omitempty"`
	Runtime    string `json:"Runtime,omitempty"`
	IMDbRating string `json:"imdbRating,omitempty"`
	UserRating *int   `json:"userRating,omitempty" validate:"omitempty,min=1,max=10"`
	Poster     string `json:"Poster,omitempty"`
	Type       string `json:"Type,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// SampleTuple is the compact view of a record sent to the recommendation model.
type SampleTuple struct {
	Title  string `json:"title"`
	Year   string `json:"year"`
	Genre  string `json:"genre"`
	Rating string `json:"rating"`
}

// Sample returns the record as a recommendation sample tuple.
func (r Record) Sample() SampleTuple {
	rating := unrated
	if r.UserRating != nil {
		rating = strconv.Itoa(*r.UserRating)
	}
	return SampleTuple{
		Title:  r.Title,
		Year:   r.Year,
		Genre:  r.Genre,
		Rating: rating,
	}
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r.UserRating != nil {
		rating := *r.UserRating
		r.UserRating = &rating
	}
	return r
}

// WithRating returns a copy carrying the supplied user rating.
func (r Record) WithRating(rating int) Record {
	r.UserRating = &rating
	return r
}

// WithoutRating returns a copy with the user rating cleared.
func (r Record) WithoutRating() Record {
	r.UserRating = nil
	return r
}

// MergeDetails fills empty descriptive fields from a fuller record. Identity,
// user rating, and reason are left untouched.
func (r Record) MergeDetails(details Record) Record {
	fill := func(dst *string, src string) {
		if strings.TrimSpace(*dst) == "" || *dst == "N/A" {
			*dst = src
		}
	}
	fill(&r.Title, details.Title)
	fill(&r.Year, details.Year)
	fill(&r.Genre, details.Genre)
	fill(&r.Plot, details.Plot)
	fill(&r.Actors, details.Actors)
	fill(&r.Runtime, details.Runtime)
	fill(&r.IMDbRating, details.IMDbRating)
	fill(&r.Poster, details.Poster)
	fill(&r.Type, details.Type)
	return r
}

// ReleaseYear extracts the first four-digit year from the Year field. Series
// years such as "2008–2013" resolve to the first year. Returns 0 when absent.
func (r Record) ReleaseYear() int {
	return ParseYear(r.Year)
}

// ParseYear extracts the first run of four digits from value.
func ParseYear(value string) int {
	digits := 0
	start := -1
	for i, ch := range value {
		if ch >= '0' && ch <= '9' {
			if digits == 0 {
				start = i
			}
			digits++
			if digits == 4 {
				year, err := strconv.Atoi(value[start : i+1])
				if err != nil {
					return 0
				}
				return year
			}
			continue
		}
		digits = 0
	}
	return 0
}

// ValidRating reports whether rating is on the user rating scale.
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// IndexOf returns the position of id in records, or -1.
func IndexOf(records []Record, id string) int {
	for i, rec := range records {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

// CloneAll deep copies a slice of records. Nil stays nil.
func CloneAll(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
	}
	return out
}
