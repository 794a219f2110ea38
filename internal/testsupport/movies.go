package testsupport

import "cinelist/internal/movie"

// Movie returns a minimal record for tests.
func Movie(id, title, year string) movie.Record {
	return movie.Record{
		ID:    id,
		Title: title,
		Year:  year,
		Genre: "Drama",
		Type:  "movie",
	}
}

// Rated returns a minimal record carrying a user rating.
func Rated(id, title, year string, rating int) movie.Record {
	return Movie(id, title, year).WithRating(rating)
}

// IDs lists the external IDs of records in order.
func IDs(records []movie.Record) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = rec.ID
	}
	return out
}
