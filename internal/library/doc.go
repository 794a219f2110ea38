// Package library implements the to-watch and watched list operations.
//
// Lists are newest first. Moving a record between lists removes it from one
// and inserts it at the head of the other; the rating is set on the way into
// watched and cleared on the way back. An external ID is never in both lists.
// Saving a movie also removes it from the current suggestions.
package library
