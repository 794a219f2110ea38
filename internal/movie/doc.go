// Package movie defines the Record type shared by the metadata client, the
// local store, the list operations, and the suggestion engine.
package movie
