// Package suggestions maintains the suggestion set: a short, ordered list of
// recommended movies that never overlaps the user's lists or itself.
//
// Generate asks the recommendation source for a batch of candidates, resolves
// up to Count of them against the metadata client in parallel, drops misses
// and known IDs, and persists the survivors in candidate order. ReplaceOne
// swaps a single entry in place with exclusions widened to the current set.
// Promote and Dismiss let the user act on an entry.
//
// All mutations hold the engine lock for their whole duration, so a second
// call queues behind the first instead of racing its read-modify-write.
package suggestions
