// Package main hosts the cinelist CLI entrypoint and command graph.
//
// Commands manage the to-watch and watched lists, look movies up against the
// metadata provider, and drive the suggestion engine. Each invocation loads
// configuration once, opens the local store for the duration of the command,
// and tags its logs with a fresh correlation ID.
package main
