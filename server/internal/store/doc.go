// Package store provides a thread-safe in-memory memo store with TTL
// eviction. The engine keeps one store per derived view, keyed by the filter
// inputs the view depends on.
package store
