// Package store implements an in-memory embedding store: an append-only
// mapping from identifier to record with a fixed embedding dimension. It
// provides atomic insert/remove, point-in-time snapshot iteration, and a
// version stamp that index consumers use to detect staleness.
package store
