// Package config declares the YAML document that assembles a store and
// searcher: embedding dimension, normalization declaration, metric, index
// kind, and an optional database path for SQLite persistence.
package config
