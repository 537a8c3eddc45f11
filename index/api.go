package index

import (
	"context"
	"errors"
)

// ErrEmptyIndex reports a query against an index built over zero records.
// It is distinct from an empty result set, which cannot occur: a non-empty
// index always returns min(k, size) results.
var ErrEmptyIndex = errors.New("index built over zero records")

// Index is a searchable structure derived from a store snapshot. An index is
// immutable once built: Build consumes one snapshot and must not be called
// again on the same instance. Queries are side-effect free and safe for
// unbounded concurrent use after Build returns.
type Index interface {
	// Build constructs the index from parallel id and vector slices taken from
	// a single store snapshot. It honors ctx cancellation on large inputs,
	// returning the context error without leaving a partially usable index.
	Build(ctx context.Context, ids []string, vectors [][]float32) error

	// Query returns up to min(k, Len()) matches as parallel id and score
	// slices, ordered by descending inner product with ties broken by
	// ascending id. k <= 0 requests all entries. Querying an empty index
	// fails with ErrEmptyIndex; a query of the wrong dimension fails with
	// vector.ErrDimensionMismatch.
	Query(query []float32, k int) (ids []string, scores []float64, err error)

	// Len returns the number of indexed records.
	Len() int

	// MarshalBinary serializes the index contents.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary reconstructs the index from serialized contents,
	// replacing anything built so far.
	UnmarshalBinary(data []byte) error
}
