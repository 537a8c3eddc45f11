package flat

import (
	"context"
	"fmt"
	"sort"

	"github.com/viant/embedstore/index"
	"github.com/viant/embedstore/vector"
)

// cancelCheckInterval bounds how many vectors are processed between context
// checks during Build.
const cancelCheckInterval = 1024

// Index is the exact brute-force similarity index.
type Index struct {
	ids  []string
	vecs [][]float32
	dim  int
}

var _ index.Index = (*Index)(nil)

// New returns an empty flat index; populate it with Build.
func New() *Index { return &Index{} }

// Build copies the snapshot and orders entries by ascending id, which makes
// equal-score query results deterministic without per-query id comparisons.
func (i *Index) Build(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("flat: ids and vectors length mismatch: %d != %d", len(ids), len(vectors))
	}
	if len(ids) == 0 {
		i.ids, i.vecs, i.dim = nil, nil, 0
		return nil
	}
	dim := len(vectors[0])
	entries := make([]int, len(ids))
	for j := range entries {
		entries[j] = j
	}
	sort.Slice(entries, func(a, b int) bool { return ids[entries[a]] < ids[entries[b]] })

	outIDs := make([]string, len(ids))
	outVecs := make([][]float32, len(ids))
	for n, j := range entries {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				i.ids, i.vecs, i.dim = nil, nil, 0
				return err
			}
		}
		if len(vectors[j]) != dim {
			i.ids, i.vecs, i.dim = nil, nil, 0
			return fmt.Errorf("flat: build: %w", vector.DimensionError(len(vectors[j]), dim))
		}
		outIDs[n] = ids[j]
		outVecs[n] = vectors[j]
	}
	i.ids = outIDs
	i.vecs = outVecs
	i.dim = dim
	return nil
}

// Len returns the number of indexed records.
func (i *Index) Len() int { return len(i.ids) }

// Query scores every stored vector against the query and returns the top k by
// descending inner product, ties by ascending id.
func (i *Index) Query(query []float32, k int) ([]string, []float64, error) {
	if len(i.ids) == 0 {
		return nil, nil, fmt.Errorf("flat: query: %w", index.ErrEmptyIndex)
	}
	if len(query) != i.dim {
		return nil, nil, fmt.Errorf("flat: query: %w", vector.DimensionError(len(query), i.dim))
	}
	scores := make([]float64, len(i.vecs))
	for j, vec := range i.vecs {
		s, err := vector.Dot(query, vec)
		if err != nil {
			return nil, nil, err
		}
		scores[j] = s
	}
	order := make([]int, len(i.ids))
	for j := range order {
		order[j] = j
	}
	// Stable sort over the id-ascending base order keeps ties in ascending id.
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	if k <= 0 || k > len(order) {
		k = len(order)
	}
	outIDs := make([]string, k)
	outScores := make([]float64, k)
	for n := 0; n < k; n++ {
		outIDs[n] = i.ids[order[n]]
		outScores[n] = scores[order[n]]
	}
	return outIDs, outScores, nil
}

// MarshalBinary serializes the index with Marshal.
func (i *Index) MarshalBinary() ([]byte, error) {
	return Marshal(i.ids, i.vecs, i.dim)
}

// UnmarshalBinary replaces the index contents with the serialized snapshot.
func (i *Index) UnmarshalBinary(data []byte) error {
	ids, vecs, err := Unmarshal(data)
	if err != nil {
		return err
	}
	return i.Build(context.Background(), ids, vecs)
}
