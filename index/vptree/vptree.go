package vptree

import (
	"container/heap"
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/viant/embedstore/index"
	"github.com/viant/embedstore/index/flat"
	"github.com/viant/embedstore/vector"
	"github.com/viant/vec/search"
)

const cancelCheckInterval = 256

// Index answers top-k queries with a vantage-point tree built over angular
// (1 - cosine) distance. Scores returned to callers are inner products, so
// flat and vptree results agree on pre-normalized vectors.
type Index struct {
	ids  []string
	vecs [][]float32
	mags []float32
	dim  int
	root *node
}

type node struct {
	ref     int // position in ids/vecs
	radius  float64
	inside  *node
	outside *node
}

var _ index.Index = (*Index)(nil)

// New returns an empty vantage-point tree index; populate it with Build.
func New() *Index { return &Index{} }

// Build copies the snapshot, orders entries by ascending id, caches vector
// magnitudes, and constructs the tree. Cancellation is honored between
// partition steps.
func (i *Index) Build(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("vptree: ids and vectors length mismatch: %d != %d", len(ids), len(vectors))
	}
	i.reset()
	if len(ids) == 0 {
		return nil
	}
	dim := len(vectors[0])
	order := make([]int, len(ids))
	for j := range order {
		order[j] = j
	}
	sort.Slice(order, func(a, b int) bool { return ids[order[a]] < ids[order[b]] })

	i.ids = make([]string, len(ids))
	i.vecs = make([][]float32, len(ids))
	i.mags = make([]float32, len(ids))
	for n, j := range order {
		if len(vectors[j]) != dim {
			i.reset()
			return fmt.Errorf("vptree: build: %w", vector.DimensionError(len(vectors[j]), dim))
		}
		i.ids[n] = ids[j]
		i.vecs[n] = vectors[j]
		i.mags[n] = search.Float32s(vectors[j]).Magnitude()
	}
	i.dim = dim

	refs := make([]int, len(ids))
	for j := range refs {
		refs[j] = j
	}
	var processed int
	root, err := i.buildNode(ctx, refs, &processed)
	if err != nil {
		i.reset()
		return err
	}
	i.root = root
	return nil
}

func (i *Index) reset() {
	i.ids, i.vecs, i.mags, i.dim, i.root = nil, nil, nil, 0, nil
}

func (i *Index) buildNode(ctx context.Context, refs []int, processed *int) (*node, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	if *processed%cancelCheckInterval == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	*processed++

	// The last ref serves as the vantage point, avoiding an RNG dependency.
	vp := refs[len(refs)-1]
	rest := refs[:len(refs)-1]
	if len(rest) == 0 {
		return &node{ref: vp}, nil
	}

	dists := make([]float64, len(rest))
	for n, ref := range rest {
		dists[n] = i.distance(i.vecs[vp], i.mags[vp], ref)
	}
	order := make([]int, len(rest))
	for n := range order {
		order[n] = n
	}
	sort.Slice(order, func(a, b int) bool { return dists[order[a]] < dists[order[b]] })

	mid := len(order) / 2
	radius := dists[order[mid]]
	inside := make([]int, 0, mid+1)
	outside := make([]int, 0, len(order)-mid-1)
	for rank, n := range order {
		if rank <= mid {
			inside = append(inside, rest[n])
		} else {
			outside = append(outside, rest[n])
		}
	}

	left, err := i.buildNode(ctx, inside, processed)
	if err != nil {
		return nil, err
	}
	right, err := i.buildNode(ctx, outside, processed)
	if err != nil {
		return nil, err
	}
	return &node{ref: vp, radius: radius, inside: left, outside: right}, nil
}

// distance computes the angular distance between q and the stored vector.
func (i *Index) distance(q []float32, qMag float32, ref int) float64 {
	m := i.mags[ref]
	if qMag == 0 || m == 0 {
		return 1
	}
	// viant/vec exports this under CosineDistanceWithMagnitude on arm64 and
	// CosineDistanceWithMagnitudesNeon elsewhere; both wrap the same scalar
	// implementation.
	return float64(search.Float32s(q).CosineDistanceWithMagnitudesNeon(i.vecs[ref], qMag, m))
}

// Len returns the number of indexed records.
func (i *Index) Len() int { return len(i.ids) }

// Query descends the tree collecting the k angularly closest vectors, then
// scores the survivors by exact inner product.
func (i *Index) Query(query []float32, k int) ([]string, []float64, error) {
	if len(i.ids) == 0 {
		return nil, nil, fmt.Errorf("vptree: query: %w", index.ErrEmptyIndex)
	}
	if len(query) != i.dim {
		return nil, nil, fmt.Errorf("vptree: query: %w", vector.DimensionError(len(query), i.dim))
	}
	if k <= 0 || k > len(i.ids) {
		k = len(i.ids)
	}

	qMag := search.Float32s(query).Magnitude()
	h := &neighbors{}
	heap.Init(h)
	i.search(i.root, query, qMag, k, h)

	refs := make([]int, h.Len())
	for n := len(refs) - 1; n >= 0; n-- {
		refs[n] = heap.Pop(h).(neighbor).ref
	}

	scores := make([]float64, len(refs))
	for n, ref := range refs {
		s, err := vector.Dot(query, i.vecs[ref])
		if err != nil {
			return nil, nil, err
		}
		scores[n] = s
	}
	order := make([]int, len(refs))
	for n := range order {
		order[n] = n
	}
	sort.Slice(order, func(a, b int) bool {
		if scores[order[a]] != scores[order[b]] {
			return scores[order[a]] > scores[order[b]]
		}
		return i.ids[refs[order[a]]] < i.ids[refs[order[b]]]
	})

	outIDs := make([]string, len(order))
	outScores := make([]float64, len(order))
	for n, j := range order {
		outIDs[n] = i.ids[refs[j]]
		outScores[n] = scores[j]
	}
	return outIDs, outScores, nil
}

func (i *Index) search(n *node, query []float32, qMag float32, k int, h *neighbors) {
	if n == nil {
		return
	}
	d := i.distance(query, qMag, n.ref)
	if h.Len() < k {
		heap.Push(h, neighbor{ref: n.ref, dist: d})
	} else if d < (*h)[0].dist {
		heap.Pop(h)
		heap.Push(h, neighbor{ref: n.ref, dist: d})
	}
	tau := math.Inf(1)
	if h.Len() == k {
		tau = (*h)[0].dist
	}
	if d < n.radius {
		i.search(n.inside, query, qMag, k, h)
		if h.Len() == k {
			tau = (*h)[0].dist
		}
		if d+tau >= n.radius {
			i.search(n.outside, query, qMag, k, h)
		}
	} else {
		i.search(n.outside, query, qMag, k, h)
		if h.Len() == k {
			tau = (*h)[0].dist
		}
		if d-tau <= n.radius {
			i.search(n.inside, query, qMag, k, h)
		}
	}
}

// MarshalBinary serializes the index using the shared flat format so blobs
// remain interchangeable across index kinds.
func (i *Index) MarshalBinary() ([]byte, error) {
	return flat.Marshal(i.ids, i.vecs, i.dim)
}

// UnmarshalBinary rebuilds the tree from a shared-format blob.
func (i *Index) UnmarshalBinary(data []byte) error {
	ids, vecs, err := flat.Unmarshal(data)
	if err != nil {
		return err
	}
	return i.Build(context.Background(), ids, vecs)
}
