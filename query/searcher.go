package query

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/viant/embedstore/index"
	"github.com/viant/embedstore/index/flat"
	"github.com/viant/embedstore/index/vptree"
	"github.com/viant/embedstore/store"
	"github.com/viant/embedstore/vector"
)

// ErrMetricMismatch reports a cosine-metric searcher bound to a store whose
// vectors were not declared unit-normalized.
var ErrMetricMismatch = errors.New("declared metric requires normalized store vectors")

// Metric selects how similarity scores are interpreted.
type Metric string

const (
	// MetricDot scores by raw inner product.
	MetricDot Metric = "dot"
	// MetricCosine scores by cosine similarity. It requires a store declared
	// normalized; queries are normalized by the searcher before dispatch.
	MetricCosine Metric = "cosine"
)

// ParseMetric resolves a metric name from configuration.
func ParseMetric(name string) (Metric, error) {
	switch Metric(name) {
	case MetricDot, MetricCosine:
		return Metric(name), nil
	case "":
		return MetricDot, nil
	}
	return "", fmt.Errorf("query: unknown metric %q", name)
}

// Kind selects the index implementation behind the searcher.
type Kind string

const (
	// KindFlat is the exact linear-scan index.
	KindFlat Kind = "flat"
	// KindVPTree is the vantage-point tree for larger collections.
	KindVPTree Kind = "vptree"
)

// ParseKind resolves an index kind name from configuration.
func ParseKind(name string) (Kind, error) {
	switch Kind(name) {
	case KindFlat, KindVPTree:
		return Kind(name), nil
	case "":
		return KindFlat, nil
	}
	return "", fmt.Errorf("query: unknown index kind %q", name)
}

// Match is a single similarity hit.
type Match struct {
	ID    string
	Score float64
}

// Searcher dispatches top-k queries against a store. It reuses one built
// index across queries and rebuilds only when the store's version stamp has
// moved, so reads stay cheap between mutations.
type Searcher struct {
	store  *store.Store
	metric Metric
	kind   Kind
	embed  EmbedFunc

	mu           sync.Mutex
	idx          index.Index
	builtVersion uint64
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithMetric declares the similarity metric. Default is MetricDot.
func WithMetric(m Metric) Option {
	return func(s *Searcher) { s.metric = m }
}

// WithIndexKind selects the index implementation. Default is KindFlat.
func WithIndexKind(k Kind) Option {
	return func(s *Searcher) { s.kind = k }
}

// WithEmbedder attaches an external encoder used by AddText and SearchText.
func WithEmbedder(embed EmbedFunc) Option {
	return func(s *Searcher) { s.embed = embed }
}

// New binds a searcher to a store. Requesting MetricCosine over a store not
// declared normalized fails with ErrMetricMismatch: silently renormalizing
// stored vectors would change scores behind the caller's back.
func New(st *store.Store, opts ...Option) (*Searcher, error) {
	if st == nil {
		return nil, fmt.Errorf("query: store is nil")
	}
	s := &Searcher{store: st, metric: MetricDot, kind: KindFlat}
	for _, opt := range opts {
		opt(s)
	}
	if s.metric == MetricCosine && !st.Normalized() {
		return nil, fmt.Errorf("query: %w", ErrMetricMismatch)
	}
	return s, nil
}

// Search returns the top k matches for the query embedding, ordered by
// descending score with ties broken by ascending id. k is clamped to
// [1, store size]; searching an empty store fails with index.ErrEmptyIndex.
func (s *Searcher) Search(ctx context.Context, query []float32, k int) ([]Match, error) {
	if len(query) != s.store.Dim() {
		return nil, fmt.Errorf("query: search: %w", vector.DimensionError(len(query), s.store.Dim()))
	}
	if s.metric == MetricCosine {
		normalized, err := vector.Normalize(query)
		if err != nil {
			return nil, fmt.Errorf("query: search: %w", err)
		}
		query = normalized
	}
	idx, err := s.ensureIndex(ctx)
	if err != nil {
		return nil, err
	}
	if k < 1 {
		k = 1
	}
	if n := idx.Len(); k > n && n > 0 {
		k = n
	}
	ids, scores, err := idx.Query(query, k)
	if err != nil {
		return nil, err
	}
	matches := make([]Match, len(ids))
	for i := range ids {
		matches[i] = Match{ID: ids[i], Score: scores[i]}
	}
	return matches, nil
}

// Invalidate drops the cached index; the next search rebuilds from a fresh
// store snapshot even if the version stamp has not moved.
func (s *Searcher) Invalidate() {
	s.mu.Lock()
	s.idx = nil
	s.mu.Unlock()
}

// ensureIndex returns an index built over the store's current contents,
// rebuilding only when the cached one is stale.
func (s *Searcher) ensureIndex(ctx context.Context) (index.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx != nil && s.builtVersion == s.store.Version() {
		return s.idx, nil
	}
	ids, vectors, version := s.store.Snapshot()
	idx := s.newIndex()
	if err := idx.Build(ctx, ids, vectors); err != nil {
		return nil, err
	}
	s.idx = idx
	s.builtVersion = version
	return idx, nil
}

func (s *Searcher) newIndex() index.Index {
	if s.kind == KindVPTree {
		return vptree.New()
	}
	return flat.New()
}
