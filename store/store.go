package store

import (
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/google/uuid"
	"github.com/viant/embedstore/vector"
)

var (
	// ErrDuplicateID reports an insert with an identifier already present.
	ErrDuplicateID = errors.New("duplicate record id")

	// ErrNotFound reports a lookup or removal of an absent identifier.
	ErrNotFound = errors.New("record not found")
)

// Record pairs an embedding with its identifier and optional metadata. Meta is
// an opaque payload (typically a source path or caption); the store never
// interprets it. Embedding slices returned by the store alias internal memory
// and must not be modified by callers.
type Record struct {
	ID        string
	Embedding []float32
	Meta      string
}

// Store is an append-only collection of fixed-dimension embedding records.
// Mutations are serialized against each other; reads and snapshot iterations
// run concurrently against a consistent view. The store is authoritative:
// indexes built over it are derived caches keyed by Version.
type Store struct {
	mu         sync.RWMutex
	dim        int
	normalized bool
	records    map[string]Record
	order      []string
	version    uint64
}

// Option configures a Store at construction.
type Option func(*Store)

// WithNormalized declares that every embedding submitted to this store is
// unit-normalized. The store does not verify the declaration; it gates whether
// a cosine-metric searcher may be bound to the store.
func WithNormalized() Option {
	return func(s *Store) { s.normalized = true }
}

// New creates a store for embeddings of the given dimension.
func New(dim int, opts ...Option) (*Store, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("store: dimension must be positive, got %d", dim)
	}
	s := &Store{
		dim:     dim,
		records: make(map[string]Record),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dim returns the fixed embedding dimension of the store.
func (s *Store) Dim() int { return s.dim }

// Normalized reports whether the store was declared to hold unit vectors.
func (s *Store) Normalized() bool { return s.normalized }

// Insert adds a record. An empty id requests a generated UUID; the assigned id
// is returned either way. The embedding is copied, so the caller may reuse its
// slice. Insert is atomic: on any error the store is unchanged.
func (s *Store) Insert(id string, embedding []float32, meta string) (string, error) {
	if len(embedding) != s.dim {
		return "", fmt.Errorf("store: insert: %w", vector.DimensionError(len(embedding), s.dim))
	}
	if id == "" {
		id = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; ok {
		return "", fmt.Errorf("store: insert %q: %w", id, ErrDuplicateID)
	}
	emb := make([]float32, len(embedding))
	copy(emb, embedding)
	s.records[id] = Record{ID: id, Embedding: emb, Meta: meta}
	s.order = append(s.order, id)
	s.version++
	return id, nil
}

// Get returns the record for the given id.
func (s *Store) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return Record{}, fmt.Errorf("store: get %q: %w", id, ErrNotFound)
	}
	return rec, nil
}

// Remove deletes the record for the given id. The id becomes eligible for
// reuse by a later insert.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("store: remove %q: %w", id, ErrNotFound)
	}
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.version++
	return nil
}

// Size returns the current record count.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Version returns a counter incremented on every successful mutation. Index
// consumers compare it against the version they built from to decide whether
// a rebuild is due.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Records iterates the store in insertion order. The sequence is a snapshot:
// it is unaffected by inserts or removals that happen after iteration starts,
// and it may be restarted any number of times.
func (s *Store) Records() iter.Seq[Record] {
	snapshot := s.snapshotRecords()
	return func(yield func(Record) bool) {
		for _, rec := range snapshot {
			if !yield(rec) {
				return
			}
		}
	}
}

// Snapshot returns the current ids and embeddings as parallel slices in
// insertion order, along with the version they correspond to. This is the
// input shape index builders consume.
func (s *Store) Snapshot() (ids []string, vectors [][]float32, version uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids = make([]string, 0, len(s.order))
	vectors = make([][]float32, 0, len(s.order))
	for _, id := range s.order {
		rec := s.records[id]
		ids = append(ids, rec.ID)
		vectors = append(vectors, rec.Embedding)
	}
	return ids, vectors, s.version
}

func (s *Store) snapshotRecords() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}
