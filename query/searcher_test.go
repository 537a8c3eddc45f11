package query

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/viant/embedstore/index"
	"github.com/viant/embedstore/store"
	"github.com/viant/embedstore/vector"
)

func newStore(t *testing.T, dim int, opts ...store.Option) *store.Store {
	t.Helper()
	st, err := store.New(dim, opts...)
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	return st
}

func TestSearch_TieBreakByID(t *testing.T) {
	st := newStore(t, 2)
	for id, emb := range map[string][]float32{
		"1": {1, 0},
		"2": {0, 1},
		"3": {1, 1},
	} {
		if _, err := st.Insert(id, emb, ""); err != nil {
			t.Fatalf("Insert(%s) failed: %v", id, err)
		}
	}
	s, err := New(st)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	matches, err := s.Search(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != "1" || matches[0].Score != 1.0 {
		t.Fatalf("matches[0] = %+v, want {1 1}", matches[0])
	}
	if matches[1].ID != "3" || matches[1].Score != 1.0 {
		t.Fatalf("matches[1] = %+v, want {3 1}", matches[1])
	}
}

func TestSearch_ClampsK(t *testing.T) {
	st := newStore(t, 2)
	_, _ = st.Insert("a", []float32{1, 0}, "")
	_, _ = st.Insert("b", []float32{0, 1}, "")
	s, _ := New(st)

	// Oversized k returns size() results, never pads or errors.
	matches, err := s.Search(context.Background(), []float32{1, 0}, 50)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("k=50 returned %d matches, want 2", len(matches))
	}

	// k below 1 is clamped up, not rejected.
	matches, err = s.Search(context.Background(), []float32{1, 0}, 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("k=0 returned %d matches, want 1", len(matches))
	}
}

func TestSearch_EmptyStore(t *testing.T) {
	s, _ := New(newStore(t, 2))
	if _, err := s.Search(context.Background(), []float32{1, 0}, 1); !errors.Is(err, index.ErrEmptyIndex) {
		t.Fatalf("expected ErrEmptyIndex, got %v", err)
	}
}

func TestSearch_DimensionMismatch(t *testing.T) {
	st := newStore(t, 3)
	_, _ = st.Insert("a", []float32{1, 0, 0}, "")
	s, _ := New(st)
	if _, err := s.Search(context.Background(), []float32{1, 0}, 1); !errors.Is(err, vector.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestNew_MetricMismatch(t *testing.T) {
	st := newStore(t, 2)
	if _, err := New(st, WithMetric(MetricCosine)); !errors.Is(err, ErrMetricMismatch) {
		t.Fatalf("expected ErrMetricMismatch, got %v", err)
	}

	normalized := newStore(t, 2, store.WithNormalized())
	if _, err := New(normalized, WithMetric(MetricCosine)); err != nil {
		t.Fatalf("cosine over normalized store failed: %v", err)
	}
}

func TestSearch_CosineNormalizesQuery(t *testing.T) {
	st := newStore(t, 2, store.WithNormalized())
	_, _ = st.Insert("x", []float32{1, 0}, "")
	_, _ = st.Insert("y", []float32{0, 1}, "")
	s, err := New(st, WithMetric(MetricCosine))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// A long query along x must still score exactly 1 against the unit x axis.
	matches, err := s.Search(context.Background(), []float32{100, 0}, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if matches[0].ID != "x" || matches[0].Score != 1.0 {
		t.Fatalf("matches[0] = %+v, want {x 1}", matches[0])
	}

	if _, err := s.Search(context.Background(), []float32{0, 0}, 1); err == nil {
		t.Fatalf("expected error for zero-magnitude cosine query")
	}
}

func TestSearch_RemoveInvalidatesIndex(t *testing.T) {
	st := newStore(t, 2)
	_, _ = st.Insert("a", []float32{1, 0}, "")
	_, _ = st.Insert("b", []float32{0.9, 0.1}, "")
	s, _ := New(st)

	matches, err := s.Search(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	if err := st.Remove("a"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	matches, err = s.Search(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search after remove failed: %v", err)
	}
	for _, m := range matches {
		if m.ID == "a" {
			t.Fatalf("removed record still returned: %+v", matches)
		}
	}
}

func TestSearch_ReusesIndexBetweenQueries(t *testing.T) {
	st := newStore(t, 2)
	_, _ = st.Insert("a", []float32{1, 0}, "")
	s, _ := New(st)

	if _, err := s.Search(context.Background(), []float32{1, 0}, 1); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	first := s.idx
	if _, err := s.Search(context.Background(), []float32{0, 1}, 1); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if s.idx != first {
		t.Fatalf("index rebuilt although the store did not change")
	}

	s.Invalidate()
	if _, err := s.Search(context.Background(), []float32{1, 0}, 1); err != nil {
		t.Fatalf("Search after Invalidate failed: %v", err)
	}
	if s.idx == first {
		t.Fatalf("Invalidate did not force a rebuild")
	}
}

func TestSearcher_VPTreeKind(t *testing.T) {
	st := newStore(t, 2)
	_, _ = st.Insert("a", []float32{1, 0}, "")
	_, _ = st.Insert("b", []float32{0, 1}, "")
	s, err := New(st, WithIndexKind(KindVPTree))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	matches, err := s.Search(context.Background(), []float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if matches[0].ID != "a" {
		t.Fatalf("matches[0] = %+v, want a", matches[0])
	}
}

func TestAddTextSearchText(t *testing.T) {
	st := newStore(t, 2)
	embed := func(_ context.Context, input string) ([]float32, error) {
		switch input {
		case "sunrise":
			return []float32{1, 0}, nil
		case "moonlight":
			return []float32{0, 1}, nil
		}
		return nil, fmt.Errorf("unknown input %q", input)
	}
	s, err := New(st, WithEmbedder(embed))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	id, err := s.AddText(context.Background(), "", "sunrise", "img/sunrise.jpg")
	if err != nil {
		t.Fatalf("AddText failed: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated id")
	}
	if _, err := s.AddText(context.Background(), "moon", "moonlight", ""); err != nil {
		t.Fatalf("AddText failed: %v", err)
	}

	matches, err := s.SearchText(context.Background(), "sunrise", 1)
	if err != nil {
		t.Fatalf("SearchText failed: %v", err)
	}
	if matches[0].ID != id {
		t.Fatalf("SearchText top hit = %s, want %s", matches[0].ID, id)
	}

	rec, err := st.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Meta != "img/sunrise.jpg" {
		t.Fatalf("Meta = %q", rec.Meta)
	}
}

func TestParseMetricParseKind(t *testing.T) {
	if m, err := ParseMetric(""); err != nil || m != MetricDot {
		t.Fatalf("ParseMetric default = %v, %v", m, err)
	}
	if _, err := ParseMetric("hamming"); err == nil {
		t.Fatalf("expected error for unknown metric")
	}
	if k, err := ParseKind("vptree"); err != nil || k != KindVPTree {
		t.Fatalf("ParseKind = %v, %v", k, err)
	}
	if _, err := ParseKind("hnsw"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
