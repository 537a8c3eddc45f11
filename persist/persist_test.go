package persist

import (
	"context"
	"errors"
	"testing"

	"github.com/viant/embedstore/engine"
	"github.com/viant/embedstore/index/flat"
	"github.com/viant/embedstore/store"
	"github.com/viant/embedstore/vector"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	st, _ := store.New(3)
	if _, err := st.Insert("a", []float32{1, -0.5, 0.25}, "first"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := st.Insert("b", []float32{0, 1, 0}, "second"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	ctx := context.Background()
	if err := Save(ctx, db, st); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(ctx, db, 3)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Size() != 2 {
		t.Fatalf("loaded size = %d, want 2", loaded.Size())
	}
	rec, err := loaded.Get("a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Meta != "first" {
		t.Fatalf("Meta = %q, want %q", rec.Meta, "first")
	}
	want := []float32{1, -0.5, 0.25}
	for i := range want {
		if rec.Embedding[i] != want[i] {
			t.Fatalf("Embedding[%d] = %v, want %v", i, rec.Embedding[i], want[i])
		}
	}
}

func TestSave_ReplacesPrevious(t *testing.T) {
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	st, _ := store.New(2)
	_, _ = st.Insert("a", []float32{1, 0}, "")
	if err := Save(ctx, db, st); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_ = st.Remove("a")
	_, _ = st.Insert("b", []float32{0, 1}, "")
	if err := Save(ctx, db, st); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, err := Load(ctx, db, 2)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Size() != 1 {
		t.Fatalf("loaded size = %d, want 1", loaded.Size())
	}
	if _, err := loaded.Get("a"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected removed record to stay gone, got %v", err)
	}
}

func TestLoad_DimensionMismatch(t *testing.T) {
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	st, _ := store.New(2)
	_, _ = st.Insert("a", []float32{1, 0}, "")
	if err := Save(ctx, db, st); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := Load(ctx, db, 3); !errors.Is(err, vector.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestReindexAndLoadIndex(t *testing.T) {
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	st, _ := store.New(2)
	_, _ = st.Insert("1", []float32{1, 0}, "")
	_, _ = st.Insert("2", []float32{0, 1}, "")
	_, _ = st.Insert("3", []float32{1, 1}, "")
	if err := Save(ctx, db, st); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	n, err := Reindex(ctx, db, "embeddings")
	if err != nil {
		t.Fatalf("Reindex failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("Reindex count = %d, want 3", n)
	}

	idx := flat.New()
	found, err := LoadIndex(ctx, db, "embeddings", idx)
	if err != nil {
		t.Fatalf("LoadIndex failed: %v", err)
	}
	if !found {
		t.Fatalf("expected persisted index blob")
	}
	ids, scores, err := idx.Query([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if ids[0] != "1" || ids[1] != "3" || scores[0] != 1 || scores[1] != 1 {
		t.Fatalf("restored index results = %v %v", ids, scores)
	}

	if found, err := LoadIndex(ctx, db, "missing", flat.New()); err != nil || found {
		t.Fatalf("LoadIndex(missing) = %v, %v; want false, nil", found, err)
	}
}
