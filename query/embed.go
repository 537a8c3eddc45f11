package query

import (
	"context"
	"fmt"
)

// EmbedFunc converts an external item (free-form text, an image path, a
// caption) into an embedding of the store's dimension.
//
// Implementations can call any encoder (a hosted API, a local model) as long
// as they return a fixed-dimension slice of float32 values. The core packages
// stay encoder-agnostic and only ever see the numeric vectors; whether
// inference is synchronous, batched or remote is entirely the implementation's
// concern.
type EmbedFunc func(ctx context.Context, input string) ([]float32, error)

// AddText embeds content with the attached encoder and inserts the resulting
// record. An empty id requests a generated one; the assigned id is returned.
func (s *Searcher) AddText(ctx context.Context, id, content, meta string) (string, error) {
	if s.embed == nil {
		return "", fmt.Errorf("query: no embedder attached")
	}
	emb, err := s.embed(ctx, content)
	if err != nil {
		return "", fmt.Errorf("query: embed %q: %w", id, err)
	}
	return s.store.Insert(id, emb, meta)
}

// SearchText embeds the query content and runs a top-k search with it.
func (s *Searcher) SearchText(ctx context.Context, content string, k int) ([]Match, error) {
	if s.embed == nil {
		return nil, fmt.Errorf("query: no embedder attached")
	}
	emb, err := s.embed(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("query: embed query: %w", err)
	}
	return s.Search(ctx, emb, k)
}
