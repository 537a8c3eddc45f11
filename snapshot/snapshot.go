package snapshot

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/viant/embedstore/store"
)

// header leads every snapshot stream and pins the store declaration the
// records were written under.
type header struct {
	Dimension  int  `msgpack:"dimension"`
	Normalized bool `msgpack:"normalized"`
	Count      int  `msgpack:"count"`
}

type record struct {
	ID        string    `msgpack:"id"`
	Embedding []float32 `msgpack:"embedding"`
	Meta      string    `msgpack:"meta"`
}

// Write streams a point-in-time snapshot of the store. The record set is
// pinned when Write is called; later store mutations do not leak in.
func Write(w io.Writer, st *store.Store) error {
	var recs []record
	for rec := range st.Records() {
		recs = append(recs, record{ID: rec.ID, Embedding: rec.Embedding, Meta: rec.Meta})
	}
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(header{Dimension: st.Dim(), Normalized: st.Normalized(), Count: len(recs)}); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}
	for i := range recs {
		if err := enc.Encode(&recs[i]); err != nil {
			return fmt.Errorf("snapshot: write record %q: %w", recs[i].ID, err)
		}
	}
	return nil
}

// Read reconstructs a store from a stream produced by Write.
func Read(r io.Reader) (*store.Store, error) {
	dec := msgpack.NewDecoder(r)
	var hdr header
	if err := dec.Decode(&hdr); err != nil {
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}
	var opts []store.Option
	if hdr.Normalized {
		opts = append(opts, store.WithNormalized())
	}
	st, err := store.New(hdr.Dimension, opts...)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	for i := 0; i < hdr.Count; i++ {
		var rec record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("snapshot: read record %d of %d: %w", i, hdr.Count, err)
		}
		if _, err := st.Insert(rec.ID, rec.Embedding, rec.Meta); err != nil {
			return nil, fmt.Errorf("snapshot: record %q: %w", rec.ID, err)
		}
	}
	return st, nil
}
