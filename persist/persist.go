package persist

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/viant/embedstore/store"
	"github.com/viant/embedstore/vector"
)

const recordsSchema = `
CREATE TABLE IF NOT EXISTS embeddings (
    id        TEXT PRIMARY KEY,
    meta      TEXT,
    embedding BLOB NOT NULL
);
`

// EnsureSchema creates the embeddings table if it does not already exist.
func EnsureSchema(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("persist: db is nil")
	}
	_, err := db.Exec(recordsSchema)
	return err
}

// Save writes a full snapshot of the store into the embeddings table,
// replacing previous contents. The write happens in one transaction, so
// readers never observe a half-written snapshot.
func Save(ctx context.Context, db *sql.DB, st *store.Store) error {
	if db == nil {
		return fmt.Errorf("persist: db is nil")
	}
	if err := EnsureSchema(db); err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM embeddings`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO embeddings(id, meta, embedding) VALUES(?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for rec := range st.Records() {
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.Meta, vector.Encode(rec.Embedding)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Load reads the embeddings table into a fresh store of the given dimension.
// A persisted row whose embedding does not match dim fails the load with
// vector.ErrDimensionMismatch rather than being silently skipped.
func Load(ctx context.Context, db *sql.DB, dim int, opts ...store.Option) (*store.Store, error) {
	if db == nil {
		return nil, fmt.Errorf("persist: db is nil")
	}
	if err := EnsureSchema(db); err != nil {
		return nil, err
	}
	st, err := store.New(dim, opts...)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id, meta, embedding FROM embeddings ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, meta string
		var blob []byte
		if err := rows.Scan(&id, &meta, &blob); err != nil {
			return nil, err
		}
		emb, err := vector.Decode(blob)
		if err != nil {
			return nil, fmt.Errorf("persist: record %q: %w", id, err)
		}
		if _, err := st.Insert(id, emb, meta); err != nil {
			return nil, fmt.Errorf("persist: record %q: %w", id, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return st, nil
}
