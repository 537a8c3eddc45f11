package persist

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/viant/embedstore/index"
	"github.com/viant/embedstore/index/flat"
	"github.com/viant/embedstore/vector"
)

const indexSchema = `
CREATE TABLE IF NOT EXISTS vector_storage (
    name    TEXT PRIMARY KEY,
    "index" BLOB NOT NULL
);
`

// EnsureIndexStorage creates the vector_storage table if needed.
func EnsureIndexStorage(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("persist: db is nil")
	}
	_, err := db.Exec(indexSchema)
	return err
}

// SaveIndex persists a built index under the given name, replacing any
// previous blob.
func SaveIndex(ctx context.Context, db *sql.DB, name string, idx index.Index) error {
	if err := EnsureIndexStorage(db); err != nil {
		return err
	}
	data, err := idx.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO vector_storage(name, "index") VALUES(?, ?)`, name, data)
	return err
}

// LoadIndex restores a persisted index blob into the provided instance. It
// reports false without error when no blob exists under the name.
func LoadIndex(ctx context.Context, db *sql.DB, name string, into index.Index) (bool, error) {
	if err := EnsureIndexStorage(db); err != nil {
		return false, err
	}
	var data []byte
	err := db.QueryRowContext(ctx, `SELECT "index" FROM vector_storage WHERE name = ?`, name).Scan(&data)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, into.UnmarshalBinary(data)
}

// Reindex rebuilds a flat index from the embeddings table and persists it
// under the given name, returning the number of indexed records. BEGIN
// IMMEDIATE takes a write reservation up front so concurrent reindex calls
// serialize instead of deadlocking mid-build.
func Reindex(ctx context.Context, db *sql.DB, name string) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("persist: db is nil")
	}
	if err := EnsureIndexStorage(db); err != nil {
		return 0, err
	}
	if _, err := db.ExecContext(ctx, `BEGIN IMMEDIATE`); err != nil {
		return 0, err
	}
	defer func() { _, _ = db.ExecContext(ctx, `ROLLBACK`) }()

	rows, err := db.QueryContext(ctx, `SELECT id, embedding FROM embeddings ORDER BY id`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var ids []string
	var vecs [][]float32
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return 0, err
		}
		emb, err := vector.Decode(blob)
		if err != nil {
			return 0, err
		}
		ids = append(ids, id)
		vecs = append(vecs, emb)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	idx := flat.New()
	if err := idx.Build(ctx, ids, vecs); err != nil {
		return 0, err
	}
	data, err := idx.MarshalBinary()
	if err != nil {
		return 0, err
	}
	if _, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO vector_storage(name, "index") VALUES(?, ?)`, name, data); err != nil {
		return 0, err
	}
	if _, err := db.ExecContext(ctx, `COMMIT`); err != nil {
		return 0, err
	}
	return len(ids), nil
}
