// Package persist mirrors an embedding store into SQLite and back. Records
// land in an embeddings table with float32 BLOBs (exact round trip); built
// indexes can be persisted as blobs in vector_storage and rebuilt on demand
// with Reindex. The in-memory store stays authoritative; the database is a
// durable copy, not a second source of truth.
package persist
