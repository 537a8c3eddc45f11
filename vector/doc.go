// Package vector defines the shared numeric primitives used across this
// project. It includes:
//   - Embedding BLOB encoding (little-endian float32, exact round trip)
//   - Dot product, cosine similarity and normalization helpers
//   - The ErrDimensionMismatch sentinel shared by store, index and query
package vector
