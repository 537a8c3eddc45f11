// Package index defines the contract for similarity indexes built over an
// embedding store snapshot: cancelable build, deterministic top-k queries by
// inner product, and binary serialization for persistence. The flat scan in
// index/flat is the exact reference implementation; index/vptree trades exact
// tie handling for sublinear search on larger collections.
package index
