// Package snapshot serializes a store's records to an io.Writer and back
// using msgpack. The format is self-describing and float32-exact, so an
// exported store reloads bit-for-bit. It is one optional shape for the
// persistence the core deliberately does not mandate.
package snapshot
