// Package engine opens SQLite databases with the pure-Go modernc driver and
// registers the vec_dot/vec_cosine scalar functions over embedding BLOBs.
package engine
