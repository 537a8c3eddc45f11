// Package query is the search facade over a store and its derived index. It
// owns the policy decisions the lower layers refuse to make: declared metric
// (inner product vs cosine), query normalization, k clamping, and when to
// rebuild the index. External encoders plug in as an EmbedFunc capability so
// text or image items can be added and searched without this module ever
// running a model.
package query
