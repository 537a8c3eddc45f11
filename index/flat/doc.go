// Package flat provides the exact reference index: every query scans all
// stored vectors and scores them by inner product in float64 precision.
// Results are fully deterministic, including the ascending-id order of
// equal-score matches. Linear scan is the right trade at the scale this
// project targets (tens to low thousands of records).
package flat
