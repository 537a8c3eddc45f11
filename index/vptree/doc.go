// Package vptree provides a vantage-point tree index over angular distance.
// It prunes the scan on larger collections while keeping the same query
// contract as the flat index: descending inner-product scores with ascending
// ids on ties. Angular pruning is best-effort near equal distances, so the
// flat index remains the reference for correctness tests.
package vptree
