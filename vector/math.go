package vector

import (
	"errors"
	"fmt"

	"github.com/viant/vec/search"
)

// ErrDimensionMismatch reports an embedding whose dimension differs from the
// one a store or index was declared with. Callers match it with errors.Is.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// DimensionError wraps ErrDimensionMismatch with the observed dimensions.
func DimensionError(got, want int) error {
	return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, got, want)
}

// Dot computes the inner product of two vectors in float64 precision.
// On pre-normalized vectors this equals their cosine similarity.
func Dot(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, DimensionError(len(b), len(a))
	}
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s, nil
}

// Magnitude returns the Euclidean length of the vector.
func Magnitude(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return search.Float32s(v).Magnitude()
}

// Cosine computes the cosine similarity between two vectors. A zero-magnitude
// operand yields similarity 0 rather than an error; dimension mismatches are
// rejected with ErrDimensionMismatch.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, DimensionError(len(b), len(a))
	}
	ma, mb := Magnitude(a), Magnitude(b)
	if ma == 0 || mb == 0 {
		return 0, nil
	}
	// viant/vec exports this under CosineDistanceWithMagnitude on arm64 and
	// CosineDistanceWithMagnitudesNeon elsewhere; both wrap the same scalar
	// implementation.
	dist := search.Float32s(a).CosineDistanceWithMagnitudesNeon(b, ma, mb)
	return 1 - float64(dist), nil
}

// Euclidean returns the L2 distance between two vectors.
func Euclidean(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, DimensionError(len(b), len(a))
	}
	return float64(search.Float32s(a).EuclideanDistance(b)), nil
}

// Normalize returns a unit-length copy of the vector. The input is never
// modified. A zero-magnitude vector cannot be normalized and is rejected.
func Normalize(v []float32) ([]float32, error) {
	m := Magnitude(v)
	if m == 0 {
		return nil, fmt.Errorf("vector: cannot normalize zero-magnitude vector")
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / m
	}
	return out, nil
}

// IsNormalized reports whether the vector is unit length within tolerance.
func IsNormalized(v []float32, tolerance float32) bool {
	m := Magnitude(v)
	d := m - 1
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}
