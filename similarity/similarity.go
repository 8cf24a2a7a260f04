// Package similarity provides the vector math behind pairwise and group
// similarity scores. Inputs are float32 embeddings; accumulation happens in
// float64.
package similarity

import (
	"math"

	"github.com/botirk38/embedsim/types"
)

// Norm returns the L2 norm of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize returns v scaled to unit L2 length.
// A zero vector cannot be normalized and yields a validation error.
func Normalize(v []float32) ([]float64, error) {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return normalize64(out)
}

// normalize64 scales v to unit length in place and returns it.
func normalize64(v []float64) ([]float64, error) {
	if len(v) == 0 {
		return nil, types.Invalidf("cannot normalize an empty vector")
	}
	n := math.Sqrt(Dot(v, v))
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, types.Invalidf("cannot normalize vector with norm %v", n)
	}
	for i := range v {
		v[i] /= n
	}
	return v, nil
}

// NormalizeRows normalizes every row of m and checks that all rows share
// the same dimensionality.
func NormalizeRows(m types.Matrix) ([][]float64, error) {
	if len(m) == 0 {
		return nil, types.Invalidf("no embeddings to normalize")
	}

	dims := len(m[0])
	rows := make([][]float64, len(m))
	for i, row := range m {
		if len(row) != dims {
			return nil, types.Invalidf("embedding %d has %d dimensions, expected %d", i, len(row), dims)
		}
		nr, err := Normalize(row)
		if err != nil {
			return nil, types.Invalidf("embedding %d: %v", i, err)
		}
		rows[i] = nr
	}
	return rows, nil
}

// Dot returns the dot product of two equal-length vectors.
func Dot(a, b []float64) float64 {
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}
