package similarity

import (
	"math"

	"github.com/botirk38/embedsim/types"
)

// CosineSimilarity computes the cosine similarity between two vectors,
// clamped to [-1, 1]. Vectors of different or zero length, and vectors
// with a zero or non-finite norm, yield a validation error.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, types.Invalidf("vectors must have the same dimension: %d != %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, types.Invalidf("cannot compare empty vectors")
	}

	var dot, normA, normB float64
	for i := range a {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 || math.IsNaN(denom) || math.IsInf(denom, 0) {
		return 0, types.Invalidf("one or both vectors have zero or non-finite magnitude")
	}
	return clamp(dot / denom), nil
}

// clamp keeps rounding error from pushing a cosine outside [-1, 1].
func clamp(x float64) float64 {
	switch {
	case x > 1:
		return 1
	case x < -1:
		return -1
	default:
		return x
	}
}
