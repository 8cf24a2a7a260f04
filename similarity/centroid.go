package similarity

import (
	"github.com/botirk38/embedsim/types"
)

// Centroid returns the arithmetic mean of rows. All rows must share one
// dimensionality.
func Centroid(rows [][]float64) ([]float64, error) {
	if len(rows) == 0 {
		return nil, types.Invalidf("cannot compute centroid of zero vectors")
	}

	dims := len(rows[0])
	centroid := make([]float64, dims)
	for i, row := range rows {
		if len(row) != dims {
			return nil, types.Invalidf("vector %d has %d dimensions, expected %d", i, len(row), dims)
		}
		for d, x := range row {
			centroid[d] += x
		}
	}

	inv := 1.0 / float64(len(rows))
	for d := range centroid {
		centroid[d] *= inv
	}
	return centroid, nil
}

// PairScore returns the cosine similarity of the two rows of m.
func PairScore(m types.Matrix) (float64, error) {
	if len(m) != 2 {
		return 0, types.Invalidf("pair score needs 2 embeddings, got %d", len(m))
	}
	return CosineSimilarity(m[0], m[1])
}

// CentroidScores normalizes every row of m, takes the normalized mean of the
// rows and returns the cosine similarity of each row to it, in row order.
func CentroidScores(m types.Matrix) ([]float64, error) {
	rows, err := NormalizeRows(m)
	if err != nil {
		return nil, err
	}

	centroid, err := Centroid(rows)
	if err != nil {
		return nil, err
	}

	normalized, err := normalize64(centroid)
	if err != nil {
		// Only reachable when the normalized rows cancel out exactly.
		return nil, types.Invalidf("group centroid: %v", err)
	}

	scores := make([]float64, len(rows))
	for i, row := range rows {
		scores[i] = clamp(Dot(row, normalized))
	}
	return scores, nil
}
