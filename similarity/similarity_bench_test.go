package similarity

import (
	"math/rand"
	"testing"

	"github.com/botirk38/embedsim/types"
)

func randomMatrix(rows, dims int) types.Matrix {
	r := rand.New(rand.NewSource(1))
	m := make(types.Matrix, rows)
	for i := range m {
		m[i] = make([]float32, dims)
		for j := range m[i] {
			m[i][j] = r.Float32()*2 - 1
		}
	}
	return m
}

func BenchmarkPairScore(b *testing.B) {
	m := randomMatrix(2, 1536)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := PairScore(m); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCentroidScores(b *testing.B) {
	m := randomMatrix(64, 1536)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := CentroidScores(m); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCosineSimilarity(b *testing.B) {
	m := randomMatrix(2, 1536)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := CosineSimilarity(m[0], m[1]); err != nil {
			b.Fatal(err)
		}
	}
}
