// Package vector provides the similarity arithmetic used by the query
// engine. Scores accumulate in float64 even though stored vectors are
// float32, which keeps ranking stable for near-tie candidates.
package vector

import (
	"fmt"
	"math"
)

// Cosine computes the cosine similarity between two vectors. It returns an
// error when the vectors have different lengths or are empty. A
// zero-magnitude operand yields a similarity of 0 rather than an error, so
// degenerate embeddings rank last instead of failing the whole query.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine: dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("cosine: empty vectors")
	}

	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(na2) * math.Sqrt(nb2))
	if math.IsNaN(sim) {
		return 0, nil
	}
	return sim, nil
}

// Magnitude returns the Euclidean norm of the vector.
func Magnitude(v []float32) float64 {
	var sum float64
	for i := range v {
		f := float64(v[i])
		sum += f * f
	}
	return math.Sqrt(sum)
}
