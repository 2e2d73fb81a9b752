package utils

import (
	"fmt"
	"math"
)

// CosineSimilarity calculates the cosine similarity between two vectors.
// Accumulation happens in float64 to keep the result stable for long
// vectors.
func CosineSimilarity(vec1, vec2 []float32) (float32, error) {
	if len(vec1) == 0 || len(vec2) == 0 {
		return 0, fmt.Errorf("vectors cannot be empty")
	}
	if len(vec1) != len(vec2) {
		return 0, fmt.Errorf("vectors must have the same dimension")
	}

	var dot, mag1, mag2 float64
	for i := range vec1 {
		dot += float64(vec1[i]) * float64(vec2[i])
		mag1 += float64(vec1[i]) * float64(vec1[i])
		mag2 += float64(vec2[i]) * float64(vec2[i])
	}

	if mag1 == 0 || mag2 == 0 {
		return 0, nil
	}
	return float32(dot / (math.Sqrt(mag1) * math.Sqrt(mag2))), nil
}
