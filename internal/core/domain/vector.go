package domain

import "math"

// CosineSimilarity returns the cosine similarity of two equal-length
// vectors, in [-1, 1]. A zero vector yields similarity 0.
// Callers must validate dimensions before calling; mismatched lengths
// are a programming error here, guarded by the stores.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
