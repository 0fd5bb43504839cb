package domain

import "time"

// EmbeddingDimension is the vector length produced by the default embedding
// algorithm. Vectors of any other length fail validation for that algorithm.
const EmbeddingDimension = 128

// FaceEmbedding is a fixed-length identity vector produced by the external
// embedding provider. Two lifecycles exist: a registered template created at
// enrollment and owned by the actor profile, and a probe created per attempt
// and discarded after comparison.
type FaceEmbedding struct {
	Vector            []float64 `json:"-"`
	AlgorithmID       string    `json:"algorithm_id"`
	CapturedAt        time.Time `json:"captured_at"`
	QualityConfidence float64   `json:"quality_confidence"`
}

// Dimension returns the vector length.
func (e FaceEmbedding) Dimension() int {
	return len(e.Vector)
}
