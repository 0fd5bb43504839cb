// Package identity compares face embedding vectors produced by the external
// embedding provider. Comparisons are pure and symmetric; any malformed input
// fails closed to a no-match verdict.
package identity

import (
	"math"
	"time"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// DefaultThreshold is the similarity floor for a match verdict. A similarity
// exactly at the threshold counts as a match.
const DefaultThreshold = 0.6

// minQualityConfidence is the lowest capture quality accepted for enrollment
// or comparison templates.
const minQualityConfidence = 0.3

// MatchResult is the outcome of comparing a probe against a registered
// template.
type MatchResult struct {
	Match      bool    `json:"match"`
	Similarity float64 `json:"similarity"`
	Distance   float64 `json:"distance"`
}

// Matcher compares embeddings against a configurable threshold.
type Matcher struct {
	threshold float64
}

// NewMatcher creates a matcher with the default threshold.
func NewMatcher() *Matcher {
	return &Matcher{threshold: DefaultThreshold}
}

// WithThreshold overrides the match threshold.
func (m *Matcher) WithThreshold(threshold float64) *Matcher {
	m.threshold = threshold
	return m
}

// Compare computes the Euclidean distance between a registered template and a
// probe and turns it into a match verdict. Length mismatches, algorithm
// mismatches and non-finite values yield no-match with zero similarity.
func (m *Matcher) Compare(registered, probe domain.FaceEmbedding) MatchResult {
	if len(registered.Vector) == 0 || len(registered.Vector) != len(probe.Vector) {
		return MatchResult{}
	}
	if registered.AlgorithmID != probe.AlgorithmID {
		return MatchResult{}
	}

	var sum float64
	for i := range registered.Vector {
		a, b := registered.Vector[i], probe.Vector[i]
		if !isFinite(a) || !isFinite(b) {
			return MatchResult{}
		}
		d := a - b
		sum += d * d
	}

	distance := math.Sqrt(sum)
	similarity := math.Max(0, 1-distance)

	return MatchResult{
		Match:      similarity >= m.threshold,
		Similarity: similarity,
		Distance:   distance,
	}
}

// Validate reports whether an embedding is usable: correct dimensionality,
// finite values and acceptable capture quality.
func (m *Matcher) Validate(emb domain.FaceEmbedding) bool {
	if len(emb.Vector) != domain.EmbeddingDimension {
		return false
	}
	if emb.QualityConfidence < minQualityConfidence {
		return false
	}
	for _, v := range emb.Vector {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

// Average builds a single template from multiple enrollment captures by
// element-wise mean. The result's confidence is the mean of the inputs'
// confidences. All captures must share dimensionality and algorithm.
func (m *Matcher) Average(embs []domain.FaceEmbedding) (domain.FaceEmbedding, error) {
	if len(embs) == 0 {
		return domain.FaceEmbedding{}, domain.ErrNoEnrollmentCaptures
	}

	dim := len(embs[0].Vector)
	algorithm := embs[0].AlgorithmID
	if dim == 0 {
		return domain.FaceEmbedding{}, domain.ErrEmbeddingDimension
	}

	vector := make([]float64, dim)
	var confidence float64
	for _, e := range embs {
		if len(e.Vector) != dim {
			return domain.FaceEmbedding{}, domain.ErrEmbeddingDimension
		}
		if e.AlgorithmID != algorithm {
			return domain.FaceEmbedding{}, domain.ErrAlgorithmMismatch
		}
		for i, v := range e.Vector {
			if !isFinite(v) {
				return domain.FaceEmbedding{}, domain.ErrEmbeddingInvalid
			}
			vector[i] += v
		}
		confidence += e.QualityConfidence
	}

	n := float64(len(embs))
	for i := range vector {
		vector[i] /= n
	}

	return domain.FaceEmbedding{
		Vector:            vector,
		AlgorithmID:       algorithm,
		CapturedAt:        time.Now().UTC(),
		QualityConfidence: confidence / n,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
