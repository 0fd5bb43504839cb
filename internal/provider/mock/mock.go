// Package mock implements a deterministic FaceProvider for tests and local
// development.
package mock

import (
	"context"
	"crypto/sha256"
	"math"
	"time"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/liveness"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

// AlgorithmID identifies the mock embedding space.
const AlgorithmID = "mock-128"

// minImageSize rejects inputs too small to be a real capture.
const minImageSize = 1000

// Provider implementa provider.FaceProvider para testes e desenvolvimento
type Provider struct{}

// New cria uma nova instância do MockProvider
func New() *Provider {
	return &Provider{}
}

var _ provider.FaceProvider = (*Provider)(nil)

// DetectFaces simula detecção de uma única face centrada com geometria
// natural
func (p *Provider) DetectFaces(_ context.Context, image []byte) ([]provider.DetectedFace, error) {
	if len(image) < minImageSize {
		return nil, domain.ErrInvalidImage
	}

	eyesOpen := true
	return []provider.DetectedFace{
		{
			BoundingBox: provider.BoundingBox{
				X:      0.1,
				Y:      0.1,
				Width:  0.8,
				Height: 0.8,
			},
			Confidence:   0.99,
			QualityScore: 0.95,
			Landmarks:    naturalLandmarks(),
			EyesOpen:     &eyesOpen,
		},
	}, nil
}

// naturalLandmarks returns a centered face with realistic geometry ratios,
// in relative coordinates.
func naturalLandmarks() liveness.Landmarks {
	return liveness.Landmarks{
		NoseTip:    liveness.Point{X: 0.50, Y: 0.55},
		NoseBridge: liveness.Point{X: 0.50, Y: 0.42},
		Chin:       liveness.Point{X: 0.50, Y: 0.85},
		Forehead:   liveness.Point{X: 0.50, Y: 0.15},

		LeftEyeOuter:  liveness.Point{X: 0.33, Y: 0.40},
		LeftEyeInner:  liveness.Point{X: 0.43, Y: 0.40},
		LeftEyeTop:    liveness.Point{X: 0.38, Y: 0.385},
		LeftEyeBottom: liveness.Point{X: 0.38, Y: 0.42},

		RightEyeOuter:  liveness.Point{X: 0.67, Y: 0.40},
		RightEyeInner:  liveness.Point{X: 0.57, Y: 0.40},
		RightEyeTop:    liveness.Point{X: 0.62, Y: 0.385},
		RightEyeBottom: liveness.Point{X: 0.62, Y: 0.42},

		MouthLeft:  liveness.Point{X: 0.42, Y: 0.72},
		MouthRight: liveness.Point{X: 0.58, Y: 0.72},

		Expressions: []float64{0.5, 0.5},
	}
}

// ExtractEmbedding gera embedding determinístico baseado no hash da imagem
func (p *Provider) ExtractEmbedding(_ context.Context, image []byte) (domain.FaceEmbedding, error) {
	if len(image) < minImageSize {
		return domain.FaceEmbedding{}, domain.ErrInvalidImage
	}

	return domain.FaceEmbedding{
		Vector:            generateEmbedding(image),
		AlgorithmID:       AlgorithmID,
		CapturedAt:        time.Now().UTC(),
		QualityConfidence: 0.95,
	}, nil
}

// generateEmbedding gera embedding determinístico baseado no hash da imagem
func generateEmbedding(image []byte) []float64 {
	hash := sha256.Sum256(image)
	embedding := make([]float64, domain.EmbeddingDimension)
	hashLen := len(hash)

	for i := 0; i < domain.EmbeddingDimension; i++ {
		idx := i % hashLen
		//nolint:gosec // idx is always < hashLen due to modulo operation
		embedding[i] = (float64(hash[idx])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	for i := range embedding {
		embedding[i] /= norm
	}

	return embedding
}
