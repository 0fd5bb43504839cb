// Package face wires the configured recognition backends into the
// detection and embedding interfaces the services consume.
package face

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/presenca/internal/audit"
	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider/rekognition"
)

// ProviderType defines supported face recognition provider types
type ProviderType string

const (
	// ProviderTypeDeepFace is the DeepFace provider (local, for dev/test)
	ProviderTypeDeepFace ProviderType = "deepface"
	// ProviderTypeRekognition is the AWS Rekognition provider (cloud, for prod)
	ProviderTypeRekognition ProviderType = "rekognition"
	// ProviderTypeMock is the deterministic in-process provider for tests
	ProviderTypeMock ProviderType = "mock"
)

// Providers bundles the detection and embedding backends. They are split
// because Rekognition detects faces but never exposes raw embeddings, so a
// Rekognition deployment still extracts embeddings through DeepFace.
type Providers struct {
	Detector provider.FaceDetector
	Embedder provider.EmbeddingExtractor
}

// NewProviders creates the provider pair based on configuration
//
// Environment variables:
//   - FACE_PROVIDER: "deepface", "rekognition" or "mock" (default: "deepface")
//   - DEEPFACE_URL: DeepFace API URL (default: "http://localhost:5005")
//   - AWS_REGION: AWS region for Rekognition (default: "us-east-1")
//   - AWS_ACCESS_KEY_ID: AWS credentials (via AWS SDK credential chain)
//   - AWS_SECRET_ACCESS_KEY: AWS credentials (via AWS SDK credential chain)
func NewProviders(ctx context.Context, cfg *config.Config, auditLogger audit.Logger) (*Providers, error) {
	providerType := ProviderType(cfg.FaceProvider)

	switch providerType {
	case ProviderTypeRekognition:
		detector, err := rekognition.NewProvider(ctx,
			rekognition.Config{Region: cfg.AWSRegion},
			rekognition.WithAuditLogger(auditLogger),
		)
		if err != nil {
			return nil, fmt.Errorf("create rekognition provider: %w", err)
		}
		return &Providers{
			Detector: detector,
			Embedder: createDeepFaceProvider(cfg),
		}, nil

	case ProviderTypeDeepFace, "":
		// Default to DeepFace for dev/test environments
		df := createDeepFaceProvider(cfg)
		return &Providers{Detector: df, Embedder: df}, nil

	case ProviderTypeMock:
		m := mock.New()
		return &Providers{Detector: m, Embedder: m}, nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s, %s)",
			cfg.FaceProvider, ProviderTypeDeepFace, ProviderTypeRekognition, ProviderTypeMock)
	}
}

// createDeepFaceProvider creates a DeepFace provider instance
func createDeepFaceProvider(cfg *config.Config) *deepface.Provider {
	deepfaceConfig := deepface.Config{
		BaseURL: cfg.DeepFaceURL,
	}

	// Use defaults for other fields (timeout, model, detector, retry)
	if deepfaceConfig.BaseURL == "" {
		deepfaceConfig.BaseURL = deepface.DefaultConfig().BaseURL
	}

	return deepface.NewProvider(deepfaceConfig)
}
