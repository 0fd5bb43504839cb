package face

import (
	"context"
	"testing"

	"github.com/saturnino-fabrica-de-software/presenca/internal/audit"
	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider/rekognition"
)

func TestNewProviders_DeepFace(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		faceProvider string
		deepFaceURL  string
	}{
		{
			name:         "explicit deepface provider",
			faceProvider: "deepface",
			deepFaceURL:  "http://localhost:5005",
		},
		{
			name:         "empty provider defaults to deepface",
			faceProvider: "",
			deepFaceURL:  "http://localhost:5005",
		},
		{
			name:         "custom deepface URL",
			faceProvider: "deepface",
			deepFaceURL:  "http://custom-host:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				FaceProvider: tt.faceProvider,
				DeepFaceURL:  tt.deepFaceURL,
			}

			providers, err := NewProviders(ctx, cfg, audit.NewNoOpLogger())
			if err != nil {
				t.Fatalf("NewProviders() error = %v", err)
			}

			// DeepFace serves both detection and embeddings
			if _, ok := providers.Detector.(*deepface.Provider); !ok {
				t.Errorf("NewProviders() detector type %T, want *deepface.Provider", providers.Detector)
			}
			if _, ok := providers.Embedder.(*deepface.Provider); !ok {
				t.Errorf("NewProviders() embedder type %T, want *deepface.Provider", providers.Embedder)
			}
		})
	}
}

func TestNewProviders_Mock(t *testing.T) {
	cfg := &config.Config{FaceProvider: "mock"}

	providers, err := NewProviders(context.Background(), cfg, audit.NewNoOpLogger())
	if err != nil {
		t.Fatalf("NewProviders() error = %v", err)
	}

	if _, ok := providers.Detector.(*mock.Provider); !ok {
		t.Errorf("NewProviders() detector type %T, want *mock.Provider", providers.Detector)
	}
	if _, ok := providers.Embedder.(*mock.Provider); !ok {
		t.Errorf("NewProviders() embedder type %T, want *mock.Provider", providers.Embedder)
	}
}

func TestNewProviders_Rekognition(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Rekognition test in short mode (requires AWS credentials)")
	}

	cfg := &config.Config{
		FaceProvider: "rekognition",
		AWSRegion:    "us-east-1",
	}

	providers, err := NewProviders(context.Background(), cfg, audit.NewNoOpLogger())
	if err != nil {
		// If error is due to missing AWS credentials, skip test
		t.Skipf("Skipping Rekognition test (likely missing AWS credentials): %v", err)
	}

	if _, ok := providers.Detector.(*rekognition.Provider); !ok {
		t.Errorf("NewProviders() detector type %T, want *rekognition.Provider", providers.Detector)
	}

	// Embeddings still come from DeepFace in a Rekognition deployment
	if _, ok := providers.Embedder.(*deepface.Provider); !ok {
		t.Errorf("NewProviders() embedder type %T, want *deepface.Provider", providers.Embedder)
	}
}

func TestNewProviders_UnknownProvider(t *testing.T) {
	cfg := &config.Config{FaceProvider: "unknown-provider"}

	_, err := NewProviders(context.Background(), cfg, audit.NewNoOpLogger())
	if err == nil {
		t.Fatal("NewProviders() expected error for unknown provider, got nil")
	}

	expectedErrMsg := "unknown provider type: unknown-provider"
	if err.Error()[:len(expectedErrMsg)] != expectedErrMsg {
		t.Errorf("NewProviders() error = %v, want error containing %q", err, expectedErrMsg)
	}
}

func TestProviderType_Constants(t *testing.T) {
	// Ensure constants are defined correctly
	if ProviderTypeDeepFace != "deepface" {
		t.Errorf("ProviderTypeDeepFace = %q, want %q", ProviderTypeDeepFace, "deepface")
	}

	if ProviderTypeRekognition != "rekognition" {
		t.Errorf("ProviderTypeRekognition = %q, want %q", ProviderTypeRekognition, "rekognition")
	}

	if ProviderTypeMock != "mock" {
		t.Errorf("ProviderTypeMock = %q, want %q", ProviderTypeMock, "mock")
	}
}
