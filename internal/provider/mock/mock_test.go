package mock

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

func TestProvider_DetectFaces(t *testing.T) {
	p := New()
	ctx := context.Background()

	tests := []struct {
		name      string
		image     []byte
		wantFaces int
		wantErr   bool
	}{
		{
			name:      "valid image",
			image:     make([]byte, 5000),
			wantFaces: 1,
			wantErr:   false,
		},
		{
			name:      "image too small",
			image:     make([]byte, 100),
			wantFaces: 0,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			faces, err := p.DetectFaces(ctx, tt.image)
			if (err != nil) != tt.wantErr {
				t.Errorf("DetectFaces() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && !errors.Is(err, domain.ErrInvalidImage) {
				t.Errorf("DetectFaces() error = %v, want ErrInvalidImage", err)
			}
			if len(faces) != tt.wantFaces {
				t.Errorf("DetectFaces() got %d faces, want %d", len(faces), tt.wantFaces)
			}
		})
	}
}

func TestProvider_DetectFaces_NaturalGeometry(t *testing.T) {
	p := New()

	faces, err := p.DetectFaces(context.Background(), make([]byte, 5000))
	if err != nil {
		t.Fatalf("DetectFaces() error = %v", err)
	}
	if len(faces) != 1 {
		t.Fatalf("DetectFaces() got %d faces, want 1", len(faces))
	}

	face := faces[0]
	if face.EyesOpen == nil || !*face.EyesOpen {
		t.Error("DetectFaces() expected eyes open")
	}

	lm := face.Landmarks
	eyeWidth := lm.LeftEyeInner.X - lm.LeftEyeOuter.X
	aperture := lm.LeftEyeBottom.Y - lm.LeftEyeTop.Y
	if eyeWidth <= 0 || aperture <= 0 {
		t.Fatalf("DetectFaces() degenerate eye geometry: width=%f aperture=%f", eyeWidth, aperture)
	}

	// Aperture-to-width ratio should read as an open eye.
	ratio := aperture / eyeWidth
	if ratio < 0.08 || ratio > 0.5 {
		t.Errorf("DetectFaces() aperture ratio = %f, want open-eye range", ratio)
	}

	if lm.NoseTip.Y <= lm.NoseBridge.Y {
		t.Error("DetectFaces() nose tip should sit below the bridge")
	}
	if lm.Chin.Y <= lm.MouthLeft.Y {
		t.Error("DetectFaces() chin should sit below the mouth")
	}
}

func TestProvider_ExtractEmbedding(t *testing.T) {
	p := New()
	ctx := context.Background()

	image := make([]byte, 5000)
	for i := range image {
		image[i] = byte(i % 256)
	}

	embedding, err := p.ExtractEmbedding(ctx, image)
	if err != nil {
		t.Fatalf("ExtractEmbedding() error = %v", err)
	}

	if embedding.AlgorithmID != AlgorithmID {
		t.Errorf("ExtractEmbedding() algorithm = %s, want %s", embedding.AlgorithmID, AlgorithmID)
	}

	if len(embedding.Vector) != domain.EmbeddingDimension {
		t.Errorf("ExtractEmbedding() vector length = %d, want %d", len(embedding.Vector), domain.EmbeddingDimension)
	}

	var norm float64
	for _, v := range embedding.Vector {
		norm += v * v
	}
	if math.Abs(norm-1.0) > 0.01 {
		t.Errorf("ExtractEmbedding() vector not normalized, norm = %f", norm)
	}
}

func TestProvider_ExtractEmbedding_Deterministic(t *testing.T) {
	p := New()
	ctx := context.Background()

	image := []byte("test image content that is long enough to be valid")
	image = append(image, make([]byte, 1000)...)

	emb1, _ := p.ExtractEmbedding(ctx, image)
	emb2, _ := p.ExtractEmbedding(ctx, image)

	for i := range emb1.Vector {
		if emb1.Vector[i] != emb2.Vector[i] {
			t.Error("ExtractEmbedding() should be deterministic for same input")
			break
		}
	}
}

func TestProvider_ExtractEmbedding_DistinctImages(t *testing.T) {
	p := New()
	ctx := context.Background()

	image1 := make([]byte, 5000)
	image2 := make([]byte, 5000)
	for i := range image1 {
		image1[i] = byte(i % 256)
		image2[i] = byte((i * 7) % 256)
	}

	emb1, _ := p.ExtractEmbedding(ctx, image1)
	emb2, _ := p.ExtractEmbedding(ctx, image2)

	same := true
	for i := range emb1.Vector {
		if emb1.Vector[i] != emb2.Vector[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("ExtractEmbedding() different images should produce different vectors")
	}
}

func TestProvider_ExtractEmbedding_InvalidImage(t *testing.T) {
	p := New()

	_, err := p.ExtractEmbedding(context.Background(), make([]byte, 10))
	if !errors.Is(err, domain.ErrInvalidImage) {
		t.Errorf("ExtractEmbedding() error = %v, want ErrInvalidImage", err)
	}
}
