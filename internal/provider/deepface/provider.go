package deepface

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/liveness"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

const (
	// minFaceArea is the minimum face area (in pixels²) for reliable detection
	minFaceArea = 2500 // 50x50 pixels
	// maxFaceArea is used for confidence scaling
	maxFaceArea = 250000 // 500x500 pixels
)

// Provider implements provider.FaceProvider using DeepFace API
type Provider struct {
	client *Client
}

// NewProvider creates a new DeepFace provider
func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

// Ensure Provider implements provider.FaceProvider
var _ provider.FaceProvider = (*Provider)(nil)

// DetectFaces detects faces in the image and reports landmark positions in
// relative coordinates
func (p *Provider) DetectFaces(ctx context.Context, img []byte) ([]provider.DetectedFace, error) {
	width, height, err := imageDimensions(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImageFormat, err)
	}

	imageBase64 := base64.StdEncoding.EncodeToString(img)
	resp, err := p.client.Analyze(ctx, imageBase64)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	faces := make([]provider.DetectedFace, 0, len(resp.Results))
	for _, result := range resp.Results {
		// Calculate confidence based on face area (larger faces = more reliable detection)
		faceArea := float64(result.Region.W * result.Region.H)

		faces = append(faces, provider.DetectedFace{
			BoundingBox: provider.BoundingBox{
				X:      float64(result.Region.X) / float64(width),
				Y:      float64(result.Region.Y) / float64(height),
				Width:  float64(result.Region.W) / float64(width),
				Height: float64(result.Region.H) / float64(height),
			},
			Confidence:   calculateConfidence(faceArea),
			QualityScore: calculateQuality(faceArea),
			Landmarks:    synthesizeLandmarks(result, width, height),
		})
	}

	return faces, nil
}

// synthesizeLandmarks builds the named landmark set from the face region.
// DeepFace only reports the box and, with some detectors, the eye centers;
// the remaining points are derived from canonical face proportions.
func synthesizeLandmarks(result AnalyzeResult, width, height int) liveness.Landmarks {
	w, h := float64(width), float64(height)
	region := result.Region

	boxCenterX := (float64(region.X) + float64(region.W)/2) / w
	top := float64(region.Y) / h
	bottom := (float64(region.Y) + float64(region.H)) / h

	var leftEye, rightEye liveness.Point
	if len(region.LeftEye) == 2 && len(region.RightEye) == 2 {
		a := liveness.Point{X: region.LeftEye[0] / w, Y: region.LeftEye[1] / h}
		b := liveness.Point{X: region.RightEye[0] / w, Y: region.RightEye[1] / h}
		// DeepFace labels eyes from the subject's view; order by image position.
		if a.X <= b.X {
			leftEye, rightEye = a, b
		} else {
			leftEye, rightEye = b, a
		}
	} else {
		// Eyes sit at roughly 30% and 70% of the box width, 40% of its height.
		eyeY := top + (bottom-top)*0.4
		leftEye = liveness.Point{X: (float64(region.X) + float64(region.W)*0.3) / w, Y: eyeY}
		rightEye = liveness.Point{X: (float64(region.X) + float64(region.W)*0.7) / w, Y: eyeY}
	}

	eyeDist := math.Hypot(rightEye.X-leftEye.X, rightEye.Y-leftEye.Y)
	bridge := liveness.Point{X: (leftEye.X + rightEye.X) / 2, Y: (leftEye.Y + rightEye.Y) / 2}
	mouthY := bridge.Y + eyeDist*0.7

	eyePoints := func(center liveness.Point, inwardX float64) (outer, inner, eyeTop, eyeBottom liveness.Point) {
		outer = liveness.Point{X: center.X - inwardX*eyeDist*0.15, Y: center.Y}
		inner = liveness.Point{X: center.X + inwardX*eyeDist*0.15, Y: center.Y}
		eyeTop = liveness.Point{X: center.X, Y: center.Y - eyeDist*0.055}
		eyeBottom = liveness.Point{X: center.X, Y: center.Y + eyeDist*0.055}
		return outer, inner, eyeTop, eyeBottom
	}

	lm := liveness.Landmarks{
		NoseBridge:  bridge,
		NoseTip:     liveness.Point{X: bridge.X, Y: bridge.Y + eyeDist*0.4},
		Chin:        liveness.Point{X: boxCenterX, Y: bottom},
		Forehead:    liveness.Point{X: boxCenterX, Y: top},
		MouthLeft:   liveness.Point{X: bridge.X - eyeDist*0.25, Y: mouthY},
		MouthRight:  liveness.Point{X: bridge.X + eyeDist*0.25, Y: mouthY},
		Expressions: expressionVector(result.Emotion),
	}
	lm.LeftEyeOuter, lm.LeftEyeInner, lm.LeftEyeTop, lm.LeftEyeBottom = eyePoints(leftEye, 1)
	lm.RightEyeOuter, lm.RightEyeInner, lm.RightEyeTop, lm.RightEyeBottom = eyePoints(rightEye, -1)

	return lm
}

// expressionVector flattens the emotion confidences into a stable-order
// vector.
func expressionVector(emotions map[string]float64) []float64 {
	if len(emotions) == 0 {
		return nil
	}

	keys := make([]string, 0, len(emotions))
	for k := range emotions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]float64, 0, len(keys))
	for _, k := range keys {
		out = append(out, emotions[k]/100.0)
	}
	return out
}

// ExtractEmbedding extracts the identity embedding for the single face in
// the image
func (p *Provider) ExtractEmbedding(ctx context.Context, img []byte) (domain.FaceEmbedding, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(img)

	resp, err := p.client.Represent(ctx, imageBase64)
	if err != nil {
		return domain.FaceEmbedding{}, fmt.Errorf("extract embedding: %w", err)
	}

	if len(resp.Results) == 0 {
		return domain.FaceEmbedding{}, ErrNoFaceInResponse
	}

	// Use first face found
	result := resp.Results[0]
	if len(result.Embedding) != domain.EmbeddingDimension {
		return domain.FaceEmbedding{}, fmt.Errorf("%w: model %s returned %d dimensions, want %d",
			ErrInvalidResponse, p.client.config.Model, len(result.Embedding), domain.EmbeddingDimension)
	}

	faceArea := float64(result.FacialArea.W * result.FacialArea.H)

	return domain.FaceEmbedding{
		Vector:            result.Embedding,
		AlgorithmID:       p.AlgorithmID(),
		CapturedAt:        time.Now().UTC(),
		QualityConfidence: calculateQuality(faceArea),
	}, nil
}

// AlgorithmID identifies the embedding space this provider produces.
// Embeddings from different algorithm IDs are never comparable.
func (p *Provider) AlgorithmID() string {
	return fmt.Sprintf("%s-%d", strings.ToLower(p.client.config.Model), domain.EmbeddingDimension)
}

// calculateConfidence estimates confidence based on face area
// DeepFace doesn't return confidence, so we estimate based on face size
// Larger faces are more likely to be accurately detected
func calculateConfidence(faceArea float64) float64 {
	if faceArea < minFaceArea {
		return 0.5 // Low confidence for very small faces
	}
	// Scale from 0.7 to 0.99 based on face area
	normalized := math.Min(1.0, (faceArea-minFaceArea)/(maxFaceArea-minFaceArea))
	return 0.7 + (normalized * 0.29)
}

// calculateQuality estimates quality score based on face area
// DeepFace doesn't return quality, so we estimate based on face size
// Larger faces typically have better quality for embedding extraction
func calculateQuality(faceArea float64) float64 {
	if faceArea < minFaceArea {
		return 0.4 // Low quality for very small faces
	}
	// Scale from 0.6 to 0.95 based on face area
	normalized := math.Min(1.0, (faceArea-minFaceArea)/(maxFaceArea-minFaceArea))
	return 0.6 + (normalized * 0.35)
}

func imageDimensions(img []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return 0, 0, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("degenerate image dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}
