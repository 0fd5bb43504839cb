package provider

import (
	"context"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/liveness"
)

// FaceDetector detects faces in an image and reports their landmark
// positions. Landmarks come back in relative coordinates (0-1 of the image
// dimensions); use ScaleLandmarks to convert to frame pixels.
type FaceDetector interface {
	DetectFaces(ctx context.Context, image []byte) ([]DetectedFace, error)
}

// EmbeddingExtractor produces the identity embedding for the single face in
// the image.
type EmbeddingExtractor interface {
	ExtractEmbedding(ctx context.Context, image []byte) (domain.FaceEmbedding, error)
}

// FaceProvider define a interface para provedores de reconhecimento facial
type FaceProvider interface {
	FaceDetector
	EmbeddingExtractor
}

// DetectedFace represents a detected face in the image
type DetectedFace struct {
	BoundingBox  BoundingBox        `json:"bounding_box"`
	Confidence   float64            `json:"confidence"`
	QualityScore float64            `json:"quality_score"`
	Landmarks    liveness.Landmarks `json:"landmarks"`
	EyesOpen     *bool              `json:"eyes_open,omitempty"`
	Pose         *Pose              `json:"pose,omitempty"`
}

// Pose represents face orientation angles
type Pose struct {
	Pitch float64 `json:"pitch"` // up/down rotation
	Roll  float64 `json:"roll"`  // tilted rotation
	Yaw   float64 `json:"yaw"`   // left/right rotation
}

// BoundingBox represents the face area in the image, in relative coordinates
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ScaleLandmarks converts relative landmark coordinates to pixel positions
// in a frame of the given dimensions.
func ScaleLandmarks(lm liveness.Landmarks, width, height int) liveness.Landmarks {
	w, h := float64(width), float64(height)
	scale := func(p liveness.Point) liveness.Point {
		return liveness.Point{X: p.X * w, Y: p.Y * h}
	}

	return liveness.Landmarks{
		NoseTip:    scale(lm.NoseTip),
		NoseBridge: scale(lm.NoseBridge),
		Chin:       scale(lm.Chin),
		Forehead:   scale(lm.Forehead),

		LeftEyeOuter:  scale(lm.LeftEyeOuter),
		LeftEyeInner:  scale(lm.LeftEyeInner),
		LeftEyeTop:    scale(lm.LeftEyeTop),
		LeftEyeBottom: scale(lm.LeftEyeBottom),

		RightEyeOuter:  scale(lm.RightEyeOuter),
		RightEyeInner:  scale(lm.RightEyeInner),
		RightEyeTop:    scale(lm.RightEyeTop),
		RightEyeBottom: scale(lm.RightEyeBottom),

		MouthLeft:  scale(lm.MouthLeft),
		MouthRight: scale(lm.MouthRight),

		Expressions: lm.Expressions,
	}
}
