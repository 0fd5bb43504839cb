package rekognition

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/presenca/internal/audit"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/liveness"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
)

// Provider implements provider.FaceDetector using AWS Rekognition.
// Rekognition never exposes raw embeddings, so identity extraction has to
// come from a different provider.
type Provider struct {
	client      *Client
	auditLogger audit.Logger
}

// ProviderOption defines optional configuration for Provider
type ProviderOption func(*Provider)

// WithAuditLogger sets the audit logger for the provider
func WithAuditLogger(logger audit.Logger) ProviderOption {
	return func(p *Provider) {
		p.auditLogger = logger
	}
}

// Ensure Provider implements provider.FaceDetector interface at compile time
var _ provider.FaceDetector = (*Provider)(nil)

// NewProvider creates a new Rekognition provider
func NewProvider(ctx context.Context, cfg Config, opts ...ProviderOption) (*Provider, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}

	p := &Provider{client: client}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// logAudit logs an audit event if an audit logger is configured
// Audit failure does not affect the operation (fire-and-forget)
func (p *Provider) logAudit(ctx context.Context, eventType audit.EventType, success bool, err error, metadata map[string]string) {
	if p.auditLogger == nil {
		return
	}

	event := audit.Event{
		EventType: eventType,
		Provider:  "rekognition",
		Success:   success,
		Metadata:  metadata,
	}

	if err != nil {
		event.Error = err.Error()
	}

	_ = p.auditLogger.Log(ctx, event)
}

// validateImage checks if image data is valid for Rekognition processing
func validateImage(image []byte) error {
	if len(image) == 0 {
		return ErrInvalidImage
	}
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// DetectFaces detects faces in an image using AWS Rekognition DetectFaces API
// Returns an empty slice if no faces are detected (not an error)
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	if err := validateImage(image); err != nil {
		p.logAudit(ctx, audit.EventFaceDetected, false, err, map[string]string{
			"image_size": strconv.Itoa(len(image)),
		})
		return nil, err
	}

	input := &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: image,
		},
		Attributes: []types.Attribute{types.AttributeAll},
	}

	output, err := p.client.rekognition.DetectFaces(ctx, input)
	if err != nil {
		err = ParseNoFaceError(err)
		p.logAudit(ctx, audit.EventFaceDetected, false, err, map[string]string{
			"image_size": strconv.Itoa(len(image)),
		})
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	faces := make([]provider.DetectedFace, 0, len(output.FaceDetails))
	for _, detail := range output.FaceDetails {
		face := provider.DetectedFace{
			Confidence:   float64(derefFloat32(detail.Confidence)) / 100.0,
			QualityScore: calculateQualityScore(detail.Quality),
			Landmarks:    mapLandmarks(detail),
		}

		if detail.BoundingBox != nil {
			face.BoundingBox = provider.BoundingBox{
				X:      float64(derefFloat32(detail.BoundingBox.Left)),
				Y:      float64(derefFloat32(detail.BoundingBox.Top)),
				Width:  float64(derefFloat32(detail.BoundingBox.Width)),
				Height: float64(derefFloat32(detail.BoundingBox.Height)),
			}
		}
		if detail.EyesOpen != nil {
			eyesOpen := detail.EyesOpen.Value
			face.EyesOpen = &eyesOpen
		}
		if detail.Pose != nil {
			face.Pose = &provider.Pose{
				Pitch: float64(derefFloat32(detail.Pose.Pitch)),
				Roll:  float64(derefFloat32(detail.Pose.Roll)),
				Yaw:   float64(derefFloat32(detail.Pose.Yaw)),
			}
		}

		faces = append(faces, face)
	}

	p.logAudit(ctx, audit.EventFaceDetected, true, nil, map[string]string{
		"faces_count": strconv.Itoa(len(faces)),
		"image_size":  strconv.Itoa(len(image)),
	})

	return faces, nil
}

// mapLandmarks converts Rekognition landmark points to the named positions
// the liveness analyzer consumes, in relative coordinates. Forehead and nose
// bridge are not reported directly and are derived from nearby points.
func mapLandmarks(detail types.FaceDetail) liveness.Landmarks {
	points := make(map[types.LandmarkType]liveness.Point, len(detail.Landmarks))
	for _, lm := range detail.Landmarks {
		points[lm.Type] = liveness.Point{
			X: float64(derefFloat32(lm.X)),
			Y: float64(derefFloat32(lm.Y)),
		}
	}

	mid := func(a, b liveness.Point) liveness.Point {
		return liveness.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	}

	out := liveness.Landmarks{
		NoseTip: points[types.LandmarkTypeNose],
		Chin:    points[types.LandmarkTypeChinBottom],

		LeftEyeOuter:  points[types.LandmarkTypeLeftEyeLeft],
		LeftEyeInner:  points[types.LandmarkTypeLeftEyeRight],
		LeftEyeTop:    points[types.LandmarkTypeLeftEyeUp],
		LeftEyeBottom: points[types.LandmarkTypeLeftEyeDown],

		RightEyeOuter:  points[types.LandmarkTypeRightEyeRight],
		RightEyeInner:  points[types.LandmarkTypeRightEyeLeft],
		RightEyeTop:    points[types.LandmarkTypeRightEyeUp],
		RightEyeBottom: points[types.LandmarkTypeRightEyeDown],

		MouthLeft:  points[types.LandmarkTypeMouthLeft],
		MouthRight: points[types.LandmarkTypeMouthRight],
	}
	out.NoseBridge = mid(out.LeftEyeInner, out.RightEyeInner)
	out.Forehead = mid(points[types.LandmarkTypeLeftEyeBrowUp], points[types.LandmarkTypeRightEyeBrowUp])

	// Emotion confidences double as the expression-intensity vector.
	for _, emotion := range detail.Emotions {
		out.Expressions = append(out.Expressions, float64(derefFloat32(emotion.Confidence))/100.0)
	}

	return out
}

// calculateQualityScore computes an overall quality score from Rekognition quality metrics
// Returns a score between 0.0 (poor quality) and 1.0 (excellent quality)
func calculateQualityScore(quality *types.ImageQuality) float64 {
	if quality == nil {
		return 0.0
	}

	// AWS Rekognition provides brightness and sharpness scores (0-100)
	// We normalize and average them to get an overall quality score
	brightness := 0.0
	sharpness := 0.0

	if quality.Brightness != nil {
		brightness = float64(*quality.Brightness) / 100.0
	}

	if quality.Sharpness != nil {
		sharpness = float64(*quality.Sharpness) / 100.0
	}

	// Weight sharpness more heavily as it's critical for face recognition
	return brightness*0.3 + sharpness*0.7
}

// ExtractEmbedding always fails: Rekognition keeps embeddings internal to
// its collections. Deploy the deepface provider for identity extraction.
func (p *Provider) ExtractEmbedding(ctx context.Context, _ []byte) (domain.FaceEmbedding, error) {
	p.logAudit(ctx, audit.EventEmbeddingExtracted, false, ErrEmbeddingsNotSupported, nil)
	return domain.FaceEmbedding{}, ErrEmbeddingsNotSupported
}

func derefFloat32(f *float32) float32 {
	if f == nil {
		return 0
	}
	return *f
}
