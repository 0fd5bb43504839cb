package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/audit"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/fraud"
	"github.com/saturnino-fabrica-de-software/presenca/internal/geofence"
	"github.com/saturnino-fabrica-de-software/presenca/internal/identity"
	"github.com/saturnino-fabrica-de-software/presenca/internal/liveness"
	"github.com/saturnino-fabrica-de-software/presenca/internal/location"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

// GeofenceStore lists the fences attempts are tested against.
type GeofenceStore interface {
	ListActive(ctx context.Context) ([]domain.Geofence, error)
}

// MarkAttendanceInput is one attendance-marking request.
type MarkAttendanceInput struct {
	ActorID           string
	DeviceFingerprint string
	IPAddress         string
	UserAgent         string
	DeviceTimezone    string
	GPS               domain.GPSFix
	Image             []byte
	// Depth is optional depth-sensor data for the captured frame.
	Depth *liveness.DepthMap
	// Session carries the multi-frame motion window for this capture
	// session. Nil means a single-frame capture.
	Session *liveness.Session
}

// AttendanceResult is the caller-facing outcome of one attempt.
type AttendanceResult struct {
	AttemptID   uuid.UUID                   `json:"attempt_id"`
	Decision    domain.Decision             `json:"decision"`
	Succeeded   bool                        `json:"succeeded"`
	InsideFence bool                        `json:"inside_fence"`
	FenceName   string                      `json:"fence_name,omitempty"`
	Liveness    *domain.LivenessResult      `json:"liveness,omitempty"`
	Identity    *identity.MatchResult       `json:"identity,omitempty"`
	Location    *domain.LocationTrustResult `json:"location,omitempty"`
	FraudScore  float64                     `json:"fraud_score"`
	Indicators  []string                    `json:"indicators,omitempty"`
}

// AttendanceService runs the full trust pipeline for one attempt: geofence
// containment, liveness, identity match, location trust and the fraud
// engine's verdict.
type AttendanceService struct {
	detector    provider.FaceDetector
	embedder    provider.EmbeddingExtractor
	matcher     *identity.Matcher
	templates   TemplateStore
	geofences   GeofenceStore
	liveness    *liveness.Analyzer
	location    *location.Analyzer
	fraud       *fraud.Engine
	auditLogger audit.Logger
	logger      *slog.Logger
	now         func() time.Time
}

func NewAttendanceService(
	detector provider.FaceDetector,
	embedder provider.EmbeddingExtractor,
	matcher *identity.Matcher,
	templates TemplateStore,
	geofences GeofenceStore,
	livenessAnalyzer *liveness.Analyzer,
	locationAnalyzer *location.Analyzer,
	fraudEngine *fraud.Engine,
	auditLogger audit.Logger,
	logger *slog.Logger,
) *AttendanceService {
	if auditLogger == nil {
		auditLogger = audit.NewNoOpLogger()
	}
	return &AttendanceService{
		detector:    detector,
		embedder:    embedder,
		matcher:     matcher,
		templates:   templates,
		geofences:   geofences,
		liveness:    livenessAnalyzer,
		location:    locationAnalyzer,
		fraud:       fraudEngine,
		auditLogger: auditLogger,
		logger:      logger,
		now:         time.Now,
	}
}

// MarkAttendance evaluates one attempt end to end. Signal failures (liveness,
// location, identity, fence) are verdicts, not errors; only missing inputs
// and infrastructure failures return an error.
func (s *AttendanceService) MarkAttendance(ctx context.Context, in MarkAttendanceInput) (*AttendanceResult, error) {
	fences, err := s.geofences.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active geofences: %w", err)
	}

	point := domain.LatLng{Lat: in.GPS.Latitude, Lng: in.GPS.Longitude}
	containment := geofence.Contains(point, fences)

	faces, err := s.detector.DetectFaces(ctx, in.Image)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}
	if len(faces) == 0 {
		return nil, domain.ErrNoFaceDetected
	}

	frame := s.decodeFrame(in.Image)
	livenessResult := s.liveness.Analyze(frame, scaleAll(faces, frame), in.Depth, in.Session)

	// Identity only runs on single-face captures; the multiple-face case is
	// already classified by the liveness verdict.
	var match *identity.MatchResult
	if len(faces) == 1 {
		match, err = s.matchIdentity(ctx, in.ActorID, in.Image)
		if err != nil {
			return nil, err
		}
	}

	locationResult := s.location.Verify(ctx, location.Input{
		ActorID:        in.ActorID,
		IPAddress:      in.IPAddress,
		GPS:            in.GPS,
		DeviceTimezone: in.DeviceTimezone,
		ObservedAt:     s.now(),
	})

	evaluation, err := s.fraud.Evaluate(ctx, fraud.Input{
		ActorID:           in.ActorID,
		DeviceFingerprint: in.DeviceFingerprint,
		IPAddress:         in.IPAddress,
		GPS:               in.GPS,
		Liveness:          &livenessResult,
		Location:          &locationResult,
		Timestamp:         s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate fraud signals: %w", err)
	}

	result := &AttendanceResult{
		AttemptID:   evaluation.Attempt.ID,
		Decision:    evaluation.Decision(),
		Succeeded:   evaluation.Attempt.Succeeded && containment.Inside && match != nil && match.Match,
		InsideFence: containment.Inside,
		Liveness:    &livenessResult,
		Identity:    match,
		Location:    &locationResult,
		FraudScore:  evaluation.FraudScore,
		Indicators:  evaluation.Indicators,
	}
	if containment.Matched != nil {
		result.FenceName = containment.Matched.Name
	}

	_ = s.auditLogger.Log(ctx, audit.Event{
		ActorID:   in.ActorID,
		EventType: audit.EventAttemptEvaluated,
		Success:   result.Succeeded,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
		Metadata: map[string]string{
			"attempt_id":   result.AttemptID.String(),
			"decision":     string(result.Decision),
			"fraud_score":  strconv.FormatFloat(result.FraudScore, 'f', 2, 64),
			"inside_fence": strconv.FormatBool(result.InsideFence),
		},
	})

	return result, nil
}

// matchIdentity compares the capture against the actor's registered
// template. A missing template fails the attempt outright.
func (s *AttendanceService) matchIdentity(ctx context.Context, actorID string, image []byte) (*identity.MatchResult, error) {
	template, err := s.templates.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}

	probe, err := s.embedder.ExtractEmbedding(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("extract probe embedding: %w", err)
	}
	if !s.matcher.Validate(probe) {
		return nil, domain.ErrEmbeddingInvalid
	}

	match := s.matcher.Compare(*template, probe)
	return &match, nil
}

// decodeFrame converts the capture into the greyscale frame the liveness
// texture and reflection checks sample. Captures that do not decode yield an
// empty frame and those checks degrade to their floor scores.
func (s *AttendanceService) decodeFrame(imageBytes []byte) liveness.Frame {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("capture not decodable as image, liveness texture checks degraded",
				slog.String("error", err.Error()))
		}
		return liveness.Frame{}
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// ITU-R BT.601 luma, inputs are 16-bit.
			pixels[y*w+x] = uint8((299*r + 587*g + 114*b) / 1000 >> 8)
		}
	}

	return liveness.Frame{Width: w, Height: h, Pixels: pixels}
}

// scaleAll converts the detector's relative landmarks into frame pixel
// coordinates. Without a decoded frame the relative values pass through
// unscaled; the geometry scores are ratio based and unaffected.
func scaleAll(faces []provider.DetectedFace, frame liveness.Frame) []liveness.Landmarks {
	w, h := frame.Width, frame.Height
	if w <= 0 || h <= 0 {
		w, h = 1, 1
	}

	out := make([]liveness.Landmarks, 0, len(faces))
	for _, f := range faces {
		out = append(out, provider.ScaleLandmarks(f.Landmarks, w, h))
	}
	return out
}
