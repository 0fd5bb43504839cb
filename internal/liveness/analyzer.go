package liveness

import (
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// livenessThreshold is the fused confidence required for a live verdict.
const livenessThreshold = 0.6

// deficientScore marks a sub-score low enough to name the spoofing method.
const deficientScore = 0.35

// Fusion weights. When real depth-sensor data is available it dominates and
// the 2-D geometry estimate shrinks accordingly.
const (
	weightDepth      = 0.30
	weightTexture    = 0.25
	weightMotion     = 0.30
	weightReflection = 0.15

	weightDepth3D        = 0.50
	weightDepthWith3D    = 0.15
	weightTextureWith3D  = 0.15
	weightMotionWith3D   = 0.15
	weightReflectWith3D  = 0.05
)

// Analyzer computes a liveness verdict for one frame. It holds no state of
// its own; the per-capture-session motion window travels in the Session the
// caller passes in.
type Analyzer struct{}

// NewAnalyzer creates a liveness analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze fuses the liveness sub-scores for a single frame. A nil session is
// treated as a fresh single-frame capture. Zero landmark sets read as "no
// face"; more than one is classified as a multiple-face presentation.
func (a *Analyzer) Analyze(frame Frame, faces []Landmarks, depth *DepthMap, session *Session) domain.LivenessResult {
	if len(faces) == 0 {
		return domain.LivenessResult{
			IsLive:   false,
			Spoofing: domain.SpoofingNone,
			Metrics:  domain.LivenessMetrics{FaceCount: 0},
		}
	}
	if len(faces) > 1 {
		return domain.LivenessResult{
			IsLive:   false,
			Spoofing: domain.SpoofingMultipleFaces,
			Metrics:  domain.LivenessMetrics{FaceCount: len(faces)},
		}
	}

	lm := faces[0]
	if session != nil {
		session.observe(lm)
	}

	depthScr := depthScore(lm)
	textureScr := textureScore(frame, lm)
	motionScr, blinkScr, eyeMovementScr := session.motionScores()
	reflectionScr := reflectionScore(frame, lm)

	metrics := domain.LivenessMetrics{
		Depth:       depthScr,
		Texture:     textureScr,
		Motion:      motionScr,
		Blink:       blinkScr,
		EyeMovement: eyeMovementScr,
		Reflection:  reflectionScr,
		FaceCount:   1,
	}

	var confidence float64
	depth3DDeficient := false
	if depth != nil {
		d3 := depth3DScore(depth)
		metrics.Depth3D = &d3
		depth3DDeficient = d3 < deficientScore

		confidence = weightDepth3D*d3 +
			weightDepthWith3D*depthScr +
			weightTextureWith3D*textureScr +
			weightMotionWith3D*motionScr +
			weightReflectWith3D*reflectionScr
	} else {
		confidence = weightDepth*depthScr +
			weightTexture*textureScr +
			weightMotion*motionScr +
			weightReflection*reflectionScr
	}

	result := domain.LivenessResult{
		IsLive:     confidence >= livenessThreshold,
		Confidence: confidence,
		Spoofing:   domain.SpoofingNone,
		Metrics:    metrics,
	}

	if !result.IsLive {
		result.Spoofing = classifySpoofing(metrics, depth3DDeficient)
	}

	return result
}

// classifySpoofing names the likely attack by the most deficient sub-score,
// in priority order: flatness -> photo, glare -> screen, motion -> video,
// otherwise deepfake.
func classifySpoofing(m domain.LivenessMetrics, depth3DDeficient bool) domain.SpoofingType {
	flat := m.Depth < deficientScore || (m.Texture < deficientScore && m.Depth < 0.5) || depth3DDeficient

	switch {
	case flat:
		return domain.SpoofingPhoto
	case m.Reflection < deficientScore:
		return domain.SpoofingScreen
	case m.Motion < deficientScore:
		return domain.SpoofingVideo
	default:
		return domain.SpoofingDeepfake
	}
}
