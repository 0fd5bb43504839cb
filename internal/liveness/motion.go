package liveness

import "math"

const (
	// sessionWindow is how many frames of landmark history a capture session
	// retains; blink counting looks at the full window.
	sessionWindow = 30

	// displacementWindow bounds the consecutive-frame displacement analysis.
	displacementWindow = 10

	// expressionWindow is the short window for expression-intensity variance.
	expressionWindow = 3

	// Natural micro-movement band for per-frame key-point displacement,
	// relative to eye distance. Below is frozen (photo/video loop), above is
	// erratic (shaken replay).
	microMovementLo = 0.002
	microMovementHi = 0.040

	// Eye aperture hysteresis thresholds for blink detection, relative to
	// eye distance. A normal open eye sits around 0.11.
	apertureOpen   = 0.10
	apertureClosed = 0.06
)

// Session carries the per-capture-session motion state. The analyzer itself
// stays a pure function of (frame, session-in) -> (result, session-out); the
// caller owns the session and creates a fresh one per capture session.
type Session struct {
	samples []motionSample
}

type motionSample struct {
	keyPoints  []Point
	eyeCenters [2]Point
	aperture   float64
	expression float64
	scale      float64
}

// NewSession creates an empty motion window for a new capture session.
func NewSession() *Session {
	return &Session{}
}

// FrameCount returns how many frames the session has observed, capped at the
// window size.
func (s *Session) FrameCount() int {
	return len(s.samples)
}

func (s *Session) observe(lm Landmarks) {
	sample := motionSample{
		keyPoints: []Point{
			lm.NoseTip,
			lm.leftEyeCenter(),
			lm.rightEyeCenter(),
			lm.MouthLeft,
			lm.MouthRight,
		},
		eyeCenters: [2]Point{lm.leftEyeCenter(), lm.rightEyeCenter()},
		aperture:   lm.eyeAperture(),
		expression: lm.expressionMean(),
		scale:      lm.EyeDistance(),
	}

	s.samples = append(s.samples, sample)
	if len(s.samples) > sessionWindow {
		s.samples = s.samples[len(s.samples)-sessionWindow:]
	}
}

// motionScores returns the fused motion score plus the blink and
// eye-movement sub-metrics reported alongside it.
func (s *Session) motionScores() (motion, blink, eyeMovement float64) {
	if s == nil || len(s.samples) < 2 {
		// Single frame: no temporal evidence either way.
		return 0.5, 0.5, 0.5
	}

	displacement := s.displacementScore()
	blink = s.blinkScore()
	expression := s.expressionVarianceScore()
	eyeMovement = s.eyeMovementScore()

	motion = 0.5*displacement + 0.3*blink + 0.2*expression
	return motion, blink, eyeMovement
}

// displacementScore favors the natural micro-movement band over the last
// consecutive frame pairs: neither frozen nor erratic.
func (s *Session) displacementScore() float64 {
	start := len(s.samples) - displacementWindow
	if start < 1 {
		start = 1
	}

	var total float64
	pairs := 0
	for i := start; i < len(s.samples); i++ {
		prev, cur := s.samples[i-1], s.samples[i]
		if cur.scale <= 0 || len(prev.keyPoints) != len(cur.keyPoints) {
			continue
		}
		var d float64
		for j := range cur.keyPoints {
			d += distance(prev.keyPoints[j], cur.keyPoints[j])
		}
		total += d / float64(len(cur.keyPoints)) / cur.scale
		pairs++
	}
	if pairs == 0 {
		return 0
	}

	return bandScore(total/float64(pairs), microMovementLo, microMovementHi)
}

// blinkScore counts open->closed aperture transitions over the session
// window and favors 1-3 blinks.
func (s *Session) blinkScore() float64 {
	blinks := 0
	open := s.samples[0].aperture >= apertureOpen
	for _, sample := range s.samples[1:] {
		switch {
		case open && sample.aperture <= apertureClosed:
			blinks++
			open = false
		case !open && sample.aperture >= apertureOpen:
			open = true
		}
	}

	switch {
	case blinks >= 1 && blinks <= 3:
		return 1
	case blinks == 0:
		return 0.2
	default:
		return math.Max(0.2, 1-0.25*float64(blinks-3))
	}
}

// expressionVarianceScore rewards small natural fluctuations of expression
// intensity across the last few frames; a perfectly static signal reads as a
// replayed still.
func (s *Session) expressionVarianceScore() float64 {
	start := len(s.samples) - expressionWindow
	if start < 0 {
		start = 0
	}
	window := s.samples[start:]
	if len(window) < 2 {
		return 0.5
	}

	var sum, sumSq float64
	for _, sample := range window {
		sum += sample.expression
		sumSq += sample.expression * sample.expression
	}
	n := float64(len(window))
	variance := sumSq/n - (sum/n)*(sum/n)
	if variance < 0 {
		variance = 0
	}

	return clamp01(variance / 0.0001)
}

// eyeMovementScore measures saccadic eye-center drift over the window.
func (s *Session) eyeMovementScore() float64 {
	var total float64
	pairs := 0
	for i := 1; i < len(s.samples); i++ {
		prev, cur := s.samples[i-1], s.samples[i]
		if cur.scale <= 0 {
			continue
		}
		d := (distance(prev.eyeCenters[0], cur.eyeCenters[0]) +
			distance(prev.eyeCenters[1], cur.eyeCenters[1])) / 2
		total += d / cur.scale
		pairs++
	}
	if pairs == 0 {
		return 0
	}

	return bandScore(total/float64(pairs), 0.001, 0.030)
}
