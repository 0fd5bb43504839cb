// Package liveness scores whether a captured face belongs to a live person
// present at capture time, fusing geometry, texture, motion and reflection
// signals from a single video frame and its facial landmarks.
package liveness

import "math"

// Point is a 2-D landmark position in frame pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Landmarks holds the named 2-D landmark positions for one detected face,
// plus the expression-intensity vector the detector reports alongside them.
// The landmark provider is external; this package only consumes positions.
type Landmarks struct {
	NoseTip    Point `json:"nose_tip"`
	NoseBridge Point `json:"nose_bridge"`
	Chin       Point `json:"chin"`
	Forehead   Point `json:"forehead"`

	LeftEyeOuter  Point `json:"left_eye_outer"`
	LeftEyeInner  Point `json:"left_eye_inner"`
	LeftEyeTop    Point `json:"left_eye_top"`
	LeftEyeBottom Point `json:"left_eye_bottom"`

	RightEyeOuter  Point `json:"right_eye_outer"`
	RightEyeInner  Point `json:"right_eye_inner"`
	RightEyeTop    Point `json:"right_eye_top"`
	RightEyeBottom Point `json:"right_eye_bottom"`

	MouthLeft  Point `json:"mouth_left"`
	MouthRight Point `json:"mouth_right"`

	Expressions []float64 `json:"expressions,omitempty"`
}

// EyeDistance is the outer eye-corner distance, used as the scale unit for
// all geometry ratios so scores are resolution independent.
func (l Landmarks) EyeDistance() float64 {
	return distance(l.LeftEyeOuter, l.RightEyeOuter)
}

func (l Landmarks) leftEyeCenter() Point {
	return midpoint(l.LeftEyeTop, l.LeftEyeBottom)
}

func (l Landmarks) rightEyeCenter() Point {
	return midpoint(l.RightEyeTop, l.RightEyeBottom)
}

// eyeAperture is the mean eye opening height normalized by eye distance.
func (l Landmarks) eyeAperture() float64 {
	scale := l.EyeDistance()
	if scale <= 0 {
		return 0
	}
	left := distance(l.LeftEyeTop, l.LeftEyeBottom)
	right := distance(l.RightEyeTop, l.RightEyeBottom)
	return (left + right) / 2 / scale
}

func (l Landmarks) expressionMean() float64 {
	if len(l.Expressions) == 0 {
		return 0
	}
	var sum float64
	for _, v := range l.Expressions {
		sum += v
	}
	return sum / float64(len(l.Expressions))
}

// Frame is a single greyscale video frame in row-major order. Out-of-bounds
// reads return zero so patch sampling near the border stays safe.
type Frame struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Pixels []byte `json:"pixels"`
}

// At returns the grey value at (x,y), or 0 outside the frame.
func (f Frame) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return 0
	}
	idx := y*f.Width + x
	if idx >= len(f.Pixels) {
		return 0
	}
	return f.Pixels[idx]
}

// Empty reports whether the frame carries no usable pixel data.
func (f Frame) Empty() bool {
	return f.Width <= 0 || f.Height <= 0 || len(f.Pixels) == 0
}

// DepthMap is an optional per-pixel depth grid in meters from a depth
// sensor. When present it dominates the liveness fusion.
type DepthMap struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Meters []float64 `json:"meters"`
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// bandScore returns 1.0 inside [lo,hi] and decays linearly to 0 outside,
// reaching zero at lo/2 below the band and at 2*hi above it.
func bandScore(v, lo, hi float64) float64 {
	switch {
	case v >= lo && v <= hi:
		return 1
	case v < lo:
		if lo <= 0 {
			return 0
		}
		return clamp01((v - lo/2) / (lo / 2))
	default:
		return clamp01((2*hi - v) / hi)
	}
}
