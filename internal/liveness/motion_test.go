package liveness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSession_WindowEviction(t *testing.T) {
	s := NewSession()
	lm := naturalLandmarks()

	for i := 0; i < sessionWindow+10; i++ {
		s.observe(lm)
	}

	assert.Equal(t, sessionWindow, s.FrameCount())
}

func TestSession_FrozenFaceScoresLow(t *testing.T) {
	s := NewSession()
	lm := naturalLandmarks()

	// Perfectly static landmarks across the whole window, as from a photo
	// on a tripod: no displacement, no blinks, no expression changes.
	for i := 0; i < 15; i++ {
		s.observe(lm)
	}

	motion, blink, _ := s.motionScores()
	assert.Less(t, motion, 0.35)
	assert.Equal(t, 0.2, blink)
}

func TestSession_ErraticMotionScoresLow(t *testing.T) {
	s := NewSession()

	// Landmarks jumping ~10% of the interocular distance per frame, as from
	// a shaken replay device.
	for i := 0; i < 15; i++ {
		lm := naturalLandmarks()
		offset := float64(i%2) * 10
		lm.NoseTip.X += offset
		lm.LeftEyeTop.X += offset
		lm.LeftEyeBottom.X += offset
		lm.RightEyeTop.X += offset
		lm.RightEyeBottom.X += offset
		lm.MouthLeft.X += offset
		lm.MouthRight.X += offset
		s.observe(lm)
	}

	motion, _, _ := s.motionScores()
	assert.Less(t, motion, 0.5)
}

func TestSession_BlinkCounting(t *testing.T) {
	blinkFrame := func() Landmarks {
		lm := naturalLandmarks()
		lm.LeftEyeTop = Point{X: 115, Y: 100}
		lm.LeftEyeBottom = Point{X: 115, Y: 104}
		lm.RightEyeTop = Point{X: 185, Y: 100}
		lm.RightEyeBottom = Point{X: 185, Y: 104}
		return lm
	}

	tests := []struct {
		name      string
		blinkAt   []int
		wantScore float64
	}{
		{"no blinks", nil, 0.2},
		{"two blinks is natural", []int{8, 18}, 1.0},
		{"constant blinking is suspicious", []int{4, 8, 12, 16, 20, 24}, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			blinkSet := map[int]bool{}
			for _, i := range tt.blinkAt {
				blinkSet[i] = true
			}

			for i := 0; i < sessionWindow; i++ {
				if blinkSet[i] {
					s.observe(blinkFrame())
				} else {
					s.observe(naturalLandmarks())
				}
			}

			_, blink, _ := s.motionScores()
			assert.InDelta(t, tt.wantScore, blink, 1e-9)
		})
	}
}

func TestSession_NilIsNeutral(t *testing.T) {
	var s *Session
	motion, blink, eyeMovement := s.motionScores()
	assert.Equal(t, 0.5, motion)
	assert.Equal(t, 0.5, blink)
	assert.Equal(t, 0.5, eyeMovement)
}
