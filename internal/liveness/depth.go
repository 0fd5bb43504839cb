package liveness

import "math"

// Natural bands for 2-D facial geometry ratios, all relative to the outer
// eye-corner distance. Flat reproductions (printed photos held to a camera)
// compress these ratios toward degenerate values.
const (
	noseBridgeLo = 0.25
	noseBridgeHi = 0.65

	eyeSocketLo = 0.30
	eyeSocketHi = 0.55

	aspectLo = 0.6
	aspectHi = 1.0

	projectionLo = 0.05
	projectionHi = 0.35
)

// depthScore estimates 3-D facial structure from 2-D landmark geometry
// alone. Higher means more structure, i.e. less likely a flat surface.
func depthScore(lm Landmarks) float64 {
	scale := lm.EyeDistance()
	if scale <= 0 {
		return 0
	}
	faceHeight := distance(lm.Forehead, lm.Chin)
	if faceHeight <= 0 {
		return 0
	}

	noseBridge := distance(lm.NoseTip, lm.NoseBridge) / scale
	eyeSocket := distance(lm.LeftEyeInner, lm.RightEyeInner) / scale
	aspect := scale / faceHeight
	projection := distance(lm.NoseTip, midpoint(lm.Forehead, lm.Chin)) / faceHeight

	sum := bandScore(noseBridge, noseBridgeLo, noseBridgeHi) +
		bandScore(eyeSocket, eyeSocketLo, eyeSocketHi) +
		bandScore(aspect, aspectLo, aspectHi) +
		bandScore(projection, projectionLo, projectionHi)

	return sum / 4
}

// Depth-sensor thresholds: the standard deviation of real face depths in the
// central region sits a few centimeters wide; a flat reproduction collapses
// it, and a very large spread is usually sensor noise.
const (
	depthFlatStdMeters  = 0.02
	depthNoiseStdMeters = 0.15
)

// depth3DScore scores the statistical spread of sensor depth values over the
// central face region. Returns nil-safe 0 for empty maps.
func depth3DScore(dm *DepthMap) float64 {
	if dm == nil || dm.Width <= 0 || dm.Height <= 0 || len(dm.Meters) == 0 {
		return 0
	}

	// Central region: the middle half of the grid in both axes.
	x0, x1 := dm.Width/4, dm.Width*3/4
	y0, y1 := dm.Height/4, dm.Height*3/4

	var sum, sumSq float64
	count := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			idx := y*dm.Width + x
			if idx >= len(dm.Meters) {
				continue
			}
			v := dm.Meters[idx]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			sum += v
			sumSq += v * v
			count++
		}
	}
	if count == 0 {
		return 0
	}

	mean := sum / float64(count)
	variance := sumSq/float64(count) - mean*mean
	if variance < 0 {
		variance = 0
	}
	std := math.Sqrt(variance)

	switch {
	case std < depthFlatStdMeters:
		// Flat surface, almost certainly a spoof.
		return clamp01(std / depthFlatStdMeters * 0.1)
	case std <= depthNoiseStdMeters:
		return 0.6 + 0.4*(std-depthFlatStdMeters)/(depthNoiseStdMeters-depthFlatStdMeters)
	default:
		// Spread too wide to trust; likely noise.
		return 0.5
	}
}
