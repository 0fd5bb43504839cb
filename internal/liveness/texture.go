package liveness

// naturalSkinVarianceCeiling is the empirical greyscale variance of natural
// skin patches under normal lighting. Printed or screen-displayed faces sit
// well below it.
const naturalSkinVarianceCeiling = 800.0

// texturePatchRadius gives 9x9 pixel patches around each sampled landmark.
const texturePatchRadius = 4

// textureScore samples small pixel patches at five fixed landmark locations
// (nose tip, inner eye corners, mouth corners) and averages their normalized
// greyscale variance. Low variance means a flat printed surface.
func textureScore(frame Frame, lm Landmarks) float64 {
	if frame.Empty() {
		return 0
	}

	points := []Point{
		lm.NoseTip,
		lm.LeftEyeInner,
		lm.RightEyeInner,
		lm.MouthLeft,
		lm.MouthRight,
	}

	var total float64
	for _, p := range points {
		variance := patchVariance(frame, int(p.X), int(p.Y), texturePatchRadius)
		total += clamp01(variance / naturalSkinVarianceCeiling)
	}

	return total / float64(len(points))
}

// patchVariance computes the greyscale variance of the square patch centered
// at (cx,cy).
func patchVariance(frame Frame, cx, cy, radius int) float64 {
	var sum, sumSq float64
	count := 0

	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			v := float64(frame.At(x, y))
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
	return variance
}
