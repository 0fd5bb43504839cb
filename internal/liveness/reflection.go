package liveness

const (
	// reflectionPatchRadius gives 13x13 patches over each eye region, wide
	// enough to catch specular glare from a screen replay.
	reflectionPatchRadius = 6

	// nearWhiteThreshold is the grey level counted as a specular highlight.
	nearWhiteThreshold = 240

	// glareRatioCeiling: above this fraction of near-white pixels the patch
	// is treated as screen glare.
	glareRatioCeiling = 0.30
)

// reflectionScore samples patches near both eyes and flags abnormal
// concentrations of near-white pixels as probable screen glare. The glare
// ratio is inverted into a liveness-favoring score.
func reflectionScore(frame Frame, lm Landmarks) float64 {
	if frame.Empty() {
		return 0
	}

	ratio := (nearWhiteRatio(frame, lm.leftEyeCenter()) +
		nearWhiteRatio(frame, lm.rightEyeCenter())) / 2

	return clamp01(1 - ratio/glareRatioCeiling)
}

func nearWhiteRatio(frame Frame, center Point) float64 {
	cx, cy := int(center.X), int(center.Y)
	bright := 0
	total := 0

	for y := cy - reflectionPatchRadius; y <= cy+reflectionPatchRadius; y++ {
		for x := cx - reflectionPatchRadius; x <= cx+reflectionPatchRadius; x++ {
			if frame.At(x, y) >= nearWhiteThreshold {
				bright++
			}
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(bright) / float64(total)
}
