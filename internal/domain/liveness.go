package domain

// SpoofingType classifies the most likely presentation-attack method when a
// capture fails the liveness check. The set is closed; scoring and messaging
// switch over it exhaustively.
type SpoofingType string

const (
	SpoofingNone          SpoofingType = "none"
	SpoofingPhoto         SpoofingType = "photo"
	SpoofingScreen        SpoofingType = "screen"
	SpoofingVideo         SpoofingType = "video"
	SpoofingDeepfake      SpoofingType = "deepfake"
	SpoofingMultipleFaces SpoofingType = "multiple_faces"
)

// LivenessMetrics carries the individual sub-scores that were fused into the
// final liveness confidence. All values are in [0,1].
type LivenessMetrics struct {
	Depth       float64  `json:"depth"`
	Texture     float64  `json:"texture"`
	Motion      float64  `json:"motion"`
	Blink       float64  `json:"blink"`
	EyeMovement float64  `json:"eye_movement"`
	Reflection  float64  `json:"reflection"`
	FaceCount   int      `json:"face_count"`
	Depth3D     *float64 `json:"depth_3d,omitempty"`
}

// LivenessResult is produced fresh for each attendance attempt. It is
// immutable and only outlives the attempt inside its audit record.
type LivenessResult struct {
	IsLive     bool            `json:"is_live"`
	Confidence float64         `json:"confidence"`
	Spoofing   SpoofingType    `json:"spoofing_type"`
	Metrics    LivenessMetrics `json:"metrics"`
}
