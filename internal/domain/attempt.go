package domain

import (
	"time"

	"github.com/google/uuid"
)

// AttemptHistoryCap is the maximum number of attempts retained per actor.
// Older entries are evicted as new ones arrive.
const AttemptHistoryCap = 50

// AttendanceAttempt is one attendance-marking attempt by an actor. Entries
// are append-only and never mutated once stored.
type AttendanceAttempt struct {
	ID                uuid.UUID            `json:"id"`
	ActorID           string               `json:"actor_id"`
	Timestamp         time.Time            `json:"timestamp"`
	DeviceFingerprint string               `json:"device_fingerprint"`
	IPAddress         string               `json:"ip_address,omitempty"`
	GPS               GPSFix               `json:"gps_fix"`
	Liveness          *LivenessResult      `json:"liveness_result,omitempty"`
	Location          *LocationTrustResult `json:"location_result,omitempty"`
	Succeeded         bool                 `json:"succeeded"`
	Blocked           bool                 `json:"blocked"`
	FraudScore        float64              `json:"fraud_score"`
}

// FraudType categorizes a fraud record by its dominant indicator.
type FraudType string

const (
	FraudFaceSpoofing     FraudType = "face_spoofing"
	FraudLocationSpoofing FraudType = "location_spoofing"
	FraudMultipleAttempts FraudType = "multiple_attempts"
	FraudDeviceMismatch   FraudType = "device_mismatch"
	FraudVPNUsage         FraudType = "vpn_usage"
	FraudImpossibleSpeed  FraudType = "impossible_speed"
)

// FraudSeverity maps a composite fraud score into review buckets.
type FraudSeverity string

const (
	SeverityLow      FraudSeverity = "low"
	SeverityMedium   FraudSeverity = "medium"
	SeverityHigh     FraudSeverity = "high"
	SeverityCritical FraudSeverity = "critical"
)

// SeverityForScore maps a fraud score to its severity bucket.
func SeverityForScore(score float64) FraudSeverity {
	switch {
	case score >= 0.8:
		return SeverityCritical
	case score >= 0.6:
		return SeverityHigh
	case score >= 0.4:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// FraudRecord is an auditable fraud finding. Only Resolved is mutable, and
// only through the external review surface.
type FraudRecord struct {
	ID         uuid.UUID     `json:"id"`
	ActorID    string        `json:"actor_id"`
	Timestamp  time.Time     `json:"timestamp"`
	Type       FraudType     `json:"type"`
	Severity   FraudSeverity `json:"severity"`
	FraudScore float64       `json:"fraud_score"`
	Indicators []string      `json:"indicators"`
	Blocked    bool          `json:"blocked"`
	Resolved   bool          `json:"resolved"`
}

// Decision is the final outcome of an attendance attempt evaluation.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionFlag   Decision = "flag"
	DecisionBlock  Decision = "block"
)
