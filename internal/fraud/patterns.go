package fraud

import (
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/geofence"
)

const (
	// patternWindow is how many recent attempts the pattern rules inspect.
	patternWindow = 10

	// failureThreshold raises multiple_failures within the window.
	failureThreshold = 5

	// deviceSwitchThreshold: more distinct fingerprints than this raises
	// device_switching.
	deviceSwitchThreshold = 3

	// jumpSpeedKmh: consecutive attempts implying faster travel raise
	// location_jumping.
	jumpSpeedKmh = 200

	// Attempts outside nightBoundStart..nightBoundEnd count as unusual;
	// unusualTimeThreshold of them in the window raises the indicator.
	nightBoundStart      = 6
	nightBoundEnd        = 22
	unusualTimeThreshold = 3
)

// countFailures returns how many attempts in the window did not succeed.
func countFailures(attempts []domain.AttendanceAttempt) int {
	failures := 0
	for _, a := range attempts {
		if !a.Succeeded {
			failures++
		}
	}
	return failures
}

// countDistinctDevices returns the number of distinct fingerprints seen.
func countDistinctDevices(attempts []domain.AttendanceAttempt) int {
	seen := make(map[string]struct{}, len(attempts))
	for _, a := range attempts {
		if a.DeviceFingerprint != "" {
			seen[a.DeviceFingerprint] = struct{}{}
		}
	}
	return len(seen)
}

// hasLocationJump reports whether any consecutive pair of attempts implies
// implausibly fast travel. Attempts arrive newest first; the scan stops at
// the first hit.
func hasLocationJump(attempts []domain.AttendanceAttempt) bool {
	for i := 0; i+1 < len(attempts); i++ {
		newer, older := attempts[i], attempts[i+1]
		elapsed := newer.Timestamp.Sub(older.Timestamp)
		if elapsed <= 0 {
			continue
		}

		meters := geofence.HaversineMeters(
			domain.LatLng{Lat: older.GPS.Latitude, Lng: older.GPS.Longitude},
			domain.LatLng{Lat: newer.GPS.Latitude, Lng: newer.GPS.Longitude},
		)
		if meters/1000/elapsed.Hours() > jumpSpeedKmh {
			return true
		}
	}
	return false
}

// countUnusualHours returns how many attempts fall outside the 06:00-22:00
// local window.
func countUnusualHours(attempts []domain.AttendanceAttempt) int {
	count := 0
	for _, a := range attempts {
		hour := a.Timestamp.Hour()
		if hour < nightBoundStart || hour >= nightBoundEnd {
			count++
		}
	}
	return count
}
