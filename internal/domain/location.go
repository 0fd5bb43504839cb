package domain

import "time"

// GPSFix is a device-reported location sample.
type GPSFix struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracy_meters"`
}

// NetworkFix is an independent location estimate derived from the caller's
// network address, normalized from whichever resolver produced it.
type NetworkFix struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone,omitempty"`
	ISP       string  `json:"isp,omitempty"`
	VPN       bool    `json:"vpn"`
	Proxy     bool    `json:"proxy"`
	Tor       bool    `json:"tor"`
	Hosting   bool    `json:"hosting"`
	Provider  string  `json:"provider"`
}

// LocationFlags are the boolean trust markers raised during cross-validation.
type LocationFlags struct {
	VPN              bool `json:"vpn"`
	Proxy            bool `json:"proxy"`
	Tor              bool `json:"tor"`
	Hosting          bool `json:"hosting"`
	LocationSpoofed  bool `json:"location_spoofed"`
	TimezoneMismatch bool `json:"timezone_mismatch"`
	ImpossibleSpeed  bool `json:"impossible_speed"`
}

// LocationTrustResult is the per-attempt location verdict. Ephemeral; only
// the attempt's audit record keeps it.
type LocationTrustResult struct {
	GPS                       GPSFix       `json:"gps_fix"`
	Network                   *NetworkFix  `json:"network_fix,omitempty"`
	DistanceDiscrepancyMeters *float64     `json:"distance_discrepancy_meters,omitempty"`
	Flags                     LocationFlags `json:"flags"`
	Confidence                float64      `json:"confidence"`
	IsValid                   bool         `json:"is_valid"`
}

// KnownFix is the single last-known location slot kept per actor, used for
// impossible-travel detection. Overwritten on every verification.
type KnownFix struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	RecordedAt time.Time `json:"recorded_at"`
}
