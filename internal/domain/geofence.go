package domain

import "github.com/google/uuid"

// GeofenceKind discriminates the two supported fence geometries.
type GeofenceKind string

const (
	GeofenceRadius  GeofenceKind = "radius"
	GeofencePolygon GeofenceKind = "polygon"
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geofence is a named campus region. Fences are long-lived, administered
// outside this core, and read-only here.
type Geofence struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Kind         GeofenceKind `json:"kind"`
	Active       bool         `json:"active"`
	Center       LatLng       `json:"center,omitempty"`
	RadiusMeters float64      `json:"radius_meters,omitempty"`
	// Vertices is the ordered polygon boundary. Fewer than 3 points is a
	// malformed fence and never contains anything.
	Vertices []LatLng `json:"vertices,omitempty"`
}
