// Package geofence implements the pure geometric containment test used to
// decide whether an attendance attempt happened inside a campus region.
package geofence

import (
	"math"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// earthRadiusMeters is the mean Earth radius used for haversine distances.
const earthRadiusMeters = 6371000.0

// ContainmentResult reports whether a point fell inside any active fence.
type ContainmentResult struct {
	Inside bool
	// Matched is the first fence that contained the point, nil otherwise.
	Matched *domain.Geofence
	// DistanceMeters is the distance to the matched radius fence's center.
	// Zero for polygon matches and misses.
	DistanceMeters float64
}

// Contains tests the point against the fences in input order and returns on
// the first match. Inactive fences are skipped. Callers that care about
// priority should order the slice accordingly. An empty or fully inactive
// fence set is never "inside".
func Contains(point domain.LatLng, fences []domain.Geofence) ContainmentResult {
	for i := range fences {
		f := &fences[i]
		if !f.Active {
			continue
		}

		switch f.Kind {
		case domain.GeofenceRadius:
			d := HaversineMeters(point, f.Center)
			if d <= f.RadiusMeters {
				return ContainmentResult{Inside: true, Matched: f, DistanceMeters: d}
			}
		case domain.GeofencePolygon:
			if pointInPolygon(point, f.Vertices) {
				return ContainmentResult{Inside: true, Matched: f}
			}
		}
	}

	return ContainmentResult{}
}

// HaversineMeters returns the great-circle distance between two coordinates.
func HaversineMeters(a, b domain.LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// pointInPolygon applies the even-odd ray casting rule over consecutive edge
// pairs, including the wrap-around edge. Polygons with fewer than 3 vertices
// are malformed and contain nothing.
func pointInPolygon(p domain.LatLng, vertices []domain.LatLng) bool {
	if len(vertices) < 3 {
		return false
	}

	inside := false
	j := len(vertices) - 1
	for i := 0; i < len(vertices); i++ {
		vi, vj := vertices[i], vertices[j]
		if (vi.Lng > p.Lng) != (vj.Lng > p.Lng) {
			cross := (vj.Lat-vi.Lat)*(p.Lng-vi.Lng)/(vj.Lng-vi.Lng) + vi.Lat
			if p.Lat < cross {
				inside = !inside
			}
		}
		j = i
	}

	return inside
}
