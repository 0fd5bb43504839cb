package location

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/geofence"
)

const (
	// trustThreshold is the minimum confidence for a valid location verdict.
	trustThreshold = 0.6

	// Discrepancy tiers between the GPS fix and the network fix.
	discrepancySuspectMeters = 50_000
	discrepancySpoofedMeters = 100_000

	// Travel faster than this between two fixes inside the speed window is
	// physically implausible for an attendance scenario.
	maxPlausibleSpeedKmh = 200
	speedWindow          = time.Hour

	// Confidence penalties.
	penaltyDiscrepancySuspect = 0.2
	penaltyDiscrepancySpoofed = 0.4
	penaltyTimezoneMismatch   = 0.1
	penaltyVPN                = 0.3
	penaltyProxy              = 0.2
	penaltyTor                = 0.4
	penaltyHosting            = 0.2
	penaltyImpossibleSpeed    = 0.5
	penaltyPoorAccuracy       = 0.1
	penaltyWeakAccuracy       = 0.05
)

// ispHostingMarkers are ISP-name substrings that identify datacenter or
// cloud egress rather than a consumer connection.
var ispHostingMarkers = []string{
	"hosting", "datacenter", "data center", "amazon", "aws",
	"google cloud", "azure", "digitalocean", "ovh", "hetzner",
	"linode", "vultr",
}

// FixStore keeps the single last-known fix per actor for impossible-travel
// detection. Implementations must be safe for concurrent use.
type FixStore interface {
	// LastFix returns the actor's last recorded fix, or nil when none exists.
	LastFix(ctx context.Context, actorID string) (*domain.KnownFix, error)
	// SaveFix overwrites the actor's last-known slot.
	SaveFix(ctx context.Context, actorID string, fix domain.KnownFix) error
}

// Input is one location verification request.
type Input struct {
	ActorID        string
	IPAddress      string
	GPS            domain.GPSFix
	DeviceTimezone string
	ObservedAt     time.Time
}

// Analyzer cross-validates GPS fixes against network fixes and past
// movement. The network lookup is best-effort; every other signal is local.
type Analyzer struct {
	resolver Resolver
	fixes    FixStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewAnalyzer creates a location trust analyzer. A nil resolver disables the
// network cross-check; a nil store disables impossible-travel detection.
func NewAnalyzer(resolver Resolver, fixes FixStore, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		resolver: resolver,
		fixes:    fixes,
		logger:   logger,
		now:      time.Now,
	}
}

// Verify produces the location trust verdict for one attempt. Resolver
// failures degrade to "no network fix" with the remaining signals intact.
func (a *Analyzer) Verify(ctx context.Context, in Input) domain.LocationTrustResult {
	observedAt := in.ObservedAt
	if observedAt.IsZero() {
		observedAt = a.now()
	}

	result := domain.LocationTrustResult{
		GPS:        in.GPS,
		Confidence: 1.0,
	}

	if fix := a.resolveNetworkFix(ctx, in.IPAddress); fix != nil {
		result.Network = fix
		a.crossValidate(&result, in.DeviceTimezone, fix)
	}

	a.checkTravelSpeed(ctx, &result, in.ActorID, observedAt)

	switch {
	case in.GPS.AccuracyMeters > 100:
		result.Confidence -= penaltyPoorAccuracy
	case in.GPS.AccuracyMeters > 50:
		result.Confidence -= penaltyWeakAccuracy
	}

	if result.Confidence < 0 {
		result.Confidence = 0
	}
	result.IsValid = result.Confidence >= trustThreshold &&
		!result.Flags.VPN && !result.Flags.LocationSpoofed

	return result
}

func (a *Analyzer) resolveNetworkFix(ctx context.Context, ip string) *domain.NetworkFix {
	if a.resolver == nil || ip == "" {
		return nil
	}

	fix, err := a.resolver.Resolve(ctx, ip)
	if err != nil {
		if a.logger != nil {
			a.logger.Debug("network fix unavailable",
				slog.String("ip", ip),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}
	return fix
}

// crossValidate applies the network-fix penalties: distance discrepancy,
// timezone mismatch, and anonymization markers.
func (a *Analyzer) crossValidate(result *domain.LocationTrustResult, deviceTZ string, fix *domain.NetworkFix) {
	discrepancy := geofence.HaversineMeters(
		domain.LatLng{Lat: result.GPS.Latitude, Lng: result.GPS.Longitude},
		domain.LatLng{Lat: fix.Latitude, Lng: fix.Longitude},
	)
	result.DistanceDiscrepancyMeters = &discrepancy

	switch {
	case discrepancy > discrepancySpoofedMeters:
		result.Flags.LocationSpoofed = true
		result.Confidence -= penaltyDiscrepancySpoofed
	case discrepancy > discrepancySuspectMeters:
		result.Confidence -= penaltyDiscrepancySuspect
	}

	if deviceTZ != "" && fix.Timezone != "" && deviceTZ != fix.Timezone {
		result.Flags.TimezoneMismatch = true
		result.Confidence -= penaltyTimezoneMismatch
	}

	isp := strings.ToLower(fix.ISP)
	if fix.VPN || strings.Contains(isp, "vpn") {
		result.Flags.VPN = true
		result.Confidence -= penaltyVPN
	}
	if fix.Proxy || strings.Contains(isp, "proxy") {
		result.Flags.Proxy = true
		result.Confidence -= penaltyProxy
	}
	if fix.Tor {
		result.Flags.Tor = true
		result.Confidence -= penaltyTor
	}
	if fix.Hosting || hasHostingMarker(isp) {
		result.Flags.Hosting = true
		result.Confidence -= penaltyHosting
	}
}

// checkTravelSpeed compares the GPS fix against the actor's last-known fix
// and overwrites the slot with the current one.
func (a *Analyzer) checkTravelSpeed(ctx context.Context, result *domain.LocationTrustResult, actorID string, observedAt time.Time) {
	if a.fixes == nil || actorID == "" {
		return
	}

	last, err := a.fixes.LastFix(ctx, actorID)
	if err != nil && a.logger != nil {
		a.logger.Debug("last known fix unavailable",
			slog.String("actor_id", actorID),
			slog.String("error", err.Error()),
		)
	}

	if last != nil {
		elapsed := observedAt.Sub(last.RecordedAt)
		if elapsed > 0 && elapsed < speedWindow {
			meters := geofence.HaversineMeters(
				domain.LatLng{Lat: last.Latitude, Lng: last.Longitude},
				domain.LatLng{Lat: result.GPS.Latitude, Lng: result.GPS.Longitude},
			)
			speedKmh := meters / 1000 / elapsed.Hours()
			if speedKmh > maxPlausibleSpeedKmh {
				result.Flags.ImpossibleSpeed = true
				result.Confidence -= penaltyImpossibleSpeed
			}
		}
	}

	err = a.fixes.SaveFix(ctx, actorID, domain.KnownFix{
		Latitude:   result.GPS.Latitude,
		Longitude:  result.GPS.Longitude,
		RecordedAt: observedAt,
	})
	if err != nil && a.logger != nil {
		a.logger.Debug("failed to persist last known fix",
			slog.String("actor_id", actorID),
			slog.String("error", err.Error()),
		)
	}
}

func hasHostingMarker(isp string) bool {
	for _, marker := range ispHostingMarkers {
		if strings.Contains(isp, marker) {
			return true
		}
	}
	return false
}
