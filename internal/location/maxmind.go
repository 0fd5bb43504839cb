package location

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/maxminddb-golang"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// MaxMindResolver resolves network fixes from a local GeoLite2 City
// database. It never leaves the process, so it makes a good last resort when
// the HTTP providers are unreachable.
type MaxMindResolver struct {
	db *maxminddb.Reader
}

// NewMaxMindResolver opens the .mmdb file at the given path.
func NewMaxMindResolver(path string) (*MaxMindResolver, error) {
	db, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mmdb: %w", err)
	}
	return &MaxMindResolver{db: db}, nil
}

// Close releases the underlying database handle.
func (r *MaxMindResolver) Close() error {
	return r.db.Close()
}

// Name implements Resolver.
func (r *MaxMindResolver) Name() string {
	return "maxmind"
}

type maxmindRecord struct {
	Location struct {
		Latitude  float64 `maxminddb:"latitude"`
		Longitude float64 `maxminddb:"longitude"`
		TimeZone  string  `maxminddb:"time_zone"`
	} `maxminddb:"location"`
	Traits struct {
		ISP               string `maxminddb:"isp"`
		IsAnonymousProxy  bool   `maxminddb:"is_anonymous_proxy"`
		IsAnonymousVPN    bool   `maxminddb:"is_anonymous_vpn"`
		IsTorExitNode     bool   `maxminddb:"is_tor_exit_node"`
		IsHostingProvider bool   `maxminddb:"is_hosting_provider"`
		IsPublicProxy     bool   `maxminddb:"is_public_proxy"`
	} `maxminddb:"traits"`
}

// Resolve implements Resolver. The City database carries no timestamped
// data, so lookups ignore the context beyond an early cancellation check.
func (r *MaxMindResolver) Resolve(ctx context.Context, ip string) (*domain.NetworkFix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, fmt.Errorf("invalid ip address %q", ip)
	}

	var record maxmindRecord
	if err := r.db.Lookup(parsed, &record); err != nil {
		return nil, fmt.Errorf("mmdb lookup: %w", err)
	}
	if record.Location.Latitude == 0 && record.Location.Longitude == 0 && record.Location.TimeZone == "" {
		return nil, ErrNoFix
	}

	return &domain.NetworkFix{
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
		Timezone:  record.Location.TimeZone,
		ISP:       record.Traits.ISP,
		VPN:       record.Traits.IsAnonymousVPN,
		Proxy:     record.Traits.IsAnonymousProxy || record.Traits.IsPublicProxy,
		Tor:       record.Traits.IsTorExitNode,
		Hosting:   record.Traits.IsHostingProvider,
		Provider:  r.Name(),
	}, nil
}
