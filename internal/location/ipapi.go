package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// IPAPIConfig holds the configuration for the ip-api.com resolver.
type IPAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultIPAPIConfig returns a config pointing at the public ip-api.com
// endpoint.
func DefaultIPAPIConfig() IPAPIConfig {
	return IPAPIConfig{
		BaseURL: "http://ip-api.com",
		Timeout: 5 * time.Second,
	}
}

// IPAPIResolver resolves network fixes via the ip-api.com JSON endpoint,
// which reports proxy and hosting markers alongside the coordinates.
type IPAPIResolver struct {
	httpClient *http.Client
	config     IPAPIConfig
}

// NewIPAPIResolver creates an ip-api.com resolver.
func NewIPAPIResolver(config IPAPIConfig) *IPAPIResolver {
	return &IPAPIResolver{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
	}
}

// Name implements Resolver.
func (r *IPAPIResolver) Name() string {
	return "ip-api"
}

type ipAPIResponse struct {
	Status   string  `json:"status"`
	Message  string  `json:"message"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone"`
	ISP      string  `json:"isp"`
	Proxy    bool    `json:"proxy"`
	Hosting  bool    `json:"hosting"`
}

// Resolve implements Resolver.
func (r *IPAPIResolver) Resolve(ctx context.Context, ip string) (*domain.NetworkFix, error) {
	endpoint := fmt.Sprintf("%s/json/%s?fields=status,message,lat,lon,timezone,isp,proxy,hosting",
		r.config.BaseURL, url.PathEscape(ip))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ip-api returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed ipAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Status != "success" {
		return nil, fmt.Errorf("ip-api lookup failed: %s", parsed.Message)
	}

	return &domain.NetworkFix{
		Latitude:  parsed.Lat,
		Longitude: parsed.Lon,
		Timezone:  parsed.Timezone,
		ISP:       parsed.ISP,
		Proxy:     parsed.Proxy,
		Hosting:   parsed.Hosting,
		Provider:  r.Name(),
	}, nil
}
