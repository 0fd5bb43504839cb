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

// IPWhoisConfig holds the configuration for the ipwho.is resolver.
type IPWhoisConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultIPWhoisConfig returns a config pointing at the public ipwho.is
// endpoint.
func DefaultIPWhoisConfig() IPWhoisConfig {
	return IPWhoisConfig{
		BaseURL: "https://ipwho.is",
		Timeout: 5 * time.Second,
	}
}

// IPWhoisResolver resolves network fixes via ipwho.is. It carries no threat
// markers of its own; the analyzer's ISP-name heuristics cover that gap.
type IPWhoisResolver struct {
	httpClient *http.Client
	config     IPWhoisConfig
}

// NewIPWhoisResolver creates an ipwho.is resolver.
func NewIPWhoisResolver(config IPWhoisConfig) *IPWhoisResolver {
	return &IPWhoisResolver{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
	}
}

// Name implements Resolver.
func (r *IPWhoisResolver) Name() string {
	return "ipwhois"
}

type ipWhoisResponse struct {
	Success   bool    `json:"success"`
	Message   string  `json:"message"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  struct {
		ID string `json:"id"`
	} `json:"timezone"`
	Connection struct {
		ISP string `json:"isp"`
	} `json:"connection"`
}

// Resolve implements Resolver.
func (r *IPWhoisResolver) Resolve(ctx context.Context, ip string) (*domain.NetworkFix, error) {
	endpoint := fmt.Sprintf("%s/%s", r.config.BaseURL, url.PathEscape(ip))

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
		return nil, fmt.Errorf("ipwhois returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed ipWhoisResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("ipwhois lookup failed: %s", parsed.Message)
	}

	return &domain.NetworkFix{
		Latitude:  parsed.Latitude,
		Longitude: parsed.Longitude,
		Timezone:  parsed.Timezone.ID,
		ISP:       parsed.Connection.ISP,
		Provider:  r.Name(),
	}, nil
}
