// Package geoip resolves IP addresses to human-readable locations using
// the ipinfo.io API. Lookups never fail the enclosing request: any error
// degrades to the UnknownLocation sentinel.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// UnknownLocation is the sentinel returned when a lookup cannot be resolved.
const UnknownLocation = "Unknown Location"

// DefaultBaseURL is the ipinfo.io API base.
const DefaultBaseURL = "https://ipinfo.io"

const (
	clientTimeout         = 10 * time.Second
	dialTimeout           = 5 * time.Second
	tlsHandshakeTimeout   = 5 * time.Second
	responseHeaderTimeout = 5 * time.Second
)

// LocationCache caches resolved locations keyed by IP.
// Cache failures are treated as misses, never as lookup failures.
type LocationCache interface {
	GetLocation(ctx context.Context, ip string) (string, error)
	SetLocation(ctx context.Context, ip, location string) error
}

// Config holds settings for the lookup client.
type Config struct {
	// Token is the ipinfo.io API token. May be empty.
	Token string
	// BaseURL overrides the API base. Defaults to DefaultBaseURL.
	BaseURL string
	// Cache is consulted before the provider. May be nil.
	Cache LocationCache
	// HTTPClient overrides the HTTP client.
	HTTPClient *http.Client
	// Logger for degraded lookups. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client resolves IPs to display locations.
type Client struct {
	token      string
	baseURL    string
	cache      LocationCache
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a lookup client from cfg.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: clientTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   dialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   tlsHandshakeTimeout,
				ResponseHeaderTimeout: responseHeaderTimeout,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
			},
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		token:      cfg.Token,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		cache:      cfg.Cache,
		httpClient: httpClient,
		logger:     logger,
	}
}

// lookupResponse is the subset of the ipinfo.io payload we use.
type lookupResponse struct {
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
	Loc     string `json:"loc"` // "latitude,longitude"
}

// Lookup resolves an IP address to a display location such as
// "Berlin, Berlin, DE (Coordinates: 52.5,13.4)". It consults the cache
// first and returns UnknownLocation on any provider or decode failure.
func (c *Client) Lookup(ctx context.Context, ip string) string {
	if ip == "" {
		return UnknownLocation
	}

	if c.cache != nil {
		if cached, err := c.cache.GetLocation(ctx, ip); err == nil {
			return cached
		}
	}

	location, err := c.fetch(ctx, ip)
	if err != nil {
		c.logger.Warn("geoip lookup degraded",
			slog.String("ip", ip),
			slog.String("error", err.Error()),
		)
		return UnknownLocation
	}

	if c.cache != nil && location != UnknownLocation {
		if err := c.cache.SetLocation(ctx, ip, location); err != nil {
			c.logger.Debug("geoip cache write failed", slog.String("error", err.Error()))
		}
	}

	return location
}

// fetch queries the provider for a single IP.
func (c *Client) fetch(ctx context.Context, ip string) (string, error) {
	url := fmt.Sprintf("%s/%s/json", c.baseURL, ip)
	if c.token != "" {
		url += "?token=" + c.token
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build lookup request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lookup returned status %d", resp.StatusCode)
	}

	var result lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode lookup response: %w", err)
	}

	return formatLocation(result), nil
}

// formatLocation composes the display string, skipping empty parts.
func formatLocation(r lookupResponse) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.City, r.Region, r.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	location := strings.Join(parts, ", ")
	if r.Loc != "" {
		location += fmt.Sprintf(" (Coordinates: %s)", r.Loc)
	}

	if location == "" {
		return UnknownLocation
	}
	return location
}
