// Package captcha verifies reCAPTCHA v3 proofs with Google's siteverify API.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultEndpoint is Google's reCAPTCHA verification endpoint.
const DefaultEndpoint = "https://www.google.com/recaptcha/api/siteverify"

const (
	clientTimeout         = 10 * time.Second
	dialTimeout           = 5 * time.Second
	tlsHandshakeTimeout   = 5 * time.Second
	responseHeaderTimeout = 5 * time.Second
)

// Config holds settings for the verification client.
type Config struct {
	// Secret is the server-side reCAPTCHA secret key.
	Secret string
	// MinScore is the minimum v3 score accepted (0.0 to 1.0).
	MinScore float64
	// ExpectedAction is the action tag the proof must carry.
	ExpectedAction string
	// Endpoint overrides the verification URL. Defaults to DefaultEndpoint.
	Endpoint string
	// HTTPClient overrides the HTTP client. A timeout-configured default
	// is used when nil.
	HTTPClient *http.Client
}

// Client verifies reCAPTCHA tokens.
type Client struct {
	secret         string
	minScore       float64
	expectedAction string
	endpoint       string
	httpClient     *http.Client
}

// New creates a verification client from cfg.
func New(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
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

	return &Client{
		secret:         cfg.Secret,
		minScore:       cfg.MinScore,
		expectedAction: cfg.ExpectedAction,
		endpoint:       endpoint,
		httpClient:     httpClient,
	}
}

// verifyResponse is the siteverify response payload.
type verifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify checks a reCAPTCHA token with the provider. It returns true only
// when the provider reports success, the v3 score meets the configured
// minimum, and the action tag matches the expected action. Transport or
// decode failures return an error; a well-formed rejection returns
// (false, nil).
func (c *Client) Verify(ctx context.Context, token string) (bool, error) {
	form := url.Values{
		"secret":   {c.secret},
		"response": {token},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("siteverify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("siteverify returned status %d", resp.StatusCode)
	}

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode siteverify response: %w", err)
	}

	if !result.Success {
		return false, nil
	}
	if result.Score < c.minScore {
		return false, nil
	}
	if c.expectedAction != "" && result.Action != c.expectedAction {
		return false, nil
	}

	return true, nil
}
