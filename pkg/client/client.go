// Package client provides the bearer-token HTTP client for the upstream
// charging-platform API, with error classification and observability.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for upstream API operations.
var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "report_upstream_requests_total",
		Help: "Total upstream API requests by stage and status",
	}, []string{"stage", "status"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "report_upstream_request_duration_seconds",
		Help:    "Upstream API request duration in seconds by stage",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"stage"})
)

// maxErrorBody bounds how much of an upstream error body is captured for
// reporting back to the caller.
const maxErrorBody = 8 << 10

// Client is the upstream API client used by every pipeline stage.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the upstream API root, e.g. "https://api.example.com/v1".
	BaseURL string

	// Token is the bearer token sent on every request.
	Token string

	// HTTPClient overrides the default HTTP client (primarily for tests).
	HTTPClient *http.Client
}

// New creates a new upstream API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	if cfg.Token == "" {
		return nil, ErrMissingToken
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		httpClient: httpClient,
		config:     cfg,
		logger:     log.With().Str("component", "upstream-client").Logger(),
	}, nil
}

// buildURL resolves a path against the base URL. Pagination cursors arrive as
// fully qualified URLs and pass through unchanged.
func (c *Client) buildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.config.BaseURL + path
}

// GetJSON performs a GET against the upstream API and decodes the JSON
// response into out. A non-2xx status is returned as an *UpstreamError
// carrying the stage name, status, URL attempted, and response body.
func (c *Client) GetJSON(ctx context.Context, stage, path string, out any) error {
	url := c.buildURL(path)

	startTime := time.Now()
	defer func() {
		upstreamRequestDuration.WithLabelValues(stage).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("stage", stage).
		Str("url", url).
		Msg("Executing upstream request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		upstreamRequestsTotal.WithLabelValues(stage, "network_error").Inc()
		c.logger.Error().Err(err).Str("stage", stage).Str("url", url).Msg("Upstream request failed")
		return fmt.Errorf("%s: request %s: %w", stage, url, err)
	}
	defer resp.Body.Close()

	upstreamRequestsTotal.WithLabelValues(stage, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn().
			Str("stage", stage).
			Int("status", resp.StatusCode).
			Str("url", url).
			Msg("Upstream request error")
		return &UpstreamError{
			Stage:      stage,
			StatusCode: resp.StatusCode,
			URL:        url,
			Body:       string(body),
		}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode %s: %w", stage, url, err)
	}

	return nil
}

// UnwrapEntity decodes a per-id lookup payload. Entity endpoints return either
// the entity object directly or wrapped as {"data": {...}}.
func UnwrapEntity(raw map[string]any) map[string]any {
	if inner, ok := raw["data"].(map[string]any); ok {
		return inner
	}
	return raw
}
