// Package client implements the HTTP and WebSocket transports the sync
// engine uses to talk to the authoritative server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bekalpaslan/cosmograph/internal/domain"
	"github.com/bekalpaslan/cosmograph/internal/engine"
)

// DefaultRequestTimeout bounds every HTTP call to the server
const DefaultRequestTimeout = 15 * time.Second

// Client is an engine.Backend backed by the server's HTTP API. It is safe
// for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, used by tests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8090"
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultRequestTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchGraph retrieves the full authoritative universe graph
func (c *Client) FetchGraph(ctx context.Context, sessionID string) (*domain.Graph, error) {
	var graph domain.Graph
	if err := c.getJSON(ctx, "/api/universe", &graph); err != nil {
		return nil, err
	}
	return &graph, nil
}

// FetchDiscoveryProgress retrieves the server-computed progress for a session
func (c *Client) FetchDiscoveryProgress(ctx context.Context, sessionID string) (*engine.ProgressReport, error) {
	var report engine.ProgressReport
	path := "/api/universe/discovery/progress/" + url.PathEscape(sessionID)
	if err := c.getJSON(ctx, path, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

type discoveryConfigResponse struct {
	ActiveIntervalMS int64 `json:"active_interval_ms"`
	IdleIntervalMS   int64 `json:"idle_interval_ms"`
	IdleThresholdMS  int64 `json:"idle_threshold_ms"`
}

// FetchSchedulerConfig retrieves the server's advertised polling cadences.
// Fields the server leaves unset keep their default.
func (c *Client) FetchSchedulerConfig(ctx context.Context) (engine.SchedulerConfig, error) {
	cfg := engine.DefaultSchedulerConfig()

	var resp discoveryConfigResponse
	if err := c.getJSON(ctx, "/api/universe/discovery/config", &resp); err != nil {
		return cfg, err
	}

	if resp.ActiveIntervalMS > 0 {
		cfg.ActiveInterval = time.Duration(resp.ActiveIntervalMS) * time.Millisecond
	}
	if resp.IdleIntervalMS > 0 {
		cfg.IdleInterval = time.Duration(resp.IdleIntervalMS) * time.Millisecond
	}
	if resp.IdleThresholdMS > 0 {
		cfg.IdleThreshold = time.Duration(resp.IdleThresholdMS) * time.Millisecond
	}
	return cfg, nil
}

type activityRequest struct {
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Context   string `json:"context,omitempty"`
	ChainID   string `json:"chain_id,omitempty"`
}

// PostActivity records an activity against the session
func (c *Client) PostActivity(ctx context.Context, sessionID string, kind engine.ActivityKind, activity engine.ActivityContext) error {
	body := activityRequest{
		SessionID: sessionID,
		Kind:      string(kind),
		Context:   activity.Context,
		ChainID:   activity.ChainID,
	}
	return c.postJSON(ctx, "/api/universe/discovery/record", body, nil)
}

type revealRequest struct {
	SessionID string `json:"session_id"`
}

// PostReveal reveals one region, or every region when target is
// engine.RevealAllTarget
func (c *Client) PostReveal(ctx context.Context, sessionID, target string) error {
	path := "/api/universe/discovery/reveal/" + url.PathEscape(target)
	if target == engine.RevealAllTarget {
		path = "/api/universe/discovery/reveal-all"
	}
	return c.postJSON(ctx, path, revealRequest{SessionID: sessionID}, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return domain.NewTransportError("build request", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return domain.NewTransportError("encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return domain.NewTransportError("build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewTransportError(req.Method+" "+req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Body is bounded to keep error strings readable on HTML error pages
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return domain.NewTransportError(req.Method+" "+req.URL.Path,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewTransportError("decode response", err)
	}
	return nil
}
