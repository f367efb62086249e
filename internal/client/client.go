// Package client is a small REST client for the jdgen API, used by jdctl.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jharjadi/jdgen/internal/model"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 * 1024

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// Unwrap maps the API error code back onto the domain sentinels so callers
// can use errors.Is the same way they would in-process.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "invalid_level":
		return model.ErrInvalidLevelFormat
	case "invalid_identifier":
		return model.ErrInvalidIdentifier
	case "bad_request":
		return model.ErrInvalidInput
	case "not_found":
		return model.ErrNotFound
	case "forbidden":
		return model.ErrForbidden
	case "upstream_error":
		return model.ErrUpstream
	}
	return nil
}

// Client talks to a jdgen server.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for baseURL. apiKey may be empty when the server runs
// with auth disabled.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 180 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Generate calls POST /v1/generate.
func (c *Client) Generate(ctx context.Context, req model.GenerateRequest) (*model.GenerateResponse, error) {
	var resp model.GenerateResponse
	if err := c.do(ctx, http.MethodPost, "/v1/generate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Level calls POST /v1/level.
func (c *Client) Level(ctx context.Context, req model.LevelRequest) (*model.LevelResponse, error) {
	var resp model.LevelResponse
	if err := c.do(ctx, http.MethodPost, "/v1/level", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ingest calls POST /v1/ingest.
func (c *Client) Ingest(ctx context.Context, req model.IngestRequest) (*model.IngestResponse, error) {
	var resp model.IngestResponse
	if err := c.do(ctx, http.MethodPost, "/v1/ingest", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Guides calls GET /v1/guides.
func (c *Client) Guides(ctx context.Context) ([]model.GuideInfo, error) {
	var resp model.GuideListResponse
	if err := c.do(ctx, http.MethodGet, "/v1/guides", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Guides, nil
}

// Health calls GET /health. A 503 is returned as a response, not an error,
// so callers can show which dependency is down.
func (c *Client) Health(ctx context.Context) (*model.HealthResponse, error) {
	var resp model.HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, &resp)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable {
		return &model.HealthResponse{Status: "unhealthy", DB: "unreachable"}, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Token exchanges the client's API key for a JWT.
func (c *Client) Token(ctx context.Context) (*model.TokenResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("an API key is required to request a token")
	}
	var resp model.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/token", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{Status: resp.StatusCode}

	var body model.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		apiErr.Code = body.Error
		apiErr.Message = body.Message
		return apiErr
	}
	apiErr.Code = http.StatusText(resp.StatusCode)
	apiErr.Message = strings.TrimSpace(string(raw))
	return apiErr
}
