// Package client is an HTTP client for the switcherd API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Input is a switcher input as reported by the daemon.
type Input struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ControlState mirrors the daemon's control state.
type ControlState struct {
	ProgramInput       string  `json:"program_input"`
	PreviewInput       string  `json:"preview_input"`
	ProgramInputID     int64   `json:"program_input_id"`
	PreviewInputID     int64   `json:"preview_input_id"`
	TransitionPosition float64 `json:"transition_position"`
}

// Session is the daemon's view of the switcher session.
type Session struct {
	Status         string       `json:"status"`
	Address        string       `json:"address,omitempty"`
	ProductName    string       `json:"product_name,omitempty"`
	ConnectionID   string       `json:"connection_id,omitempty"`
	ConnectedAt    *time.Time   `json:"connected_at,omitempty"`
	LastDisconnect string       `json:"last_disconnect"`
	State          ControlState `json:"state"`
	Inputs         []Input      `json:"inputs"`
}

// Discovered is a switcher found by the daemon's mDNS browse.
type Discovered struct {
	Instance    string `json:"instance"`
	Address     string `json:"address"`
	ProductName string `json:"product_name,omitempty"`
}

// Version is the daemon build information.
type Version struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

// APIKey is a configured key without its secret.
type APIKey struct {
	Name     string `json:"name"`
	Prefix   string `json:"prefix"`
	Disabled bool   `json:"disabled"`
}

// ClientInterface defines the methods for interacting with switcherd.
// Used for testability and mocking in the CLI.
type ClientInterface interface {
	GetVersion(ctx context.Context) (*Version, error)
	GetSession(ctx context.Context) (*Session, error)
	Connect(ctx context.Context, address string) (*Session, error)
	Disconnect(ctx context.Context) (*Session, error)
	ListInputs(ctx context.Context) ([]Input, error)
	SetProgram(ctx context.Context, name string) (*Session, error)
	SetPreview(ctx context.Context, name string) (*Session, error)
	SetTransition(ctx context.Context, position float64) (*Session, error)
	AutoTransition(ctx context.Context, frames uint32) (*Session, error)
	Discover(ctx context.Context, timeout time.Duration) ([]Discovered, error)
	ListAPIKeys(ctx context.Context) ([]APIKey, error)
	GetLogLevel(ctx context.Context) (string, error)
	SetLogLevel(ctx context.Context, level string) (string, error)
	Watch(ctx context.Context, types []string, fn func(Event) error) error
}

// APIError is a non-2xx response from the daemon.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, e.Detail)
}

// HTTPClient represents an HTTP connection to switcherd
type HTTPClient struct {
	logger  *slog.Logger
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ ClientInterface = (*HTTPClient)(nil)

// NewHTTP creates a new HTTP client
func NewHTTP(logger *slog.Logger, baseURL string, apiKey string) *HTTPClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		logger:  logger,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// request performs an HTTP request and decodes the JSON response
func (c *HTTPClient) request(ctx context.Context, method, path string, body any, resp any) error {
	u := c.baseURL + path
	c.logger.Debug("HTTP request", "method", method, "url", u)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	httpResp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("HTTP request failed", "error", err)
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		c.logger.Debug("HTTP error response", "status", httpResp.StatusCode, "body", string(respBody))
		return &APIError{StatusCode: httpResp.StatusCode, Detail: errorDetail(respBody)}
	}

	if resp != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, resp); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// errorDetail extracts the message from an RFC 9457 problem body.
func errorDetail(body []byte) string {
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &problem); err == nil {
		if problem.Detail != "" {
			return problem.Detail
		}
		if problem.Title != "" {
			return problem.Title
		}
	}
	return strings.TrimSpace(string(body))
}

func (c *HTTPClient) session(ctx context.Context, method, path string, body any) (*Session, error) {
	var s Session
	if err := c.request(ctx, method, path, body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetVersion returns the running daemon's version information.
func (c *HTTPClient) GetVersion(ctx context.Context) (*Version, error) {
	var v Version
	if err := c.request(ctx, http.MethodGet, "/api/v1/version", nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// GetSession returns the session snapshot.
func (c *HTTPClient) GetSession(ctx context.Context) (*Session, error) {
	return c.session(ctx, http.MethodGet, "/api/v1/session", nil)
}

// Connect connects the daemon to address, or its configured switcher when empty.
func (c *HTTPClient) Connect(ctx context.Context, address string) (*Session, error) {
	body := map[string]any{}
	if address != "" {
		body["address"] = address
	}
	return c.session(ctx, http.MethodPost, "/api/v1/session/connect", body)
}

// Disconnect disconnects the daemon from the switcher.
func (c *HTTPClient) Disconnect(ctx context.Context) (*Session, error) {
	return c.session(ctx, http.MethodPost, "/api/v1/session/disconnect", nil)
}

// ListInputs returns the input catalog.
func (c *HTTPClient) ListInputs(ctx context.Context) ([]Input, error) {
	var inputs []Input
	if err := c.request(ctx, http.MethodGet, "/api/v1/inputs", nil, &inputs); err != nil {
		return nil, err
	}
	if inputs == nil {
		inputs = []Input{}
	}
	return inputs, nil
}

// SetProgram selects the program input by name.
func (c *HTTPClient) SetProgram(ctx context.Context, name string) (*Session, error) {
	return c.session(ctx, http.MethodPut, "/api/v1/session/program", map[string]any{"name": name})
}

// SetPreview selects the preview input by name.
func (c *HTTPClient) SetPreview(ctx context.Context, name string) (*Session, error) {
	return c.session(ctx, http.MethodPut, "/api/v1/session/preview", map[string]any{"name": name})
}

// SetTransition moves the transition lever.
func (c *HTTPClient) SetTransition(ctx context.Context, position float64) (*Session, error) {
	return c.session(ctx, http.MethodPut, "/api/v1/session/transition", map[string]any{"position": position})
}

// AutoTransition runs a timed mix transition.
func (c *HTTPClient) AutoTransition(ctx context.Context, frames uint32) (*Session, error) {
	return c.session(ctx, http.MethodPost, "/api/v1/transition/auto", map[string]any{"frames": frames})
}

// Discover asks the daemon to browse for switchers. A zero timeout uses the
// daemon's configured browse time.
func (c *HTTPClient) Discover(ctx context.Context, timeout time.Duration) ([]Discovered, error) {
	path := "/api/v1/discover"
	if secs := int(timeout / time.Second); secs > 0 {
		path += "?" + url.Values{"timeout": {strconv.Itoa(secs)}}.Encode()
	}
	var found []Discovered
	if err := c.request(ctx, http.MethodGet, path, nil, &found); err != nil {
		return nil, err
	}
	return found, nil
}

// ListAPIKeys returns the configured API keys.
func (c *HTTPClient) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	var keys []APIKey
	if err := c.request(ctx, http.MethodGet, "/api/v1/apikeys", nil, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// GetLogLevel returns the daemon's log level.
func (c *HTTPClient) GetLogLevel(ctx context.Context) (string, error) {
	var resp struct {
		Level string `json:"level"`
	}
	if err := c.request(ctx, http.MethodGet, "/api/v1/logging/level", nil, &resp); err != nil {
		return "", err
	}
	return resp.Level, nil
}

// SetLogLevel changes the daemon's log level.
func (c *HTTPClient) SetLogLevel(ctx context.Context, level string) (string, error) {
	var resp struct {
		Level string `json:"level"`
	}
	if err := c.request(ctx, http.MethodPut, "/api/v1/logging/level", map[string]any{"level": level}, &resp); err != nil {
		return "", err
	}
	return resp.Level, nil
}
