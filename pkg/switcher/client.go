package switcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DefaultPort is the switcher gateway's default HTTP port.
const DefaultPort = 9910

// FeatureMixTransition is advertised in Info.Features by gateways that can
// run timed mix transitions.
const FeatureMixTransition = "mix-transition"

// Info describes the switcher behind a gateway.
type Info struct {
	ProductName     string   `json:"productName"`
	FirmwareVersion string   `json:"firmwareVersion,omitempty"`
	Features        []string `json:"features"`
}

// HasFeature reports whether f is listed in the gateway's features.
func (i Info) HasFeature(f string) bool {
	return slices.Contains(i.Features, f)
}

// InputList is the body of GET /inputs.
type InputList struct {
	Inputs []Input `json:"inputs"`
}

// MixEffectState is the body of GET /me/0.
type MixEffectState struct {
	Program  InputID `json:"program"`
	Preview  InputID `json:"preview"`
	Position float64 `json:"position"`
}

// InputSelection is the body of PUT /me/0/program and /me/0/preview.
type InputSelection struct {
	Input InputID `json:"input"`
}

// TransitionPositionBody is the body of PUT /me/0/transition/position.
type TransitionPositionBody struct {
	Position float64 `json:"position"`
}

// MixRate is the body of PUT /me/0/transition/mix.
type MixRate struct {
	Rate uint32 `json:"rate"`
}

// GatewayClient handles HTTP communication with a switcher gateway.
type GatewayClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewGatewayClient creates a client for the gateway at host:port.
func NewGatewayClient(host string, port int, logger *slog.Logger, httpClient ...*http.Client) *GatewayClient {
	if logger == nil {
		logger = slog.Default()
	}
	var hc *http.Client
	if len(httpClient) > 0 && httpClient[0] != nil {
		hc = httpClient[0]
	} else {
		hc = &http.Client{Timeout: 5 * time.Second}
	}
	return &GatewayClient{
		baseURL:    fmt.Sprintf("http://%s/switcher", net.JoinHostPort(host, strconv.Itoa(port))),
		httpClient: hc,
		logger:     logger,
	}
}

// GetInfo retrieves the product name and feature list.
func (c *GatewayClient) GetInfo(ctx context.Context) (*Info, error) {
	var info Info
	if err := c.do(ctx, http.MethodGet, "/info", nil, &info); err != nil {
		return nil, fmt.Errorf("failed to get info: %w", err)
	}
	return &info, nil
}

// GetInputs enumerates the switcher's inputs.
func (c *GatewayClient) GetInputs(ctx context.Context) ([]Input, error) {
	var list InputList
	if err := c.do(ctx, http.MethodGet, "/inputs", nil, &list); err != nil {
		return nil, fmt.Errorf("failed to get inputs: %w", err)
	}
	return list.Inputs, nil
}

// GetMixEffect reads program, preview and transition position of ME 0.
func (c *GatewayClient) GetMixEffect(ctx context.Context) (*MixEffectState, error) {
	var st MixEffectState
	if err := c.do(ctx, http.MethodGet, "/me/0", nil, &st); err != nil {
		return nil, fmt.Errorf("failed to get mix effect state: %w", err)
	}
	return &st, nil
}

// SetProgram selects the program input.
func (c *GatewayClient) SetProgram(ctx context.Context, id InputID) error {
	return c.do(ctx, http.MethodPut, "/me/0/program", InputSelection{Input: id}, nil)
}

// SetPreview selects the preview input.
func (c *GatewayClient) SetPreview(ctx context.Context, id InputID) error {
	return c.do(ctx, http.MethodPut, "/me/0/preview", InputSelection{Input: id}, nil)
}

// SetTransitionPosition moves the transition lever.
func (c *GatewayClient) SetTransitionPosition(ctx context.Context, position float64) error {
	return c.do(ctx, http.MethodPut, "/me/0/transition/position", TransitionPositionBody{Position: position}, nil)
}

// SetMixRate sets the mix transition duration in frames.
func (c *GatewayClient) SetMixRate(ctx context.Context, frames uint32) error {
	return c.do(ctx, http.MethodPut, "/me/0/transition/mix", MixRate{Rate: frames}, nil)
}

// StartAuto starts an auto transition.
func (c *GatewayClient) StartAuto(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/me/0/transition/auto", nil, nil)
}

// Ping is a cheap round trip.
func (c *GatewayClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ping", nil, nil)
}

func (c *GatewayClient) do(ctx context.Context, method, path string, in, out any) error {
	url := c.baseURL + path

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("switcher: request failed", "method", method, "url", url, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, bytes.TrimSpace(msg))
		c.logger.Debug("switcher: request failed", "method", method, "url", url, "error", err)
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.logger.Debug("switcher: decode failed", "method", method, "url", url, "error", err)
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	c.logger.Debug("switcher: response", "method", method, "url", url, "status", resp.StatusCode)
	return nil
}

// HTTPDialer dials switcher gateways over HTTP.
type HTTPDialer struct {
	Logger     *slog.Logger
	HTTPClient *http.Client
}

// Dial connects to the gateway at address ("host" or "host:port") and reads
// its info. Without a port DefaultPort is used.
func (d HTTPDialer) Dial(ctx context.Context, address string) (Device, error) {
	host, port, err := SplitAddress(address)
	if err != nil {
		return nil, err
	}
	client := NewGatewayClient(host, port, d.Logger, d.HTTPClient)
	info, err := client.GetInfo(ctx)
	if err != nil {
		return nil, err
	}
	return &gatewayDevice{client: client, info: *info}, nil
}

// SplitAddress splits a switcher address into host and port, defaulting the
// port to DefaultPort.
func SplitAddress(address string) (string, int, error) {
	if address == "" {
		return "", 0, fmt.Errorf("empty address")
	}
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		// No port (or a bare IPv6 literal).
		return strings.Trim(address, "[]"), DefaultPort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port in address %q", address)
	}
	return host, port, nil
}

// gatewayDevice adapts a GatewayClient to Device and MixTransitioner.
type gatewayDevice struct {
	client *GatewayClient
	info   Info
}

func (g *gatewayDevice) ProductName() string { return g.info.ProductName }

func (g *gatewayDevice) Inputs(ctx context.Context) ([]Input, error) {
	return g.client.GetInputs(ctx)
}

func (g *gatewayDevice) ProgramInput(ctx context.Context) (InputID, error) {
	st, err := g.client.GetMixEffect(ctx)
	if err != nil {
		return 0, err
	}
	return st.Program, nil
}

func (g *gatewayDevice) PreviewInput(ctx context.Context) (InputID, error) {
	st, err := g.client.GetMixEffect(ctx)
	if err != nil {
		return 0, err
	}
	return st.Preview, nil
}

func (g *gatewayDevice) TransitionPosition(ctx context.Context) (float64, error) {
	st, err := g.client.GetMixEffect(ctx)
	if err != nil {
		return 0, err
	}
	return st.Position, nil
}

func (g *gatewayDevice) SetProgramInput(ctx context.Context, id InputID) error {
	return g.client.SetProgram(ctx, id)
}

func (g *gatewayDevice) SetPreviewInput(ctx context.Context, id InputID) error {
	return g.client.SetPreview(ctx, id)
}

func (g *gatewayDevice) SetTransitionPosition(ctx context.Context, position float64) error {
	return g.client.SetTransitionPosition(ctx, position)
}

func (g *gatewayDevice) Probe(ctx context.Context) error {
	return g.client.Ping(ctx)
}

// Close is a no-op; the gateway is stateless.
func (g *gatewayDevice) Close() error { return nil }

func (g *gatewayDevice) SupportsMixTransition() bool {
	return g.info.HasFeature(FeatureMixTransition)
}

func (g *gatewayDevice) SetTransitionRate(ctx context.Context, frames uint32) error {
	return g.client.SetMixRate(ctx, frames)
}

func (g *gatewayDevice) StartAutoTransition(ctx context.Context) error {
	return g.client.StartAuto(ctx)
}
