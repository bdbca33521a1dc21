package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	goosc "github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/switcherd/internal/config"
	"github.com/jmylchreest/switcherd/internal/events"
	"github.com/jmylchreest/switcherd/internal/http/handlers"
	"github.com/jmylchreest/switcherd/internal/simulator"
	"github.com/jmylchreest/switcherd/pkg/client"
	"github.com/jmylchreest/switcherd/pkg/switcher"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Switcher.TickIntervalMillis = 20
	cfg.Logging.Level = "debug"
	return cfg
}

// startServer starts a server dialing sim and serves its API over httptest.
func startServer(t *testing.T, cfg *config.Config, sim *simulator.Switcher) (*Server, *httptest.Server) {
	t.Helper()
	var opts Options
	if sim != nil {
		opts.Dialer = sim.Dialer()
	}
	opts.Build = BuildInfo{Version: "1.0.0-test", Commit: "abc", BuildDate: "today"}

	srv, err := New(testLogger(), cfg, opts)
	require.NoError(t, err)
	require.NoError(t, srv.Start())

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, srv.Stop(ctx))
	})
	return srv, ts
}

func doJSON(t *testing.T, method, url string, body any, headers ...string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeSession(t *testing.T, data []byte) handlers.SessionResponse {
	t.Helper()
	var s handlers.SessionResponse
	require.NoError(t, json.Unmarshal(data, &s), string(data))
	return s
}

func TestSessionOverHTTP(t *testing.T) {
	sim := simulator.New(testLogger(), simulator.DefaultFixture())
	_, ts := startServer(t, testConfig(), sim)

	resp, data := doJSON(t, http.MethodGet, ts.URL+"/api/v1/session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "disconnected", decodeSession(t, data).Status)

	// No address given and none configured.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/v1/session/connect", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data = doJSON(t, http.MethodPost, ts.URL+"/api/v1/session/connect", map[string]string{"address": "sim"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	sess := decodeSession(t, data)
	assert.Equal(t, "connected", sess.Status)
	assert.Equal(t, "Simulated Switcher", sess.ProductName)
	assert.Equal(t, "Cam1", sess.State.ProgramInput)
	assert.Equal(t, "Cam2", sess.State.PreviewInput)
	assert.Len(t, sess.Inputs, 5)

	// A second connect is rejected while connected.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/v1/session/connect", map[string]string{"address": "sim"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, data = doJSON(t, http.MethodGet, ts.URL+"/api/v1/inputs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var inputs []handlers.InputResponse
	require.NoError(t, json.Unmarshal(data, &inputs))
	assert.Equal(t, handlers.InputResponse{ID: 1000, Name: "Color Bars"}, inputs[4])

	resp, data = doJSON(t, http.MethodPut, ts.URL+"/api/v1/session/program", map[string]string{"name": "Cam3"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, "Cam3", decodeSession(t, data).State.ProgramInput)
	assert.Equal(t, switcher.InputID(3), sim.Snapshot().Program)

	// Unknown names are recorded but never reach the switcher.
	resp, data = doJSON(t, http.MethodPut, ts.URL+"/api/v1/session/preview", map[string]string{"name": "Drone"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Drone", decodeSession(t, data).State.PreviewInput)
	assert.Equal(t, switcher.InputID(2), sim.Snapshot().Preview)

	resp, _ = doJSON(t, http.MethodPut, ts.URL+"/api/v1/session/transition", map[string]float64{"position": 1.5})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, data = doJSON(t, http.MethodPut, ts.URL+"/api/v1/session/transition", map[string]float64{"position": 0.4})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 0.4, decodeSession(t, data).State.TransitionPosition, 1e-9)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/v1/transition/auto", map[string]int{"frames": 12})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, uint32(12), sim.Snapshot().Rate)

	resp, data = doJSON(t, http.MethodPost, ts.URL+"/api/v1/session/disconnect", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sess = decodeSession(t, data)
	assert.Equal(t, "disconnected", sess.Status)
	assert.Equal(t, "requested", sess.LastDisconnect)
	assert.Empty(t, sess.Inputs)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/v1/transition/auto", map[string]int{"frames": 12})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAutoTransitionUnsupported(t *testing.T) {
	fixture := simulator.DefaultFixture()
	fixture.MixTransition = false
	sim := simulator.New(testLogger(), fixture)
	_, ts := startServer(t, testConfig(), sim)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/v1/session/connect", map[string]string{"address": "sim"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/v1/transition/auto", map[string]int{"frames": 10})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, data := doJSON(t, http.MethodGet, ts.URL+"/api/v1/session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "connected", decodeSession(t, data).Status)
}

func TestAutoConnectAndLinkLoss(t *testing.T) {
	sim := simulator.New(testLogger(), simulator.DefaultFixture())
	cfg := testConfig()
	cfg.Switcher.Address = "sim"
	cfg.Switcher.AutoConnect = true
	srv, _ := startServer(t, cfg, sim)

	require.Eventually(t, func() bool {
		return srv.Runner().Snapshot().Connected()
	}, 2*time.Second, 10*time.Millisecond)

	sim.SetOffline(true)
	require.Eventually(t, func() bool {
		snap := srv.Runner().Snapshot()
		return snap.Status == switcher.StatusDisconnected && snap.LastDisconnect == switcher.DisconnectLinkLost
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAPIKeyAuth(t *testing.T) {
	cfg := testConfig()
	cfg.API.APIKeys = []config.APIKey{{Name: "test", Key: "sw-test-key"}}
	_, ts := startServer(t, cfg, simulator.New(testLogger(), simulator.DefaultFixture()))

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/v1/session", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/v1/session", nil, "Authorization", "Bearer sw-test-key")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/v1/inputs", nil, "X-API-Key", "sw-test-key")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data := doJSON(t, http.MethodGet, ts.URL+"/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "ok")

	resp, data = doJSON(t, http.MethodGet, ts.URL+"/api/v1/version", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "1.0.0-test")

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/metrics", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, data = doJSON(t, http.MethodGet, ts.URL+"/api/v1/apikeys", nil, "Authorization", "Bearer sw-test-key")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(data), "sw-test-key")
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := startServer(t, testConfig(), simulator.New(testLogger(), simulator.DefaultFixture()))

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/v1/session/connect", map[string]string{"address": "sim"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data := doJSON(t, http.MethodGet, ts.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "switcherd_connected 1")
	assert.Contains(t, string(data), "switcherd_http_requests_total")
}

func TestLoggingLevel(t *testing.T) {
	_, ts := startServer(t, testConfig(), nil)

	resp, data := doJSON(t, http.MethodPut, ts.URL+"/api/v1/logging/level", map[string]string{"level": "warn"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	resp, data = doJSON(t, http.MethodGet, ts.URL+"/api/v1/logging/level", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"warn"`)

	resp, _ = doJSON(t, http.MethodPut, ts.URL+"/api/v1/logging/level", map[string]string{"level": "loud"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	doJSON(t, http.MethodPut, ts.URL+"/api/v1/logging/level", map[string]string{"level": "info"})
}

func TestWebSocketStream(t *testing.T) {
	sim := simulator.New(testLogger(), simulator.DefaultFixture())
	_, ts := startServer(t, testConfig(), sim)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() events.Event {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var evt events.Event
		require.NoError(t, json.Unmarshal(msg, &evt))
		return evt
	}

	hello := read()
	assert.Equal(t, events.SessionSnapshot, hello.Type)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/v1/session/connect", map[string]string{"address": "sim"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var types []events.EventType
	for len(types) < 2 {
		types = append(types, read().Type)
	}
	assert.Equal(t, []events.EventType{events.SessionConnecting, events.SessionConnected}, types)

	// A change made on the switcher panel shows up on the next tick.
	sim.Cut(4)
	for {
		evt := read()
		if evt.Type != events.ProgramChanged {
			continue
		}
		var pe switcher.PropertyEvent
		require.NoError(t, json.Unmarshal(evt.Data, &pe))
		assert.Equal(t, "Cam4", pe.Name)
		break
	}
}

func TestOSCSurface(t *testing.T) {
	sim := simulator.New(testLogger(), simulator.DefaultFixture())
	cfg := testConfig()
	cfg.OSC.ListenAddress = "127.0.0.1:0"
	srv, _ := startServer(t, cfg, sim)

	addr, err := net.ResolveUDPAddr("udp", srv.OSCAddr())
	require.NoError(t, err)
	client := goosc.NewClient("127.0.0.1", addr.Port)

	require.NoError(t, client.Send(goosc.NewMessage("/switcher/connect", "sim")))
	require.Eventually(t, func() bool {
		return srv.Runner().Snapshot().Connected()
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, client.Send(goosc.NewMessage("/switcher/preview", "Color Bars")))
	assert.Eventually(t, func() bool {
		return sim.Snapshot().Preview == 1000
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSimulatorFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Simulator.Fixture = "../simulator/testdata/studio.yaml"
	cfg.Switcher.AutoConnect = true
	srv, _ := startServer(t, cfg, nil)

	require.NotNil(t, srv.Simulator())
	require.Eventually(t, func() bool {
		return srv.Runner().Snapshot().Connected()
	}, 2*time.Second, 10*time.Millisecond)

	snap := srv.Runner().Snapshot()
	assert.Equal(t, SimulatorAddress, snap.Address)
	assert.Equal(t, "Studio Switcher", snap.ProductName)
	assert.Equal(t, "Wide", snap.State.PreviewInputName)
}

func TestBuiltInSimulator(t *testing.T) {
	cfg := testConfig()
	cfg.Simulator.Enabled = true
	srv, _ := startServer(t, cfg, nil)
	require.NotNil(t, srv.Simulator())

	require.NoError(t, srv.Runner().Connect(context.Background(), ""))
	assert.Equal(t, "Simulated Switcher", srv.Runner().Snapshot().ProductName)
}

func TestNewRejectsMissingFixture(t *testing.T) {
	cfg := testConfig()
	cfg.Simulator.Fixture = "testdata/does-not-exist.yaml"
	_, err := New(testLogger(), cfg, Options{})
	assert.Error(t, err)
}

func TestStopDisconnects(t *testing.T) {
	sim := simulator.New(testLogger(), simulator.DefaultFixture())
	cfg := testConfig()
	cfg.API.ListenAddress = "127.0.0.1:0"
	srv, err := New(testLogger(), cfg, Options{Dialer: sim.Dialer()})
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	require.NotEmpty(t, srv.HTTPAddr())

	resp, _ := doJSON(t, http.MethodPost, "http://"+srv.HTTPAddr()+"/api/v1/session/connect", map[string]string{"address": "sim"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	assert.NoError(t, srv.Stop(ctx))

	snap := srv.Runner().Snapshot()
	assert.Equal(t, switcher.StatusDisconnected, snap.Status)
	assert.Equal(t, switcher.DisconnectRequested, snap.LastDisconnect)
}

func TestClientAgainstServer(t *testing.T) {
	sim := simulator.New(testLogger(), simulator.DefaultFixture())
	_, ts := startServer(t, testConfig(), sim)
	c := client.NewHTTP(testLogger(), ts.URL+"/", "")
	ctx := context.Background()

	v, err := c.GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0-test", v.Version)

	sess, err := c.Connect(ctx, "sim")
	require.NoError(t, err)
	assert.Equal(t, "connected", sess.Status)
	require.NotNil(t, sess.ConnectedAt)

	_, err = c.Connect(ctx, "sim")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)

	sess, err = c.SetProgram(ctx, "Cam4")
	require.NoError(t, err)
	assert.Equal(t, "Cam4", sess.State.ProgramInput)

	inputs, err := c.ListInputs(ctx)
	require.NoError(t, err)
	assert.Len(t, inputs, 5)

	var seen []string
	watchCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	err = c.Watch(watchCtx, []string{string(events.SessionSnapshot)}, func(e client.Event) error {
		seen = append(seen, e.Type)
		return client.ErrStopWatching
	})
	require.NoError(t, err)
	assert.Equal(t, []string{string(events.SessionSnapshot)}, seen)

	sess, err = c.Disconnect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "disconnected", sess.Status)
}
