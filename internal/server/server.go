// Package server composes the switcherd daemon: the control runner, the HTTP
// API with its websocket event stream, the OSC surface and, when configured,
// the in-process simulator.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmylchreest/switcherd/internal/apikey"
	"github.com/jmylchreest/switcherd/internal/config"
	"github.com/jmylchreest/switcherd/internal/control"
	"github.com/jmylchreest/switcherd/internal/events"
	"github.com/jmylchreest/switcherd/internal/http/handlers"
	"github.com/jmylchreest/switcherd/internal/http/mw"
	"github.com/jmylchreest/switcherd/internal/http/routes"
	"github.com/jmylchreest/switcherd/internal/osc"
	"github.com/jmylchreest/switcherd/internal/simulator"
	"github.com/jmylchreest/switcherd/internal/ws"
	"github.com/jmylchreest/switcherd/pkg/switcher"
)

// SimulatorAddress is the default switcher address when simulating.
const SimulatorAddress = "simulator"

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// Options customise a Server beyond its configuration.
type Options struct {
	// Dialer overrides how the session reaches the switcher. When nil the
	// simulator is used if enabled in the config, otherwise the HTTP gateway.
	Dialer switcher.Dialer
	Build  BuildInfo
}

// Server manages the switcherd daemon.
type Server struct {
	logger        *slog.Logger
	cfg           *config.Config
	build         BuildInfo
	eventBus      *events.Bus
	session       *switcher.Session
	runner        *control.Runner
	apikeyManager *apikey.Manager
	sim           *simulator.Switcher

	rootCtx    context.Context
	rootCancel context.CancelFunc
	wg         sync.WaitGroup

	httpServer   *http.Server
	httpListener net.Listener
	oscConn      net.PacketConn
	feedback     *osc.Feedback
	stopOnce     sync.Once
}

// New creates a new server instance.
func New(logger *slog.Logger, cfg *config.Config, opts Options) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Build.Version == "" {
		opts.Build.Version = "dev"
	}

	s := &Server{
		logger:        logger,
		cfg:           cfg,
		build:         opts.Build,
		eventBus:      events.NewBus(),
		apikeyManager: apikey.NewManager(cfg, logger),
	}

	dialer := opts.Dialer
	if dialer == nil {
		if cfg.Simulator.Active() {
			fixture, err := simulator.LoadFixture(cfg.Simulator.Fixture)
			if err != nil {
				return nil, err
			}
			s.sim = simulator.New(logger, fixture)
			dialer = s.sim.Dialer()
			logger.Info("Using simulated switcher", "fixture", cfg.Simulator.Fixture, "product", fixture.Product)
		} else {
			dialer = switcher.HTTPDialer{
				Logger:     logger,
				HTTPClient: &http.Client{Timeout: config.DefaultDeviceTimeout},
			}
		}
	}

	s.session = switcher.NewSession(logger, dialer, switcher.ControlState{
		ProgramInputName:   cfg.Switcher.ProgramInput,
		PreviewInputName:   cfg.Switcher.PreviewInput,
		TransitionPosition: config.ClampTransitionPosition(cfg.Switcher.TransitionPosition),
	})
	s.session.SetEventBus(s.eventBus)

	address := cfg.Switcher.Address
	if address == "" && s.sim != nil {
		address = SimulatorAddress
	}
	s.runner = control.NewRunner(logger, s.session, control.RunnerConfig{
		TickInterval:      cfg.Switcher.TickInterval(),
		ReconnectInterval: cfg.Switcher.ReconnectEvery(),
		Address:           address,
		AutoConnect:       cfg.Switcher.AutoConnect,
	})

	s.rootCtx, s.rootCancel = context.WithCancel(context.Background())
	return s, nil
}

// Runner returns the control runner owning the session.
func (s *Server) Runner() *control.Runner {
	return s.runner
}

// Events returns the daemon's event bus.
func (s *Server) Events() *events.Bus {
	return s.eventBus
}

// Simulator returns the in-process simulator, or nil when dialing real hardware.
func (s *Server) Simulator() *simulator.Switcher {
	return s.sim
}

// HTTPAddr returns the bound API address, or "" when the API is disabled.
func (s *Server) HTTPAddr() string {
	if s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// OSCAddr returns the bound OSC address, or "" when OSC is disabled.
func (s *Server) OSCAddr() string {
	if s.oscConn == nil {
		return ""
	}
	return s.oscConn.LocalAddr().String()
}

// Start begins the server operations: the control loop, then each enabled surface.
func (s *Server) Start() error {
	s.logger.Info("Starting switcherd server")

	s.goSafe("control runner", func() {
		if err := s.runner.Run(s.rootCtx); err != nil {
			s.logger.Error("Control runner failed", "error", err)
		}
	})

	if s.sim != nil && s.cfg.Simulator.Fixture != "" {
		s.goSafe("fixture watcher", func() {
			if err := simulator.WatchFixture(s.rootCtx, s.logger, s.cfg.Simulator.Fixture, s.sim); err != nil {
				s.logger.Warn("Fixture watcher stopped", "error", err)
			}
		})
	}

	if err := s.startHTTP(); err != nil {
		s.Stop(context.Background())
		return err
	}
	if err := s.startOSC(); err != nil {
		s.Stop(context.Background())
		return err
	}
	return nil
}

func (s *Server) startHTTP() error {
	addr := s.cfg.API.ListenAddress
	if addr == "" {
		return nil
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.httpListener = listener
	s.logger.Info("Starting HTTP API server", "address", listener.Addr().String())

	s.httpServer = &http.Server{
		Handler:     s.Handler(),
		ReadTimeout: 15 * time.Second,
		// Connect waits for the switcher handshake; leave headroom.
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.goSafe("HTTP server", func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", "error", err)
		}
		s.logger.Info("HTTP server stopped")
	})
	return nil
}

func (s *Server) startOSC() error {
	if addr := s.cfg.OSC.FeedbackAddress; addr != "" {
		fb, err := osc.NewFeedback(s.logger, s.eventBus, addr)
		if err != nil {
			return err
		}
		s.feedback = fb
	}

	addr := s.cfg.OSC.ListenAddress
	if addr == "" {
		return nil
	}
	oscSrv, err := osc.NewServer(s.logger, s.runner)
	if err != nil {
		return err
	}
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen for OSC on %s: %w", addr, err)
	}
	s.oscConn = conn
	s.goSafe("OSC server", func() {
		if err := oscSrv.Serve(s.rootCtx, conn); err != nil {
			s.logger.Error("OSC server failed", "error", err)
		}
	})
	return nil
}

// Handler builds the HTTP API: huma routes, the websocket stream and /metrics.
// The websocket hub is started on the server's root context.
func (s *Server) Handler() http.Handler {
	sessionHandler := &handlers.SessionHandler{Control: s.runner}
	discoveryHandler := &handlers.DiscoveryHandler{Logger: s.logger, Timeout: s.cfg.Discovery.BrowseTimeout()}
	apiKeyHandler := &handlers.APIKeyHandler{Manager: s.apikeyManager}
	loggingHandler := &handlers.LoggingHandler{Logger: s.logger}

	// Rate limiting runs at Chi level (before auth) to protect against brute-force.
	router := chi.NewRouter()
	router.Use(mw.RequestLogging(s.logger))
	router.Use(mw.RateLimitByIP(mw.RateLimitConfig{RequestsPerMinute: s.cfg.API.RequestsPerMinute}))

	api := humachi.New(router, routes.NewHumaConfig(s.build.Version, ""))

	// Public routes (health, OpenAPI spec, docs) have no Security set and
	// pass through unauthenticated.
	api.UseMiddleware(mw.HumaAuth(api, s.logger, s.apikeyManager))

	routes.Register(api, &routes.Handlers{
		HealthCheck:  handlers.HealthCheck,
		VersionCheck: handlers.VersionCheck(s.build.Version, s.build.Commit, s.build.BuildDate),
		Session:      sessionHandler,
		Discovery:    discoveryHandler,
		APIKey:       apiKeyHandler,
		Logging:      loggingHandler,
	})

	rawAuth := mw.RawAPIKeyAuth(s.logger, s.apikeyManager)

	wsHub := ws.NewHub(s.logger, s.eventBus, func() any {
		return handlers.SessionFromSnapshot(s.runner.Snapshot())
	})
	s.goSafe("WebSocket hub", func() { wsHub.Run(s.rootCtx) })
	router.With(rawAuth).Get("/api/v1/ws", ws.Handler(wsHub, s.logger))

	router.With(rawAuth).Handle("/metrics", promhttp.Handler())

	return router
}

// Stop gracefully shuts down the server. The session is disconnected before
// Stop returns.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		s.logger.Info("Shutting down switcherd server")

		if s.httpServer != nil {
			s.logger.Info("Shutting down HTTP server")
			if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
				err = fmt.Errorf("HTTP server shutdown failed: %w", shutdownErr)
			}
		}
		if s.feedback != nil {
			s.feedback.Close()
		}

		s.rootCancel()

		s.logger.Info("Waiting for services to stop...")
		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			s.logger.Info("switcherd server shut down gracefully")
		case <-ctx.Done():
			err = errors.Join(err, fmt.Errorf("timed out waiting for services: %w", ctx.Err()))
		}
	})
	return err
}

// goSafe runs fn on a tracked goroutine, logging instead of crashing on panic.
func (s *Server) goSafe(name string, fn func()) {
	s.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in "+name, "recover", r)
			}
		}()
		fn()
	})
}
