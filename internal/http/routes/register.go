package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/switcherd/internal/http/mw"
)

// Register registers all API routes with the given Huma API instance.
// Pass real handler implementations for the main server, or stub implementations
// for OpenAPI generation.
func Register(api huma.API, h *Handlers) {
	// --- Health ---
	mw.PublicGet(api, "/api/v1/health", h.HealthCheck,
		mw.WithTags("Health"),
		mw.WithSummary("Health check"),
		mw.WithDescription("Returns service health status. This endpoint does not require authentication."),
		mw.WithOperationID("healthCheck"))

	mw.HiddenGet(api, "/healthz", h.HealthCheck)

	// --- Version ---
	mw.PublicGet(api, "/api/v1/version", h.VersionCheck,
		mw.WithTags("Version"),
		mw.WithSummary("Daemon version"),
		mw.WithDescription("Returns the running daemon's version, commit, and build date. This endpoint does not require authentication."),
		mw.WithOperationID("getVersion"))

	// --- Session ---
	mw.ProtectedGet(api, "/api/v1/session", h.Session.GetSession,
		mw.WithTags("Session"),
		mw.WithSummary("Get the session"),
		mw.WithDescription("Returns the connection status, mirrored control state and input catalog."),
		mw.WithOperationID("getSession"))

	mw.ProtectedPost(api, "/api/v1/session/connect", h.Session.Connect,
		mw.WithTags("Session"),
		mw.WithSummary("Connect to a switcher"),
		mw.WithDescription("Connects to the given address, or the configured one, and waits for the handshake. Returns 409 while a connection exists or is in progress."),
		mw.WithOperationID("connect"))

	mw.ProtectedPost(api, "/api/v1/session/disconnect", h.Session.Disconnect,
		mw.WithTags("Session"),
		mw.WithSummary("Disconnect"),
		mw.WithDescription("Disconnects and cancels any scheduled reconnect."),
		mw.WithOperationID("disconnect"))

	mw.ProtectedGet(api, "/api/v1/inputs", h.Session.ListInputs,
		mw.WithTags("Session"),
		mw.WithSummary("List inputs"),
		mw.WithDescription("Returns the input catalog captured at connect time. Empty when disconnected."),
		mw.WithOperationID("listInputs"))

	mw.ProtectedPut(api, "/api/v1/session/program", h.Session.SetProgram,
		mw.WithTags("Session"),
		mw.WithSummary("Set program input"),
		mw.WithDescription("Selects the program input by display name. Unknown names are recorded but not sent to the switcher."),
		mw.WithOperationID("setProgram"))

	mw.ProtectedPut(api, "/api/v1/session/preview", h.Session.SetPreview,
		mw.WithTags("Session"),
		mw.WithSummary("Set preview input"),
		mw.WithDescription("Selects the preview input by display name. Unknown names are recorded but not sent to the switcher."),
		mw.WithOperationID("setPreview"))

	mw.ProtectedPut(api, "/api/v1/session/transition", h.Session.SetTransition,
		mw.WithTags("Session"),
		mw.WithSummary("Set transition position"),
		mw.WithOperationID("setTransitionPosition"))

	// --- Transition ---
	mw.ProtectedPost(api, "/api/v1/transition/auto", h.Session.AutoTransition,
		mw.WithTags("Transition"),
		mw.WithSummary("Run an auto transition"),
		mw.WithDescription("Sets the mix rate and starts an auto transition. Returns 422 when the switcher has no mix transition capability."),
		mw.WithOperationID("autoTransition"))

	// --- Discovery ---
	mw.ProtectedGet(api, "/api/v1/discover", h.Discovery.Discover,
		mw.WithTags("Discovery"),
		mw.WithSummary("Discover switchers"),
		mw.WithDescription("Browses mDNS for switcher gateways for the given number of seconds."),
		mw.WithOperationID("discover"))

	// --- API Keys ---
	mw.ProtectedGet(api, "/api/v1/apikeys", h.APIKey.ListAPIKeys,
		mw.WithTags("API Keys"),
		mw.WithSummary("List API keys"),
		mw.WithOperationID("listApiKeys"))

	// --- Logging ---
	mw.ProtectedGet(api, "/api/v1/logging/level", h.Logging.GetLevel,
		mw.WithTags("Logging"),
		mw.WithSummary("Get global log level"),
		mw.WithOperationID("getLogLevel"))

	mw.ProtectedPut(api, "/api/v1/logging/level", h.Logging.SetLevel,
		mw.WithTags("Logging"),
		mw.WithSummary("Set global log level"),
		mw.WithDescription("Changes the global log level at runtime. Valid values: debug, info, warn, error."),
		mw.WithOperationID("setLogLevel"))
}
