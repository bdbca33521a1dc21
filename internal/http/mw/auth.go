package mw

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/switcherd/internal/apikey"
)

// extractKey reads the API key from Authorization: Bearer, falling back to X-API-Key.
func extractKey(authorization, xAPIKey string) string {
	const bearerPrefix = "Bearer "
	if strings.HasPrefix(authorization, bearerPrefix) {
		return authorization[len(bearerPrefix):]
	}
	return xAPIKey
}

// check validates key and returns the user-facing failure message, or "" when
// the request may proceed.
func check(logger *slog.Logger, mgr *apikey.Manager, key, method, path, remote string) string {
	if !mgr.Enabled() {
		return ""
	}
	if key == "" {
		logger.Warn("API key missing",
			"method", method,
			"path", path,
			"remote_addr", remote,
		)
		return "Unauthorized: API key required"
	}
	validKey, err := mgr.ValidateAPIKey(key)
	if err != nil {
		logger.Warn("Invalid API key used",
			"key_prefix", apikey.KeyPrefix(key),
			"error", err,
			"method", method,
			"path", path,
			"remote_addr", remote,
		)
		return fmt.Sprintf("Unauthorized: %s", err.Error())
	}
	logger.Debug("Authenticated API key",
		"name", validKey.Name,
		"key_prefix", apikey.KeyPrefix(validKey.Key),
	)
	return ""
}

// RawAPIKeyAuth returns a Chi middleware that validates API keys for routes
// registered outside Huma (the websocket endpoint). When no keys are
// configured every request passes.
func RawAPIKeyAuth(logger *slog.Logger, mgr *apikey.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractKey(r.Header.Get("Authorization"), r.Header.Get("X-API-Key"))
			if msg := check(logger, mgr, key, r.Method, r.URL.Path, r.RemoteAddr); msg != "" {
				http.Error(w, msg, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HumaAuth returns a Huma middleware that enforces API keys on operations
// whose Security references SecurityScheme. Public operations pass through.
func HumaAuth(api huma.API, logger *slog.Logger, mgr *apikey.Manager) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !operationRequiresAuth(ctx.Operation()) {
			next(ctx)
			return
		}
		key := extractKey(ctx.Header("Authorization"), ctx.Header("X-API-Key"))
		if msg := check(logger, mgr, key, ctx.Method(), ctx.URL().Path, ctx.RemoteAddr()); msg != "" {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, msg)
			return
		}
		next(ctx)
	}
}

// operationRequiresAuth reports whether op declares the API key scheme.
func operationRequiresAuth(op *huma.Operation) bool {
	if op == nil {
		return false
	}
	for _, req := range op.Security {
		if _, ok := req[SecurityScheme]; ok {
			return true
		}
	}
	return false
}
