package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/scamtrace/scamtrace/internal/metrics"
)

// ServiceKeyHeader is the header carrying the machine-to-machine secret.
const ServiceKeyHeader = "X-API-Key"

// ServiceKeyConfig holds configuration for the service-key gate.
type ServiceKeyConfig struct {
	Logger *slog.Logger
	// Secret is the single statically configured service key.
	Secret  string
	Metrics metrics.Recorder
}

// ServiceKey returns a middleware that gates machine-to-machine endpoints
// behind the shared service key. The presented key must exactly match the
// configured secret; comparison is constant-time. Missing or mismatched
// keys are rejected before the handler runs, so no side effect can occur
// on a denied request.
func ServiceKey(cfg ServiceKeyConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractServiceKey(r)

			if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(cfg.Secret)) != 1 {
				reason := "invalid_key"
				if key == "" {
					reason = "missing_key"
				}
				cfg.Logger.Warn("service key rejected",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				recorder.IncAuthRejection("service_key")
				writeGateError(w, http.StatusUnauthorized, "INVALID_API_KEY", "Invalid or missing API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractServiceKey extracts the service key from the request.
// Supports both "X-API-Key: <key>" and "Authorization: Bearer <key>".
func extractServiceKey(r *http.Request) string {
	if key := r.Header.Get(ServiceKeyHeader); key != "" {
		return key
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

// writeGateError writes a structured rejection from an auth gate.
// The same message is used for every failure mode to prevent probing.
func writeGateError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `","code":"` + code + `"}`))
}
