package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/scamtrace/scamtrace/internal/auth"
	"github.com/scamtrace/scamtrace/internal/metrics"
	"github.com/scamtrace/scamtrace/internal/model"
	"github.com/scamtrace/scamtrace/internal/repository"
)

// UserLoader resolves a token subject to a stored user.
type UserLoader interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// AdminAuthConfig holds configuration for the admin token gate.
type AdminAuthConfig struct {
	Logger  *slog.Logger
	Tokens  *auth.TokenIssuer
	Users   UserLoader
	Metrics metrics.Recorder
}

// AdminAuth returns a middleware that authenticates admin requests with a
// bearer token. The token signature and expiry are verified, then the
// subject is resolved against the user store: the token itself carries no
// freshness guarantee, so account state is always re-read. Only approved
// admins pass; everything else short-circuits before the handler.
func AdminAuth(cfg AdminAuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				recorder.IncAuthRejection("token")
				writeGateError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
				return
			}

			subject, err := cfg.Tokens.Verify(token)
			if err != nil {
				cfg.Logger.Warn("token rejected",
					slog.String("reason", "verification_failed"),
					slog.String("ip", r.RemoteAddr),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				recorder.IncAuthRejection("token")
				writeGateError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
				return
			}

			user, err := cfg.Users.GetUserByEmail(r.Context(), subject)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					recorder.IncAuthRejection("token")
					writeGateError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
					return
				}
				cfg.Logger.Error("user lookup failed during auth",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeGateError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
				return
			}

			if !user.CanAdminister() {
				cfg.Logger.Warn("token rejected",
					slog.String("reason", "not_admin"),
					slog.String("user_id", user.ID),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				recorder.IncAuthRejection("token")
				writeGateError(w, http.StatusForbidden, "NOT_AUTHORIZED_ADMIN", "Not authorized as admin")
				return
			}

			identity := &model.Identity{
				UserID:   user.ID,
				Email:    user.Email,
				Admin:    user.Admin,
				Approved: user.Approved,
			}

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts a bearer token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
