package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/scamtrace/scamtrace/internal/auth"
	"github.com/scamtrace/scamtrace/internal/handler/dto"
	"github.com/scamtrace/scamtrace/internal/service"
)

// AuthHandler handles HTTP requests for the account workflow.
type AuthHandler struct {
	svc    *service.AccountService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AccountService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "Email and password are required")
		return
	}

	input := service.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		Reason:       req.Reason,
		CaptchaToken: req.RecaptchaToken,
	}

	user, err := h.svc.Register(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("registration_received",
		"user_id", user.ID,
	)

	writeJSON(w, http.StatusCreated, dto.MessageResponse{
		Message: "Registration received. An administrator will review your request.",
	})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	token, err := h.svc.Login(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Approve handles POST /approve-user/{user_id}.
// The admin-token middleware has already resolved and injected the caller
// identity before this runs.
func (h *AuthHandler) Approve(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "user_id")
	if targetID == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "User ID is required")
		return
	}

	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		h.writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	if err := h.svc.Approve(r.Context(), identity, targetID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "User approved",
	})
}

// handleServiceError maps account service errors to HTTP responses.
func (h *AuthHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCaptchaFailed):
		h.writeError(w, http.StatusBadRequest, "CAPTCHA_FAILED", "reCAPTCHA verification failed")
	case errors.Is(err, service.ErrReasonRejected):
		h.writeError(w, http.StatusForbidden, "REASON_REJECTED", "Reason not valid enough")
	case errors.Is(err, service.ErrDuplicateEmail):
		h.writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		h.writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, service.ErrNotApproved):
		h.writeError(w, http.StatusForbidden, "NOT_APPROVED", "Account awaiting admin approval")
	case errors.Is(err, service.ErrNotAdmin):
		h.writeError(w, http.StatusForbidden, "NOT_AUTHORIZED_ADMIN", "Not authorized as admin")
	case errors.Is(err, service.ErrUserNotFound):
		h.writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *AuthHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
