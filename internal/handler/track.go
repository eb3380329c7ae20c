package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/scamtrace/scamtrace/internal/handler/dto"
	"github.com/scamtrace/scamtrace/internal/service"
)

// TrackHandler handles HTTP requests for tracking operations.
type TrackHandler struct {
	svc    *service.TrackService
	logger *slog.Logger
}

// NewTrackHandler creates a new TrackHandler.
func NewTrackHandler(svc *service.TrackService, logger *slog.Logger) *TrackHandler {
	return &TrackHandler{
		svc:    svc,
		logger: logger,
	}
}

// Track handles POST /track.
// The client IP and User-Agent are captured from the request itself, so
// a reporting client only has to send the phone number.
func (h *TrackHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req dto.TrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.TrackInput{
		PhoneNumber: req.PhoneNumber,
		IPAddress:   clientIP(r),
		DeviceInfo:  r.UserAgent(),
	}

	log, err := h.svc.Track(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TrackResponse{
		Message:  "Log saved",
		ID:       log.ID,
		Location: log.Location,
	})
}

// Logs handles GET /logs. An optional ?limit= query parameter sets the
// page size; without it the listing is capped at the repository default
// rather than returning the full table.
func (h *TrackHandler) Logs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.svc.ListLogs(r.Context(), parseLimit(r.URL.Query().Get("limit")))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTrackLogListResponse(logs))
}

// LogLocation handles POST /location.
func (h *TrackHandler) LogLocation(w http.ResponseWriter, r *http.Request) {
	var req dto.LocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.PhoneNumber == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "Phone number is required")
		return
	}

	ip := req.IPAddress
	if ip == "" {
		ip = clientIP(r)
	}

	input := service.LocationInput{
		PhoneNumber: req.PhoneNumber,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		IPAddress:   ip,
	}

	entry, err := h.svc.LogLocation(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.LocationCreatedResponse{
		Status: "success",
		Data:   dto.ToLocationEntryResponse(entry),
	})
}

// LocationsByPhone handles GET /location/{phone_number}.
func (h *TrackHandler) LocationsByPhone(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone_number")
	if phone == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_PHONE", "Phone number is required")
		return
	}

	entries, err := h.svc.LocationsByPhone(r.Context(), phone)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LocationsResponse{
		Status:    "success",
		Locations: dto.ToLocationListResponse(entries),
	})
}

// handleServiceError maps tracking service errors to HTTP responses.
func (h *TrackHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNoLocationData):
		h.writeError(w, http.StatusNotFound, "NO_LOCATION_DATA", "No location data found for this phone number")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *TrackHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// parseLimit interprets the ?limit= query value. Zero means "use the
// repository default cap"; absent, malformed, and non-positive values all
// collapse to it.
func parseLimit(raw string) int {
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0
	}
	return parsed
}

// clientIP extracts the client address without the port. The RealIP
// middleware has already rewritten RemoteAddr from X-Forwarded-For when
// the service runs behind a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
