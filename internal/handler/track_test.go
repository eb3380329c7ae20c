package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scamtrace/scamtrace/internal/service"
)

func TestParseLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"absent", "", 0},
		{"positive", "25", 25},
		{"zero collapses to default", "0", 0},
		{"negative collapses to default", "-5", 0},
		{"malformed collapses to default", "abc", 0},
		{"float collapses to default", "2.5", 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseLimit(tt.raw); got != tt.want {
				t.Errorf("parseLimit(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTrackHandler_ServiceErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"no location data", service.ErrNoLocationData, http.StatusNotFound, "NO_LOCATION_DATA"},
		{"unknown error", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	h := NewTrackHandler(nil, discardLogger())

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			h.handleServiceError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if resp := decodeError(t, rec); resp.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, resp.Code)
			}
		})
	}
}
