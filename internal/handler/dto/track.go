package dto

import (
	"time"

	"github.com/scamtrace/scamtrace/internal/model"
)

// TrackRequest represents the request body for logging a tracking event.
type TrackRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// TrackResponse represents the response for a logged tracking event.
type TrackResponse struct {
	Message  string `json:"message"`
	ID       string `json:"id"`
	Location string `json:"location"`
}

// TrackLogResponse represents a track log in API responses.
type TrackLogResponse struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	IPAddress   string    `json:"ip_address"`
	DeviceInfo  string    `json:"device_info"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
}

// LocationRequest represents the request body for an explicit
// coordinate report.
type LocationRequest struct {
	PhoneNumber string  `json:"phone_number"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	IPAddress   string  `json:"ip_address"`
}

// LocationEntryResponse represents a stored coordinate report.
type LocationEntryResponse struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	IPAddress   string    `json:"ip_address"`
	CreatedAt   time.Time `json:"created_at"`
}

// LocationCreatedResponse wraps a newly stored coordinate report.
type LocationCreatedResponse struct {
	Status string                `json:"status"`
	Data   LocationEntryResponse `json:"data"`
}

// LocationsResponse wraps the coordinate history for a phone number.
type LocationsResponse struct {
	Status    string                  `json:"status"`
	Locations []LocationEntryResponse `json:"locations"`
}

// ToTrackLogResponse converts a model.TrackLog to a TrackLogResponse.
func ToTrackLogResponse(l *model.TrackLog) TrackLogResponse {
	return TrackLogResponse{
		ID:          l.ID,
		PhoneNumber: l.PhoneNumber,
		IPAddress:   l.IPAddress,
		DeviceInfo:  l.DeviceInfo,
		Location:    l.Location,
		CreatedAt:   l.CreatedAt,
	}
}

// ToTrackLogListResponse converts a slice of track logs.
func ToTrackLogListResponse(logs []*model.TrackLog) []TrackLogResponse {
	out := make([]TrackLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, ToTrackLogResponse(l))
	}
	return out
}

// ToLocationEntryResponse converts a model.LocationEntry to its API shape.
func ToLocationEntryResponse(e *model.LocationEntry) LocationEntryResponse {
	return LocationEntryResponse{
		ID:          e.ID,
		PhoneNumber: e.PhoneNumber,
		Latitude:    e.Latitude,
		Longitude:   e.Longitude,
		IPAddress:   e.IPAddress,
		CreatedAt:   e.CreatedAt,
	}
}

// ToLocationListResponse converts a slice of location entries.
func ToLocationListResponse(entries []*model.LocationEntry) []LocationEntryResponse {
	out := make([]LocationEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToLocationEntryResponse(e))
	}
	return out
}
