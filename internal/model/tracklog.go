// Package model defines domain entities for the application.
package model

import "time"

// TrackLog records a single tracking event for a phone number.
// The location string is a human-readable summary produced by the
// geolocation lookup, or "Unknown Location" when the lookup failed.
type TrackLog struct {
	ID          string    `json:"id"` // ULID (time-sortable)
	PhoneNumber string    `json:"phone_number"`
	IPAddress   string    `json:"ip_address"`
	DeviceInfo  string    `json:"device_info"` // User-Agent of the reporting client
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
}

// LocationEntry records an explicit coordinate report for a phone number.
type LocationEntry struct {
	ID          string    `json:"id"` // UUID
	PhoneNumber string    `json:"phone_number"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	IPAddress   string    `json:"ip_address"`
	CreatedAt   time.Time `json:"created_at"`
}
