package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/scamtrace/scamtrace/internal/geoip"
	"github.com/scamtrace/scamtrace/internal/metrics"
	"github.com/scamtrace/scamtrace/internal/model"
	"github.com/scamtrace/scamtrace/internal/repository"
)

// ErrNoLocationData indicates no coordinate reports exist for a number.
var ErrNoLocationData = errors.New("no location data for phone number")

// unknownPhoneNumber is recorded when a tracking event arrives without one.
const unknownPhoneNumber = "unknown"

// Locator resolves an IP address to a display location.
type Locator interface {
	Lookup(ctx context.Context, ip string) string
}

// TrackService records tracking events and coordinate reports.
type TrackService struct {
	repo    *repository.Repository
	locator Locator
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewTrackService creates a TrackService.
func NewTrackService(repo *repository.Repository, locator Locator, recorder metrics.Recorder, logger *slog.Logger) *TrackService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TrackService{
		repo:    repo,
		locator: locator,
		metrics: recorder,
		logger:  logger,
	}
}

// TrackInput defines input for recording a tracking event.
type TrackInput struct {
	PhoneNumber string
	IPAddress   string
	DeviceInfo  string
}

// Track enriches the event with a geolocation lookup and persists it.
// The lookup degrades to "Unknown Location" rather than failing the event.
func (s *TrackService) Track(ctx context.Context, input TrackInput) (*model.TrackLog, error) {
	phone := input.PhoneNumber
	if phone == "" {
		phone = unknownPhoneNumber
	}

	location := s.locator.Lookup(ctx, input.IPAddress)
	if location == geoip.UnknownLocation {
		s.metrics.IncGeoLookup("unknown")
	} else {
		s.metrics.IncGeoLookup("resolved")
	}

	log := &model.TrackLog{
		ID:          ulid.Make().String(),
		PhoneNumber: phone,
		IPAddress:   input.IPAddress,
		DeviceInfo:  input.DeviceInfo,
		Location:    location,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.CreateTrackLog(ctx, log); err != nil {
		return nil, fmt.Errorf("create track log: %w", err)
	}

	s.metrics.IncTrackLogged()
	s.logger.Info("track_logged",
		slog.String("log_id", log.ID),
		slog.String("phone_number", log.PhoneNumber),
		slog.String("location", log.Location),
	)

	return log, nil
}

// ListLogs returns tracking logs newest first.
func (s *TrackService) ListLogs(ctx context.Context, limit int) ([]*model.TrackLog, error) {
	logs, err := s.repo.ListTrackLogs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list track logs: %w", err)
	}
	return logs, nil
}

// LocationInput defines input for recording a coordinate report.
type LocationInput struct {
	PhoneNumber string
	Latitude    float64
	Longitude   float64
	IPAddress   string
}

// LogLocation persists an explicit coordinate report.
func (s *TrackService) LogLocation(ctx context.Context, input LocationInput) (*model.LocationEntry, error) {
	entry := &model.LocationEntry{
		ID:          uuid.New().String(),
		PhoneNumber: input.PhoneNumber,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		IPAddress:   input.IPAddress,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.CreateLocationEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("create location entry: %w", err)
	}

	s.metrics.IncLocationLogged()
	s.logger.Info("location_logged",
		slog.String("entry_id", entry.ID),
		slog.String("phone_number", entry.PhoneNumber),
	)

	return entry, nil
}

// LocationsByPhone returns all coordinate reports for a number.
// Returns ErrNoLocationData when none exist.
func (s *TrackService) LocationsByPhone(ctx context.Context, phoneNumber string) ([]*model.LocationEntry, error) {
	entries, err := s.repo.GetLocationsByPhone(ctx, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("get locations by phone: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNoLocationData
	}
	return entries, nil
}
