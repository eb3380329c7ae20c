package repository

import (
	"context"
	"fmt"

	"github.com/scamtrace/scamtrace/internal/model"
)

// CreateLocationEntry inserts a coordinate report for a phone number.
func (r *Repository) CreateLocationEntry(ctx context.Context, entry *model.LocationEntry) error {
	query := `
		INSERT INTO location_entries (id, phone_number, latitude, longitude, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.PhoneNumber,
		entry.Latitude,
		entry.Longitude,
		entry.IPAddress,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create location entry: %w", err)
	}

	return nil
}

// GetLocationsByPhone returns all coordinate reports for a phone number,
// oldest first. An empty result is not an error at this layer.
func (r *Repository) GetLocationsByPhone(ctx context.Context, phoneNumber string) ([]*model.LocationEntry, error) {
	query := `
		SELECT id, phone_number, latitude, longitude, ip_address, created_at
		FROM location_entries
		WHERE phone_number = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get locations by phone: %w", err)
	}
	defer rows.Close()

	entries := make([]*model.LocationEntry, 0)
	for rows.Next() {
		var entry model.LocationEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.PhoneNumber,
			&entry.Latitude,
			&entry.Longitude,
			&entry.IPAddress,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan location entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating location entries: %w", err)
	}

	return entries, nil
}
