package repository

import (
	"context"
	"fmt"

	"github.com/scamtrace/scamtrace/internal/model"
)

// CreateTrackLog inserts a new tracking log entry.
func (r *Repository) CreateTrackLog(ctx context.Context, log *model.TrackLog) error {
	query := `
		INSERT INTO track_logs (id, phone_number, ip_address, device_info, location, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		log.ID,
		log.PhoneNumber,
		log.IPAddress,
		log.DeviceInfo,
		log.Location,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create track log: %w", err)
	}

	return nil
}

// DefaultTrackLogLimit caps ListTrackLogs when the caller does not ask
// for a specific page size.
const DefaultTrackLogLimit = 500

// ListTrackLogs returns tracking logs ordered newest first. A limit of 0
// or less applies DefaultTrackLogLimit; results are always capped, never
// unbounded.
func (r *Repository) ListTrackLogs(ctx context.Context, limit int) ([]*model.TrackLog, error) {
	if limit <= 0 {
		limit = DefaultTrackLogLimit
	}

	query := `
		SELECT id, phone_number, ip_address, device_info, location, created_at
		FROM track_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list track logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*model.TrackLog, 0)
	for rows.Next() {
		var log model.TrackLog
		if err := rows.Scan(
			&log.ID,
			&log.PhoneNumber,
			&log.IPAddress,
			&log.DeviceInfo,
			&log.Location,
			&log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan track log: %w", err)
		}
		logs = append(logs, &log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating track logs: %w", err)
	}

	return logs, nil
}
