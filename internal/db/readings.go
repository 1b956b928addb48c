package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"garden-core/internal/models"
)

// InsertReadingsBatch persists one wake cycle's readings in a single
// transaction: either every row is written or none are. Partial batches
// would corrupt the adjacent-reading pairing the watering detector relies on.
func (d *DB) InsertReadingsBatch(ctx context.Context, deviceID uuid.UUID, items []models.ReadingItem, recordedAt time.Time) (int, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(
			`INSERT INTO readings (device_id, metric, value, recorded_at) VALUES ($1, $2, $3, $4)`,
			deviceID, string(item.Metric), item.Value, recordedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range items {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return 0, fmt.Errorf("failed to insert reading: %w", mapErr(err))
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("failed to flush readings batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit readings batch: %w", err)
	}
	return len(items), nil
}

// ReadingsFilter narrows ListReadings.
type ReadingsFilter struct {
	DeviceID uuid.UUID
	Metric   string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// ListReadings returns readings for a device, newest first.
func (d *DB) ListReadings(ctx context.Context, f ReadingsFilter) ([]models.Reading, error) {
	query := `
	SELECT id, device_id, metric, value, recorded_at
	FROM readings
	WHERE device_id = $1`
	args := []interface{}{f.DeviceID}

	if f.Metric != "" {
		args = append(args, f.Metric)
		query += fmt.Sprintf(" AND metric = $%d", len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		query += fmt.Sprintf(" AND recorded_at >= $%d", len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += fmt.Sprintf(" AND recorded_at <= $%d", len(args))
	}

	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 100
	}
	args = append(args, f.Limit)
	query += fmt.Sprintf(" ORDER BY recorded_at DESC LIMIT $%d", len(args))
	args = append(args, f.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", mapErr(err))
	}
	defer rows.Close()

	var list []models.Reading
	for rows.Next() {
		var r models.Reading
		if err := rows.Scan(&r.ID, &r.DeviceID, &r.Metric, &r.Value, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

// ReadingsSince returns readings of one metric in [from, to), oldest first.
// Used by the trend aggregator.
func (d *DB) ReadingsSince(ctx context.Context, deviceID uuid.UUID, metric string, from, to time.Time) ([]models.Reading, error) {
	query := `
	SELECT id, device_id, metric, value, recorded_at
	FROM readings
	WHERE device_id = $1 AND metric = $2 AND recorded_at >= $3 AND recorded_at < $4
	ORDER BY recorded_at ASC`

	rows, err := d.Pool.Query(ctx, query, deviceID, metric, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", mapErr(err))
	}
	defer rows.Close()

	var list []models.Reading
	for rows.Next() {
		var r models.Reading
		if err := rows.Scan(&r.ID, &r.DeviceID, &r.Metric, &r.Value, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

// LatestReading returns the most recent reading of one metric for a device,
// or ErrNotFound when the series is empty.
func (d *DB) LatestReading(ctx context.Context, deviceID uuid.UUID, metric string) (models.Reading, error) {
	query := `
	SELECT id, device_id, metric, value, recorded_at
	FROM readings
	WHERE device_id = $1 AND metric = $2
	ORDER BY recorded_at DESC
	LIMIT 1`

	var r models.Reading
	err := d.Pool.QueryRow(ctx, query, deviceID, metric).Scan(
		&r.ID, &r.DeviceID, &r.Metric, &r.Value, &r.RecordedAt)
	if err != nil {
		return models.Reading{}, fmt.Errorf("failed to get latest reading: %w", mapErr(err))
	}
	return r, nil
}
