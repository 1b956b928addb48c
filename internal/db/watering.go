package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"garden-core/internal/models"
)

// InsertWateringEvent records one hydration action. Auto events are
// immutable once written; manual events may later be deleted by the user.
func (d *DB) InsertWateringEvent(ctx context.Context, ev models.WateringEvent) (models.WateringEvent, error) {
	query := `
	INSERT INTO watering_events (plant_id, device_id, detected_at, moisture_before, moisture_after, source)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, plant_id, device_id, detected_at, moisture_before, moisture_after, source`

	var out models.WateringEvent
	err := d.Pool.QueryRow(ctx, query,
		ev.PlantID, ev.DeviceID, ev.DetectedAt, ev.MoistureBefore, ev.MoistureAfter, string(ev.Source),
	).Scan(&out.ID, &out.PlantID, &out.DeviceID, &out.DetectedAt, &out.MoistureBefore, &out.MoistureAfter, &out.Source)
	if err != nil {
		return models.WateringEvent{}, fmt.Errorf("failed to insert watering event: %w", mapErr(err))
	}
	return out, nil
}

// ListWateringEvents returns a plant's events, newest first.
func (d *DB) ListWateringEvents(ctx context.Context, plantID uuid.UUID, limit int) ([]models.WateringEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	query := `
	SELECT id, plant_id, device_id, detected_at, moisture_before, moisture_after, source
	FROM watering_events
	WHERE plant_id = $1
	ORDER BY detected_at DESC
	LIMIT $2`

	rows, err := d.Pool.Query(ctx, query, plantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list watering events: %w", mapErr(err))
	}
	defer rows.Close()

	var list []models.WateringEvent
	for rows.Next() {
		var ev models.WateringEvent
		if err := rows.Scan(&ev.ID, &ev.PlantID, &ev.DeviceID, &ev.DetectedAt, &ev.MoistureBefore, &ev.MoistureAfter, &ev.Source); err != nil {
			return nil, fmt.Errorf("failed to scan watering event: %w", err)
		}
		list = append(list, ev)
	}
	return list, rows.Err()
}

// DeleteWateringEvent removes a manual event. Auto events are immutable.
func (d *DB) DeleteWateringEvent(ctx context.Context, id uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx,
		`DELETE FROM watering_events WHERE id = $1 AND source = 'manual'`, id)
	if err != nil {
		return fmt.Errorf("failed to delete watering event: %w", mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateWateringSchedule inserts a schedule for a plant. One schedule per
// plant; a second insert surfaces ErrConflict.
func (d *DB) CreateWateringSchedule(ctx context.Context, plantID uuid.UUID, c models.WateringScheduleCreate) (models.WateringSchedule, error) {
	query := `
	INSERT INTO watering_schedules (plant_id, interval_days, notes)
	VALUES ($1, $2, $3)
	RETURNING id, plant_id, interval_days, last_watered_at, notes, created_at`

	var s models.WateringSchedule
	err := d.Pool.QueryRow(ctx, query, plantID, c.IntervalDays, c.Notes).Scan(
		&s.ID, &s.PlantID, &s.IntervalDays, &s.LastWateredAt, &s.Notes, &s.CreatedAt,
	)
	if err != nil {
		return models.WateringSchedule{}, fmt.Errorf("failed to create watering schedule: %w", mapErr(err))
	}
	return s, nil
}

// GetWateringSchedule returns the schedule for a plant.
func (d *DB) GetWateringSchedule(ctx context.Context, plantID uuid.UUID) (models.WateringSchedule, error) {
	query := `
	SELECT id, plant_id, interval_days, last_watered_at, notes, created_at
	FROM watering_schedules WHERE plant_id = $1`

	var s models.WateringSchedule
	err := d.Pool.QueryRow(ctx, query, plantID).Scan(
		&s.ID, &s.PlantID, &s.IntervalDays, &s.LastWateredAt, &s.Notes, &s.CreatedAt,
	)
	if err != nil {
		return models.WateringSchedule{}, fmt.Errorf("failed to get watering schedule: %w", mapErr(err))
	}
	return s, nil
}

// TouchWateringSchedule updates last_watered_at for a plant's schedule.
// next_due_at is never written; it is derived on read.
func (d *DB) TouchWateringSchedule(ctx context.Context, plantID uuid.UUID, wateredAt time.Time) error {
	_, err := d.Pool.Exec(ctx,
		`UPDATE watering_schedules SET last_watered_at = $2 WHERE plant_id = $1`, plantID, wateredAt)
	if err != nil {
		return fmt.Errorf("failed to touch watering schedule: %w", mapErr(err))
	}
	return nil
}

// DeleteWateringSchedule removes the schedule for a plant.
func (d *DB) DeleteWateringSchedule(ctx context.Context, plantID uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM watering_schedules WHERE plant_id = $1`, plantID)
	if err != nil {
		return fmt.Errorf("failed to delete watering schedule: %w", mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
