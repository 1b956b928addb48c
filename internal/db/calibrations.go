package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"garden-core/internal/models"
)

// CreateSoilType inserts a calibration profile. Unspecified pairs fall back
// to the resolution defaults so a partially-specified profile stays usable
// for both 10-bit and 12-bit devices.
func (d *DB) CreateSoilType(ctx context.Context, c models.SoilTypeCreate) (models.SoilType, error) {
	query := `
	INSERT INTO soil_types (name, raw_dry, raw_wet, raw_dry_12bit, raw_wet_12bit)
	VALUES ($1, COALESCE($2, 800), COALESCE($3, 400), COALESCE($4, 3200), COALESCE($5, 600))
	RETURNING id, name, raw_dry, raw_wet, raw_dry_12bit, raw_wet_12bit, created_at`

	var st models.SoilType
	err := d.Pool.QueryRow(ctx, query, c.Name, c.RawDry, c.RawWet, c.RawDry12Bit, c.RawWet12Bit).Scan(
		&st.ID, &st.Name, &st.RawDry, &st.RawWet, &st.RawDry12Bit, &st.RawWet12Bit, &st.CreatedAt,
	)
	if err != nil {
		return models.SoilType{}, fmt.Errorf("failed to create soil type: %w", mapErr(err))
	}
	return st, nil
}

// GetSoilType returns one profile by id.
func (d *DB) GetSoilType(ctx context.Context, id uuid.UUID) (models.SoilType, error) {
	query := `
	SELECT id, name, raw_dry, raw_wet, raw_dry_12bit, raw_wet_12bit, created_at
	FROM soil_types WHERE id = $1`

	var st models.SoilType
	err := d.Pool.QueryRow(ctx, query, id).Scan(
		&st.ID, &st.Name, &st.RawDry, &st.RawWet, &st.RawDry12Bit, &st.RawWet12Bit, &st.CreatedAt,
	)
	if err != nil {
		return models.SoilType{}, fmt.Errorf("failed to get soil type: %w", mapErr(err))
	}
	return st, nil
}

// SoilTypeForDevice returns the profile assigned to a device, or
// ErrNotFound when the device has none.
func (d *DB) SoilTypeForDevice(ctx context.Context, deviceID uuid.UUID) (models.SoilType, error) {
	query := `
	SELECT st.id, st.name, st.raw_dry, st.raw_wet, st.raw_dry_12bit, st.raw_wet_12bit, st.created_at
	FROM soil_types st
	JOIN devices d ON d.soil_type_id = st.id
	WHERE d.id = $1`

	var st models.SoilType
	err := d.Pool.QueryRow(ctx, query, deviceID).Scan(
		&st.ID, &st.Name, &st.RawDry, &st.RawWet, &st.RawDry12Bit, &st.RawWet12Bit, &st.CreatedAt,
	)
	if err != nil {
		return models.SoilType{}, fmt.Errorf("failed to get soil type for device: %w", mapErr(err))
	}
	return st, nil
}

// ListSoilTypes returns all profiles ordered by name.
func (d *DB) ListSoilTypes(ctx context.Context) ([]models.SoilType, error) {
	query := `
	SELECT id, name, raw_dry, raw_wet, raw_dry_12bit, raw_wet_12bit, created_at
	FROM soil_types ORDER BY name`

	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list soil types: %w", mapErr(err))
	}
	defer rows.Close()

	var list []models.SoilType
	for rows.Next() {
		var st models.SoilType
		if err := rows.Scan(&st.ID, &st.Name, &st.RawDry, &st.RawWet, &st.RawDry12Bit, &st.RawWet12Bit, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan soil type: %w", err)
		}
		list = append(list, st)
	}
	return list, rows.Err()
}

// UpdateSoilType applies partial updates to a profile.
func (d *DB) UpdateSoilType(ctx context.Context, id uuid.UUID, upd models.SoilTypeUpdate) (models.SoilType, error) {
	query := `
	UPDATE soil_types SET
		name          = COALESCE($2, name),
		raw_dry       = COALESCE($3, raw_dry),
		raw_wet       = COALESCE($4, raw_wet),
		raw_dry_12bit = COALESCE($5, raw_dry_12bit),
		raw_wet_12bit = COALESCE($6, raw_wet_12bit)
	WHERE id = $1
	RETURNING id, name, raw_dry, raw_wet, raw_dry_12bit, raw_wet_12bit, created_at`

	var st models.SoilType
	err := d.Pool.QueryRow(ctx, query, id, upd.Name, upd.RawDry, upd.RawWet, upd.RawDry12Bit, upd.RawWet12Bit).Scan(
		&st.ID, &st.Name, &st.RawDry, &st.RawWet, &st.RawDry12Bit, &st.RawWet12Bit, &st.CreatedAt,
	)
	if err != nil {
		return models.SoilType{}, fmt.Errorf("failed to update soil type: %w", mapErr(err))
	}
	return st, nil
}

// DeleteSoilType removes a profile; devices referencing it fall back to
// resolution defaults (FK sets their soil_type_id NULL).
func (d *DB) DeleteSoilType(ctx context.Context, id uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM soil_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete soil type: %w", mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateOptimalRange inserts a status-classification profile.
func (d *DB) CreateOptimalRange(ctx context.Context, c models.OptimalRangeCreate) (models.OptimalRange, error) {
	query := `
	INSERT INTO optimal_ranges (name, metric, min_value, optimal_min, optimal_max, max_value)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, name, metric, min_value, optimal_min, optimal_max, max_value, created_at`

	var r models.OptimalRange
	err := d.Pool.QueryRow(ctx, query, c.Name, string(c.Metric), c.Min, c.OptimalMin, c.OptimalMax, c.Max).Scan(
		&r.ID, &r.Name, &r.Metric, &r.Min, &r.OptimalMin, &r.OptimalMax, &r.Max, &r.CreatedAt,
	)
	if err != nil {
		return models.OptimalRange{}, fmt.Errorf("failed to create optimal range: %w", mapErr(err))
	}
	return r, nil
}

// ListOptimalRanges returns all classification profiles ordered by name.
func (d *DB) ListOptimalRanges(ctx context.Context) ([]models.OptimalRange, error) {
	query := `
	SELECT id, name, metric, min_value, optimal_min, optimal_max, max_value, created_at
	FROM optimal_ranges ORDER BY name`

	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list optimal ranges: %w", mapErr(err))
	}
	defer rows.Close()

	var list []models.OptimalRange
	for rows.Next() {
		var r models.OptimalRange
		if err := rows.Scan(&r.ID, &r.Name, &r.Metric, &r.Min, &r.OptimalMin, &r.OptimalMax, &r.Max, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan optimal range: %w", err)
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

// UpdateOptimalRange replaces a classification profile in full.
func (d *DB) UpdateOptimalRange(ctx context.Context, id uuid.UUID, c models.OptimalRangeCreate) (models.OptimalRange, error) {
	query := `
	UPDATE optimal_ranges
	SET name = $2, metric = $3, min_value = $4, optimal_min = $5, optimal_max = $6, max_value = $7
	WHERE id = $1
	RETURNING id, name, metric, min_value, optimal_min, optimal_max, max_value, created_at`

	var r models.OptimalRange
	err := d.Pool.QueryRow(ctx, query, id, c.Name, string(c.Metric), c.Min, c.OptimalMin, c.OptimalMax, c.Max).Scan(
		&r.ID, &r.Name, &r.Metric, &r.Min, &r.OptimalMin, &r.OptimalMax, &r.Max, &r.CreatedAt,
	)
	if err != nil {
		return models.OptimalRange{}, fmt.Errorf("failed to update optimal range: %w", mapErr(err))
	}
	return r, nil
}

// DeleteOptimalRange removes a classification profile.
func (d *DB) DeleteOptimalRange(ctx context.Context, id uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM optimal_ranges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete optimal range: %w", mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
