package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"garden-core/internal/models"
)

// ResolveOrCreateDevice maps a canonical hardware address to a device id,
// auto-provisioning unknown devices. The single INSERT ... ON CONFLICT
// statement is the atomic "insert if absent, else fetch" primitive: two
// concurrent first contacts from the same address yield exactly one row.
// Every call bumps last_seen_at; class and resolution metadata, when
// supplied, overwrite the stored values (a device cannot be two classes).
func (d *DB) ResolveOrCreateDevice(ctx context.Context, addr, boardClass string, resolutionBits int) (uuid.UUID, error) {
	query := `
	INSERT INTO devices (hardware_addr, name, location, board_class, resolution_bits, last_seen_at)
	VALUES ($1, $1, '', NULLIF($2, ''), COALESCE(NULLIF($3, 0), 10), NOW())
	ON CONFLICT (hardware_addr) DO UPDATE SET
		last_seen_at    = NOW(),
		board_class     = COALESCE(NULLIF($2, ''), devices.board_class),
		resolution_bits = COALESCE(NULLIF($3, 0), devices.resolution_bits)
	RETURNING id`

	var id uuid.UUID
	if err := d.Pool.QueryRow(ctx, query, addr, boardClass, resolutionBits).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve device: %w", mapErr(err))
	}
	return id, nil
}

// GetDevice returns one device by id.
func (d *DB) GetDevice(ctx context.Context, id uuid.UUID) (models.Device, error) {
	query := `
	SELECT id, hardware_addr, name, display_name, location, board_class,
	       resolution_bits, soil_type_id, last_seen_at, created_at
	FROM devices WHERE id = $1`

	var dev models.Device
	err := d.Pool.QueryRow(ctx, query, id).Scan(
		&dev.ID, &dev.HardwareAddr, &dev.Name, &dev.DisplayName, &dev.Location,
		&dev.BoardClass, &dev.ResolutionBits, &dev.SoilTypeID, &dev.LastSeenAt, &dev.CreatedAt,
	)
	if err != nil {
		return models.Device{}, fmt.Errorf("failed to get device: %w", mapErr(err))
	}
	return dev, nil
}

// ListDevices returns all devices, most recently created first.
func (d *DB) ListDevices(ctx context.Context) ([]models.Device, error) {
	query := `
	SELECT id, hardware_addr, name, display_name, location, board_class,
	       resolution_bits, soil_type_id, last_seen_at, created_at
	FROM devices ORDER BY created_at DESC`

	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", mapErr(err))
	}
	defer rows.Close()

	var list []models.Device
	for rows.Next() {
		var dev models.Device
		if err := rows.Scan(
			&dev.ID, &dev.HardwareAddr, &dev.Name, &dev.DisplayName, &dev.Location,
			&dev.BoardClass, &dev.ResolutionBits, &dev.SoilTypeID, &dev.LastSeenAt, &dev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		list = append(list, dev)
	}
	return list, rows.Err()
}

// UpdateDevice applies the user-mutable fields (rename/relocate/profile).
func (d *DB) UpdateDevice(ctx context.Context, id uuid.UUID, upd models.DeviceUpdate) (models.Device, error) {
	query := `
	UPDATE devices SET
		display_name = COALESCE($2, display_name),
		location     = COALESCE($3, location),
		soil_type_id = COALESCE($4, soil_type_id)
	WHERE id = $1
	RETURNING id, hardware_addr, name, display_name, location, board_class,
	          resolution_bits, soil_type_id, last_seen_at, created_at`

	var dev models.Device
	err := d.Pool.QueryRow(ctx, query, id, upd.DisplayName, upd.Location, upd.SoilTypeID).Scan(
		&dev.ID, &dev.HardwareAddr, &dev.Name, &dev.DisplayName, &dev.Location,
		&dev.BoardClass, &dev.ResolutionBits, &dev.SoilTypeID, &dev.LastSeenAt, &dev.CreatedAt,
	)
	if err != nil {
		return models.Device{}, fmt.Errorf("failed to update device: %w", mapErr(err))
	}
	return dev, nil
}

// DeleteDevice removes a device; readings and rule bindings cascade.
func (d *DB) DeleteDevice(ctx context.Context, id uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM devices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AssociatePlant links a device to a plant. Duplicate associations surface
// as ErrConflict from the junction table's primary key.
func (d *DB) AssociatePlant(ctx context.Context, deviceID, plantID uuid.UUID) error {
	_, err := d.Pool.Exec(ctx,
		`INSERT INTO device_plant (device_id, plant_id) VALUES ($1, $2)`, deviceID, plantID)
	if err != nil {
		return fmt.Errorf("failed to associate device with plant: %w", mapErr(err))
	}
	return nil
}

// UnassociatePlant removes a device-plant link.
func (d *DB) UnassociatePlant(ctx context.Context, deviceID, plantID uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx,
		`DELETE FROM device_plant WHERE device_id = $1 AND plant_id = $2`, deviceID, plantID)
	if err != nil {
		return fmt.Errorf("failed to unassociate device from plant: %w", mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PlantsForDevice returns the plant ids a device is associated with.
func (d *DB) PlantsForDevice(ctx context.Context, deviceID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := d.Pool.Query(ctx,
		`SELECT plant_id FROM device_plant WHERE device_id = $1`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get plants for device: %w", mapErr(err))
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan plant id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
