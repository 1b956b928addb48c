package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"garden-core/internal/models"
)

// CreatePlant inserts a watering subject.
func (d *DB) CreatePlant(ctx context.Context, c models.PlantCreate) (models.Plant, error) {
	var p models.Plant
	err := d.Pool.QueryRow(ctx,
		`INSERT INTO plants (name) VALUES ($1) RETURNING id, name, created_at`, c.Name,
	).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		return models.Plant{}, fmt.Errorf("failed to create plant: %w", mapErr(err))
	}
	return p, nil
}

// GetPlant returns one plant by id.
func (d *DB) GetPlant(ctx context.Context, id uuid.UUID) (models.Plant, error) {
	var p models.Plant
	err := d.Pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM plants WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		return models.Plant{}, fmt.Errorf("failed to get plant: %w", mapErr(err))
	}
	return p, nil
}

// ListPlants returns all plants ordered by name.
func (d *DB) ListPlants(ctx context.Context) ([]models.Plant, error) {
	rows, err := d.Pool.Query(ctx, `SELECT id, name, created_at FROM plants ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list plants: %w", mapErr(err))
	}
	defer rows.Close()

	var list []models.Plant
	for rows.Next() {
		var p models.Plant
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plant: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// DeletePlant removes a plant. Associations, events and schedules cascade.
func (d *DB) DeletePlant(ctx context.Context, id uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM plants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete plant: %w", mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
