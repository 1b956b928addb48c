package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"garden-core/internal/models"
)

// CreateChannel inserts a notification channel. Config shape is validated
// by the caller against the channel's closed type set.
func (d *DB) CreateChannel(ctx context.Context, c models.NotificationChannelCreate) (models.NotificationChannel, error) {
	enabled := true
	if c.Enabled != nil {
		enabled = *c.Enabled
	}

	query := `
	INSERT INTO notification_channels (channel_type, config, enabled)
	VALUES ($1, $2, $3)
	RETURNING id, channel_type, config, enabled, created_at`

	var ch models.NotificationChannel
	err := d.Pool.QueryRow(ctx, query, string(c.ChannelType), c.Config, enabled).Scan(
		&ch.ID, &ch.ChannelType, &ch.Config, &ch.Enabled, &ch.CreatedAt,
	)
	if err != nil {
		return models.NotificationChannel{}, fmt.Errorf("failed to create channel: %w", mapErr(err))
	}
	return ch, nil
}

// GetChannel returns one channel by id.
func (d *DB) GetChannel(ctx context.Context, id uuid.UUID) (models.NotificationChannel, error) {
	query := `
	SELECT id, channel_type, config, enabled, created_at
	FROM notification_channels WHERE id = $1`

	var ch models.NotificationChannel
	err := d.Pool.QueryRow(ctx, query, id).Scan(
		&ch.ID, &ch.ChannelType, &ch.Config, &ch.Enabled, &ch.CreatedAt,
	)
	if err != nil {
		return models.NotificationChannel{}, fmt.Errorf("failed to get channel: %w", mapErr(err))
	}
	return ch, nil
}

// ListChannels returns all channels; when enabledOnly is set, only enabled ones.
func (d *DB) ListChannels(ctx context.Context, enabledOnly bool) ([]models.NotificationChannel, error) {
	query := `
	SELECT id, channel_type, config, enabled, created_at
	FROM notification_channels`
	if enabledOnly {
		query += " WHERE enabled"
	}
	query += " ORDER BY created_at"

	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", mapErr(err))
	}
	defer rows.Close()

	var list []models.NotificationChannel
	for rows.Next() {
		var ch models.NotificationChannel
		if err := rows.Scan(&ch.ID, &ch.ChannelType, &ch.Config, &ch.Enabled, &ch.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		list = append(list, ch)
	}
	return list, rows.Err()
}

// UpdateChannel applies config and enabled updates.
func (d *DB) UpdateChannel(ctx context.Context, id uuid.UUID, upd models.NotificationChannelUpdate) (models.NotificationChannel, error) {
	query := `
	UPDATE notification_channels SET
		config  = COALESCE($2, config),
		enabled = COALESCE($3, enabled)
	WHERE id = $1
	RETURNING id, channel_type, config, enabled, created_at`

	var ch models.NotificationChannel
	err := d.Pool.QueryRow(ctx, query, id, upd.Config, upd.Enabled).Scan(
		&ch.ID, &ch.ChannelType, &ch.Config, &ch.Enabled, &ch.CreatedAt,
	)
	if err != nil {
		return models.NotificationChannel{}, fmt.Errorf("failed to update channel: %w", mapErr(err))
	}
	return ch, nil
}

// DeleteChannel removes a channel.
func (d *DB) DeleteChannel(ctx context.Context, id uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM notification_channels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
