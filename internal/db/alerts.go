package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"garden-core/internal/models"
)

// CreateAlertRule inserts a new threshold rule.
func (d *DB) CreateAlertRule(ctx context.Context, c models.AlertRuleCreate) (models.AlertRule, error) {
	query := `
	INSERT INTO alert_rules (device_id, metric, condition, threshold, email, active)
	VALUES ($1, $2, $3, $4, $5, TRUE)
	RETURNING id, device_id, metric, condition, threshold, email, active, created_at`

	var r models.AlertRule
	err := d.Pool.QueryRow(ctx, query, c.DeviceID, string(c.Metric), string(c.Condition), c.Threshold, c.Email).Scan(
		&r.ID, &r.DeviceID, &r.Metric, &r.Condition, &r.Threshold, &r.Email, &r.Active, &r.CreatedAt,
	)
	if err != nil {
		return models.AlertRule{}, fmt.Errorf("failed to create alert rule: %w", mapErr(err))
	}
	return r, nil
}

// ListAlertRules returns rules, optionally filtered by device and active flag.
func (d *DB) ListAlertRules(ctx context.Context, deviceID *uuid.UUID, active *bool) ([]models.AlertRule, error) {
	query := `
	SELECT id, device_id, metric, condition, threshold, email, active, created_at
	FROM alert_rules WHERE TRUE`
	args := []interface{}{}

	if deviceID != nil {
		args = append(args, *deviceID)
		query += fmt.Sprintf(" AND device_id = $%d", len(args))
	}
	if active != nil {
		args = append(args, *active)
		query += fmt.Sprintf(" AND active = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert rules: %w", mapErr(err))
	}
	defer rows.Close()

	var list []models.AlertRule
	for rows.Next() {
		var r models.AlertRule
		if err := rows.Scan(&r.ID, &r.DeviceID, &r.Metric, &r.Condition, &r.Threshold, &r.Email, &r.Active, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert rule: %w", err)
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

// ActiveRules returns the active rules for one (device, metric) pair.
func (d *DB) ActiveRules(ctx context.Context, deviceID uuid.UUID, metric models.MetricKind) ([]models.AlertRule, error) {
	query := `
	SELECT id, device_id, metric, condition, threshold, email, active, created_at
	FROM alert_rules
	WHERE device_id = $1 AND metric = $2 AND active`

	rows, err := d.Pool.Query(ctx, query, deviceID, string(metric))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active rules: %w", mapErr(err))
	}
	defer rows.Close()

	var list []models.AlertRule
	for rows.Next() {
		var r models.AlertRule
		if err := rows.Scan(&r.ID, &r.DeviceID, &r.Metric, &r.Condition, &r.Threshold, &r.Email, &r.Active, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert rule: %w", err)
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

// DeactivateAlertRule soft-deletes a rule. Trigger history keeps pointing at
// the row, so the id stays resolvable forever.
func (d *DB) DeactivateAlertRule(ctx context.Context, id uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `UPDATE alert_rules SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate alert rule: %w", mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TryInsertTrigger atomically records a trigger for a rule unless one
// already exists inside the cooldown window. The advisory lock keyed by the
// rule id is the serialization point: two replicas evaluating the same
// breach take the lock in turn, so the second one observes the first one's
// trigger row and backs off. Returns true when a trigger was recorded.
func (d *DB) TryInsertTrigger(ctx context.Context, ruleID uuid.UUID, value float64, cooldown time.Duration) (bool, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, ruleID); err != nil {
		return false, fmt.Errorf("failed to take cooldown lock: %w", err)
	}

	var recent bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM alert_triggers
			WHERE rule_id = $1 AND triggered_at > NOW() - $2::interval
		)`, ruleID, cooldown).Scan(&recent)
	if err != nil {
		return false, fmt.Errorf("failed to check cooldown: %w", err)
	}
	if recent {
		// Cooldown suppression is a defined no-op, not an error.
		return false, nil
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO alert_triggers (rule_id, triggered_at, value_at_trigger)
		VALUES ($1, NOW(), $2)`, ruleID, value); err != nil {
		return false, fmt.Errorf("failed to insert trigger: %w", mapErr(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit trigger: %w", err)
	}
	return true, nil
}

// ListTriggers returns the trigger history of one rule, newest first.
func (d *DB) ListTriggers(ctx context.Context, ruleID uuid.UUID, limit int) ([]models.AlertTrigger, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	query := `
	SELECT id, rule_id, triggered_at, value_at_trigger
	FROM alert_triggers
	WHERE rule_id = $1
	ORDER BY triggered_at DESC
	LIMIT $2`

	rows, err := d.Pool.Query(ctx, query, ruleID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list triggers: %w", mapErr(err))
	}
	defer rows.Close()

	var list []models.AlertTrigger
	for rows.Next() {
		var t models.AlertTrigger
		if err := rows.Scan(&t.ID, &t.RuleID, &t.TriggeredAt, &t.ValueAtTrigger); err != nil {
			return nil, fmt.Errorf("failed to scan trigger: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
