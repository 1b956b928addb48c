// Package watering infers care events from the moisture series and manages
// the derived watering schedule.
package watering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"garden-core/internal/db"
	"garden-core/internal/logging"
	"garden-core/internal/metrics"
	"garden-core/internal/models"
)

// Store is the slice of the store the detector needs.
type Store interface {
	PlantsForDevice(ctx context.Context, deviceID uuid.UUID) ([]uuid.UUID, error)
	InsertWateringEvent(ctx context.Context, ev models.WateringEvent) (models.WateringEvent, error)
	TouchWateringSchedule(ctx context.Context, plantID uuid.UUID, wateredAt time.Time) error
}

// Detector synthesizes auto watering events and records manual ones.
type Detector struct {
	store    Store
	logger   *logging.Logger
	minJump  float64
	lookback time.Duration
}

// New constructs a Detector. minJump is in normalized percentage points.
func New(store Store, logger *logging.Logger, minJump float64, lookback time.Duration) *Detector {
	return &Detector{store: store, logger: logger, minJump: minJump, lookback: lookback}
}

// Jumped is the pure detection rule: a rise of at least minJump points
// between two normalized readings taken within the lookback window.
func Jumped(beforePct float64, beforeAt time.Time, afterPct float64, afterAt time.Time, minJump float64, lookback time.Duration) bool {
	if afterAt.Sub(beforeAt) > lookback || afterAt.Before(beforeAt) {
		return false
	}
	return afterPct-beforePct >= minJump
}

// Evaluate runs the detection heuristic for one new moisture reading and,
// on a jump, records one auto event per associated plant and bumps each
// plant's schedule. before is the reading that preceded the batch; both
// percents are normalized.
func (d *Detector) Evaluate(ctx context.Context, deviceID uuid.UUID, beforePct float64, beforeAt time.Time, afterPct float64, afterAt time.Time) {
	if !Jumped(beforePct, beforeAt, afterPct, afterAt, d.minJump, d.lookback) {
		return
	}

	plants, err := d.store.PlantsForDevice(ctx, deviceID)
	if err != nil {
		d.logger.Errorf("Watering detection: failed to load plants for device %s: %v", deviceID, err)
		return
	}

	for _, plantID := range plants {
		ev := models.WateringEvent{
			PlantID:        plantID,
			DeviceID:       &deviceID,
			DetectedAt:     afterAt,
			MoistureBefore: &beforePct,
			MoistureAfter:  &afterPct,
			Source:         models.SourceAuto,
		}
		if _, err := d.store.InsertWateringEvent(ctx, ev); err != nil {
			d.logger.Errorf("Watering detection: failed to record event for plant %s: %v", plantID, err)
			continue
		}
		metrics.WateringEventsDetected.Inc()

		if err := d.store.TouchWateringSchedule(ctx, plantID, afterAt); err != nil {
			d.logger.Errorf("Watering detection: failed to update schedule for plant %s: %v", plantID, err)
		}
		d.logger.Infof("Auto watering event for plant %s: %.1f%% -> %.1f%%", plantID, beforePct, afterPct)
	}
}

// LogManual records a user-initiated watering event and bumps the plant's
// schedule. Manual events bypass the jump heuristic entirely.
func (d *Detector) LogManual(ctx context.Context, plantID uuid.UUID, at time.Time) (models.WateringEvent, error) {
	ev, err := d.store.InsertWateringEvent(ctx, models.WateringEvent{
		PlantID:    plantID,
		DetectedAt: at,
		Source:     models.SourceManual,
	})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.WateringEvent{}, err
		}
		return models.WateringEvent{}, fmt.Errorf("failed to log watering event: %w", err)
	}

	if err := d.store.TouchWateringSchedule(ctx, plantID, at); err != nil {
		d.logger.Errorf("Failed to update schedule for plant %s after manual watering: %v", plantID, err)
	}
	return ev, nil
}
