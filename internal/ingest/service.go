// Package ingest runs the wake-cycle pipeline: validation, device identity
// resolution, atomic batch persistence, watering detection and alert
// evaluation. The pipeline is shared by the HTTP, Kafka and MQTT entrypoints.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"garden-core/internal/calibration"
	"garden-core/internal/db"
	"garden-core/internal/logging"
	"garden-core/internal/metrics"
	"garden-core/internal/models"
)

// FieldError pinpoints one invalid field in a submitted batch. Loc holds the
// path segments into the request body, mixing strings and array indices.
type FieldError struct {
	Loc  []interface{} `json:"loc"`
	Msg  string        `json:"msg"`
	Type string        `json:"type"`
}

// ValidationError carries every field error found in a batch. A batch with
// any invalid field persists nothing.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Msg)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// Store is the persistence surface the pipeline needs.
type Store interface {
	ResolveOrCreateDevice(ctx context.Context, addr, boardClass string, resolutionBits int) (uuid.UUID, error)
	GetDevice(ctx context.Context, id uuid.UUID) (models.Device, error)
	SoilTypeForDevice(ctx context.Context, deviceID uuid.UUID) (models.SoilType, error)
	LatestReading(ctx context.Context, deviceID uuid.UUID, metric string) (models.Reading, error)
	InsertReadingsBatch(ctx context.Context, deviceID uuid.UUID, items []models.ReadingItem, recordedAt time.Time) (int, error)
}

// AlertEvaluator checks one observation against the device's active rules.
type AlertEvaluator interface {
	Evaluate(ctx context.Context, deviceID uuid.UUID, deviceName string, metric models.MetricKind, value, rawValue float64, at time.Time) int
}

// WateringDetector inspects consecutive moisture observations for a jump.
type WateringDetector interface {
	Evaluate(ctx context.Context, deviceID uuid.UUID, beforePct float64, beforeAt time.Time, afterPct float64, afterAt time.Time)
}

// Service is the ingestion pipeline.
type Service struct {
	store    Store
	alerts   AlertEvaluator
	watering WateringDetector
	logger   *logging.Logger
	skew     time.Duration
	now      func() time.Time
}

// New constructs the pipeline. skew bounds how far a batch's recordedAt may
// drift from server time in either direction.
func New(store Store, alerts AlertEvaluator, watering WateringDetector, logger *logging.Logger, skew time.Duration) *Service {
	return &Service{
		store:    store,
		alerts:   alerts,
		watering: watering,
		logger:   logger,
		skew:     skew,
		now:      time.Now,
	}
}

// Ingest runs one wake-cycle batch through the full pipeline. Validation
// failures return a *ValidationError and persist nothing; side effects
// (watering detection, alerting) never fail the request once the batch is
// committed.
func (s *Service) Ingest(ctx context.Context, req models.ReadingsCreate) (models.ReadingsCreateResponse, error) {
	recordedAt := time.Unix(req.RecordedAt, 0).UTC()
	if verr := s.validate(req, recordedAt); verr != nil {
		metrics.IngestRejected.Inc()
		return models.ReadingsCreateResponse{}, verr
	}

	addr := models.CanonicalAddr(req.DeviceAddress)
	deviceID, err := s.store.ResolveOrCreateDevice(ctx, addr, req.DeviceClass, req.ResolutionBits)
	if err != nil {
		return models.ReadingsCreateResponse{}, fmt.Errorf("failed to resolve device %s: %w", addr, err)
	}
	device, err := s.store.GetDevice(ctx, deviceID)
	if err != nil {
		return models.ReadingsCreateResponse{}, fmt.Errorf("failed to load device %s: %w", deviceID, err)
	}

	// The previous moisture reading must be captured before the batch lands,
	// otherwise the batch's own value would shadow it.
	prevSoil, hasPrevSoil := s.previousSoilReading(ctx, deviceID)

	inserted, err := s.store.InsertReadingsBatch(ctx, deviceID, req.Readings, recordedAt)
	if err != nil {
		return models.ReadingsCreateResponse{}, fmt.Errorf("failed to persist batch for device %s: %w", addr, err)
	}
	metrics.ReadingsIngested.Add(float64(inserted))

	normalize := s.normalizer(ctx, device)

	if soil, ok := lastOfKind(req.Readings, models.MetricSoilMoisture); ok && hasPrevSoil {
		s.watering.Evaluate(ctx, deviceID,
			normalize(prevSoil.Value), prevSoil.RecordedAt,
			normalize(soil.Value), recordedAt)
	}

	triggered := 0
	for _, item := range lastPerKind(req.Readings) {
		value := item.Value
		if item.Metric.Normalized() {
			value = normalize(item.Value)
		}
		triggered += s.alerts.Evaluate(ctx, deviceID, displayName(device), item.Metric, value, item.Value, recordedAt)
	}

	return models.ReadingsCreateResponse{Status: "ok", Inserted: inserted, AlertsTriggered: triggered}, nil
}

func (s *Service) validate(req models.ReadingsCreate, recordedAt time.Time) *ValidationError {
	var errs []FieldError

	if models.CanonicalAddr(req.DeviceAddress) == "" {
		errs = append(errs, FieldError{
			Loc: []interface{}{"body", "deviceAddress"}, Msg: "device address must not be empty", Type: "value_error",
		})
	}
	if len(req.Readings) == 0 {
		errs = append(errs, FieldError{
			Loc: []interface{}{"body", "readings"}, Msg: "at least one reading is required", Type: "value_error",
		})
	}
	if req.ResolutionBits != 0 && req.ResolutionBits != 10 && req.ResolutionBits != 12 {
		errs = append(errs, FieldError{
			Loc: []interface{}{"body", "resolutionBits"}, Msg: "resolution must be 10 or 12 bits", Type: "value_error",
		})
	}

	if req.RecordedAt == 0 {
		errs = append(errs, FieldError{
			Loc: []interface{}{"body", "recordedAt"}, Msg: "recordedAt is required", Type: "value_error.missing",
		})
	} else {
		now := s.now().UTC()
		if drift := recordedAt.Sub(now); drift > s.skew || drift < -s.skew {
			errs = append(errs, FieldError{
				Loc: []interface{}{"body", "recordedAt"}, Msg: fmt.Sprintf("timestamp drifts more than %s from server time", s.skew), Type: "value_error",
			})
		}
	}

	for i, item := range req.Readings {
		if !item.Metric.Valid() {
			errs = append(errs, FieldError{
				Loc: []interface{}{"body", "readings", i, "metric"}, Msg: fmt.Sprintf("unknown metric %q", item.Metric), Type: "enum",
			})
		}
		if math.IsNaN(item.Value) || math.IsInf(item.Value, 0) {
			errs = append(errs, FieldError{
				Loc: []interface{}{"body", "readings", i, "value"}, Msg: "value must be finite", Type: "value_error",
			})
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// normalizer resolves the device's calibration pair once and returns a
// conversion closure for this batch.
func (s *Service) normalizer(ctx context.Context, device models.Device) func(float64) float64 {
	var profile *models.SoilType
	st, err := s.store.SoilTypeForDevice(ctx, device.ID)
	switch {
	case err == nil:
		profile = &st
	case errors.Is(err, db.ErrNotFound):
		// no profile assigned, defaults apply
	default:
		s.logger.Warnf("Failed to load soil profile for device %s, using defaults: %v", device.ID, err)
	}

	pair := calibration.SelectPair(profile, device.ResolutionBits)
	return func(raw float64) float64 {
		return calibration.Normalize(raw, pair.Dry, pair.Wet)
	}
}

func (s *Service) previousSoilReading(ctx context.Context, deviceID uuid.UUID) (models.Reading, bool) {
	prev, err := s.store.LatestReading(ctx, deviceID, string(models.MetricSoilMoisture))
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			s.logger.Warnf("Failed to load previous moisture reading for device %s: %v", deviceID, err)
		}
		return models.Reading{}, false
	}
	return prev, true
}

// lastPerKind keeps the last occurrence of each metric kind, preserving the
// order in which kinds first appear. Alerting evaluates one value per kind
// per batch.
func lastPerKind(items []models.ReadingItem) []models.ReadingItem {
	last := make(map[models.MetricKind]float64, len(items))
	order := make([]models.MetricKind, 0, len(items))
	for _, item := range items {
		if _, seen := last[item.Metric]; !seen {
			order = append(order, item.Metric)
		}
		last[item.Metric] = item.Value
	}
	out := make([]models.ReadingItem, 0, len(order))
	for _, kind := range order {
		out = append(out, models.ReadingItem{Metric: kind, Value: last[kind]})
	}
	return out
}

func lastOfKind(items []models.ReadingItem, kind models.MetricKind) (models.ReadingItem, bool) {
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Metric == kind {
			return items[i], true
		}
	}
	return models.ReadingItem{}, false
}

func displayName(d models.Device) string {
	if d.DisplayName != nil && *d.DisplayName != "" {
		return *d.DisplayName
	}
	if d.Name != "" {
		return d.Name
	}
	return d.HardwareAddr
}
