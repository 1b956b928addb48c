package ingest

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garden-core/internal/db"
	"garden-core/internal/logging"
	"garden-core/internal/models"
)

type fakeStore struct {
	device   models.Device
	soilType *models.SoilType
	prevSoil *models.Reading

	inserted []models.ReadingItem
}

func (f *fakeStore) ResolveOrCreateDevice(_ context.Context, addr, _ string, _ int) (uuid.UUID, error) {
	f.device.HardwareAddr = addr
	return f.device.ID, nil
}

func (f *fakeStore) GetDevice(_ context.Context, _ uuid.UUID) (models.Device, error) {
	return f.device, nil
}

func (f *fakeStore) SoilTypeForDevice(_ context.Context, _ uuid.UUID) (models.SoilType, error) {
	if f.soilType == nil {
		return models.SoilType{}, db.ErrNotFound
	}
	return *f.soilType, nil
}

func (f *fakeStore) LatestReading(_ context.Context, _ uuid.UUID, metric string) (models.Reading, error) {
	if f.prevSoil == nil || metric != string(models.MetricSoilMoisture) {
		return models.Reading{}, db.ErrNotFound
	}
	return *f.prevSoil, nil
}

func (f *fakeStore) InsertReadingsBatch(_ context.Context, _ uuid.UUID, items []models.ReadingItem, _ time.Time) (int, error) {
	f.inserted = append(f.inserted, items...)
	return len(items), nil
}

type alertCall struct {
	metric   models.MetricKind
	value    float64
	rawValue float64
}

type fakeAlerts struct {
	calls []alertCall
}

func (f *fakeAlerts) Evaluate(_ context.Context, _ uuid.UUID, _ string, metric models.MetricKind, value, rawValue float64, _ time.Time) int {
	f.calls = append(f.calls, alertCall{metric: metric, value: value, rawValue: rawValue})
	return 1
}

type wateringCall struct {
	beforePct float64
	afterPct  float64
}

type fakeWatering struct {
	calls []wateringCall
}

func (f *fakeWatering) Evaluate(_ context.Context, _ uuid.UUID, beforePct float64, _ time.Time, afterPct float64, _ time.Time) {
	f.calls = append(f.calls, wateringCall{beforePct: beforePct, afterPct: afterPct})
}

func newTestService(t *testing.T, store *fakeStore, alerts *fakeAlerts, watering *fakeWatering) *Service {
	t.Helper()
	logger, err := logging.New(t.TempDir(), "error")
	require.NoError(t, err)
	return New(store, alerts, watering, logger, 24*time.Hour)
}

func batchAt(at time.Time, items ...models.ReadingItem) models.ReadingsCreate {
	return models.ReadingsCreate{
		DeviceAddress: "AA:BB:CC:DD:EE:FF",
		Readings:      items,
		RecordedAt:    at.Unix(),
	}
}

func TestIngestPersistsAndAlertsPerKind(t *testing.T) {
	store := &fakeStore{device: models.Device{ID: uuid.New(), Name: "balcony", ResolutionBits: 10}}
	alerts := &fakeAlerts{}
	svc := newTestService(t, store, alerts, &fakeWatering{})

	now := time.Now().UTC()
	resp, err := svc.Ingest(context.Background(), batchAt(now,
		models.ReadingItem{Metric: models.MetricTemperature, Value: 21.5},
		models.ReadingItem{Metric: models.MetricTemperature, Value: 22.0},
		models.ReadingItem{Metric: models.MetricSoilMoisture, Value: 600},
	))
	require.NoError(t, err)

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Inserted)
	assert.Equal(t, 2, resp.AlertsTriggered)
	assert.Len(t, store.inserted, 3)

	require.Len(t, alerts.calls, 2)
	assert.Equal(t, models.MetricTemperature, alerts.calls[0].metric)
	assert.Equal(t, 22.0, alerts.calls[0].value, "last occurrence of a repeated kind wins")
	assert.Equal(t, models.MetricSoilMoisture, alerts.calls[1].metric)
	// raw 600 against the 10-bit defaults (dry 800, wet 400) normalizes to 50%
	assert.InDelta(t, 50.0, alerts.calls[1].value, 0.001)
	assert.Equal(t, 600.0, alerts.calls[1].rawValue)
}

func TestIngestRejectsUnknownMetricWithoutPersisting(t *testing.T) {
	store := &fakeStore{device: models.Device{ID: uuid.New(), ResolutionBits: 10}}
	svc := newTestService(t, store, &fakeAlerts{}, &fakeWatering{})

	_, err := svc.Ingest(context.Background(), batchAt(time.Now().UTC(),
		models.ReadingItem{Metric: models.MetricTemperature, Value: 21.5},
		models.ReadingItem{Metric: "soil_misture", Value: 600},
	))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, []interface{}{"body", "readings", 1, "metric"}, verr.Errors[0].Loc)
	assert.Empty(t, store.inserted, "an invalid batch must persist nothing")
}

func TestIngestRejectsEmptyBatch(t *testing.T) {
	store := &fakeStore{device: models.Device{ID: uuid.New(), ResolutionBits: 10}}
	svc := newTestService(t, store, &fakeAlerts{}, &fakeWatering{})

	_, err := svc.Ingest(context.Background(), batchAt(time.Now().UTC()))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, []interface{}{"body", "readings"}, verr.Errors[0].Loc)
	assert.Empty(t, store.inserted)
}

func TestIngestRejectsMissingRecordedAt(t *testing.T) {
	store := &fakeStore{device: models.Device{ID: uuid.New(), ResolutionBits: 10}}
	svc := newTestService(t, store, &fakeAlerts{}, &fakeWatering{})

	req := models.ReadingsCreate{
		DeviceAddress: "AA:BB:CC:DD:EE:FF",
		Readings:      []models.ReadingItem{{Metric: models.MetricTemperature, Value: 21.5}},
	}
	_, err := svc.Ingest(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, []interface{}{"body", "recordedAt"}, verr.Errors[0].Loc)
	assert.Equal(t, "value_error.missing", verr.Errors[0].Type)
}

func TestIngestRejectsClockDrift(t *testing.T) {
	store := &fakeStore{device: models.Device{ID: uuid.New(), ResolutionBits: 10}}
	svc := newTestService(t, store, &fakeAlerts{}, &fakeWatering{})

	_, err := svc.Ingest(context.Background(), batchAt(time.Now().UTC().Add(-48*time.Hour),
		models.ReadingItem{Metric: models.MetricTemperature, Value: 21.5},
	))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, []interface{}{"body", "recordedAt"}, verr.Errors[0].Loc)
	assert.Empty(t, store.inserted)
}

func TestIngestRejectsNonFiniteValues(t *testing.T) {
	store := &fakeStore{device: models.Device{ID: uuid.New(), ResolutionBits: 10}}
	svc := newTestService(t, store, &fakeAlerts{}, &fakeWatering{})

	_, err := svc.Ingest(context.Background(), batchAt(time.Now().UTC(),
		models.ReadingItem{Metric: models.MetricTemperature, Value: math.NaN()},
	))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, "value_error", verr.Errors[0].Type)
}

func TestIngestFeedsWateringDetectorNormalizedPair(t *testing.T) {
	prevAt := time.Now().UTC().Add(-10 * time.Minute)
	store := &fakeStore{
		device:   models.Device{ID: uuid.New(), ResolutionBits: 10},
		prevSoil: &models.Reading{Metric: models.MetricSoilMoisture, Value: 720, RecordedAt: prevAt},
	}
	watering := &fakeWatering{}
	svc := newTestService(t, store, &fakeAlerts{}, watering)

	_, err := svc.Ingest(context.Background(), batchAt(time.Now().UTC(),
		models.ReadingItem{Metric: models.MetricSoilMoisture, Value: 520},
	))
	require.NoError(t, err)

	require.Len(t, watering.calls, 1)
	// raw 720 -> 20%, raw 520 -> 70% against the 10-bit defaults
	assert.InDelta(t, 20.0, watering.calls[0].beforePct, 0.001)
	assert.InDelta(t, 70.0, watering.calls[0].afterPct, 0.001)
}

func TestIngestSkipsWateringWithoutHistory(t *testing.T) {
	store := &fakeStore{device: models.Device{ID: uuid.New(), ResolutionBits: 10}}
	watering := &fakeWatering{}
	svc := newTestService(t, store, &fakeAlerts{}, watering)

	_, err := svc.Ingest(context.Background(), batchAt(time.Now().UTC(),
		models.ReadingItem{Metric: models.MetricSoilMoisture, Value: 520},
	))
	require.NoError(t, err)
	assert.Empty(t, watering.calls, "first ever moisture reading has no baseline")
}

func TestIngestUsesAssignedProfilePair(t *testing.T) {
	store := &fakeStore{
		device:   models.Device{ID: uuid.New(), ResolutionBits: 12},
		soilType: &models.SoilType{RawDry: 900, RawWet: 300, RawDry12Bit: 3600, RawWet12Bit: 400},
	}
	alerts := &fakeAlerts{}
	svc := newTestService(t, store, alerts, &fakeWatering{})

	_, err := svc.Ingest(context.Background(), batchAt(time.Now().UTC(),
		models.ReadingItem{Metric: models.MetricSoilMoisture, Value: 2000},
	))
	require.NoError(t, err)

	require.Len(t, alerts.calls, 1)
	// (3600-2000)/(3600-400)*100 = 50
	assert.InDelta(t, 50.0, alerts.calls[0].value, 0.001)
}
