package watering

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garden-core/internal/logging"
	"garden-core/internal/models"
)

type fakeStore struct {
	plants  []uuid.UUID
	events  []models.WateringEvent
	touched map[uuid.UUID]time.Time
}

func newFakeStore(plants ...uuid.UUID) *fakeStore {
	return &fakeStore{plants: plants, touched: map[uuid.UUID]time.Time{}}
}

func (f *fakeStore) PlantsForDevice(_ context.Context, _ uuid.UUID) ([]uuid.UUID, error) {
	return f.plants, nil
}

func (f *fakeStore) InsertWateringEvent(_ context.Context, ev models.WateringEvent) (models.WateringEvent, error) {
	ev.ID = uuid.New()
	f.events = append(f.events, ev)
	return ev, nil
}

func (f *fakeStore) TouchWateringSchedule(_ context.Context, plantID uuid.UUID, wateredAt time.Time) error {
	f.touched[plantID] = wateredAt
	return nil
}

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.New(t.TempDir(), "error")
	require.NoError(t, err)
	return logger
}

func TestJumped(t *testing.T) {
	now := time.Now().UTC()
	lookback := 30 * time.Minute

	tests := []struct {
		name      string
		beforePct float64
		beforeAt  time.Time
		afterPct  float64
		want      bool
	}{
		{"big rise within window", 20, now.Add(-10 * time.Minute), 45, true},
		{"exactly at threshold", 20, now.Add(-10 * time.Minute), 35, true},
		{"rise too small", 20, now.Add(-10 * time.Minute), 30, false},
		{"rise outside window", 20, now.Add(-2 * time.Hour), 45, false},
		{"falling moisture", 45, now.Add(-10 * time.Minute), 20, false},
		{"previous after current", 20, now.Add(5 * time.Minute), 45, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Jumped(tt.beforePct, tt.beforeAt, tt.afterPct, now, 15, lookback)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateRecordsEventPerPlant(t *testing.T) {
	plantA, plantB := uuid.New(), uuid.New()
	store := newFakeStore(plantA, plantB)
	d := New(store, testLogger(t), 15, 30*time.Minute)

	deviceID := uuid.New()
	now := time.Now().UTC()
	d.Evaluate(context.Background(), deviceID, 20, now.Add(-10*time.Minute), 45, now)

	require.Len(t, store.events, 2)
	for _, ev := range store.events {
		assert.Equal(t, models.SourceAuto, ev.Source)
		require.NotNil(t, ev.DeviceID)
		assert.Equal(t, deviceID, *ev.DeviceID)
		require.NotNil(t, ev.MoistureBefore)
		assert.InDelta(t, 20, *ev.MoistureBefore, 0.001)
		require.NotNil(t, ev.MoistureAfter)
		assert.InDelta(t, 45, *ev.MoistureAfter, 0.001)
	}
	assert.Len(t, store.touched, 2)
	assert.Equal(t, now, store.touched[plantA])
	assert.Equal(t, now, store.touched[plantB])
}

func TestEvaluateSlowRiseIsIgnored(t *testing.T) {
	store := newFakeStore(uuid.New())
	d := New(store, testLogger(t), 15, 30*time.Minute)

	now := time.Now().UTC()
	d.Evaluate(context.Background(), uuid.New(), 20, now.Add(-2*time.Hour), 30, now)

	assert.Empty(t, store.events)
	assert.Empty(t, store.touched)
}

func TestLogManual(t *testing.T) {
	plantID := uuid.New()
	store := newFakeStore(plantID)
	d := New(store, testLogger(t), 15, 30*time.Minute)

	at := time.Now().UTC()
	ev, err := d.LogManual(context.Background(), plantID, at)
	require.NoError(t, err)

	assert.Equal(t, models.SourceManual, ev.Source)
	assert.Nil(t, ev.MoistureBefore)
	assert.Equal(t, at, store.touched[plantID])
}
