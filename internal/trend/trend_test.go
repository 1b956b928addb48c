package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garden-core/internal/models"
)

func readingsOn(day time.Time, values ...float64) []models.Reading {
	out := make([]models.Reading, 0, len(values))
	for i, v := range values {
		out = append(out, models.Reading{
			Metric:     models.MetricTemperature,
			Value:      v,
			RecordedAt: day.Add(time.Duration(i) * time.Hour),
		})
	}
	return out
}

func TestComputeBucketsByUTCDay(t *testing.T) {
	day1 := time.Date(2026, 8, 20, 6, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 21, 6, 0, 0, 0, time.UTC)

	current := append(readingsOn(day1, 10, 20, 30), readingsOn(day2, 40)...)
	resp := Compute("temperature", "7d", current, nil, nil, 3)

	require.Len(t, resp.Points, 2)
	assert.Equal(t, "2026-08-20", resp.Points[0].Day)
	assert.Equal(t, 20.0, resp.Points[0].Avg)
	assert.Equal(t, 10.0, resp.Points[0].Min)
	assert.Equal(t, 30.0, resp.Points[0].Max)
	assert.Equal(t, "2026-08-21", resp.Points[1].Day)
	assert.Equal(t, 40.0, resp.Points[1].Avg)
	assert.Equal(t, 25.0, resp.CurrentAvg)
}

func TestComputeEmptyDaysAreOmitted(t *testing.T) {
	day1 := time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC)
	day3 := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	current := append(readingsOn(day1, 5), readingsOn(day3, 7)...)
	resp := Compute("temperature", "7d", current, nil, nil, 3)

	require.Len(t, resp.Points, 2, "the empty middle day must not be zero-filled")
}

func TestComputeDirectionClassification(t *testing.T) {
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	prevDay := day.AddDate(0, 0, -8)

	tests := []struct {
		name      string
		current   float64
		previous  float64
		direction string
		changePct float64
	}{
		{"rising", 110, 100, DirectionUp, 10},
		{"falling", 90, 100, DirectionDown, -10},
		{"within threshold", 102, 100, DirectionStable, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := Compute("temperature", "7d",
				readingsOn(day, tt.current), readingsOn(prevDay, tt.previous), nil, 3)
			assert.Equal(t, tt.direction, resp.Direction)
			require.NotNil(t, resp.ChangePct)
			assert.Equal(t, tt.changePct, *resp.ChangePct)
		})
	}
}

func TestComputeZeroPreviousAvgIsStable(t *testing.T) {
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	prevDay := day.AddDate(0, 0, -8)

	resp := Compute("temperature", "7d",
		readingsOn(day, 5), readingsOn(prevDay, 0), nil, 3)

	assert.Equal(t, DirectionStable, resp.Direction)
	assert.Nil(t, resp.ChangePct, "changePct is undefined when the baseline averages to zero")
	require.NotNil(t, resp.PreviousAvg)
	assert.Equal(t, 0.0, *resp.PreviousAvg)
}

func TestComputeNoBaselineIsStable(t *testing.T) {
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	resp := Compute("temperature", "7d", readingsOn(day, 5), nil, nil, 3)

	assert.Equal(t, DirectionStable, resp.Direction)
	assert.Nil(t, resp.PreviousAvg)
	assert.Nil(t, resp.ChangePct)
}

func TestComputeAppliesNormalization(t *testing.T) {
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	half := func(v float64) float64 { return v / 2 }

	resp := Compute("soil_moisture", "7d", readingsOn(day, 80), nil, half, 3)

	require.Len(t, resp.Points, 1)
	assert.Equal(t, 40.0, resp.Points[0].Avg)
	assert.Equal(t, 40.0, resp.CurrentAvg)
}

func TestComputeEmptyCurrentPeriod(t *testing.T) {
	resp := Compute("temperature", "7d", nil, nil, nil, 3)

	assert.Empty(t, resp.Points)
	assert.Equal(t, 0.0, resp.CurrentAvg)
	assert.Equal(t, DirectionStable, resp.Direction)
}
