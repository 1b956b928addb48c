// Package trend buckets a device's series into day windows and classifies
// the period-over-period direction.
package trend

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"garden-core/internal/models"
)

// ReadingSource is the slice of the store the aggregator needs.
type ReadingSource interface {
	ReadingsSince(ctx context.Context, deviceID uuid.UUID, metric string, from, to time.Time) ([]models.Reading, error)
}

// Directions.
const (
	DirectionUp     = "up"
	DirectionDown   = "down"
	DirectionStable = "stable"
)

// Aggregator computes day-bucketed trends.
type Aggregator struct {
	store     ReadingSource
	stablePct float64
}

// New constructs an Aggregator; |changePct| below stablePct classifies as stable.
func New(store ReadingSource, stablePct float64) *Aggregator {
	return &Aggregator{store: store, stablePct: stablePct}
}

// Trend aggregates [now-periodDays, now) into UTC day buckets and compares
// the period's average against the immediately preceding period of equal
// length. normalize, when non-nil, maps raw stored values to the domain the
// caller wants aggregated (e.g. soil moisture percent).
func (a *Aggregator) Trend(ctx context.Context, deviceID uuid.UUID, metric models.MetricKind, period string, periodDays int, normalize func(float64) float64, now time.Time) (models.TrendResponse, error) {
	from := now.AddDate(0, 0, -periodDays)
	prevFrom := now.AddDate(0, 0, -2*periodDays)

	current, err := a.store.ReadingsSince(ctx, deviceID, string(metric), from, now)
	if err != nil {
		return models.TrendResponse{}, err
	}
	previous, err := a.store.ReadingsSince(ctx, deviceID, string(metric), prevFrom, from)
	if err != nil {
		return models.TrendResponse{}, err
	}

	return Compute(string(metric), period, current, previous, normalize, a.stablePct), nil
}

// Compute is the pure aggregation over already-fetched readings.
func Compute(metric, period string, current, previous []models.Reading, normalize func(float64) float64, stablePct float64) models.TrendResponse {
	resp := models.TrendResponse{
		Metric:    metric,
		Period:    period,
		Direction: DirectionStable,
	}

	if normalize == nil {
		normalize = func(v float64) float64 { return v }
	}

	buckets := map[string][]float64{}
	var all []float64
	for _, r := range current {
		v := normalize(r.Value)
		day := r.RecordedAt.UTC().Format("2006-01-02")
		buckets[day] = append(buckets[day], v)
		all = append(all, v)
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	for _, day := range days {
		vals := buckets[day]
		resp.Points = append(resp.Points, models.TrendPoint{
			Day: day,
			Avg: round2(avg(vals)),
			Min: round2(minOf(vals)),
			Max: round2(maxOf(vals)),
		})
	}

	if len(all) == 0 {
		return resp
	}
	resp.CurrentAvg = round2(avg(all))

	if len(previous) == 0 {
		// No baseline: direction stays stable, changePct omitted.
		return resp
	}

	prevVals := make([]float64, 0, len(previous))
	for _, r := range previous {
		prevVals = append(prevVals, normalize(r.Value))
	}
	prev := round2(avg(prevVals))
	resp.PreviousAvg = &prev

	if prev == 0 {
		// Division by zero is defined away: forced stable, changePct omitted.
		return resp
	}

	change := round1((resp.CurrentAvg - prev) / math.Abs(prev) * 100)
	resp.ChangePct = &change
	switch {
	case math.Abs(change) < stablePct:
		resp.Direction = DirectionStable
	case change > 0:
		resp.Direction = DirectionUp
	default:
		resp.Direction = DirectionDown
	}
	return resp
}

func avg(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
