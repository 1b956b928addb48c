package models

import (
	"time"

	"github.com/google/uuid"
)

// WateringSource distinguishes detected events from user-logged ones.
type WateringSource string

const (
	SourceAuto   WateringSource = "auto"
	SourceManual WateringSource = "manual"
)

// WateringEvent is a recorded hydration action. Auto events carry the
// normalized moisture pair that triggered detection; manual events may not.
type WateringEvent struct {
	ID             uuid.UUID      `json:"id"`
	PlantID        uuid.UUID      `json:"plantId"`
	DeviceID       *uuid.UUID     `json:"deviceId,omitempty"`
	DetectedAt     time.Time      `json:"detectedAt"`
	MoistureBefore *float64       `json:"moistureBefore,omitempty"`
	MoistureAfter  *float64       `json:"moistureAfter,omitempty"`
	Source         WateringSource `json:"source"`
}

// WateringEventCreate is the body of POST /api/plants/{id}/watering-events.
// Only manual events are created this way.
type WateringEventCreate struct {
	DetectedAt *time.Time `json:"detectedAt,omitempty"`
}

// WateringEventsListResponse wraps an event collection.
type WateringEventsListResponse struct {
	Data  []WateringEvent `json:"data"`
	Count int             `json:"count"`
}

// WateringSchedule stores only its authoritative fields; NextDueAt and
// Overdue are derived at read time and never persisted.
type WateringSchedule struct {
	ID            uuid.UUID  `json:"id"`
	PlantID       uuid.UUID  `json:"plantId"`
	IntervalDays  int        `json:"intervalDays"`
	LastWateredAt *time.Time `json:"lastWateredAt,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`

	NextDueAt *time.Time `json:"nextDueAt,omitempty"`
	Overdue   bool       `json:"overdue"`
}

// Derive fills NextDueAt and Overdue from the authoritative fields.
func (s *WateringSchedule) Derive(now time.Time) {
	s.NextDueAt = nil
	s.Overdue = false
	if s.LastWateredAt == nil {
		return
	}
	due := s.LastWateredAt.Add(time.Duration(s.IntervalDays) * 24 * time.Hour)
	s.NextDueAt = &due
	s.Overdue = now.After(due)
}

// WateringScheduleCreate is the body of POST /api/plants/{id}/watering-schedule.
type WateringScheduleCreate struct {
	IntervalDays int     `json:"intervalDays" binding:"required,min=1"`
	Notes        *string `json:"notes,omitempty"`
}

// WateringSchedulesListResponse wraps a schedule collection.
type WateringSchedulesListResponse struct {
	Data  []WateringSchedule `json:"data"`
	Count int                `json:"count"`
}

// StatusResponse is the generic write acknowledgement.
type StatusResponse struct {
	Status string `json:"status"`
}

// OK is the canonical success acknowledgement.
func OK() StatusResponse { return StatusResponse{Status: "ok"} }
