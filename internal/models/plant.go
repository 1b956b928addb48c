package models

import (
	"time"

	"github.com/google/uuid"
)

// Plant is the subject of watering events and schedules. Devices attach to
// plants through an explicit association.
type Plant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// PlantCreate is the body of POST /api/plants.
type PlantCreate struct {
	Name string `json:"name" binding:"required"`
}

// PlantsListResponse wraps a plant collection.
type PlantsListResponse struct {
	Data  []Plant `json:"data"`
	Count int     `json:"count"`
}

// PlantSensorAssociation is the body of POST /api/plants/{id}/sensors.
type PlantSensorAssociation struct {
	DeviceID uuid.UUID `json:"deviceId" binding:"required"`
}
