package models

import (
	"time"

	"github.com/google/uuid"
)

// SoilType is a named calibration profile. Both resolution pairs are kept
// side by side so one profile can serve a 10-bit and a 12-bit device
// reading the same medium.
type SoilType struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	RawDry      int       `json:"rawDry"`
	RawWet      int       `json:"rawWet"`
	RawDry12Bit int       `json:"rawDry12bit"`
	RawWet12Bit int       `json:"rawWet12bit"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SoilTypeCreate is the body of POST /api/soil-types.
type SoilTypeCreate struct {
	Name        string `json:"name" binding:"required"`
	RawDry      *int   `json:"rawDry,omitempty"`
	RawWet      *int   `json:"rawWet,omitempty"`
	RawDry12Bit *int   `json:"rawDry12bit,omitempty"`
	RawWet12Bit *int   `json:"rawWet12bit,omitempty"`
}

// SoilTypeUpdate is the body of PUT /api/soil-types/{id}.
type SoilTypeUpdate struct {
	Name        *string `json:"name,omitempty"`
	RawDry      *int    `json:"rawDry,omitempty"`
	RawWet      *int    `json:"rawWet,omitempty"`
	RawDry12Bit *int    `json:"rawDry12bit,omitempty"`
	RawWet12Bit *int    `json:"rawWet12bit,omitempty"`
}

// SoilTypesListResponse wraps a profile collection.
type SoilTypesListResponse struct {
	Data  []SoilType `json:"data"`
	Count int        `json:"count"`
}

// OptimalRange holds the four ordered bounds used for status
// classification and chart reference lines. It plays no part in alerting.
type OptimalRange struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Metric     MetricKind `json:"kind"`
	Min        float64    `json:"min"`
	OptimalMin float64    `json:"optimalMin"`
	OptimalMax float64    `json:"optimalMax"`
	Max        float64    `json:"max"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// OptimalRangeCreate is the body of POST /api/optimal-ranges.
type OptimalRangeCreate struct {
	Name       string     `json:"name" binding:"required"`
	Metric     MetricKind `json:"kind" binding:"required"`
	Min        float64    `json:"min"`
	OptimalMin float64    `json:"optimalMin"`
	OptimalMax float64    `json:"optimalMax"`
	Max        float64    `json:"max"`
}

// OptimalRangesListResponse wraps a range collection.
type OptimalRangesListResponse struct {
	Data  []OptimalRange `json:"data"`
	Count int            `json:"count"`
}
