package models

import (
	"time"

	"github.com/google/uuid"
)

// MetricKind is the closed set of measurement kinds devices can report.
type MetricKind string

const (
	MetricTemperature  MetricKind = "temperature"
	MetricHumidity     MetricKind = "humidity"
	MetricSoilMoisture MetricKind = "soil_moisture"
	MetricLightLux     MetricKind = "light_lux"
	MetricCO2PPM       MetricKind = "co2_ppm"
	MetricVOCPPB       MetricKind = "voc_ppb"
	MetricPressureHPA  MetricKind = "pressure_hpa"
)

// Valid reports whether k belongs to the metric enumeration.
func (k MetricKind) Valid() bool {
	switch k {
	case MetricTemperature, MetricHumidity, MetricSoilMoisture,
		MetricLightLux, MetricCO2PPM, MetricVOCPPB, MetricPressureHPA:
		return true
	}
	return false
}

// Normalized reports whether raw values of this kind are converted to a
// percentage before threshold comparison and trend aggregation. Stored
// values are always raw.
func (k MetricKind) Normalized() bool {
	return k == MetricSoilMoisture
}

// ReadingItem is one (kind, value) pair inside a wake-cycle batch.
type ReadingItem struct {
	Metric MetricKind `json:"kind"`
	Value  float64    `json:"value"`
}

// ReadingsCreate is the body of POST /api/readings and of the payloads
// consumed from Kafka and MQTT. Deliberately free of binding tags: the
// ingestion pipeline validates every field itself so failures surface as
// 422 with per-field locations, not as a generic bind error.
type ReadingsCreate struct {
	DeviceAddress  string        `json:"deviceAddress"`
	Readings       []ReadingItem `json:"readings"`
	RecordedAt     int64         `json:"recordedAt"`
	DeviceClass    string        `json:"deviceClass,omitempty"`
	ResolutionBits int           `json:"resolutionBits,omitempty"`
}

// ReadingsCreateResponse reports the outcome of one ingested wake cycle.
type ReadingsCreateResponse struct {
	Status          string `json:"status"`
	Inserted        int    `json:"inserted"`
	AlertsTriggered int    `json:"alertsTriggered"`
}

// Reading is one immutable persisted measurement.
type Reading struct {
	ID         uuid.UUID  `json:"id"`
	DeviceID   uuid.UUID  `json:"deviceId"`
	Metric     MetricKind `json:"kind"`
	Value      float64    `json:"value"`
	RecordedAt time.Time  `json:"recordedAt"`
}

// ReadingsListResponse is the plain collection shape every read endpoint uses.
type ReadingsListResponse struct {
	Data  []Reading `json:"data"`
	Count int       `json:"count"`
}
