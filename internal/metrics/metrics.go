// Package metrics exposes the service's prometheus instrumentation.
// Dispatch outcomes are observable only here and in logs, never through
// the ingestion response.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReadingsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "readings_ingested_total",
		Help: "Readings persisted across all wake cycles.",
	})

	IngestRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_batches_rejected_total",
		Help: "Wake-cycle batches rejected by validation.",
	})

	AlertsTriggered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alerts_triggered_total",
		Help: "Alert trigger records created (one per notification fan-out).",
	})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Channel send attempts by channel type and outcome.",
	}, []string{"channel", "status"})

	WateringEventsDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watering_events_detected_total",
		Help: "Auto watering events synthesized from moisture jumps.",
	})
)
