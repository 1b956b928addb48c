// Package kafka feeds reading batches from a topic into the ingestion
// pipeline. Payloads are the same JSON body POST /readings accepts.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/segmentio/kafka-go"

	"garden-core/internal/ingest"
	"garden-core/internal/logging"
	"garden-core/internal/models"
)

type Config struct {
	Broker  string
	Topic   string
	GroupID string
}

type Consumer struct {
	reader *kafka.Reader
	svc    *ingest.Service
	logger *logging.Logger
}

func NewConsumer(cfg Config, svc *ingest.Service, logger *logging.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Broker},
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
	return &Consumer{reader: reader, svc: svc, logger: logger}
}

// Start consumes until the context is cancelled. Malformed or invalid
// payloads are logged and skipped; there is no dead-letter handling, the
// device retries on its next wake cycle.
func (c *Consumer) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.logger.Infof("Kafka consumer started on topic %s", c.reader.Config().Topic)

		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				c.logger.Errorf("Read message failed: %v", err)
				continue
			}

			var batch models.ReadingsCreate
			if err := json.Unmarshal(msg.Value, &batch); err != nil {
				c.logger.Errorf("Unmarshal message failed: %v", err)
				continue
			}

			resp, err := c.svc.Ingest(ctx, batch)
			if err != nil {
				c.logger.Errorf("Ingest from kafka failed for %s: %v", batch.DeviceAddress, err)
				continue
			}
			c.logger.Infof("Ingested %d readings from kafka for %s (%d alerts)",
				resp.Inserted, batch.DeviceAddress, resp.AlertsTriggered)
		}
	}()
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Errorf("Failed to close kafka reader: %v", err)
	}
}
