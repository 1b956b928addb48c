// Package mqtt feeds reading batches published by field devices into the
// ingestion pipeline. Payloads are the same JSON body POST /readings
// accepts.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"garden-core/internal/ingest"
	"garden-core/internal/logging"
	"garden-core/internal/models"
)

type Config struct {
	Broker   string
	Topic    string
	ClientID string
}

type Consumer struct {
	client mqtt.Client
	topic  string
	svc    *ingest.Service
	logger *logging.Logger
}

// Connect dials the broker with exponential backoff and returns a consumer
// bound to the configured topic.
func Connect(ctx context.Context, cfg Config, svc *ingest.Service, logger *logging.Logger) (*Consumer, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			logger.Warnf("MQTT connect failed, retrying: %v", token.Error())
			return token.Error()
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, 4), ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mqtt broker %s: %w", cfg.Broker, err)
	}

	logger.Infof("Connected to MQTT broker at %s", cfg.Broker)
	return &Consumer{client: client, topic: cfg.Topic, svc: svc, logger: logger}, nil
}

// Start subscribes and blocks until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	token := c.client.Subscribe(c.topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		c.handle(ctx, msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.topic, token.Error())
	}
	c.logger.Infof("MQTT consumer subscribed to %s", c.topic)

	<-ctx.Done()
	c.client.Unsubscribe(c.topic).Wait()
	c.client.Disconnect(250)
	c.logger.Infof("MQTT consumer stopped")
	return nil
}

func (c *Consumer) handle(ctx context.Context, payload []byte) {
	var batch models.ReadingsCreate
	if err := json.Unmarshal(payload, &batch); err != nil {
		c.logger.Errorf("Unmarshal mqtt message failed: %v", err)
		return
	}

	resp, err := c.svc.Ingest(ctx, batch)
	if err != nil {
		c.logger.Errorf("Ingest from mqtt failed for %s: %v", batch.DeviceAddress, err)
		return
	}
	c.logger.Infof("Ingested %d readings from mqtt for %s (%d alerts)",
		resp.Inserted, batch.DeviceAddress, resp.AlertsTriggered)
}
