package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garden-core/internal/models"
)

func triggerContext() models.TriggerContext {
	return models.TriggerContext{
		Rule: models.AlertRule{
			ID:        uuid.New(),
			Metric:    models.MetricSoilMoisture,
			Condition: models.ConditionBelow,
			Threshold: 30,
			Email:     "owner@example.com",
		},
		DeviceName: "balcony",
		Metric:     models.MetricSoilMoisture,
		Value:      24.5,
		RawValue:   702,
		OccurredAt: time.Now().UTC(),
	}
}

func TestRenderTrigger(t *testing.T) {
	msg := renderTrigger(triggerContext())

	assert.Equal(t, "Smart Garden Alert: soil_moisture below 30", msg.Subject)
	assert.Contains(t, msg.Body, "balcony")
	assert.Contains(t, msg.Body, "24.5%", "normalized kinds render as percentages")
	assert.Contains(t, msg.Body, "below your threshold of 30")
}

func TestRenderTriggerRawKind(t *testing.T) {
	tc := triggerContext()
	tc.Metric = models.MetricTemperature
	tc.Rule.Metric = models.MetricTemperature
	tc.Rule.Condition = models.ConditionAbove
	tc.Value = 31.2
	tc.RawValue = 31.2

	msg := renderTrigger(tc)
	assert.Contains(t, msg.Body, "temperature = 31.2,")
	assert.NotContains(t, msg.Body, "%")
}

func TestWebhookSignsPayload(t *testing.T) {
	secret := "s3cret"
	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Signature-256")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	deps := NewDeps(SMTPConfig{}, 25)
	cfg, _ := json.Marshal(models.WebhookConfig{URL: srv.URL, Secret: secret})
	ch, err := Build(models.NotificationChannel{ChannelType: models.ChannelWebhook, Config: cfg}, deps)
	require.NoError(t, err)

	msg := ch.Render(triggerContext())
	require.NoError(t, ch.Send(context.Background(), msg))

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	assert.Equal(t, "sha256="+hex.EncodeToString(mac.Sum(nil)), gotSig)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, msg.Subject, payload["subject"])
	assert.Equal(t, "garden-core", payload["source"])
}

func TestWebhookWithoutSecretOmitsSignature(t *testing.T) {
	var gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Signature-256")
	}))
	defer srv.Close()

	deps := NewDeps(SMTPConfig{}, 25)
	cfg, _ := json.Marshal(models.WebhookConfig{URL: srv.URL})
	ch, err := Build(models.NotificationChannel{ChannelType: models.ChannelWebhook, Config: cfg}, deps)
	require.NoError(t, err)

	require.NoError(t, ch.Send(context.Background(), TestMessage()))
	assert.Empty(t, gotSig)
}

func TestWebhookRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	deps := NewDeps(SMTPConfig{}, 25)
	cfg, _ := json.Marshal(models.WebhookConfig{URL: srv.URL})
	ch, err := Build(models.NotificationChannel{ChannelType: models.ChannelWebhook, Config: cfg}, deps)
	require.NoError(t, err)

	assert.Error(t, ch.Send(context.Background(), TestMessage()))
}

func TestDiscordPostsBoldedContent(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	deps := NewDeps(SMTPConfig{}, 25)
	cfg, _ := json.Marshal(models.DiscordConfig{WebhookURL: srv.URL})
	ch, err := Build(models.NotificationChannel{ChannelType: models.ChannelDiscord, Config: cfg}, deps)
	require.NoError(t, err)

	msg := ch.Render(triggerContext())
	require.NoError(t, ch.Send(context.Background(), msg))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Contains(t, payload["content"], "**Smart Garden Alert")
}

func TestBuildRejectsMisconfiguredChannels(t *testing.T) {
	deps := NewDeps(SMTPConfig{}, 25)

	tests := []struct {
		name        string
		channelType models.ChannelType
		config      string
	}{
		{"email without address", models.ChannelEmail, `{"address":"not-an-email"}`},
		{"telegram without chat id", models.ChannelTelegram, `{"bot_token":"t"}`},
		{"webhook with bad url", models.ChannelWebhook, `{"url":"ftp://example.com"}`},
		{"discord with empty url", models.ChannelDiscord, `{"webhook_url":""}`},
		{"unknown type", "pager", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(models.NotificationChannel{
				ChannelType: tt.channelType,
				Config:      json.RawMessage(tt.config),
			}, deps)
			assert.Error(t, err)
		})
	}
}
