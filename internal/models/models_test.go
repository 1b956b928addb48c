package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalAddr(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AA:BB:CC:DD:EE:FF", "aabbccddeeff"},
		{"aa-bb-cc-dd-ee-ff", "aabbccddeeff"},
		{"  AA.BB.CC DD EE FF ", "aabbccddeeff"},
		{"aabbccddeeff", "aabbccddeeff"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalAddr(tt.in), "input %q", tt.in)
	}
}

func TestMetricKindValid(t *testing.T) {
	assert.True(t, MetricKind("soil_moisture").Valid())
	assert.True(t, MetricKind("co2_ppm").Valid())
	assert.False(t, MetricKind("soil_misture").Valid())
	assert.False(t, MetricKind("").Valid())
}

func TestOnlySoilMoistureNormalizes(t *testing.T) {
	assert.True(t, MetricSoilMoisture.Normalized())
	assert.False(t, MetricTemperature.Normalized())
	assert.False(t, MetricLightLux.Normalized())
}

func TestValidateChannelConfig(t *testing.T) {
	tests := []struct {
		name    string
		kind    ChannelType
		config  string
		wantErr bool
	}{
		{"valid email", ChannelEmail, `{"address":"a@b.com"}`, false},
		{"email missing at", ChannelEmail, `{"address":"ab.com"}`, true},
		{"valid telegram", ChannelTelegram, `{"bot_token":"t","chat_id":42}`, false},
		{"telegram missing token", ChannelTelegram, `{"chat_id":42}`, true},
		{"valid discord", ChannelDiscord, `{"webhook_url":"https://discord.example/hook"}`, false},
		{"discord non-http scheme", ChannelDiscord, `{"webhook_url":"ftp://x"}`, true},
		{"valid webhook with secret", ChannelWebhook, `{"url":"https://example.com/hook","secret":"s"}`, false},
		{"webhook missing host", ChannelWebhook, `{"url":"https://"}`, true},
		{"unknown kind", ChannelType("pager"), `{}`, true},
		{"malformed json", ChannelEmail, `{`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChannelConfig(tt.kind, json.RawMessage(tt.config))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWateringScheduleDerive(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	t.Run("never watered", func(t *testing.T) {
		s := WateringSchedule{IntervalDays: 3}
		s.Derive(now)
		assert.Nil(t, s.NextDueAt)
		assert.False(t, s.Overdue)
	})

	t.Run("due in the future", func(t *testing.T) {
		watered := now.Add(-24 * time.Hour)
		s := WateringSchedule{IntervalDays: 3, LastWateredAt: &watered}
		s.Derive(now)
		require.NotNil(t, s.NextDueAt)
		assert.Equal(t, watered.Add(72*time.Hour), *s.NextDueAt)
		assert.False(t, s.Overdue)
	})

	t.Run("overdue", func(t *testing.T) {
		watered := now.Add(-4 * 24 * time.Hour)
		s := WateringSchedule{IntervalDays: 3, LastWateredAt: &watered}
		s.Derive(now)
		require.NotNil(t, s.NextDueAt)
		assert.True(t, s.Overdue)
	})
}

func TestAlertConditionValid(t *testing.T) {
	assert.True(t, ConditionAbove.Valid())
	assert.True(t, ConditionBelow.Valid())
	assert.False(t, AlertCondition("equals").Valid())
}
