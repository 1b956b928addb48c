package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChannelType is the closed set of notification delivery mechanisms.
type ChannelType string

const (
	ChannelEmail    ChannelType = "email"
	ChannelTelegram ChannelType = "telegram"
	ChannelDiscord  ChannelType = "discord"
	ChannelWebhook  ChannelType = "webhook"
)

// Valid reports whether t is a known channel type.
func (t ChannelType) Valid() bool {
	switch t {
	case ChannelEmail, ChannelTelegram, ChannelDiscord, ChannelWebhook:
		return true
	}
	return false
}

// NotificationChannel is one configured delivery target. Config is stored
// as JSONB but its shape is closed per channel type, so validation can be
// exhaustive at create/update time.
type NotificationChannel struct {
	ID          uuid.UUID       `json:"id"`
	ChannelType ChannelType     `json:"channelType"`
	Config      json.RawMessage `json:"config"`
	Enabled     bool            `json:"enabled"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NotificationChannelCreate is the body of POST /api/notification-channels.
type NotificationChannelCreate struct {
	ChannelType ChannelType     `json:"channelType" binding:"required"`
	Config      json.RawMessage `json:"config" binding:"required"`
	Enabled     *bool           `json:"enabled,omitempty"`
}

// NotificationChannelUpdate is the body of PUT /api/notification-channels/{id}.
type NotificationChannelUpdate struct {
	Config  json.RawMessage `json:"config,omitempty"`
	Enabled *bool           `json:"enabled,omitempty"`
}

// ChannelsListResponse wraps a channel collection.
type ChannelsListResponse struct {
	Data  []NotificationChannel `json:"data"`
	Count int                   `json:"count"`
}

// EmailConfig is the config shape for ChannelEmail.
type EmailConfig struct {
	Address string `json:"address"`
}

// TelegramConfig is the config shape for ChannelTelegram.
type TelegramConfig struct {
	BotToken string `json:"bot_token"`
	ChatID   int64  `json:"chat_id"`
}

// DiscordConfig is the config shape for ChannelDiscord.
type DiscordConfig struct {
	WebhookURL string `json:"webhook_url"`
}

// WebhookConfig is the config shape for ChannelWebhook. Secret, when set,
// enables HMAC-SHA256 payload signing.
type WebhookConfig struct {
	URL    string `json:"url"`
	Secret string `json:"secret,omitempty"`
}

// ValidateChannelConfig parses and checks raw config against the shape its
// channel type requires.
func ValidateChannelConfig(t ChannelType, raw json.RawMessage) error {
	switch t {
	case ChannelEmail:
		var c EmailConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("invalid email config: %w", err)
		}
		if !strings.Contains(c.Address, "@") {
			return fmt.Errorf("email config requires a valid address")
		}
	case ChannelTelegram:
		var c TelegramConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("invalid telegram config: %w", err)
		}
		if c.BotToken == "" || c.ChatID == 0 {
			return fmt.Errorf("telegram config requires bot_token and chat_id")
		}
	case ChannelDiscord:
		var c DiscordConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("invalid discord config: %w", err)
		}
		if err := validateHTTPURL(c.WebhookURL); err != nil {
			return fmt.Errorf("discord config: %w", err)
		}
	case ChannelWebhook:
		var c WebhookConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("invalid webhook config: %w", err)
		}
		if err := validateHTTPURL(c.URL); err != nil {
			return fmt.Errorf("webhook config: %w", err)
		}
	default:
		return fmt.Errorf("unknown channel type %q", t)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("requires an http(s) url")
	}
	return nil
}
