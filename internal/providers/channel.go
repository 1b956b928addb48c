// Package providers implements the closed set of notification channels.
// A channel is a capability over render and send; adding a kind means
// adding one implementation here, nothing in the evaluation engine changes.
package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"garden-core/internal/models"
)

// Message is a rendered notification, transport-agnostic.
type Message struct {
	Subject string
	Body    string
}

// Channel delivers rendered messages through one transport.
type Channel interface {
	Kind() models.ChannelType
	Render(tc models.TriggerContext) Message
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig is the process-wide outbound mail configuration.
type SMTPConfig struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
}

// Deps carries shared provider infrastructure: SMTP settings, the Telegram
// rate limiter, the HTTP client, and a circuit breaker guarding outbound
// webhook posts.
type Deps struct {
	SMTP            SMTPConfig
	TelegramLimiter *rate.Limiter
	HTTPClient      *http.Client
	Breaker         *gobreaker.CircuitBreaker
}

// NewDeps builds the shared infrastructure with sane limits.
func NewDeps(smtp SMTPConfig, telegramRatePerSecond int) Deps {
	return Deps{
		SMTP:            smtp,
		TelegramLimiter: rate.NewLimiter(rate.Limit(float64(telegramRatePerSecond)), telegramRatePerSecond),
		HTTPClient:      &http.Client{Timeout: 15 * time.Second},
		Breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "outbound-webhooks",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Build constructs the Channel implementation for a stored channel row,
// validating its typed configuration on the way.
func Build(ch models.NotificationChannel, deps Deps) (Channel, error) {
	if err := models.ValidateChannelConfig(ch.ChannelType, ch.Config); err != nil {
		return nil, err
	}
	switch ch.ChannelType {
	case models.ChannelEmail:
		return newEmailChannel(ch.Config, deps.SMTP)
	case models.ChannelTelegram:
		return newTelegramChannel(ch.Config, deps.TelegramLimiter)
	case models.ChannelDiscord:
		return newDiscordChannel(ch.Config, deps.HTTPClient, deps.Breaker)
	case models.ChannelWebhook:
		return newWebhookChannel(ch.Config, deps.HTTPClient, deps.Breaker)
	default:
		return nil, fmt.Errorf("unknown channel type %q", ch.ChannelType)
	}
}

// renderTrigger builds the canonical alert message shared by all channels.
func renderTrigger(tc models.TriggerContext) Message {
	subject := fmt.Sprintf("Smart Garden Alert: %s %s %g", tc.Metric, tc.Rule.Condition, tc.Rule.Threshold)

	display := fmt.Sprintf("%g", tc.Value)
	if tc.Metric.Normalized() {
		display = fmt.Sprintf("%.1f%%", tc.Value)
	}
	body := fmt.Sprintf("Device %s reported %s = %s, which is %s your threshold of %g.",
		tc.DeviceName, tc.Metric, display, tc.Rule.Condition, tc.Rule.Threshold)

	return Message{Subject: subject, Body: body}
}

// TestMessage is the synthetic message used by the channel test operation.
func TestMessage() Message {
	return Message{
		Subject: "Smart Garden Test",
		Body:    "This is a test notification from your Smart Garden system.",
	}
}
