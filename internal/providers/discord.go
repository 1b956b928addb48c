package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"

	"garden-core/internal/models"
)

// discordChannel posts to a chat-service webhook; the URL is the only
// configuration it carries.
type discordChannel struct {
	webhookURL string
	client     *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func newDiscordChannel(raw json.RawMessage, client *http.Client, breaker *gobreaker.CircuitBreaker) (Channel, error) {
	var c models.DiscordConfig
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to parse discord configuration: %w", err)
	}
	return &discordChannel{webhookURL: c.WebhookURL, client: client, breaker: breaker}, nil
}

func (d *discordChannel) Kind() models.ChannelType { return models.ChannelDiscord }

func (d *discordChannel) Render(tc models.TriggerContext) Message {
	msg := renderTrigger(tc)
	return Message{Subject: msg.Subject, Body: fmt.Sprintf("**%s**\n%s", msg.Subject, msg.Body)}
}

func (d *discordChannel) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(map[string]string{"content": msg.Body})
	if err != nil {
		return fmt.Errorf("failed to marshal discord payload: %w", err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	return postThroughBreaker(ctx, d.client, d.breaker, d.webhookURL, payload, headers)
}
