package providers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"

	"garden-core/internal/models"
)

// webhookChannel posts a JSON payload to an arbitrary URL, optionally
// signing it with HMAC-SHA256 over the raw body.
type webhookChannel struct {
	url     string
	secret  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func newWebhookChannel(raw json.RawMessage, client *http.Client, breaker *gobreaker.CircuitBreaker) (Channel, error) {
	var c models.WebhookConfig
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to parse webhook configuration: %w", err)
	}
	return &webhookChannel{url: c.URL, secret: c.Secret, client: client, breaker: breaker}, nil
}

func (w *webhookChannel) Kind() models.ChannelType { return models.ChannelWebhook }

func (w *webhookChannel) Render(tc models.TriggerContext) Message { return renderTrigger(tc) }

func (w *webhookChannel) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(map[string]string{
		"subject": msg.Subject,
		"body":    msg.Body,
		"source":  "garden-core",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	if w.secret != "" {
		mac := hmac.New(sha256.New, []byte(w.secret))
		mac.Write(payload)
		headers.Set("X-Signature-256", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	}

	return postThroughBreaker(ctx, w.client, w.breaker, w.url, payload, headers)
}

// postThroughBreaker runs an HTTP POST behind the shared circuit breaker so
// a dead endpoint stops consuming dispatch workers.
func postThroughBreaker(ctx context.Context, client *http.Client, breaker *gobreaker.CircuitBreaker, url string, payload []byte, headers http.Header) error {
	_, err := breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		for k, vs := range headers {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to post to %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("endpoint %s returned status %d", url, resp.StatusCode)
		}
		return nil, nil
	})
	return err
}
