package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-telegram/bot"
	"golang.org/x/time/rate"

	"garden-core/internal/models"
)

type telegramChannel struct {
	botToken string
	chatID   int64
	limiter  *rate.Limiter
}

func newTelegramChannel(raw json.RawMessage, limiter *rate.Limiter) (Channel, error) {
	var c models.TelegramConfig
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to parse telegram configuration: %w", err)
	}
	return &telegramChannel{botToken: c.BotToken, chatID: c.ChatID, limiter: limiter}, nil
}

func (t *telegramChannel) Kind() models.ChannelType { return models.ChannelTelegram }

func (t *telegramChannel) Render(tc models.TriggerContext) Message {
	msg := renderTrigger(tc)
	// Telegram renders the subject inline, bolded.
	return Message{Subject: msg.Subject, Body: fmt.Sprintf("*%s*\n%s", msg.Subject, msg.Body)}
}

func (t *telegramChannel) Send(ctx context.Context, msg Message) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit wait: %w", err)
	}

	b, err := bot.New(t.botToken)
	if err != nil {
		return fmt.Errorf("failed to initialize telegram bot: %w", err)
	}

	params := &bot.SendMessageParams{
		ChatID:    t.chatID,
		Text:      msg.Body,
		ParseMode: "Markdown",
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("failed to send telegram message to chat_id %d: %w", t.chatID, err)
	}
	return nil
}
