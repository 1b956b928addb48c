package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"

	"garden-core/internal/models"
)

type emailChannel struct {
	address string
	cfg     SMTPConfig
}

func newEmailChannel(raw json.RawMessage, cfg SMTPConfig) (Channel, error) {
	var c models.EmailConfig
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to parse email configuration: %w", err)
	}
	return &emailChannel{address: c.Address, cfg: cfg}, nil
}

// NewDirectEmail builds an email channel for a rule's destination address,
// outside any stored channel row.
func NewDirectEmail(address string, cfg SMTPConfig) Channel {
	return &emailChannel{address: address, cfg: cfg}
}

func (e *emailChannel) Kind() models.ChannelType { return models.ChannelEmail }

func (e *emailChannel) Render(tc models.TriggerContext) Message { return renderTrigger(tc) }

func (e *emailChannel) Send(ctx context.Context, msg Message) error {
	if e.cfg.Server == "" || e.cfg.Port == 0 || e.cfg.Username == "" {
		return fmt.Errorf("missing SMTP configuration: server, port, or username is empty")
	}

	from := e.cfg.From
	if from == "" {
		from = e.cfg.Username
	}
	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", from, e.address, msg.Subject, msg.Body)

	auth := smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Server)
	addr := fmt.Sprintf("%s:%d", e.cfg.Server, e.cfg.Port)

	if err := smtp.SendMail(addr, auth, from, []string{e.address}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", e.address, err)
	}
	return nil
}
