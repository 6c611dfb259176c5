package mailer

import (
	"encoding/json"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// EmailPayload — содержимое outbox-события с запросом на письмо.
type EmailPayload struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
}

// OutboxEmailPublisher доставляет notification-события через MailSender.
type OutboxEmailPublisher struct {
	sender domain.MailSender
}

// NewOutboxEmailPublisher создаёт publisher поверх отправителя писем.
func NewOutboxEmailPublisher(sender domain.MailSender) *OutboxEmailPublisher {
	return &OutboxEmailPublisher{sender: sender}
}

func (p *OutboxEmailPublisher) Publish(event domain.OutboxMessage) error {
	if p == nil || p.sender == nil {
		return fmt.Errorf("email publisher is not initialized")
	}

	var payload EmailPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("decode email payload: %w", err)
	}
	if payload.To == "" {
		return fmt.Errorf("email payload has no recipient")
	}

	return p.sender.Send(payload.To, payload.Subject, payload.HTMLBody)
}

var _ domain.OutboxPublisher = (*OutboxEmailPublisher)(nil)
