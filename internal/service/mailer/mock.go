package mailer

import (
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// SentMail фиксирует параметры отправленного письма.
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// MockSender — конфигурируемая заглушка MailSender для тестов.
type MockSender struct {
	SendErr error

	mu   sync.Mutex
	sent []SentMail
}

// NewMockSender возвращает mock с успешным сценарием по умолчанию.
func NewMockSender() *MockSender {
	return &MockSender{}
}

// Send запоминает письмо и возвращает настроенную ошибку.
func (m *MockSender) Send(to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentMail{To: to, Subject: subject, Body: htmlBody})
	return m.SendErr
}

// Sent возвращает копию списка отправленных писем.
func (m *MockSender) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMail(nil), m.sent...)
}

// SendCalls возвращает число вызовов Send.
func (m *MockSender) SendCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

var _ domain.MailSender = (*MockSender)(nil)
