package domain

import "time"

// InvoiceStatus описывает состояние инвойса у платёжного провайдера.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "PENDING"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
	InvoiceStatusExpired InvoiceStatus = "EXPIRED"
)

// Invoice — запись платёжного провайдера, через которую собирается оплата.
type Invoice struct {
	ExternalID string
	PaymentURL string
	Status     InvoiceStatus
}

// PaymentGateway описывает взаимодействие с внешним платёжным шлюзом.
type PaymentGateway interface {
	// CreateInvoice создаёт инвойс на сумму заказа; идентификатором
	// корреляции служит order.ID.
	CreateInvoice(order Order, customer User) (Invoice, error)
	// CheckStatus возвращает текущее состояние инвойса по его внешнему id.
	CheckStatus(externalID string) (InvoiceStatus, error)
	// Method возвращает тег метода оплаты для записи Transaction.
	Method() string
}

// MailSender отправляет транзакционные письма покупателям.
// Ошибка отправки никогда не влияет на результат бизнес-операции.
type MailSender interface {
	Send(to, subject, htmlBody string) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
