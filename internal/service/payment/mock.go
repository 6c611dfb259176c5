package payment

import "github.com/vladislavdragonenkov/storefront/internal/domain"

// MockGateway — конфигурируемая заглушка PaymentGateway для тестов.
type MockGateway struct {
	Invoice    domain.Invoice
	InvoiceErr error
	Status     domain.InvoiceStatus
	StatusErr  error

	CreateCalls int
	StatusCalls int
}

// NewMockGateway возвращает mock с успешным сценарием по умолчанию.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		Invoice: domain.Invoice{
			ExternalID: "mock-invoice-1",
			PaymentURL: "https://pay.example.com/mock-invoice-1",
			Status:     domain.InvoiceStatusPending,
		},
		Status: domain.InvoiceStatusPaid,
	}
}

// CreateInvoice возвращает заранее настроенный результат и считает вызовы.
func (m *MockGateway) CreateInvoice(order domain.Order, customer domain.User) (domain.Invoice, error) {
	m.CreateCalls++
	return m.Invoice, m.InvoiceErr
}

// CheckStatus возвращает настроенный результат и считает вызовы.
func (m *MockGateway) CheckStatus(externalID string) (domain.InvoiceStatus, error) {
	m.StatusCalls++
	return m.Status, m.StatusErr
}

// Method возвращает тег метода оплаты.
func (m *MockGateway) Method() string {
	return methodInvoice
}

var _ domain.PaymentGateway = (*MockGateway)(nil)
