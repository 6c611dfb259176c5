package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	defaultRequestTimeout = 10 * time.Second

	methodInvoice = "invoice"
)

// Gateway — HTTP-клиент внешнего платёжного провайдера.
type Gateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *log.Entry
}

// NewGateway создаёт клиент платёжного шлюза.
func NewGateway(baseURL, apiKey string) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultRequestTimeout},
		logger:  log.WithField("component", "payment-gateway"),
	}
}

type createInvoiceRequest struct {
	ExternalID  string `json:"external_id"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	PayerEmail  string `json:"payer_email,omitempty"`
	Description string `json:"description,omitempty"`
}

type invoiceResponse struct {
	ID         string `json:"id"`
	InvoiceURL string `json:"invoice_url"`
	Status     string `json:"status"`
}

// CreateInvoice создаёт инвойс на сумму заказа; корреляция идёт по order.ID.
func (g *Gateway) CreateInvoice(order domain.Order, customer domain.User) (domain.Invoice, error) {
	body, err := json.Marshal(createInvoiceRequest{
		ExternalID:  order.ID,
		AmountMinor: order.TotalMinor,
		Currency:    order.Currency,
		PayerEmail:  customer.Email,
		Description: fmt.Sprintf("order %s", order.ID),
	})
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("encode invoice request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, g.baseURL+"/v2/invoices", bytes.NewReader(body))
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("build invoice request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.apiKey, "")

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("%w: %v", domain.ErrPaymentGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		g.logger.WithField("status", resp.StatusCode).Warn("invoice creation rejected by gateway")
		return domain.Invoice{}, fmt.Errorf("%w: unexpected status %d", domain.ErrPaymentGateway, resp.StatusCode)
	}

	var decoded invoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Invoice{}, fmt.Errorf("decode invoice response: %w", err)
	}

	return domain.Invoice{
		ExternalID: decoded.ID,
		PaymentURL: decoded.InvoiceURL,
		Status:     mapInvoiceStatus(decoded.Status),
	}, nil
}

// CheckStatus возвращает текущее состояние инвойса.
func (g *Gateway) CheckStatus(externalID string) (domain.InvoiceStatus, error) {
	req, err := http.NewRequest(http.MethodGet, g.baseURL+"/v2/invoices/"+externalID, nil)
	if err != nil {
		return "", fmt.Errorf("build status request: %w", err)
	}
	req.SetBasicAuth(g.apiKey, "")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPaymentGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d", domain.ErrPaymentGateway, resp.StatusCode)
	}

	var decoded invoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode status response: %w", err)
	}

	return mapInvoiceStatus(decoded.Status), nil
}

// Method возвращает тег метода оплаты для записи Transaction.
func (g *Gateway) Method() string {
	return methodInvoice
}

func mapInvoiceStatus(status string) domain.InvoiceStatus {
	switch status {
	case "PAID", "SETTLED":
		return domain.InvoiceStatusPaid
	case "EXPIRED":
		return domain.InvoiceStatusExpired
	default:
		return domain.InvoiceStatusPending
	}
}

var _ domain.PaymentGateway = (*Gateway)(nil)
