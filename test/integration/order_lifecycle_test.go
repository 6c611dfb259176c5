package integration

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/service/mailer"
	"github.com/vladislavdragonenkov/storefront/internal/service/outbox"
	"github.com/vladislavdragonenkov/storefront/internal/service/payment"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	transport "github.com/vladislavdragonenkov/storefront/internal/transport/http"
)

const (
	customerToken = "customer-token"
	adminToken    = "admin-token"
)

// capturingPublisher собирает события заказов вместо Kafka.
type capturingPublisher struct {
	mu     sync.Mutex
	events []domain.OutboxMessage
}

func (p *capturingPublisher) Publish(event domain.OutboxMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) published() []domain.OutboxMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.OutboxMessage, len(p.events))
	copy(out, p.events)
	return out
}

// OrderLifecycleTestSuite тестирует полный жизненный цикл заказа через
// HTTP API: каталог, корзина, оформление, доставка событий, переходы статусов.
type OrderLifecycleTestSuite struct {
	suite.Suite
	server  *transport.Server
	orders  domain.OrderRepository
	outbox  domain.OutboxRepository
	worker  *outbox.Worker
	events  *capturingPublisher
	sender  *mailer.MockSender
	gateway *payment.MockGateway
}

func (s *OrderLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	logger := baseLogger.WithField("component", "integration-test")

	products := memory.NewProductRepository()
	s.orders = memory.NewOrderRepository(products)
	users := memory.NewUserRepository()
	carts := memory.NewCartRepository()
	s.outbox = memory.NewOutboxRepository()
	references := memory.NewReferenceRepository()
	banners := memory.NewBannerRepository()

	s.gateway = payment.NewMockGateway()
	s.sender = mailer.NewMockSender()
	s.events = &capturingPublisher{}

	require.NoError(s.T(), users.Create(domain.User{
		ID:       "user-1",
		Email:    "buyer@example.com",
		Name:     "Buyer",
		Role:     domain.UserRoleCustomer,
		APIToken: customerToken,
	}))
	require.NoError(s.T(), users.Create(domain.User{
		ID:       "admin-1",
		Email:    "admin@example.com",
		Name:     "Admin",
		Role:     domain.UserRoleAdmin,
		APIToken: adminToken,
	}))

	checkoutSvc := checkout.NewService(s.orders, products, checkout.Options{
		Users:   users,
		Carts:   carts,
		Outbox:  s.outbox,
		Gateway: s.gateway,
		Logger:  logger,
	})
	catalogSvc := catalog.NewService(products, references, banners)
	cartSvc := cart.NewService(carts, products)

	dispatcher := outbox.NewDispatcher(s.events).
		Route(string(kafka.EventTypeEmailRequested), mailer.NewOutboxEmailPublisher(s.sender))
	s.worker = outbox.NewWorker(s.outbox, dispatcher,
		outbox.WithLogger(logger),
		outbox.WithRetryBaseDelay(0),
	)

	s.server = transport.NewServer(checkoutSvc, catalogSvc, cartSvc, users)
}

func (s *OrderLifecycleTestSuite) TestSuccessfulOrderLifecycle() {
	// 1. Админ заводит товар с вариантом.
	w := s.do(http.MethodPost, "/api/v1/admin/products", adminToken, map[string]any{
		"name":        "Laptop Pro",
		"currency":    "IDR",
		"price_minor": 199900,
		"variants":    []map[string]any{{"stock": 3}},
	})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	var created struct {
		Product struct {
			ID       string `json:"id"`
			Variants []struct {
				ID string `json:"id"`
			} `json:"variants"`
		} `json:"product"`
	}
	s.decode(w, &created)
	require.Len(s.T(), created.Product.Variants, 1)
	variantID := created.Product.Variants[0].ID

	// 2. Покупатель наполняет корзину и оформляет заказ из неё.
	w = s.do(http.MethodPost, "/api/v1/cart/items", customerToken, map[string]any{
		"variant_id": variantID, "qty": 2,
	})
	require.Equal(s.T(), http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/orders", customerToken, map[string]any{})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	var placed struct {
		Order struct {
			ID          string `json:"id"`
			Status      string `json:"status"`
			TotalMinor  int64  `json:"total_minor"`
			Transaction struct {
				ExternalID string `json:"external_id"`
			} `json:"transaction"`
		} `json:"order"`
	}
	s.decode(w, &placed)
	require.Equal(s.T(), string(domain.OrderStatusPending), placed.Order.Status)
	require.Equal(s.T(), int64(399800), placed.Order.TotalMinor)
	require.Equal(s.T(), "mock-invoice-1", placed.Order.Transaction.ExternalID)
	require.Equal(s.T(), 1, s.gateway.CreateCalls)

	orderID := placed.Order.ID

	// 3. Остаток списан атомарно вместе с заказом.
	w = s.do(http.MethodGet, "/api/v1/products/"+created.Product.ID, "", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)

	var product struct {
		Product struct {
			Variants []struct {
				Stock int32 `json:"stock"`
			} `json:"variants"`
		} `json:"product"`
	}
	s.decode(w, &product)
	require.Equal(s.T(), int32(1), product.Product.Variants[0].Stock)

	// 4. Воркер доставляет события: order.created наружу, письмо покупателю.
	s.worker.ProcessOnce(s.T().Context())

	events := s.events.published()
	require.Len(s.T(), events, 1)
	require.Equal(s.T(), string(kafka.EventTypeOrderCreated), events[0].EventType)
	require.Equal(s.T(), orderID, events[0].AggregateID)

	sent := s.sender.Sent()
	require.Len(s.T(), sent, 1)
	require.Equal(s.T(), "buyer@example.com", sent[0].To)
	require.Contains(s.T(), sent[0].Body, orderID)

	// 5. Админ проводит заказ по всей цепочке статусов.
	for _, status := range []string{"PROCESSING", "SHIPPED", "DELIVERED"} {
		w = s.do(http.MethodPut, "/api/v1/admin/orders", adminToken, map[string]any{
			"orderId": orderID,
			"status":  status,
		})
		require.Equal(s.T(), http.StatusOK, w.Code)
	}

	s.worker.ProcessOnce(s.T().Context())

	events = s.events.published()
	require.Len(s.T(), events, 4) // created + три перехода
	for _, event := range events[1:] {
		require.Equal(s.T(), string(kafka.EventTypeOrderStatusChanged), event.EventType)
	}
	require.Equal(s.T(), 4, s.sender.SendCalls()) // подтверждение + три статусных письма

	// 6. Из терминального статуса переходов нет.
	w = s.do(http.MethodPut, "/api/v1/admin/orders", adminToken, map[string]any{
		"orderId": orderID,
		"status":  "CANCELLED",
	})
	require.Equal(s.T(), http.StatusBadRequest, w.Code)

	// 7. Очередь outbox пуста.
	stats, err := s.outbox.Stats()
	require.NoError(s.T(), err)
	require.Zero(s.T(), stats.PendingCount)
}

func (s *OrderLifecycleTestSuite) TestOversellLeavesNoTraces() {
	variantID := s.createProductVariant(200000, 1)

	w := s.do(http.MethodPost, "/api/v1/orders", customerToken, map[string]any{
		"items": []map[string]any{{"variant_id": variantID, "qty": 5}},
	})
	require.Equal(s.T(), http.StatusBadRequest, w.Code)

	// Ни заказа, ни событий, ни писем.
	w = s.do(http.MethodGet, "/api/v1/orders", customerToken, nil)
	require.Equal(s.T(), http.StatusOK, w.Code)

	var list struct {
		Orders []json.RawMessage `json:"orders"`
	}
	s.decode(w, &list)
	require.Empty(s.T(), list.Orders)

	s.worker.ProcessOnce(s.T().Context())
	require.Empty(s.T(), s.events.published())
	require.Zero(s.T(), s.sender.SendCalls())
}

func (s *OrderLifecycleTestSuite) TestGatewayOutageDoesNotBlockCheckout() {
	s.gateway.InvoiceErr = domain.ErrPaymentGateway
	variantID := s.createProductVariant(50000, 2)

	w := s.do(http.MethodPost, "/api/v1/orders", customerToken, map[string]any{
		"items": []map[string]any{{"variant_id": variantID, "qty": 1}},
	})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	var placed struct {
		Order struct {
			Transaction struct {
				ExternalID string `json:"external_id"`
			} `json:"transaction"`
		} `json:"order"`
	}
	s.decode(w, &placed)
	require.Empty(s.T(), placed.Order.Transaction.ExternalID)
	require.Equal(s.T(), 1, s.gateway.CreateCalls)
}

func (s *OrderLifecycleTestSuite) TestEmailFailureDoesNotAffectOrder() {
	s.sender.SendErr = errors.New("smtp unavailable")
	variantID := s.createProductVariant(75000, 3)

	w := s.do(http.MethodPost, "/api/v1/orders", customerToken, map[string]any{
		"items": []map[string]any{{"variant_id": variantID, "qty": 1}},
	})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	var placed struct {
		Order struct {
			ID string `json:"id"`
		} `json:"order"`
	}
	s.decode(w, &placed)

	s.worker.ProcessOnce(s.T().Context())

	// Событие заказа доставлено, письмо осталось недоставленным,
	// а сам заказ остаётся на месте.
	events := s.events.published()
	require.Len(s.T(), events, 1)
	require.Equal(s.T(), string(kafka.EventTypeOrderCreated), events[0].EventType)

	order, err := s.orders.Get(placed.Order.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), domain.OrderStatusPending, order.Status)
}

// Вспомогательные методы

func (s *OrderLifecycleTestSuite) createProductVariant(priceMinor int64, stock int32) string {
	w := s.do(http.MethodPost, "/api/v1/admin/products", adminToken, map[string]any{
		"name":        "Test Item",
		"currency":    "IDR",
		"price_minor": priceMinor,
		"variants":    []map[string]any{{"stock": stock}},
	})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	var created struct {
		Product struct {
			Variants []struct {
				ID string `json:"id"`
			} `json:"variants"`
		} `json:"product"`
	}
	s.decode(w, &created)
	require.Len(s.T(), created.Product.Variants, 1)
	return created.Product.Variants[0].ID
}

func (s *OrderLifecycleTestSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.T().Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.server.Router().ServeHTTP(w, req)
	return w
}

func (s *OrderLifecycleTestSuite) decode(w *httptest.ResponseRecorder, out any) {
	s.T().Helper()
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), out))
}

func TestOrderLifecycle(t *testing.T) {
	suite.Run(t, new(OrderLifecycleTestSuite))
}
