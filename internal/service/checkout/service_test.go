package checkout_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/service/payment"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

type checkoutFixture struct {
	service  *checkout.Service
	orders   *memory.OrderRepository
	products *memory.ProductRepository
	users    *memory.UserRepository
	carts    *memory.CartRepository
	outbox   *memory.OutboxRepository
	gateway  *payment.MockGateway
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository(products)
	users := memory.NewUserRepository()
	carts := memory.NewCartRepository()
	outbox := memory.NewOutboxRepository()
	gateway := payment.NewMockGateway()

	require.NoError(t, products.CreateProduct(domain.Product{
		ID:         "product-1",
		Name:       "Sneakers",
		PriceMinor: 15000,
		Currency:   "IDR",
		Variants: []domain.ProductVariant{
			{ID: "variant-1", ProductID: "product-1", Stock: 5},
		},
		CreatedAt: time.Now().UTC(),
	}))

	svc := checkout.NewService(orders, products, checkout.Options{
		Users:   users,
		Carts:   carts,
		Outbox:  outbox,
		Gateway: gateway,
	})

	return &checkoutFixture{
		service:  svc,
		orders:   orders,
		products: products,
		users:    users,
		carts:    carts,
		outbox:   outbox,
		gateway:  gateway,
	}
}

func buyer() domain.User {
	return domain.User{
		ID:    "user-1",
		Email: "buyer@example.com",
		Name:  "Buyer",
		Role:  domain.UserRoleCustomer,
	}
}

func TestPlaceOrderSuccess(t *testing.T) {
	fx := newCheckoutFixture(t)

	order, err := fx.service.PlaceOrder(buyer(), []checkout.LineRequest{
		{VariantID: "variant-1", Qty: 2},
	})
	require.NoError(t, err)

	require.Equal(t, domain.OrderStatusPending, order.Status)
	require.Equal(t, int64(30000), order.TotalMinor)
	require.Equal(t, "IDR", order.Currency)
	require.Len(t, order.Items, 1)
	require.Equal(t, int64(15000), order.Items[0].UnitPriceMinor)
	require.NotNil(t, order.Delivery)
	require.NotNil(t, order.Transaction)
	require.Equal(t, int64(30000), order.Transaction.AmountMinor)
	require.Equal(t, "mock-invoice-1", order.Transaction.ExternalID)
	require.Equal(t, 1, fx.gateway.CreateCalls)

	// Остатки списаны атомарно вместе с заказом.
	resolved, err := fx.products.ResolveVariants([]string{"variant-1"})
	require.NoError(t, err)
	require.Equal(t, int32(3), resolved["variant-1"].Variant.Stock)

	stored, err := fx.orders.Get(order.ID)
	require.NoError(t, err)
	require.Equal(t, order.ID, stored.ID)
}

func TestPlaceOrderEnqueuesOutboxEvents(t *testing.T) {
	fx := newCheckoutFixture(t)

	order, err := fx.service.PlaceOrder(buyer(), []checkout.LineRequest{
		{VariantID: "variant-1", Qty: 1},
	})
	require.NoError(t, err)

	pending, err := fx.outbox.PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	types := make(map[string]domain.OutboxMessage, len(pending))
	for _, msg := range pending {
		types[msg.EventType] = msg
	}

	created, ok := types["order.created"]
	require.True(t, ok)
	require.Equal(t, order.ID, created.AggregateID)

	var event map[string]any
	require.NoError(t, json.Unmarshal(created.Payload, &event))
	require.Equal(t, order.ID, event["order_id"])
	require.Equal(t, "PENDING", event["status"])

	email, ok := types["notification.email"]
	require.True(t, ok)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(email.Payload, &payload))
	require.Equal(t, "buyer@example.com", payload["to"])
	require.NotEmpty(t, payload["html_body"])
}

func TestPlaceOrderClearsCart(t *testing.T) {
	fx := newCheckoutFixture(t)

	require.NoError(t, fx.carts.Save(domain.Cart{
		UserID: "user-1",
		Lines:  []domain.CartLine{{VariantID: "variant-1", Qty: 2}},
	}))

	_, err := fx.service.PlaceOrder(buyer(), []checkout.LineRequest{
		{VariantID: "variant-1", Qty: 2},
	})
	require.NoError(t, err)

	cart, err := fx.carts.Get("user-1")
	require.NoError(t, err)
	require.Empty(t, cart.Lines)
}

func TestPlaceOrderValidation(t *testing.T) {
	fx := newCheckoutFixture(t)

	_, err := fx.service.PlaceOrder(domain.User{}, []checkout.LineRequest{{VariantID: "variant-1", Qty: 1}})
	require.ErrorIs(t, err, domain.ErrUserRequired)

	_, err = fx.service.PlaceOrder(buyer(), nil)
	require.ErrorIs(t, err, domain.ErrEmptyCart)

	_, err = fx.service.PlaceOrder(buyer(), []checkout.LineRequest{{VariantID: "variant-1", Qty: 0}})
	require.ErrorIs(t, err, domain.ErrItemQtyInvalid)

	_, err = fx.service.PlaceOrder(buyer(), []checkout.LineRequest{
		{VariantID: "ghost-2", Qty: 1},
		{VariantID: "ghost-1", Qty: 1},
	})
	require.ErrorIs(t, err, domain.ErrVariantNotFound)
	// Неизвестные варианты перечисляются в сообщении в стабильном порядке.
	require.Contains(t, err.Error(), "ghost-1, ghost-2")
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	fx := newCheckoutFixture(t)

	_, err := fx.service.PlaceOrder(buyer(), []checkout.LineRequest{
		{VariantID: "variant-1", Qty: 6},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Остатки не тронуты, заказ не записан, событий нет.
	resolved, rerr := fx.products.ResolveVariants([]string{"variant-1"})
	require.NoError(t, rerr)
	require.Equal(t, int32(5), resolved["variant-1"].Variant.Stock)

	pending, perr := fx.outbox.PullPending(10)
	require.NoError(t, perr)
	require.Empty(t, pending)
}

func TestPlaceOrderRejectsOversellAcrossDuplicateLines(t *testing.T) {
	fx := newCheckoutFixture(t)

	// Повторяющийся вариант в запросе: каждая строка по отдельности
	// укладывается в остаток 5, сумма — нет.
	_, err := fx.service.PlaceOrder(buyer(), []checkout.LineRequest{
		{VariantID: "variant-1", Qty: 3},
		{VariantID: "variant-1", Qty: 3},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	resolved, rerr := fx.products.ResolveVariants([]string{"variant-1"})
	require.NoError(t, rerr)
	require.Equal(t, int32(5), resolved["variant-1"].Variant.Stock)
}

func TestPlaceOrderGatewayFailureIsNotFatal(t *testing.T) {
	fx := newCheckoutFixture(t)
	fx.gateway.InvoiceErr = domain.ErrPaymentGateway

	order, err := fx.service.PlaceOrder(buyer(), []checkout.LineRequest{
		{VariantID: "variant-1", Qty: 1},
	})
	require.NoError(t, err)
	require.NotNil(t, order.Transaction)
	require.Empty(t, order.Transaction.ExternalID)
}

func TestListOrders(t *testing.T) {
	fx := newCheckoutFixture(t)

	_, err := fx.service.PlaceOrder(buyer(), []checkout.LineRequest{{VariantID: "variant-1", Qty: 1}})
	require.NoError(t, err)
	_, err = fx.service.PlaceOrder(buyer(), []checkout.LineRequest{{VariantID: "variant-1", Qty: 1}})
	require.NoError(t, err)

	orders, err := fx.service.ListOrders("user-1", 0)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	_, err = fx.service.ListOrders("", 10)
	require.ErrorIs(t, err, domain.ErrUserRequired)

	all, total, err := fx.service.ListAllOrders(1, 1)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, all, 1)
}

func TestChangeStatus(t *testing.T) {
	fx := newCheckoutFixture(t)
	admin := domain.User{ID: "admin-1", Role: domain.UserRoleAdmin}

	require.NoError(t, fx.users.Create(buyer()))

	order, err := fx.service.PlaceOrder(buyer(), []checkout.LineRequest{{VariantID: "variant-1", Qty: 1}})
	require.NoError(t, err)
	// Съедаем события оформления, чтобы проверять только переходы.
	drainOutbox(t, fx.outbox)

	updated, err := fx.service.ChangeStatus(order.ID, domain.OrderStatusProcessing, admin)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusProcessing, updated.Status)
	require.Equal(t, order.Version+1, updated.Version)

	pending, err := fx.outbox.PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	types := make(map[string]struct{}, len(pending))
	for _, msg := range pending {
		types[msg.EventType] = struct{}{}
	}
	require.Contains(t, types, "order.status_changed")
	require.Contains(t, types, "notification.email")
}

func TestChangeStatusRejectsInvalidTransition(t *testing.T) {
	fx := newCheckoutFixture(t)
	admin := domain.User{ID: "admin-1", Role: domain.UserRoleAdmin}

	order, err := fx.service.PlaceOrder(buyer(), []checkout.LineRequest{{VariantID: "variant-1", Qty: 1}})
	require.NoError(t, err)

	_, err = fx.service.ChangeStatus(order.ID, domain.OrderStatusDelivered, admin)
	require.ErrorIs(t, err, domain.ErrStatusTransitionInvalid)

	_, err = fx.service.ChangeStatus(order.ID, domain.OrderStatus("PAID"), admin)
	require.ErrorIs(t, err, domain.ErrStatusUnknown)

	_, err = fx.service.ChangeStatus("ghost", domain.OrderStatusProcessing, admin)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestChangeStatusTerminalStates(t *testing.T) {
	fx := newCheckoutFixture(t)
	admin := domain.User{ID: "admin-1", Role: domain.UserRoleAdmin}

	order, err := fx.service.PlaceOrder(buyer(), []checkout.LineRequest{{VariantID: "variant-1", Qty: 1}})
	require.NoError(t, err)

	_, err = fx.service.ChangeStatus(order.ID, domain.OrderStatusCancelled, admin)
	require.NoError(t, err)

	_, err = fx.service.ChangeStatus(order.ID, domain.OrderStatusProcessing, admin)
	require.ErrorIs(t, err, domain.ErrStatusTransitionInvalid)
}

func drainOutbox(t *testing.T, outbox *memory.OutboxRepository) {
	t.Helper()

	pending, err := outbox.PullPending(100)
	require.NoError(t, err)
	for _, msg := range pending {
		require.NoError(t, outbox.MarkSent(msg.ID))
	}
}
