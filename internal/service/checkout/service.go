package checkout

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

const (
	defaultCurrency = "IDR"

	deliveryTitle   = "Standard delivery"
	deliveryEtaDays = 3

	defaultListOrdersLimit = 100

	eventOrderCreated       = "order.created"
	eventOrderStatusChanged = "order.status_changed"
	eventEmailRequested     = "notification.email"

	aggregateOrder = "order"
)

// LineRequest — одна позиция запроса на оформление заказа.
type LineRequest struct {
	VariantID string
	Qty       int32
}

// Service реализует оформление заказа и административные переходы статусов.
type Service struct {
	orders   domain.OrderRepository
	products domain.ProductRepository
	users    domain.UserRepository
	carts    domain.CartRepository
	outbox   domain.OutboxRepository
	gateway  domain.PaymentGateway
	logger   *log.Entry
	metrics  *metrics.CheckoutMetrics
}

// Options — необязательные зависимости сервиса.
type Options struct {
	Users   domain.UserRepository
	Carts   domain.CartRepository
	Outbox  domain.OutboxRepository
	Gateway domain.PaymentGateway
	Logger  *log.Entry
	Metrics *metrics.CheckoutMetrics
}

// NewService конструирует сервис оформления заказов.
func NewService(orders domain.OrderRepository, products domain.ProductRepository, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "checkout-service")
	}
	return &Service{
		orders:   orders,
		products: products,
		users:    opts.Users,
		carts:    opts.Carts,
		outbox:   opts.Outbox,
		gateway:  opts.Gateway,
		logger:   logger,
		metrics:  opts.Metrics,
	}
}

// PlaceOrder проводит заказ: валидация позиций, пересчёт суммы по текущим
// ценам каталога и атомарная запись заказа со списанием остатков.
// Письмо и события заказа никогда не влияют на результат.
func (s *Service) PlaceOrder(user domain.User, lines []LineRequest) (domain.Order, error) {
	started := time.Now()
	s.recordStarted()

	order, err := s.placeOrder(user, lines)
	if err != nil {
		s.recordRejected()
		return domain.Order{}, err
	}

	s.recordCompleted(time.Since(started))
	return order, nil
}

func (s *Service) placeOrder(user domain.User, lines []LineRequest) (domain.Order, error) {
	if user.ID == "" {
		return domain.Order{}, domain.ErrUserRequired
	}
	if len(lines) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}

	variantIDs := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for idx, line := range lines {
		if line.Qty < 1 {
			return domain.Order{}, fmt.Errorf("line %d: %w", idx, domain.ErrItemQtyInvalid)
		}
		if _, ok := seen[line.VariantID]; ok {
			continue
		}
		seen[line.VariantID] = struct{}{}
		variantIDs = append(variantIDs, line.VariantID)
	}

	resolved, err := s.products.ResolveVariants(variantIDs)
	if err != nil {
		return domain.Order{}, fmt.Errorf("resolve variants: %w", err)
	}

	missing := make([]string, 0)
	for _, id := range variantIDs {
		if _, ok := resolved[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrVariantNotFound, strings.Join(missing, ", "))
	}

	now := time.Now().UTC()
	orderID := uuid.NewString()
	currency := defaultCurrency

	items := make([]domain.OrderItem, 0, len(lines))
	var total int64
	for _, line := range lines {
		rv := resolved[line.VariantID]
		if rv.Product.Currency != "" {
			currency = rv.Product.Currency
		}
		items = append(items, domain.OrderItem{
			ID:             uuid.NewString(),
			OrderID:        orderID,
			VariantID:      line.VariantID,
			Qty:            line.Qty,
			UnitPriceMinor: rv.Product.PriceMinor,
			CreatedAt:      now,
		})
		total += int64(line.Qty) * rv.Product.PriceMinor
	}

	delivery := domain.Delivery{
		ID:         uuid.NewString(),
		Title:      deliveryTitle,
		PriceMinor: total,
		EtaDays:    deliveryEtaDays,
		CreatedAt:  now,
	}

	tx := domain.Transaction{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		AmountMinor: total,
		Status:      domain.TransactionStatusCompleted,
		Method:      s.paymentMethod(),
		CreatedAt:   now,
	}

	order := domain.Order{
		ID:          orderID,
		UserID:      user.ID,
		Status:      domain.OrderStatusPending,
		Currency:    currency,
		TotalMinor:  total,
		DeliveryID:  delivery.ID,
		Items:       items,
		Delivery:    &delivery,
		Transaction: &tx,
		Version:     0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if s.gateway != nil {
		invoice, invErr := s.gateway.CreateInvoice(order, user)
		if invErr != nil {
			// Инвойс не обязателен для проведения заказа: транзакция
			// фиксируется без внешнего идентификатора.
			s.logger.WithError(invErr).WithField("order_id", orderID).Warn("failed to create payment invoice")
		} else {
			tx.ExternalID = invoice.ExternalID
			order.Transaction = &tx
		}
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, joinErrors(errs)
	}

	if err := s.orders.Create(order); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrVariantNotFound) {
			return domain.Order{}, err
		}
		s.logger.WithError(err).WithField("order_id", orderID).Error("failed to persist order")
		return domain.Order{}, fmt.Errorf("persist order: %w", err)
	}

	s.afterPlaceOrder(order, user)

	return order, nil
}

// afterPlaceOrder выполняет пост-коммитные побочные эффекты: события
// заказа, письмо покупателю и очистку корзины. Все они best-effort.
func (s *Service) afterPlaceOrder(order domain.Order, user domain.User) {
	s.enqueueOrderEvent(eventOrderCreated, order)

	if user.CanNotify() {
		s.enqueueEmail(order.ID, user.Email, "Order received",
			orderCreatedEmailBody(user.Name, order))
	}

	if s.carts != nil {
		if err := s.carts.Clear(user.ID); err != nil {
			s.logger.WithError(err).WithField("user_id", user.ID).Warn("failed to clear cart after checkout")
		}
	}
}

// GetOrder возвращает заказ по идентификатору.
func (s *Service) GetOrder(orderID string) (domain.Order, error) {
	return s.orders.Get(orderID)
}

// ListOrders возвращает заказы пользователя от новых к старым.
func (s *Service) ListOrders(userID string, limit int) ([]domain.Order, error) {
	if userID == "" {
		return nil, domain.ErrUserRequired
	}
	if limit <= 0 {
		limit = defaultListOrdersLimit
	}
	return s.orders.ListByUser(userID, limit)
}

// ListAllOrders возвращает страницу всех заказов (админский путь).
func (s *Service) ListAllOrders(page, perPage int) ([]domain.Order, int, error) {
	return s.orders.List(page, perPage)
}

// ChangeStatus переводит заказ в новый статус с проверкой таблицы
// переходов и optimistic locking.
func (s *Service) ChangeStatus(orderID string, to domain.OrderStatus, actor domain.User) (domain.Order, error) {
	if !domain.ValidOrderStatus(string(to)) {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrStatusUnknown, to)
	}

	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	from := order.Status
	if !domain.CanTransition(from, to) {
		return domain.Order{}, fmt.Errorf("%w: %s -> %s", domain.ErrStatusTransitionInvalid, from, to)
	}

	order.Status = to
	order.UpdatedAt = time.Now().UTC()
	if err := s.orders.Save(order); err != nil {
		return domain.Order{}, err
	}
	order.Version++

	s.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"actor_id": actor.ID,
		"from":     string(from),
		"to":       string(to),
	}).Info("order status changed")

	if s.metrics != nil {
		s.metrics.RecordStatusTransition(string(from), string(to))
	}

	s.enqueueOrderEvent(eventOrderStatusChanged, order)
	s.notifyStatusChange(order)

	return order, nil
}

func (s *Service) notifyStatusChange(order domain.Order) {
	if s.users == nil {
		return
	}

	user, err := s.users.Get(order.UserID)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to load buyer for status notification")
		return
	}
	if !user.CanNotify() {
		return
	}

	s.enqueueEmail(order.ID, user.Email, "Order status updated",
		statusChangedEmailBody(user.Name, order))
}

func (s *Service) paymentMethod() string {
	if s.gateway != nil {
		return s.gateway.Method()
	}
	return "manual"
}

func (s *Service) enqueueOrderEvent(eventType string, order domain.Order) {
	if s.outbox == nil {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"order_id":    order.ID,
		"user_id":     order.UserID,
		"status":      string(order.Status),
		"total_minor": order.TotalMinor,
		"currency":    order.Currency,
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to encode order event")
		return
	}

	if _, err := s.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: aggregateOrder,
		AggregateID:   order.ID,
		EventType:     eventType,
		Payload:       payload,
	}); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id":   order.ID,
			"event_type": eventType,
		}).Warn("failed to enqueue order event")
		return
	}

	if s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}
}

func (s *Service) enqueueEmail(orderID, to, subject, htmlBody string) {
	if s.outbox == nil || to == "" {
		return
	}

	payload, err := json.Marshal(map[string]string{
		"to":        to,
		"subject":   subject,
		"html_body": htmlBody,
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("failed to encode email payload")
		return
	}

	if _, err := s.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: aggregateOrder,
		AggregateID:   orderID,
		EventType:     eventEmailRequested,
		Payload:       payload,
	}); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("failed to enqueue notification email")
	}
}

func (s *Service) recordStarted() {
	if s.metrics != nil {
		s.metrics.RecordCheckoutStarted()
	}
}

func (s *Service) recordCompleted(duration time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordCheckoutCompleted()
		s.metrics.RecordCheckoutDuration(duration)
	}
}

func (s *Service) recordRejected() {
	if s.metrics != nil {
		s.metrics.RecordCheckoutRejected()
	}
}

func orderCreatedEmailBody(name string, order domain.Order) string {
	var b strings.Builder
	b.WriteString("<p>Hi " + name + ",</p>")
	b.WriteString(fmt.Sprintf("<p>We received your order <b>%s</b>.</p>", order.ID))
	b.WriteString(fmt.Sprintf("<p>Total: %d %s</p>", order.TotalMinor, order.Currency))
	return b.String()
}

func statusChangedEmailBody(name string, order domain.Order) string {
	var b strings.Builder
	b.WriteString("<p>Hi " + name + ",</p>")
	b.WriteString(fmt.Sprintf("<p>Your order <b>%s</b> is now <b>%s</b>.</p>", order.ID, order.Status))
	return b.String()
}

func joinErrors(errs []error) error {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return errors.New(strings.Join(msgs, "; "))
}
