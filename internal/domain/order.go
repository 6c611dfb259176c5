package domain

import "time"

// OrderStatus описывает жизненный цикл заказа в витрине.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан и оплачен через шлюз, но ещё не взят в обработку.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusProcessing — заказ собирается на складе.
	OrderStatusProcessing OrderStatus = "PROCESSING"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "SHIPPED"
	// OrderStatusDelivered — заказ получен покупателем (терминальный статус).
	OrderStatusDelivered OrderStatus = "DELIVERED"
	// OrderStatusCancelled — заказ отменён до завершения цикла (терминальный статус).
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// allowedTransitions задаёт forward-only машину статусов.
// CANCELLED достижим из любого нетерминального состояния.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// ValidOrderStatus проверяет, что строка соответствует известному статусу.
func ValidOrderStatus(s string) bool {
	_, ok := allowedTransitions[OrderStatus(s)]
	return ok
}

// CanTransition проверяет допустимость перехода from → to.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderItem представляет одну позицию заказа.
// UnitPriceMinor — snapshot цены товара на момент покупки, он намеренно
// не связан с текущей ценой в каталоге.
type OrderItem struct {
	ID             string
	OrderID        string
	VariantID      string
	Qty            int32
	UnitPriceMinor int64
	CreatedAt      time.Time
}

// Delivery — снимок условий доставки, создаваемый по одному на заказ.
type Delivery struct {
	ID          string
	Title       string
	Description string
	PriceMinor  int64
	EtaDays     int32
	CreatedAt   time.Time
}

// TransactionStatus описывает состояние платёжной записи.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction связывает заказ с платежом во внешнем шлюзе (1:1 при создании).
type Transaction struct {
	ID          string
	OrderID     string
	AmountMinor int64
	Status      TransactionStatus
	Method      string
	ExternalID  string // Идентификатор инвойса у провайдера; пустой, если провайдер его не вернул.
	CreatedAt   time.Time
}

// Order агрегирует состояние заказа, его позиции и связанные записи.
type Order struct {
	ID          string
	UserID      string
	Status      OrderStatus
	Currency    string
	TotalMinor  int64
	DeliveryID  string
	Items       []OrderItem
	Delivery    *Delivery
	Transaction *Transaction
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.UserID == "" {
		errs = append(errs, ErrUserRequired)
	}
	if o.Currency == "" {
		errs = append(errs, ErrCurrencyRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.TotalMinor < 0 {
		errs = append(errs, ErrTotalNegative)
	}

	// Сверяем сумму заказа с суммой позиций: qty * snapshot-цена.
	var calc int64
	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.UnitPriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		calc += int64(item.Qty) * item.UnitPriceMinor
	}
	if calc != o.TotalMinor {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}
