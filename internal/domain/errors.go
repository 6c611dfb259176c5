package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора пользователя.
	ErrUserRequired = errors.New("user_id is required")
	// Ошибка отсутствующего кода валюты.
	ErrCurrencyRequired = errors.New("currency is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной суммы заказа.
	ErrTotalNegative = errors.New("total_minor must be non-negative")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если snapshot-цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrTotalMismatch = errors.New("order total does not match items sum")

	// ErrEmptyCart возвращается, если запрос на оформление не содержит позиций.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrVariantNotFound возвращается, если вариант не разрешился в каталоге.
	ErrVariantNotFound = errors.New("unknown variant")
	// ErrInsufficientStock возвращается, когда на складе меньше, чем запрошено.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrCartLineNotFound возвращается при изменении отсутствующей позиции корзины.
	ErrCartLineNotFound = errors.New("cart line not found")

	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrOrderVersionConflict = errors.New("order version conflict")
	// ErrStatusTransitionInvalid возвращается при недопустимом переходе статуса.
	ErrStatusTransitionInvalid = errors.New("invalid order status transition")
	// ErrStatusUnknown возвращается при неизвестном значении статуса.
	ErrStatusUnknown = errors.New("unknown order status")

	// ErrValidation — общая ошибка валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// Ошибки валидации каталога.
	ErrProductNameRequired    = errors.New("product name is required")
	ErrProductPriceNegative   = errors.New("product price must be non-negative")
	ErrVariantProductRequired = errors.New("variant product_id is required")
	ErrVariantStockNegative   = errors.New("variant stock must be non-negative")

	// ErrProductNotFound возвращается, если товар не найден.
	ErrProductNotFound = errors.New("product not found")
	// ErrEntityNotFound — общая ошибка отсутствия справочной записи.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrTokenInvalid возвращается, если токен не резолвится в пользователя.
	ErrTokenInvalid = errors.New("invalid api token")

	// ErrPaymentGateway — ошибка обращения к платёжному шлюзу.
	ErrPaymentGateway = errors.New("payment gateway error")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict)
}

// IsNotFound объединяет все ошибки отсутствия записей.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrVariantNotFound) ||
		errors.Is(err, ErrEntityNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
