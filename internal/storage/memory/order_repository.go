package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// OrderRepository — in-memory реализация OrderRepository для тестов
// и локальной разработки.
type OrderRepository struct {
	mu       sync.RWMutex
	items    map[string]domain.Order
	products *ProductRepository
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
// products нужен для атомарного списания остатков при создании.
func NewOrderRepository(products *ProductRepository) *OrderRepository {
	return &OrderRepository{
		items:    make(map[string]domain.Order),
		products: products,
	}
}

// Create сохраняет заказ и списывает остатки; всё или ничего.
func (r *OrderRepository) Create(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return domain.ErrOrderVersionConflict
	}

	if r.products != nil {
		if err := r.products.decrementStock(order.Items); err != nil {
			return err
		}
	}

	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.items[order.ID] = cloneOrder(order)
	return nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *OrderRepository) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// ListByUser возвращает заказы пользователя от новых к старым.
func (r *OrderRepository) ListByUser(userID string, limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		if order.UserID != userID {
			continue
		}
		result = append(result, cloneOrder(order))
	}

	sortOrdersDesc(result)

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// List возвращает страницу всех заказов и общее количество.
func (r *OrderRepository) List(page, perPage int) ([]domain.Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		all = append(all, cloneOrder(order))
	}
	sortOrdersDesc(all)

	total := len(all)
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}

	start := (page - 1) * perPage
	if start >= total {
		return []domain.Order{}, total, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

// Save перезаписывает заказ, проверяя версию (optimistic locking).
func (r *OrderRepository) Save(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrOrderVersionConflict
	}
	// Инкрементируем версию перед сохранением.
	order.Version++
	r.items[order.ID] = cloneOrder(order)
	return nil
}

func sortOrdersDesc(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}

func cloneOrder(order domain.Order) domain.Order {
	clone := order
	clone.Items = append([]domain.OrderItem(nil), order.Items...)
	if order.Delivery != nil {
		delivery := *order.Delivery
		clone.Delivery = &delivery
	}
	if order.Transaction != nil {
		tx := *order.Transaction
		clone.Transaction = &tx
	}
	return clone
}

var _ domain.OrderRepository = (*OrderRepository)(nil)
