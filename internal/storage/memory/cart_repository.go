package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// CartRepository — in-memory реализация хранилища корзин.
type CartRepository struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

// NewCartRepository возвращает пустое in-memory хранилище корзин.
func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[string]domain.Cart)}
}

// Get возвращает корзину пользователя; отсутствие корзины — пустой агрегат.
func (r *CartRepository) Get(userID string) (domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[userID]
	if !ok {
		return domain.Cart{UserID: userID}, nil
	}
	cart.Lines = append([]domain.CartLine(nil), cart.Lines...)
	return cart, nil
}

func (r *CartRepository) Save(cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart.Lines = append([]domain.CartLine(nil), cart.Lines...)
	r.carts[cart.UserID] = cart
	return nil
}

func (r *CartRepository) Clear(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, userID)
	return nil
}

var _ domain.CartRepository = (*CartRepository)(nil)
