package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	opTimeout = 3 * time.Second

	// Брошенные корзины вычищаются самим Redis.
	cartTTL = 30 * 24 * time.Hour
)

// CartRepository хранит корзины покупателей в Redis: одна корзина — один ключ,
// значение — JSON-снимок агрегата.
type CartRepository struct {
	client *redis.Client
}

// NewCartRepository создаёт Redis-реализацию CartRepository.
func NewCartRepository(client *redis.Client) *CartRepository {
	return &CartRepository{client: client}
}

// Get возвращает корзину пользователя; отсутствие ключа — пустой агрегат.
func (r *CartRepository) Get(userID string) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	data, err := r.client.Get(ctx, cartKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{UserID: userID}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return domain.Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	cart.UserID = userID
	return cart, nil
}

// Save перезаписывает корзину целиком и продлевает её TTL.
func (r *CartRepository) Save(cart domain.Cart) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := r.client.Set(ctx, cartKey(cart.UserID), data, cartTTL).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Clear удаляет корзину пользователя.
func (r *CartRepository) Clear(userID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Ping проверяет доступность Redis; используется readiness-пробой.
func (r *CartRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

var _ domain.CartRepository = (*CartRepository)(nil)
