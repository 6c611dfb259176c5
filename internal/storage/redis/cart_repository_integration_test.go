package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	goredis "github.com/go-redis/redis/v8"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	redisstore "github.com/vladislavdragonenkov/storefront/internal/storage/redis"
)

// openRedisForIntegrationTest подключается к Redis из окружения;
// без доступного сервера тест пропускается.
func openRedisForIntegrationTest(t *testing.T) *goredis.Client {
	t.Helper()

	addr := os.Getenv("STOREFRONT_REDIS_TEST_ADDR")
	if addr == "" {
		addr = os.Getenv("STOREFRONT_REDIS_ADDR")
	}
	if addr == "" {
		addr = "localhost:6379"
	}

	client := goredis.NewClient(&goredis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis is not reachable at %s: %v", addr, err)
	}

	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCartRepositoryIntegration(t *testing.T) {
	client := openRedisForIntegrationTest(t)
	repo := redisstore.NewCartRepository(client)

	userID := gofakeit.UUID()
	t.Cleanup(func() { _ = repo.Clear(userID) })

	// Отсутствующая корзина — пустой агрегат, не ошибка.
	cart, err := repo.Get(userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cart.Lines))
	}

	saved := domain.Cart{
		UserID: userID,
		Lines: []domain.CartLine{
			{VariantID: gofakeit.UUID(), Qty: 2, AddedAt: time.Now().UTC().Truncate(time.Millisecond)},
			{VariantID: gofakeit.UUID(), Qty: 1, AddedAt: time.Now().UTC().Truncate(time.Millisecond)},
		},
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := repo.Save(saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := repo.Get(userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(saved, loaded, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("cart mismatch (-want +got):\n%s", diff)
	}

	if err := repo.Clear(userID); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	cleared, err := repo.Get(userID)
	if err != nil {
		t.Fatalf("Get after clear: %v", err)
	}
	if len(cleared.Lines) != 0 {
		t.Fatalf("expected cleared cart, got %d lines", len(cleared.Lines))
	}
}
