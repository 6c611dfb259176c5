package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestOrderRepository_PostgresCreateGetListAndSave(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	seedCheckoutFixtures(t, store, now)

	order1 := sampleOrder("order-1", "user-1", now.Add(-2*time.Minute))
	order2 := sampleOrder("order-2", "user-1", now.Add(-time.Minute))

	if err := repo.Create(order1); err != nil {
		t.Fatalf("create order1: %v", err)
	}
	if err := repo.Create(order2); err != nil {
		t.Fatalf("create order2: %v", err)
	}

	got, err := repo.Get(order1.ID)
	if err != nil {
		t.Fatalf("get order1: %v", err)
	}
	if got.ID != order1.ID || got.UserID != order1.UserID || got.Status != order1.Status {
		t.Fatalf("unexpected order payload: %+v", got)
	}
	if len(got.Items) != len(order1.Items) {
		t.Fatalf("unexpected items count: got=%d want=%d", len(got.Items), len(order1.Items))
	}
	if got.Delivery == nil || got.Delivery.Title != "Courier" {
		t.Fatalf("expected delivery snapshot, got %+v", got.Delivery)
	}
	if got.Transaction == nil || got.Transaction.AmountMinor != order1.TotalMinor {
		t.Fatalf("expected transaction snapshot, got %+v", got.Transaction)
	}

	listed, err := repo.ListByUser("user-1", 1)
	if err != nil {
		t.Fatalf("list by user with limit: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != order2.ID {
		t.Fatalf("unexpected list result with limit: %+v", listed)
	}

	all, err := repo.ListByUser("user-1", 0)
	if err != nil {
		t.Fatalf("list by user without limit: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(all))
	}

	page, total, err := repo.List(1, 10)
	if err != nil {
		t.Fatalf("list all orders: %v", err)
	}
	if total != 2 || len(page) != 2 {
		t.Fatalf("unexpected admin list result: got=%d total=%d", len(page), total)
	}

	got.Status = domain.OrderStatusProcessing
	got.UpdatedAt = now.Add(time.Minute)
	if err := repo.Save(got); err != nil {
		t.Fatalf("save order: %v", err)
	}

	updated, err := repo.Get(order1.ID)
	if err != nil {
		t.Fatalf("get updated order: %v", err)
	}
	if updated.Status != domain.OrderStatusProcessing {
		t.Fatalf("unexpected status after save: %s", updated.Status)
	}
	if updated.Version != got.Version+1 {
		t.Fatalf("unexpected version after save: got=%d want=%d", updated.Version, got.Version+1)
	}
}

func TestOrderRepository_PostgresStockDecrement(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	seedCheckoutFixtures(t, store, now)

	if err := repo.Create(sampleOrder("order-stock", "user-1", now)); err != nil {
		t.Fatalf("create order: %v", err)
	}

	var stock int32
	if err := store.DB().QueryRow(`SELECT stock FROM product_variants WHERE id = 'variant-1'`).Scan(&stock); err != nil {
		t.Fatalf("query stock: %v", err)
	}
	if stock != 3 {
		t.Fatalf("expected stock 3 after decrement, got %d", stock)
	}

	oversell := sampleOrder("order-oversell", "user-1", now.Add(time.Second))
	oversell.Items[0].Qty = 10
	if err := repo.Create(oversell); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// Откат транзакции не должен оставить ни заказа, ни списания.
	if _, err := repo.Get("order-oversell"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected rolled back order to be absent, got %v", err)
	}
	if err := store.DB().QueryRow(`SELECT stock FROM product_variants WHERE id = 'variant-1'`).Scan(&stock); err != nil {
		t.Fatalf("query stock: %v", err)
	}
	if stock != 3 {
		t.Fatalf("expected stock untouched at 3, got %d", stock)
	}
}

func TestOrderRepository_PostgresStockDecrementAcrossDuplicateLines(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	seedCheckoutFixtures(t, store, now)

	// Две позиции на один вариант: каждая проходит по остатку 5,
	// суммарно — нет.
	oversell := sampleOrder("order-dup-oversell", "user-1", now)
	oversell.Items = []domain.OrderItem{
		{ID: "dup-item-1", OrderID: oversell.ID, VariantID: "variant-1", Qty: 3, UnitPriceMinor: 15000, CreatedAt: now},
		{ID: "dup-item-2", OrderID: oversell.ID, VariantID: "variant-1", Qty: 3, UnitPriceMinor: 15000, CreatedAt: now},
	}
	oversell.TotalMinor = 90000
	oversell.Transaction.AmountMinor = 90000

	if err := repo.Create(oversell); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	var stock int32
	if err := store.DB().QueryRow(`SELECT stock FROM product_variants WHERE id = 'variant-1'`).Scan(&stock); err != nil {
		t.Fatalf("query stock: %v", err)
	}
	if stock != 5 {
		t.Fatalf("expected stock untouched at 5, got %d", stock)
	}
}

func TestOrderRepository_PostgresSaveConflictReleasesConnection(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	seedCheckoutFixtures(t, store, now)

	order := sampleOrder("order-conflict-pool", "user-1", now)
	if err := repo.Create(order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	// При утечке незакрытой транзакции каждый конфликт удерживал бы
	// соединение, и пул из одного соединения иссяк бы на втором вызове.
	store.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { store.DB().SetMaxOpenConns(0) })

	stale := order
	stale.Status = domain.OrderStatusProcessing
	stale.UpdatedAt = now.Add(time.Minute)
	stale.Version = 42

	for i := 0; i < 3; i++ {
		if err := repo.Save(stale); !errors.Is(err, domain.ErrOrderVersionConflict) {
			t.Fatalf("save %d: expected ErrOrderVersionConflict, got %v", i, err)
		}
	}

	if _, err := repo.Get(order.ID); err != nil {
		t.Fatalf("get after conflicts: %v", err)
	}
}

func TestOrderRepository_PostgresErrors(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	seedCheckoutFixtures(t, store, now)
	base := sampleOrder("order-errors", "user-1", now)

	if _, err := repo.Get("missing-order"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	if err := repo.Save(base); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound on save missing, got %v", err)
	}

	if err := repo.Create(base); err != nil {
		t.Fatalf("create base order: %v", err)
	}

	duplicate := base
	duplicate.Delivery = nil
	duplicate.DeliveryID = ""
	duplicate.Transaction = nil
	duplicate.Items = nil
	if err := repo.Create(duplicate); !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected ErrOrderVersionConflict on duplicate create, got %v", err)
	}

	stale := base
	stale.Status = domain.OrderStatusProcessing
	stale.UpdatedAt = now.Add(time.Minute)
	stale.Version = 42
	if err := repo.Save(stale); !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected ErrOrderVersionConflict on stale save, got %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("expected unique violation for code 23505")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "22001"}) {
		t.Fatal("unexpected unique violation for non-unique code")
	}
	if isUniqueViolation(errors.New("plain error")) {
		t.Fatal("plain error must not be unique violation")
	}
}

// seedCheckoutFixtures создаёт пользователя и вариант товара с остатком 5,
// на которые ссылаются тестовые заказы.
func seedCheckoutFixtures(t *testing.T, store *Store, now time.Time) {
	t.Helper()

	if _, err := store.DB().Exec(`
		INSERT INTO users (id, email, name, role, api_token, created_at)
		VALUES ('user-1', 'buyer@example.com', 'Buyer', 'customer', 'token-1', $1)
	`, now); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := store.DB().Exec(`
		INSERT INTO products (id, name, price_minor, currency, created_at, updated_at)
		VALUES ('product-1', 'Sneakers', 15000, 'IDR', $1, $1)
	`, now); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if _, err := store.DB().Exec(`
		INSERT INTO product_variants (id, product_id, stock, created_at)
		VALUES ('variant-1', 'product-1', 5, $1)
	`, now); err != nil {
		t.Fatalf("seed variant: %v", err)
	}
}

func sampleOrder(id, userID string, createdAt time.Time) domain.Order {
	delivery := domain.Delivery{
		ID:         id + "-delivery",
		Title:      "Courier",
		PriceMinor: 0,
		EtaDays:    2,
		CreatedAt:  createdAt,
	}
	tx := domain.Transaction{
		ID:          id + "-tx",
		OrderID:     id,
		AmountMinor: 30000,
		Status:      domain.TransactionStatusPending,
		Method:      "invoice",
		CreatedAt:   createdAt,
	}
	items := []domain.OrderItem{
		{
			ID:             id + "-item-1",
			OrderID:        id,
			VariantID:      "variant-1",
			Qty:            2,
			UnitPriceMinor: 15000,
			CreatedAt:      createdAt,
		},
	}

	return domain.Order{
		ID:          id,
		UserID:      userID,
		Status:      domain.OrderStatusPending,
		Currency:    "IDR",
		TotalMinor:  30000,
		DeliveryID:  delivery.ID,
		Items:       items,
		Delivery:    &delivery,
		Transaction: &tx,
		Version:     0,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}
