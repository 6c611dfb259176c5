package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func seedCatalog(t *testing.T) *memory.ProductRepository {
	t.Helper()

	products := memory.NewProductRepository()
	now := time.Now().UTC()
	err := products.CreateProduct(domain.Product{
		ID:         "product-1",
		Name:       "Sneakers",
		PriceMinor: 15000,
		Currency:   "IDR",
		Variants: []domain.ProductVariant{
			{ID: "variant-1", ProductID: "product-1", Stock: 5, CreatedAt: now},
		},
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	return products
}

func newOrder() domain.Order {
	now := time.Now().UTC()
	delivery := domain.Delivery{
		ID:         "delivery-1",
		Title:      "Courier",
		PriceMinor: 0,
		EtaDays:    2,
		CreatedAt:  now,
	}
	tx := domain.Transaction{
		ID:          "tx-1",
		OrderID:     "order-1",
		AmountMinor: 30000,
		Status:      domain.TransactionStatusPending,
		Method:      "invoice",
		CreatedAt:   now,
	}
	return domain.Order{
		ID:         "order-1",
		UserID:     "user-1",
		Status:     domain.OrderStatusPending,
		Currency:   "IDR",
		TotalMinor: 30000,
		DeliveryID: delivery.ID,
		Items: []domain.OrderItem{
			{ID: "item-1", OrderID: "order-1", VariantID: "variant-1", Qty: 2, UnitPriceMinor: 15000, CreatedAt: now},
		},
		Delivery:    &delivery,
		Transaction: &tx,
		Version:     0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestOrderRepository_CreateGet(t *testing.T) {
	products := seedCatalog(t)
	repo := memory.NewOrderRepository(products)
	order := newOrder()

	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ID != order.ID {
		t.Fatalf("expected id %s, got %s", order.ID, stored.ID)
	}
	if stored.Transaction == nil || stored.Transaction.AmountMinor != 30000 {
		t.Fatal("expected transaction snapshot to survive the roundtrip")
	}
}

func TestOrderRepository_CreateDecrementsStock(t *testing.T) {
	products := seedCatalog(t)
	repo := memory.NewOrderRepository(products)

	if err := repo.Create(newOrder()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	p, err := products.GetProduct("product-1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if len(p.Variants) != 1 {
		t.Fatalf("expected 1 variant, got %d", len(p.Variants))
	}
	if p.Variants[0].Stock != 3 {
		t.Fatalf("expected stock 3 after decrement, got %d", p.Variants[0].Stock)
	}
}

func TestOrderRepository_CreateRejectsOversell(t *testing.T) {
	products := seedCatalog(t)
	repo := memory.NewOrderRepository(products)

	order := newOrder()
	order.Items[0].Qty = 6
	order.TotalMinor = 90000
	order.Transaction.AmountMinor = 90000

	err := repo.Create(order)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// Остатки не должны были измениться.
	p, err := products.GetProduct("product-1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if p.Variants[0].Stock != 5 {
		t.Fatalf("expected stock untouched at 5, got %d", p.Variants[0].Stock)
	}
}

func TestOrderRepository_CreateRejectsOversellAcrossDuplicateLines(t *testing.T) {
	products := seedCatalog(t)
	repo := memory.NewOrderRepository(products)

	// Две позиции на один вариант: по отдельности каждая проходит по
	// остатку 5, суммарно — нет.
	order := newOrder()
	order.Items = []domain.OrderItem{
		{ID: "item-1", OrderID: order.ID, VariantID: "variant-1", Qty: 3, UnitPriceMinor: 15000, CreatedAt: order.CreatedAt},
		{ID: "item-2", OrderID: order.ID, VariantID: "variant-1", Qty: 3, UnitPriceMinor: 15000, CreatedAt: order.CreatedAt},
	}
	order.TotalMinor = 90000
	order.Transaction.AmountMinor = 90000

	err := repo.Create(order)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	p, err := products.GetProduct("product-1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if p.Variants[0].Stock != 5 {
		t.Fatalf("expected stock untouched at 5, got %d", p.Variants[0].Stock)
	}
}

func TestOrderRepository_CreateDecrementsStockAcrossDuplicateLines(t *testing.T) {
	products := seedCatalog(t)
	repo := memory.NewOrderRepository(products)

	order := newOrder()
	order.Items = []domain.OrderItem{
		{ID: "item-1", OrderID: order.ID, VariantID: "variant-1", Qty: 2, UnitPriceMinor: 15000, CreatedAt: order.CreatedAt},
		{ID: "item-2", OrderID: order.ID, VariantID: "variant-1", Qty: 2, UnitPriceMinor: 15000, CreatedAt: order.CreatedAt},
	}
	order.TotalMinor = 60000
	order.Transaction.AmountMinor = 60000

	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	p, err := products.GetProduct("product-1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if p.Variants[0].Stock != 1 {
		t.Fatalf("expected stock 1 after both lines, got %d", p.Variants[0].Stock)
	}
}

func TestOrderRepository_ListByUser(t *testing.T) {
	products := seedCatalog(t)
	repo := memory.NewOrderRepository(products)
	order := newOrder()
	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	orders, err := repo.ListByUser(order.UserID, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}

	orders, err = repo.ListByUser("someone-else", 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected 0 orders for foreign user, got %d", len(orders))
	}
}

func TestOrderRepository_ListPagination(t *testing.T) {
	products := memory.NewProductRepository()
	repo := memory.NewOrderRepository(products)

	base := time.Now().UTC()
	ids := []string{"order-a", "order-b", "order-c"}
	for i, id := range ids {
		order := newOrder()
		order.ID = id
		order.Items = nil
		order.TotalMinor = 0
		order.Transaction = nil
		order.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := repo.Create(order); err != nil {
			t.Fatalf("create %s failed: %v", id, err)
		}
	}

	page, total, err := repo.List(1, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 orders on first page, got %d", len(page))
	}
	if page[0].ID != "order-c" {
		t.Fatalf("expected newest order first, got %s", page[0].ID)
	}

	page, total, err = repo.List(2, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 || len(page) != 1 {
		t.Fatalf("expected 1 order on second page of 3, got %d of %d", len(page), total)
	}
}

func TestOrderRepository_Save(t *testing.T) {
	products := seedCatalog(t)
	repo := memory.NewOrderRepository(products)
	order := newOrder()
	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	stored.Status = domain.OrderStatusProcessing
	if err := repo.Save(stored); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	updated, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if updated.Status != domain.OrderStatusProcessing {
		t.Fatalf("expected status PROCESSING, got %s", updated.Status)
	}
	if updated.Version != stored.Version+1 {
		t.Fatalf("expected version increment, got %d", updated.Version)
	}
}

func TestOrderRepository_SaveVersionConflict(t *testing.T) {
	products := seedCatalog(t)
	repo := memory.NewOrderRepository(products)
	order := newOrder()
	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	order.Version = 42
	if err := repo.Save(order); !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected version conflict error, got %v", err)
	}
}
