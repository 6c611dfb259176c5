package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// ProductRepository — in-memory реализация хранилища товаров и вариантов.
// Тип экспортирован: репозиторий заказов списывает остатки через него
// под общим с заказом локом.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	variants map[string]domain.ProductVariant
}

// NewProductRepository возвращает пустой in-memory каталог.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[string]domain.Product),
		variants: make(map[string]domain.ProductVariant),
	}
}

func (r *ProductRepository) CreateProduct(p domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[p.ID] = p
	for _, v := range p.Variants {
		r.variants[v.ID] = v
	}
	return nil
}

func (r *ProductRepository) GetProduct(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	p.Variants = r.variantsOfLocked(id)
	return p, nil
}

func (r *ProductRepository) ListProducts(limit int) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		p.Variants = r.variantsOfLocked(p.ID)
		result = append(result, p)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *ProductRepository) UpdateProduct(p domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	r.products[p.ID] = p
	return nil
}

func (r *ProductRepository) DeleteProduct(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.products, id)
	for vid, v := range r.variants {
		if v.ProductID == id {
			delete(r.variants, vid)
		}
	}
	return nil
}

func (r *ProductRepository) CreateVariant(v domain.ProductVariant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[v.ProductID]; !ok {
		return domain.ErrProductNotFound
	}
	r.variants[v.ID] = v
	return nil
}

func (r *ProductRepository) DeleteVariant(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.variants[id]; !ok {
		return domain.ErrVariantNotFound
	}
	delete(r.variants, id)
	return nil
}

func (r *ProductRepository) ResolveVariants(ids []string) (map[string]domain.ResolvedVariant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]domain.ResolvedVariant, len(ids))
	for _, id := range ids {
		v, ok := r.variants[id]
		if !ok {
			continue
		}
		p, ok := r.products[v.ProductID]
		if !ok {
			continue
		}
		result[id] = domain.ResolvedVariant{Variant: v, Product: p}
	}
	return result, nil
}

// decrementStock списывает остатки по позициям заказа: либо все позиции,
// либо ни одной. Вызывается репозиторием заказов под его транзакционным локом.
func (r *ProductRepository) decrementStock(items []domain.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Позиции могут повторять один и тот же вариант, поэтому остаток
	// сверяется с суммарным количеством по варианту.
	requested := make(map[string]int32, len(items))
	for _, item := range items {
		requested[item.VariantID] += item.Qty
	}

	for variantID, qty := range requested {
		v, ok := r.variants[variantID]
		if !ok {
			return domain.ErrVariantNotFound
		}
		if v.Stock < qty {
			return domain.ErrInsufficientStock
		}
	}

	for variantID, qty := range requested {
		v := r.variants[variantID]
		v.Stock -= qty
		r.variants[variantID] = v
	}
	return nil
}

func (r *ProductRepository) variantsOfLocked(productID string) []domain.ProductVariant {
	variants := make([]domain.ProductVariant, 0)
	for _, v := range r.variants {
		if v.ProductID == productID {
			variants = append(variants, v)
		}
	}
	sort.Slice(variants, func(i, j int) bool { return variants[i].ID < variants[j].ID })
	return variants
}

var _ domain.ProductRepository = (*ProductRepository)(nil)
