package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// ReferenceRepository — in-memory реализация справочников бэк-офиса.
type ReferenceRepository struct {
	mu         sync.RWMutex
	brands     map[string]domain.Brand
	categories map[string]domain.Category
	tags       map[string]domain.Tag
	colors     map[string]domain.Color
	sizes      map[string]domain.Size
}

// NewReferenceRepository возвращает пустые справочники.
func NewReferenceRepository() *ReferenceRepository {
	return &ReferenceRepository{
		brands:     make(map[string]domain.Brand),
		categories: make(map[string]domain.Category),
		tags:       make(map[string]domain.Tag),
		colors:     make(map[string]domain.Color),
		sizes:      make(map[string]domain.Size),
	}
}

func (r *ReferenceRepository) CreateBrand(b domain.Brand) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.brands[b.ID] = b
	return nil
}

func (r *ReferenceRepository) ListBrands() ([]domain.Brand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Brand, 0, len(r.brands))
	for _, b := range r.brands {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *ReferenceRepository) UpdateBrand(b domain.Brand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.brands[b.ID]; !ok {
		return domain.ErrEntityNotFound
	}
	r.brands[b.ID] = b
	return nil
}

func (r *ReferenceRepository) DeleteBrand(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.brands[id]; !ok {
		return domain.ErrEntityNotFound
	}
	delete(r.brands, id)
	return nil
}

func (r *ReferenceRepository) CreateCategory(c domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[c.ID] = c
	return nil
}

func (r *ReferenceRepository) ListCategories() ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *ReferenceRepository) UpdateCategory(c domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[c.ID]; !ok {
		return domain.ErrEntityNotFound
	}
	r.categories[c.ID] = c
	return nil
}

func (r *ReferenceRepository) DeleteCategory(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return domain.ErrEntityNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *ReferenceRepository) CreateTag(t domain.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags[t.ID] = t
	return nil
}

func (r *ReferenceRepository) ListTags() ([]domain.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Tag, 0, len(r.tags))
	for _, t := range r.tags {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *ReferenceRepository) UpdateTag(t domain.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tags[t.ID]; !ok {
		return domain.ErrEntityNotFound
	}
	r.tags[t.ID] = t
	return nil
}

func (r *ReferenceRepository) DeleteTag(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tags[id]; !ok {
		return domain.ErrEntityNotFound
	}
	delete(r.tags, id)
	return nil
}

func (r *ReferenceRepository) CreateColor(c domain.Color) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.colors[c.ID] = c
	return nil
}

func (r *ReferenceRepository) ListColors() ([]domain.Color, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Color, 0, len(r.colors))
	for _, c := range r.colors {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *ReferenceRepository) UpdateColor(c domain.Color) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.colors[c.ID]; !ok {
		return domain.ErrEntityNotFound
	}
	r.colors[c.ID] = c
	return nil
}

func (r *ReferenceRepository) DeleteColor(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.colors[id]; !ok {
		return domain.ErrEntityNotFound
	}
	delete(r.colors, id)
	return nil
}

func (r *ReferenceRepository) CreateSize(s domain.Size) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sizes[s.ID] = s
	return nil
}

func (r *ReferenceRepository) ListSizes() ([]domain.Size, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Size, 0, len(r.sizes))
	for _, s := range r.sizes {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Label < result[j].Label })
	return result, nil
}

func (r *ReferenceRepository) UpdateSize(s domain.Size) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sizes[s.ID]; !ok {
		return domain.ErrEntityNotFound
	}
	r.sizes[s.ID] = s
	return nil
}

func (r *ReferenceRepository) DeleteSize(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sizes[id]; !ok {
		return domain.ErrEntityNotFound
	}
	delete(r.sizes, id)
	return nil
}

var _ domain.ReferenceRepository = (*ReferenceRepository)(nil)
