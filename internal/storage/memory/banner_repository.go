package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// BannerRepository — in-memory реализация хранилища баннеров.
type BannerRepository struct {
	mu      sync.RWMutex
	banners map[string]domain.Banner
}

// NewBannerRepository возвращает пустое in-memory хранилище баннеров.
func NewBannerRepository() *BannerRepository {
	return &BannerRepository{banners: make(map[string]domain.Banner)}
}

func (r *BannerRepository) CreateBanner(b domain.Banner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.banners[b.ID] = b
	return nil
}

func (r *BannerRepository) ListBanners(activeOnly bool) ([]domain.Banner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Banner, 0, len(r.banners))
	for _, b := range r.banners {
		if activeOnly && !b.Active {
			continue
		}
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *BannerRepository) UpdateBanner(b domain.Banner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.banners[b.ID]; !ok {
		return domain.ErrEntityNotFound
	}
	r.banners[b.ID] = b
	return nil
}

func (r *BannerRepository) DeleteBanner(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.banners[id]; !ok {
		return domain.ErrEntityNotFound
	}
	delete(r.banners, id)
	return nil
}

var _ domain.BannerRepository = (*BannerRepository)(nil)
