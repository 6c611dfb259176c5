package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// UserRepository — in-memory реализация хранилища пользователей.
type UserRepository struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	byToken map[string]string
}

// NewUserRepository возвращает пустое in-memory хранилище пользователей.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[string]domain.User),
		byToken: make(map[string]string),
	}
}

func (r *UserRepository) Create(u domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[u.ID] = u
	if u.APIToken != "" {
		r.byToken[u.APIToken] = u.ID
	}
	return nil
}

func (r *UserRepository) Get(id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *UserRepository) GetByToken(token string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byToken[token]
	if !ok {
		return domain.User{}, domain.ErrTokenInvalid
	}
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.ErrTokenInvalid
	}
	return u, nil
}

func (r *UserRepository) List(page, perPage int) ([]domain.User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	total := len(all)
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}

	start := (page - 1) * perPage
	if start >= total {
		return []domain.User{}, total, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

var _ domain.UserRepository = (*UserRepository)(nil)
