package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type bannerRepository struct {
	db *sql.DB
}

// NewBannerRepository создаёт PostgreSQL-реализацию BannerRepository.
func NewBannerRepository(store *Store) domain.BannerRepository {
	return &bannerRepository{db: store.DB()}
}

func (r *bannerRepository) CreateBanner(b domain.Banner) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO banners (id, title, image_url, link_url, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, b.ID, b.Title, b.ImageURL, b.LinkURL, b.Active, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert banner: %w", err)
	}
	return nil
}

func (r *bannerRepository) ListBanners(activeOnly bool) ([]domain.Banner, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT id, title, image_url, link_url, active, created_at
		FROM banners
	`
	if activeOnly {
		query += " WHERE active"
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Banner, 0)
	for rows.Next() {
		var b domain.Banner
		if err := rows.Scan(&b.ID, &b.Title, &b.ImageURL, &b.LinkURL, &b.Active, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan banner: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate banners: %w", err)
	}
	return result, nil
}

func (r *bannerRepository) UpdateBanner(b domain.Banner) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE banners
		SET title = $1, image_url = $2, link_url = $3, active = $4
		WHERE id = $5
	`, b.Title, b.ImageURL, b.LinkURL, b.Active, b.ID)
	if err != nil {
		return fmt.Errorf("update banner: %w", err)
	}
	return requireAffected(res, "banner")
}

func (r *bannerRepository) DeleteBanner(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM banners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete banner: %w", err)
	}
	return requireAffected(res, "banner")
}

var _ domain.BannerRepository = (*bannerRepository)(nil)
