package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type referenceRepository struct {
	db *sql.DB
}

// NewReferenceRepository создаёт PostgreSQL-реализацию справочников.
func NewReferenceRepository(store *Store) domain.ReferenceRepository {
	return &referenceRepository{db: store.DB()}
}

func (r *referenceRepository) CreateBrand(b domain.Brand) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO brands (id, name, slug, created_at) VALUES ($1,$2,$3,$4)
	`, b.ID, b.Name, b.Slug, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert brand: %w", err)
	}
	return nil
}

func (r *referenceRepository) ListBrands() ([]domain.Brand, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, slug, created_at FROM brands ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Brand, 0)
	for rows.Next() {
		var b domain.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brands: %w", err)
	}
	return result, nil
}

func (r *referenceRepository) UpdateBrand(b domain.Brand) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE brands SET name = $1, slug = $2 WHERE id = $3
	`, b.Name, b.Slug, b.ID)
	if err != nil {
		return fmt.Errorf("update brand: %w", err)
	}
	return requireAffected(res, "brand")
}

func (r *referenceRepository) DeleteBrand(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}
	return requireAffected(res, "brand")
}

func (r *referenceRepository) CreateCategory(c domain.Category) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, slug, created_at) VALUES ($1,$2,$3,$4)
	`, c.ID, c.Name, c.Slug, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *referenceRepository) ListCategories() ([]domain.Category, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, slug, created_at FROM categories ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return result, nil
}

func (r *referenceRepository) UpdateCategory(c domain.Category) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = $1, slug = $2 WHERE id = $3
	`, c.Name, c.Slug, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireAffected(res, "category")
}

func (r *referenceRepository) DeleteCategory(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireAffected(res, "category")
}

func (r *referenceRepository) CreateTag(t domain.Tag) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tags (id, name, created_at) VALUES ($1,$2,$3)
	`, t.ID, t.Name, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

func (r *referenceRepository) ListTags() ([]domain.Tag, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, created_at FROM tags ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Tag, 0)
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return result, nil
}

func (r *referenceRepository) UpdateTag(t domain.Tag) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE tags SET name = $1 WHERE id = $2`, t.Name, t.ID)
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	return requireAffected(res, "tag")
}

func (r *referenceRepository) DeleteTag(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return requireAffected(res, "tag")
}

func (r *referenceRepository) CreateColor(c domain.Color) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO colors (id, name, hex, created_at) VALUES ($1,$2,$3,$4)
	`, c.ID, c.Name, c.Hex, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert color: %w", err)
	}
	return nil
}

func (r *referenceRepository) ListColors() ([]domain.Color, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, hex, created_at FROM colors ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list colors: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Color, 0)
	for rows.Next() {
		var c domain.Color
		if err := rows.Scan(&c.ID, &c.Name, &c.Hex, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan color: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate colors: %w", err)
	}
	return result, nil
}

func (r *referenceRepository) UpdateColor(c domain.Color) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE colors SET name = $1, hex = $2 WHERE id = $3
	`, c.Name, c.Hex, c.ID)
	if err != nil {
		return fmt.Errorf("update color: %w", err)
	}
	return requireAffected(res, "color")
}

func (r *referenceRepository) DeleteColor(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM colors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete color: %w", err)
	}
	return requireAffected(res, "color")
}

func (r *referenceRepository) CreateSize(s domain.Size) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sizes (id, label, created_at) VALUES ($1,$2,$3)
	`, s.ID, s.Label, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert size: %w", err)
	}
	return nil
}

func (r *referenceRepository) ListSizes() ([]domain.Size, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, label, created_at FROM sizes ORDER BY label, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list sizes: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Size, 0)
	for rows.Next() {
		var s domain.Size
		if err := rows.Scan(&s.ID, &s.Label, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan size: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sizes: %w", err)
	}
	return result, nil
}

func (r *referenceRepository) UpdateSize(s domain.Size) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE sizes SET label = $1 WHERE id = $2`, s.Label, s.ID)
	if err != nil {
		return fmt.Errorf("update size: %w", err)
	}
	return requireAffected(res, "size")
}

func (r *referenceRepository) DeleteSize(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM sizes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete size: %w", err)
	}
	return requireAffected(res, "size")
}

func requireAffected(res sql.Result, entity string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s: %w", entity, err)
	}
	if affected == 0 {
		return domain.ErrEntityNotFound
	}
	return nil
}

var _ domain.ReferenceRepository = (*referenceRepository)(nil)
