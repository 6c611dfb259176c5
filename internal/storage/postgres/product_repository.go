package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

func (r *productRepository) CreateProduct(p domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO products (
			id, name, slug, description, brand_id, category_id,
			price_minor, currency, image_url, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		p.ID, p.Name, p.Slug, p.Description,
		nullString(p.BrandID), nullString(p.CategoryID),
		p.PriceMinor, p.Currency, p.ImageURL, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	if err = replaceTagsTx(ctx, tx, p.ID, p.TagIDs); err != nil {
		return err
	}

	for _, v := range p.Variants {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO product_variants (id, product_id, color_id, size_id, stock, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, v.ID, p.ID, nullString(v.ColorID), nullString(v.SizeID), v.Stock, v.CreatedAt); err != nil {
			return fmt.Errorf("insert product variant: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create product: %w", err)
	}

	return nil
}

func (r *productRepository) GetProduct(id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	p, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT id, name, slug, description, brand_id, category_id,
		       price_minor, currency, image_url, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}

	if err := r.loadProductRelations(ctx, &p); err != nil {
		return domain.Product{}, err
	}

	return p, nil
}

func (r *productRepository) ListProducts(limit int) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT id, name, slug, description, brand_id, category_id,
		       price_minor, currency, image_url, created_at, updated_at
		FROM products
		ORDER BY created_at DESC, id DESC
	`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT $1", limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	for i := range products {
		if err := r.loadProductRelations(ctx, &products[i]); err != nil {
			return nil, err
		}
	}

	return products, nil
}

func (r *productRepository) UpdateProduct(p domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var res sql.Result
	res, err = tx.ExecContext(ctx, `
		UPDATE products
		SET name = $1,
		    slug = $2,
		    description = $3,
		    brand_id = $4,
		    category_id = $5,
		    price_minor = $6,
		    currency = $7,
		    image_url = $8,
		    updated_at = $9
		WHERE id = $10
	`,
		p.Name, p.Slug, p.Description,
		nullString(p.BrandID), nullString(p.CategoryID),
		p.PriceMinor, p.Currency, p.ImageURL, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	var affected int64
	affected, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		err = domain.ErrProductNotFound
		return err
	}

	if err = replaceTagsTx(ctx, tx, p.ID, p.TagIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update product: %w", err)
	}

	return nil
}

func (r *productRepository) DeleteProduct(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) CreateVariant(v domain.ProductVariant) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO product_variants (id, product_id, color_id, size_id, stock, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, v.ID, v.ProductID, nullString(v.ColorID), nullString(v.SizeID), v.Stock, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert variant: %w", err)
	}
	return nil
}

func (r *productRepository) DeleteVariant(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM product_variants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete variant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrVariantNotFound
	}
	return nil
}

// ResolveVariants возвращает варианты с их товарами одной выборкой.
// Отсутствующие идентификаторы просто не попадают в результат.
func (r *productRepository) ResolveVariants(ids []string) (map[string]domain.ResolvedVariant, error) {
	result := make(map[string]domain.ResolvedVariant, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT v.id, v.product_id, v.color_id, v.size_id, v.stock, v.created_at,
		       p.id, p.name, p.slug, p.description, p.brand_id, p.category_id,
		       p.price_minor, p.currency, p.image_url, p.created_at, p.updated_at
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			v               domain.ProductVariant
			p               domain.Product
			colorID, sizeID sql.NullString
			brandID, catID  sql.NullString
		)
		if err := rows.Scan(
			&v.ID, &v.ProductID, &colorID, &sizeID, &v.Stock, &v.CreatedAt,
			&p.ID, &p.Name, &p.Slug, &p.Description, &brandID, &catID,
			&p.PriceMinor, &p.Currency, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan resolved variant: %w", err)
		}
		v.ColorID = colorID.String
		v.SizeID = sizeID.String
		p.BrandID = brandID.String
		p.CategoryID = catID.String
		result[v.ID] = domain.ResolvedVariant{Variant: v, Product: p}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resolved variants: %w", err)
	}

	return result, nil
}

func (r *productRepository) loadProductRelations(ctx context.Context, p *domain.Product) error {
	tagRows, err := r.db.QueryContext(ctx, `
		SELECT tag_id FROM product_tags WHERE product_id = $1 ORDER BY tag_id
	`, p.ID)
	if err != nil {
		return fmt.Errorf("load product tags: %w", err)
	}
	defer tagRows.Close()

	tagIDs := make([]string, 0)
	for tagRows.Next() {
		var tagID string
		if err := tagRows.Scan(&tagID); err != nil {
			return fmt.Errorf("scan product tag: %w", err)
		}
		tagIDs = append(tagIDs, tagID)
	}
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("iterate product tags: %w", err)
	}
	p.TagIDs = tagIDs

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, color_id, size_id, stock, created_at
		FROM product_variants
		WHERE product_id = $1
		ORDER BY id ASC
	`, p.ID)
	if err != nil {
		return fmt.Errorf("load product variants: %w", err)
	}
	defer rows.Close()

	variants := make([]domain.ProductVariant, 0)
	for rows.Next() {
		var (
			v               domain.ProductVariant
			colorID, sizeID sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.ProductID, &colorID, &sizeID, &v.Stock, &v.CreatedAt); err != nil {
			return fmt.Errorf("scan product variant: %w", err)
		}
		v.ColorID = colorID.String
		v.SizeID = sizeID.String
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate product variants: %w", err)
	}
	p.Variants = variants

	return nil
}

func replaceTagsTx(ctx context.Context, tx *sql.Tx, productID string, tagIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_tags WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("clear product tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO product_tags (product_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, productID, tagID); err != nil {
			return fmt.Errorf("insert product tag: %w", err)
		}
	}
	return nil
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p              domain.Product
		brandID, catID sql.NullString
	)
	if err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &brandID, &catID,
		&p.PriceMinor, &p.Currency, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return domain.Product{}, err
	}
	p.BrandID = brandID.String
	p.CategoryID = catID.String
	return p, nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
