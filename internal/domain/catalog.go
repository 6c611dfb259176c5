package domain

import "time"

// Product — карточка товара в каталоге. Цена хранится на товаре,
// варианты наследуют её.
type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Description string           `json:"description,omitempty"`
	BrandID     string           `json:"brand_id,omitempty"`
	CategoryID  string           `json:"category_id,omitempty"`
	PriceMinor  int64            `json:"price_minor"`
	Currency    string           `json:"currency"`
	ImageURL    string           `json:"image_url,omitempty"`
	TagIDs      []string         `json:"tag_ids,omitempty"`
	Variants    []ProductVariant `json:"variants,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ProductVariant — покупаемая SKU-комбинация товара с цветом и размером.
// Со стороны оформления заказа вариант read-only, кроме атомарного
// списания Stock внутри транзакции заказа.
type ProductVariant struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	ColorID   string    `json:"color_id,omitempty"`
	SizeID    string    `json:"size_id,omitempty"`
	Stock     int32     `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
}

// Brand — бренд товара.
type Brand struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Category — категория каталога.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Tag — свободная метка товара.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Color — справочное значение цвета для вариантов.
type Color struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Hex       string    `json:"hex,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Size — справочное значение размера для вариантов.
type Size struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// Banner — промо-баннер витрины.
type Banner struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url,omitempty"`
	LinkURL   string    `json:"link_url,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate проверяет обязательные поля товара.
func (p *Product) Validate() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrProductPriceNegative)
	}
	if p.Currency == "" {
		errs = append(errs, ErrCurrencyRequired)
	}

	return errs
}

// Validate проверяет корректность варианта.
func (v *ProductVariant) Validate() []error {
	var errs []error

	if v.ProductID == "" {
		errs = append(errs, ErrVariantProductRequired)
	}
	if v.Stock < 0 {
		errs = append(errs, ErrVariantStockNegative)
	}

	return errs
}
