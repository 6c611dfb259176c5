package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const defaultListLimit = 100

// Service реализует операции каталога: карточки товаров, варианты,
// справочники и баннеры витрины.
type Service struct {
	products   domain.ProductRepository
	references domain.ReferenceRepository
	banners    domain.BannerRepository
	logger     *log.Entry
}

// NewService конструирует сервис каталога.
func NewService(products domain.ProductRepository, references domain.ReferenceRepository, banners domain.BannerRepository) *Service {
	return &Service{
		products:   products,
		references: references,
		banners:    banners,
		logger:     log.WithField("component", "catalog-service"),
	}
}

// CreateProduct валидирует и сохраняет карточку товара вместе с вариантами.
func (s *Service) CreateProduct(p domain.Product) (domain.Product, error) {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Slug == "" {
		p.Slug = slugify(p.Name)
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	for i := range p.Variants {
		if p.Variants[i].ID == "" {
			p.Variants[i].ID = uuid.NewString()
		}
		p.Variants[i].ProductID = p.ID
		p.Variants[i].CreatedAt = now
	}

	if errs := p.Validate(); len(errs) > 0 {
		return domain.Product{}, validationError(errs)
	}
	for i := range p.Variants {
		if errs := p.Variants[i].Validate(); len(errs) > 0 {
			return domain.Product{}, validationError(errs)
		}
	}

	if err := s.products.CreateProduct(p); err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}

	s.logger.WithFields(log.Fields{
		"product_id": p.ID,
		"variants":   len(p.Variants),
	}).Info("product created")
	return p, nil
}

// GetProduct возвращает карточку товара с вариантами.
func (s *Service) GetProduct(id string) (domain.Product, error) {
	return s.products.GetProduct(id)
}

// ListProducts возвращает карточки от новых к старым.
func (s *Service) ListProducts(limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.products.ListProducts(limit)
}

// UpdateProduct обновляет карточку товара.
func (s *Service) UpdateProduct(p domain.Product) (domain.Product, error) {
	if errs := p.Validate(); len(errs) > 0 {
		return domain.Product{}, validationError(errs)
	}

	p.UpdatedAt = time.Now().UTC()
	if err := s.products.UpdateProduct(p); err != nil {
		return domain.Product{}, err
	}
	return s.products.GetProduct(p.ID)
}

// DeleteProduct удаляет карточку вместе с вариантами.
func (s *Service) DeleteProduct(id string) error {
	return s.products.DeleteProduct(id)
}

// CreateVariant добавляет вариант существующему товару.
func (s *Service) CreateVariant(v domain.ProductVariant) (domain.ProductVariant, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	v.CreatedAt = time.Now().UTC()

	if errs := v.Validate(); len(errs) > 0 {
		return domain.ProductVariant{}, validationError(errs)
	}
	if err := s.products.CreateVariant(v); err != nil {
		return domain.ProductVariant{}, err
	}
	return v, nil
}

// DeleteVariant удаляет вариант товара.
func (s *Service) DeleteVariant(id string) error {
	return s.products.DeleteVariant(id)
}

// Brands

func (s *Service) CreateBrand(b domain.Brand) (domain.Brand, error) {
	if b.Name == "" {
		return domain.Brand{}, fmt.Errorf("%w: brand name is required", domain.ErrValidation)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Slug == "" {
		b.Slug = slugify(b.Name)
	}
	b.CreatedAt = time.Now().UTC()
	if err := s.references.CreateBrand(b); err != nil {
		return domain.Brand{}, err
	}
	return b, nil
}

func (s *Service) ListBrands() ([]domain.Brand, error) { return s.references.ListBrands() }

func (s *Service) UpdateBrand(b domain.Brand) (domain.Brand, error) {
	if b.Name == "" {
		return domain.Brand{}, fmt.Errorf("%w: brand name is required", domain.ErrValidation)
	}
	if err := s.references.UpdateBrand(b); err != nil {
		return domain.Brand{}, err
	}
	return b, nil
}

func (s *Service) DeleteBrand(id string) error { return s.references.DeleteBrand(id) }

// Categories

func (s *Service) CreateCategory(c domain.Category) (domain.Category, error) {
	if c.Name == "" {
		return domain.Category{}, fmt.Errorf("%w: category name is required", domain.ErrValidation)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Slug == "" {
		c.Slug = slugify(c.Name)
	}
	c.CreatedAt = time.Now().UTC()
	if err := s.references.CreateCategory(c); err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

func (s *Service) ListCategories() ([]domain.Category, error) { return s.references.ListCategories() }

func (s *Service) UpdateCategory(c domain.Category) (domain.Category, error) {
	if c.Name == "" {
		return domain.Category{}, fmt.Errorf("%w: category name is required", domain.ErrValidation)
	}
	if err := s.references.UpdateCategory(c); err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

func (s *Service) DeleteCategory(id string) error { return s.references.DeleteCategory(id) }

// Tags

func (s *Service) CreateTag(t domain.Tag) (domain.Tag, error) {
	if t.Name == "" {
		return domain.Tag{}, fmt.Errorf("%w: tag name is required", domain.ErrValidation)
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()
	if err := s.references.CreateTag(t); err != nil {
		return domain.Tag{}, err
	}
	return t, nil
}

func (s *Service) ListTags() ([]domain.Tag, error) { return s.references.ListTags() }

func (s *Service) UpdateTag(t domain.Tag) (domain.Tag, error) {
	if t.Name == "" {
		return domain.Tag{}, fmt.Errorf("%w: tag name is required", domain.ErrValidation)
	}
	if err := s.references.UpdateTag(t); err != nil {
		return domain.Tag{}, err
	}
	return t, nil
}

func (s *Service) DeleteTag(id string) error { return s.references.DeleteTag(id) }

// Colors

func (s *Service) CreateColor(c domain.Color) (domain.Color, error) {
	if c.Name == "" {
		return domain.Color{}, fmt.Errorf("%w: color name is required", domain.ErrValidation)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()
	if err := s.references.CreateColor(c); err != nil {
		return domain.Color{}, err
	}
	return c, nil
}

func (s *Service) ListColors() ([]domain.Color, error) { return s.references.ListColors() }

func (s *Service) UpdateColor(c domain.Color) (domain.Color, error) {
	if c.Name == "" {
		return domain.Color{}, fmt.Errorf("%w: color name is required", domain.ErrValidation)
	}
	if err := s.references.UpdateColor(c); err != nil {
		return domain.Color{}, err
	}
	return c, nil
}

func (s *Service) DeleteColor(id string) error { return s.references.DeleteColor(id) }

// Sizes

func (s *Service) CreateSize(sz domain.Size) (domain.Size, error) {
	if sz.Label == "" {
		return domain.Size{}, fmt.Errorf("%w: size label is required", domain.ErrValidation)
	}
	if sz.ID == "" {
		sz.ID = uuid.NewString()
	}
	sz.CreatedAt = time.Now().UTC()
	if err := s.references.CreateSize(sz); err != nil {
		return domain.Size{}, err
	}
	return sz, nil
}

func (s *Service) ListSizes() ([]domain.Size, error) { return s.references.ListSizes() }

func (s *Service) UpdateSize(sz domain.Size) (domain.Size, error) {
	if sz.Label == "" {
		return domain.Size{}, fmt.Errorf("%w: size label is required", domain.ErrValidation)
	}
	if err := s.references.UpdateSize(sz); err != nil {
		return domain.Size{}, err
	}
	return sz, nil
}

func (s *Service) DeleteSize(id string) error { return s.references.DeleteSize(id) }

// Banners

func (s *Service) CreateBanner(b domain.Banner) (domain.Banner, error) {
	if b.Title == "" {
		return domain.Banner{}, fmt.Errorf("%w: banner title is required", domain.ErrValidation)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = time.Now().UTC()
	if err := s.banners.CreateBanner(b); err != nil {
		return domain.Banner{}, err
	}
	return b, nil
}

// ListBanners возвращает баннеры; activeOnly скрывает выключенные.
func (s *Service) ListBanners(activeOnly bool) ([]domain.Banner, error) {
	return s.banners.ListBanners(activeOnly)
}

func (s *Service) UpdateBanner(b domain.Banner) (domain.Banner, error) {
	if b.Title == "" {
		return domain.Banner{}, fmt.Errorf("%w: banner title is required", domain.ErrValidation)
	}
	if err := s.banners.UpdateBanner(b); err != nil {
		return domain.Banner{}, err
	}
	return b, nil
}

func (s *Service) DeleteBanner(id string) error { return s.banners.DeleteBanner(id) }

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}

func validationError(errs []error) error {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}
