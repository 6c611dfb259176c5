package cart

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const defaultCurrency = "IDR"

// Service управляет серверной корзиной: хранение ссылок на варианты
// и пересчёт сумм от актуальных цен каталога при каждом чтении.
type Service struct {
	carts    domain.CartRepository
	products domain.ProductRepository
	logger   *log.Entry
}

// NewService конструирует сервис корзины.
func NewService(carts domain.CartRepository, products domain.ProductRepository) *Service {
	return &Service{
		carts:    carts,
		products: products,
		logger:   log.WithField("component", "cart-service"),
	}
}

// LineView — позиция корзины, обогащённая данными каталога.
type LineView struct {
	VariantID      string
	ProductID      string
	ProductName    string
	Qty            int32
	UnitPriceMinor int64
	SubtotalMinor  int64
}

// View — корзина с пересчитанными суммами. Клиентским суммам сервер
// не доверяет, итог всегда считается от текущих цен каталога.
type View struct {
	UserID     string
	Lines      []LineView
	Currency   string
	TotalMinor int64
}

// Get возвращает корзину пользователя с актуальными ценами. Позиции,
// чьи варианты исчезли из каталога, в представление не попадают.
func (s *Service) Get(userID string) (View, error) {
	if userID == "" {
		return View{}, domain.ErrUserRequired
	}

	cart, err := s.carts.Get(userID)
	if err != nil {
		return View{}, fmt.Errorf("load cart: %w", err)
	}
	return s.buildView(cart)
}

// AddLine добавляет вариант в корзину или увеличивает количество
// существующей позиции.
func (s *Service) AddLine(userID, variantID string, qty int32) (View, error) {
	if userID == "" {
		return View{}, domain.ErrUserRequired
	}
	if qty < 1 {
		return View{}, domain.ErrItemQtyInvalid
	}

	resolved, err := s.products.ResolveVariants([]string{variantID})
	if err != nil {
		return View{}, fmt.Errorf("resolve variant: %w", err)
	}
	if _, ok := resolved[variantID]; !ok {
		return View{}, fmt.Errorf("%w: %s", domain.ErrVariantNotFound, variantID)
	}

	cart, err := s.carts.Get(userID)
	if err != nil {
		return View{}, fmt.Errorf("load cart: %w", err)
	}

	cart.UserID = userID
	cart.Upsert(variantID, qty, time.Now().UTC())
	if err := s.carts.Save(cart); err != nil {
		return View{}, fmt.Errorf("save cart: %w", err)
	}
	return s.buildView(cart)
}

// SetQty выставляет количество позиции; qty <= 0 удаляет позицию.
func (s *Service) SetQty(userID, variantID string, qty int32) (View, error) {
	if userID == "" {
		return View{}, domain.ErrUserRequired
	}
	if qty <= 0 {
		return s.RemoveLine(userID, variantID)
	}

	cart, err := s.carts.Get(userID)
	if err != nil {
		return View{}, fmt.Errorf("load cart: %w", err)
	}

	if !cart.SetQty(variantID, qty, time.Now().UTC()) {
		return View{}, fmt.Errorf("%w: %s", domain.ErrCartLineNotFound, variantID)
	}
	if err := s.carts.Save(cart); err != nil {
		return View{}, fmt.Errorf("save cart: %w", err)
	}
	return s.buildView(cart)
}

// RemoveLine удаляет позицию из корзины.
func (s *Service) RemoveLine(userID, variantID string) (View, error) {
	if userID == "" {
		return View{}, domain.ErrUserRequired
	}

	cart, err := s.carts.Get(userID)
	if err != nil {
		return View{}, fmt.Errorf("load cart: %w", err)
	}

	if !cart.Remove(variantID, time.Now().UTC()) {
		return View{}, fmt.Errorf("%w: %s", domain.ErrCartLineNotFound, variantID)
	}
	if err := s.carts.Save(cart); err != nil {
		return View{}, fmt.Errorf("save cart: %w", err)
	}
	return s.buildView(cart)
}

// Clear удаляет корзину пользователя целиком.
func (s *Service) Clear(userID string) error {
	if userID == "" {
		return domain.ErrUserRequired
	}
	return s.carts.Clear(userID)
}

func (s *Service) buildView(cart domain.Cart) (View, error) {
	view := View{
		UserID:   cart.UserID,
		Lines:    make([]LineView, 0, len(cart.Lines)),
		Currency: defaultCurrency,
	}
	if len(cart.Lines) == 0 {
		return view, nil
	}

	ids := lo.Map(cart.Lines, func(line domain.CartLine, _ int) string {
		return line.VariantID
	})
	resolved, err := s.products.ResolveVariants(lo.Uniq(ids))
	if err != nil {
		return View{}, fmt.Errorf("resolve variants: %w", err)
	}

	for _, line := range cart.Lines {
		rv, ok := resolved[line.VariantID]
		if !ok {
			s.logger.WithFields(log.Fields{
				"user_id":    cart.UserID,
				"variant_id": line.VariantID,
			}).Debug("cart line points to a missing variant, skipping")
			continue
		}

		subtotal := int64(line.Qty) * rv.Product.PriceMinor
		view.Lines = append(view.Lines, LineView{
			VariantID:      line.VariantID,
			ProductID:      rv.Product.ID,
			ProductName:    rv.Product.Name,
			Qty:            line.Qty,
			UnitPriceMinor: rv.Product.PriceMinor,
			SubtotalMinor:  subtotal,
		})
		view.TotalMinor += subtotal
		if rv.Product.Currency != "" {
			view.Currency = rv.Product.Currency
		}
	}
	return view, nil
}
