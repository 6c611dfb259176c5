package domain

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create атомарно сохраняет заказ вместе с delivery-снимком, позициями,
	// платёжной записью и списанием остатков по вариантам. Любая ошибка
	// внутри откатывает все записи.
	Create(order Order) error
	// Get возвращает заказ с вложенными данными или ErrOrderNotFound.
	Get(id string) (Order, error)
	// ListByUser возвращает заказы пользователя от новых к старым.
	ListByUser(userID string, limit int) ([]Order, error)
	// List возвращает страницу всех заказов (бэк-офис) и общее количество.
	List(page, perPage int) ([]Order, int, error)
	// Save применяет обновления к заказу с учётом optimistic locking.
	Save(order Order) error
}

// ProductRepository описывает хранилище товаров и вариантов.
type ProductRepository interface {
	CreateProduct(p Product) error
	GetProduct(id string) (Product, error)
	ListProducts(limit int) ([]Product, error)
	UpdateProduct(p Product) error
	DeleteProduct(id string) error

	CreateVariant(v ProductVariant) error
	DeleteVariant(id string) error
	// ResolveVariants возвращает варианты и их товары по списку идентификаторов
	// одной выборкой; отсутствующие идентификаторы просто не попадают в ответ.
	ResolveVariants(ids []string) (map[string]ResolvedVariant, error)
}

// ResolvedVariant — вариант вместе с товаром-владельцем; из него берётся
// актуальная цена при оформлении заказа.
type ResolvedVariant struct {
	Variant ProductVariant
	Product Product
}

// ReferenceRepository описывает CRUD справочников бэк-офиса.
type ReferenceRepository interface {
	CreateBrand(b Brand) error
	ListBrands() ([]Brand, error)
	UpdateBrand(b Brand) error
	DeleteBrand(id string) error

	CreateCategory(c Category) error
	ListCategories() ([]Category, error)
	UpdateCategory(c Category) error
	DeleteCategory(id string) error

	CreateTag(t Tag) error
	ListTags() ([]Tag, error)
	UpdateTag(t Tag) error
	DeleteTag(id string) error

	CreateColor(c Color) error
	ListColors() ([]Color, error)
	UpdateColor(c Color) error
	DeleteColor(id string) error

	CreateSize(s Size) error
	ListSizes() ([]Size, error)
	UpdateSize(s Size) error
	DeleteSize(id string) error
}

// BannerRepository описывает хранилище промо-баннеров.
type BannerRepository interface {
	CreateBanner(b Banner) error
	ListBanners(activeOnly bool) ([]Banner, error)
	UpdateBanner(b Banner) error
	DeleteBanner(id string) error
}

// UserRepository описывает хранилище учётных записей.
type UserRepository interface {
	Create(u User) error
	Get(id string) (User, error)
	// GetByToken резолвит API-токен в пользователя или возвращает ErrTokenInvalid.
	GetByToken(token string) (User, error)
	List(page, perPage int) ([]User, int, error)
}

// CartRepository хранит серверные корзины.
type CartRepository interface {
	// Get возвращает корзину пользователя; отсутствие корзины — не ошибка,
	// возвращается пустой агрегат.
	Get(userID string) (Cart, error)
	Save(cart Cart) error
	Clear(userID string) error
}
