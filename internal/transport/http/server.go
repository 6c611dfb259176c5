package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server — HTTP-фасад витрины поверх gin.
type Server struct {
	checkout *checkout.Service
	catalog  *catalog.Service
	carts    *cart.Service
	users    domain.UserRepository
	logger   *log.Entry
	router   *gin.Engine
	srv      *http.Server
}

// NewServer собирает роутер со всеми маршрутами витрины и бэк-офиса.
func NewServer(checkoutSvc *checkout.Service, catalogSvc *catalog.Service, cartSvc *cart.Service, users domain.UserRepository) *Server {
	gin.SetMode(gin.ReleaseMode)

	logger := log.WithField("component", "http-server")

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	s := &Server{
		checkout: checkoutSvc,
		catalog:  catalogSvc,
		carts:    cartSvc,
		users:    users,
		logger:   logger,
		router:   router,
	}
	s.setupRoutes()
	return s
}

// Router возвращает gin.Engine; используется в тестах с httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")

	// Публичная витрина: каталог и баннеры доступны без токена.
	v1.GET("/products", s.listProducts)
	v1.GET("/products/:id", s.getProduct)
	v1.GET("/banners", s.listBanners)
	v1.GET("/brands", s.listBrands)
	v1.GET("/categories", s.listCategories)
	v1.GET("/tags", s.listTags)
	v1.GET("/colors", s.listColors)
	v1.GET("/sizes", s.listSizes)

	// Авторизованная зона покупателя.
	authed := v1.Group("")
	authed.Use(s.authenticate())
	{
		authed.GET("/cart", s.getCart)
		authed.POST("/cart/items", s.addCartLine)
		authed.PUT("/cart/items/:variantId", s.setCartQty)
		authed.DELETE("/cart/items/:variantId", s.removeCartLine)
		authed.DELETE("/cart", s.clearCart)

		authed.POST("/orders", s.placeOrder)
		authed.GET("/orders", s.listOrders)
		authed.GET("/orders/:id", s.getOrder)
	}

	// Бэк-офис: только для администраторов.
	admin := v1.Group("/admin")
	admin.Use(s.authenticate(), s.requireAdmin())
	{
		admin.GET("/orders", s.adminListOrders)
		admin.PUT("/orders", s.adminChangeOrderStatus)

		admin.GET("/users", s.adminListUsers)

		admin.POST("/products", s.createProduct)
		admin.PUT("/products/:id", s.updateProduct)
		admin.DELETE("/products/:id", s.deleteProduct)
		admin.POST("/variants", s.createVariant)
		admin.DELETE("/variants/:id", s.deleteVariant)

		admin.POST("/banners", s.createBanner)
		admin.PUT("/banners/:id", s.updateBanner)
		admin.DELETE("/banners/:id", s.deleteBanner)

		admin.POST("/brands", s.createBrand)
		admin.PUT("/brands/:id", s.updateBrand)
		admin.DELETE("/brands/:id", s.deleteBrand)

		admin.POST("/categories", s.createCategory)
		admin.PUT("/categories/:id", s.updateCategory)
		admin.DELETE("/categories/:id", s.deleteCategory)

		admin.POST("/tags", s.createTag)
		admin.PUT("/tags/:id", s.updateTag)
		admin.DELETE("/tags/:id", s.deleteTag)

		admin.POST("/colors", s.createColor)
		admin.PUT("/colors/:id", s.updateColor)
		admin.DELETE("/colors/:id", s.deleteColor)

		admin.POST("/sizes", s.createSize)
		admin.PUT("/sizes/:id", s.updateSize)
		admin.DELETE("/sizes/:id", s.deleteSize)
	}
}

// Start запускает HTTP-сервер; блокируется до ошибки listen/serve.
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.logger.WithField("addr", addr).Info("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown аккуратно останавливает сервер.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
