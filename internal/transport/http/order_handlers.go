package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	defaultAdminPage    = 1
	defaultAdminPerPage = 20
)

// placeOrder оформляет заказ из позиций запроса от имени текущего пользователя.
func (s *Server) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}

	user := currentUser(c)

	lines := toOrderLines(req.Items)
	if len(lines) == 0 {
		// Без явных позиций заказ оформляется из серверной корзины.
		view, err := s.carts.Get(user.ID)
		if err != nil {
			s.respondError(c, err)
			return
		}
		lines = toCartLines(view)
	}

	order, err := s.checkout.PlaceOrder(user, lines)
	if err != nil {
		// Неизвестный вариант в запросе на оформление — ошибка клиента.
		if errors.Is(err, domain.ErrVariantNotFound) {
			c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
			return
		}
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": toOrderResponse(order)})
}

// listOrders возвращает заказы текущего пользователя от новых к старым.
func (s *Server) listOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	orders, err := s.checkout.ListOrders(currentUser(c).ID, limit)
	if err != nil {
		s.respondError(c, err)
		return
	}

	resp := orderListResponse{Orders: make([]orderResponse, 0, len(orders))}
	for _, order := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(order))
	}
	c.JSON(http.StatusOK, resp)
}

// getOrder возвращает заказ; чужие заказы не раскрываются.
func (s *Server) getOrder(c *gin.Context) {
	order, err := s.checkout.GetOrder(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	user := currentUser(c)
	if order.UserID != user.ID && !user.IsAdmin() {
		c.JSON(http.StatusNotFound, errorResponse{Message: domain.ErrOrderNotFound.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": toOrderResponse(order)})
}

// adminListOrders возвращает страницу всех заказов.
func (s *Server) adminListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultAdminPage)))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", strconv.Itoa(defaultAdminPerPage)))

	orders, total, err := s.checkout.ListAllOrders(page, perPage)
	if err != nil {
		s.respondError(c, err)
		return
	}

	resp := orderListResponse{
		Orders: make([]orderResponse, 0, len(orders)),
		Total:  total,
	}
	for _, order := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(order))
	}
	c.JSON(http.StatusOK, resp)
}

// adminChangeOrderStatus переводит заказ в новый статус.
func (s *Server) adminChangeOrderStatus(c *gin.Context) {
	var req changeOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}

	order, err := s.checkout.ChangeStatus(req.OrderID, domain.OrderStatus(req.Status), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": toOrderResponse(order)})
}
