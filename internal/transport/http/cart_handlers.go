package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getCart возвращает корзину с суммами, пересчитанными от цен каталога.
func (s *Server) getCart(c *gin.Context) {
	view, err := s.carts.Get(currentUser(c).ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": toCartResponse(view)})
}

// addCartLine добавляет вариант в корзину или увеличивает количество.
func (s *Server) addCartLine(c *gin.Context) {
	var req addCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}

	view, err := s.carts.AddLine(currentUser(c).ID, req.VariantID, req.Qty)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": toCartResponse(view)})
}

// setCartQty выставляет количество позиции; qty <= 0 удаляет позицию.
func (s *Server) setCartQty(c *gin.Context) {
	var req setCartQtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}

	view, err := s.carts.SetQty(currentUser(c).ID, c.Param("variantId"), req.Qty)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": toCartResponse(view)})
}

// removeCartLine удаляет позицию корзины.
func (s *Server) removeCartLine(c *gin.Context) {
	view, err := s.carts.RemoveLine(currentUser(c).ID, c.Param("variantId"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": toCartResponse(view)})
}

// clearCart удаляет корзину целиком.
func (s *Server) clearCart(c *gin.Context) {
	if err := s.carts.Clear(currentUser(c).ID); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
