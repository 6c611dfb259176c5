package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// respondError переводит доменные ошибки в HTTP-статусы.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFound(err) || errors.Is(err, domain.ErrCartLineNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrOrderVersionConflict):
		c.JSON(http.StatusConflict, errorResponse{Message: err.Error()})
	case isBadRequest(err):
		c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	default:
		s.logger.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

func isBadRequest(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrEmptyCart) ||
		errors.Is(err, domain.ErrItemQtyInvalid) ||
		errors.Is(err, domain.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrUserRequired) ||
		errors.Is(err, domain.ErrStatusUnknown) ||
		errors.Is(err, domain.ErrStatusTransitionInvalid)
}
