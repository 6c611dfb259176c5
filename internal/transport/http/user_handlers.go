package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// adminListUsers возвращает страницу учётных записей без API-токенов.
func (s *Server) adminListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultAdminPage)))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", strconv.Itoa(defaultAdminPerPage)))

	users, total, err := s.users.List(page, perPage)
	if err != nil {
		s.respondError(c, err)
		return
	}

	resp := userListResponse{
		Users: make([]userResponse, 0, len(users)),
		Total: total,
	}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}
	c.JSON(http.StatusOK, resp)
}
