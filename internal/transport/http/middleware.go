package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const currentUserKey = "currentUser"

// requestLogger пишет одну структурированную запись на запрос.
func requestLogger(logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("http request")
	}
}

// authenticate резолвит Bearer-токен в пользователя через UserRepository.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: "authorization token is required"})
			return
		}

		user, err := s.users.GetByToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: "invalid authorization token"})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// requireAdmin пускает дальше только пользователей с ролью admin.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{Message: "admin access required"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) domain.User {
	value, ok := c.Get(currentUserKey)
	if !ok {
		return domain.User{}
	}
	user, ok := value.(domain.User)
	if !ok {
		return domain.User{}
	}
	return user
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
