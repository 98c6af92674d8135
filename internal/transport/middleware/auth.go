package middleware

import (
	"net/http"

	"github.com/gericht/reservation-service/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	// AuthHeader несет JWT без схемы Bearer.
	AuthHeader = "x-auth-token"

	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextUserName = "userName"
)

// TokenParser проверяет токен и возвращает claims.
type TokenParser interface {
	Parse(token string) (*service.TokenClaims, error)
}

// Auth требует валидный JWT в заголовке x-auth-token.
// Отсутствующий токен — 401, невалидный — 400.
func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(AuthHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Access denied. No token provided.",
			})
			return
		}

		claims, err := parser.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"message": "Invalid token",
			})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUserName, claims.Name)
		c.Next()
	}
}

// Admin пропускает только пользователей с ролью admin. Ставится после Auth.
func Admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserRole) != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Access denied. Admin privileges required.",
			})
			return
		}

		c.Next()
	}
}
