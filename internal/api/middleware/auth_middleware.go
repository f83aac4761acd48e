package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MohdFaizan63/Resume-Builder/internal/auth"
	"github.com/MohdFaizan63/Resume-Builder/internal/errcode"
)

// Context keys set by the auth middlewares.
const (
	UserIDKey   = "userID"
	UserRoleKey = "userRole"
)

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": errcode.Unauthorized})
}

// AuthMiddleware 校验访问令牌并将 userID 注入上下文。
func AuthMiddleware(authService *auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := accessClaims(c, authService)
		if !ok {
			abortUnauthorized(c)
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserRoleKey, claims.Role)
		c.Next()
	}
}

// OptionalAuthMiddleware 在携带合法令牌时注入 userID，否则按匿名请求放行。
func OptionalAuthMiddleware(authService *auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := accessClaims(c, authService); ok {
			c.Set(UserIDKey, claims.UserID)
			c.Set(UserRoleKey, claims.Role)
		}
		c.Next()
	}
}

func accessClaims(c *gin.Context, authService *auth.AuthService) (*auth.TokenClaims, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, false
	}

	claims, err := authService.ValidateToken(parts[1])
	if err != nil || claims.TokenType != auth.TokenTypeAccess {
		return nil, false
	}
	return claims, true
}
