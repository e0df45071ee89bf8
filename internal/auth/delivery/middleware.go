package delivery

import (
	"net/http"
	"strings"

	"mimir-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the calling user and stores their ID under
// "userID". Resolution order: Bearer token, then the X-Dev-User header,
// then the configured default dev identity.
func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
				c.Abort()
				return
			}
			user, err := authUsecase.ValidateToken(parts[1])
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
				c.Abort()
				return
			}
			c.Set("userID", user.ID)
			c.Next()
			return
		}

		devEmail := c.GetHeader("X-Dev-User")
		if devEmail == "" {
			devEmail = authUsecase.DefaultDevEmail()
		}
		if devEmail == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}
		user, err := authUsecase.ResolveDevUser(devEmail)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "failed to resolve dev user"})
			c.Abort()
			return
		}
		c.Set("userID", user.ID)
		c.Next()
	}
}
