package middleware

import (
	"net/http"
	"strings"

	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/database"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/models"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/pkg/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token issued by the onboarding
// service and gates access on admin approval. Pending and rejected
// accounts can log in there but cannot use the marketplace yet.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		var user models.User
		if err := database.DB.Select("id", "role", "status").First(&user, "id = ?", claims.UserID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found or inactive"})
			c.Abort()
			return
		}

		if user.Status != models.ApprovalApproved {
			c.JSON(http.StatusForbidden, gin.H{"error": "Account pending approval"})
			c.Abort()
			return
		}

		c.Set("userId", user.ID)
		c.Set("role", string(user.Role))
		c.Next()
	}
}
