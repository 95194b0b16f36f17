package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/music-timeline-game/pkg/jwt"
)

// AuthMiddleware validates the guest identity token and puts the caller's
// user id and display name in the request context. The token is read from
// the auth cookie, with a query-param fallback for WebSocket clients that
// cannot set headers.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, _ := c.Cookie("auth_token")
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No authorization token"})
			return
		}

		claims, err := jwt.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_name", claims.Name)
		c.Next()
	}
}
