package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/music-timeline-game/pkg/jwt"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/guest", h.guest)
	}
}

type GuestRequest struct {
	Name string `json:"name" binding:"required,max=32"`
}

// guest issues a fresh guest identity. There are no accounts; a player is
// whoever holds the token.
func (h *Handler) guest(c *gin.Context) {
	var req GuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := uuid.New().String()
	token, err := jwt.GenerateToken(userID, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.SetCookie("auth_token", token, 24*3600, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"name":    req.Name,
		"token":   token,
	})
}
