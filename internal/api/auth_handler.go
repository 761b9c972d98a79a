package api

import (
	"net/http"

	"github.com/church-content-api/internal/models"
	"github.com/church-content-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthHandler handles login and token verification endpoints
type AuthHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(services *service.Services, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		services: services,
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	token, user, err := h.services.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{Token: token, User: user})
}

// Verify handles GET /auth/verify; RequireAuth has already validated the
// token and loaded the user
func (h *AuthHandler) Verify(c *gin.Context) {
	user := currentUser(c)
	claims := currentClaims(c)

	c.JSON(http.StatusOK, gin.H{
		"user": user,
		"claims": gin.H{
			"username":   claims.Username,
			"role":       claims.Role,
			"expires_at": claims.ExpiresAt,
		},
	})
}
