package api

import (
	"net/http"
	"strings"

	"github.com/church-content-api/internal/auth"
	"github.com/church-content-api/internal/models"
	"github.com/church-content-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Context keys for the authenticated identity
const (
	ctxUserKey   = "user"
	ctxClaimsKey = "claims"
)

// RequireAuth validates the bearer token and loads the user record, so a
// deactivated account is locked out immediately rather than at token expiry
func RequireAuth(authSvc service.AuthService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		user, claims, err := authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			writeError(c, log, err)
			c.Abort()
			return
		}

		c.Set(ctxUserKey, user)
		c.Set(ctxClaimsKey, claims)
		c.Next()
	}
}

// RequireRole gates the request on the authenticated user's role; it must
// run after RequireAuth
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || !allowed[user.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// currentUser returns the authenticated user set by RequireAuth
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// currentClaims returns the verified token claims set by RequireAuth
func currentClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
