package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/allforone/afo-portal/internal/models"
	"github.com/allforone/afo-portal/internal/services"
	"github.com/allforone/afo-portal/pkg/logger"
	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie carrying the portal session ID.
const SessionCookie = "afo_session"

const principalKey = "principal"

// SessionResolver loads the principal of a session ID.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (*services.Principal, error)
}

// SessionID extracts the session ID from the Authorization header or, for
// browser requests and download links, the session cookie.
func SessionID(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// Session returns a middleware that loads the signed-in user once per request
// and stores it in the gin context.
func Session(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := resolver.Resolve(c.Request.Context(), SessionID(c))
		if err != nil {
			if errors.Is(err, services.ErrNoSession) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Session expirée, veuillez vous reconnecter",
				})
				return
			}
			logger.Error("failed to load session", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Erreur interne du serveur",
			})
			return
		}

		c.Set(principalKey, p)
		c.Next()
	}
}

// GetPrincipal returns the signed-in user of the request, nil outside the
// Session middleware.
func GetPrincipal(c *gin.Context) *services.Principal {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil
	}
	p, _ := v.(*services.Principal)
	return p
}

// SetPrincipal stores the signed-in user of the request.
func SetPrincipal(c *gin.Context, p *services.Principal) {
	c.Set(principalKey, p)
}

// RequireRole returns a middleware that requires one of the given roles.
// Admins are always allowed.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Session expirée, veuillez vous reconnecter",
			})
			return
		}
		if p.User.IsAdmin() {
			c.Next()
			return
		}
		for _, role := range allowedRoles {
			if p.User.HasRole(role) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Vous n'avez pas accès à cette section",
		})
	}
}

// RequireAdmin returns a middleware that requires the admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}
