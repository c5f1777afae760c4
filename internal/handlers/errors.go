package handlers

import (
	"errors"
	"net/http"

	"github.com/allforone/afo-portal/internal/backend"
	"github.com/allforone/afo-portal/internal/middleware"
	"github.com/allforone/afo-portal/internal/services"
	"github.com/allforone/afo-portal/pkg/logger"
	"github.com/gin-gonic/gin"
)

// respondError maps a service or backend error onto the portal's JSON error
// body. Field validation errors also carry the per-field messages.
func respondError(c *gin.Context, err error) {
	var vErr *services.ValidationError
	var apiErr *backend.APIError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": vErr.Error(), "fields": vErr.Fields})
	case errors.As(err, &apiErr):
		body := gin.H{"error": apiErr.Message}
		if len(apiErr.Fields) > 0 {
			body["fields"] = apiErr.Fields
		}
		if apiErr.Kind == backend.KindUnreachable || apiErr.Kind == backend.KindUnknown {
			logger.Warn("backend call failed", "request_id", middleware.RequestID(c), "kind", apiErr.Kind.String(), "status", apiErr.Status, "error", err)
		}
		c.JSON(apiErr.HTTPStatus(), body)
	case errors.Is(err, errInvalidBody):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAccountSuspended), errors.Is(err, services.ErrAccountBanned):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNoSession):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expirée, veuillez vous reconnecter"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Vous n'avez pas accès à cette section"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed", "request_id", middleware.RequestID(c), "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne du serveur"})
	}
}
