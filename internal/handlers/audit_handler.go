package handlers

import (
	"net/http"

	"github.com/allforone/afo-portal/internal/middleware"
	"github.com/allforone/afo-portal/internal/services"
	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// Index returns one page of the audit log.
func (h *AuditHandler) Index(c *gin.Context) {
	var q services.AuditQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètres de filtre invalides"})
		return
	}

	page, err := h.auditService.List(c.Request.Context(), middleware.GetPrincipal(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *AuditHandler) Stats(c *gin.Context) {
	stats, err := h.auditService.Stats(c.Request.Context(), middleware.GetPrincipal(c), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
