package handlers

import (
	"net/http"

	"github.com/allforone/afo-portal/internal/middleware"
	"github.com/allforone/afo-portal/internal/models"
	"github.com/allforone/afo-portal/internal/services"
	"github.com/gin-gonic/gin"
)

type AdhesionHandler struct {
	adhesionService *services.AdhesionService
}

func NewAdhesionHandler(adhesionService *services.AdhesionService) *AdhesionHandler {
	return &AdhesionHandler{adhesionService: adhesionService}
}

func (h *AdhesionHandler) Index(c *gin.Context) {
	var filter services.AdhesionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètres de filtre invalides"})
		return
	}

	list, err := h.adhesionService.List(c.Request.Context(), middleware.GetPrincipal(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AdhesionHandler) Approve(c *gin.Context) {
	list, err := h.adhesionService.Approve(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Reject refuses a request; the body and its reason are optional.
func (h *AdhesionHandler) Reject(c *gin.Context) {
	var req models.RejectRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	list, err := h.adhesionService.Reject(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
