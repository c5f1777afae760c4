package handlers

import (
	"net/http"

	"github.com/allforone/afo-portal/internal/middleware"
	"github.com/allforone/afo-portal/internal/services"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Show returns the dashboard of the signed-in user's role.
func (h *DashboardHandler) Show(c *gin.Context) {
	d, err := h.dashboardService.Build(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
