package handlers

import (
	"net/http"

	"github.com/allforone/afo-portal/internal/middleware"
	"github.com/allforone/afo-portal/internal/models"
	"github.com/allforone/afo-portal/internal/services"
	"github.com/gin-gonic/gin"
)

type CotisationHandler struct {
	cotisationService *services.CotisationService
	generationService *services.GenerationService
}

func NewCotisationHandler(cotisationService *services.CotisationService, generationService *services.GenerationService) *CotisationHandler {
	return &CotisationHandler{cotisationService: cotisationService, generationService: generationService}
}

// Index returns the aggregated dues view.
func (h *CotisationHandler) Index(c *gin.Context) {
	overview, err := h.cotisationService.Overview(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// Mine returns the signed-in member's own dues.
func (h *CotisationHandler) Mine(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	summary, err := h.cotisationService.MemberCotisations(c.Request.Context(), p, p.User.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ByMember returns one member's dues. Plain members may only read their own.
func (h *CotisationHandler) ByMember(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	id := c.Param("id")
	if !p.User.IsAdmin() && !p.User.IsFinance() && id != p.User.ID {
		respondError(c, services.ErrForbidden)
		return
	}

	summary, err := h.cotisationService.MemberCotisations(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *CotisationHandler) MarkPaid(c *gin.Context) {
	var req models.MarkPaidRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	msg, err := h.cotisationService.MarkPaid(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// Candidates lists the members dues can be generated for, with the form
// defaults.
func (h *CotisationHandler) Candidates(c *gin.Context) {
	form, err := h.generationService.Candidates(c.Request.Context(), middleware.GetPrincipal(c), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// Generate creates the dues of one month for the selected members.
func (h *CotisationHandler) Generate(c *gin.Context) {
	var req services.GenerationSubmission
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.generationService.Generate(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
