package handlers

import (
	"net/http"

	"github.com/allforone/afo-portal/internal/middleware"
	"github.com/allforone/afo-portal/internal/models"
	"github.com/allforone/afo-portal/internal/services"
	"github.com/allforone/afo-portal/pkg/logger"
	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	memberService *services.MemberService
	authService   *services.AuthService
}

func NewMemberHandler(memberService *services.MemberService, authService *services.AuthService) *MemberHandler {
	return &MemberHandler{memberService: memberService, authService: authService}
}

// revoke signs a member out of the portal. A failure leaves the sessions to
// expire on their own.
func (h *MemberHandler) revoke(c *gin.Context, userID string) {
	if h.authService == nil {
		return
	}
	if err := h.authService.RevokeUser(c.Request.Context(), userID); err != nil {
		logger.Warn("failed to revoke sessions", "request_id", middleware.RequestID(c), "user_id", userID, "error", err)
	}
}

// Index lists the member directory with the search and status filters.
func (h *MemberHandler) Index(c *gin.Context) {
	var filter services.MemberFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètres de filtre invalides"})
		return
	}

	dir, err := h.memberService.List(c.Request.Context(), middleware.GetPrincipal(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dir)
}

func (h *MemberHandler) Create(c *gin.Context) {
	var req models.NewMember
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	dir, err := h.memberService.Create(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dir)
}

// ChangeStatus suspends, reactivates or bans a member.
func (h *MemberHandler) ChangeStatus(c *gin.Context) {
	var req models.StatusChange
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	id := c.Param("id")
	dir, err := h.memberService.ChangeStatus(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Statu != models.StatusActive {
		h.revoke(c, id)
	}
	c.JSON(http.StatusOK, dir)
}

func (h *MemberHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	dir, err := h.memberService.Delete(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.revoke(c, id)
	c.JSON(http.StatusOK, dir)
}
