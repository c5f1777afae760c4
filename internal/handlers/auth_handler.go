package handlers

import (
	"net/http"
	"time"

	"github.com/allforone/afo-portal/internal/jobs"
	"github.com/allforone/afo-portal/internal/middleware"
	"github.com/allforone/afo-portal/internal/models"
	"github.com/allforone/afo-portal/internal/services"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	worker *jobs.Worker
}

func NewHealthHandler(worker *jobs.Worker) *HealthHandler {
	return &HealthHandler{worker: worker}
}

// Index reports liveness and the background worker counters.
func (h *HealthHandler) Index(c *gin.Context) {
	body := gin.H{
		"status":  "ok",
		"service": "afo-portal",
		"version": "1.0.0",
	}
	if h.worker != nil {
		body["worker"] = h.worker.GetStats()
	}
	c.JSON(http.StatusOK, body)
}

type AuthHandler struct {
	authService  *services.AuthService
	cookieSecure bool
	now          func() time.Time
}

func NewAuthHandler(authService *services.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{authService: authService, cookieSecure: cookieSecure, now: time.Now}
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, value, maxAge, "/", "", h.cookieSecure, true)
}

// Login opens a session. The returned token is the portal session ID; the
// backend token never leaves the server.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.Credentials
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	maxAge := int(result.ExpiresAt.Sub(h.now()).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	h.setSessionCookie(c, result.SessionID, maxAge)

	c.JSON(http.StatusOK, result)
}

// Logout clears the session, whether or not it still exists.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.SessionID(c)); err != nil {
		respondError(c, err)
		return
	}
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie"})
}

// Me returns the cached current user.
func (h *AuthHandler) Me(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	c.JSON(http.StatusOK, gin.H{
		"user":       p.User,
		"dashboard":  services.DashboardKind(p.User),
		"expires_at": p.ExpiresAt,
	})
}

// Register submits a public adhesion request.
func (h *AuthHandler) Register(c *gin.Context) {
	var form services.RegistrationForm
	if err := bindJSON(c, &form); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req services.PasswordResetRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.authService.RequestPasswordReset(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.PasswordReset
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	msg, err := h.authService.ResetPassword(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// UpdateProfile saves the signed-in user's own profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req models.ProfileUpdate
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profil mis à jour avec succès", "user": user})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req models.PasswordChange
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	msg, err := h.authService.ChangePassword(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	if msg == "" {
		msg = "Mot de passe modifié avec succès"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
