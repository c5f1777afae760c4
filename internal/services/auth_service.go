package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/allforone/afo-portal/internal/backend"
	"github.com/allforone/afo-portal/internal/config"
	"github.com/allforone/afo-portal/internal/models"
	"github.com/allforone/afo-portal/internal/repository"
	"github.com/allforone/afo-portal/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Principal is the signed-in user a request runs as. It is loaded once per
// request from the session store and passed explicitly to services.
type Principal struct {
	SessionID string
	Token     string
	User      models.Member
	ExpiresAt time.Time
}

// AuthService handles the session lifecycle and account operations
type AuthService struct {
	api      backend.API
	sessions repository.SessionRepository
	cfg      *config.Config
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(api backend.API, sessions repository.SessionRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		api:      api,
		sessions: sessions,
		cfg:      cfg,
		now:      time.Now,
	}
}

// LoginResult represents the result of a login attempt
type LoginResult struct {
	SessionID string        `json:"session_id"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      models.Member `json:"user"`
}

// Login authenticates against the backend and opens a session. Suspended and
// banned accounts never get a session.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (*LoginResult, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := Validate(creds); err != nil {
		return nil, err
	}

	res, err := s.api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	switch res.User.Statu {
	case models.StatusSuspended:
		return nil, ErrAccountSuspended
	case models.StatusBanned:
		return nil, ErrAccountBanned
	}

	session := &models.Session{
		ID:        uuid.NewString(),
		Token:     res.Token,
		ExpiresAt: s.expiry(res.Token),
	}
	if err := session.SetUser(res.User); err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	logger.Info("session opened", "user_id", res.User.ID, "role", res.User.Role, "expires_at", session.ExpiresAt)

	return &LoginResult{
		SessionID: session.ID,
		Token:     session.ID,
		ExpiresAt: session.ExpiresAt,
		User:      res.User,
	}, nil
}

// expiry reads the exp claim of the backend token, falling back to the
// configured TTL. The signature is the backend's business. The result is in
// UTC, the zone the purge compares against.
func (s *AuthService) expiry(token string) time.Time {
	fallback := s.now().Add(time.Duration(s.sessionTTLHours()) * time.Hour).UTC()

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fallback
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fallback
	}
	return exp.Time.UTC()
}

func (s *AuthService) sessionTTLHours() int {
	if s.cfg == nil || s.cfg.SessionTTLHours <= 0 {
		return 24
	}
	return s.cfg.SessionTTLHours
}

// Resolve loads the session and its cached user. Expired sessions are removed.
func (s *AuthService) Resolve(ctx context.Context, sessionID string) (*Principal, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	if session.IsExpired(s.now()) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			logger.Warn("failed to delete expired session", "session_id", session.ID, "error", err)
		}
		return nil, ErrNoSession
	}

	user, err := session.User()
	if err != nil {
		return nil, err
	}

	return &Principal{
		SessionID: session.ID,
		Token:     session.Token,
		User:      user,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout clears the session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// RevokeUser ends every session of a member, so a suspended, banned or
// deleted account is signed out everywhere.
func (s *AuthService) RevokeUser(ctx context.Context, userID string) error {
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	logger.Info("sessions revoked", "user_id", userID)
	return nil
}

// PurgeExpired deletes every expired session.
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info("expired sessions purged", "count", n)
	}
	return n, nil
}

// RegistrationForm is the public adhesion form.
type RegistrationForm struct {
	models.NewMember
	AcceptTerms bool `json:"acceptTerms" validate:"eq=true"`
}

// RegistrationResult is the outcome of a registration.
type RegistrationResult struct {
	Message          string `json:"message"`
	PasswordStrength int    `json:"password_strength"`
}

// Register submits an adhesion request. New accounts are always plain active
// members; the role and status sent by the caller are ignored.
func (s *AuthService) Register(ctx context.Context, form RegistrationForm) (*RegistrationResult, error) {
	if err := Validate(form); err != nil {
		return nil, err
	}

	m := form.NewMember
	m.Role = models.RoleMember
	m.Statu = models.StatusActive
	if m.Cotisation == "" {
		m.Cotisation = models.PlanMonthly
	}

	msg, err := s.api.Register(ctx, m)
	if err != nil {
		return nil, err
	}
	return &RegistrationResult{Message: msg, PasswordStrength: PasswordStrength(form.Mdp)}, nil
}

// PasswordResetRequest is the body of a forgotten-password request.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RequestPasswordReset asks the backend to send a reset code. The code echoed
// by development backends is only passed through outside production.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req PasswordResetRequest) (*backend.ResetRequestResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := Validate(req); err != nil {
		return nil, err
	}

	res, err := s.api.RequestPasswordReset(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if s.cfg != nil && s.cfg.IsProduction() {
		res.ResetCode = ""
	}
	return res, nil
}

// ResetPassword sets a new password with the emailed code.
func (s *AuthService) ResetPassword(ctx context.Context, reset models.PasswordReset) (string, error) {
	reset.ResetCode = strings.TrimSpace(reset.ResetCode)
	if err := Validate(reset); err != nil {
		return "", err
	}
	return s.api.ResetPassword(ctx, reset)
}

// ChangePassword changes the signed-in user's password.
func (s *AuthService) ChangePassword(ctx context.Context, p *Principal, change models.PasswordChange) (string, error) {
	if p == nil {
		return "", ErrNoSession
	}
	if err := Validate(change); err != nil {
		return "", err
	}
	return s.api.ChangePassword(ctx, p.Token, p.User.ID, change)
}

// UpdateProfile saves the signed-in user's profile. Once the backend accepts
// it, the cached user is overwritten with exactly the submitted fields.
func (s *AuthService) UpdateProfile(ctx context.Context, p *Principal, update models.ProfileUpdate) (*models.Member, error) {
	if p == nil {
		return nil, ErrNoSession
	}
	if err := Validate(update); err != nil {
		return nil, err
	}

	if _, err := s.api.UpdateMember(ctx, p.Token, p.User.ID, update); err != nil {
		return nil, err
	}

	session, err := s.sessions.FindByID(ctx, p.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	cached, err := session.User()
	if err != nil {
		return nil, err
	}
	updated := update.Apply(cached)
	if err := session.SetUser(updated); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	p.User = updated
	return &updated, nil
}
