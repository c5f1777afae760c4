package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/allforone/afo-portal/internal/models"
)

// LoginResult is a successful login: the bearer token and the user document.
type LoginResult struct {
	Token string        `json:"token"`
	User  models.Member `json:"data"`
}

// ResetRequestResult is the answer to a password reset request. ResetCode is
// only filled by backends running in development mode.
type ResetRequestResult struct {
	Message   string `json:"message"`
	ResetCode string `json:"resetCode,omitempty"`
}

type membersEnvelope struct {
	Data []models.Member `json:"data"`
}

// Login calls POST /users/login.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*LoginResult, error) {
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/users/login", "", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register calls POST /users/register.
func (c *Client) Register(ctx context.Context, m models.NewMember) (string, error) {
	m.ConfirmMdp = ""
	return c.doMessage(ctx, http.MethodPost, "/users/register", "", m)
}

// RequestPasswordReset calls POST /users/request-password-reset.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (*ResetRequestResult, error) {
	var out ResetRequestResult
	body := map[string]string{"email": email}
	if err := c.do(ctx, http.MethodPost, "/users/request-password-reset", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword calls POST /users/reset-password.
func (c *Client) ResetPassword(ctx context.Context, reset models.PasswordReset) (string, error) {
	reset.ConfirmMdp = ""
	return c.doMessage(ctx, http.MethodPost, "/users/reset-password", "", reset)
}

// ListMembers calls GET /users/all.
func (c *Client) ListMembers(ctx context.Context, token string) ([]models.Member, error) {
	var out membersEnvelope
	if err := c.do(ctx, http.MethodGet, "/users/all", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CreateMember calls POST /users/ajouter.
func (c *Client) CreateMember(ctx context.Context, token string, m models.NewMember) (string, error) {
	m.ConfirmMdp = ""
	return c.doMessage(ctx, http.MethodPost, "/users/ajouter", token, m)
}

// UpdateMember calls PUT /users/:id with the given partial document.
func (c *Client) UpdateMember(ctx context.Context, token, id string, fields any) (string, error) {
	return c.doMessage(ctx, http.MethodPut, "/users/"+url.PathEscape(id), token, fields)
}

// DeleteMember calls DELETE /users/:id.
func (c *Client) DeleteMember(ctx context.Context, token, id string) (string, error) {
	return c.doMessage(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), token, nil)
}

// ChangePassword calls PUT /users/:id/change-password.
func (c *Client) ChangePassword(ctx context.Context, token, id string, change models.PasswordChange) (string, error) {
	change.ConfirmMdp = ""
	return c.doMessage(ctx, http.MethodPut, "/users/"+url.PathEscape(id)+"/change-password", token, change)
}
