package backend

import (
	"context"

	"github.com/allforone/afo-portal/internal/models"
)

// API lists every backend endpoint the portal consumes.
type API interface {
	Login(ctx context.Context, creds models.Credentials) (*LoginResult, error)
	Register(ctx context.Context, m models.NewMember) (string, error)
	RequestPasswordReset(ctx context.Context, email string) (*ResetRequestResult, error)
	ResetPassword(ctx context.Context, reset models.PasswordReset) (string, error)

	ListMembers(ctx context.Context, token string) ([]models.Member, error)
	CreateMember(ctx context.Context, token string, m models.NewMember) (string, error)
	UpdateMember(ctx context.Context, token, id string, fields any) (string, error)
	DeleteMember(ctx context.Context, token, id string) (string, error)
	ChangePassword(ctx context.Context, token, id string, change models.PasswordChange) (string, error)

	ListCotisations(ctx context.Context, token string) ([]models.Cotisation, error)
	MemberCotisations(ctx context.Context, token, userID string) ([]models.Cotisation, error)
	MarkPaid(ctx context.Context, token, id, methode string) (string, error)
	GenerateSelective(ctx context.Context, token string, req models.GenerationRequest) (*models.GenerationResponse, error)

	ListAdhesionRequests(ctx context.Context, token string) ([]models.AdhesionRequest, error)
	ApproveAdhesion(ctx context.Context, token, id string) (string, error)
	RejectAdhesion(ctx context.Context, token, id, raison string) (string, error)

	ListLogs(ctx context.Context, token string, q LogQuery) (*LogPage, error)
	LogStats(ctx context.Context, token, startDate, endDate string) (*models.AuditLogStats, error)
}

var _ API = (*Client)(nil)
