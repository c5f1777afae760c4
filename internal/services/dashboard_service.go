package services

import (
	"context"

	"github.com/allforone/afo-portal/internal/backend"
	"github.com/allforone/afo-portal/internal/models"
)

// Dashboard kinds
const (
	DashboardAdmin   = "admin"
	DashboardFinance = "finance"
	DashboardMember  = "membre"
)

// AdminDashboard summarises the member base.
type AdminDashboard struct {
	Members          models.MemberCounts `json:"members"`
	PendingAdhesions int                 `json:"pendingAdhesions"`
}

// Dashboard is the role-specific landing view. Exactly one section is set.
type Dashboard struct {
	Kind    string                    `json:"kind"`
	User    models.Member             `json:"user"`
	Admin   *AdminDashboard           `json:"admin,omitempty"`
	Finance *models.FinanceSummary    `json:"finance,omitempty"`
	Member  *models.MemberDuesSummary `json:"member,omitempty"`
}

// DashboardService builds the role dashboards
type DashboardService struct {
	api backend.API
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(api backend.API) *DashboardService {
	return &DashboardService{api: api}
}

// DashboardKind picks the dashboard of a user.
func DashboardKind(u models.Member) string {
	switch {
	case u.IsAdmin():
		return DashboardAdmin
	case u.IsFinance():
		return DashboardFinance
	default:
		return DashboardMember
	}
}

// Build fetches what the signed-in user's dashboard needs.
func (s *DashboardService) Build(ctx context.Context, p *Principal) (*Dashboard, error) {
	d := &Dashboard{Kind: DashboardKind(p.User), User: p.User}

	switch d.Kind {
	case DashboardAdmin:
		members, err := s.api.ListMembers(ctx, p.Token)
		if err != nil {
			return nil, err
		}
		requests, err := s.api.ListAdhesionRequests(ctx, p.Token)
		if err != nil {
			return nil, err
		}
		pending := 0
		for _, r := range requests {
			if r.Statut == models.AdhesionPending {
				pending++
			}
		}
		d.Admin = &AdminDashboard{Members: models.CountMembers(members), PendingAdhesions: pending}

	case DashboardFinance:
		dues, err := s.api.ListCotisations(ctx, p.Token)
		if err != nil {
			return nil, err
		}
		summary := SummarizeFinance(dues)
		d.Finance = &summary

	default:
		dues, err := s.api.MemberCotisations(ctx, p.Token, p.User.ID)
		if err != nil {
			return nil, err
		}
		summary := SummarizeMember(dues)
		d.Member = &summary
	}

	return d, nil
}
