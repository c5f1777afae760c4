package services

import (
	"context"
	"strings"

	"github.com/allforone/afo-portal/internal/backend"
	"github.com/allforone/afo-portal/internal/models"
	"github.com/allforone/afo-portal/pkg/logger"
)

// DuesSnapshot is the raw data every dues view is derived from.
type DuesSnapshot struct {
	Dues    []models.Cotisation
	Members []models.Member
}

// DuesOverview is the aggregated dues view. It is recomputed on every call.
type DuesOverview struct {
	Global      models.GlobalStats   `json:"global"`
	Monthly     []models.MonthlyStat `json:"monthly"`
	Cotisations []models.Cotisation  `json:"cotisations"`
	Members     []models.Member      `json:"members"`
}

// CotisationService handles dues aggregation and payment
type CotisationService struct {
	api backend.API
}

// NewCotisationService creates a new cotisation service
func NewCotisationService(api backend.API) *CotisationService {
	return &CotisationService{api: api}
}

// Snapshot fetches all dues and the non-admin members.
func (s *CotisationService) Snapshot(ctx context.Context, p *Principal) (*DuesSnapshot, error) {
	dues, err := s.api.ListCotisations(ctx, p.Token)
	if err != nil {
		return nil, err
	}
	members, err := s.api.ListMembers(ctx, p.Token)
	if err != nil {
		return nil, err
	}
	return &DuesSnapshot{Dues: dues, Members: models.NonAdmins(members)}, nil
}

// Overview aggregates every dues record into global and monthly stats.
func (s *CotisationService) Overview(ctx context.Context, p *Principal) (*DuesOverview, error) {
	snap, err := s.Snapshot(ctx, p)
	if err != nil {
		return nil, err
	}
	return &DuesOverview{
		Global:      ComputeGlobalStats(snap.Dues),
		Monthly:     ComputeMonthlyStats(snap.Dues),
		Cotisations: snap.Dues,
		Members:     snap.Members,
	}, nil
}

// MemberCotisations returns one member's dues, most recent first, with totals.
func (s *CotisationService) MemberCotisations(ctx context.Context, p *Principal, userID string) (*models.MemberDuesSummary, error) {
	dues, err := s.api.MemberCotisations(ctx, p.Token, userID)
	if err != nil {
		return nil, err
	}
	summary := SummarizeMember(dues)
	return &summary, nil
}

// MarkPaid records a payment for one dues record. The default method is cash.
func (s *CotisationService) MarkPaid(ctx context.Context, p *Principal, id string, req models.MarkPaidRequest) (string, error) {
	methode := strings.TrimSpace(req.MethodePaiement)
	if methode == "" {
		methode = models.DefaultPaymentMethod
	}

	msg, err := s.api.MarkPaid(ctx, p.Token, id, methode)
	if err != nil {
		return "", err
	}

	logger.Info("cotisation marked paid", "cotisation_id", id, "methode", methode, "by", p.User.ID)
	if msg == "" {
		msg = "Cotisation marquée comme payée"
	}
	return msg, nil
}
