package services

import (
	"context"

	"github.com/allforone/afo-portal/internal/backend"
	"github.com/allforone/afo-portal/internal/models"
)

// AuditQuery holds the audit log filters. Search is applied locally to the
// fetched page; the others are sent to the backend.
type AuditQuery struct {
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
	Action     string `form:"action"`
	TargetType string `form:"targetType"`
	StartDate  string `form:"startDate"`
	EndDate    string `form:"endDate"`
	Search     string `form:"search"`
}

// AuditPage is one rendered page of the audit log.
type AuditPage struct {
	Entries    []models.AuditLogView `json:"entries"`
	Pagination models.Pagination     `json:"pagination"`
}

// AuditStatsView is the rendered audit statistics.
type AuditStatsView struct {
	TotalActions      int                  `json:"totalActions"`
	MemberActions     int                  `json:"memberActions"`
	CotisationActions int                  `json:"cotisationActions"`
	TotalMontant      int64                `json:"totalMontant"`
	ActionStats       []models.CountBucket `json:"actionStats"`
	TargetStats       []models.CountBucket `json:"targetStats"`
}

type AuditService struct {
	api backend.API
}

func NewAuditService(api backend.API) *AuditService {
	return &AuditService{api: api}
}

// List retrieves one page of audit logs with filters
func (s *AuditService) List(ctx context.Context, p *Principal, q AuditQuery) (*AuditPage, error) {
	page, err := s.api.ListLogs(ctx, p.Token, backend.LogQuery{
		Page:       q.Page,
		Limit:      q.Limit,
		Action:     q.Action,
		TargetType: q.TargetType,
		StartDate:  q.StartDate,
		EndDate:    q.EndDate,
	})
	if err != nil {
		return nil, err
	}

	out := &AuditPage{
		Entries:    make([]models.AuditLogView, 0, len(page.Data)),
		Pagination: page.Pagination,
	}
	for i := range page.Data {
		e := page.Data[i]
		if !e.Matches(q.Search) {
			continue
		}
		out.Entries = append(out.Entries, models.AuditLogView{
			AuditLogEntry: e,
			Label:         models.ActionLabel(e.Action),
			Tone:          models.ActionTone(e.Action),
		})
	}
	return out, nil
}

// Stats retrieves the audit statistics over an optional date range
func (s *AuditService) Stats(ctx context.Context, p *Principal, startDate, endDate string) (*AuditStatsView, error) {
	stats, err := s.api.LogStats(ctx, p.Token, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return &AuditStatsView{
		TotalActions:      stats.TotalActions(),
		MemberActions:     stats.TargetCount(models.AuditTargetUser),
		CotisationActions: stats.TargetCount(models.AuditTargetCotisation),
		TotalMontant:      stats.FinancialStats.TotalMontant,
		ActionStats:       stats.ActionStats,
		TargetStats:       stats.TargetStats,
	}, nil
}
