package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/allforone/afo-portal/internal/backend"
	"github.com/allforone/afo-portal/internal/models"
	"github.com/allforone/afo-portal/internal/statemachine"
	"github.com/allforone/afo-portal/pkg/logger"
)

// AdhesionFilter selects requests by status; empty means pending only.
type AdhesionFilter struct {
	Statut string `form:"statut"`
	Search string `form:"search"`
}

// AdhesionList is the rendered adhesion request list. Stale is set when a
// decision went through but the list could not be reloaded.
type AdhesionList struct {
	Requests []models.AdhesionRequest `json:"requests"`
	Counts   models.AdhesionCounts    `json:"counts"`
	Message  string                   `json:"message,omitempty"`
	Stale    bool                     `json:"stale,omitempty"`
}

// AdhesionService handles membership applications
type AdhesionService struct {
	api backend.API
}

// NewAdhesionService creates a new adhesion service
func NewAdhesionService(api backend.API) *AdhesionService {
	return &AdhesionService{api: api}
}

// List fetches the requests, counts them per status and filters them.
func (s *AdhesionService) List(ctx context.Context, p *Principal, filter AdhesionFilter) (*AdhesionList, error) {
	requests, err := s.api.ListAdhesionRequests(ctx, p.Token)
	if err != nil {
		return nil, err
	}

	statut := strings.TrimSpace(filter.Statut)
	if statut == "" {
		statut = models.AdhesionPending
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	list := &AdhesionList{Requests: make([]models.AdhesionRequest, 0, len(requests))}
	for i := range requests {
		r := &requests[i]
		switch r.Statut {
		case models.AdhesionPending:
			list.Counts.EnAttente++
		case models.AdhesionApproved:
			list.Counts.Approuves++
		case models.AdhesionRejected:
			list.Counts.Refuses++
		}

		if statut != StatusAll && r.Statut != statut {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.FullName()), search) &&
			!strings.Contains(strings.ToLower(r.Email), search) {
			continue
		}
		list.Requests = append(list.Requests, *r)
	}
	return list, nil
}

func (s *AdhesionService) find(ctx context.Context, p *Principal, id string) (*models.AdhesionRequest, error) {
	requests, err := s.api.ListAdhesionRequests(ctx, p.Token)
	if err != nil {
		return nil, err
	}
	for i := range requests {
		if requests[i].ID == id {
			return &requests[i], nil
		}
	}
	return nil, ErrNotFound
}

// Approve accepts a pending request.
func (s *AdhesionService) Approve(ctx context.Context, p *Principal, id string) (*AdhesionList, error) {
	req, err := s.find(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := statemachine.NewAdhesionFSM(req).Approve(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	msg, err := s.api.ApproveAdhesion(ctx, p.Token, id)
	if err != nil {
		return nil, err
	}
	if msg == "" {
		msg = "Demande approuvée ! Le membre peut maintenant se connecter."
	}

	logger.Info("adhesion approved", "adhesion_id", id, "by", p.User.ID)
	return s.refresh(ctx, p, msg), nil
}

// Reject refuses a pending request. The reason is optional.
func (s *AdhesionService) Reject(ctx context.Context, p *Principal, id string, body models.RejectRequest) (*AdhesionList, error) {
	req, err := s.find(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := statemachine.NewAdhesionFSM(req).Reject(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	msg, err := s.api.RejectAdhesion(ctx, p.Token, id, strings.TrimSpace(body.RaisonRefus))
	if err != nil {
		return nil, err
	}
	if msg == "" {
		msg = "Demande refusée"
	}

	logger.Info("adhesion rejected", "adhesion_id", id, "by", p.User.ID)
	return s.refresh(ctx, p, msg), nil
}

func (s *AdhesionService) refresh(ctx context.Context, p *Principal, msg string) *AdhesionList {
	list, err := s.List(ctx, p, AdhesionFilter{})
	if err != nil {
		logger.Warn("failed to reload adhesion requests", "by", p.User.ID, "error", err)
		list = &AdhesionList{Requests: []models.AdhesionRequest{}, Stale: true}
	}
	list.Message = msg
	return list
}
