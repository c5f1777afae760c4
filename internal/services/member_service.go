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

// StatusAll disables the status filter.
const StatusAll = "tous"

// MemberFilter holds the client-side filters of the member directory.
type MemberFilter struct {
	Search string `form:"search"`
	Statut string `form:"statut"`
}

// MemberDirectory is the rendered member directory. Stale is set when a
// mutation went through but the directory could not be reloaded.
type MemberDirectory struct {
	Members []models.Member     `json:"members"`
	Counts  models.MemberCounts `json:"counts"`
	Message string              `json:"message,omitempty"`
	Stale   bool                `json:"stale,omitempty"`
}

// MemberService handles the member directory
type MemberService struct {
	api backend.API
}

// NewMemberService creates a new member service
func NewMemberService(api backend.API) *MemberService {
	return &MemberService{api: api}
}

// List fetches the members and applies the search and status filters. Counts
// cover the whole directory, not the filtered view.
func (s *MemberService) List(ctx context.Context, p *Principal, filter MemberFilter) (*MemberDirectory, error) {
	members, err := s.api.ListMembers(ctx, p.Token)
	if err != nil {
		return nil, err
	}

	statut := strings.TrimSpace(filter.Statut)
	out := make([]models.Member, 0, len(members))
	for i := range members {
		m := &members[i]
		if statut != "" && statut != StatusAll && m.Statu != statut {
			continue
		}
		if !m.Matches(filter.Search) {
			continue
		}
		out = append(out, *m)
	}

	return &MemberDirectory{Members: out, Counts: models.CountMembers(members)}, nil
}

// refresh reloads the directory after a successful mutation. A reload
// failure does not undo the mutation, so it only marks the result stale.
func (s *MemberService) refresh(ctx context.Context, p *Principal, msg string) *MemberDirectory {
	dir, err := s.List(ctx, p, MemberFilter{})
	if err != nil {
		logger.Warn("failed to reload member directory", "by", p.User.ID, "error", err)
		dir = &MemberDirectory{Members: []models.Member{}, Stale: true}
	}
	dir.Message = msg
	return dir
}

// find fetches the directory and returns one member.
func (s *MemberService) find(ctx context.Context, p *Principal, id string) (*models.Member, error) {
	members, err := s.api.ListMembers(ctx, p.Token)
	if err != nil {
		return nil, err
	}
	for i := range members {
		if members[i].ID == id {
			return &members[i], nil
		}
	}
	return nil, ErrNotFound
}

// ChangeStatus moves a member to a new status after checking the transition
// locally, then re-fetches the directory. Once the backend has applied the
// change the call succeeds, even if the re-fetch fails.
func (s *MemberService) ChangeStatus(ctx context.Context, p *Principal, id string, change models.StatusChange) (*MemberDirectory, error) {
	if err := Validate(change); err != nil {
		return nil, err
	}

	member, err := s.find(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if err := statemachine.NewMemberFSM(member).Transition(ctx, change.Statu); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	if _, err := s.api.UpdateMember(ctx, p.Token, id, change); err != nil {
		return nil, err
	}

	logger.Info("member status changed", "member_id", id, "status", change.Statu, "by", p.User.ID)

	return s.refresh(ctx, p, fmt.Sprintf("Statut changé en \"%s\" avec succès", change.Statu)), nil
}

// Create adds a member after the local password checks.
func (s *MemberService) Create(ctx context.Context, p *Principal, m models.NewMember) (*MemberDirectory, error) {
	if err := Validate(m); err != nil {
		return nil, err
	}
	if m.Role == "" {
		m.Role = models.RoleMember
	}
	if m.Statu == "" {
		m.Statu = models.StatusActive
	}
	if m.Cotisation == "" {
		m.Cotisation = models.PlanMonthly
	}

	msg, err := s.api.CreateMember(ctx, p.Token, m)
	if err != nil {
		return nil, err
	}

	return s.refresh(ctx, p, msg), nil
}

// Delete removes a member, then re-fetches the directory.
func (s *MemberService) Delete(ctx context.Context, p *Principal, id string) (*MemberDirectory, error) {
	if id == p.User.ID {
		return nil, NewValidationError("id", "Vous ne pouvez pas supprimer votre propre compte")
	}

	msg, err := s.api.DeleteMember(ctx, p.Token, id)
	if err != nil {
		return nil, err
	}

	logger.Info("member deleted", "member_id", id, "by", p.User.ID)

	return s.refresh(ctx, p, msg), nil
}
