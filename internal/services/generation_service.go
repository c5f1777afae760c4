package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/allforone/afo-portal/internal/backend"
	"github.com/allforone/afo-portal/internal/models"
	"github.com/allforone/afo-portal/pkg/logger"
)

// Selection is the state of the selective generation form: target month,
// amount and the chosen members in selection order.
type Selection struct {
	Mois    string
	Montant int64
	ids     []string
	index   map[string]int
}

// NewSelection starts an empty selection for a month and amount.
func NewSelection(mois string, montant int64) *Selection {
	return &Selection{Mois: mois, Montant: montant, index: make(map[string]int)}
}

// DefaultSelection uses the form defaults: current month, standard amount.
func DefaultSelection(now time.Time) *Selection {
	d := models.DefaultGenerationRequest(now)
	return NewSelection(d.Mois, d.Montant)
}

// IsSelected reports whether a member is selected.
func (s *Selection) IsSelected(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Select adds a member; selecting twice is a no-op.
func (s *Selection) Select(id string) {
	if id == "" || s.IsSelected(id) {
		return
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
}

// Deselect removes a member.
func (s *Selection) Deselect(id string) {
	pos, ok := s.index[id]
	if !ok {
		return
	}
	s.ids = append(s.ids[:pos], s.ids[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.ids); i++ {
		s.index[s.ids[i]] = i
	}
}

// Toggle flips one member.
func (s *Selection) Toggle(id string) {
	if s.IsSelected(id) {
		s.Deselect(id)
		return
	}
	s.Select(id)
}

// ToggleAll selects every candidate, or clears the selection when every
// candidate is already selected.
func (s *Selection) ToggleAll(candidates []models.Member) {
	all := len(candidates) > 0
	for i := range candidates {
		if !s.IsSelected(candidates[i].ID) {
			all = false
			break
		}
	}
	if all {
		s.Clear()
		return
	}
	for i := range candidates {
		s.Select(candidates[i].ID)
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = nil
	s.index = make(map[string]int)
}

// Len returns the number of selected members.
func (s *Selection) Len() int {
	return len(s.ids)
}

// Selected returns the selected member IDs in selection order.
func (s *Selection) Selected() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// CanSubmit is true once the month is a valid YYYY-MM, the amount is positive
// and at least one member is selected.
func (s *Selection) CanSubmit() bool {
	_, ok := models.ParseMonth(s.Mois)
	return ok && s.Montant > 0 && len(s.ids) > 0
}

// Request builds the backend payload.
func (s *Selection) Request() models.GenerationRequest {
	return models.GenerationRequest{Mois: s.Mois, Montant: s.Montant, UserIDs: s.Selected()}
}

// GenerationForm backs the generation screen.
type GenerationForm struct {
	Defaults   models.GenerationRequest `json:"defaults"`
	Candidates []models.Member          `json:"candidates"`
	Total      int                      `json:"total"`
}

// GenerationSubmission is what the operator submits. SelectAll adds every
// candidate matching Search to UserIDs.
type GenerationSubmission struct {
	Mois      string   `json:"mois"`
	Montant   int64    `json:"montant"`
	UserIDs   []string `json:"userIds"`
	SelectAll bool     `json:"selectAll"`
	Search    string   `json:"search"`
}

// GenerationService handles selective dues generation
type GenerationService struct {
	api backend.API
	now func() time.Time
}

// NewGenerationService creates a new generation service
func NewGenerationService(api backend.API) *GenerationService {
	return &GenerationService{api: api, now: time.Now}
}

// Candidates lists active non-admin members matching search.
func (s *GenerationService) Candidates(ctx context.Context, p *Principal, search string) (*GenerationForm, error) {
	members, err := s.api.ListMembers(ctx, p.Token)
	if err != nil {
		return nil, err
	}

	active := make([]models.Member, 0, len(members))
	for _, m := range models.NonAdmins(members) {
		if m.IsActive() {
			active = append(active, m)
		}
	}

	out := make([]models.Member, 0, len(active))
	for i := range active {
		if active[i].Matches(search) {
			out = append(out, active[i])
		}
	}

	return &GenerationForm{
		Defaults:   models.DefaultGenerationRequest(s.now()),
		Candidates: out,
		Total:      len(active),
	}, nil
}

// Generate validates the selection locally, then issues exactly one
// generation call. Every selected member must be a current candidate: active
// and not an admin. Per-member outcomes are reported as created, existing or
// failed; none of them fails the whole request.
func (s *GenerationService) Generate(ctx context.Context, p *Principal, sub GenerationSubmission) (*models.GenerationResult, error) {
	sel := NewSelection(sub.Mois, sub.Montant)
	for _, id := range sub.UserIDs {
		sel.Select(id)
	}

	if _, ok := models.ParseMonth(sub.Mois); !ok || sub.Montant <= 0 || (sel.Len() == 0 && !sub.SelectAll) {
		return nil, submissionError(sel.Request())
	}

	form, err := s.Candidates(ctx, p, "")
	if err != nil {
		return nil, err
	}
	eligible := make(map[string]bool, len(form.Candidates))
	for i := range form.Candidates {
		eligible[form.Candidates[i].ID] = true
	}

	var rejected []string
	for _, id := range sel.Selected() {
		if !eligible[id] {
			rejected = append(rejected, id)
		}
	}
	if len(rejected) > 0 {
		logger.Warn("generation rejected ineligible members", "ids", rejected, "by", p.User.ID)
		return nil, NewValidationError("userIds",
			fmt.Sprintf("Membres non éligibles (inactifs ou administrateurs) : %s", strings.Join(rejected, ", ")))
	}

	if sub.SelectAll {
		for i := range form.Candidates {
			if form.Candidates[i].Matches(sub.Search) {
				sel.Select(form.Candidates[i].ID)
			}
		}
	}

	req := sel.Request()
	if !sel.CanSubmit() {
		return nil, submissionError(req)
	}

	resp, err := s.api.GenerateSelective(ctx, p.Token, req)
	if err != nil {
		return nil, err
	}

	result := BuildGenerationResult(req, resp)
	logger.Info("cotisations generated",
		"mois", req.Mois,
		"montant", req.Montant,
		"demandes", result.Demandes,
		"creees", result.Creees,
		"existantes", len(result.Existantes),
		"erreurs", len(result.Errors),
		"by", p.User.ID,
	)
	return result, nil
}

// submissionError explains why a generation request cannot be sent.
func submissionError(req models.GenerationRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	return NewValidationError("userIds", "Veuillez sélectionner au moins un membre")
}

// BuildGenerationResult shapes the backend answer. Members the backend did
// not account for in any category are counted in NonTraites.
func BuildGenerationResult(req models.GenerationRequest, resp *models.GenerationResponse) *models.GenerationResult {
	existing := resp.Existantes
	if existing == nil {
		existing = []models.ExistingDues{}
	}
	failures := resp.Errors
	if failures == nil {
		failures = []models.GenerationFailure{}
	}

	requested := len(req.UserIDs)
	accounted := resp.Stats.Creees +
		max(resp.Stats.Existantes, len(existing)) +
		max(resp.Stats.Erreurs, len(failures))

	if accounted != requested {
		logger.Warn("generation result does not account for every member",
			"requested", requested, "accounted", accounted, "mois", req.Mois)
	}

	msg := resp.Message
	if msg == "" {
		msg = "Génération terminée"
	}

	total := resp.Stats.Total
	if total == 0 {
		total = requested
	}

	return &models.GenerationResult{
		Mois:       req.Mois,
		Montant:    req.Montant,
		Demandes:   requested,
		Message:    msg,
		Creees:     resp.Stats.Creees,
		Existantes: existing,
		Errors:     failures,
		Total:      total,
		NonTraites: max(requested-accounted, 0),
	}
}
