package models

import (
	"strings"
	"time"
)

// Audit action kinds recorded by the backend.
const (
	ActionMemberAdded       = "MEMBRE_AJOUTE"
	ActionMemberDeleted     = "MEMBRE_SUPPRIME"
	ActionMemberUpdated     = "MEMBRE_MODIFIE"
	ActionMemberSuspended   = "MEMBRE_SUSPENDU"
	ActionMemberReactivated = "MEMBRE_REACTIVE"
	ActionMemberBanned      = "MEMBRE_BANNI"
	ActionDuesGenerated     = "COTISATION_GENEREE"
	ActionDuesPaid          = "COTISATION_MARQUEE_PAYEE"
	ActionDuesUpdated       = "COTISATION_MODIFIEE"
	ActionDuesBulkGenerated = "COTISATIONS_GENEREES_MASSE"
	ActionAllDuesDeleted    = "TOUTES_COTISATIONS_SUPPRIMEES"
)

// Audit target types
const (
	AuditTargetUser       = "USER"
	AuditTargetCotisation = "COTISATION"
)

var actionLabels = map[string]string{
	ActionMemberAdded:       "Membre ajouté",
	ActionMemberDeleted:     "Membre supprimé",
	ActionMemberUpdated:     "Membre modifié",
	ActionMemberSuspended:   "Membre suspendu",
	ActionMemberReactivated: "Membre réactivé",
	ActionMemberBanned:      "Membre banni",
	ActionDuesGenerated:     "Cotisation générée",
	ActionDuesPaid:          "Cotisation payée",
	ActionDuesUpdated:       "Cotisation modifiée",
	ActionDuesBulkGenerated: "Cotisations en masse",
	ActionAllDuesDeleted:    "Toutes cotisations supprimées",
}

// ActionLabel returns the French label of an action, or the raw action when
// it is not a known kind.
func ActionLabel(action string) string {
	if label, ok := actionLabels[action]; ok {
		return label
	}
	return action
}

// ActionTone classifies an action for display: danger, success, warning,
// accent or info.
func ActionTone(action string) string {
	switch {
	case strings.Contains(action, "SUPPRIME"), strings.Contains(action, "BANNI"):
		return "danger"
	case strings.Contains(action, "AJOUTE"), strings.Contains(action, "REACTIVE"), strings.Contains(action, "PAYEE"):
		return "success"
	case strings.Contains(action, "SUSPENDU"):
		return "warning"
	case strings.Contains(action, "GENEREE"):
		return "accent"
	default:
		return "info"
	}
}

// AuditLogEntry is an immutable record of an action taken in the backend.
type AuditLogEntry struct {
	ID          string    `json:"_id"`
	Action      string    `json:"action"`
	UserID      string    `json:"userId,omitempty"`
	UserName    string    `json:"userName"`
	UserRole    string    `json:"userRole,omitempty"`
	TargetType  string    `json:"targetType,omitempty"`
	TargetID    string    `json:"targetId,omitempty"`
	TargetName  string    `json:"targetName,omitempty"`
	Description string    `json:"description"`
	Montant     *int64    `json:"montant,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Matches reports whether search is a case-insensitive substring of the
// actor, the description or the target name.
func (e *AuditLogEntry) Matches(search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.UserName), search) ||
		strings.Contains(strings.ToLower(e.Description), search) ||
		strings.Contains(strings.ToLower(e.TargetName), search)
}

// AuditLogView decorates an entry for display.
type AuditLogView struct {
	AuditLogEntry
	Label string `json:"label"`
	Tone  string `json:"tone"`
}

// Pagination is the backend's paging envelope.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// CountBucket is one row of a backend $group aggregation.
type CountBucket struct {
	Key   string `json:"_id"`
	Count int    `json:"count"`
}

// AuditLogStats is the payload of GET /logs/stats.
type AuditLogStats struct {
	ActionStats    []CountBucket `json:"actionStats"`
	TargetStats    []CountBucket `json:"targetStats"`
	FinancialStats struct {
		TotalMontant int64 `json:"totalMontant"`
	} `json:"financialStats"`
}

// TotalActions sums every action bucket.
func (s *AuditLogStats) TotalActions() int {
	total := 0
	for _, b := range s.ActionStats {
		total += b.Count
	}
	return total
}

// TargetCount returns the count for one target type, 0 when absent.
func (s *AuditLogStats) TargetCount(target string) int {
	for _, b := range s.TargetStats {
		if b.Key == target {
			return b.Count
		}
	}
	return 0
}
