package models

import (
	"strings"
	"time"
)

// Member is the backend's user record as seen by the portal.
type Member struct {
	ID         string     `json:"_id"`
	Nom        string     `json:"nom"`
	Prenom     string     `json:"prenom"`
	Email      string     `json:"email"`
	Num        string     `json:"num,omitempty"`
	Sexe       string     `json:"sexe,omitempty"`
	Role       string     `json:"role"`
	Statu      string     `json:"statu"`
	Cotisation string     `json:"cotisation,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

// Role constants. The backend spells the admin role "Admin" and the others in
// lower case; comparisons go through HasRole.
const (
	RoleAdmin   = "admin"
	RoleFinance = "finance"
	RoleMember  = "membre"
)

// Member status constants
const (
	StatusActive    = "actif"
	StatusSuspended = "suspendu"
	StatusBanned    = "bani"
)

// Dues plan constants
const (
	PlanMonthly   = "mensuel"
	PlanQuarterly = "trimestriel"
)

// FullName returns "Prenom Nom".
func (m *Member) FullName() string {
	return strings.TrimSpace(m.Prenom + " " + m.Nom)
}

// HasRole compares the member's role case-insensitively.
func (m *Member) HasRole(role string) bool {
	return strings.EqualFold(m.Role, role)
}

// IsAdmin returns true if member has the admin role
func (m *Member) IsAdmin() bool {
	return m.HasRole(RoleAdmin)
}

// IsFinance returns true if member has the finance role
func (m *Member) IsFinance() bool {
	return m.HasRole(RoleFinance)
}

// IsActive returns true if the member is in good standing
func (m *Member) IsActive() bool {
	return m.Statu == StatusActive
}

// Matches reports whether search is a case-insensitive substring of the
// member's first name, last name or email. An empty search matches.
func (m *Member) Matches(search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(m.Nom), search) ||
		strings.Contains(strings.ToLower(m.Prenom), search) ||
		strings.Contains(strings.ToLower(m.Email), search)
}

// NonAdmins drops admin accounts from a member list.
func NonAdmins(members []Member) []Member {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		if !m.IsAdmin() {
			out = append(out, m)
		}
	}
	return out
}

// NewMember is the payload for admin creation and self-registration.
type NewMember struct {
	Nom        string `json:"nom" validate:"required"`
	Prenom     string `json:"prenom" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Num        string `json:"num" validate:"required"`
	Sexe       string `json:"sexe" validate:"required"`
	Mdp        string `json:"mdp" validate:"required,min=8"`
	ConfirmMdp string `json:"confirmMdp,omitempty" validate:"eqfield=Mdp"`
	Role       string `json:"role"`
	Cotisation string `json:"cotisation" validate:"omitempty,oneof=mensuel trimestriel"`
	Statu      string `json:"statu"`
}

// ProfileUpdate carries the fields a member may edit on their own profile.
type ProfileUpdate struct {
	Nom    string `json:"nom" validate:"required"`
	Prenom string `json:"prenom" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Num    string `json:"num"`
	Sexe   string `json:"sexe"`
}

// Apply overwrites the profile fields of m with exactly the submitted values.
func (p ProfileUpdate) Apply(m Member) Member {
	m.Nom = p.Nom
	m.Prenom = p.Prenom
	m.Email = p.Email
	m.Num = p.Num
	m.Sexe = p.Sexe
	return m
}

// MemberCounts summarises a member list by status.
type MemberCounts struct {
	Total     int `json:"total"`
	Actifs    int `json:"actifs"`
	Suspendus int `json:"suspendus"`
	Bannis    int `json:"bannis"`
}

// CountMembers tallies members per status.
func CountMembers(members []Member) MemberCounts {
	counts := MemberCounts{Total: len(members)}
	for _, m := range members {
		switch m.Statu {
		case StatusActive:
			counts.Actifs++
		case StatusSuspended:
			counts.Suspendus++
		case StatusBanned:
			counts.Bannis++
		}
	}
	return counts
}

// Credentials is the body of POST /users/login.
type Credentials struct {
	Email string `json:"email" validate:"required,email"`
	Mdp   string `json:"mdp" validate:"required"`
}

// PasswordChange is the body of PUT /users/:id/change-password. ConfirmMdp
// is checked locally and never sent.
type PasswordChange struct {
	AncienMdp  string `json:"ancienMdp" validate:"required"`
	NouveauMdp string `json:"nouveauMdp" validate:"required,min=8"`
	ConfirmMdp string `json:"confirmMdp,omitempty" validate:"eqfield=NouveauMdp"`
}

// PasswordReset is the body of POST /users/reset-password.
type PasswordReset struct {
	Email      string `json:"email" validate:"required,email"`
	ResetCode  string `json:"resetCode" validate:"required,len=6,numeric"`
	NouveauMdp string `json:"nouveauMdp" validate:"required,min=8"`
	ConfirmMdp string `json:"confirmMdp,omitempty" validate:"eqfield=NouveauMdp"`
}

// StatusChange is the body of a member status update.
type StatusChange struct {
	Statu string `json:"statu" validate:"required,oneof=actif suspendu bani"`
}
