package models

import (
	"strings"
	"time"
)

// Adhesion request status constants
const (
	AdhesionPending  = "en_attente"
	AdhesionApproved = "approuvé"
	AdhesionRejected = "refusé"
)

// AdhesionRequest is a membership application awaiting an admin decision.
type AdhesionRequest struct {
	ID          string     `json:"_id"`
	Nom         string     `json:"nom"`
	Prenom      string     `json:"prenom"`
	Email       string     `json:"email"`
	Num         string     `json:"num,omitempty"`
	Sexe        string     `json:"sexe,omitempty"`
	Cotisation  string     `json:"cotisation,omitempty"`
	Statut      string     `json:"statut"`
	RaisonRefus string     `json:"raisonRefus,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// FullName returns "Prenom Nom".
func (a *AdhesionRequest) FullName() string {
	return strings.TrimSpace(a.Prenom + " " + a.Nom)
}

// AdhesionCounts tallies requests per decision.
type AdhesionCounts struct {
	EnAttente int `json:"enAttente"`
	Approuves int `json:"approuves"`
	Refuses   int `json:"refuses"`
}

// RejectRequest is the body of POST /adhesion-requests/:id/reject.
type RejectRequest struct {
	RaisonRefus string `json:"raisonRefus"`
}
