package models

import "time"

// DefaultGenerationAmount pre-fills the selective generation form.
const DefaultGenerationAmount int64 = 3000

// GenerationRequest is the body of POST /cotisations/generer-selective.
type GenerationRequest struct {
	Mois    string   `json:"mois" validate:"required,yearmonth"`
	Montant int64    `json:"montant" validate:"gt=0"`
	UserIDs []string `json:"userIds" validate:"min=1,dive,required"`
}

// DefaultGenerationRequest returns the form defaults for now: current month,
// standard amount, no member selected.
func DefaultGenerationRequest(now time.Time) GenerationRequest {
	return GenerationRequest{
		Mois:    now.Format(MonthLayout),
		Montant: DefaultGenerationAmount,
		UserIDs: []string{},
	}
}

// GenerationStats holds the counters reported by the backend.
type GenerationStats struct {
	Creees     int `json:"creees"`
	Existantes int `json:"existantes"`
	Erreurs    int `json:"erreurs"`
	Total      int `json:"total"`
}

// ExistingDues names a member whose record for the month already existed.
type ExistingDues struct {
	UserID string `json:"userId,omitempty"`
	Nom    string `json:"nom"`
}

// GenerationFailure is a per-member failure.
type GenerationFailure struct {
	UserID string `json:"userId,omitempty"`
	Nom    string `json:"nom"`
	Error  string `json:"error"`
}

// GenerationResponse is the backend answer to a selective generation.
type GenerationResponse struct {
	Message    string              `json:"message"`
	Stats      GenerationStats     `json:"stats"`
	Existantes []ExistingDues      `json:"existantes"`
	Errors     []GenerationFailure `json:"errors"`
}

// GenerationResult is the rendered outcome of one generation request. No
// category is dropped: members the backend did not account for end up in
// NonTraites.
type GenerationResult struct {
	Mois       string              `json:"mois"`
	Montant    int64               `json:"montant"`
	Demandes   int                 `json:"demandes"`
	Message    string              `json:"message"`
	Creees     int                 `json:"creees"`
	Existantes []ExistingDues      `json:"existantes"`
	Errors     []GenerationFailure `json:"errors"`
	Total      int                 `json:"total"`
	NonTraites int                 `json:"nonTraites"`
}
