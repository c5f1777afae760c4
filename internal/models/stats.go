package models

// MonthlyStat aggregates the dues of one month.
type MonthlyStat struct {
	Mois           string `json:"mois"`
	Total          int    `json:"total"`
	Payes          int    `json:"payes"`
	EnAttente      int    `json:"enAttente"`
	MontantPaye    int64  `json:"montantPaye"`
	MontantAttendu int64  `json:"montantAttendu"`
	TauxPaiement   int    `json:"tauxPaiement"`
}

// GlobalStats aggregates every dues record.
type GlobalStats struct {
	TotalCotisations int   `json:"totalCotisations"`
	TotalPaye        int   `json:"totalPaye"`
	TotalEnAttente   int   `json:"totalEnAttente"`
	MontantTotal     int64 `json:"montantTotal"`
	MontantAttendu   int64 `json:"montantAttendu"`
	TauxPaiement     int   `json:"tauxPaiement"`
	TauxRecouvrement int   `json:"tauxRecouvrement"`
}

// MemberDuesSummary is the per-member view: records plus totals.
type MemberDuesSummary struct {
	Cotisations    []Cotisation `json:"cotisations"`
	TotalPaye      int          `json:"totalPaye"`
	TotalEnAttente int          `json:"totalEnAttente"`
	MontantPaye    int64        `json:"montantPaye"`
}

// FinanceSummary backs the finance dashboard.
type FinanceSummary struct {
	Total           int   `json:"total"`
	Payees          int   `json:"payees"`
	NonPayees       int   `json:"nonPayees"`
	MontantTotal    int64 `json:"montantTotal"`
	MontantCollecte int64 `json:"montantCollecte"`
	MontantRestant  int64 `json:"montantRestant"`
	TauxCollecte    int   `json:"tauxCollecte"`
}
