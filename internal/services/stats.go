package services

import (
	"math"
	"sort"

	"github.com/allforone/afo-portal/internal/models"
)

// Percentage returns part/whole as a rounded percentage, 0 when whole is 0.
func Percentage(part, whole int64) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(whole)))
}

// ComputeGlobalStats aggregates every dues record. MontantTotal is the paid
// amount and MontantAttendu the outstanding one.
func ComputeGlobalStats(dues []models.Cotisation) models.GlobalStats {
	var g models.GlobalStats
	g.TotalCotisations = len(dues)
	for i := range dues {
		if dues[i].IsPaid() {
			g.TotalPaye++
			g.MontantTotal += dues[i].Montant
		} else {
			g.TotalEnAttente++
			g.MontantAttendu += dues[i].Montant
		}
	}
	g.TauxPaiement = Percentage(int64(g.TotalPaye), int64(g.TotalCotisations))
	g.TauxRecouvrement = Percentage(g.MontantTotal, g.MontantTotal+g.MontantAttendu)
	return g
}

// ComputeMonthlyStats groups dues by month, most recent month first. Months
// only come from existing records.
func ComputeMonthlyStats(dues []models.Cotisation) []models.MonthlyStat {
	byMonth := make(map[string]*models.MonthlyStat)
	for i := range dues {
		c := &dues[i]
		stat, ok := byMonth[c.Mois]
		if !ok {
			stat = &models.MonthlyStat{Mois: c.Mois}
			byMonth[c.Mois] = stat
		}
		stat.Total++
		if c.IsPaid() {
			stat.Payes++
			stat.MontantPaye += c.Montant
		} else {
			stat.EnAttente++
			stat.MontantAttendu += c.Montant
		}
	}

	out := make([]models.MonthlyStat, 0, len(byMonth))
	for _, stat := range byMonth {
		stat.TauxPaiement = Percentage(int64(stat.Payes), int64(stat.Total))
		out = append(out, *stat)
	}
	SortMonthsDesc(out, func(s models.MonthlyStat) string { return s.Mois })
	return out
}

// SortMonthsDesc orders items by calendar month, most recent first. Values
// that are not YYYY-MM sort last; ties fall back to the raw string.
func SortMonthsDesc[T any](items []T, month func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		mi, mj := month(items[i]), month(items[j])
		ti, okI := models.ParseMonth(mi)
		tj, okJ := models.ParseMonth(mj)
		switch {
		case okI && okJ && !ti.Equal(tj):
			return ti.After(tj)
		case okI != okJ:
			return okI
		default:
			return mi > mj
		}
	})
}

// FindMonth returns the stat of one month.
func FindMonth(stats []models.MonthlyStat, mois string) (models.MonthlyStat, bool) {
	for _, s := range stats {
		if s.Mois == mois {
			return s, true
		}
	}
	return models.MonthlyStat{}, false
}

// FilterByMonth keeps the dues of one month.
func FilterByMonth(dues []models.Cotisation, mois string) []models.Cotisation {
	out := make([]models.Cotisation, 0)
	for _, c := range dues {
		if c.Mois == mois {
			out = append(out, c)
		}
	}
	return out
}

// SummarizeMember sorts a member's dues most recent first and totals them.
func SummarizeMember(dues []models.Cotisation) models.MemberDuesSummary {
	sorted := make([]models.Cotisation, len(dues))
	copy(sorted, dues)
	SortMonthsDesc(sorted, func(c models.Cotisation) string { return c.Mois })

	summary := models.MemberDuesSummary{Cotisations: sorted}
	for i := range sorted {
		if sorted[i].IsPaid() {
			summary.TotalPaye++
			summary.MontantPaye += sorted[i].Montant
		} else {
			summary.TotalEnAttente++
		}
	}
	return summary
}

// SummarizeFinance backs the finance dashboard. Every non-paid record counts
// as unpaid; the collection rate is collected over total amount.
func SummarizeFinance(dues []models.Cotisation) models.FinanceSummary {
	s := models.FinanceSummary{Total: len(dues)}
	for i := range dues {
		s.MontantTotal += dues[i].Montant
		if dues[i].IsPaid() {
			s.Payees++
			s.MontantCollecte += dues[i].Montant
		} else {
			s.NonPayees++
		}
	}
	s.MontantRestant = s.MontantTotal - s.MontantCollecte
	s.TauxCollecte = Percentage(s.MontantCollecte, s.MontantTotal)
	return s
}

// MemberNames indexes member display names by ID.
func MemberNames(members []models.Member) map[string]string {
	names := make(map[string]string, len(members))
	for i := range members {
		names[members[i].ID] = members[i].FullName()
	}
	return names
}

// OwnerName resolves the display name of a dues record: the populated owner
// when present, else the member list, else "Inconnu".
func OwnerName(c models.Cotisation, names map[string]string) string {
	if n := (&models.Member{Nom: c.UserID.Nom, Prenom: c.UserID.Prenom}).FullName(); n != "" {
		return n
	}
	if n, ok := names[c.UserID.ID]; ok && n != "" {
		return n
	}
	return "Inconnu"
}
