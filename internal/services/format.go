package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/allforone/afo-portal/internal/models"
)

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

var frenchMonthsShort = [...]string{
	"janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc.",
}

// MonthLong renders "2024-01" as "janvier 2024". Unparsable values are
// returned unchanged.
func MonthLong(mois string) string {
	t, ok := models.ParseMonth(mois)
	if !ok {
		return mois
	}
	return fmt.Sprintf("%s %d", frenchMonths[t.Month()-1], t.Year())
}

// MonthShort renders "2024-01" as "janv. 2024".
func MonthShort(mois string) string {
	t, ok := models.ParseMonth(mois)
	if !ok {
		return mois
	}
	return fmt.Sprintf("%s %d", frenchMonthsShort[t.Month()-1], t.Year())
}

// MonthShortYY renders "2024-01" as "janv. 24".
func MonthShortYY(mois string) string {
	t, ok := models.ParseMonth(mois)
	if !ok {
		return mois
	}
	return fmt.Sprintf("%s %02d", frenchMonthsShort[t.Month()-1], t.Year()%100)
}

// FormatAmount groups thousands with spaces: 1234567 → "1 234 567".
func FormatAmount(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 && !(neg && b.Len() == 1) {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatDate renders a date as dd/mm/yyyy, or "-" when absent.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

// FormatDayMonth renders a date as dd/mm, or "-" when absent.
func FormatDayMonth(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("02/01")
}

// ShortCount renders values above 1000 as thousands: 12500 → "13k".
func ShortCount(n int64) string {
	if n > 1000 {
		return fmt.Sprintf("%dk", roundDiv(n, 1000))
	}
	return strconv.FormatInt(n, 10)
}

// roundDiv divides rounding half away from zero.
func roundDiv(n, d int64) int64 {
	if n < 0 {
		return -roundDiv(-n, d)
	}
	return (n + d/2) / d
}
