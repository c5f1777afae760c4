package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Cotisation status constants
const (
	CotisationPaid    = "payé"
	CotisationPending = "en_attente"
	CotisationLate    = "en_retard"
)

// MonthLayout is the layout of the `mois` field.
const MonthLayout = "2006-01"

// DefaultPaymentMethod is sent when an admin marks dues as paid at the desk.
const DefaultPaymentMethod = "espèces"

// MemberRef is the owner of a dues record. The backend sends either the bare
// member ID or the populated member document.
type MemberRef struct {
	ID     string `json:"_id"`
	Nom    string `json:"nom,omitempty"`
	Prenom string `json:"prenom,omitempty"`
}

func (r *MemberRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = MemberRef{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = MemberRef{ID: id}
		return nil
	}
	type plain MemberRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("userId: %w", err)
	}
	*r = MemberRef(p)
	return nil
}

// Cotisation is one dues record.
type Cotisation struct {
	ID              string     `json:"_id"`
	UserID          MemberRef  `json:"userId"`
	Mois            string     `json:"mois"`
	Montant         int64      `json:"montant"`
	Statut          string     `json:"statut"`
	DatePaiement    *time.Time `json:"datePaiement,omitempty"`
	MethodePaiement string     `json:"methodePaiement,omitempty"`
}

// IsPaid reports whether the record is settled. Every other status counts as
// pending.
func (c *Cotisation) IsPaid() bool {
	return c.Statut == CotisationPaid
}

// StatusLabel is the display label used in tables and reports.
func (c *Cotisation) StatusLabel() string {
	if c.IsPaid() {
		return "Payé"
	}
	return "En attente"
}

// MonthStart parses `mois` as the first day of that month. ok is false when
// the field is not a YYYY-MM value.
func (c *Cotisation) MonthStart() (time.Time, bool) {
	return ParseMonth(c.Mois)
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(mois string) (time.Time, bool) {
	t, err := time.Parse(MonthLayout, mois)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MarkPaidRequest is the body of PUT /cotisations/:id/payer.
type MarkPaidRequest struct {
	MethodePaiement string `json:"methodePaiement"`
}
