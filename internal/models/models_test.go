package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberRef_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		data string
		want MemberRef
	}{
		{"bare id", `{"userId":"u1"}`, MemberRef{ID: "u1"}},
		{"populated", `{"userId":{"_id":"u2","nom":"Sow","prenom":"Moussa","email":"moussa@example.com"}}`, MemberRef{ID: "u2", Nom: "Sow", Prenom: "Moussa"}},
		{"null", `{"userId":null}`, MemberRef{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Cotisation
			require.NoError(t, json.Unmarshal([]byte(tt.data), &c))
			assert.Equal(t, tt.want, c.UserID)
		})
	}
}

func TestMemberRef_UnmarshalInvalid(t *testing.T) {
	var c Cotisation
	assert.Error(t, json.Unmarshal([]byte(`{"userId":42}`), &c))
}

func TestCotisation_Status(t *testing.T) {
	paid := Cotisation{Statut: CotisationPaid}
	late := Cotisation{Statut: CotisationLate}

	assert.True(t, paid.IsPaid())
	assert.Equal(t, "Payé", paid.StatusLabel())
	assert.False(t, late.IsPaid())
	assert.Equal(t, "En attente", late.StatusLabel())
}

func TestParseMonth(t *testing.T) {
	m, ok := ParseMonth("2024-02")
	require.True(t, ok)
	assert.Equal(t, time.February, m.Month())

	for _, bad := range []string{"", "2024-13", "02/2024", "2024-2"} {
		_, ok := ParseMonth(bad)
		assert.False(t, ok, bad)
	}
}

func TestMember_Roles(t *testing.T) {
	admin := Member{Role: "Admin"}
	finance := Member{Role: RoleFinance}

	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsFinance())
	assert.True(t, finance.IsFinance())
	assert.False(t, finance.IsAdmin())
}

func TestMember_Matches(t *testing.T) {
	m := Member{Nom: "Diallo", Prenom: "Awa", Email: "awa@example.com"}

	assert.True(t, m.Matches(""))
	assert.True(t, m.Matches("DIAL"))
	assert.True(t, m.Matches(" example "))
	assert.False(t, m.Matches("moussa"))
	assert.Equal(t, "Awa Diallo", m.FullName())
}

func TestCountMembers(t *testing.T) {
	members := []Member{
		{Statu: StatusActive},
		{Statu: StatusActive},
		{Statu: StatusSuspended},
		{Statu: StatusBanned},
	}

	assert.Equal(t, MemberCounts{Total: 4, Actifs: 2, Suspendus: 1, Bannis: 1}, CountMembers(members))
	assert.Equal(t, MemberCounts{}, CountMembers(nil))
}

func TestNonAdmins(t *testing.T) {
	members := []Member{{ID: "a", Role: "Admin"}, {ID: "u1", Role: RoleMember}, {ID: "f1", Role: RoleFinance}}

	out := NonAdmins(members)
	require.Len(t, out, 2)
	assert.Equal(t, "u1", out[0].ID)
	assert.Equal(t, "f1", out[1].ID)
}

func TestProfileUpdate_Apply(t *testing.T) {
	m := Member{ID: "u1", Nom: "Diallo", Prenom: "Awa", Role: RoleMember, Num: "770000000"}

	updated := ProfileUpdate{Nom: "Ba", Prenom: "Awa", Email: "awa.ba@example.com"}.Apply(m)

	assert.Equal(t, "u1", updated.ID)
	assert.Equal(t, RoleMember, updated.Role)
	assert.Equal(t, "Ba", updated.Nom)
	assert.Empty(t, updated.Num)
}

func TestActionLabelAndTone(t *testing.T) {
	tests := []struct {
		action string
		label  string
		tone   string
	}{
		{ActionMemberBanned, "Membre banni", "danger"},
		{ActionAllDuesDeleted, "Toutes cotisations supprimées", "danger"},
		{ActionDuesPaid, "Cotisation payée", "success"},
		{ActionMemberReactivated, "Membre réactivé", "success"},
		{ActionMemberSuspended, "Membre suspendu", "warning"},
		{ActionDuesGenerated, "Cotisation générée", "accent"},
		{ActionDuesUpdated, "Cotisation modifiée", "info"},
		{"CONNEXION", "CONNEXION", "info"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.label, ActionLabel(tt.action), tt.action)
		assert.Equal(t, tt.tone, ActionTone(tt.action), tt.action)
	}
}

func TestSession_User(t *testing.T) {
	s := &Session{ID: "s1", ExpiresAt: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)}
	require.NoError(t, s.SetUser(Member{ID: "u1", Nom: "Diallo", Role: RoleFinance}))

	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, RoleFinance, s.Role)

	user, err := s.User()
	require.NoError(t, err)
	assert.Equal(t, "Diallo", user.Nom)

	assert.False(t, s.IsExpired(time.Date(2024, 3, 15, 11, 0, 0, 0, time.UTC)))
	assert.True(t, s.IsExpired(time.Date(2024, 3, 15, 13, 0, 0, 0, time.UTC)))
	assert.False(t, (&Session{}).IsExpired(time.Now()))

	s.UserJSON = "{"
	_, err = s.User()
	assert.Error(t, err)
}

func TestDefaultGenerationRequest(t *testing.T) {
	req := DefaultGenerationRequest(time.Date(2024, 12, 31, 22, 0, 0, 0, time.UTC))

	assert.Equal(t, "2024-12", req.Mois)
	assert.Equal(t, DefaultGenerationAmount, req.Montant)
	assert.NotNil(t, req.UserIDs)
	assert.Empty(t, req.UserIDs)
}
