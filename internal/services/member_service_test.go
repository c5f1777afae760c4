package services

import (
	"context"
	"errors"
	"testing"

	"github.com/allforone/afo-portal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func directoryAPI(members []models.Member) *mockAPI {
	return &mockAPI{
		mockListMembers: func(ctx context.Context, token string) ([]models.Member, error) {
			return members, nil
		},
	}
}

func TestMemberService_List(t *testing.T) {
	service := NewMemberService(directoryAPI(generationMembers()))
	p := testPrincipal(models.RoleAdmin)

	dir, err := service.List(context.Background(), p, MemberFilter{})
	require.NoError(t, err)
	assert.Len(t, dir.Members, 5)
	assert.Equal(t, models.MemberCounts{Total: 5, Actifs: 4, Suspendus: 1}, dir.Counts)

	dir, err = service.List(context.Background(), p, MemberFilter{Statut: models.StatusSuspended})
	require.NoError(t, err)
	require.Len(t, dir.Members, 1)
	assert.Equal(t, "u3", dir.Members[0].ID)
	assert.Equal(t, 5, dir.Counts.Total)

	dir, err = service.List(context.Background(), p, MemberFilter{Statut: StatusAll, Search: "example.com"})
	require.NoError(t, err)
	assert.Len(t, dir.Members, 4)
}

func TestMemberService_ChangeStatus(t *testing.T) {
	members := generationMembers()
	api := directoryAPI(members)
	var sent any
	api.mockUpdateMember = func(ctx context.Context, token, id string, fields any) (string, error) {
		assert.Equal(t, "u1", id)
		sent = fields
		return "ok", nil
	}
	service := NewMemberService(api)

	dir, err := service.ChangeStatus(context.Background(), testPrincipal(models.RoleAdmin), "u1", models.StatusChange{Statu: models.StatusSuspended})
	require.NoError(t, err)
	assert.Equal(t, models.StatusChange{Statu: models.StatusSuspended}, sent)
	assert.Equal(t, `Statut changé en "suspendu" avec succès`, dir.Message)
}

func TestMemberService_ChangeStatus_InvalidTransition(t *testing.T) {
	members := []models.Member{{ID: "u1", Role: models.RoleMember, Statu: models.StatusBanned}}
	api := directoryAPI(members)
	api.mockUpdateMember = func(ctx context.Context, token, id string, fields any) (string, error) {
		t.Fatal("a rejected transition must not reach the backend")
		return "", nil
	}
	service := NewMemberService(api)

	_, err := service.ChangeStatus(context.Background(), testPrincipal(models.RoleAdmin), "u1", models.StatusChange{Statu: models.StatusSuspended})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMemberService_ChangeStatus_UnknownStatus(t *testing.T) {
	service := NewMemberService(directoryAPI(generationMembers()))

	_, err := service.ChangeStatus(context.Background(), testPrincipal(models.RoleAdmin), "u1", models.StatusChange{Statu: "archive"})
	assert.True(t, IsValidationError(err))
}

func TestMemberService_ChangeStatus_NotFound(t *testing.T) {
	service := NewMemberService(directoryAPI(generationMembers()))

	_, err := service.ChangeStatus(context.Background(), testPrincipal(models.RoleAdmin), "nobody", models.StatusChange{Statu: models.StatusActive})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemberService_ChangeStatus_ReloadFails(t *testing.T) {
	members := generationMembers()
	calls := 0
	api := &mockAPI{
		mockListMembers: func(ctx context.Context, token string) ([]models.Member, error) {
			calls++
			if calls > 1 {
				return nil, errors.New("db hiccup")
			}
			return members, nil
		},
		mockUpdateMember: func(ctx context.Context, token, id string, fields any) (string, error) {
			return "ok", nil
		},
	}
	service := NewMemberService(api)

	dir, err := service.ChangeStatus(context.Background(), testPrincipal(models.RoleAdmin), "u1", models.StatusChange{Statu: models.StatusBanned})
	require.NoError(t, err)
	assert.True(t, dir.Stale)
	assert.Empty(t, dir.Members)
	assert.Equal(t, `Statut changé en "bani" avec succès`, dir.Message)
	assert.Equal(t, 2, calls)
}

func TestMemberService_Delete_ReloadFails(t *testing.T) {
	api := &mockAPI{
		mockListMembers: func(ctx context.Context, token string) ([]models.Member, error) {
			return nil, errors.New("db hiccup")
		},
		mockDeleteMember: func(ctx context.Context, token, id string) (string, error) {
			return "Membre supprimé", nil
		},
	}
	service := NewMemberService(api)

	dir, err := service.Delete(context.Background(), testPrincipal(models.RoleAdmin), "u2")
	require.NoError(t, err)
	assert.True(t, dir.Stale)
	assert.Equal(t, "Membre supprimé", dir.Message)
}

func TestMemberService_Create(t *testing.T) {
	api := directoryAPI(generationMembers())
	var sent models.NewMember
	api.mockCreateMember = func(ctx context.Context, token string, m models.NewMember) (string, error) {
		sent = m
		return "Membre ajouté avec succès", nil
	}
	service := NewMemberService(api)

	m := models.NewMember{Nom: "Diop", Prenom: "Aminata", Email: "aminata@example.com", Num: "770000001", Sexe: "F", Mdp: "password1", ConfirmMdp: "password1"}
	dir, err := service.Create(context.Background(), testPrincipal(models.RoleAdmin), m)
	require.NoError(t, err)

	assert.Equal(t, "Membre ajouté avec succès", dir.Message)
	assert.Equal(t, models.RoleMember, sent.Role)
	assert.Equal(t, models.StatusActive, sent.Statu)
	assert.Equal(t, models.PlanMonthly, sent.Cotisation)
}

func TestMemberService_Delete_Self(t *testing.T) {
	service := NewMemberService(&mockAPI{})
	p := testPrincipal(models.RoleAdmin)

	_, err := service.Delete(context.Background(), p, p.User.ID)
	assert.True(t, IsValidationError(err))
}

func TestMemberService_BackendError(t *testing.T) {
	backendErr := errors.New("boom")
	service := NewMemberService(&mockAPI{
		mockListMembers: func(ctx context.Context, token string) ([]models.Member, error) {
			return nil, backendErr
		},
	})

	_, err := service.List(context.Background(), testPrincipal(models.RoleAdmin), MemberFilter{})
	assert.ErrorIs(t, err, backendErr)
}

func TestAdhesionService_List(t *testing.T) {
	service := NewAdhesionService(&mockAPI{
		mockListAdhesions: func(ctx context.Context, token string) ([]models.AdhesionRequest, error) {
			return []models.AdhesionRequest{
				{ID: "a1", Nom: "Diallo", Prenom: "Awa", Email: "awa@example.com", Statut: models.AdhesionPending},
				{ID: "a2", Nom: "Sow", Prenom: "Moussa", Email: "moussa@example.com", Statut: models.AdhesionApproved},
				{ID: "a3", Nom: "Ba", Prenom: "Fatou", Email: "fatou@example.com", Statut: models.AdhesionRejected},
				{ID: "a4", Nom: "Diop", Prenom: "Awa", Email: "diop@example.com", Statut: models.AdhesionPending},
			}, nil
		},
	})
	p := testPrincipal(models.RoleAdmin)

	list, err := service.List(context.Background(), p, AdhesionFilter{})
	require.NoError(t, err)
	assert.Len(t, list.Requests, 2)
	assert.Equal(t, models.AdhesionCounts{EnAttente: 2, Approuves: 1, Refuses: 1}, list.Counts)

	list, err = service.List(context.Background(), p, AdhesionFilter{Statut: StatusAll, Search: "diop"})
	require.NoError(t, err)
	require.Len(t, list.Requests, 1)
	assert.Equal(t, "a4", list.Requests[0].ID)
}

func TestAdhesionService_Approve_ReloadFails(t *testing.T) {
	calls := 0
	api := &mockAPI{
		mockListAdhesions: func(ctx context.Context, token string) ([]models.AdhesionRequest, error) {
			calls++
			if calls > 1 {
				return nil, errors.New("db hiccup")
			}
			return []models.AdhesionRequest{{ID: "a1", Statut: models.AdhesionPending}}, nil
		},
		mockApprove: func(ctx context.Context, token, id string) (string, error) {
			return "Demande approuvée", nil
		},
	}
	service := NewAdhesionService(api)

	list, err := service.Approve(context.Background(), testPrincipal(models.RoleAdmin), "a1")
	require.NoError(t, err)
	assert.True(t, list.Stale)
	assert.Equal(t, "Demande approuvée", list.Message)
}

func adhesionAPI(statut string) *mockAPI {
	return &mockAPI{
		mockListAdhesions: func(ctx context.Context, token string) ([]models.AdhesionRequest, error) {
			return []models.AdhesionRequest{{ID: "a1", Nom: "Diallo", Prenom: "Awa", Statut: statut}}, nil
		},
	}
}

func TestAdhesionService_Approve(t *testing.T) {
	api := adhesionAPI(models.AdhesionPending)
	api.mockApprove = func(ctx context.Context, token, id string) (string, error) {
		return "", nil
	}
	service := NewAdhesionService(api)

	list, err := service.Approve(context.Background(), testPrincipal(models.RoleAdmin), "a1")
	require.NoError(t, err)
	assert.Equal(t, "Demande approuvée ! Le membre peut maintenant se connecter.", list.Message)
}

func TestAdhesionService_Approve_AlreadyDecided(t *testing.T) {
	api := adhesionAPI(models.AdhesionRejected)
	api.mockApprove = func(ctx context.Context, token, id string) (string, error) {
		t.Fatal("a decided request must not reach the backend")
		return "", nil
	}
	service := NewAdhesionService(api)

	_, err := service.Approve(context.Background(), testPrincipal(models.RoleAdmin), "a1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAdhesionService_Reject(t *testing.T) {
	api := adhesionAPI(models.AdhesionPending)
	var raison string
	api.mockReject = func(ctx context.Context, token, id, r string) (string, error) {
		raison = r
		return "Demande refusée", nil
	}
	service := NewAdhesionService(api)

	list, err := service.Reject(context.Background(), testPrincipal(models.RoleAdmin), "a1", models.RejectRequest{RaisonRefus: "  Dossier incomplet "})
	require.NoError(t, err)
	assert.Equal(t, "Dossier incomplet", raison)
	assert.Equal(t, "Demande refusée", list.Message)

	_, err = service.Reject(context.Background(), testPrincipal(models.RoleAdmin), "missing", models.RejectRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}
