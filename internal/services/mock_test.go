package services

import (
	"context"
	"time"

	"github.com/allforone/afo-portal/internal/backend"
	"github.com/allforone/afo-portal/internal/models"
	"github.com/allforone/afo-portal/internal/repository"
	"gorm.io/gorm"
)

// mockAPI stubs the backend. Unset funcs panic through the nil embedded
// interface, which flags unexpected calls.
type mockAPI struct {
	backend.API
	mockLogin             func(ctx context.Context, creds models.Credentials) (*backend.LoginResult, error)
	mockRegister          func(ctx context.Context, m models.NewMember) (string, error)
	mockRequestReset      func(ctx context.Context, email string) (*backend.ResetRequestResult, error)
	mockListMembers       func(ctx context.Context, token string) ([]models.Member, error)
	mockCreateMember      func(ctx context.Context, token string, m models.NewMember) (string, error)
	mockUpdateMember      func(ctx context.Context, token, id string, fields any) (string, error)
	mockDeleteMember      func(ctx context.Context, token, id string) (string, error)
	mockListCotisations   func(ctx context.Context, token string) ([]models.Cotisation, error)
	mockMemberCotisations func(ctx context.Context, token, userID string) ([]models.Cotisation, error)
	mockMarkPaid          func(ctx context.Context, token, id, methode string) (string, error)
	mockGenerate          func(ctx context.Context, token string, req models.GenerationRequest) (*models.GenerationResponse, error)
	mockListAdhesions     func(ctx context.Context, token string) ([]models.AdhesionRequest, error)
	mockApprove           func(ctx context.Context, token, id string) (string, error)
	mockReject            func(ctx context.Context, token, id, raison string) (string, error)
	mockListLogs          func(ctx context.Context, token string, q backend.LogQuery) (*backend.LogPage, error)
	mockLogStats          func(ctx context.Context, token, startDate, endDate string) (*models.AuditLogStats, error)
}

func (m *mockAPI) Login(ctx context.Context, creds models.Credentials) (*backend.LoginResult, error) {
	return m.mockLogin(ctx, creds)
}

func (m *mockAPI) Register(ctx context.Context, nm models.NewMember) (string, error) {
	return m.mockRegister(ctx, nm)
}

func (m *mockAPI) RequestPasswordReset(ctx context.Context, email string) (*backend.ResetRequestResult, error) {
	return m.mockRequestReset(ctx, email)
}

func (m *mockAPI) ListMembers(ctx context.Context, token string) ([]models.Member, error) {
	return m.mockListMembers(ctx, token)
}

func (m *mockAPI) CreateMember(ctx context.Context, token string, nm models.NewMember) (string, error) {
	return m.mockCreateMember(ctx, token, nm)
}

func (m *mockAPI) UpdateMember(ctx context.Context, token, id string, fields any) (string, error) {
	return m.mockUpdateMember(ctx, token, id, fields)
}

func (m *mockAPI) DeleteMember(ctx context.Context, token, id string) (string, error) {
	return m.mockDeleteMember(ctx, token, id)
}

func (m *mockAPI) ListCotisations(ctx context.Context, token string) ([]models.Cotisation, error) {
	return m.mockListCotisations(ctx, token)
}

func (m *mockAPI) MemberCotisations(ctx context.Context, token, userID string) ([]models.Cotisation, error) {
	return m.mockMemberCotisations(ctx, token, userID)
}

func (m *mockAPI) MarkPaid(ctx context.Context, token, id, methode string) (string, error) {
	return m.mockMarkPaid(ctx, token, id, methode)
}

func (m *mockAPI) GenerateSelective(ctx context.Context, token string, req models.GenerationRequest) (*models.GenerationResponse, error) {
	return m.mockGenerate(ctx, token, req)
}

func (m *mockAPI) ListAdhesionRequests(ctx context.Context, token string) ([]models.AdhesionRequest, error) {
	return m.mockListAdhesions(ctx, token)
}

func (m *mockAPI) ApproveAdhesion(ctx context.Context, token, id string) (string, error) {
	return m.mockApprove(ctx, token, id)
}

func (m *mockAPI) RejectAdhesion(ctx context.Context, token, id, raison string) (string, error) {
	return m.mockReject(ctx, token, id, raison)
}

func (m *mockAPI) ListLogs(ctx context.Context, token string, q backend.LogQuery) (*backend.LogPage, error) {
	return m.mockListLogs(ctx, token, q)
}

func (m *mockAPI) LogStats(ctx context.Context, token, startDate, endDate string) (*models.AuditLogStats, error) {
	return m.mockLogStats(ctx, token, startDate, endDate)
}

// mockSessionRepo keeps sessions in memory.
type mockSessionRepo struct {
	repository.SessionRepository
	sessions    map[string]models.Session
	createCalls int
	deleteCalls int
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]models.Session)}
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*models.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (m *mockSessionRepo) Create(ctx context.Context, session *models.Session) error {
	m.createCalls++
	m.sessions[session.ID] = *session
	return nil
}

func (m *mockSessionRepo) Update(ctx context.Context, session *models.Session) error {
	m.sessions[session.ID] = *session
	return nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, id string) error {
	m.deleteCalls++
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionRepo) DeleteByUser(ctx context.Context, userID string) error {
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for id, s := range m.sessions {
		if s.IsExpired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func testPrincipal(role string) *Principal {
	return &Principal{
		SessionID: "sess-1",
		Token:     "backend-token",
		User:      models.Member{ID: "admin-1", Nom: "Admin", Prenom: "Super", Role: role, Statu: models.StatusActive},
	}
}

func cotisation(id, userID, mois string, montant int64, statut string) models.Cotisation {
	return models.Cotisation{ID: id, UserID: models.MemberRef{ID: userID}, Mois: mois, Montant: montant, Statut: statut}
}
