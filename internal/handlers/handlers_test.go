package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/allforone/afo-portal/internal/backend"
	"github.com/allforone/afo-portal/internal/config"
	"github.com/allforone/afo-portal/internal/database"
	"github.com/allforone/afo-portal/internal/middleware"
	"github.com/allforone/afo-portal/internal/models"
	"github.com/allforone/afo-portal/internal/repository"
	"github.com/allforone/afo-portal/internal/services"
	"github.com/allforone/afo-portal/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

var backendUsers = map[string]string{
	"admin@example.com":   `{"_id":"admin","nom":"Admin","prenom":"Super","email":"admin@example.com","role":"Admin","statu":"actif"}`,
	"awa@example.com":     `{"_id":"u1","nom":"Diallo","prenom":"Awa","email":"awa@example.com","role":"membre","statu":"actif"}`,
	"fatou@example.com":   `{"_id":"u3","nom":"Ba","prenom":"Fatou","email":"fatou@example.com","role":"membre","statu":"suspendu"}`,
	"ibra@example.com":    `{"_id":"f1","nom":"Ndiaye","prenom":"Ibra","email":"ibra@example.com","role":"finance","statu":"actif"}`,
	"moussa@example.com":  `{"_id":"u2","nom":"Sow","prenom":"Moussa","email":"moussa@example.com","role":"membre","statu":"actif"}`,
	"aminata@example.com": `{"_id":"u4","nom":"Diop","prenom":"Aminata","email":"aminata@example.com","role":"membre","statu":"bani"}`,
}

// backendMux fakes the AFO backend endpoints every test needs. Tests add
// their own routes for the calls they check.
func backendMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/login", func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		user, ok := backendUsers[creds.Email]
		if !ok {
			writeJSON(w, http.StatusUnauthorized, `{"success":false,"message":"Email ou mot de passe incorrect"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"success":true,"token":"backend-tok","data":`+user+`}`)
	})
	mux.HandleFunc("GET /users/all", func(w http.ResponseWriter, r *http.Request) {
		users := make([]string, 0, len(backendUsers))
		for _, email := range []string{"admin@example.com", "awa@example.com", "moussa@example.com", "fatou@example.com", "aminata@example.com", "ibra@example.com"} {
			users = append(users, backendUsers[email])
		}
		writeJSON(w, http.StatusOK, `{"success":true,"data":[`+strings.Join(users, ",")+`]}`)
	})
	mux.HandleFunc("GET /cotisations/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":[
			{"_id":"c1","userId":{"_id":"u1","nom":"Diallo","prenom":"Awa"},"mois":"2024-01","montant":3000,"statut":"payé","methodePaiement":"espèces"},
			{"_id":"c2","userId":"u2","mois":"2024-01","montant":3000,"statut":"en_attente"},
			{"_id":"c3","userId":"u1","mois":"2024-02","montant":3000,"statut":"en_retard"}
		]}`)
	})
	mux.HandleFunc("GET /cotisations/user/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":[{"_id":"c1","userId":"`+r.PathValue("id")+`","mois":"2024-01","montant":3000,"statut":"payé"}]}`)
	})
	mux.HandleFunc("GET /adhesion-requests/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":[{"_id":"a1","nom":"Gueye","prenom":"Khady","email":"khady@example.com","statut":"en_attente"}]}`)
	})
	return mux
}

// newTestRouter wires real services against a fake backend and an in-memory
// session store.
func newTestRouter(t *testing.T, backendURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{SessionTTLHours: 12, AssociationName: "AFO - All For One"}
	svcs := services.NewServices(backend.NewClient(backendURL, nil), repository.NewRepositories(db), nil, store, cfg)
	h := NewHandlers(svcs, nil, cfg)

	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.GET("/health", h.Health.Index)
	v1.POST("/auth/login", h.Auth.Login)
	v1.POST("/auth/logout", h.Auth.Logout)

	protected := v1.Group("")
	protected.Use(middleware.Session(svcs.Auth))
	protected.GET("/auth/me", h.Auth.Me)
	protected.GET("/cotisations/members/:id", h.Cotisation.ByMember)

	finance := protected.Group("")
	finance.Use(middleware.RequireRole(models.RoleFinance))
	finance.GET("/reports/monthly/:mois", h.Report.Monthly)
	finance.GET("/reports/export", h.Report.Export)

	admin := protected.Group("")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/members", h.Member.Index)
	admin.POST("/members", h.Member.Create)
	admin.PUT("/members/:id/status", h.Member.ChangeStatus)
	admin.POST("/adhesions/:id/reject", h.Adhesion.Reject)
	admin.POST("/generation", h.Cotisation.Generate)

	return r
}

func newTestEnv(t *testing.T, mux *http.ServeMux) *gin.Engine {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return newTestRouter(t, srv.URL)
}

func doRequest(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/api/v1/auth/login", "", `{"email":"`+email+`","mdp":"password1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	r := newTestEnv(t, backendMux())

	w := doRequest(r, http.MethodGet, "/api/v1/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestLogin_OpensSession(t *testing.T) {
	r := newTestEnv(t, backendMux())

	w := doRequest(r, http.MethodPost, "/api/v1/auth/login", "", `{"email":"awa@example.com","mdp":"password1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	assert.NotEqual(t, "backend-tok", token)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.Equal(t, token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	w = doRequest(r, http.MethodGet, "/api/v1/auth/me", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	assert.Equal(t, services.DashboardMember, me["dashboard"])
	assert.Equal(t, "u1", me["user"].(map[string]any)["_id"])
}

func TestLogin_SuspendedAccount(t *testing.T) {
	r := newTestEnv(t, backendMux())

	w := doRequest(r, http.MethodPost, "/api/v1/auth/login", "", `{"email":"fatou@example.com","mdp":"password1"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, services.ErrAccountSuspended.Error(), decode(t, w)["error"])
	assert.Empty(t, w.Result().Cookies())
}

func TestLogin_BackendMessage(t *testing.T) {
	r := newTestEnv(t, backendMux())

	w := doRequest(r, http.MethodPost, "/api/v1/auth/login", "", `{"email":"nobody@example.com","mdp":"password1"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Email ou mot de passe incorrect", decode(t, w)["error"])
}

func TestLogin_BackendUnreachable(t *testing.T) {
	srv := httptest.NewServer(backendMux())
	url := srv.URL
	srv.Close()
	r := newTestRouter(t, url)

	w := doRequest(r, http.MethodPost, "/api/v1/auth/login", "", `{"email":"awa@example.com","mdp":"password1"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, backend.MsgUnreachable, decode(t, w)["error"])
}

func TestLogin_InvalidBody(t *testing.T) {
	r := newTestEnv(t, backendMux())

	w := doRequest(r, http.MethodPost, "/api/v1/auth/login", "", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/api/v1/auth/login", "", `{"email":"not-an-email","mdp":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w), "fields")
}

func TestLogout_EndsSession(t *testing.T) {
	r := newTestEnv(t, backendMux())
	token := login(t, r, "awa@example.com")

	w := doRequest(r, http.MethodPost, "/api/v1/auth/logout", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)

	w = doRequest(r, http.MethodGet, "/api/v1/auth/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleGates(t *testing.T) {
	r := newTestEnv(t, backendMux())
	member := login(t, r, "awa@example.com")
	finance := login(t, r, "ibra@example.com")

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodGet, "/api/v1/members", "", "").Code)
	assert.Equal(t, http.StatusForbidden, doRequest(r, http.MethodGet, "/api/v1/members", member, "").Code)
	assert.Equal(t, http.StatusForbidden, doRequest(r, http.MethodGet, "/api/v1/members", finance, "").Code)
	assert.Equal(t, http.StatusForbidden, doRequest(r, http.MethodGet, "/api/v1/reports/export", member, "").Code)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/api/v1/reports/export?format=csv", finance, "").Code)
}

func TestMembers_Index(t *testing.T) {
	r := newTestEnv(t, backendMux())
	admin := login(t, r, "admin@example.com")

	w := doRequest(r, http.MethodGet, "/api/v1/members?statut=suspendu", admin, "")
	require.Equal(t, http.StatusOK, w.Code)

	var dir services.MemberDirectory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dir))
	require.Len(t, dir.Members, 1)
	assert.Equal(t, "u3", dir.Members[0].ID)
	assert.Equal(t, 6, dir.Counts.Total)
	assert.Equal(t, 1, dir.Counts.Bannis)
}

func TestMembers_ChangeStatus_InvalidTransition(t *testing.T) {
	mux := backendMux()
	mux.HandleFunc("PUT /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend update of %s", r.PathValue("id"))
		writeJSON(w, http.StatusOK, `{"success":true}`)
	})
	r := newTestEnv(t, mux)
	admin := login(t, r, "admin@example.com")

	w := doRequest(r, http.MethodPut, "/api/v1/members/u4/status", admin, `{"statu":"suspendu"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMembers_ChangeStatus_RevokesSessions(t *testing.T) {
	var sent map[string]any
	mux := backendMux()
	mux.HandleFunc("PUT /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		writeJSON(w, http.StatusOK, `{"success":true,"message":"Utilisateur mis à jour"}`)
	})
	r := newTestEnv(t, mux)
	admin := login(t, r, "admin@example.com")
	member := login(t, r, "moussa@example.com")

	w := doRequest(r, http.MethodPut, "/api/v1/members/u2/status", admin, `{"statu":"suspendu"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "suspendu", sent["statu"])

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodGet, "/api/v1/auth/me", member, "").Code)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/api/v1/auth/me", admin, "").Code)
}

func TestMembers_ChangeStatus_ReloadFails(t *testing.T) {
	var applied atomic.Bool
	inner := backendMux()
	inner.HandleFunc("PUT /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		applied.Store(true)
		writeJSON(w, http.StatusOK, `{"success":true,"message":"Utilisateur mis à jour"}`)
	})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/all", func(w http.ResponseWriter, r *http.Request) {
		if applied.Load() {
			writeJSON(w, http.StatusInternalServerError, `{"success":false,"message":"db hiccup"}`)
			return
		}
		inner.ServeHTTP(w, r)
	})
	mux.Handle("/", inner)

	r := newTestEnv(t, mux)
	admin := login(t, r, "admin@example.com")
	member := login(t, r, "moussa@example.com")

	w := doRequest(r, http.MethodPut, "/api/v1/members/u2/status", admin, `{"statu":"bani"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["stale"])
	assert.Equal(t, `Statut changé en "bani" avec succès`, body["message"])

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodGet, "/api/v1/auth/me", member, "").Code)
}

func TestMembers_Create_BackendFieldErrors(t *testing.T) {
	mux := backendMux()
	mux.HandleFunc("POST /users/ajouter", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"success":false,"error":{"errors":{"email":{"message":"Email déjà utilisé"}}}}`)
	})
	r := newTestEnv(t, mux)
	admin := login(t, r, "admin@example.com")

	w := doRequest(r, http.MethodPost, "/api/v1/members", admin,
		`{"nom":"Diop","prenom":"Aminata","email":"awa@example.com","num":"770000001","sexe":"F","mdp":"password1","confirmMdp":"password1"}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Email déjà utilisé", body["error"])
	assert.Equal(t, map[string]any{"email": "Email déjà utilisé"}, body["fields"])
}

func TestAdhesions_Reject_EmptyBody(t *testing.T) {
	var sent map[string]any
	mux := backendMux()
	mux.HandleFunc("POST /adhesion-requests/{id}/reject", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		writeJSON(w, http.StatusOK, `{"success":true,"message":"Demande refusée"}`)
	})
	r := newTestEnv(t, mux)
	admin := login(t, r, "admin@example.com")

	w := doRequest(r, http.MethodPost, "/api/v1/adhesions/a1/reject", admin, "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Demande refusée", decode(t, w)["message"])
	assert.Equal(t, "", sent["raisonRefus"])
}

func TestGeneration_EmptySelection(t *testing.T) {
	mux := backendMux()
	mux.HandleFunc("POST /cotisations/generer-selective", func(w http.ResponseWriter, r *http.Request) {
		t.Error("generation must not reach the backend")
		writeJSON(w, http.StatusOK, `{"success":true}`)
	})
	r := newTestEnv(t, mux)
	admin := login(t, r, "admin@example.com")

	w := doRequest(r, http.MethodPost, "/api/v1/generation", admin, `{"mois":"2024-03","montant":3000,"userIds":[]}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Veuillez sélectionner au moins un membre", decode(t, w)["error"])
}

func TestCotisations_ByMember(t *testing.T) {
	r := newTestEnv(t, backendMux())
	member := login(t, r, "awa@example.com")
	finance := login(t, r, "ibra@example.com")

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/api/v1/cotisations/members/u1", member, "").Code)
	assert.Equal(t, http.StatusForbidden, doRequest(r, http.MethodGet, "/api/v1/cotisations/members/u2", member, "").Code)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/api/v1/cotisations/members/u2", finance, "").Code)
}

func TestGeneration_IneligibleMembers(t *testing.T) {
	mux := backendMux()
	mux.HandleFunc("POST /cotisations/generer-selective", func(w http.ResponseWriter, r *http.Request) {
		t.Error("generation must not reach the backend")
		writeJSON(w, http.StatusOK, `{"success":true}`)
	})
	r := newTestEnv(t, mux)
	admin := login(t, r, "admin@example.com")

	w := doRequest(r, http.MethodPost, "/api/v1/generation", admin, `{"mois":"2024-03","montant":3000,"userIds":["u1","admin","u3"]}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, map[string]any{"userIds": "Membres non éligibles (inactifs ou administrateurs) : admin, u3"}, body["fields"])
}

func TestReports_Monthly(t *testing.T) {
	r := newTestEnv(t, backendMux())
	admin := login(t, r, "admin@example.com")

	w := doRequest(r, http.MethodGet, "/api/v1/reports/monthly/janvier", admin, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/reports/monthly/2023-05", admin, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Aucune cotisation pour mai 2023", decode(t, w)["error"])

	w = doRequest(r, http.MethodGet, "/api/v1/reports/monthly/2024-01", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Rapport_janvier_2024_")
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

	w = doRequest(r, http.MethodGet, "/api/v1/reports/monthly/2024-02", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	disposition := w.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, `filename="Rapport_f_vrier_2024_`)
	assert.Contains(t, disposition, "filename*=UTF-8''Rapport_f%C3%A9vrier_2024_")
}

func TestReports_Export(t *testing.T) {
	r := newTestEnv(t, backendMux())
	admin := login(t, r, "admin@example.com")

	w := doRequest(r, http.MethodGet, "/api/v1/reports/export?format=csv", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="Cotisations_`)
	assert.Equal(t, 4, strings.Count(strings.TrimSpace(w.Body.String()), "\n")+1)

	w = doRequest(r, http.MethodGet, "/api/v1/reports/export", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	w = doRequest(r, http.MethodGet, "/api/v1/reports/export?format=pdf", admin, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
