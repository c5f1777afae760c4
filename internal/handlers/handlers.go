package handlers

import (
	"github.com/allforone/afo-portal/internal/config"
	"github.com/allforone/afo-portal/internal/jobs"
	"github.com/allforone/afo-portal/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health     *HealthHandler
	Auth       *AuthHandler
	Member     *MemberHandler
	Adhesion   *AdhesionHandler
	Cotisation *CotisationHandler
	Report     *ReportHandler
	Audit      *AuditHandler
	Dashboard  *DashboardHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, worker *jobs.Worker, cfg *config.Config) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(worker),
		Auth:       NewAuthHandler(svcs.Auth, cfg.SessionCookieSecure),
		Member:     NewMemberHandler(svcs.Member, svcs.Auth),
		Adhesion:   NewAdhesionHandler(svcs.Adhesion),
		Cotisation: NewCotisationHandler(svcs.Cotisation, svcs.Generation),
		Report:     NewReportHandler(svcs.Cotisation, svcs.Report, svcs.Export, svcs.Archive),
		Audit:      NewAuditHandler(svcs.Audit),
		Dashboard:  NewDashboardHandler(svcs.Dashboard),
	}
}
