package services

import (
	"github.com/allforone/afo-portal/internal/backend"
	"github.com/allforone/afo-portal/internal/config"
	"github.com/allforone/afo-portal/internal/jobs"
	"github.com/allforone/afo-portal/internal/repository"
)

// Services holds all service instances
type Services struct {
	Auth       *AuthService
	Member     *MemberService
	Adhesion   *AdhesionService
	Cotisation *CotisationService
	Generation *GenerationService
	Report     *ReportService
	Export     *ExportService
	Archive    *ArchiveService
	Audit      *AuditService
	Dashboard  *DashboardService
}

// NewServices creates all service instances
func NewServices(api backend.API, repos *repository.Repositories, worker *jobs.Worker, store FileStore, cfg *config.Config) *Services {
	return &Services{
		Auth:       NewAuthService(api, repos.Session, cfg),
		Member:     NewMemberService(api),
		Adhesion:   NewAdhesionService(api),
		Cotisation: NewCotisationService(api),
		Generation: NewGenerationService(api),
		Report:     NewReportService(cfg),
		Export:     NewExportService(),
		Archive:    NewArchiveService(repos.Archive, store, worker),
		Audit:      NewAuditService(api),
		Dashboard:  NewDashboardService(api),
	}
}
