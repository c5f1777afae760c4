package repository

import (
	"context"

	"github.com/allforone/afo-portal/internal/models"
	"gorm.io/gorm"
)

// ArchiveRepository defines the interface for report archive data access
type ArchiveRepository interface {
	FindByID(ctx context.Context, id string) (*models.ReportArchive, error)
	Create(ctx context.Context, archive *models.ReportArchive) error
	List(ctx context.Context, query *ListQuery) ([]models.ReportArchive, int64, error)
}

type archiveRepository struct {
	db *gorm.DB
}

// NewArchiveRepository creates a new report archive repository
func NewArchiveRepository(db *gorm.DB) ArchiveRepository {
	return &archiveRepository{db: db}
}

func (r *archiveRepository) FindByID(ctx context.Context, id string) (*models.ReportArchive, error) {
	var archive models.ReportArchive
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&archive).Error
	if err != nil {
		return nil, err
	}
	return &archive, nil
}

func (r *archiveRepository) Create(ctx context.Context, archive *models.ReportArchive) error {
	return r.db.WithContext(ctx).Create(archive).Error
}

func (r *archiveRepository) List(ctx context.Context, query *ListQuery) ([]models.ReportArchive, int64, error) {
	var archives []models.ReportArchive
	var total int64

	db := r.db.WithContext(ctx).Model(&models.ReportArchive{})

	if query.Filters["kind"] != "" {
		db = db.Where("kind = ?", query.Filters["kind"])
	}
	if query.Filters["mois"] != "" {
		db = db.Where("mois = ?", query.Filters["mois"])
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Order("created_at DESC")

	if query.PerPage > 0 {
		page := query.Page
		if page < 1 {
			page = 1
		}
		db = db.Offset((page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&archives).Error
	return archives, total, err
}
