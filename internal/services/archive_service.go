package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allforone/afo-portal/internal/jobs"
	"github.com/allforone/afo-portal/internal/models"
	"github.com/allforone/afo-portal/internal/repository"
	"github.com/allforone/afo-portal/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const archiveSubDir = "reports"

// FileStore is the file storage the archive writes to.
type FileStore interface {
	Save(data []byte, filename string, subDir string) (string, error)
	Read(relativePath string) ([]byte, error)
	Delete(relativePath string) error
	Exists(relativePath string) bool
}

// ArchiveList is one page of archived reports.
type ArchiveList struct {
	Archives []models.ReportArchive `json:"archives"`
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	PerPage  int                    `json:"per_page"`
}

// ArchiveService keeps a copy of every generated report
type ArchiveService struct {
	repo   repository.ArchiveRepository
	store  FileStore
	worker *jobs.Worker
	now    func() time.Time
}

// NewArchiveService creates a new archive service
func NewArchiveService(repo repository.ArchiveRepository, store FileStore, worker *jobs.Worker) *ArchiveService {
	return &ArchiveService{repo: repo, store: store, worker: worker, now: time.Now}
}

// Archive stores the report bytes and records them.
func (s *ArchiveService) Archive(ctx context.Context, report *Report, generatedBy string) (*models.ReportArchive, error) {
	path, err := s.store.Save(report.Data, report.FileName, archiveSubDir)
	if err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}

	archive := &models.ReportArchive{
		ID:          uuid.NewString(),
		Kind:        report.Kind,
		Mois:        report.Mois,
		FileName:    report.FileName,
		StoragePath: path,
		Size:        int64(len(report.Data)),
		GeneratedBy: generatedBy,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, archive); err != nil {
		if delErr := s.store.Delete(path); delErr != nil {
			logger.Warn("failed to remove unrecorded report", "path", path, "error", delErr)
		}
		return nil, fmt.Errorf("record report: %w", err)
	}
	return archive, nil
}

// ArchiveAsync queues the archive on the worker pool. Failures are logged
// only: the download never depends on the archive.
func (s *ArchiveService) ArchiveAsync(report *Report, generatedBy string) {
	if s.worker == nil {
		return
	}
	s.worker.Enqueue("archive-report", func(ctx context.Context) error {
		archive, err := s.Archive(ctx, report, generatedBy)
		if err != nil {
			return err
		}
		logger.Info("report archived", "archive_id", archive.ID, "file", archive.FileName, "size", archive.Size)
		return nil
	})
}

// List returns archived reports, newest first.
func (s *ArchiveService) List(ctx context.Context, query *repository.ListQuery) (*ArchiveList, error) {
	archives, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	return &ArchiveList{Archives: archives, Total: total, Page: query.Page, PerPage: query.PerPage}, nil
}

// Open returns an archived report with its content.
func (s *ArchiveService) Open(ctx context.Context, id string) (*models.ReportArchive, []byte, error) {
	archive, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if !s.store.Exists(archive.StoragePath) {
		logger.Warn("archived report file missing", "archive_id", archive.ID, "path", archive.StoragePath)
		return nil, nil, ErrNotFound
	}
	data, err := s.store.Read(archive.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("read report: %w", err)
	}
	return archive, data, nil
}
