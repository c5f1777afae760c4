package repository

import (
	"context"
	"time"

	"github.com/allforone/afo-portal/internal/models"
	"gorm.io/gorm"
)

// SessionRepository defines the interface for session data access
type SessionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	Update(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Create stores expiry in UTC; SQLite compares times as text.
func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	session.ExpiresAt = session.ExpiresAt.UTC()
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) Update(ctx context.Context, session *models.Session) error {
	session.ExpiresAt = session.ExpiresAt.UTC()
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error
}

func (r *sessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{}).Error
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", now.UTC()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
