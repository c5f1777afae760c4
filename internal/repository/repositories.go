package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Session SessionRepository
	Archive ArchiveRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Session: NewSessionRepository(db),
		Archive: NewArchiveRepository(db),
	}
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}
