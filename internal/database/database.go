package database

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/allforone/afo-portal/internal/models"
	pkgLogger "github.com/allforone/afo-portal/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the portal database. Postgres DSNs are used as-is; a
// "file:" URL or a path ending in ".db" selects SQLite for local development.
func Connect(databaseURL string) (*gorm.DB, error) {
	logLevel := logger.Silent
	if os.Getenv("ENVIRONMENT") != "production" {
		logLevel = logger.Info
	}

	gormLogger := pkgLogger.NewGormLogger(
		logLevel,
		200*time.Millisecond,
	)

	db, err := gorm.Open(Dialector(databaseURL), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Dialector chooses the gorm driver for a database URL.
func Dialector(databaseURL string) gorm.Dialector {
	if IsSQLite(databaseURL) {
		return sqlite.Open(strings.TrimPrefix(databaseURL, "sqlite://"))
	}
	return postgres.Open(databaseURL)
}

// IsSQLite reports whether the URL designates a SQLite database.
func IsSQLite(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, "file:") ||
		strings.HasPrefix(databaseURL, "sqlite://") ||
		strings.HasSuffix(databaseURL, ".db")
}

// Migrate creates or updates the tables owned by the portal. Members and
// dues live in the AFO backend and are never stored here.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Session{}, &models.ReportArchive{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
