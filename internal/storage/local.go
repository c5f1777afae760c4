package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// LocalStorage handles file storage on the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Save writes data under subDir/YYYY/MM and returns the relative path. The
// stored name keeps a sanitized copy of filename behind a unique prefix so two
// reports generated in the same millisecond never collide.
func (s *LocalStorage) Save(data []byte, filename string, subDir string) (string, error) {
	dir := filepath.Join(s.basePath, subDir, time.Now().Format("2006/01"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	stored := uuid.NewString()[:8] + "_" + SanitizeName(filename)
	filePath := filepath.Join(dir, stored)

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	relPath, err := filepath.Rel(s.basePath, filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	return filepath.ToSlash(relPath), nil
}

// Read returns the content of a stored file
func (s *LocalStorage) Read(relativePath string) ([]byte, error) {
	full, err := s.resolve(relativePath)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

// Delete removes a file
func (s *LocalStorage) Delete(relativePath string) error {
	full, err := s.resolve(relativePath)
	if err != nil {
		return err
	}
	return os.Remove(full)
}

// Exists checks if a file exists
func (s *LocalStorage) Exists(relativePath string) bool {
	full, err := s.resolve(relativePath)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// resolve joins a relative path onto the base path, refusing to leave it.
func (s *LocalStorage) resolve(relativePath string) (string, error) {
	full := filepath.Join(s.basePath, filepath.FromSlash(relativePath))
	rel, err := filepath.Rel(s.basePath, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes storage root", relativePath)
	}
	return full, nil
}

// SanitizeName keeps letters, digits, dots, dashes and underscores.
func SanitizeName(name string) string {
	name = unsafeChars.ReplaceAllString(filepath.Base(name), "_")
	name = strings.Trim(name, "_")
	if name == "" || name == "." {
		return "file"
	}
	return name
}
