package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Session is the server-side record of a signed-in user: the backend bearer
// token and the cached current-user document.
type Session struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	UserID    string    `gorm:"size:64;index;not null" json:"user_id"`
	Role      string    `gorm:"size:32" json:"role"`
	UserJSON  string    `gorm:"column:user_json;type:text;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Session
func (Session) TableName() string {
	return "sessions"
}

// IsExpired returns true once the session is past its expiry
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// User decodes the cached current-user document.
func (s *Session) User() (Member, error) {
	var m Member
	if err := json.Unmarshal([]byte(s.UserJSON), &m); err != nil {
		return Member{}, fmt.Errorf("decode session user: %w", err)
	}
	return m, nil
}

// SetUser replaces the cached current-user document.
func (s *Session) SetUser(m Member) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	s.UserJSON = string(data)
	s.UserID = m.ID
	s.Role = m.Role
	return nil
}
