package models

import (
	"strings"
	"time"
)

// User represents a teacher account in the question bank
type User struct {
	ID         int64
	Nome       string
	Sobrenome  string
	Email      string
	SenhaHash  string
	FotoPerfil string // data URL of the profile photo, empty when unset
	Theme      string // "light" or "dark", empty means light
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NomeCompleto returns the display name shown in the top bar and welcome screen
func (u *User) NomeCompleto() string {
	return strings.TrimSpace(u.Nome + " " + u.Sobrenome)
}

// Session represents an authenticated session
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// PasswordResetToken represents a token for password reset
type PasswordResetToken struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
	Used      bool
}

// IsExpired checks if the reset token has expired
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
