package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bancoquestoes/internal/models"
	"bancoquestoes/internal/repository"
	"bancoquestoes/internal/security"
)

var (
	// ErrInvalidCredentials is returned when login fails
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidSession is returned when a session is missing or expired
	ErrInvalidSession = errors.New("invalid or expired session")
	// ErrWrongPassword is returned when the current password does not match
	ErrWrongPassword = errors.New("wrong current password")
	// ErrInvalidPhoto is returned when an upload is not an image data URL
	ErrInvalidPhoto = errors.New("invalid photo data")
	// ErrPhotoTooLarge is returned when an upload exceeds the size limit
	ErrPhotoTooLarge = errors.New("photo too large")
	// ErrInvalidResetToken is returned for unknown, expired or used tokens
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

// AuthService handles authentication and account management
type AuthService struct {
	userRepo        *repository.UserRepository
	emailService    *EmailService
	sessionDuration time.Duration
	uploadMaxBytes  int64
	baseURL         string
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo *repository.UserRepository, emailService *EmailService, sessionDuration time.Duration, uploadMaxBytes int64, baseURL string) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		emailService:    emailService,
		sessionDuration: sessionDuration,
		uploadMaxBytes:  uploadMaxBytes,
		baseURL:         baseURL,
	}
}

// Register creates a new user account
func (s *AuthService) Register(nome, sobrenome, email, senha string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("email already registered: %s", email)
	}

	hash, err := security.HashPassword(senha)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.userRepo.CreateUser(nome, sobrenome, email, hash)
}

// Login validates credentials and creates a session
func (s *AuthService) Login(email, senha string) (*models.User, *models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(senha, user.SenhaHash) {
		return nil, nil, ErrInvalidCredentials
	}

	sessionID := security.GenerateSessionID()
	session, err := s.userRepo.CreateSession(sessionID, user.ID, time.Now().Add(s.sessionDuration))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	return user, session, nil
}

// ValidateSession resolves a session ID to its user
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil || session.IsExpired() {
		return nil, ErrInvalidSession
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidSession
	}
	return user, nil
}

// Logout removes a session
func (s *AuthService) Logout(sessionID string) error {
	return s.userRepo.DeleteSession(sessionID)
}

// CleanupExpiredSessions removes expired sessions and reset tokens
func (s *AuthService) CleanupExpiredSessions() error {
	if err := s.userRepo.DeleteExpiredSessions(); err != nil {
		return err
	}
	return s.userRepo.DeleteExpiredPasswordResetTokens()
}

// UpdateProfile changes the user's display name
func (s *AuthService) UpdateProfile(userID int64, nome, sobrenome string) error {
	nome = strings.TrimSpace(nome)
	sobrenome = strings.TrimSpace(sobrenome)
	if nome == "" {
		return fmt.Errorf("nome is required")
	}
	return s.userRepo.UpdateProfile(userID, nome, sobrenome)
}

// ChangePassword verifies the current password and sets a new one
func (s *AuthService) ChangePassword(userID int64, senhaAtual, senhaNova string) error {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return ErrInvalidSession
	}

	if !security.CheckPassword(senhaAtual, user.SenhaHash) {
		return ErrWrongPassword
	}
	if len(senhaNova) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	hash, err := security.HashPassword(senhaNova)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(userID, hash)
}

// UpdatePhoto stores a profile photo submitted as a data URL
func (s *AuthService) UpdatePhoto(userID int64, dataURL string) error {
	if !strings.HasPrefix(dataURL, "data:image/") {
		return ErrInvalidPhoto
	}
	if int64(len(dataURL)) > s.uploadMaxBytes {
		return ErrPhotoTooLarge
	}

	found, err := s.userRepo.UpdatePhoto(userID, dataURL)
	if err != nil {
		return err
	}
	if !found {
		return ErrInvalidSession
	}
	return nil
}

// GetTheme returns the user's stored theme, defaulting to light
func (s *AuthService) GetTheme(userID int64) (string, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", ErrInvalidSession
	}
	if user.Theme == "" {
		return "light", nil
	}
	return user.Theme, nil
}

// SetTheme persists the user's theme preference
func (s *AuthService) SetTheme(userID int64, theme string) error {
	if theme != "light" && theme != "dark" {
		return fmt.Errorf("unknown theme: %s", theme)
	}
	return s.userRepo.UpdateTheme(userID, theme)
}

// RequestPasswordReset issues a reset token and mails the reset link. It
// succeeds silently for unknown emails so the endpoint does not reveal which
// addresses exist.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil
	}

	if err := s.userRepo.DeleteUserPasswordResetTokens(user.ID); err != nil {
		return err
	}

	token := security.GenerateSessionID()
	if err := s.userRepo.CreatePasswordResetToken(token, user.ID, time.Now().Add(time.Hour)); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset_password?token=%s", strings.TrimRight(s.baseURL, "/"), token)
	return s.emailService.SendPasswordReset(ctx, user.Email, user.NomeCompleto(), resetURL)
}

// ResetPassword consumes a reset token and sets a new password
func (s *AuthService) ResetPassword(token, senhaNova string) error {
	t, err := s.userRepo.GetPasswordResetToken(token)
	if err != nil {
		return fmt.Errorf("failed to get reset token: %w", err)
	}
	if t == nil || t.Used || t.IsExpired() {
		return ErrInvalidResetToken
	}
	if len(senhaNova) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	hash, err := security.HashPassword(senhaNova)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(t.UserID, hash); err != nil {
		return err
	}
	return s.userRepo.MarkPasswordResetTokenAsUsed(token)
}
