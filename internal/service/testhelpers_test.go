package service

import (
	"path/filepath"
	"testing"
	"time"

	"bancoquestoes/internal/database"
	"bancoquestoes/internal/models"
	"bancoquestoes/internal/repository"
)

// setupTestDB opens a throwaway SQLite database with the full schema applied
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.Options{
		Type: "sqlite",
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func newTestAuthService(t *testing.T, db *database.DB) *AuthService {
	t.Helper()

	emailService, err := NewEmailService("", "", "")
	if err != nil {
		t.Fatalf("failed to create email service: %v", err)
	}
	userRepo := repository.NewUserRepository(db)
	return NewAuthService(userRepo, emailService, 24*time.Hour, 16*1024*1024, "http://localhost:4000")
}

func createTestUser(t *testing.T, svc *AuthService, email string) *models.User {
	t.Helper()

	user, err := svc.Register("Ana", "Silva", email, "senha-forte")
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestQuestion(t *testing.T, svc *QuestionService, autorID int64, enunciado string) int64 {
	t.Helper()

	id, err := svc.Create(&models.Question{
		Enunciado:        enunciado,
		TipoQuestao:      models.SingleChoice,
		AutorID:          autorID,
		NivelDificuldade: "FACIL",
		GrauEnsino:       "Ensino Fundamental",
		Opcoes: []models.Option{
			{TextoOpcao: "Opção A", IsCorreta: true},
			{TextoOpcao: "Opção B", IsCorreta: false},
		},
	})
	if err != nil {
		t.Fatalf("failed to create test question: %v", err)
	}
	return id
}
