package database

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(Options{
		Type: "sqlite",
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestMigrations tests that the schema is created by the migration runner
func TestMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	tables := []string{"usuarios", "sessions", "password_reset_tokens", "questoes", "opcoes"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}
}

// TestMigrationsAreIdempotent tests that re-running migrations is a no-op
func TestMigrationsAreIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	if err := db.RunMigrations(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to count migrations: %v", err)
	}
	if count == 0 {
		t.Error("No migrations were recorded")
	}
}

// TestTransactions tests commit and rollback through the Tx wrapper
func TestTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	id, err := tx.ExecReturningID(
		"INSERT INTO usuarios (nome, sobrenome, email, senha_hash) VALUES (?, ?, ?, ?)",
		"Ana", "Silva", "ana@example.com", "hash")
	if err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}
	if id == 0 {
		t.Error("ExecReturningID returned no id")
	}

	// A rolled back insert must not be visible
	tx, err = db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	if _, err := tx.ExecReturningID(
		"INSERT INTO usuarios (nome, sobrenome, email, senha_hash) VALUES (?, ?, ?, ?)",
		"Bruno", "Santos", "bruno@example.com", "hash"); err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Failed to roll back transaction: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM usuarios WHERE email = ?", "bruno@example.com").Scan(&count); err != nil {
		t.Fatalf("Failed to count users: %v", err)
	}
	if count != 0 {
		t.Error("Rolled back insert is visible")
	}
}

// TestForeignKeyCascade tests that deleting a user removes their sessions
func TestForeignKeyCascade(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	userID, err := db.ExecReturningID(
		"INSERT INTO usuarios (nome, sobrenome, email, senha_hash) VALUES (?, ?, ?, ?)",
		"Ana", "Silva", "ana@example.com", "hash")
	if err != nil {
		t.Fatalf("Failed to insert user: %v", err)
	}
	if _, err := db.Exec(
		"INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, datetime('now', '+1 day'))",
		"sess-1", userID); err != nil {
		t.Fatalf("Failed to insert session: %v", err)
	}

	if _, err := db.Exec("DELETE FROM usuarios WHERE id = ?", userID); err != nil {
		t.Fatalf("Failed to delete user: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sessions WHERE user_id = ?", userID).Scan(&count); err != nil {
		t.Fatalf("Failed to count sessions: %v", err)
	}
	if count != 0 {
		t.Error("Sessions were not removed with their user")
	}
}
