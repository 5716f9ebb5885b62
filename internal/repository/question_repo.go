package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bancoquestoes/internal/database"
	"bancoquestoes/internal/models"
)

// QuestionRepository handles database operations for questions and their
// answer options. Listing and mutation are always scoped to the author.
type QuestionRepository struct {
	db *database.DB
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *database.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Create inserts a question and its options in a single transaction
func (r *QuestionRepository) Create(q *models.Question) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := tx.ExecReturningID(`
		INSERT INTO questoes (enunciado, tipo_questao, autor_id, nivel_dificuldade, grau_ensino)
		VALUES (?, ?, ?, ?, ?)
	`, q.Enunciado, q.TipoQuestao, q.AutorID, q.NivelDificuldade, q.GrauEnsino)
	if err != nil {
		return 0, fmt.Errorf("failed to create question: %w", err)
	}

	if err := insertOptions(tx, id, q.Opcoes); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit question: %w", err)
	}
	return id, nil
}

// Update replaces a question's fields and options. Options are rewritten
// wholesale, matching how the edit form submits them. Returns false when the
// question does not exist or belongs to another author.
func (r *QuestionRepository) Update(q *models.Question) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE questoes
		SET enunciado = ?, tipo_questao = ?, nivel_dificuldade = ?, grau_ensino = ?
		WHERE id = ? AND autor_id = ? AND is_active = ?
	`, q.Enunciado, q.TipoQuestao, q.NivelDificuldade, q.GrauEnsino, q.ID, q.AutorID, true)
	if err != nil {
		return false, fmt.Errorf("failed to update question: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	if _, err := tx.Exec("DELETE FROM opcoes WHERE questao_id = ?", q.ID); err != nil {
		return false, fmt.Errorf("failed to clear options: %w", err)
	}
	if err := insertOptions(tx, q.ID, q.Opcoes); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit question update: %w", err)
	}
	return true, nil
}

func insertOptions(tx *database.Tx, questionID int64, opcoes []models.Option) error {
	for _, op := range opcoes {
		_, err := tx.Exec(`
			INSERT INTO opcoes (questao_id, texto_opcao, is_correta)
			VALUES (?, ?, ?)
		`, questionID, op.TextoOpcao, op.IsCorreta)
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}
	return nil
}

// GetByID retrieves an active question with its options, scoped to the author
func (r *QuestionRepository) GetByID(id, autorID int64) (*models.Question, error) {
	query := `
		SELECT id, enunciado, tipo_questao, autor_id, nivel_dificuldade, grau_ensino, is_active, created_at
		FROM questoes
		WHERE id = ? AND autor_id = ? AND is_active = ?
	`
	q := &models.Question{}
	err := r.db.QueryRow(query, id, autorID, true).Scan(
		&q.ID,
		&q.Enunciado,
		&q.TipoQuestao,
		&q.AutorID,
		&q.NivelDificuldade,
		&q.GrauEnsino,
		&q.IsActive,
		&q.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	opcoes, err := r.getOptions(q.ID)
	if err != nil {
		return nil, err
	}
	q.Opcoes = opcoes
	return q, nil
}

func (r *QuestionRepository) getOptions(questionID int64) ([]models.Option, error) {
	rows, err := r.db.Query(`
		SELECT id, questao_id, texto_opcao, is_correta
		FROM opcoes
		WHERE questao_id = ?
		ORDER BY id
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get options: %w", err)
	}
	defer rows.Close()

	var opcoes []models.Option
	for rows.Next() {
		var op models.Option
		if err := rows.Scan(&op.ID, &op.QuestaoID, &op.TextoOpcao, &op.IsCorreta); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		opcoes = append(opcoes, op)
	}
	return opcoes, rows.Err()
}

// ListActive returns the author's active questions, newest first. A non-empty
// filter narrows the list by statement text.
func (r *QuestionRepository) ListActive(autorID int64, filter string) ([]models.Question, error) {
	query := `
		SELECT id, enunciado, tipo_questao, autor_id, nivel_dificuldade, grau_ensino, is_active, created_at
		FROM questoes
		WHERE autor_id = ? AND is_active = ?
	`
	args := []interface{}{autorID, true}
	if filter != "" {
		query += " AND (LOWER(enunciado) LIKE ? OR LOWER(nivel_dificuldade) LIKE ? OR LOWER(grau_ensino) LIKE ?)"
		pattern := "%" + strings.ToLower(filter) + "%"
		args = append(args, pattern, pattern, pattern)
	}
	query += " ORDER BY created_at DESC, id DESC"

	return r.listQuestions(query, args...)
}

// ListTrashed returns the author's soft-deleted questions
func (r *QuestionRepository) ListTrashed(autorID int64) ([]models.Question, error) {
	query := `
		SELECT id, enunciado, tipo_questao, autor_id, nivel_dificuldade, grau_ensino, is_active, created_at
		FROM questoes
		WHERE autor_id = ? AND is_active = ?
		ORDER BY created_at DESC, id DESC
	`
	return r.listQuestions(query, autorID, false)
}

func (r *QuestionRepository) listQuestions(query string, args ...interface{}) ([]models.Question, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		err := rows.Scan(
			&q.ID,
			&q.Enunciado,
			&q.TipoQuestao,
			&q.AutorID,
			&q.NivelDificuldade,
			&q.GrauEnsino,
			&q.IsActive,
			&q.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Search performs a case-insensitive substring match over the author's
// active questions, across statement, difficulty and school level, capped at
// limit results. The context lets a caller abandon a search superseded by
// newer keystrokes.
func (r *QuestionRepository) Search(ctx context.Context, autorID int64, term string, limit int) ([]models.QuestionSummary, error) {
	query := `
		SELECT id, enunciado, tipo_questao, nivel_dificuldade, grau_ensino
		FROM questoes
		WHERE autor_id = ? AND is_active = ?
		  AND (LOWER(enunciado) LIKE ? OR LOWER(nivel_dificuldade) LIKE ? OR LOWER(grau_ensino) LIKE ?)
		ORDER BY id DESC
		LIMIT ?
	`
	pattern := "%" + strings.ToLower(term) + "%"
	rows, err := r.db.QueryContext(ctx, query, autorID, true, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search questions: %w", err)
	}
	defer rows.Close()

	var results []models.QuestionSummary
	for rows.Next() {
		var s models.QuestionSummary
		if err := rows.Scan(&s.ID, &s.Enunciado, &s.TipoQuestao, &s.NivelDificuldade, &s.GrauEnsino); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

// SoftDelete moves a question to the trash. Returns false when the question
// is not found for this author.
func (r *QuestionRepository) SoftDelete(id, autorID int64) (bool, error) {
	return r.setActive(id, autorID, false)
}

// Restore brings a trashed question back
func (r *QuestionRepository) Restore(id, autorID int64) (bool, error) {
	return r.setActive(id, autorID, true)
}

func (r *QuestionRepository) setActive(id, autorID int64, active bool) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE questoes
		SET is_active = ?
		WHERE id = ? AND autor_id = ? AND is_active = ?
	`, active, id, autorID, !active)
	if err != nil {
		return false, fmt.Errorf("failed to update question state: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read state update result: %w", err)
	}
	return rows > 0, nil
}

// DeleteForever permanently removes a trashed question and its options
func (r *QuestionRepository) DeleteForever(id, autorID int64) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM opcoes WHERE questao_id = ?", id); err != nil {
		return false, fmt.Errorf("failed to delete options: %w", err)
	}

	result, err := tx.Exec(`
		DELETE FROM questoes
		WHERE id = ? AND autor_id = ? AND is_active = ?
	`, id, autorID, false)
	if err != nil {
		return false, fmt.Errorf("failed to delete question: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete: %w", err)
	}
	return true, nil
}

// GetOwnedWithOptions loads the author's active questions among ids, with
// options, preserving the requested order. Questions the author does not own
// are silently skipped.
func (r *QuestionRepository) GetOwnedWithOptions(ids []int64, autorID int64) ([]models.Question, error) {
	var questions []models.Question
	for _, id := range ids {
		q, err := r.GetByID(id, autorID)
		if err != nil {
			return nil, err
		}
		if q == nil {
			continue
		}
		questions = append(questions, *q)
	}
	return questions, nil
}
