package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"bancoquestoes/internal/models"
	"bancoquestoes/internal/repository"
)

var (
	// ErrQuestionNotFound is returned when a question does not exist or
	// belongs to another author
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidQuestion is returned when question fields fail validation
	ErrInvalidQuestion = errors.New("invalid question")
)

const searchLimit = 10

// QuestionService handles question lifecycle: create, edit, trash, restore,
// permanent delete and search
type QuestionService struct {
	questionRepo *repository.QuestionRepository
}

// NewQuestionService creates a new question service
func NewQuestionService(questionRepo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{questionRepo: questionRepo}
}

func validateQuestion(q *models.Question) error {
	q.Enunciado = strings.TrimSpace(q.Enunciado)
	if q.Enunciado == "" {
		return fmt.Errorf("%w: enunciado is required", ErrInvalidQuestion)
	}
	if !q.TipoQuestao.IsValid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, q.TipoQuestao)
	}
	q.NivelDificuldade = models.NormalizeDifficulty(q.NivelDificuldade)

	if !q.TipoQuestao.HasOptions() {
		q.Opcoes = nil
		return nil
	}

	var opcoes []models.Option
	corretas := 0
	for _, op := range q.Opcoes {
		op.TextoOpcao = strings.TrimSpace(op.TextoOpcao)
		if op.TextoOpcao == "" {
			continue
		}
		if op.IsCorreta {
			corretas++
		}
		opcoes = append(opcoes, op)
	}
	if len(opcoes) < 2 {
		return fmt.Errorf("%w: at least two options required", ErrInvalidQuestion)
	}
	if corretas == 0 {
		return fmt.Errorf("%w: at least one correct option required", ErrInvalidQuestion)
	}
	if q.TipoQuestao == models.SingleChoice && corretas > 1 {
		return fmt.Errorf("%w: single choice allows one correct option", ErrInvalidQuestion)
	}
	q.Opcoes = opcoes
	return nil
}

// Create validates and stores a new question
func (s *QuestionService) Create(q *models.Question) (int64, error) {
	if err := validateQuestion(q); err != nil {
		return 0, err
	}
	return s.questionRepo.Create(q)
}

// Update validates and rewrites an existing question
func (s *QuestionService) Update(q *models.Question) error {
	if err := validateQuestion(q); err != nil {
		return err
	}
	found, err := s.questionRepo.Update(q)
	if err != nil {
		return err
	}
	if !found {
		return ErrQuestionNotFound
	}
	return nil
}

// Get retrieves a question with options, scoped to the author
func (s *QuestionService) Get(id, autorID int64) (*models.Question, error) {
	q, err := s.questionRepo.GetByID(id, autorID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuestionNotFound
	}
	return q, nil
}

// ListActive returns the author's active questions, optionally filtered
func (s *QuestionService) ListActive(autorID int64, filter string) ([]models.Question, error) {
	return s.questionRepo.ListActive(autorID, strings.TrimSpace(filter))
}

// ListTrashed returns the author's trashed questions
func (s *QuestionService) ListTrashed(autorID int64) ([]models.Question, error) {
	return s.questionRepo.ListTrashed(autorID)
}

// Search finds active questions matching the term. Terms under two
// characters return an empty result without touching the database.
func (s *QuestionService) Search(ctx context.Context, autorID int64, term string) ([]models.QuestionSummary, error) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < 2 {
		return []models.QuestionSummary{}, nil
	}
	results, err := s.questionRepo.Search(ctx, autorID, term, searchLimit)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []models.QuestionSummary{}
	}
	return results, nil
}

// SoftDelete moves a question to the trash
func (s *QuestionService) SoftDelete(id, autorID int64) error {
	return s.applyState(s.questionRepo.SoftDelete, id, autorID)
}

// Restore brings a trashed question back to the active list
func (s *QuestionService) Restore(id, autorID int64) error {
	return s.applyState(s.questionRepo.Restore, id, autorID)
}

// DeleteForever permanently removes a trashed question
func (s *QuestionService) DeleteForever(id, autorID int64) error {
	return s.applyState(s.questionRepo.DeleteForever, id, autorID)
}

func (s *QuestionService) applyState(op func(int64, int64) (bool, error), id, autorID int64) error {
	found, err := op(id, autorID)
	if err != nil {
		return err
	}
	if !found {
		return ErrQuestionNotFound
	}
	return nil
}
