package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bancoquestoes/internal/repository"
)

var (
	// ErrUnsupportedFormat is returned for unknown export formats
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrNothingToExport is returned when no requested question is available
	ErrNothingToExport = errors.New("nothing to export")
)

// ExportDocument is a rendered export ready to be served as a download
type ExportDocument struct {
	Filename    string
	ContentType string
	Data        []byte
}

// exportedQuestion is the shape each question takes in a JSON export
type exportedQuestion struct {
	ID        int64            `json:"id"`
	Enunciado string           `json:"enunciado"`
	Tipo      string           `json:"tipo_questao"`
	Opcoes    []exportedOption `json:"opcoes"`
}

type exportedOption struct {
	Texto     string `json:"texto"`
	IsCorreta bool   `json:"is_correta"`
}

// ExportService renders selected questions as downloadable files
type ExportService struct {
	questionRepo *repository.QuestionRepository
	now          func() time.Time
}

// NewExportService creates a new export service
func NewExportService(questionRepo *repository.QuestionRepository) *ExportService {
	return &ExportService{questionRepo: questionRepo, now: time.Now}
}

// Export loads the author's questions among ids and renders them in the
// requested format. Questions owned by other authors are skipped.
func (s *ExportService) Export(ids []int64, autorID int64, format string) (*ExportDocument, error) {
	questions, err := s.questionRepo.GetOwnedWithOptions(ids, autorID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNothingToExport
	}

	exported := make([]exportedQuestion, 0, len(questions))
	for _, q := range questions {
		eq := exportedQuestion{
			ID:        q.ID,
			Enunciado: q.Enunciado,
			Tipo:      string(q.TipoQuestao),
			Opcoes:    []exportedOption{},
		}
		for _, op := range q.Opcoes {
			eq.Opcoes = append(eq.Opcoes, exportedOption{Texto: op.TextoOpcao, IsCorreta: op.IsCorreta})
		}
		exported = append(exported, eq)
	}

	var data []byte
	var contentType string
	switch format {
	case "json":
		data, err = renderJSON(exported)
		contentType = "application/json"
	case "txt":
		data = renderTXT(exported)
		contentType = "text/plain; charset=utf-8"
	case "csv":
		data, err = renderCSV(exported)
		contentType = "text/csv; charset=utf-8"
	case "md":
		data = renderMarkdown(exported)
		contentType = "text/markdown; charset=utf-8"
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("questoes_%s.%s", s.now().Format("20060102_150405"), format)
	return &ExportDocument{Filename: filename, ContentType: contentType, Data: data}, nil
}

func renderJSON(questions []exportedQuestion) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(questions); err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return buf.Bytes(), nil
}

func renderTXT(questions []exportedQuestion) []byte {
	var b strings.Builder
	for _, q := range questions {
		fmt.Fprintf(&b, "ID: %d\nEnunciado: %s\nTipo: %s\n", q.ID, q.Enunciado, q.Tipo)
		if len(q.Opcoes) > 0 {
			b.WriteString("Opções:\n")
			for i, op := range q.Opcoes {
				correta := ""
				if op.IsCorreta {
					correta = "[CORRETA]"
				}
				fmt.Fprintf(&b, "  %d. %s %s\n", i+1, op.Texto, correta)
			}
		}
		b.WriteString("\n" + strings.Repeat("=", 50) + "\n\n")
	}
	return []byte(b.String())
}

func renderCSV(questions []exportedQuestion) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "enunciado", "tipo_questao", "opcao", "is_correta"}); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	for _, q := range questions {
		id := fmt.Sprintf("%d", q.ID)
		if len(q.Opcoes) == 0 {
			if err := w.Write([]string{id, q.Enunciado, q.Tipo, "", ""}); err != nil {
				return nil, fmt.Errorf("failed to write csv: %w", err)
			}
			continue
		}
		for _, op := range q.Opcoes {
			correta := "false"
			if op.IsCorreta {
				correta = "true"
			}
			if err := w.Write([]string{id, q.Enunciado, q.Tipo, op.Texto, correta}); err != nil {
				return nil, fmt.Errorf("failed to write csv: %w", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func renderMarkdown(questions []exportedQuestion) []byte {
	var b strings.Builder
	for i, q := range questions {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, q.Enunciado)
		for j, op := range q.Opcoes {
			correta := ""
			if op.IsCorreta {
				correta = " **(Correta)**"
			}
			fmt.Fprintf(&b, "%c) %s%s\n", 'a'+rune(j), op.Texto, correta)
		}
		b.WriteString("\n")
	}
	return []byte(b.String())
}
