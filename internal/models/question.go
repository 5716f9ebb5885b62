package models

import (
	"strings"
	"time"
)

// QuestionType identifies how a question is answered
type QuestionType string

const (
	SingleChoice   QuestionType = "ESCOLHA_UNICA"
	MultipleChoice QuestionType = "MULTIPLA_ESCOLHA"
	Essay          QuestionType = "DISCURSIVA"
)

// IsValid reports whether t is one of the three supported question types
func (t QuestionType) IsValid() bool {
	switch t {
	case SingleChoice, MultipleChoice, Essay:
		return true
	}
	return false
}

// HasOptions reports whether questions of this type carry answer options
func (t QuestionType) HasOptions() bool {
	return t == SingleChoice || t == MultipleChoice
}

// difficultyLabels maps the enumerated codes submitted by forms to the
// human-readable labels stored in the database. Both spellings circulated
// historically; normalizing at the write path keeps the stored values uniform.
var difficultyLabels = map[string]string{
	"FACIL":         "Fácil",
	"MEDIO":         "Médio",
	"DIFICIL":       "Difícil",
	"MUITO DIFICIL": "Muito Difícil",
	"MUITO DIFÍCIL": "Muito Difícil",
}

// NormalizeDifficulty converts a form value like "FACIL" or "MUITO_DIFICIL"
// to its stored label. Unknown values pass through unchanged.
func NormalizeDifficulty(v string) string {
	key := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(v)), "_", " ")
	if label, ok := difficultyLabels[key]; ok {
		return label
	}
	return v
}

// Question is a question-bank record with its answer options
type Question struct {
	ID               int64        `json:"id"`
	Enunciado        string       `json:"enunciado"`
	TipoQuestao      QuestionType `json:"tipo_questao"`
	AutorID          int64        `json:"autor_id"`
	NivelDificuldade string       `json:"nivel_dificuldade"`
	GrauEnsino       string       `json:"grau_ensino"`
	IsActive         bool         `json:"-"`
	CreatedAt        time.Time    `json:"-"`
	Opcoes           []Option     `json:"opcoes,omitempty"`
}

// Option is one candidate answer of a choice-type question
type Option struct {
	ID         int64  `json:"-"`
	QuestaoID  int64  `json:"-"`
	TextoOpcao string `json:"texto_opcao"`
	IsCorreta  bool   `json:"is_correta"`
}

// QuestionSummary is the row shape returned by the quick search and rendered
// in the question list
type QuestionSummary struct {
	ID               int64        `json:"id"`
	Enunciado        string       `json:"enunciado"`
	TipoQuestao      QuestionType `json:"tipo_questao"`
	NivelDificuldade string       `json:"nivel_dificuldade"`
	GrauEnsino       string       `json:"grau_ensino"`
}

// GeneratedQuestion is the shape produced by the AI generator; option text
// uses the short "texto" key on the wire, unlike stored options
type GeneratedQuestion struct {
	Enunciado string            `json:"enunciado"`
	Tipo      string            `json:"tipo,omitempty"`
	Nivel     string            `json:"nivel,omitempty"`
	Grau      string            `json:"grau,omitempty"`
	Opcoes    []GeneratedOption `json:"opcoes"`
}

// GeneratedOption is one AI-generated answer option
type GeneratedOption struct {
	Texto     string `json:"texto"`
	IsCorreta bool   `json:"is_correta"`
}
