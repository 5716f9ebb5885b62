package models

import "testing"

func TestNormalizeDifficulty(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"easy code", "FACIL", "Fácil"},
		{"medium code", "MEDIO", "Médio"},
		{"hard code", "DIFICIL", "Difícil"},
		{"very hard with underscore", "MUITO_DIFICIL", "Muito Difícil"},
		{"very hard accented", "MUITO DIFÍCIL", "Muito Difícil"},
		{"lowercase input", "facil", "Fácil"},
		{"already a label", "Fácil", "Fácil"},
		{"unknown passes through", "Impossível", "Impossível"},
		{"empty passes through", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeDifficulty(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeDifficulty(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestQuestionTypeIsValid(t *testing.T) {
	valid := []QuestionType{SingleChoice, MultipleChoice, Essay}
	for _, qt := range valid {
		if !qt.IsValid() {
			t.Errorf("IsValid() = false for %q, want true", qt)
		}
	}

	if QuestionType("VERDADEIRO_FALSO").IsValid() {
		t.Error("IsValid() should be false for unknown type")
	}
	if QuestionType("").IsValid() {
		t.Error("IsValid() should be false for empty type")
	}
}

func TestQuestionTypeHasOptions(t *testing.T) {
	if !SingleChoice.HasOptions() {
		t.Error("single choice questions should carry options")
	}
	if !MultipleChoice.HasOptions() {
		t.Error("multiple choice questions should carry options")
	}
	if Essay.HasOptions() {
		t.Error("essay questions should not carry options")
	}
}
