package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bancoquestoes/internal/llm"
	"bancoquestoes/internal/models"
)

// ErrAIUnavailable is returned when no language model provider is configured
var ErrAIUnavailable = errors.New("ai provider not configured")

// ChatReply is the assistant's answer to a chat message. Question is set when
// the model produced a ready-to-save question instead of plain conversation.
type ChatReply struct {
	Message  string
	Question *models.GeneratedQuestion
}

// AIService generates questions and answers chat messages through a
// language model provider
type AIService struct {
	provider llm.Provider
	model    string
	timeout  time.Duration
}

// NewAIService creates a new AI service. Provider may be nil, in which case
// every call fails with ErrAIUnavailable.
func NewAIService(provider llm.Provider, model string, timeout time.Duration) *AIService {
	return &AIService{provider: provider, model: model, timeout: timeout}
}

// Enabled reports whether a provider is configured
func (s *AIService) Enabled() bool {
	return s.provider != nil
}

const generateSystemPrompt = `Você é um assistente pedagógico que cria questões de prova em português.
Responda SOMENTE com um objeto JSON, sem texto adicional, no formato:
{"enunciado": "...", "opcoes": [{"texto": "...", "is_correta": true}]}
Para questões do tipo DISCURSIVA, "opcoes" deve ser uma lista vazia.
Questões de escolha têm 4 opções; ESCOLHA_UNICA tem exatamente uma opção correta, MULTIPLA_ESCOLHA tem duas ou mais.`

// GenerateQuestion asks the model for a question of the given type,
// difficulty and school level. Area optionally narrows the subject.
func (s *AIService) GenerateQuestion(ctx context.Context, tipo models.QuestionType, nivel, grau, area string) (*models.GeneratedQuestion, error) {
	if s.provider == nil {
		return nil, ErrAIUnavailable
	}
	if !tipo.IsValid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, tipo)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	userPrompt := fmt.Sprintf(
		"Crie uma questão do tipo %s, nível de dificuldade %s, para o grau de ensino %s.",
		tipo, nivel, grau,
	)
	if area = strings.TrimSpace(area); area != "" {
		userPrompt += fmt.Sprintf(" A questão deve ser sobre %s.", area)
	}

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: generateSystemPrompt},
			{Role: llm.RoleUser, Content: userPrompt},
		},
		Temperature: 0.7,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate question: %w", err)
	}

	var generated models.GeneratedQuestion
	if err := json.Unmarshal([]byte(llm.ExtractJSON(resp.Content)), &generated); err != nil {
		return nil, fmt.Errorf("failed to parse generated question: %w", err)
	}
	if strings.TrimSpace(generated.Enunciado) == "" {
		return nil, fmt.Errorf("model returned an empty question")
	}

	generated.Tipo = string(tipo)
	generated.Nivel = models.NormalizeDifficulty(nivel)
	generated.Grau = grau
	if !tipo.HasOptions() {
		generated.Opcoes = nil
	}
	return &generated, nil
}

const chatSystemPrompt = `Você é o assistente do Banco de Questões, um sistema de gestão de questões de prova para professores.
Converse em português e ajude o professor a elaborar questões.
Responda SOMENTE com um objeto JSON em um destes dois formatos:
1. Conversa normal: {"type": "message", "message": "..."}
2. Quando o professor pedir uma questão pronta:
{"type": "question", "data": {"enunciado": "...", "tipo": "ESCOLHA_UNICA|MULTIPLA_ESCOLHA|DISCURSIVA", "nivel": "...", "grau": "...", "opcoes": [{"texto": "...", "is_correta": true}]}}`

// chatModelReply mirrors the JSON envelope the chat prompt asks for
type chatModelReply struct {
	Type    string                    `json:"type"`
	Message string                    `json:"message"`
	Data    *models.GeneratedQuestion `json:"data"`
}

// Chat sends a message with prior conversation turns and returns the reply.
// History entries pair a speaker ("user" or "bot") with the text said.
func (s *AIService) Chat(ctx context.Context, message string, history [][2]string) (*ChatReply, error) {
	if s.provider == nil {
		return nil, ErrAIUnavailable
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("message is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	messages := []llm.Message{{Role: llm.RoleSystem, Content: chatSystemPrompt}}
	for _, turn := range history {
		role := llm.RoleUser
		if turn[0] == "bot" {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: turn[1]})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: 0.7,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	var reply chatModelReply
	if err := json.Unmarshal([]byte(llm.ExtractJSON(resp.Content)), &reply); err != nil {
		// Models occasionally ignore the envelope. Treat the raw text
		// as the reply rather than failing the conversation.
		return &ChatReply{Message: resp.Content}, nil
	}

	if reply.Type == "question" && reply.Data != nil && strings.TrimSpace(reply.Data.Enunciado) != "" {
		reply.Data.Nivel = models.NormalizeDifficulty(reply.Data.Nivel)
		return &ChatReply{Question: reply.Data}, nil
	}
	if reply.Message == "" {
		reply.Message = resp.Content
	}
	return &ChatReply{Message: reply.Message}, nil
}
