package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/yuin/goldmark"

	"bancoquestoes/internal/models"
	"bancoquestoes/internal/service"
)

// AIHandler handles question generation and the assistant chat
type AIHandler struct {
	aiService *service.AIService
	markdown  goldmark.Markdown
}

// NewAIHandler creates a new AI handler
func NewAIHandler(aiService *service.AIService) *AIHandler {
	return &AIHandler{
		aiService: aiService,
		// Default goldmark escapes raw HTML, so model output cannot
		// inject markup into the chat panel.
		markdown: goldmark.New(),
	}
}

// Generate produces a question draft for the add-question form
func (h *AIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Tipo  string `json:"tipo"`
		Nivel string `json:"nivel"`
		Grau  string `json:"grau"`
		Area  string `json:"area"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Dados inválidos", nil)
		return
	}

	generated, err := h.aiService.GenerateQuestion(r.Context(), models.QuestionType(payload.Tipo), payload.Nivel, payload.Grau, payload.Area)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAIUnavailable):
			respondJSONError(w, http.StatusServiceUnavailable, "Assistente de IA não configurado", nil)
		case errors.Is(err, service.ErrInvalidQuestion):
			respondJSONError(w, http.StatusBadRequest, "Tipo de questão inválido", nil)
		default:
			respondJSONError(w, http.StatusBadGateway, "Erro ao gerar a questão", err)
		}
		return
	}
	respondJSON(w, http.StatusOK, generated)
}

// Chat answers an assistant message. Plain replies also carry a rendered
// message_html field so the chat panel can show formatted text.
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message string      `json:"message"`
		History [][2]string `json:"history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Dados inválidos", nil)
		return
	}

	reply, err := h.aiService.Chat(r.Context(), payload.Message, payload.History)
	if err != nil {
		if errors.Is(err, service.ErrAIUnavailable) {
			respondJSONError(w, http.StatusServiceUnavailable, "Assistente de IA não configurado", nil)
			return
		}
		respondJSONError(w, http.StatusBadGateway, "Erro ao falar com o assistente", err)
		return
	}

	if reply.Question != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"type": "question",
			"data": reply.Question,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":      reply.Message,
		"message_html": h.renderMarkdown(reply.Message),
	})
}

func (h *AIHandler) renderMarkdown(text string) string {
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(text), &buf); err != nil {
		log.Printf("failed to render chat markdown: %v", err)
		return ""
	}
	return buf.String()
}
