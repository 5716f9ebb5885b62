package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"bancoquestoes/internal/llm"
)

// scriptedProvider returns a fixed completion, standing in for a live model
type scriptedProvider struct {
	reply string
}

func (p *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: p.reply}, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

func TestGenerateQuestion(t *testing.T) {
	provider := &scriptedProvider{reply: `{
		"enunciado": "Qual é a capital do Brasil?",
		"opcoes": [
			{"texto": "Brasília", "is_correta": true},
			{"texto": "Rio de Janeiro", "is_correta": false}
		]
	}`}
	ts := newTestServer(t, provider)
	_, cookie := ts.signup(t, "ana@example.com")

	body := `{"tipo":"ESCOLHA_UNICA","nivel":"FACIL","grau":"Ensino Fundamental"}`
	rec := ts.do(t, http.MethodPost, "/generate_questao", body, cookie)
	assertStatus(t, rec, http.StatusOK)

	var generated struct {
		Enunciado string `json:"enunciado"`
		Tipo      string `json:"tipo"`
		Nivel     string `json:"nivel"`
		Opcoes    []struct {
			Texto     string `json:"texto"`
			IsCorreta bool   `json:"is_correta"`
		} `json:"opcoes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &generated); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if generated.Enunciado != "Qual é a capital do Brasil?" {
		t.Errorf("enunciado = %q", generated.Enunciado)
	}
	if generated.Tipo != "ESCOLHA_UNICA" {
		t.Errorf("tipo = %q", generated.Tipo)
	}
	if generated.Nivel != "Fácil" {
		t.Errorf("nivel = %q, want normalized label", generated.Nivel)
	}
	if len(generated.Opcoes) != 2 || !generated.Opcoes[0].IsCorreta {
		t.Errorf("unexpected options: %+v", generated.Opcoes)
	}
}

func TestGenerateQuestionWithoutProvider(t *testing.T) {
	ts := newTestServer(t, nil)
	_, cookie := ts.signup(t, "ana@example.com")

	rec := ts.do(t, http.MethodPost, "/generate_questao", `{"tipo":"ESCOLHA_UNICA","nivel":"FACIL"}`, cookie)
	assertStatus(t, rec, http.StatusServiceUnavailable)
}

func TestChatPlainMessage(t *testing.T) {
	provider := &scriptedProvider{reply: `{"type":"message","message":"Olá! Como posso ajudar com as suas **questões**?"}`}
	ts := newTestServer(t, provider)
	_, cookie := ts.signup(t, "ana@example.com")

	rec := ts.do(t, http.MethodPost, "/api/chat", `{"message":"Olá","history":[]}`, cookie)
	assertStatus(t, rec, http.StatusOK)

	var resp struct {
		Message     string `json:"message"`
		MessageHTML string `json:"message_html"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Message == "" {
		t.Error("message is empty")
	}
	if resp.MessageHTML == "" || resp.MessageHTML == resp.Message {
		t.Errorf("message_html = %q, want rendered markdown", resp.MessageHTML)
	}
}

func TestChatQuestionEnvelope(t *testing.T) {
	provider := &scriptedProvider{reply: `{
		"type": "question",
		"message": "Aqui está uma sugestão:",
		"data": {
			"enunciado": "Quem escreveu Dom Casmurro?",
			"tipo": "ESCOLHA_UNICA",
			"nivel": "MEDIO",
			"opcoes": [
				{"texto": "Machado de Assis", "is_correta": true},
				{"texto": "José de Alencar", "is_correta": false}
			]
		}
	}`}
	ts := newTestServer(t, provider)
	_, cookie := ts.signup(t, "ana@example.com")

	rec := ts.do(t, http.MethodPost, "/api/chat", `{"message":"Crie uma questão de literatura"}`, cookie)
	assertStatus(t, rec, http.StatusOK)

	var resp struct {
		Type string `json:"type"`
		Data struct {
			Enunciado string `json:"enunciado"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Type != "question" {
		t.Errorf("type = %q, want question", resp.Type)
	}
	if resp.Data.Enunciado != "Quem escreveu Dom Casmurro?" {
		t.Errorf("enunciado = %q", resp.Data.Enunciado)
	}
}
