package handlers

import (
	"net/http"
	"strings"
	"testing"

	"bancoquestoes/internal/models"
)

func TestPanelPagesRender(t *testing.T) {
	ts := newTestServer(t, nil)
	user, cookie := ts.signup(t, "ana@example.com")
	ts.addQuestion(t, user.ID, "Qual é a capital do Brasil?", models.SingleChoice)

	tests := []struct {
		path string
		want string
	}{
		{"/painel", "Ana Silva"},
		{"/questoes", "Qual é a capital do Brasil?"},
		{"/lixeira", "Lixeira"},
		{"/configuracoes", "Configurações"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, tt.path, "", cookie)
			assertStatus(t, rec, http.StatusOK)
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("%s: body does not contain %q", tt.path, tt.want)
			}
		})
	}
}

func TestQuestoesPageEmbedsCSRFToken(t *testing.T) {
	ts := newTestServer(t, nil)
	_, cookie := ts.signup(t, "ana@example.com")

	rec := ts.do(t, http.MethodGet, "/questoes", "", cookie)
	assertStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `name="csrf_token"`) {
		t.Error("page does not embed a csrf_token field")
	}
}

func TestLixeiraShowsTrashedQuestions(t *testing.T) {
	ts := newTestServer(t, nil)
	user, cookie := ts.signup(t, "ana@example.com")
	id := ts.addQuestion(t, user.ID, "Questão descartada", models.SingleChoice)
	if err := ts.questionService.SoftDelete(id, user.ID); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}

	rec := ts.do(t, http.MethodGet, "/lixeira", "", cookie)
	assertStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "Questão descartada") {
		t.Error("trash page does not list the trashed question")
	}

	// And it is no longer on the active list
	rec = ts.do(t, http.MethodGet, "/questoes", "", cookie)
	assertStatus(t, rec, http.StatusOK)
	if strings.Contains(rec.Body.String(), "Questão descartada") {
		t.Error("question list still shows the trashed question")
	}
}
