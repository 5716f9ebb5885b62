package handlers

import (
	"html/template"
	"log"
	"net/http"

	"bancoquestoes/internal/security"
	"bancoquestoes/internal/service"
)

// PageHandler renders the server-side panel views
type PageHandler struct {
	questionService *service.QuestionService
	aiService       *service.AIService
	csrf            *security.CSRFGenerator
	templates       *template.Template
}

// NewPageHandler creates a new page handler
func NewPageHandler(questionService *service.QuestionService, aiService *service.AIService, csrf *security.CSRFGenerator, templates *template.Template) *PageHandler {
	return &PageHandler{
		questionService: questionService,
		aiService:       aiService,
		csrf:            csrf,
		templates:       templates,
	}
}

func (h *PageHandler) pageData(w http.ResponseWriter, r *http.Request, view, title string) *PageData {
	user := GetUserFromContext(r.Context())

	token := ""
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		t, err := h.csrf.GenerateToken(cookie.Value)
		if err != nil {
			log.Printf("failed to generate csrf token: %v", err)
		} else {
			token = t
		}
	}

	theme := user.Theme
	if theme == "" {
		theme = "light"
	}

	return &PageData{
		Title:         title,
		View:          view,
		NomeCompleto:  user.NomeCompleto(),
		FotoPerfilURL: user.FotoPerfil,
		Theme:         theme,
		CSRFToken:     token,
		AIEnabled:     h.aiService.Enabled(),
		Flash:         PopFlash(w, r),
		User:          user,
	}
}

func (h *PageHandler) render(w http.ResponseWriter, data *PageData) {
	if err := h.templates.ExecuteTemplate(w, "painel.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error rendering panel template", err)
	}
}

// Painel renders the home view of the panel
func (h *PageHandler) Painel(w http.ResponseWriter, r *http.Request) {
	h.render(w, h.pageData(w, r, "home", "Painel - Banco de Questões"))
}

// Questoes renders the question list, optionally filtered by ?q=
func (h *PageHandler) Questoes(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	data := h.pageData(w, r, "questoes", "Questões - Banco de Questões")

	searchQuery := r.URL.Query().Get("q")
	questoes, err := h.questionService.ListActive(user.ID, searchQuery)
	if err != nil {
		log.Printf("failed to list questions: %v", err)
		data.Flash = &Flash{Message: "Erro ao carregar as questões.", Type: "error"}
	}
	data.Questoes = questoes
	data.SearchQuery = searchQuery
	h.render(w, data)
}

// Lixeira renders the trash view
func (h *PageHandler) Lixeira(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	data := h.pageData(w, r, "lixeira", "Lixeira - Banco de Questões")

	questoes, err := h.questionService.ListTrashed(user.ID)
	if err != nil {
		log.Printf("failed to list trashed questions: %v", err)
		data.Flash = &Flash{Message: "Erro ao carregar a lixeira.", Type: "error"}
	}
	data.Questoes = questoes
	h.render(w, data)
}

// Configuracoes renders the account settings view
func (h *PageHandler) Configuracoes(w http.ResponseWriter, r *http.Request) {
	h.render(w, h.pageData(w, r, "configuracoes", "Configurações - Banco de Questões"))
}
