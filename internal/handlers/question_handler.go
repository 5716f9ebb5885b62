package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"bancoquestoes/internal/models"
	"bancoquestoes/internal/service"
)

// QuestionHandler handles question CRUD, trash and quick search requests
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// maxFormMemory caps the in-memory portion of multipart form bodies.
const maxFormMemory = 1 << 20

func questionIDFromPath(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// optionsFromForm builds the option list from the dynamic form fields. The
// correct-answer field carries the indices of the checked options.
func optionsFromForm(r *http.Request) []models.Option {
	textos := r.Form["opcoes_texto[]"]
	corretas := r.Form["respostas_corretas[]"]

	marked := make(map[string]bool, len(corretas))
	for _, idx := range corretas {
		marked[idx] = true
	}

	opcoes := make([]models.Option, 0, len(textos))
	for i, texto := range textos {
		opcoes = append(opcoes, models.Option{
			TextoOpcao: texto,
			IsCorreta:  marked[strconv.Itoa(i)],
		})
	}
	return opcoes
}

// Add creates a question from the dynamic form and redirects to the list
func (h *QuestionHandler) Add(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	// The form may arrive urlencoded or multipart; ParseMultipartForm
	// populates r.Form for both.
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	tipo := models.QuestionType(r.FormValue("tipo_questao"))
	enunciado := r.FormValue("enunciado")
	nivel := r.FormValue("nivel_dificuldade")
	grau := r.FormValue("grau_ensino")

	if tipo == "" || enunciado == "" || nivel == "" {
		SetFlash(w, "Todos os campos principais são obrigatórios.", "error")
		http.Redirect(w, r, "/questoes", http.StatusSeeOther)
		return
	}

	q := &models.Question{
		Enunciado:        enunciado,
		TipoQuestao:      tipo,
		AutorID:          user.ID,
		NivelDificuldade: nivel,
		GrauEnsino:       grau,
		Opcoes:           optionsFromForm(r),
	}

	if _, err := h.questionService.Create(q); err != nil {
		log.Printf("failed to create question: %v", err)
		SetFlash(w, "Erro ao cadastrar a questão: "+err.Error(), "error")
		http.Redirect(w, r, "/questoes", http.StatusSeeOther)
		return
	}

	SetFlash(w, "Questão cadastrada com sucesso!", "success")
	http.Redirect(w, r, "/questoes", http.StatusSeeOther)
}

// Edit updates a question from the edit modal form. The question type is not
// editable, so it is carried over from the stored record.
func (h *QuestionHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	id, err := questionIDFromPath(r)
	if err != nil {
		http.Error(w, "Invalid question id", http.StatusBadRequest)
		return
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	enunciado := r.FormValue("enunciado")
	nivel := r.FormValue("nivel_dificuldade")
	if enunciado == "" || nivel == "" {
		SetFlash(w, "Enunciado e Nível de Dificuldade são obrigatórios.", "error")
		http.Redirect(w, r, "/questoes", http.StatusSeeOther)
		return
	}

	existing, err := h.questionService.Get(id, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			SetFlash(w, "Você não tem permissão para editar esta questão.", "error")
		} else {
			log.Printf("failed to load question %d: %v", id, err)
			SetFlash(w, "Erro ao atualizar a questão.", "error")
		}
		http.Redirect(w, r, "/questoes", http.StatusSeeOther)
		return
	}

	q := &models.Question{
		ID:               id,
		Enunciado:        enunciado,
		TipoQuestao:      existing.TipoQuestao,
		AutorID:          user.ID,
		NivelDificuldade: nivel,
		GrauEnsino:       r.FormValue("grau_ensino"),
		Opcoes:           optionsFromForm(r),
	}

	if err := h.questionService.Update(q); err != nil {
		log.Printf("failed to update question %d: %v", id, err)
		SetFlash(w, "Erro ao atualizar a questão: "+err.Error(), "error")
		http.Redirect(w, r, "/questoes", http.StatusSeeOther)
		return
	}

	SetFlash(w, "Questão atualizada com sucesso!", "success")
	http.Redirect(w, r, "/questoes", http.StatusSeeOther)
}

// Get returns one question as JSON for the view/edit modals
func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	id, err := questionIDFromPath(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "ID inválido", nil)
		return
	}

	q, err := h.questionService.Get(id, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			respondJSONError(w, http.StatusNotFound, "Questão não encontrada", nil)
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Erro no servidor", err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

// Search answers the live search box with up to ten summaries
func (h *QuestionHandler) Search(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	results, err := h.questionService.Search(r.Context(), user.ID, r.URL.Query().Get("q"))
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Erro no servidor", err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

// SoftDelete moves a question to the trash
func (h *QuestionHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	h.applyState(w, r, h.questionService.SoftDelete, "Questão movida para a lixeira!")
}

// Restore brings a trashed question back
func (h *QuestionHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.applyState(w, r, h.questionService.Restore, "Questão restaurada!")
}

// DeletePermanently removes a trashed question for good
func (h *QuestionHandler) DeletePermanently(w http.ResponseWriter, r *http.Request) {
	h.applyState(w, r, h.questionService.DeleteForever, "Questão excluída permanentemente!")
}

func (h *QuestionHandler) applyState(w http.ResponseWriter, r *http.Request, op func(int64, int64) error, successMsg string) {
	user := GetUserFromContext(r.Context())

	id, err := questionIDFromPath(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "ID inválido",
		})
		return
	}

	if err := op(id, user.ID); err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			respondJSON(w, http.StatusNotFound, map[string]interface{}{
				"success": false,
				"error":   "Questão não encontrada ou sem permissão.",
			})
			return
		}
		log.Printf("question state change failed for %d: %v", id, err)
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Erro no servidor.",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": successMsg,
	})
}
