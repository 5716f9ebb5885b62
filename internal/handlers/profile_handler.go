package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"bancoquestoes/internal/service"
)

// ProfileHandler handles account settings: name, password, photo and theme
type ProfileHandler struct {
	authService *service.AuthService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(authService *service.AuthService) *ProfileHandler {
	return &ProfileHandler{authService: authService}
}

// UpdateProfile changes the user's name and redirects back to settings
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	nome := r.FormValue("nome")
	sobrenome := r.FormValue("sobrenome")
	if nome == "" || sobrenome == "" {
		SetFlash(w, "Nome e sobrenome são obrigatórios.", "error")
		http.Redirect(w, r, "/configuracoes", http.StatusSeeOther)
		return
	}

	if err := h.authService.UpdateProfile(user.ID, nome, sobrenome); err != nil {
		log.Printf("failed to update profile: %v", err)
		SetFlash(w, "Ocorreu um erro ao atualizar o seu perfil.", "error")
		http.Redirect(w, r, "/configuracoes", http.StatusSeeOther)
		return
	}

	SetFlash(w, "Perfil atualizado com sucesso!", "success")
	http.Redirect(w, r, "/configuracoes", http.StatusSeeOther)
}

// ChangePassword verifies the current password and stores a new one
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	senhaAtual := r.FormValue("senha_atual")
	novaSenha := r.FormValue("nova_senha")
	confirmarSenha := r.FormValue("confirmar_senha")

	if senhaAtual == "" || novaSenha == "" || confirmarSenha == "" {
		SetFlash(w, "Todos os campos de senha são obrigatórios.", "error")
		http.Redirect(w, r, "/configuracoes", http.StatusSeeOther)
		return
	}
	if novaSenha != confirmarSenha {
		SetFlash(w, "As novas senhas não coincidem.", "error")
		http.Redirect(w, r, "/configuracoes", http.StatusSeeOther)
		return
	}

	if err := h.authService.ChangePassword(user.ID, senhaAtual, novaSenha); err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			SetFlash(w, "A sua senha atual está incorreta.", "error")
		} else {
			log.Printf("failed to change password: %v", err)
			SetFlash(w, "Ocorreu um erro ao alterar a sua senha.", "error")
		}
		http.Redirect(w, r, "/configuracoes", http.StatusSeeOther)
		return
	}

	SetFlash(w, "Senha alterada com sucesso!", "success")
	http.Redirect(w, r, "/configuracoes", http.StatusSeeOther)
}

// UploadFoto stores the profile photo sent by the browser as a data URL
func (h *ProfileHandler) UploadFoto(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var payload struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Image == "" {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Dados da imagem em falta",
		})
		return
	}

	if err := h.authService.UpdatePhoto(user.ID, payload.Image); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPhoto):
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"error":   "Formato de imagem inválido.",
			})
		case errors.Is(err, service.ErrPhotoTooLarge):
			respondJSON(w, http.StatusRequestEntityTooLarge, map[string]interface{}{
				"success": false,
				"error":   "A imagem é grande demais.",
			})
		case errors.Is(err, service.ErrInvalidSession):
			respondJSON(w, http.StatusNotFound, map[string]interface{}{
				"success": false,
				"error":   "Utilizador não encontrado.",
			})
		default:
			log.Printf("failed to upload photo: %v", err)
			respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"error":   "Erro no servidor.",
			})
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// GetTheme returns the stored theme preference
func (h *ProfileHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	theme, err := h.authService.GetTheme(user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Erro no servidor", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"theme": theme})
}

// SetTheme persists the theme preference
func (h *ProfileHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var payload struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Dados inválidos", nil)
		return
	}

	if err := h.authService.SetTheme(user.ID, payload.Theme); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Tema desconhecido", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "theme": payload.Theme})
}
