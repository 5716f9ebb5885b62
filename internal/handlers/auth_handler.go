package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"

	"bancoquestoes/internal/security"
	"bancoquestoes/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	templates   *template.Template
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, templates *template.Template) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		templates:   templates,
	}
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, data map[string]interface{}) {
	if err := h.templates.ExecuteTemplate(w, "login.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error rendering login template", err)
	}
}

// Index routes the root path to the panel or the login page
func (h *AuthHandler) Index(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if _, err := h.authService.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/painel", http.StatusSeeOther)
			return
		}
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	// Already logged in, straight to the panel
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if _, err := h.authService.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/painel", http.StatusSeeOther)
			return
		}
	}

	h.renderLogin(w, map[string]interface{}{
		"Title": "Login - Banco de Questões",
	})
}

// Login handles the login form submission. The front end submits the form
// with fetch and expects a JSON verdict rather than a redirect.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Dados do formulário inválidos.",
		})
		return
	}

	email := r.FormValue("email")
	senha := r.FormValue("senha")

	user, session, err := h.authService.Login(email, senha)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"success": false,
				"message": "Email ou senha inválidos.",
			})
			return
		}
		log.Printf("login failed: %v", err)
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Erro ao conectar com o banco de dados.",
		})
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"nome_completo":   user.NomeCompleto(),
			"foto_perfil_url": user.FotoPerfil,
		},
		"redirect_url": "/painel",
	})
}

// Logout ends the session and returns to the login page
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.authService.Logout(cookie.Value); err != nil {
			log.Printf("logout failed: %v", err)
		}
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	SetFlash(w, "Você saiu da sua conta.", "success")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ShowForgotPassword renders the forgot-password form
func (h *AuthHandler) ShowForgotPassword(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Title": "Recuperar senha - Banco de Questões",
	}
	if err := h.templates.ExecuteTemplate(w, "forgot_password.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error rendering forgot password template", err)
	}
}

// ForgotPassword issues a reset email. The response is identical whether or
// not the address exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	if err := h.authService.RequestPasswordReset(r.Context(), email); err != nil {
		log.Printf("password reset request failed: %v", err)
	}

	SetFlash(w, "Se o email estiver cadastrado, você receberá um link de redefinição.", "success")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ShowResetPassword renders the reset form for a token link
func (h *AuthHandler) ShowResetPassword(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Title": "Redefinir senha - Banco de Questões",
		"Token": r.URL.Query().Get("token"),
	}
	if err := h.templates.ExecuteTemplate(w, "reset_password.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error rendering reset password template", err)
	}
}

// ResetPassword consumes the token and sets the new password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	token := r.FormValue("token")
	novaSenha := r.FormValue("nova_senha")
	confirmarSenha := r.FormValue("confirmar_senha")

	if novaSenha != confirmarSenha {
		SetFlash(w, "As novas senhas não coincidem.", "error")
		http.Redirect(w, r, "/reset_password?token="+token, http.StatusSeeOther)
		return
	}

	if err := h.authService.ResetPassword(token, novaSenha); err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			SetFlash(w, "Link de redefinição inválido ou expirado.", "error")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		SetFlash(w, "Erro ao redefinir a senha: "+err.Error(), "error")
		http.Redirect(w, r, "/reset_password?token="+token, http.StatusSeeOther)
		return
	}

	SetFlash(w, "Senha redefinida com sucesso! Faça login com a nova senha.", "success")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
