package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
)

func TestUploadFoto(t *testing.T) {
	ts := newTestServer(t, nil)
	_, cookie := ts.signup(t, "ana@example.com")

	t.Run("accepts an image data url", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/upload_foto", `{"image":"data:image/png;base64,iVBORw0KGgo="}`, cookie)
		assertStatus(t, rec, http.StatusOK)

		var resp struct {
			Success bool `json:"success"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if !resp.Success {
			t.Error("success = false")
		}
	})

	t.Run("rejects non-image payloads", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/upload_foto", `{"image":"data:text/html;base64,PGI+"}`, cookie)
		assertStatus(t, rec, http.StatusBadRequest)

		var resp struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if resp.Success || resp.Error != "Formato de imagem inválido." {
			t.Errorf("unexpected envelope: %+v", resp)
		}
	})

	t.Run("rejects an empty payload", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/upload_foto", `{}`, cookie)
		assertStatus(t, rec, http.StatusBadRequest)
	})
}

func TestThemeEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)
	_, cookie := ts.signup(t, "ana@example.com")

	rec := ts.do(t, http.MethodGet, "/api/theme", "", cookie)
	assertStatus(t, rec, http.StatusOK)

	var resp struct {
		Theme string `json:"theme"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Theme != "light" {
		t.Errorf("default theme = %q, want light", resp.Theme)
	}

	rec = ts.do(t, http.MethodPost, "/api/theme", `{"theme":"dark"}`, cookie)
	assertStatus(t, rec, http.StatusOK)

	rec = ts.do(t, http.MethodGet, "/api/theme", "", cookie)
	assertStatus(t, rec, http.StatusOK)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Theme != "dark" {
		t.Errorf("theme = %q, want dark", resp.Theme)
	}

	rec = ts.do(t, http.MethodPost, "/api/theme", `{"theme":"solarized"}`, cookie)
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestUpdateProfileForm(t *testing.T) {
	ts := newTestServer(t, nil)
	user, cookie := ts.signup(t, "ana@example.com")

	form := url.Values{
		"csrf_token": {ts.csrfToken(t, cookie)},
		"nome":       {"Mariana"},
		"sobrenome":  {"Costa"},
	}
	rec := ts.doForm(t, "/update_profile", form, cookie)
	assertRedirect(t, rec, "/configuracoes")

	updated, err := ts.authService.ValidateSession(cookie.Value)
	if err != nil {
		t.Fatalf("ValidateSession() error = %v", err)
	}
	if updated.ID != user.ID || updated.NomeCompleto() != "Mariana Costa" {
		t.Errorf("nome completo = %q, want Mariana Costa", updated.NomeCompleto())
	}
}

func TestChangePasswordForm(t *testing.T) {
	ts := newTestServer(t, nil)
	_, cookie := ts.signup(t, "ana@example.com")

	form := url.Values{
		"csrf_token":      {ts.csrfToken(t, cookie)},
		"senha_atual":     {"senha-forte"},
		"nova_senha":      {"senha-nova"},
		"confirmar_senha": {"senha-nova"},
	}
	rec := ts.doForm(t, "/change_password", form, cookie)
	assertRedirect(t, rec, "/configuracoes")

	if _, _, err := ts.authService.Login("ana@example.com", "senha-nova"); err != nil {
		t.Errorf("Login() with new password: error = %v", err)
	}
}
