package handlers

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bancoquestoes/internal/database"
	"bancoquestoes/internal/llm"
	"bancoquestoes/internal/models"
	"bancoquestoes/internal/repository"
	"bancoquestoes/internal/security"
	"bancoquestoes/internal/service"
)

// testServer wires the full handler stack against a throwaway SQLite database,
// mirroring the route table the server binary installs.
type testServer struct {
	mux             *http.ServeMux
	authService     *service.AuthService
	questionService *service.QuestionService
	csrf            *security.CSRFGenerator
}

func newTestServer(t *testing.T, provider llm.Provider) *testServer {
	t.Helper()

	db, err := database.Open(database.Options{
		Type: "sqlite",
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	templates, err := loadTestTemplates(t)
	if err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)

	emailService, err := service.NewEmailService("", "", "")
	if err != nil {
		t.Fatalf("failed to create email service: %v", err)
	}
	authService := service.NewAuthService(userRepo, emailService, 24*time.Hour, 16*1024*1024, "http://localhost:4000")
	questionService := service.NewQuestionService(questionRepo)
	exportService := service.NewExportService(questionRepo)
	aiService := service.NewAIService(provider, "test-model", 5*time.Second)

	csrf := security.NewCSRFGenerator("test-secret")
	limiter := security.NewRateLimiter(100, time.Minute)

	middleware := NewMiddleware(authService, limiter, csrf)
	authHandler := NewAuthHandler(authService, templates)
	pageHandler := NewPageHandler(questionService, aiService, csrf, templates)
	profileHandler := NewProfileHandler(authService)
	questionHandler := NewQuestionHandler(questionService)
	exportHandler := NewExportHandler(exportService)
	aiHandler := NewAIHandler(aiService)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", authHandler.Index)
	mux.HandleFunc("GET /login", authHandler.ShowLogin)
	mux.HandleFunc("POST /login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET /logout", authHandler.Logout)
	mux.HandleFunc("GET /forgot_password", authHandler.ShowForgotPassword)
	mux.HandleFunc("POST /forgot_password", middleware.RateLimit(authHandler.ForgotPassword))
	mux.HandleFunc("GET /reset_password", authHandler.ShowResetPassword)
	mux.HandleFunc("POST /reset_password", middleware.RateLimit(authHandler.ResetPassword))
	mux.HandleFunc("GET /painel", middleware.RequireAuth(pageHandler.Painel))
	mux.HandleFunc("GET /questoes", middleware.RequireAuth(pageHandler.Questoes))
	mux.HandleFunc("GET /banco_questoes", middleware.RequireAuth(pageHandler.Questoes))
	mux.HandleFunc("GET /lixeira", middleware.RequireAuth(pageHandler.Lixeira))
	mux.HandleFunc("GET /configuracoes", middleware.RequireAuth(pageHandler.Configuracoes))
	mux.HandleFunc("POST /update_profile", middleware.RequireAuth(middleware.CSRFProtect(profileHandler.UpdateProfile)))
	mux.HandleFunc("POST /change_password", middleware.RequireAuth(middleware.CSRFProtect(profileHandler.ChangePassword)))
	mux.HandleFunc("POST /upload_foto", middleware.RequireAuthJSON(profileHandler.UploadFoto))
	mux.HandleFunc("GET /api/theme", middleware.RequireAuthJSON(profileHandler.GetTheme))
	mux.HandleFunc("POST /api/theme", middleware.RequireAuthJSON(profileHandler.SetTheme))
	mux.HandleFunc("GET /search_questoes", middleware.RequireAuthJSON(questionHandler.Search))
	mux.HandleFunc("GET /get_questao/{id}", middleware.RequireAuthJSON(questionHandler.Get))
	mux.HandleFunc("POST /delete_questao/{id}", middleware.RequireAuthJSON(questionHandler.SoftDelete))
	mux.HandleFunc("POST /restore_questao/{id}", middleware.RequireAuthJSON(questionHandler.Restore))
	mux.HandleFunc("POST /delete_permanently/{id}", middleware.RequireAuthJSON(questionHandler.DeletePermanently))
	mux.HandleFunc("POST /export_questoes", middleware.RequireAuthJSON(exportHandler.Export))
	mux.HandleFunc("POST /generate_questao", middleware.RequireAuthJSON(aiHandler.Generate))
	mux.HandleFunc("POST /api/chat", middleware.RequireAuthJSON(aiHandler.Chat))
	mux.HandleFunc("POST /add_questao", middleware.RequireAuth(middleware.CSRFProtect(questionHandler.Add)))
	mux.HandleFunc("POST /edit_questao/{id}", middleware.RequireAuth(middleware.CSRFProtect(questionHandler.Edit)))

	return &testServer{
		mux:             mux,
		authService:     authService,
		questionService: questionService,
		csrf:            csrf,
	}
}

func loadTestTemplates(t *testing.T) (*template.Template, error) {
	t.Helper()

	funcMap := template.FuncMap{
		"formatDate": func(tm time.Time) string { return tm.Format("02/01/2006") },
		"add":        func(a, b int) int { return a + b },
	}
	pattern := filepath.Join("..", "templates", "*.tmpl")
	return template.New("").Funcs(funcMap).ParseGlob(pattern)
}

// signup registers a user and returns it with a logged-in session cookie
func (ts *testServer) signup(t *testing.T, email string) (*models.User, *http.Cookie) {
	t.Helper()

	user, err := ts.authService.Register("Ana", "Silva", email, "senha-forte")
	if err != nil {
		t.Fatalf("failed to register test user: %v", err)
	}
	_, session, err := ts.authService.Login(email, "senha-forte")
	if err != nil {
		t.Fatalf("failed to log in test user: %v", err)
	}
	return user, &http.Cookie{Name: SessionCookieName, Value: session.ID}
}

func (ts *testServer) addQuestion(t *testing.T, autorID int64, enunciado string, tipo models.QuestionType) int64 {
	t.Helper()

	q := &models.Question{
		Enunciado:        enunciado,
		TipoQuestao:      tipo,
		AutorID:          autorID,
		NivelDificuldade: "FACIL",
		GrauEnsino:       "Ensino Fundamental",
	}
	if tipo.HasOptions() {
		q.Opcoes = []models.Option{
			{TextoOpcao: "Opção A", IsCorreta: true},
			{TextoOpcao: "Opção B", IsCorreta: false},
		}
	}
	id, err := ts.questionService.Create(q)
	if err != nil {
		t.Fatalf("failed to create test question: %v", err)
	}
	return id
}

// do performs a request against the handler stack
func (ts *testServer) do(t *testing.T, method, target string, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

// doForm performs a form POST against the handler stack
func (ts *testServer) doForm(t *testing.T, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

// csrfToken mints a form token bound to the session cookie
func (ts *testServer) csrfToken(t *testing.T, cookie *http.Cookie) string {
	t.Helper()

	token, err := ts.csrf.GenerateToken(cookie.Value)
	if err != nil {
		t.Fatalf("failed to generate csrf token: %v", err)
	}
	return token
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d\nbody: %s", rec.Code, want, rec.Body.String())
	}
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Errorf("redirect = %q, want %q", got, location)
	}
}
