package main

import (
	"flag"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bancoquestoes/internal/config"
	"bancoquestoes/internal/database"
	"bancoquestoes/internal/handlers"
	"bancoquestoes/internal/llm"
	"bancoquestoes/internal/repository"
	"bancoquestoes/internal/security"
	"bancoquestoes/internal/service"
)

func main() {
	configPath := flag.String("config", "bancoquestoes.yml", "path to the configuration file")
	flag.Parse()

	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.Open(database.Options{
		Type: cfg.DatabaseType,
		Path: cfg.DatabasePath,
		URL:  cfg.DatabaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	templates, err := loadTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)

	// Services
	emailService, err := service.NewEmailService(cfg.SES.Region, cfg.SES.FromEmail, cfg.SES.FromName)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	authService := service.NewAuthService(userRepo, emailService, cfg.SessionDuration(), cfg.UploadMaxBytes, cfg.BaseURL)
	questionService := service.NewQuestionService(questionRepo)
	exportService := service.NewExportService(questionRepo)

	var provider llm.Provider
	if cfg.LLM.APIKey != "" || cfg.LLM.Provider == "ollama" {
		provider, err = llm.NewProvider(llm.Options{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
		})
		if err != nil {
			log.Fatalf("Failed to initialize llm provider: %v", err)
		}
		log.Printf("AI assistant enabled (provider: %s, model: %s)", provider.Name(), cfg.LLM.Model)
	} else {
		log.Println("AI assistant disabled: no llm api key configured")
	}
	aiService := service.NewAIService(provider, cfg.LLM.Model, cfg.LLMTimeout())

	// First run: mint a session secret and keep it across restarts so form
	// tokens survive a redeploy
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = security.GenerateSessionID()
		if err := cfg.Save(*configPath); err != nil {
			log.Printf("Could not persist generated session secret: %v", err)
		} else {
			log.Printf("Generated session secret and saved it to %s", *configPath)
		}
	}

	// Security helpers
	csrf := security.NewCSRFGenerator(cfg.SessionSecret)
	loginLimiter := security.NewRateLimiter(10, time.Minute)

	// Handlers
	middleware := handlers.NewMiddleware(authService, loginLimiter, csrf)
	authHandler := handlers.NewAuthHandler(authService, templates)
	pageHandler := handlers.NewPageHandler(questionService, aiService, csrf, templates)
	profileHandler := handlers.NewProfileHandler(authService)
	questionHandler := handlers.NewQuestionHandler(questionService)
	exportHandler := handlers.NewExportHandler(exportService)
	aiHandler := handlers.NewAIHandler(aiService)

	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))

	// Public routes
	mux.HandleFunc("GET /{$}", authHandler.Index)
	mux.HandleFunc("GET /login", authHandler.ShowLogin)
	mux.HandleFunc("POST /login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET /logout", authHandler.Logout)
	mux.HandleFunc("GET /forgot_password", authHandler.ShowForgotPassword)
	mux.HandleFunc("POST /forgot_password", middleware.RateLimit(authHandler.ForgotPassword))
	mux.HandleFunc("GET /reset_password", authHandler.ShowResetPassword)
	mux.HandleFunc("POST /reset_password", middleware.RateLimit(authHandler.ResetPassword))

	// Panel pages
	mux.HandleFunc("GET /painel", middleware.RequireAuth(pageHandler.Painel))
	mux.HandleFunc("GET /questoes", middleware.RequireAuth(pageHandler.Questoes))
	// Older bookmarks use /banco_questoes for the question list
	mux.HandleFunc("GET /banco_questoes", middleware.RequireAuth(pageHandler.Questoes))
	mux.HandleFunc("GET /lixeira", middleware.RequireAuth(pageHandler.Lixeira))
	mux.HandleFunc("GET /configuracoes", middleware.RequireAuth(pageHandler.Configuracoes))

	// Account settings forms
	mux.HandleFunc("POST /update_profile", middleware.RequireAuth(middleware.CSRFProtect(profileHandler.UpdateProfile)))
	mux.HandleFunc("POST /change_password", middleware.RequireAuth(middleware.CSRFProtect(profileHandler.ChangePassword)))

	// JSON API used by the panel scripts
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

	// Question forms
	mux.HandleFunc("POST /add_questao", middleware.RequireAuth(middleware.CSRFProtect(questionHandler.Add)))
	mux.HandleFunc("POST /edit_questao/{id}", middleware.RequireAuth(middleware.CSRFProtect(questionHandler.Edit)))

	handler := handlers.Logging(mux)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go cleanupExpiredSessions(authService)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}

// loadTemplates loads all template files
func loadTemplates(templatesPath string) (*template.Template, error) {
	pattern := filepath.Join(templatesPath, "*.tmpl")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no templates found in %s", templatesPath)
	}

	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("02/01/2006")
		},
		"add": func(a, b int) int {
			return a + b
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFiles(matches...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// cleanupExpiredSessions periodically removes expired sessions and reset tokens
func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		}
	}
}
