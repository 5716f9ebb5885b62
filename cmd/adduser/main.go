// Command adduser creates a user account from the terminal. The application
// has no self-service registration page, so accounts are provisioned here.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"bancoquestoes/internal/config"
	"bancoquestoes/internal/database"
	"bancoquestoes/internal/repository"
	"bancoquestoes/internal/service"
)

func main() {
	configPath := flag.String("config", "bancoquestoes.yml", "path to the configuration file")
	email := flag.String("email", "", "email of the new user")
	nome := flag.String("nome", "", "first name")
	sobrenome := flag.String("sobrenome", "", "last name")
	flag.Parse()

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

	reader := bufio.NewReader(os.Stdin)
	if *email == "" {
		*email = prompt(reader, "Email do novo usuário: ")
	}
	if *nome == "" {
		*nome = prompt(reader, "Primeiro nome: ")
	}
	if *sobrenome == "" {
		*sobrenome = prompt(reader, "Sobrenome: ")
	}
	senha := prompt(reader, "Senha do novo usuário: ")

	if *email == "" || *nome == "" || *sobrenome == "" || senha == "" {
		log.Fatal("Todos os campos são obrigatórios.")
	}

	db, err := database.Open(database.Options{
		Type: cfg.DatabaseType,
		Path: cfg.DatabasePath,
		URL:  cfg.DatabaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	emailService, err := service.NewEmailService("", "", "")
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	authService := service.NewAuthService(userRepo, emailService, cfg.SessionDuration(), cfg.UploadMaxBytes, cfg.BaseURL)

	user, err := authService.Register(*nome, *sobrenome, *email, senha)
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("Usuário %q (id %d) adicionado com sucesso!\n", user.Email, user.ID)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return strings.TrimSpace(line)
	}
	return strings.TrimSpace(line)
}
