package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Config is the top-level application configuration, read from bancoquestoes.yml
// plus QB_* environment overrides.
type Config struct {
	ServerPort     string `yaml:"server_port" koanf:"server_port"`
	BaseURL        string `yaml:"base_url" koanf:"base_url"`
	SessionSecret  string `yaml:"session_secret" koanf:"session_secret"`
	SessionHours   int    `yaml:"session_hours" koanf:"session_hours"`
	UploadMaxBytes int64  `yaml:"upload_max_bytes" koanf:"upload_max_bytes"`

	DatabaseType string `yaml:"database_type" koanf:"database_type"`
	DatabaseURL  string `yaml:"database_url" koanf:"database_url"`
	DatabasePath string `yaml:"database_path" koanf:"database_path"`

	MigrationsPath  string `yaml:"migrations_path" koanf:"migrations_path"`
	TemplatesPath   string `yaml:"templates_path" koanf:"templates_path"`
	StaticFilesPath string `yaml:"static_path" koanf:"static_path"`

	LLM LLMConfig `yaml:"llm" koanf:"llm"`
	SES SESConfig `yaml:"ses" koanf:"ses"`
}

// LLMConfig selects the model backend used for question generation and chat.
type LLMConfig struct {
	Provider       string `yaml:"provider" koanf:"provider"` // "openai" or "ollama"
	Model          string `yaml:"model" koanf:"model"`
	APIKey         string `yaml:"api_key" koanf:"api_key"`
	BaseURL        string `yaml:"base_url" koanf:"base_url"` // for ollama / OpenAI-compatible servers
	TimeoutSeconds int    `yaml:"timeout_seconds" koanf:"timeout_seconds"`
}

// SESConfig configures outbound email; an empty FromEmail disables it.
type SESConfig struct {
	Region    string `yaml:"region" koanf:"region"`
	FromEmail string `yaml:"from_email" koanf:"from_email"`
	FromName  string `yaml:"from_name" koanf:"from_name"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		ServerPort:      "4000",
		BaseURL:         "http://localhost:4000",
		SessionHours:    24,
		UploadMaxBytes:  16 * 1024 * 1024, // matches the original deployment's body cap
		DatabaseType:    "sqlite",
		DatabasePath:    "./bancoquestoes.db",
		MigrationsPath:  "./migrations",
		TemplatesPath:   "./internal/templates",
		StaticFilesPath: "./static",
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 60,
		},
		SES: SESConfig{
			Region:   "us-east-1",
			FromName: "Banco de Questões",
		},
	}
}

// Load reads configuration from the given YAML file if it exists, then overlays
// environment variable overrides (QB_SERVER_PORT, QB_LLM__API_KEY, ...). A
// double underscore separates nested keys.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("QB_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "QB_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains workable values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.DatabaseType) {
	case "sqlite", "sqlite3", "":
		if c.DatabasePath == "" {
			return fmt.Errorf("database_path is required for sqlite")
		}
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required for %s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("invalid database_type %q: must be sqlite, postgres or mysql", c.DatabaseType)
	}

	if c.SessionHours <= 0 {
		return fmt.Errorf("session_hours must be positive")
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("upload_max_bytes must be positive")
	}

	switch c.LLM.Provider {
	case "", "openai", "ollama":
	default:
		return fmt.Errorf("invalid llm provider %q: must be openai or ollama", c.LLM.Provider)
	}

	return nil
}

// SessionDuration returns the configured session lifetime.
func (c *Config) SessionDuration() time.Duration {
	return time.Duration(c.SessionHours) * time.Hour
}

// LLMTimeout returns the per-request deadline for model calls.
func (c *Config) LLMTimeout() time.Duration {
	if c.LLM.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}
