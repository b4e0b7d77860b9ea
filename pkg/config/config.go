package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported text-generation backends.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Server
	Port        string
	AppName     string
	FrontendURL string

	// Database (optional; audit falls back to memory)
	DatabaseURL string

	// GitHub
	GitHubAPIURL string
	HTTPTimeout  time.Duration

	// Text generation
	AIProvider   string
	GeminiAPIKey string
	GeminiModel  string

	// Ollama chat endpoint
	OllamaChatURL   string
	OllamaChatModel string
	OllamaChatToken string // Bearer token for Ollama Cloud (empty = local)

	// Classifier fallback when the model cannot be reached
	GenericOnClassifierError bool

	// In-memory bounds
	SessionCacheSize int
	CatalogCacheSize int
	IdentityTTL      time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:        envOrDefault("PORT", "3001"),
		AppName:     envOrDefault("APP_NAME", "Repo Describer"),
		FrontendURL: envOrDefault("FRONTEND_URL", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		GitHubAPIURL: envOrDefault("GITHUB_API_URL", "https://api.github.com"),
		HTTPTimeout:  time.Duration(envOrDefaultInt("HTTP_TIMEOUT_SECONDS", 60)) * time.Second,

		AIProvider:   strings.ToLower(envOrDefault("AI_PROVIDER", ProviderGemini)),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  envOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),

		OllamaChatURL:   envOrDefault("OLLAMA_CHAT_URL", envOrDefault("OLLAMA_BASE_URL", "http://localhost:11434")),
		OllamaChatModel: envOrDefault("OLLAMA_CHAT_MODEL", "qwen3"),
		OllamaChatToken: os.Getenv("OLLAMA_CHAT_TOKEN"),

		GenericOnClassifierError: envOrDefaultBool("GENERIC_ON_CLASSIFIER_ERROR", false),

		SessionCacheSize: envOrDefaultInt("SESSION_CACHE_SIZE", 256),
		CatalogCacheSize: envOrDefaultInt("CATALOG_CACHE_SIZE", 64),
		IdentityTTL:      time.Duration(envOrDefaultInt("IDENTITY_TTL_MINUTES", 15)) * time.Minute,
	}
}

// Validate reports configuration the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.AIProvider {
	case ProviderGemini:
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is not set"))
		}
	case ProviderOllama:
		if c.OllamaChatURL == "" {
			errs = append(errs, errors.New("OLLAMA_CHAT_URL is not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AI_PROVIDER %q", c.AIProvider))
	}
	if c.SessionCacheSize <= 0 {
		errs = append(errs, errors.New("SESSION_CACHE_SIZE must be positive"))
	}
	if c.CatalogCacheSize <= 0 {
		errs = append(errs, errors.New("CATALOG_CACHE_SIZE must be positive"))
	}
	return errors.Join(errs...)
}

// HasDatabase reports whether audit records go to Postgres.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}
