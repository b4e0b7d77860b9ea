package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/arturoeanton/repo-describer/internal/adapter/ai"
	"github.com/arturoeanton/repo-describer/internal/adapter/docgen"
	"github.com/arturoeanton/repo-describer/internal/adapter/github"
	"github.com/arturoeanton/repo-describer/internal/adapter/store"
	"github.com/arturoeanton/repo-describer/internal/handler"
	"github.com/arturoeanton/repo-describer/internal/middleware"
	"github.com/arturoeanton/repo-describer/internal/port"
	"github.com/arturoeanton/repo-describer/internal/service"
	"github.com/arturoeanton/repo-describer/pkg/config"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"
)

// auditStore is what both the audit middleware and the audit endpoint need.
type auditStore interface {
	middleware.AuditWriter
	handler.AuditReader
	Close() error
}

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("🚀 Starting "+cfg.AppName,
		"port", cfg.Port,
		"ai_provider", cfg.AIProvider,
		"github_api", cfg.GitHubAPIURL,
		"audit_db", cfg.HasDatabase(),
	)

	ctx := context.Background()

	// ── Audit store ──────────────────────────────────────────────────────
	var audit auditStore = store.NewMemoryStore(store.DefaultMemoryCapacity)
	if cfg.HasDatabase() {
		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := pgStore.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare audit schema", "error", err)
			os.Exit(1)
		}
		audit = pgStore
	}
	defer audit.Close()

	// ── Adapters ─────────────────────────────────────────────────────────
	var generator port.TextGenerator
	switch cfg.AIProvider {
	case config.ProviderOllama:
		generator = ai.NewOllamaProvider(ai.OllamaEndpointConfig{
			BaseURL: cfg.OllamaChatURL,
			Model:   cfg.OllamaChatModel,
			Token:   cfg.OllamaChatToken,
		}, cfg.HTTPTimeout)
	default:
		gemini, err := ai.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Error("failed to create Gemini client", "error", err)
			os.Exit(1)
		}
		generator = gemini
	}
	slog.Info("text generator ready", "model", generator.ModelName())

	hosting := github.NewClient(cfg.GitHubAPIURL, cfg.HTTPTimeout)
	writer := docgen.NewWriter(generator, docgen.Options{
		GenericOnClassifierError: cfg.GenericOnClassifierError,
	})

	// ── Services ─────────────────────────────────────────────────────────
	catalog, err := service.NewCatalogService(hosting, cfg.CatalogCacheSize, cfg.IdentityTTL)
	if err != nil {
		slog.Error("failed to create catalog", "error", err)
		os.Exit(1)
	}
	sessions, err := service.NewSessionRegistry(cfg.SessionCacheSize, hosting, writer, catalog.Remove)
	if err != nil {
		slog.Error("failed to create session registry", "error", err)
		os.Exit(1)
	}

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:     cfg.AppName,
		ReadTimeout: 30 * time.Second,
		// No write timeout: session streams stay open.
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	// Audit middleware (logs all requests)
	app.Use(middleware.AuditMiddleware(audit))

	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"app":      cfg.AppName,
			"model":    generator.ModelName(),
			"sessions": sessions.Len(),
		})
	})

	// ── Routes ───────────────────────────────────────────────────────────
	requireToken := middleware.RequireToken(catalog)

	handler.NewAuthHandler(catalog, sessions).Register(api, requireToken)
	handler.NewRepoHandler(catalog, sessions).Register(api, requireToken)
	handler.NewAuditHandler(audit).Register(api, requireToken)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
