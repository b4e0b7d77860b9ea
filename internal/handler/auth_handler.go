package handler

import (
	"log/slog"

	"github.com/arturoeanton/repo-describer/internal/middleware"
	"github.com/arturoeanton/repo-describer/internal/service"
	"github.com/gofiber/fiber/v3"
)

// AuthHandler signs users in with a GitHub personal access token.
type AuthHandler struct {
	catalog  *service.CatalogService
	sessions *service.SessionRegistry
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(catalog *service.CatalogService, sessions *service.SessionRegistry) *AuthHandler {
	return &AuthHandler{catalog: catalog, sessions: sessions}
}

// Register sets up auth routes. Login carries its own credential check;
// logout runs behind requireToken.
func (h *AuthHandler) Register(router fiber.Router, requireToken fiber.Handler) {
	auth := router.Group("/auth")
	auth.Post("/login", h.Login)
	auth.Post("/logout", requireToken, h.Logout)
}

// Login verifies the token and returns the user with their candidates.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	token := middleware.ExtractToken(c)
	if token == "" {
		var body struct {
			Token string `json:"token"`
		}
		if err := c.Bind().JSON(&body); err == nil {
			token = body.Token
		}
	}
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing token"})
	}

	user, repos, err := h.catalog.Login(c.Context(), token)
	if err != nil {
		return writeError(c, err)
	}
	// Sessions from an earlier sign-in may carry a stale token.
	h.sessions.DiscardUser(user.Login)
	middleware.SetIdentity(c, user)

	return c.JSON(fiber.Map{
		"user":  user,
		"repos": repos,
		"count": len(repos),
	})
}

// Logout drops the caller's catalog and sessions.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	h.sessions.DiscardUser(id.Login)
	h.catalog.Logout(id.Login, middleware.GetToken(c))
	slog.Info("user signed out", "login", id.Login)
	return c.JSON(fiber.Map{"ok": true})
}
