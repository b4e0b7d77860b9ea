package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/arturoeanton/repo-describer/internal/domain"
	"github.com/arturoeanton/repo-describer/internal/port"
	"github.com/gofiber/fiber/v3"
)

const (
	localIdentity = "identity"
	localToken    = "token"
)

// IdentityResolver maps a GitHub token to the account behind it.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Identity, error)
}

// RequireToken creates a Fiber middleware that reads the GitHub token,
// resolves its identity and stores both in the request locals.
func RequireToken(resolver IdentityResolver) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := ExtractToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing authorization",
			})
		}

		identity, err := resolver.Resolve(c.Context(), token)
		if err != nil {
			if port.IsAuth(err) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
			slog.Error("identity lookup failed", "error", err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		SetIdentity(c, identity)
		c.Locals(localToken, token)
		return c.Next()
	}
}

// ExtractToken returns the bearer token from the Authorization header, or
// the ?token= query param for EventSource clients that cannot set headers.
func ExtractToken(c fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.TrimSpace(c.Query("token"))
}

// SetIdentity attaches identity to the request for later handlers and auditing.
func SetIdentity(c fiber.Ctx, identity *domain.Identity) {
	c.Locals(localIdentity, identity)
}

// GetIdentity extracts the resolved identity from Fiber locals.
func GetIdentity(c fiber.Ctx) *domain.Identity {
	id, ok := c.Locals(localIdentity).(*domain.Identity)
	if !ok {
		return nil
	}
	return id
}

// GetToken extracts the request's GitHub token from Fiber locals.
func GetToken(c fiber.Ctx) string {
	token, _ := c.Locals(localToken).(string)
	return token
}
