package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arturoeanton/repo-describer/internal/domain"
	"github.com/arturoeanton/repo-describer/internal/port"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolverFunc func(ctx context.Context, token string) (*domain.Identity, error)

func (f resolverFunc) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	return f(ctx, token)
}

func newApp(resolver IdentityResolver) *fiber.App {
	app := fiber.New()
	app.Get("/me", RequireToken(resolver), func(c fiber.Ctx) error {
		return c.SendString(GetIdentity(c).Login + ":" + GetToken(c))
	})
	return app
}

func TestRequireToken(t *testing.T) {
	resolver := resolverFunc(func(_ context.Context, token string) (*domain.Identity, error) {
		switch token {
		case "good":
			return &domain.Identity{Login: "octo"}, nil
		case "down":
			return nil, &port.APIError{Message: "Could not verify GitHub token.", Err: errors.New("dial tcp")}
		}
		return nil, &port.AuthError{Message: "Invalid or expired GitHub token."}
	})
	app := newApp(resolver)

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"bearer", "Bearer good", "", http.StatusOK},
		{"lowercase scheme", "bearer good", "", http.StatusOK},
		{"query fallback", "", "?token=good", http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"rejected", "Bearer bad", "", http.StatusUnauthorized},
		{"upstream failure", "Bearer down", "", http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
