package handler

import (
	"errors"
	"log/slog"

	"github.com/arturoeanton/repo-describer/internal/port"
	"github.com/gofiber/fiber/v3"
)

// writeError maps service and adapter errors to HTTP responses.
func writeError(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	var (
		authErr *port.AuthError
		apiErr  *port.APIError
		genErr  *port.GenerationError
	)
	switch {
	case errors.As(err, &authErr):
		status = fiber.StatusUnauthorized
		err = authErr
	case errors.Is(err, port.ErrInvalidTransition):
		status = fiber.StatusConflict
	case errors.Is(err, port.ErrRepoNotFound), errors.Is(err, port.ErrSessionNotFound):
		status = fiber.StatusNotFound
	case errors.As(err, &apiErr):
		status = fiber.StatusBadGateway
		err = apiErr
	case errors.As(err, &genErr):
		status = fiber.StatusBadGateway
		err = genErr
	}

	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
