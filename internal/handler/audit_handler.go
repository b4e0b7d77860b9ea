package handler

import (
	"context"
	"strconv"

	"github.com/arturoeanton/repo-describer/internal/domain"
	"github.com/arturoeanton/repo-describer/internal/middleware"
	"github.com/gofiber/fiber/v3"
)

// AuditReader lists stored audit records.
type AuditReader interface {
	ListAuditLogs(ctx context.Context, limit int, userID string) ([]domain.AuditLog, error)
}

// AuditHandler handles audit log endpoints.
type AuditHandler struct {
	store AuditReader
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(store AuditReader) *AuditHandler {
	return &AuditHandler{store: store}
}

// Register sets up audit routes behind the given middleware.
func (h *AuditHandler) Register(router fiber.Router, mw ...fiber.Handler) {
	audit := router.Group("/audit")
	for _, m := range mw {
		audit.Use(m)
	}
	audit.Get("/logs", h.ListLogs)
}

// ListLogs returns the caller's most recent requests.
func (h *AuditHandler) ListLogs(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))

	logs, err := h.store.ListAuditLogs(c.Context(), limit, middleware.GetIdentity(c).Login)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"count": len(logs),
	})
}
