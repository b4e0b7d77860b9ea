package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/arturoeanton/repo-describer/internal/domain"
	"github.com/gofiber/fiber/v3"
)

// AuditWriter defines how audit records are persisted.
type AuditWriter interface {
	WriteAudit(ctx context.Context, entry domain.AuditLog) error
}

// AuditMiddleware records every request. Query strings are dropped so
// tokens passed as ?token= never reach the audit trail.
func AuditMiddleware(writer AuditWriter) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		// Fiber reuses context buffers; copy before the handler runs.
		method := strings.Clone(c.Method())
		path := strings.Clone(c.Path())
		ip := strings.Clone(c.IP())
		userAgent := strings.Clone(c.Get("User-Agent"))

		err := c.Next()

		var login string
		if id := GetIdentity(c); id != nil {
			login = id.Login
		}

		entry := domain.NewRequestAudit(login, ip, userAgent, domain.RequestDetails{
			Method:     method,
			Path:       path,
			Status:     c.Response().StatusCode(),
			DurationMS: time.Since(start).Milliseconds(),
		})
		go func() {
			if writeErr := writer.WriteAudit(context.Background(), entry); writeErr != nil {
				slog.Error("failed to write audit log", "error", writeErr)
			}
		}()

		return err
	}
}
