package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/arturoeanton/repo-describer/internal/domain"
	"github.com/arturoeanton/repo-describer/internal/middleware"
	"github.com/arturoeanton/repo-describer/internal/port"
	"github.com/arturoeanton/repo-describer/internal/service"
	"github.com/gofiber/fiber/v3"
)

// StreamTimeout bounds how long a session event stream stays open.
const StreamTimeout = 10 * time.Minute

// RepoHandler exposes the candidate list and per-repository enrichment sessions.
type RepoHandler struct {
	catalog  *service.CatalogService
	sessions *service.SessionRegistry
}

// NewRepoHandler creates a new repo handler.
func NewRepoHandler(catalog *service.CatalogService, sessions *service.SessionRegistry) *RepoHandler {
	return &RepoHandler{catalog: catalog, sessions: sessions}
}

// Register sets up repository routes behind the given middleware.
func (h *RepoHandler) Register(router fiber.Router, mw ...fiber.Handler) {
	repos := router.Group("/repos")
	for _, m := range mw {
		repos.Use(m)
	}
	repos.Get("/", h.List)
	repos.Post("/:id/enrich", h.Enrich)

	session := repos.Group("/:id/session")
	session.Get("/", h.Session)
	session.Get("/stream", h.Stream)
	session.Post("/confirm", h.Confirm)
	session.Post("/cancel", h.Cancel)
	session.Post("/push", h.Push)
	session.Get("/copy", h.Copy)
	session.Post("/retry", h.Retry)
}

// List returns the caller's remaining candidates.
func (h *RepoHandler) List(c fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	repos := h.catalog.Candidates(id.Login)
	return c.JSON(fiber.Map{
		"repos": repos,
		"count": len(repos),
	})
}

// Enrich starts the workflow for one repository and returns immediately.
func (h *RepoHandler) Enrich(c fiber.Ctx) error {
	repo, err := h.lookup(c)
	if err != nil {
		return writeError(c, err)
	}
	login := middleware.GetIdentity(c).Login
	e := h.sessions.Open(login, repo, middleware.GetToken(c))

	if st := e.Snapshot().State; st != domain.StateIdle {
		return writeError(c, fmt.Errorf("enrich in state %s: %w", st, port.ErrInvalidTransition))
	}
	go func() {
		if err := e.Start(context.Background()); err != nil {
			slog.Warn("enrichment not started", "repo", repo.FullName, "error", err)
		}
	}()
	return c.Status(fiber.StatusAccepted).JSON(e.Snapshot())
}

// Session returns the current snapshot.
func (h *RepoHandler) Session(c fiber.Ctx) error {
	e, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(e.Snapshot())
}

// Confirm commits the reviewed README, then generates the description.
func (h *RepoHandler) Confirm(c fiber.Ctx) error {
	return h.runAsync(c, domain.StateReviewingReadme, (*service.Enrichment).ConfirmReadme)
}

// Push writes the generated description to GitHub.
func (h *RepoHandler) Push(c fiber.Ctx) error {
	return h.runAsync(c, domain.StateHasDescription, (*service.Enrichment).PushDescription)
}

// Cancel discards the reviewed README.
func (h *RepoHandler) Cancel(c fiber.Ctx) error {
	e, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := e.CancelReadme(); err != nil {
		return writeError(c, err)
	}
	return c.JSON(e.Snapshot())
}

// Retry resets a failed session to idle.
func (h *RepoHandler) Retry(c fiber.Ctx) error {
	e, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := e.Retry(); err != nil {
		return writeError(c, err)
	}
	return c.JSON(e.Snapshot())
}

// Copy returns the generated description.
func (h *RepoHandler) Copy(c fiber.Ctx) error {
	e, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	desc, err := e.CopyDescription()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"description": desc})
}

// Stream sends session snapshots as Server-Sent Events until the stream
// times out or the session is discarded.
func (h *RepoHandler) Stream(c fiber.Ctx) error {
	e, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}

	ch := e.Subscribe()
	current := e.Snapshot()

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer e.Unsubscribe(ch)

		if writeEvent(w, current) != nil {
			return
		}

		timeout := time.After(StreamTimeout)
		for {
			select {
			case update, ok := <-ch:
				if !ok {
					return
				}
				if writeEvent(w, update) != nil {
					return
				}
			case <-timeout:
				slog.Warn("SSE timeout", "repo_id", current.RepositoryID)
				return
			}
		}
	})
}

// runAsync checks the trigger's state up front so the caller gets a 409,
// then runs the step in the background.
func (h *RepoHandler) runAsync(c fiber.Ctx, from domain.State, step func(*service.Enrichment, context.Context) error) error {
	e, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	if st := e.Snapshot().State; st != from {
		return writeError(c, fmt.Errorf("%s: %w", st, port.ErrInvalidTransition))
	}

	repo := e.Repository().FullName
	go func() {
		if err := step(e, context.Background()); err != nil {
			slog.Warn("session step rejected", "repo", repo, "error", err)
		}
	}()
	return c.Status(fiber.StatusAccepted).JSON(e.Snapshot())
}

func (h *RepoHandler) lookup(c fiber.Ctx) (domain.Repository, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return domain.Repository{}, fmt.Errorf("invalid id %q: %w", c.Params("id"), port.ErrRepoNotFound)
	}
	return h.catalog.Lookup(middleware.GetIdentity(c).Login, id)
}

// session returns the caller's session for :id. A session whose token was
// rejected by GitHub signs the user out, so the client asks for a new token.
func (h *RepoHandler) session(c fiber.Ctx) (*service.Enrichment, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q: %w", c.Params("id"), port.ErrSessionNotFound)
	}
	login := middleware.GetIdentity(c).Login
	e, err := h.sessions.Get(login, id)
	if err != nil {
		return nil, err
	}
	if e.Unauthorized() {
		slog.Warn("token rejected during enrichment, signing out", "login", login, "repo", e.Repository().FullName)
		h.sessions.DiscardUser(login)
		h.catalog.Logout(login, middleware.GetToken(c))
		return nil, &port.AuthError{Message: e.Snapshot().Error}
	}
	return e, nil
}

func writeEvent(w *bufio.Writer, s domain.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: session\ndata: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}
