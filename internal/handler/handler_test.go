package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/arturoeanton/repo-describer/internal/adapter/store"
	"github.com/arturoeanton/repo-describer/internal/domain"
	"github.com/arturoeanton/repo-describer/internal/middleware"
	"github.com/arturoeanton/repo-describer/internal/port"
	"github.com/arturoeanton/repo-describer/internal/service"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodToken = "ghp_good"

type stubHosting struct {
	mu           sync.Mutex
	descriptions []string
	revoked      bool
}

func (s *stubHosting) isRevoked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked
}

func (s *stubHosting) VerifyIdentity(_ context.Context, token string) (*domain.Identity, error) {
	if token != goodToken || s.isRevoked() {
		return nil, &port.AuthError{Message: "Invalid or expired GitHub token. Please check your Personal Access Token."}
	}
	return &domain.Identity{Login: "octo", Name: "Octo Cat"}, nil
}

func (s *stubHosting) ListOwnedRepositories(context.Context, string) ([]domain.Repository, error) {
	desc := "has one"
	return []domain.Repository{
		{ID: 1, Name: "alpha", FullName: "octo/alpha", Owner: domain.Owner{Login: "octo"}, DefaultBranch: "main"},
		{ID: 2, Name: "beta", FullName: "octo/beta", Owner: domain.Owner{Login: "octo"}, Description: &desc},
		{ID: 3, Name: "gamma", FullName: "octo/gamma", Owner: domain.Owner{Login: "octo"}, DefaultBranch: "main"},
	}, nil
}

func (s *stubHosting) ReadReadme(context.Context, string, string, string) (*domain.ReadmeDocument, error) {
	if s.isRevoked() {
		return nil, &port.AuthError{Message: "Invalid or expired GitHub token. Please check your Personal Access Token."}
	}
	return &domain.ReadmeDocument{Content: "# alpha\nParses things.", SHA: "abc"}, nil
}

func (s *stubHosting) ListFileTree(context.Context, string, string, string, string) ([]domain.FileTreeEntry, error) {
	return nil, nil
}

func (s *stubHosting) ReadFileContent(context.Context, string, string, string, string) (string, error) {
	return "", nil
}

func (s *stubHosting) UpdateDescription(_ context.Context, _, _, description, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.descriptions = append(s.descriptions, description)
	return nil
}

func (s *stubHosting) CreateOrUpdateFile(context.Context, string, string, domain.FileWrite, string) error {
	return nil
}

type stubDocs struct{}

func (stubDocs) SummarizeToDescription(context.Context, string) (string, error) {
	return "Parses things.", nil
}

func (stubDocs) IsGeneric(context.Context, string) bool { return false }

func (stubDocs) SynthesizeReadme(context.Context, string, []domain.FileSnippet) (string, error) {
	return "# readme", nil
}

func newTestApp(t *testing.T) (*fiber.App, *stubHosting, *store.MemoryStore) {
	t.Helper()
	hosting := &stubHosting{}
	catalog, err := service.NewCatalogService(hosting, 8, time.Minute)
	require.NoError(t, err)
	sessions, err := service.NewSessionRegistry(8, hosting, stubDocs{}, catalog.Remove)
	require.NoError(t, err)
	audit := store.NewMemoryStore(100)

	app := fiber.New()
	app.Use(middleware.AuditMiddleware(audit))
	api := app.Group("/api/v1")
	requireToken := middleware.RequireToken(catalog)

	NewAuthHandler(catalog, sessions).Register(api, requireToken)
	NewRepoHandler(catalog, sessions).Register(api, requireToken)
	NewAuditHandler(audit).Register(api, requireToken)
	return app, hosting, audit
}

func call(t *testing.T, app *fiber.App, method, path, token string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]interface{}{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp.StatusCode, body
}

func TestLogin_RejectsBadToken(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, body := call(t, app, http.MethodPost, "/api/v1/auth/login", "nope")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body["error"], "Invalid or expired GitHub token")

	status, _ = call(t, app, http.MethodPost, "/api/v1/auth/login", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, _ := call(t, app, http.MethodGet, "/api/v1/repos", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, app, http.MethodGet, "/api/v1/repos", "bad")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestEnrichmentFlow(t *testing.T) {
	app, hosting, _ := newTestApp(t)

	status, body := call(t, app, http.MethodPost, "/api/v1/auth/login", goodToken)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["count"])

	status, _ = call(t, app, http.MethodGet, "/api/v1/repos/2/session", goodToken)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, app, http.MethodPost, "/api/v1/repos/2/enrich", goodToken)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, app, http.MethodPost, "/api/v1/repos/1/enrich", goodToken)
	require.Equal(t, http.StatusAccepted, status)

	require.Eventually(t, func() bool {
		_, s := call(t, app, http.MethodGet, "/api/v1/repos/1/session", goodToken)
		return s["state"] == string(domain.StateHasDescription)
	}, 2*time.Second, 10*time.Millisecond)

	status, _ = call(t, app, http.MethodPost, "/api/v1/repos/1/session/confirm", goodToken)
	assert.Equal(t, http.StatusConflict, status)

	status, body = call(t, app, http.MethodGet, "/api/v1/repos/1/session/copy", goodToken)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Parses things.", body["description"])

	status, _ = call(t, app, http.MethodPost, "/api/v1/repos/1/session/push", goodToken)
	require.Equal(t, http.StatusAccepted, status)

	require.Eventually(t, func() bool {
		_, b := call(t, app, http.MethodGet, "/api/v1/repos", goodToken)
		return b["count"] == float64(1)
	}, 2*time.Second, 10*time.Millisecond)

	hosting.mu.Lock()
	assert.Equal(t, []string{"Parses things."}, hosting.descriptions)
	hosting.mu.Unlock()

	assert.Eventually(t, func() bool {
		status, _ := call(t, app, http.MethodGet, "/api/v1/repos/1/session", goodToken)
		return status == http.StatusNotFound
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRevokedTokenSignsOut(t *testing.T) {
	app, hosting, _ := newTestApp(t)

	status, _ := call(t, app, http.MethodPost, "/api/v1/auth/login", goodToken)
	require.Equal(t, http.StatusOK, status)

	hosting.mu.Lock()
	hosting.revoked = true
	hosting.mu.Unlock()

	// The cached identity still admits the request.
	status, _ = call(t, app, http.MethodPost, "/api/v1/repos/1/enrich", goodToken)
	require.Equal(t, http.StatusAccepted, status)

	require.Eventually(t, func() bool {
		status, _ := call(t, app, http.MethodGet, "/api/v1/repos/1/session", goodToken)
		return status == http.StatusUnauthorized
	}, 2*time.Second, 10*time.Millisecond)

	status, _ = call(t, app, http.MethodGet, "/api/v1/repos", goodToken)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuditLogs_ListsCallerRequests(t *testing.T) {
	app, _, audit := newTestApp(t)

	call(t, app, http.MethodPost, "/api/v1/auth/login", goodToken)
	call(t, app, http.MethodGet, "/api/v1/repos?token=secret", goodToken)

	require.Eventually(t, func() bool {
		logs, err := audit.ListAuditLogs(t.Context(), 0, "octo")
		return err == nil && len(logs) >= 2
	}, 2*time.Second, 10*time.Millisecond)

	status, body := call(t, app, http.MethodGet, "/api/v1/audit/logs?limit=10", goodToken)
	require.Equal(t, http.StatusOK, status)
	logs, ok := body["logs"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, logs)
	for _, l := range logs {
		entry := l.(map[string]interface{})
		assert.Equal(t, "octo", entry["user_id"])
		assert.NotContains(t, entry["details"], "secret")
	}
}
