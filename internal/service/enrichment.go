package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/arturoeanton/repo-describer/internal/domain"
	"github.com/arturoeanton/repo-describer/internal/port"
	"github.com/google/uuid"
)

const (
	// ReadmePath is where a synthesized README is committed when the
	// repository has none.
	ReadmePath = "README.md"

	// ReadmeCommitMessage is the commit message for synthesized READMEs.
	ReadmeCommitMessage = "feat: add AI-generated README.md"
)

// Enrichment is the per-repository workflow: analyze the README, synthesize
// one when it is missing or generic, generate a description, and push the
// results after user confirmation.
//
// Triggers are gated on the current state; a trigger issued in the wrong
// state returns port.ErrInvalidTransition and changes nothing. Long steps run
// synchronously in the caller's goroutine, so callers wanting a non-blocking
// shell launch them with go.
type Enrichment struct {
	repo        domain.Repository
	token       string
	hosting     port.HostingPlatform
	docs        port.Documenter
	onCompleted func(repoID int64)

	mu           sync.Mutex
	session      domain.Session
	subs         []chan domain.Session
	completed    bool
	unauthorized bool
}

// NewEnrichment creates an idle workflow for repo. onCompleted fires once,
// after the generated description has been pushed.
func NewEnrichment(repo domain.Repository, token string, hosting port.HostingPlatform, docs port.Documenter, onCompleted func(repoID int64)) *Enrichment {
	return &Enrichment{
		repo:        repo,
		token:       token,
		hosting:     hosting,
		docs:        docs,
		onCompleted: onCompleted,
		session: domain.Session{
			ID:           uuid.NewString(),
			RepositoryID: repo.ID,
			Repository:   repo.FullName,
			State:        domain.StateIdle,
			UpdatedAt:    time.Now(),
		},
	}
}

// Repository returns the repository this workflow enriches.
func (e *Enrichment) Repository() domain.Repository { return e.repo }

// Snapshot returns the current session state.
func (e *Enrichment) Snapshot() domain.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Subscribe returns a channel that receives every subsequent state change.
func (e *Enrichment) Subscribe() chan domain.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	ch := make(chan domain.Session, 16)
	e.subs = append(e.subs, ch)
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (e *Enrichment) Unsubscribe(ch chan domain.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.subs {
		if s == ch {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Close detaches every subscriber. The workflow itself stays usable.
func (e *Enrichment) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ch := range e.subs {
		close(ch)
	}
	e.subs = nil
}

// Start runs the analysis from idle until the workflow needs the user again:
// reviewing_readme, has_description, or error.
func (e *Enrichment) Start(ctx context.Context) error {
	if err := e.transition([]domain.State{domain.StateIdle}, func(s *domain.Session) {
		s.State = domain.StateAnalyzing
		s.Error = ""
		s.GeneratedDescription = ""
		s.GeneratedReadme = ""
		s.ReadmeSHA = ""
		s.ReadmePath = ""
	}); err != nil {
		return err
	}
	slog.Info("enrichment started", "repo", e.repo.FullName)

	doc, err := e.hosting.ReadReadme(ctx, e.repo.Owner.Login, e.repo.Name, e.token)
	if err != nil {
		e.fail(err)
		return nil
	}

	if doc != nil {
		// An existing file is replaced in place even when it is blank.
		e.update(func(s *domain.Session) {
			s.ReadmeSHA = doc.SHA
			s.ReadmePath = doc.Path
		})
	}
	if doc != nil && strings.TrimSpace(doc.Content) != "" {
		if !e.docs.IsGeneric(ctx, doc.Content) {
			e.describe(ctx, doc.Content)
			return nil
		}
		slog.Info("existing readme is generic", "repo", e.repo.FullName)
	}

	e.synthesize(ctx)
	return nil
}

// ConfirmReadme commits the reviewed README and then describes it.
func (e *Enrichment) ConfirmReadme(ctx context.Context) error {
	var readme, sha, path string
	if err := e.transition([]domain.State{domain.StateReviewingReadme}, func(s *domain.Session) {
		s.State = domain.StateCreatingReadme
		readme, sha, path = s.GeneratedReadme, s.ReadmeSHA, s.ReadmePath
	}); err != nil {
		return err
	}
	if sha == "" || path == "" {
		path = ReadmePath
	}

	err := e.hosting.CreateOrUpdateFile(ctx, e.repo.Owner.Login, e.repo.Name, domain.FileWrite{
		Path:    path,
		Content: readme,
		Message: ReadmeCommitMessage,
		SHA:     sha,
	}, e.token)
	if err != nil {
		e.fail(err)
		return nil
	}
	slog.Info("readme committed", "repo", e.repo.FullName, "path", path, "replaced", sha != "")

	e.describe(ctx, readme)
	return nil
}

// CancelReadme discards the reviewed README without writing anything.
func (e *Enrichment) CancelReadme() error {
	return e.transition([]domain.State{domain.StateReviewingReadme}, resetSession)
}

// CopyDescription returns the generated description for the clipboard.
func (e *Enrichment) CopyDescription() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.State != domain.StateHasDescription || e.session.GeneratedDescription == "" {
		return "", fmt.Errorf("copy description in state %s: %w", e.session.State, port.ErrInvalidTransition)
	}
	return e.session.GeneratedDescription, nil
}

// PushDescription writes the generated description to the repository. A
// failed push returns to has_description with the text kept, so the push can
// be retried without regenerating.
func (e *Enrichment) PushDescription(ctx context.Context) error {
	var desc string
	if err := e.transition([]domain.State{domain.StateHasDescription}, func(s *domain.Session) {
		s.State = domain.StateUpdatingDescription
		s.Error = ""
		desc = s.GeneratedDescription
	}); err != nil {
		return err
	}

	if err := e.hosting.UpdateDescription(ctx, e.repo.Owner.Login, e.repo.Name, desc, e.token); err != nil {
		slog.Error("description push failed", "repo", e.repo.FullName, "error", err)
		e.update(func(s *domain.Session) {
			s.State = domain.StateHasDescription
			s.Error = err.Error()
		})
		return nil
	}
	slog.Info("description pushed", "repo", e.repo.FullName)

	e.mu.Lock()
	fire := !e.completed
	e.completed = true
	e.mu.Unlock()

	e.update(resetSession)
	if fire && e.onCompleted != nil {
		e.onCompleted(e.repo.ID)
	}
	return nil
}

// Unauthorized reports whether a step failed because the token was rejected.
// The user has to sign in again before the session is of any further use.
func (e *Enrichment) Unauthorized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unauthorized
}

// Retry clears a failed run back to idle so it can start from scratch.
func (e *Enrichment) Retry() error {
	return e.transition([]domain.State{domain.StateError}, resetSession)
}

func (e *Enrichment) synthesize(ctx context.Context) {
	e.update(func(s *domain.Session) { s.State = domain.StateGeneratingReadme })

	tree, err := e.hosting.ListFileTree(ctx, e.repo.Owner.Login, e.repo.Name, e.repo.DefaultBranch, e.token)
	if err != nil {
		e.fail(err)
		return
	}

	selected := SelectAnalysisFiles(tree)
	snippets := fetchSnippets(ctx, e.hosting, e.repo, e.token, selected)
	slog.Info("synthesizing readme", "repo", e.repo.FullName, "selected", len(selected), "loaded", len(snippets))

	readme, err := e.docs.SynthesizeReadme(ctx, e.repo.Name, snippets)
	if err != nil {
		e.fail(err)
		return
	}
	e.update(func(s *domain.Session) {
		s.State = domain.StateReviewingReadme
		s.GeneratedReadme = readme
	})
}

func (e *Enrichment) describe(ctx context.Context, readme string) {
	e.update(func(s *domain.Session) { s.State = domain.StateGeneratingDescription })

	desc, err := e.docs.SummarizeToDescription(ctx, readme)
	if err != nil {
		e.fail(err)
		return
	}
	e.update(func(s *domain.Session) {
		s.State = domain.StateHasDescription
		s.GeneratedDescription = desc
	})
}

func (e *Enrichment) fail(err error) {
	slog.Error("enrichment failed", "repo", e.repo.FullName, "error", err)
	msg := err.Error()
	if msg == "" {
		msg = "An unknown error occurred."
	}
	auth := port.IsAuth(err)
	e.update(func(s *domain.Session) {
		s.State = domain.StateError
		s.Error = msg
		if auth {
			e.unauthorized = true
		}
	})
}

// transition applies mutate only when the session is in one of from. The
// check and the change happen under one lock, so of two racing triggers at
// most one is accepted.
func (e *Enrichment) transition(from []domain.State, mutate func(s *domain.Session)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !slices.Contains(from, e.session.State) {
		return fmt.Errorf("%s: %w", e.session.State, port.ErrInvalidTransition)
	}
	e.apply(mutate)
	return nil
}

// update mutates the session and notifies subscribers without blocking.
func (e *Enrichment) update(mutate func(s *domain.Session)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.apply(mutate)
}

// apply must be called with e.mu held.
func (e *Enrichment) apply(mutate func(s *domain.Session)) {
	mutate(&e.session)
	e.session.UpdatedAt = time.Now()
	snapshot := e.session
	for _, ch := range e.subs {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func resetSession(s *domain.Session) {
	s.State = domain.StateIdle
	s.Error = ""
	s.GeneratedDescription = ""
	s.GeneratedReadme = ""
	s.ReadmeSHA = ""
	s.ReadmePath = ""
}
