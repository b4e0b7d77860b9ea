package service

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/arturoeanton/repo-describer/internal/domain"
	"github.com/arturoeanton/repo-describer/internal/port"
	lru "github.com/hashicorp/golang-lru/v2"
)

type sessionKey struct {
	login  string
	repoID int64
}

// SessionRegistry keeps one Enrichment per user and repository.
type SessionRegistry struct {
	hosting     port.HostingPlatform
	docs        port.Documenter
	onCompleted func(login string, repoID int64)

	mu       sync.Mutex
	sessions *lru.Cache[sessionKey, *Enrichment]
}

// NewSessionRegistry creates a registry holding at most size sessions.
// onCompleted runs after a repository's description has been pushed; the
// session is discarded right after it.
func NewSessionRegistry(size int, hosting port.HostingPlatform, docs port.Documenter, onCompleted func(login string, repoID int64)) (*SessionRegistry, error) {
	sessions, err := lru.NewWithEvict(size, func(key sessionKey, e *Enrichment) {
		e.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	return &SessionRegistry{
		hosting:     hosting,
		docs:        docs,
		onCompleted: onCompleted,
		sessions:    sessions,
	}, nil
}

// Open returns the user's session for repo, creating an idle one if needed.
func (r *SessionRegistry) Open(login string, repo domain.Repository, token string) *Enrichment {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionKey{login: login, repoID: repo.ID}
	if e, ok := r.sessions.Get(key); ok {
		return e
	}

	e := NewEnrichment(repo, token, r.hosting, r.docs, func(repoID int64) {
		if r.onCompleted != nil {
			r.onCompleted(login, repoID)
		}
		r.Discard(login, repoID)
	})
	r.sessions.Add(key, e)
	slog.Debug("session opened", "login", login, "repo", repo.FullName)
	return e
}

// Get returns an existing session.
func (r *SessionRegistry) Get(login string, repoID int64) (*Enrichment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions.Get(sessionKey{login: login, repoID: repoID}); ok {
		return e, nil
	}
	return nil, fmt.Errorf("repository %d: %w", repoID, port.ErrSessionNotFound)
}

// Discard drops a session and detaches its subscribers.
func (r *SessionRegistry) Discard(login string, repoID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions.Remove(sessionKey{login: login, repoID: repoID})
}

// DiscardUser drops every session belonging to login.
func (r *SessionRegistry) DiscardUser(login string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range r.sessions.Keys() {
		if key.login == login {
			r.sessions.Remove(key)
		}
	}
}

// Len reports the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions.Len()
}
