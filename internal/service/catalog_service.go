package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/arturoeanton/repo-describer/internal/domain"
	"github.com/arturoeanton/repo-describer/internal/port"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CatalogService holds each signed-in user's list of enrichment candidates.
// Tokens are never stored; identities are cached under a hash of the token.
type CatalogService struct {
	hosting port.HostingPlatform

	mu         sync.Mutex
	catalogs   *lru.Cache[string, []domain.Repository]
	identities *expirable.LRU[string, domain.Identity]
}

// NewCatalogService creates a catalog service bounded to size users.
func NewCatalogService(hosting port.HostingPlatform, size int, identityTTL time.Duration) (*CatalogService, error) {
	catalogs, err := lru.New[string, []domain.Repository](size)
	if err != nil {
		return nil, fmt.Errorf("create catalog cache: %w", err)
	}
	return &CatalogService{
		hosting:    hosting,
		catalogs:   catalogs,
		identities: expirable.NewLRU[string, domain.Identity](size, nil, identityTTL),
	}, nil
}

// Login verifies the token, lists the user's repositories and stores the
// candidates.
func (s *CatalogService) Login(ctx context.Context, token string) (*domain.Identity, []domain.Repository, error) {
	identity, err := s.hosting.VerifyIdentity(ctx, token)
	if err != nil {
		return nil, nil, fmt.Errorf("verify identity: %w", err)
	}
	s.identities.Add(tokenKey(token), *identity)

	repos, err := s.hosting.ListOwnedRepositories(ctx, token)
	if err != nil {
		return nil, nil, fmt.Errorf("list repositories: %w", err)
	}
	candidates := SelectCandidates(repos)

	s.mu.Lock()
	s.catalogs.Add(identity.Login, candidates)
	s.mu.Unlock()

	slog.Info("user signed in", "login", identity.Login, "repositories", len(repos), "candidates", len(candidates))
	return identity, candidates, nil
}

// Resolve returns the identity behind token, verifying it when not cached.
func (s *CatalogService) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	key := tokenKey(token)
	if identity, ok := s.identities.Get(key); ok {
		return &identity, nil
	}
	identity, err := s.hosting.VerifyIdentity(ctx, token)
	if err != nil {
		return nil, err
	}
	s.identities.Add(key, *identity)
	return identity, nil
}

// Candidates returns a copy of the user's current candidate list.
func (s *CatalogService) Candidates(login string) []domain.Repository {
	s.mu.Lock()
	defer s.mu.Unlock()
	repos, _ := s.catalogs.Peek(login)
	out := make([]domain.Repository, len(repos))
	copy(out, repos)
	return out
}

// Lookup finds a candidate by repository id.
func (s *CatalogService) Lookup(login string, id int64) (domain.Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	repos, _ := s.catalogs.Get(login)
	for _, r := range repos {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Repository{}, fmt.Errorf("repository %d: %w", id, port.ErrRepoNotFound)
}

// Remove drops a repository from the user's candidates, typically once its
// description has been pushed.
func (s *CatalogService) Remove(login string, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	repos, ok := s.catalogs.Peek(login)
	if !ok {
		return
	}
	kept := make([]domain.Repository, 0, len(repos))
	for _, r := range repos {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.catalogs.Add(login, kept)
	slog.Info("repository removed from candidates", "login", login, "repo_id", id, "remaining", len(kept))
}

// Logout forgets the user's catalog and the identity cached for token.
func (s *CatalogService) Logout(login, token string) {
	s.mu.Lock()
	s.catalogs.Remove(login)
	s.mu.Unlock()
	if token != "" {
		s.identities.Remove(tokenKey(token))
	}
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
