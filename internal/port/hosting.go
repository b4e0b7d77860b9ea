package port

import (
	"context"

	"github.com/arturoeanton/repo-describer/internal/domain"
)

// HostingPlatform abstracts the source-control hosting REST API.
// Every call carries the user's bearer credential; implementations never
// store or refresh it.
type HostingPlatform interface {
	// VerifyIdentity returns the account behind token, or an *AuthError.
	VerifyIdentity(ctx context.Context, token string) (*domain.Identity, error)

	// ListOwnedRepositories returns every repository owned by the caller,
	// following pagination until exhausted.
	ListOwnedRepositories(ctx context.Context, token string) ([]domain.Repository, error)

	// ReadReadme returns the decoded README, or nil when the repository has none.
	ReadReadme(ctx context.Context, owner, repo, token string) (*domain.ReadmeDocument, error)

	// ListFileTree returns the blob entries of branch's full tree.
	ListFileTree(ctx context.Context, owner, repo, branch, token string) ([]domain.FileTreeEntry, error)

	// ReadFileContent returns a single file decoded to text.
	ReadFileContent(ctx context.Context, owner, repo, path, token string) (string, error)

	// UpdateDescription sets the repository description.
	UpdateDescription(ctx context.Context, owner, repo, description, token string) error

	// CreateOrUpdateFile commits one file. A non-empty w.SHA replaces that version.
	CreateOrUpdateFile(ctx context.Context, owner, repo string, w domain.FileWrite, token string) error
}
