package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/arturoeanton/repo-describer/internal/domain"
	"github.com/arturoeanton/repo-describer/internal/port"
)

const reposPerPage = 100

func errUnauthorized() error {
	return &port.AuthError{Message: "Invalid or expired GitHub token. Please check your Personal Access Token."}
}

// VerifyIdentity fetches the authenticated user's profile.
func (c *Client) VerifyIdentity(ctx context.Context, token string) (*domain.Identity, error) {
	resp, err := c.do(ctx, http.MethodGet, "/user", token, nil)
	if err != nil {
		return nil, &port.APIError{Op: "verify identity", Message: "Could not verify GitHub token.", Err: err}
	}
	if resp.status == http.StatusUnauthorized {
		return nil, errUnauthorized()
	}
	if !resp.ok() {
		return nil, &port.APIError{Op: "verify identity", StatusCode: resp.status, Message: "Could not verify GitHub token."}
	}

	var identity domain.Identity
	if err := json.Unmarshal(resp.body, &identity); err != nil {
		return nil, &port.DecodeError{Message: "Could not decode GitHub profile.", Err: err}
	}
	return &identity, nil
}

// ListOwnedRepositories returns all repositories owned by the caller.
func (c *Client) ListOwnedRepositories(ctx context.Context, token string) ([]domain.Repository, error) {
	first := fmt.Sprintf("/user/repos?per_page=%d&type=owner", reposPerPage)

	repos, err := CollectPages(ctx, first, func(ctx context.Context, cursor string) ([]domain.Repository, string, error) {
		resp, err := c.do(ctx, http.MethodGet, cursor, token, nil)
		if err != nil {
			return nil, "", &port.APIError{Op: "list repositories", Message: "Failed to fetch repositories from GitHub.", Err: err}
		}
		if resp.status == http.StatusUnauthorized {
			return nil, "", errUnauthorized()
		}
		if !resp.ok() {
			return nil, "", &port.APIError{Op: "list repositories", StatusCode: resp.status, Message: "Failed to fetch repositories from GitHub."}
		}

		var page []domain.Repository
		if err := json.Unmarshal(resp.body, &page); err != nil {
			return nil, "", &port.DecodeError{Message: "Could not decode repository listing.", Err: err}
		}
		return page, nextLink(resp.header.Get("Link")), nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("listed repositories", "count", len(repos))
	return repos, nil
}

// ReadReadme returns the repository README, or nil when none exists.
func (c *Client) ReadReadme(ctx context.Context, owner, repo, token string) (*domain.ReadmeDocument, error) {
	resp, err := c.do(ctx, http.MethodGet, repoPath(owner, repo, "/readme"), token, nil)
	if err != nil {
		return nil, &port.APIError{Op: "read readme", Message: fmt.Sprintf("Failed to fetch README for repository %q.", repo), Err: err}
	}
	switch resp.status {
	case http.StatusNotFound:
		return nil, nil
	case http.StatusUnauthorized:
		return nil, errUnauthorized()
	}
	if !resp.ok() {
		return nil, &port.APIError{Op: "read readme", StatusCode: resp.status, Message: fmt.Sprintf("Failed to fetch README for repository %q.", repo)}
	}

	var payload struct {
		Path    string `json:"path"`
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return nil, &port.DecodeError{Message: "Failed to decode README content. It might be corrupted.", Err: err}
	}
	text, err := decodeContent(payload.Content)
	if err != nil {
		return nil, &port.DecodeError{Message: "Failed to decode README content. It might be corrupted.", Err: err}
	}
	return &domain.ReadmeDocument{Path: payload.Path, Content: text, SHA: payload.SHA}, nil
}

// ListFileTree resolves branch to its tree and returns the recursive blob listing.
func (c *Client) ListFileTree(ctx context.Context, owner, repo, branch, token string) ([]domain.FileTreeEntry, error) {
	branchResp, err := c.do(ctx, http.MethodGet, repoPath(owner, repo, "/branches/"+escapePath(branch)), token, nil)
	if err != nil {
		return nil, &port.APIError{Op: "resolve branch", Message: fmt.Sprintf("Could not resolve branch '%s' for repo %s.", branch, repo), Err: err}
	}
	if branchResp.status == http.StatusNotFound {
		return nil, &port.APIError{
			Op:         "resolve branch",
			StatusCode: branchResp.status,
			Message:    fmt.Sprintf("Could not find default branch '%s' for repo %s.", branch, repo),
			Err:        port.ErrBranchNotFound,
		}
	}
	if branchResp.status == http.StatusUnauthorized {
		return nil, errUnauthorized()
	}
	if !branchResp.ok() {
		return nil, &port.APIError{Op: "resolve branch", StatusCode: branchResp.status, Message: fmt.Sprintf("Could not resolve branch '%s' for repo %s.", branch, repo)}
	}

	var branchData struct {
		Commit struct {
			Commit struct {
				Tree struct {
					SHA string `json:"sha"`
				} `json:"tree"`
			} `json:"commit"`
		} `json:"commit"`
	}
	if err := json.Unmarshal(branchResp.body, &branchData); err != nil {
		return nil, &port.DecodeError{Message: "Could not decode branch details.", Err: err}
	}
	treeSHA := branchData.Commit.Commit.Tree.SHA
	if treeSHA == "" {
		return nil, &port.DecodeError{Message: fmt.Sprintf("Branch '%s' of repo %s has no tree.", branch, repo)}
	}

	treeResp, err := c.do(ctx, http.MethodGet, repoPath(owner, repo, "/git/trees/"+treeSHA+"?recursive=1"), token, nil)
	if err != nil {
		return nil, &port.APIError{Op: "list tree", Message: "Failed to fetch file tree from GitHub.", Err: err}
	}
	if treeResp.status == http.StatusUnauthorized {
		return nil, errUnauthorized()
	}
	if !treeResp.ok() {
		return nil, &port.APIError{Op: "list tree", StatusCode: treeResp.status, Message: "Failed to fetch file tree from GitHub."}
	}

	var treeData struct {
		Tree      []domain.FileTreeEntry `json:"tree"`
		Truncated bool                   `json:"truncated"`
	}
	if err := json.Unmarshal(treeResp.body, &treeData); err != nil {
		return nil, &port.DecodeError{Message: "Could not decode file tree.", Err: err}
	}
	if treeData.Truncated {
		slog.Warn("file tree truncated by GitHub", "repo", owner+"/"+repo)
	}

	blobs := make([]domain.FileTreeEntry, 0, len(treeData.Tree))
	for _, e := range treeData.Tree {
		if e.Type == domain.EntryBlob {
			blobs = append(blobs, e)
		}
	}
	return blobs, nil
}

// ReadFileContent fetches one file and decodes it to text.
func (c *Client) ReadFileContent(ctx context.Context, owner, repo, path, token string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, repoPath(owner, repo, "/contents/"+escapePath(path)), token, nil)
	if err != nil {
		return "", &port.APIError{Op: "read file", Message: "Could not fetch content for file: " + path, Err: err}
	}
	if resp.status == http.StatusUnauthorized {
		return "", errUnauthorized()
	}
	if !resp.ok() {
		return "", &port.APIError{Op: "read file", StatusCode: resp.status, Message: "Could not fetch content for file: " + path}
	}

	var payload struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return "", &port.DecodeError{Message: "Could not decode content for file: " + path, Err: err}
	}
	if payload.Encoding != "base64" {
		return "", &port.UnsupportedEncodingError{Path: path, Encoding: payload.Encoding}
	}
	text, err := decodeContent(payload.Content)
	if err != nil {
		return "", &port.DecodeError{Message: "Could not decode content for file: " + path, Err: err}
	}
	return text, nil
}

// UpdateDescription patches the repository description.
func (c *Client) UpdateDescription(ctx context.Context, owner, repo, description, token string) error {
	payload := map[string]string{"description": description}

	resp, err := c.do(ctx, http.MethodPatch, repoPath(owner, repo, ""), token, payload)
	if err != nil {
		return &port.APIError{Op: "update description", Message: "Failed to update repository on GitHub.", Err: err}
	}
	if resp.status == http.StatusUnauthorized {
		return errUnauthorized()
	}
	if !resp.ok() {
		msg := serverMessage(resp.body)
		if msg == "" {
			msg = "Failed to update repository. Check token permissions (`repo` scope)."
		}
		return &port.APIError{Op: "update description", StatusCode: resp.status, Message: msg}
	}
	return nil
}

// CreateOrUpdateFile commits a single file through the contents API.
func (c *Client) CreateOrUpdateFile(ctx context.Context, owner, repo string, w domain.FileWrite, token string) error {
	payload := struct {
		Message string `json:"message"`
		Content string `json:"content"`
		SHA     string `json:"sha,omitempty"`
	}{
		Message: w.Message,
		Content: encodeContent(w.Content),
		SHA:     w.SHA,
	}

	resp, err := c.do(ctx, http.MethodPut, repoPath(owner, repo, "/contents/"+escapePath(w.Path)), token, payload)
	if err != nil {
		return &port.APIError{Op: "write file", Message: "Failed to create or update file on GitHub.", Err: err}
	}
	switch resp.status {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusUnauthorized:
		return errUnauthorized()
	}

	msg := serverMessage(resp.body)
	if msg == "" {
		msg = "Failed to create or update file. Check token permissions."
	}
	apiErr := &port.APIError{Op: "write file", StatusCode: resp.status, Message: msg}
	if resp.status == http.StatusConflict {
		apiErr.Err = port.ErrConflict
	}
	return apiErr
}
