package domain

import "strings"

// Repository is a read-only snapshot of a hosted repository as returned by the
// hosting platform listing.
type Repository struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	FullName      string  `json:"full_name"`
	HTMLURL       string  `json:"html_url"`
	Description   *string `json:"description"`
	Fork          bool    `json:"fork"`
	Owner         Owner   `json:"owner"`
	DefaultBranch string  `json:"default_branch"`
}

// Owner identifies the account that owns a repository.
type Owner struct {
	Login string `json:"login"`
}

// HasDescription reports whether the repository carries a non-blank description.
func (r Repository) HasDescription() bool {
	return r.Description != nil && strings.TrimSpace(*r.Description) != ""
}

// Identity is the authenticated hosting-platform account.
type Identity struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// DisplayName falls back to the login when no profile name is set.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Login
}

// ReadmeDocument is a decoded README plus the path and version token needed
// to overwrite it.
type ReadmeDocument struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

// Tree entry kinds.
const (
	EntryBlob = "blob"
	EntryTree = "tree"
)

// FileTreeEntry is one node of a recursive tree listing.
type FileTreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"` // blob, tree
	SHA  string `json:"sha"`
	Size *int64 `json:"size,omitempty"`
}

// FileSnippet is a path with its decoded text content.
type FileSnippet struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// FileWrite describes a create-or-update commit of a single file.
// An empty SHA creates the file; a non-empty SHA replaces that version.
type FileWrite struct {
	Path    string
	Content string
	Message string
	SHA     string
}
