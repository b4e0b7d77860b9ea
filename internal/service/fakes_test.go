package service

import (
	"context"
	"errors"
	"sync"

	"github.com/arturoeanton/repo-describer/internal/domain"
)

type fakeHosting struct {
	mu sync.Mutex

	identity    *domain.Identity
	identityErr error
	repos       []domain.Repository
	reposErr    error
	readme      *domain.ReadmeDocument
	readmeErr   error
	tree        []domain.FileTreeEntry
	treeErr     error
	files       map[string]string
	describeErr []error

	verifyCalls   int
	treeCalls     int
	fileReads     []string
	descriptions  []string
	writes        []domain.FileWrite
	describeCalls int
}

func (f *fakeHosting) VerifyIdentity(_ context.Context, _ string) (*domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	if f.identityErr != nil {
		return nil, f.identityErr
	}
	id := *f.identity
	return &id, nil
}

func (f *fakeHosting) ListOwnedRepositories(_ context.Context, _ string) ([]domain.Repository, error) {
	return f.repos, f.reposErr
}

func (f *fakeHosting) ReadReadme(_ context.Context, _, _, _ string) (*domain.ReadmeDocument, error) {
	return f.readme, f.readmeErr
}

func (f *fakeHosting) ListFileTree(_ context.Context, _, _, _, _ string) ([]domain.FileTreeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.treeCalls++
	return f.tree, f.treeErr
}

func (f *fakeHosting) ReadFileContent(_ context.Context, _, _, path, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fileReads = append(f.fileReads, path)
	content, ok := f.files[path]
	if !ok {
		return "", errors.New("not found")
	}
	return content, nil
}

func (f *fakeHosting) UpdateDescription(_ context.Context, _, _, description, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.describeCalls++
	if len(f.describeErr) > 0 {
		err := f.describeErr[0]
		f.describeErr = f.describeErr[1:]
		if err != nil {
			return err
		}
	}
	f.descriptions = append(f.descriptions, description)
	return nil
}

func (f *fakeHosting) CreateOrUpdateFile(_ context.Context, _, _ string, w domain.FileWrite, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, w)
	return nil
}

type fakeDocs struct {
	generic     bool
	description string
	describeErr error
	readme      string
	readmeErr   error

	classified  []string
	summarized  []string
	synthesized [][]domain.FileSnippet
}

func (f *fakeDocs) SummarizeToDescription(_ context.Context, readme string) (string, error) {
	f.summarized = append(f.summarized, readme)
	return f.description, f.describeErr
}

func (f *fakeDocs) IsGeneric(_ context.Context, readme string) bool {
	f.classified = append(f.classified, readme)
	return f.generic
}

func (f *fakeDocs) SynthesizeReadme(_ context.Context, _ string, files []domain.FileSnippet) (string, error) {
	f.synthesized = append(f.synthesized, files)
	return f.readme, f.readmeErr
}

func testRepo(id int64, name string) domain.Repository {
	return domain.Repository{
		ID:            id,
		Name:          name,
		FullName:      "octo/" + name,
		Owner:         domain.Owner{Login: "octo"},
		DefaultBranch: "main",
	}
}
