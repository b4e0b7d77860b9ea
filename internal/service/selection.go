package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/arturoeanton/repo-describer/internal/domain"
	"github.com/arturoeanton/repo-describer/internal/port"
	"golang.org/x/sync/errgroup"
)

// MaxAnalysisFiles bounds how many files feed README synthesis.
const MaxAnalysisFiles = 5

// KeyFilesPriority lists the file names most telling about a project, in
// order: package and build manifests, container and build configs, then
// common entry points.
var KeyFilesPriority = []string{
	"package.json", "composer.json", "pom.xml", "build.gradle", "requirements.txt", "pyproject.toml",
	"go.mod", "Cargo.toml", "Gemfile",
	"Dockerfile", "docker-compose.yml", "Makefile",
	"vite.config.js", "vite.config.ts", "webpack.config.js", "next.config.js", "svelte.config.js",
	"index.html", "index.js", "index.ts", "index.tsx", "styles.css", "style.css",
	"main.py", "app.py", "main.go", "main.rs", "App.java", "Program.cs",
}

// SelectAnalysisFiles picks up to MaxAnalysisFiles tree entries. Each priority
// name claims the first entry whose path ends with it; with no priority match
// on a non-empty tree the first entries in listing order are used instead.
func SelectAnalysisFiles(tree []domain.FileTreeEntry) []domain.FileTreeEntry {
	selected := make([]domain.FileTreeEntry, 0, MaxAnalysisFiles)
	taken := make(map[string]bool)

	for _, name := range KeyFilesPriority {
		if len(selected) == MaxAnalysisFiles {
			break
		}
		for _, e := range tree {
			if strings.HasSuffix(e.Path, name) {
				if !taken[e.Path] {
					taken[e.Path] = true
					selected = append(selected, e)
				}
				break
			}
		}
	}

	if len(selected) == 0 && len(tree) > 0 {
		n := min(len(tree), MaxAnalysisFiles)
		selected = append(selected, tree[:n]...)
	}
	return selected
}

// fetchSnippets reads every entry concurrently. A failed read omits that file
// rather than failing the batch; surviving snippets keep selection order.
func fetchSnippets(ctx context.Context, hosting port.HostingPlatform, repo domain.Repository, token string, entries []domain.FileTreeEntry) []domain.FileSnippet {
	results := make([]*domain.FileSnippet, len(entries))

	var g errgroup.Group
	g.SetLimit(MaxAnalysisFiles)
	for i, e := range entries {
		g.Go(func() error {
			content, err := hosting.ReadFileContent(ctx, repo.Owner.Login, repo.Name, e.Path, token)
			if err != nil {
				slog.Warn("skipping unreadable file", "repo", repo.FullName, "path", e.Path, "error", err)
				return nil
			}
			results[i] = &domain.FileSnippet{Path: e.Path, Content: content}
			return nil
		})
	}
	_ = g.Wait()

	snippets := make([]domain.FileSnippet, 0, len(results))
	for _, s := range results {
		if s != nil {
			snippets = append(snippets, *s)
		}
	}
	return snippets
}
