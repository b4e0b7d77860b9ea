package port

import (
	"context"

	"github.com/arturoeanton/repo-describer/internal/domain"
)

// Documenter produces repository documentation with a text generator.
type Documenter interface {
	// SummarizeToDescription condenses README text into one sentence.
	SummarizeToDescription(ctx context.Context, readme string) (string, error)

	// IsGeneric classifies README text as placeholder content. It never fails;
	// classifier errors collapse to a configured default.
	IsGeneric(ctx context.Context, readme string) bool

	// SynthesizeReadme writes a markdown README from a bundle of source files.
	SynthesizeReadme(ctx context.Context, repoName string, files []domain.FileSnippet) (string, error)
}
