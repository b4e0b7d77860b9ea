package docgen

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arturoeanton/repo-describer/internal/domain"
	"github.com/arturoeanton/repo-describer/internal/port"
)

// FallbackDescription is returned for an empty README without calling the model.
const FallbackDescription = "This repository does not have a readable README file to generate a description from."

// Options tunes the writer.
type Options struct {
	// GenericOnClassifierError is what IsGeneric reports when the
	// classification call fails. The default, false, keeps the existing README.
	GenericOnClassifierError bool
}

// Writer implements port.Documenter on top of a text generator.
type Writer struct {
	gen  port.TextGenerator
	opts Options
}

// NewWriter creates a documentation writer.
func NewWriter(gen port.TextGenerator, opts Options) *Writer {
	return &Writer{gen: gen, opts: opts}
}

// SummarizeToDescription condenses README text into a one-sentence description.
func (w *Writer) SummarizeToDescription(ctx context.Context, readme string) (string, error) {
	if strings.TrimSpace(readme) == "" {
		return FallbackDescription, nil
	}

	out, err := w.gen.Generate(ctx, fmt.Sprintf(descriptionPrompt, readme))
	if err != nil {
		slog.Error("description generation failed", "model", w.gen.ModelName(), "error", err)
		return "", &port.GenerationError{Message: "Failed to generate description. The AI service may be unavailable.", Err: err}
	}
	desc := cleanDescription(out)
	if desc == "" {
		return "", &port.GenerationError{Message: "Failed to generate description. The AI service may be unavailable."}
	}
	return desc, nil
}

// IsGeneric reports whether the README is placeholder content.
func (w *Writer) IsGeneric(ctx context.Context, readme string) bool {
	if looksGeneric(readme) {
		return true
	}

	out, err := w.gen.Generate(ctx, fmt.Sprintf(classifyPrompt, readme))
	if err != nil {
		slog.Warn("readme classification failed, using default",
			"model", w.gen.ModelName(),
			"generic", w.opts.GenericOnClassifierError,
			"error", err,
		)
		return w.opts.GenericOnClassifierError
	}
	return strings.Contains(strings.ToUpper(strings.TrimSpace(out)), "YES")
}

// SynthesizeReadme writes a README for repoName from the given file bundle.
func (w *Writer) SynthesizeReadme(ctx context.Context, repoName string, files []domain.FileSnippet) (string, error) {
	if len(files) == 0 {
		return emptyRepoStub(repoName), nil
	}

	out, err := w.gen.Generate(ctx, BuildReadmePrompt(repoName, files))
	if err != nil {
		slog.Error("readme generation failed", "repo", repoName, "model", w.gen.ModelName(), "error", err)
		return "", &port.GenerationError{Message: "Failed to generate README. The AI service may be unavailable.", Err: err}
	}
	readme := strings.TrimSpace(out)
	if readme == "" {
		return "", &port.GenerationError{Message: "Failed to generate README. The AI service may be unavailable."}
	}
	return readme, nil
}
