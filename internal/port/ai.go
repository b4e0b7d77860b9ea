package port

import "context"

// TextGenerator abstracts a single-turn prompt completion backend.
// Implementations can target Gemini, Ollama, or any compatible API.
type TextGenerator interface {
	// ModelName returns the identifier of the model being used.
	ModelName() string

	// Generate sends one prompt and returns the complete response text.
	Generate(ctx context.Context, prompt string) (string, error)
}
