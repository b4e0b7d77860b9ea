package docgen

import (
	"fmt"
	"strings"

	"github.com/arturoeanton/repo-describer/internal/domain"
)

const (
	// MaxFileContentLength caps how many characters of each file reach the prompt.
	MaxFileContentLength = 4000

	// TruncationMarker follows file content that was cut at MaxFileContentLength.
	TruncationMarker = "\n... (file truncated)"

	// genericLengthThreshold bounds the local placeholder heuristic.
	genericLengthThreshold = 150
)

// placeholderPhrases mark README text left over from repository templates.
var placeholderPhrases = []string{
	"add a readme",
	"name of your repository",
}

const descriptionPrompt = `Write a GitHub repository description for the project whose README.md follows.
Produce exactly one concise, professional sentence that summarizes what the project is for.
Do not use markdown, quotes, or any other formatting. Reply with the description text only.

README content:
---
%s
---`

const classifyPrompt = `Decide whether the README.md below is a generic or auto-generated file that says nothing specific about what the project does.
A README holding only the project title and template placeholder text counts as generic.
Answer with a single word: "YES" or "NO".

README content:
---
%s
---`

const readmePrompt = `You are an experienced software engineer writing the README.md for a repository.
Use the repository name and the file excerpts below to produce a complete, high-quality README in Markdown.

Repository name: **%s**

Files in the repository:
%s

Include these sections where the files allow it:
1. **Project Title**: an H1 heading (e.g. ` + "`# Project Name`" + `).
2. **Short Description**: one paragraph on what the project does.
3. **Key Features**: 2-4 bullet points.
4. **Tech Stack**: the main languages, frameworks and tools.
5. **Getting Started**: how to install or run it, if it can be inferred.

Keep the tone professional and informative. Output only the Markdown document, with no text before or after it.`

// emptyRepoStub is returned instead of calling the model for an empty bundle.
func emptyRepoStub(repoName string) string {
	return fmt.Sprintf("# %s\n\nThis repository appears to be empty. Add some files to generate a better README.", repoName)
}

// truncateContent keeps the first MaxFileContentLength characters and appends
// the truncation marker when anything was cut.
func truncateContent(content string) string {
	runes := []rune(content)
	if len(runes) <= MaxFileContentLength {
		return content
	}
	return string(runes[:MaxFileContentLength]) + TruncationMarker
}

// BuildReadmePrompt renders the synthesis prompt for repoName and files.
func BuildReadmePrompt(repoName string, files []domain.FileSnippet) string {
	var b strings.Builder
	for i, f := range files {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "---\nFile: `%s`\n---\n", f.Path)
		if f.Content == "" {
			b.WriteString("(Content not loaded)")
		} else {
			b.WriteString(truncateContent(f.Content))
		}
		b.WriteString("\n---\n")
	}
	return fmt.Sprintf(readmePrompt, repoName, b.String())
}

// looksGeneric applies the local placeholder heuristic.
func looksGeneric(readme string) bool {
	if len([]rune(readme)) >= genericLengthThreshold {
		return false
	}
	lower := strings.ToLower(readme)
	for _, phrase := range placeholderPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// cleanDescription trims the model output and drops one wrapping quote on each side.
func cleanDescription(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, `"`)
	text = strings.TrimSuffix(text, `"`)
	return text
}
