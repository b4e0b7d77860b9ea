package domain

import "time"

// State is a step of the per-repository enrichment workflow.
type State string

// Enrichment states.
const (
	StateIdle                  State = "idle"
	StateAnalyzing             State = "analyzing"
	StateGeneratingReadme      State = "generating_readme"
	StateReviewingReadme       State = "reviewing_readme"
	StateCreatingReadme        State = "creating_readme"
	StateGeneratingDescription State = "generating_description"
	StateHasDescription        State = "has_description"
	StateUpdatingDescription   State = "updating_description"
	StateError                 State = "error"
)

// Busy reports whether the state is waiting on an external call.
func (s State) Busy() bool {
	switch s {
	case StateAnalyzing, StateGeneratingReadme, StateCreatingReadme,
		StateGeneratingDescription, StateUpdatingDescription:
		return true
	}
	return false
}

// Session is a snapshot of one repository's enrichment session.
type Session struct {
	ID                   string    `json:"id"`
	RepositoryID         int64     `json:"repository_id"`
	Repository           string    `json:"repository"`
	State                State     `json:"state"`
	Error                string    `json:"error,omitempty"`
	GeneratedDescription string    `json:"generated_description,omitempty"`
	GeneratedReadme      string    `json:"generated_readme,omitempty"`
	ReadmeSHA            string    `json:"readme_sha,omitempty"`
	ReadmePath           string    `json:"readme_path,omitempty"`
	UpdatedAt            time.Time `json:"updated_at"`
}
