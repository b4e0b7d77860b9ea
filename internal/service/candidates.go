package service

import "github.com/arturoeanton/repo-describer/internal/domain"

// SelectCandidates keeps the non-fork repositories that have no description,
// preserving listing order.
func SelectCandidates(repos []domain.Repository) []domain.Repository {
	out := make([]domain.Repository, 0, len(repos))
	for _, r := range repos {
		if r.Fork || r.HasDescription() {
			continue
		}
		out = append(out, r)
	}
	return out
}
