package task

import (
	"wf-exporter/internal/apperrors"
)

// ValidateScopes checks that every environment_key used by a task resolves
// to exactly one environment of the same resource.
func (p *Plan) ValidateScopes() error {
	count := map[string]int{}
	for _, e := range p.Environments {
		count[e.Key]++
	}

	for _, n := range p.Tasks {
		if n.EnvironmentKey == "" {
			continue
		}

		if c := count[n.EnvironmentKey]; c != 1 {
			return apperrors.LibraryScopeMismatch(n.TaskKey, n.EnvironmentKey, c)
		}
	}

	return nil
}
