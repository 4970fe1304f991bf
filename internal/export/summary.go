package export

import (
	"time"
)

// Summary reports every item of one export run.
type Summary struct {
	RunID     string        `yaml:"run_id"`
	StartedAt time.Time     `yaml:"started_at"`
	Items     []ItemSummary `yaml:"items"`
	Warnings  []string      `yaml:"warnings,omitempty"`
}

// ItemSummary is one item's entry in the Summary.
type ItemSummary struct {
	Kind        string `yaml:"kind"`
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	ResourceKey string `yaml:"resource_key,omitempty"`
	State       State  `yaml:"state"`
	Result      `yaml:",inline"`
}

func (s *Summary) add(run *Run) {
	s.Items = append(s.Items, ItemSummary{
		Kind:        string(run.Job.Kind),
		ID:          run.Job.ID,
		Name:        run.Job.Name,
		ResourceKey: run.ResourceKey,
		State:       run.State,
		Result:      run.Result(),
	})
}

// Saved counts items that reached StateSaved.
func (s *Summary) Saved() int {
	return s.count(StateSaved)
}

// Failed counts items that reached StateFailed.
func (s *Summary) Failed() int {
	return s.count(StateFailed)
}

func (s *Summary) count(state State) int {
	n := 0

	for _, it := range s.Items {
		if it.State == state {
			n++
		}
	}

	return n
}
