package export

import (
	"fmt"
	"time"

	"wf-exporter/internal/config"
	"wf-exporter/internal/diagnostic"
)

// State is the lifecycle state of one Run.
type State string

const (
	StatePending      State = "pending"
	StateScanning     State = "scanning"
	StateRewriting    State = "rewriting"
	StateSubstituting State = "substituting"
	StateSaved        State = "saved"
	StateFailed       State = "failed"
)

// IsTerminal reports whether the state is final.
func IsTerminal(s State) bool {
	return s == StateSaved || s == StateFailed
}

func isAllowedTransition(from, to State) bool {
	if to == StateFailed {
		return !IsTerminal(from)
	}

	switch from {
	case StatePending:
		return to == StateScanning
	case StateScanning:
		return to == StateRewriting
	case StateRewriting:
		return to == StateSubstituting
	case StateSubstituting:
		return to == StateSaved
	default:
		return false
	}
}

// Result is the outcome of one item, as reported to callers.
type Result struct {
	Success        bool     `yaml:"success"`
	RewrittenPaths int      `yaml:"rewritten_paths"`
	Warnings       []string `yaml:"warnings,omitempty"`
	Error          string   `yaml:"error,omitempty"`
}

// Run binds the processing of one item.
type Run struct {
	Job   config.ExportJob
	State State

	// ResourceKey is the key of the item under resources.jobs or resources.pipelines.
	ResourceKey string

	Rewritten   int
	Diagnostics diagnostic.Diagnostics
	Err         error

	Started  time.Time
	Finished time.Time
}

func newRun(job config.ExportJob, now time.Time) *Run {
	return &Run{Job: job, State: StatePending, Started: now}
}

// transition moves the run to state to. Disallowed transitions are errors.
func (r *Run) transition(to State) error {
	if !isAllowedTransition(r.State, to) {
		return fmt.Errorf("disallowed transition for %s: %s -> %s", r.Job, r.State, to)
	}

	r.State = to

	return nil
}

// finish records the final outcome.
func (r *Run) finish(now time.Time, err error) {
	r.Finished = now

	if err == nil {
		return
	}

	r.Err = err
	if !IsTerminal(r.State) {
		r.State = StateFailed
	}
}

// Duration is the time spent on the run.
func (r *Run) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Result converts the run to its caller-facing outcome.
func (r *Run) Result() Result {
	res := Result{
		Success:        r.State == StateSaved,
		RewrittenPaths: r.Rewritten,
		Warnings:       r.Diagnostics.WarningMessages(),
	}

	if r.Err != nil {
		res.Error = r.Err.Error()
	}

	return res
}
