package rewrite

import (
	"errors"
	"log/slog"

	"gopkg.in/yaml.v3"

	"wf-exporter/internal/artifact"
	"wf-exporter/internal/bundle"
	"wf-exporter/internal/config"
	"wf-exporter/internal/diagnostic"
	"wf-exporter/internal/task"
)

// Binding ties a YAML field to the artifact it references.
type Binding struct {
	TaskKey string
	Field   task.PathField
	Record  *artifact.Record
}

// Engine rewrites bound fields of one bundle document.
type Engine struct {
	root   string
	logger *slog.Logger
}

// NewEngine creates an Engine for the bundle rooted at root (absolute).
func NewEngine(root string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{root: root, logger: logger}
}

// Rewrite sets every bound field to its destination relative to the
// document's directory and returns how many fields changed. Each record's
// Destination is filled in. Fields whose destination cannot be computed are
// left unchanged and reported as warnings.
func (e *Engine) Rewrite(doc *bundle.Document, bindings []Binding, settings config.EffectiveSettings) (int, *diagnostic.Diagnostics) {
	diags := &diagnostic.Diagnostics{}
	job := settings.Job.Name
	changed := 0

	for _, b := range bindings {
		if b.Field.Kind == task.KindWheel && !settings.ExportLibraries {
			diags.AddInfo("libraries_not_exported", "export_libraries is off; wheel left as is", job, b.TaskKey+"."+b.Field.Locator)
			continue
		}

		dest, err := Destination(b.Record, settings.PathRules)
		if err != nil {
			code := "path_rule_unmatched"
			if errors.Is(err, errEscapesRoot) {
				code = "path_escapes_bundle"
			}

			diags.AddWarning(code, err.Error(), job, b.TaskKey+"."+b.Field.Locator)

			continue
		}

		b.Record.Destination = dest

		value, err := RelativeTo(doc.Dir(), e.root, dest)
		if err != nil {
			diags.AddWarning("path_not_relative", err.Error(), job, b.TaskKey+"."+b.Field.Locator)
			continue
		}

		if b.Field.Node.Value == value {
			continue
		}

		e.logger.Debug("path rewritten",
			"job", job, "task_key", b.TaskKey, "field", b.Field.Locator, "from", b.Field.Node.Value, "to", value)

		b.Field.Node.Value = value
		b.Field.Node.Style = 0
		b.Field.Node.Tag = "!!str"
		changed++
	}

	return changed, diags
}

// DedupeDependencies removes repeated entries from every environment
// dependency list of plan, keeping the first occurrence. It returns the
// number of entries removed.
func DedupeDependencies(plan *task.Plan) int {
	removed := 0

	for _, node := range dependencyLists(plan.Resource) {
		seen := map[string]struct{}{}
		kept := node.Content[:0]

		for _, d := range node.Content {
			if d.Kind == yaml.ScalarNode {
				if _, dup := seen[d.Value]; dup {
					removed++
					continue
				}

				seen[d.Value] = struct{}{}
			}

			kept = append(kept, d)
		}

		node.Content = kept
	}

	return removed
}

func dependencyLists(res bundle.Resource) []*yaml.Node {
	var out []*yaml.Node

	if envs := bundle.MappingValue(res.Node, "environments"); envs != nil && envs.Kind == yaml.SequenceNode {
		for _, env := range envs.Content {
			if deps := bundle.MappingValue(bundle.MappingValue(env, "spec"), "dependencies"); deps != nil && deps.Kind == yaml.SequenceNode {
				out = append(out, deps)
			}
		}
	}

	if deps := bundle.MappingValue(bundle.MappingValue(res.Node, "environment"), "dependencies"); deps != nil && deps.Kind == yaml.SequenceNode {
		out = append(out, deps)
	}

	return out
}
