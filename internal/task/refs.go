package task

import (
	"regexp"

	"gopkg.in/yaml.v3"

	"wf-exporter/internal/bundle"
)

// Ref is a dependency of a job on another exported item.
type Ref struct {
	Kind bundle.Kind

	// ID is set when the reference is a literal id.
	ID string

	// ResourceKey is set when the reference is a ${resources.<section>.<key>.id} expression.
	ResourceKey string
}

var resourceRefRe = regexp.MustCompile(`^\$\{resources\.(jobs|pipelines)\.([^.}]+)\.id\}$`)

// References returns the pipelines and jobs a job resource triggers through
// pipeline_task and run_job_task, including tasks nested in for_each_task.
func References(res bundle.Resource) []Ref {
	if res.Kind != bundle.KindWorkflow {
		return nil
	}

	tasks := bundle.MappingValue(res.Node, "tasks")
	if tasks == nil || tasks.Kind != yaml.SequenceNode {
		return nil
	}

	var out []Ref

	for _, t := range tasks.Content {
		out = append(out, taskRefs(t)...)
	}

	return out
}

func taskRefs(t *yaml.Node) []Ref {
	if inner := bundle.MappingValue(bundle.MappingValue(t, string(variantForEach)), "task"); inner != nil {
		return taskRefs(inner)
	}

	if id := bundle.ScalarValue(bundle.MappingValue(t, "pipeline_task"), "pipeline_id"); id != "" {
		return []Ref{newRef(bundle.KindPipeline, id)}
	}

	if id := bundle.ScalarValue(bundle.MappingValue(t, "run_job_task"), "job_id"); id != "" {
		return []Ref{newRef(bundle.KindWorkflow, id)}
	}

	return nil
}

func newRef(kind bundle.Kind, value string) Ref {
	if m := resourceRefRe.FindStringSubmatch(value); m != nil {
		return Ref{Kind: kind, ResourceKey: m[2]}
	}

	return Ref{Kind: kind, ID: value}
}
