package task

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"wf-exporter/internal/apperrors"
	"wf-exporter/internal/bundle"
	"wf-exporter/internal/diagnostic"
)

const gitSourceValue = "GIT"

// Scope tells where a library reference is attached.
type Scope string

const (
	ScopeTask        Scope = "task"
	ScopeEnvironment Scope = "environment"
)

// PathField is one resolved path-bearing scalar.
type PathField struct {
	bundle.Field

	Kind  ArtifactKind
	Scope Scope
}

// Node is a parsed task entry.
type Node struct {
	TaskKey        string
	Variant        Variant
	EnvironmentKey string
	Fields         []PathField
}

// Environment is a serverless environment and its wheel dependencies.
type Environment struct {
	Key    string
	Fields []PathField
}

// Plan lists every path field of one resource.
type Plan struct {
	Resource     bundle.Resource
	Tasks        []Node
	Environments []Environment
}

// AllFields returns task fields followed by environment fields.
func (p *Plan) AllFields() []PathField {
	var out []PathField
	for _, n := range p.Tasks {
		out = append(out, n.Fields...)
	}

	for _, e := range p.Environments {
		out = append(out, e.Fields...)
	}

	return out
}

// Extract resolves the task nodes and environments of a resource. Unknown
// variants and Git-sourced paths are reported in the returned diagnostics
// and skipped.
func Extract(res bundle.Resource) (*Plan, *diagnostic.Diagnostics) {
	diags := &diagnostic.Diagnostics{}
	plan := &Plan{Resource: res}

	switch res.Kind {
	case bundle.KindPipeline:
		extractPipeline(plan, diags)
	default:
		extractJob(plan, diags)
	}

	return plan, diags
}

func extractJob(plan *Plan, diags *diagnostic.Diagnostics) {
	res := plan.Resource
	jobGit := bundle.MappingValue(res.Node, "git_source") != nil

	tasks := bundle.MappingValue(res.Node, "tasks")
	if tasks != nil && tasks.Kind == yaml.SequenceNode {
		for i, t := range tasks.Content {
			key := bundle.ScalarValue(t, "task_key")
			if key == "" {
				key = "tasks[" + strconv.Itoa(i) + "]"
			}

			plan.Tasks = append(plan.Tasks, resolveTask(res.Key, t, key, "", jobGit, diags)...)
		}
	}

	envs := bundle.MappingValue(res.Node, "environments")
	if envs == nil || envs.Kind != yaml.SequenceNode {
		return
	}

	for i, e := range envs.Content {
		env := Environment{Key: bundle.ScalarValue(e, "environment_key")}
		prefix := "environments[" + strconv.Itoa(i) + "]."

		for _, f := range wheelDependencies(bundle.MappingValue(e, "spec")) {
			f.Locator = prefix + "spec." + f.Locator
			env.Fields = append(env.Fields, f)
		}

		plan.Environments = append(plan.Environments, env)
	}
}

func extractPipeline(plan *Plan, diags *diagnostic.Diagnostics) {
	res := plan.Resource

	node := Node{TaskKey: res.Key, Variant: VariantDLT}
	for _, spec := range Fields(VariantDLT) {
		for _, f := range spec.Path.Resolve(res.Node) {
			node.Fields = append(node.Fields, PathField{Field: f, Kind: spec.Kind, Scope: ScopeTask})
		}
	}

	if len(node.Fields) == 0 {
		diags.AddInfo("no_path_fields", "pipeline has no library paths", res.Key, "libraries")
	}

	plan.Tasks = append(plan.Tasks, node)

	env := bundle.MappingValue(res.Node, "environment")
	if env == nil {
		return
	}

	pe := Environment{}
	for _, f := range wheelDependencies(env) {
		f.Locator = "environment." + f.Locator
		pe.Fields = append(pe.Fields, f)
	}

	plan.Environments = append(plan.Environments, pe)
}

// resolveTask classifies one task mapping. for_each_task recurses into its
// nested task; locators of nested fields are prefixed accordingly.
func resolveTask(job string, t *yaml.Node, key, prefix string, jobGit bool, diags *diagnostic.Diagnostics) []Node {
	variant, ok := detectVariant(bundle.MappingKeys(t))
	if !ok {
		err := apperrors.UnknownVariant(key, "")
		diags.AddWarning("unknown_task_variant", err.Error(), job, key)

		return nil
	}

	if variant == variantForEach {
		inner := bundle.MappingValue(bundle.MappingValue(t, string(variantForEach)), "task")
		if inner == nil {
			diags.AddWarning("unknown_task_variant", "for_each_task has no nested task", job, key)
			return nil
		}

		return resolveTask(job, inner, key, prefix+"for_each_task.task.", jobGit, diags)
	}

	if !IsKnown(variant) {
		err := apperrors.UnknownVariant(key, string(variant))
		diags.AddWarning("unknown_task_variant", err.Error(), job, key)

		return nil
	}

	node := Node{
		TaskKey:        key,
		Variant:        variant,
		EnvironmentKey: bundle.ScalarValue(t, "environment_key"),
	}

	for _, spec := range Fields(variant) {
		fields := spec.Path.Resolve(t)
		if len(fields) == 0 {
			continue
		}

		if spec.GitSource != nil && isGitSourced(t, *spec.GitSource, jobGit) {
			diags.AddInfo("git_source_skipped",
				fmt.Sprintf("%s is read from the job's Git source and is not exported", spec.Path), job, key)

			continue
		}

		for _, f := range fields {
			f.Locator = prefix + f.Locator
			node.Fields = append(node.Fields, PathField{Field: f, Kind: spec.Kind, Scope: ScopeTask})
		}
	}

	return []Node{node}
}

// isGitSourced reports whether a task path refers to a repository checkout.
// An unset source defaults to GIT when the job declares git_source.
func isGitSourced(t *yaml.Node, source bundle.FieldPath, jobGit bool) bool {
	f, ok := source.First(t)
	if !ok || f.Value() == "" {
		return jobGit
	}

	return strings.EqualFold(f.Value(), gitSourceValue)
}

// wheelDependencies returns the .whl entries of a dependencies list.
func wheelDependencies(spec *yaml.Node) []PathField {
	deps := bundle.MappingValue(spec, "dependencies")
	if deps == nil || deps.Kind != yaml.SequenceNode {
		return nil
	}

	var out []PathField

	for i, d := range deps.Content {
		if d.Kind != yaml.ScalarNode || !IsWheel(d.Value) {
			continue
		}

		out = append(out, PathField{
			Field: bundle.Field{Locator: "dependencies[" + strconv.Itoa(i) + "]", Node: d},
			Kind:  KindWheel,
			Scope: ScopeEnvironment,
		})
	}

	return out
}

// IsWheel reports whether a dependency string names a wheel file rather than
// a package requirement.
func IsWheel(dep string) bool {
	return strings.HasSuffix(strings.ToLower(dep), ".whl") && strings.Contains(dep, "/")
}
