package task

import (
	"slices"

	"wf-exporter/internal/common"
)

// WorkspacePaths maps task_key -> field locator -> original workspace path,
// as reported by the workspace API before `bundle generate` relocated the
// files. Pipeline library paths are stored under the empty task key.
type WorkspacePaths map[string]map[string]string

// Lookup returns the workspace path recorded for a task field.
func (w WorkspacePaths) Lookup(taskKey, locator string) string {
	if w == nil {
		return ""
	}

	return w[taskKey][locator]
}

func (w WorkspacePaths) set(taskKey, locator, value string) {
	if w[taskKey] == nil {
		w[taskKey] = map[string]string{}
	}

	w[taskKey][locator] = value
}

// JobPathsFromJSON extracts workspace paths from decoded job settings.
func JobPathsFromJSON(settings map[string]any) WorkspacePaths {
	out := WorkspacePaths{}

	tasks, _ := settings["tasks"].([]any)
	for _, raw := range tasks {
		t, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		key, _ := t["task_key"].(string)
		collectTaskPaths(out, key, "", t)
	}

	return out
}

// PipelinePathsFromJSON extracts library paths from a decoded pipeline spec.
func PipelinePathsFromJSON(spec map[string]any) WorkspacePaths {
	out := WorkspacePaths{}

	for _, f := range Fields(VariantDLT) {
		for _, kv := range f.Path.LookupAny(spec) {
			if common.IsWorkspacePath(kv.Value) {
				out.set("", kv.Key, kv.Value)
			}
		}
	}

	return out
}

func collectTaskPaths(out WorkspacePaths, key, prefix string, t map[string]any) {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	variant, ok := detectVariant(keys)
	if !ok {
		return
	}

	if variant == variantForEach {
		fe, _ := t[string(variantForEach)].(map[string]any)
		if inner, ok := fe["task"].(map[string]any); ok {
			collectTaskPaths(out, key, prefix+"for_each_task.task.", inner)
		}

		return
	}

	for _, f := range Fields(variant) {
		for _, kv := range f.Path.LookupAny(t) {
			if common.IsWorkspacePath(kv.Value) {
				out.set(key, prefix+kv.Key, kv.Value)
			}
		}
	}
}
