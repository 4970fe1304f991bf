package rewrite

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"wf-exporter/internal/artifact"
	"wf-exporter/internal/config"
	"wf-exporter/internal/task"
)

// defaultNotebookExt is given to fetched notebooks, whose language the
// workspace path does not reveal.
const defaultNotebookExt = ".py"

var (
	errNoRule      = errors.New("no path_replacement rule matches")
	errEscapesRoot = errors.New("destination escapes the bundle root")
)

// ApplyRules rewrites p with the first rule that matches it.
func ApplyRules(p string, rules []config.PathRule) (string, bool) {
	for _, r := range rules {
		if r.Match(p) {
			return r.Apply(p), true
		}
	}

	return p, false
}

// BundlePath converts a rule result, which is relative to the resources
// directory, into a path relative to the bundle root.
func BundlePath(ruleResult string) (string, error) {
	p := path.Clean(path.Join(artifact.ResourcesDir, ruleResult))
	if p == ".." || strings.HasPrefix(p, "../") || path.IsAbs(p) {
		return "", fmt.Errorf("%w: %s", errEscapesRoot, ruleResult)
	}

	return p, nil
}

// Destination returns the bundle-root relative location for rec.
// Wheels always go to libs/<basename>. Artifacts with a known workspace path
// follow the path rules; the rest stay where they were found.
func Destination(rec *artifact.Record, rules []config.PathRule) (string, error) {
	if rec.Kind == task.KindWheel {
		name := path.Base(rec.OriginalPath)
		if rec.OriginalPath == "" {
			name = path.Base(rec.LocalPath)
		}

		return path.Join(artifact.LibsDir, name), nil
	}

	if rec.OriginalPath == "" {
		return rec.LocalPath, nil
	}

	result, ok := ApplyRules(rec.OriginalPath, rules)
	if !ok {
		return "", fmt.Errorf("%w %s", errNoRule, rec.OriginalPath)
	}

	dest, err := BundlePath(result)
	if err != nil {
		return "", err
	}

	if rec.Kind == task.KindNotebook && path.Ext(dest) == "" {
		ext := path.Ext(rec.LocalPath)
		if rec.LocalPath == "" {
			ext = defaultNotebookExt
		}

		dest += ext
	}

	return dest, nil
}

// RelativeTo expresses dest, relative to root, from the directory yamlDir.
func RelativeTo(yamlDir, root, dest string) (string, error) {
	rel, err := filepath.Rel(yamlDir, filepath.Join(root, filepath.FromSlash(dest)))
	if err != nil {
		return "", fmt.Errorf("failed to relativize %s: %w", dest, err)
	}

	return filepath.ToSlash(rel), nil
}
