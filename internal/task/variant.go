package task

import (
	"strings"

	"wf-exporter/internal/bundle"
)

// Variant identifies the kind of work a task performs.
type Variant string

const (
	VariantNotebook    Variant = "notebook_task"
	VariantSparkPython Variant = "spark_python_task"
	VariantPythonWheel Variant = "python_wheel_task"
	VariantSQL         Variant = "sql_task"
	VariantDLT         Variant = "dlt_pipeline_task"

	// variantForEach wraps a nested task.
	variantForEach Variant = "for_each_task"
)

// ArtifactKind classifies what a path field points to.
type ArtifactKind string

const (
	KindNotebook ArtifactKind = "notebook"
	KindScript   ArtifactKind = "script"
	KindSQL      ArtifactKind = "sql"
	KindWheel    ArtifactKind = "wheel"
)

// Destination is the bundle directory an artifact kind belongs in.
type Destination string

const (
	DestSource  Destination = "src"
	DestLibrary Destination = "libs"
)

// Destination returns the conventional bundle directory for the kind.
func (k ArtifactKind) Destination() Destination {
	if k == KindWheel {
		return DestLibrary
	}

	return DestSource
}

// FieldSpec describes one path-bearing field of a variant.
type FieldSpec struct {
	Path bundle.FieldPath
	Kind ArtifactKind

	// GitSource locates a "source" field; the value GIT means the path is
	// inside a repository checkout and is not exported.
	GitSource *bundle.FieldPath
}

func gitSource(p string) *bundle.FieldPath {
	fp := bundle.MustParsePath(p)
	return &fp
}

var libraryWheels = FieldSpec{Path: bundle.MustParsePath("libraries[].whl"), Kind: KindWheel}

// variantFields is the canonical variant -> field table.
var variantFields = map[Variant][]FieldSpec{
	VariantNotebook: {
		{
			Path:      bundle.MustParsePath("notebook_task.notebook_path"),
			Kind:      KindNotebook,
			GitSource: gitSource("notebook_task.source"),
		},
		libraryWheels,
	},
	VariantSparkPython: {
		{
			Path:      bundle.MustParsePath("spark_python_task.python_file"),
			Kind:      KindScript,
			GitSource: gitSource("spark_python_task.source"),
		},
		libraryWheels,
	},
	VariantPythonWheel: {
		libraryWheels,
	},
	VariantSQL: {
		{
			Path:      bundle.MustParsePath("sql_task.file.path"),
			Kind:      KindSQL,
			GitSource: gitSource("sql_task.file.source"),
		},
	},
	VariantDLT: {
		{Path: bundle.MustParsePath("libraries[].notebook.path"), Kind: KindNotebook},
		{Path: bundle.MustParsePath("libraries[].file.path"), Kind: KindScript},
		{Path: bundle.MustParsePath("libraries[].whl"), Kind: KindWheel},
	},
}

// pathless variants are known and carry no artifact paths.
var pathless = map[Variant]struct{}{
	"pipeline_task":  {},
	"run_job_task":   {},
	"condition_task": {},
}

// Fields returns the field table for v, or nil for a variant without paths.
func Fields(v Variant) []FieldSpec {
	return variantFields[v]
}

// IsKnown reports whether v is a recognized variant.
func IsKnown(v Variant) bool {
	if _, ok := variantFields[v]; ok {
		return true
	}

	_, ok := pathless[v]

	return ok || v == variantForEach
}

// detectVariant returns the task-type key of a task mapping. Known variants
// take precedence over unknown "*_task" keys.
func detectVariant(keys []string) (Variant, bool) {
	var unknown Variant

	for _, k := range keys {
		if !strings.HasSuffix(k, "_task") {
			continue
		}

		if IsKnown(Variant(k)) {
			return Variant(k), true
		}

		if unknown == "" {
			unknown = Variant(k)
		}
	}

	return unknown, unknown != ""
}
