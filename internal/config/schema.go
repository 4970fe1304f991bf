package config

import (
	"wf-exporter/internal/bundle"
)

// File represents the root of an export configuration document.
type File struct {
	InitialVariables InitialVariables `yaml:"initial_variables" toml:"initial_variables"`

	// PathReplacement maps a workspace path regex to its bundle-relative replacement.
	// Declaration order is significant.
	PathReplacement OrderedMap `yaml:"path_replacement,omitempty" toml:"path_replacement"`

	// ValueReplacements maps a literal to its replacement. Declaration order is precedence.
	ValueReplacements OrderedMap `yaml:"value_replacements,omitempty" toml:"value_replacements"`

	SparkConfKeyReplacements []SparkConfReplacement `yaml:"spark_conf_key_replacements,omitempty" toml:"spark_conf_key_replacements"`

	GlobalSettings GlobalSettings `yaml:"global_settings" toml:"global_settings"`

	Workflows []WorkflowItem `yaml:"workflows,omitempty" toml:"workflows"`
	Pipelines []PipelineItem `yaml:"pipelines,omitempty" toml:"pipelines"`

	// Credentials are never read from the document, only from the environment.
	Credentials Credentials `yaml:"-" toml:"-"`
}

// InitialVariables holds run-wide locations and settings.
// Values may reference {v_start_path}.
type InitialVariables struct {
	StartPath               string `yaml:"v_start_path,omitempty" toml:"v_start_path"`
	MappingCSVPath          string `yaml:"v_resource_key_job_id_mapping_csv_file_path,omitempty" toml:"v_resource_key_job_id_mapping_csv_file_path"`
	BackupPath              string `yaml:"v_backup_jobs_yaml_path,omitempty" toml:"v_backup_jobs_yaml_path"`
	SummaryPath             string `yaml:"v_summary_file_path,omitempty" toml:"v_summary_file_path"`
	MetricsPath             string `yaml:"v_metrics_file_path,omitempty" toml:"v_metrics_file_path"`
	LogLevel                string `yaml:"v_log_level,omitempty" toml:"v_log_level"`
	DatabricksHost          string `yaml:"v_databricks_host,omitempty" toml:"v_databricks_host"`
	DatabricksConfigProfile string `yaml:"v_databricks_config_profile,omitempty" toml:"v_databricks_config_profile"`
}

// SparkConfReplacement transforms a cluster's spark_conf when SearchKey is present.
type SparkConfReplacement struct {
	SearchKey   string `yaml:"search_key" toml:"search_key"`
	TargetKey   string `yaml:"target_key" toml:"target_key"`
	TargetValue string `yaml:"target_value" toml:"target_value"`
}

// GlobalSettings apply to every item unless overridden.
type GlobalSettings struct {
	ExportLibraries *bool `yaml:"export_libraries,omitempty" toml:"export_libraries"`
}

// WorkflowItem selects one job for export.
type WorkflowItem struct {
	Name            string `yaml:"job_name" toml:"job_name"`
	ID              ID     `yaml:"job_id" toml:"job_id"`
	IsExisting      bool   `yaml:"is_existing" toml:"is_existing"`
	IsActive        bool   `yaml:"is_active" toml:"is_active"`
	ExportLibraries *bool  `yaml:"export_libraries,omitempty" toml:"export_libraries"`
}

// PipelineItem selects one pipeline for export.
type PipelineItem struct {
	Name            string `yaml:"pipeline_name" toml:"pipeline_name"`
	ID              ID     `yaml:"pipeline_id" toml:"pipeline_id"`
	IsExisting      bool   `yaml:"is_existing" toml:"is_existing"`
	IsActive        bool   `yaml:"is_active" toml:"is_active"`
	ExportLibraries *bool  `yaml:"export_libraries,omitempty" toml:"export_libraries"`
}

// Credentials authenticate workspace API calls.
type Credentials struct {
	Host          string
	Token         string
	FallbackToken string
}

// ExportJob is one workflow or pipeline to export. It is immutable during a run.
type ExportJob struct {
	Name            string      `yaml:"name"`
	ID              string      `yaml:"id"`
	Kind            bundle.Kind `yaml:"kind"`
	IsExisting      bool        `yaml:"is_existing"`
	IsActive        bool        `yaml:"is_active"`
	ExportLibraries *bool       `yaml:"export_libraries_override,omitempty"`
}

// String returns "kind:id" for logs.
func (j ExportJob) String() string {
	return string(j.Kind) + ":" + j.ID
}

// Items returns every configured item, workflows first, in declaration order.
func (f *File) Items() []ExportJob {
	out := make([]ExportJob, 0, len(f.Workflows)+len(f.Pipelines))

	for _, w := range f.Workflows {
		out = append(out, ExportJob{
			Name:            w.Name,
			ID:              string(w.ID),
			Kind:            bundle.KindWorkflow,
			IsExisting:      w.IsExisting,
			IsActive:        w.IsActive,
			ExportLibraries: w.ExportLibraries,
		})
	}

	for _, p := range f.Pipelines {
		out = append(out, ExportJob{
			Name:            p.Name,
			ID:              string(p.ID),
			Kind:            bundle.KindPipeline,
			IsExisting:      p.IsExisting,
			IsActive:        p.IsActive,
			ExportLibraries: p.ExportLibraries,
		})
	}

	return out
}
