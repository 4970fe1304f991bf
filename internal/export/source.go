package export

import (
	"context"

	"wf-exporter/internal/bundle"
	"wf-exporter/internal/config"
	"wf-exporter/internal/task"
)

// MetadataSource supplies what bundle generate drops from the exported YAML:
// the original workspace paths of an item's tasks and its permissions.
type MetadataSource interface {
	WorkspacePaths(ctx context.Context, job config.ExportJob) (task.WorkspacePaths, error)
	Permissions(ctx context.Context, job config.ExportJob) ([]bundle.Permission, error)
}

// StaticSource serves metadata from memory, keyed by ExportJob.String().
type StaticSource struct {
	Paths map[string]task.WorkspacePaths
	ACLs  map[string][]bundle.Permission
}

// WorkspacePaths implements MetadataSource.
func (s StaticSource) WorkspacePaths(_ context.Context, job config.ExportJob) (task.WorkspacePaths, error) {
	return s.Paths[job.String()], nil
}

// Permissions implements MetadataSource.
func (s StaticSource) Permissions(_ context.Context, job config.ExportJob) ([]bundle.Permission, error) {
	return s.ACLs[job.String()], nil
}
