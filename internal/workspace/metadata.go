package workspace

import (
	"context"
	"fmt"
	"net/url"

	"wf-exporter/internal/bundle"
	"wf-exporter/internal/config"
	"wf-exporter/internal/task"
)

// adminsGroup is managed by the workspace and never exported.
const adminsGroup = "admins"

type jobResponse struct {
	JobID    int64          `json:"job_id"`
	Settings map[string]any `json:"settings"`
}

type pipelineResponse struct {
	PipelineID string         `json:"pipeline_id"`
	Name       string         `json:"name"`
	Spec       map[string]any `json:"spec"`
}

type aclResponse struct {
	AccessControlList []struct {
		UserName             string `json:"user_name"`
		GroupName            string `json:"group_name"`
		ServicePrincipalName string `json:"service_principal_name"`
		AllPermissions       []struct {
			PermissionLevel string `json:"permission_level"`
			Inherited       bool   `json:"inherited"`
		} `json:"all_permissions"`
	} `json:"access_control_list"`
}

// WorkspacePaths returns the original workspace paths of an item's tasks.
func (c *Client) WorkspacePaths(ctx context.Context, job config.ExportJob) (task.WorkspacePaths, error) {
	if job.Kind == bundle.KindPipeline {
		var resp pipelineResponse
		if err := c.getJSON(ctx, "pipelines.get", "/api/2.0/pipelines/"+url.PathEscape(job.ID), nil, &resp); err != nil {
			return nil, fmt.Errorf("failed to get pipeline %s: %w", job.ID, err)
		}

		return task.PipelinePathsFromJSON(resp.Spec), nil
	}

	q := url.Values{}
	q.Set("job_id", job.ID)

	var resp jobResponse
	if err := c.getJSON(ctx, "jobs.get", "/api/2.1/jobs/get", q, &resp); err != nil {
		return nil, fmt.Errorf("failed to get job %s: %w", job.ID, err)
	}

	return task.JobPathsFromJSON(resp.Settings), nil
}

// Permissions returns the item's direct (non-inherited) permissions as
// bundle permission entries. The admins group is skipped.
func (c *Client) Permissions(ctx context.Context, job config.ExportJob) ([]bundle.Permission, error) {
	objectType := "jobs"
	if job.Kind == bundle.KindPipeline {
		objectType = "pipelines"
	}

	var resp aclResponse
	if err := c.getJSON(ctx, "permissions.get", "/api/2.0/permissions/"+objectType+"/"+url.PathEscape(job.ID), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get permissions for %s: %w", job, err)
	}

	var out []bundle.Permission

	for _, acl := range resp.AccessControlList {
		if acl.GroupName == adminsGroup {
			continue
		}

		for _, p := range acl.AllPermissions {
			if p.Inherited {
				continue
			}

			out = append(out, bundle.Permission{
				Level:                p.PermissionLevel,
				UserName:             acl.UserName,
				GroupName:            acl.GroupName,
				ServicePrincipalName: acl.ServicePrincipalName,
			})

			break
		}
	}

	return out, nil
}
