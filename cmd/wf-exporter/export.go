package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wf-exporter/internal/apperrors"
	"wf-exporter/internal/config"
	"wf-exporter/internal/export"
	"wf-exporter/internal/observability"
	"wf-exporter/internal/workspace"
)

func newExportCmd(root *rootOptions) *cobra.Command {
	var items []string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Rewrite the exported jobs and pipelines",
		Long: `Process every active workflow and pipeline of the configuration, or only
the ones selected with --item. Referenced pipelines and jobs are processed
before the jobs that trigger them.

When DATABRICKS_HOST and DATABRICKS_TOKEN are set, original workspace paths
and permissions are read from the workspace and missing artifacts are
downloaded. DATABRICKS_FALLBACK_TOKEN is tried once when a download is denied.

Exit status is 0 when every item was saved, 2 when at least one item failed
and 1 when the run itself failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, logger, err := root.load()
			if err != nil {
				return err
			}

			resolver, err := config.NewResolver(f)
			if err != nil {
				return err
			}

			jobs, err := selectJobs(resolver, items)
			if err != nil {
				return err
			}

			opts := []export.Option{export.WithLogger(logger)}

			if f.Credentials.Host != "" && f.Credentials.Token != "" {
				client, err := workspace.New(f.Credentials, workspace.WithLogger(logger))
				if err != nil {
					return err
				}

				opts = append(opts, export.WithMetadataSource(client), export.WithFetcher(client))
			} else {
				logger.Info("no workspace credentials, artifacts are located in the export only")
			}

			if f.InitialVariables.MetricsPath != "" {
				metrics, err := observability.NewMetrics()
				if err != nil {
					return err
				}
				defer func() { _ = metrics.Shutdown(cmd.Context()) }()

				opts = append(opts, export.WithMetrics(metrics))
			}

			summary, runErr := export.New(resolver, opts...).Run(cmd.Context(), jobs)
			if summary != nil {
				printSummary(root, summary)
			}

			if runErr != nil {
				return runErr
			}

			if n := summary.Failed(); n > 0 {
				return &itemsFailedError{failed: n}
			}

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&items, "item", nil, "job or pipeline id to export (repeatable)")

	return cmd
}

// selectJobs returns the configured items with the given ids, or every
// active item when ids is empty.
func selectJobs(resolver *config.Resolver, ids []string) ([]config.ExportJob, error) {
	if len(ids) == 0 {
		return resolver.Jobs(), nil
	}

	jobs := make([]config.ExportJob, 0, len(ids))

	for _, id := range ids {
		job, ok := resolver.Find(id)
		if !ok {
			return nil, apperrors.Config("item", fmt.Sprintf("%s is not configured", id))
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}

func printSummary(root *rootOptions, s *export.Summary) {
	w := tabwriter.NewWriter(root.stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "STATE\tKIND\tID\tNAME\tREWRITTEN\tWARNINGS")

	for _, it := range s.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n", it.State, it.Kind, it.ID, it.Name, it.RewrittenPaths, len(it.Warnings))
	}

	_ = w.Flush()

	for _, it := range s.Items {
		for _, warn := range it.Warnings {
			fmt.Fprintf(root.stdout, "warning: %s\n", warn)
		}

		if it.Error != "" {
			fmt.Fprintf(root.stdout, "error: %s %s: %s\n", it.Kind, it.ID, it.Error)
		}
	}

	for _, warn := range s.Warnings {
		fmt.Fprintf(root.stdout, "warning: %s\n", warn)
	}
}
