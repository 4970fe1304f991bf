package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wf-exporter/internal/apperrors"
	"wf-exporter/internal/config"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration without exporting",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			f, _, err := root.load()
			if err != nil {
				return err
			}

			diags := config.Validate(f)

			for _, d := range diags.Errors {
				fmt.Fprintf(root.stdout, "error: %s\n", d)
			}

			for _, d := range diags.Warnings {
				fmt.Fprintf(root.stdout, "warning: %s\n", d)
			}

			if diags.HasErrors() {
				return apperrors.Config("", fmt.Sprintf("%d configuration error(s)", len(diags.Errors)))
			}

			fmt.Fprintf(root.stdout, "configuration ok: %d item(s), %d active\n", len(f.Items()), len(activeItems(f)))

			return nil
		},
	}
}

func activeItems(f *config.File) []config.ExportJob {
	var out []config.ExportJob

	for _, it := range f.Items() {
		if it.IsActive {
			out = append(out, it)
		}
	}

	return out
}
