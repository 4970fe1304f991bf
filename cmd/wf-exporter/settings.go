package main

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"wf-exporter/internal/config"
)

func newSettingsCmd(root *rootOptions) *cobra.Command {
	var (
		item string
		dump bool
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Print the effective settings of one item",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			f, _, err := root.load()
			if err != nil {
				return err
			}

			resolver, err := config.NewResolver(f)
			if err != nil {
				return err
			}

			jobs, err := selectJobs(resolver, []string{item})
			if err != nil {
				return err
			}

			settings := resolver.Resolve(jobs[0])

			if dump {
				spew.Fdump(root.stdout, settings)
				return nil
			}

			data, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("failed to marshal settings: %w", err)
			}

			_, err = root.stdout.Write(data)

			return err
		},
	}

	cmd.Flags().StringVar(&item, "item", "", "job or pipeline id")
	cmd.Flags().BoolVar(&dump, "dump", false, "dump the settings structure instead of YAML")
	_ = cmd.MarkFlagRequired("item")

	return cmd
}
