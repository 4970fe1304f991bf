package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"wf-exporter/internal/config"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "wf-exporter",
		Short: "Rewrite bundle generate output into a portable bundle",
		Long: `wf-exporter post-processes jobs and pipelines exported with
"databricks bundle generate" so that the bundle can be deployed to another
workspace.

Examples:
  wf-exporter validate --config config.yml
  wf-exporter export --config config.yml
  wf-exporter export --config config.yml --item 123 --item 456
  wf-exporter settings --config config.yml --item 123 --dump`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yml", "configuration file (.yml or .toml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: DEBUG, INFO, WARN or ERROR (overrides v_log_level)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")

	cmd.AddCommand(newExportCmd(opts), newSettingsCmd(opts), newValidateCmd(opts))

	return cmd
}

// load reads the configuration, overlays the environment and installs the
// default logger.
func (o *rootOptions) load() (*config.File, *slog.Logger, error) {
	f, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, nil, err
	}

	config.ApplyEnv(f)

	level := f.InitialVariables.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}

	logger, err := newLogger(o.stderr, level, o.logFormat)
	if err != nil {
		return nil, nil, err
	}

	slog.SetDefault(logger)

	return f, logger, nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: want text or json", format)
	}
}
